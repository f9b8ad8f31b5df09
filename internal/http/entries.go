package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/journal/internal/entities"
	"github.com/mrlokans/journal/internal/journal"
)

// EntriesController serves the journal entries API.
type EntriesController struct {
	store  EntryStore
	events EntryEventLogger
}

// NewEntriesController creates an entries controller. events may be nil.
func NewEntriesController(store EntryStore, events EntryEventLogger) *EntriesController {
	return &EntriesController{store: store, events: events}
}

// ListEntries handles GET /api/entries
//
// Query parameters are mutually exclusive and checked in this order:
// q (content or tag search), mood (mood name), tag (exact tag name),
// from/to (inclusive date range). Without any of them all entries are returned.
func (ec *EntriesController) ListEntries(c *gin.Context) {
	var (
		list []entities.Entry
		err  error
	)

	switch {
	case c.Query("q") != "":
		list, err = ec.store.SearchEntries(c.Query("q"))
	case c.Query("mood") != "":
		kind, parseErr := entities.ParseMoodKind(c.Query("mood"))
		if parseErr != nil {
			respondBadRequest(c, parseErr.Error())
			return
		}
		list, err = ec.store.FilterByMood(kind)
	case c.Query("tag") != "":
		list, err = ec.store.FilterByTag(c.Query("tag"))
	default:
		from, hasFrom, ok := parseQueryDate(c, "from")
		if !ok {
			return
		}
		to, hasTo, ok := parseQueryDate(c, "to")
		if !ok {
			return
		}
		if hasFrom || hasTo {
			// a missing bound stays zero, which leaves that side open
			list, err = ec.store.GetEntriesBetween(from, to)
		} else {
			list, err = ec.store.GetAllEntries()
		}
	}

	if err != nil {
		respondDomainError(c, err, "list entries")
		return
	}
	if list == nil {
		list = []entities.Entry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": list,
		"count":   len(list),
	})
}

// GetEntry handles GET /api/entries/:date
func (ec *EntriesController) GetEntry(c *gin.Context) {
	date, ok := parseDateParam(c, "date")
	if !ok {
		return
	}

	entry, err := ec.store.GetEntryByDate(date)
	if err != nil {
		respondDomainError(c, err, "get entry")
		return
	}
	if entry == nil {
		respondNotFound(c, "entry for "+date.String())
		return
	}

	c.JSON(http.StatusOK, entry)
}

// SaveEntry handles PUT /api/entries/:date
// The body is a journal.Draft; the date in the URL always wins over one in the body.
func (ec *EntriesController) SaveEntry(c *gin.Context) {
	date, ok := parseDateParam(c, "date")
	if !ok {
		return
	}

	var draft journal.Draft
	if err := c.ShouldBindJSON(&draft); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	draft.Date = date

	entry, err := draft.Entry()
	if err != nil {
		respondDomainError(c, err, "build entry")
		return
	}

	err = ec.store.SaveEntry(entry)
	if ec.events != nil {
		ec.events.LogSave(GetUserID(c), date, entry.ID, err)
	}
	if err != nil {
		respondDomainError(c, err, "save entry")
		return
	}

	c.JSON(http.StatusOK, entry)
}

// DeleteEntry handles DELETE /api/entries/:date
// Deleting a date without an entry is not an error.
func (ec *EntriesController) DeleteEntry(c *gin.Context) {
	date, ok := parseDateParam(c, "date")
	if !ok {
		return
	}

	existing, err := ec.store.GetEntryByDate(date)
	if err != nil {
		respondDomainError(c, err, "delete entry")
		return
	}
	if err := ec.store.DeleteEntry(date); err != nil {
		respondDomainError(c, err, "delete entry")
		return
	}
	if ec.events != nil {
		ec.events.LogDelete(GetUserID(c), date, existing != nil)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "entry deleted",
		"date":    date,
		"existed": existing != nil,
	})
}
