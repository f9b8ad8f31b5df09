package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mrlokans/journal/internal/analytics"
	"github.com/mrlokans/journal/internal/entities"
	"github.com/mrlokans/journal/internal/journal"
)

// defaultListLimit caps list results so a long journal does not flood the agent's context.
const defaultListLimit = 50

type tools struct {
	entries EntryReader
	stats   StatsProvider
}

// entryView is what agents see for an entry: the editor's view, with mood names instead of rows.
type entryView struct {
	journal.Draft
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type entryList struct {
	Entries []entryView `json:"entries"`
	Total   int         `json:"total"`
}

func (t *tools) register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("ping",
		mcp.WithDescription("Responds with 'pong' to check if the journal MCP server is alive."),
	), t.ping)

	s.AddTool(mcp.NewTool("get_entry",
		mcp.WithDescription("Returns the journal entry for one day, or an error when that day has no entry."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Day of the entry, yyyy-MM-dd.")),
	), t.getEntry)

	s.AddTool(mcp.NewTool("list_entries",
		mcp.WithDescription("Lists journal entries, newest first. Optionally restricted to a date range."),
		mcp.WithString("from", mcp.Description("First day to include, yyyy-MM-dd.")),
		mcp.WithString("to", mcp.Description("Last day to include, yyyy-MM-dd.")),
		mcp.WithNumber("limit", mcp.Description(fmt.Sprintf("Maximum number of entries (default %d).", defaultListLimit))),
	), t.listEntries)

	s.AddTool(mcp.NewTool("search_entries",
		mcp.WithDescription("Finds entries whose content or tags contain the term, ignoring case."),
		mcp.WithString("term", mcp.Required(), mcp.Description("Text to look for.")),
		mcp.WithNumber("limit", mcp.Description(fmt.Sprintf("Maximum number of entries (default %d).", defaultListLimit))),
	), t.searchEntries)

	s.AddTool(mcp.NewTool("filter_by_mood",
		mcp.WithDescription("Lists entries that carry a mood, as primary or secondary."),
		mcp.WithString("mood", mcp.Required(), mcp.Description("Mood name, e.g. Happy, Calm, Stressed.")),
		mcp.WithNumber("limit", mcp.Description(fmt.Sprintf("Maximum number of entries (default %d).", defaultListLimit))),
	), t.filterByMood)

	s.AddTool(mcp.NewTool("filter_by_tag",
		mcp.WithDescription("Lists entries with a tag, matched exactly but ignoring case."),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Tag name.")),
		mcp.WithNumber("limit", mcp.Description(fmt.Sprintf("Maximum number of entries (default %d).", defaultListLimit))),
	), t.filterByTag)

	s.AddTool(mcp.NewTool("journal_stats",
		mcp.WithDescription("Returns the writing streak, entry count, mood distribution, most used tags and first/last entry dates."),
		mcp.WithNumber("limit", mcp.Description(fmt.Sprintf("How many top tags to return (default %d).", analytics.DefaultTagLimit))),
	), t.journalStats)
}

func (t *tools) ping(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("pong"), nil
}

func (t *tools) getEntry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, errResult := requiredDate(request, "date")
	if errResult != nil {
		return errResult, nil
	}

	entry, err := t.entries.GetEntryByDate(date)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load entry: %v", err)), nil
	}
	if entry == nil {
		return mcp.NewToolResultError(fmt.Sprintf("No entry for %s.", date)), nil
	}
	return jsonResult(viewOf(entry))
}

func (t *tools) listEntries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, errResult := optionalDate(request, "from")
	if errResult != nil {
		return errResult, nil
	}
	to, errResult := optionalDate(request, "to")
	if errResult != nil {
		return errResult, nil
	}

	var list []entities.Entry
	var err error
	if from.IsZero() && to.IsZero() {
		list, err = t.entries.GetAllEntries()
	} else {
		list, err = t.entries.GetEntriesBetween(from, to)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list entries: %v", err)), nil
	}
	return listResult(list, limitArg(request, defaultListLimit))
}

func (t *tools) searchEntries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	term, ok := request.Params.Arguments["term"].(string)
	if !ok || strings.TrimSpace(term) == "" {
		return mcp.NewToolResultError("'term' parameter is required and must be a non-empty string."), nil
	}

	list, err := t.entries.SearchEntries(term)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search entries: %v", err)), nil
	}
	return listResult(list, limitArg(request, defaultListLimit))
}

func (t *tools) filterByMood(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, ok := request.Params.Arguments["mood"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("'mood' parameter is required and must be a non-empty string."), nil
	}
	kind, err := entities.ParseMoodKind(name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Unknown mood %q. Known moods: %s.", name, moodNames())), nil
	}

	list, err := t.entries.FilterByMood(kind)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to filter entries: %v", err)), nil
	}
	return listResult(list, limitArg(request, defaultListLimit))
}

func (t *tools) filterByTag(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag, ok := request.Params.Arguments["tag"].(string)
	if !ok || strings.TrimSpace(tag) == "" {
		return mcp.NewToolResultError("'tag' parameter is required and must be a non-empty string."), nil
	}

	list, err := t.entries.FilterByTag(tag)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to filter entries: %v", err)), nil
	}
	return listResult(list, limitArg(request, defaultListLimit))
}

func (t *tools) journalStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.stats.Summary(limitArg(request, analytics.DefaultTagLimit)))
}

func viewOf(entry *entities.Entry) entryView {
	view := entryView{Draft: journal.DraftFromEntry(entry)}
	if !entry.CreatedAt.IsZero() {
		view.CreatedAt = entry.CreatedAt.Format(time.RFC3339)
	}
	if entry.UpdatedAt != nil {
		view.UpdatedAt = entry.UpdatedAt.Format(time.RFC3339)
	}
	return view
}

func listResult(list []entities.Entry, limit int) (*mcp.CallToolResult, error) {
	result := entryList{Entries: []entryView{}, Total: len(list)}
	for i := range list {
		if len(result.Entries) >= limit {
			break
		}
		result.Entries = append(result.Entries, viewOf(&list[i]))
	}
	return jsonResult(result)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize result to JSON: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func requiredDate(request mcp.CallToolRequest, name string) (entities.Date, *mcp.CallToolResult) {
	raw, ok := request.Params.Arguments[name].(string)
	if !ok || raw == "" {
		return entities.Date{}, mcp.NewToolResultError(fmt.Sprintf("'%s' parameter is required and must be a yyyy-MM-dd string.", name))
	}
	date, err := entities.ParseDate(raw)
	if err != nil {
		return entities.Date{}, mcp.NewToolResultError(err.Error())
	}
	return date, nil
}

func optionalDate(request mcp.CallToolRequest, name string) (entities.Date, *mcp.CallToolResult) {
	if raw, ok := request.Params.Arguments[name].(string); !ok || raw == "" {
		return entities.Date{}, nil
	}
	return requiredDate(request, name)
}

// limitArg reads a positive integer argument. JSON numbers arrive as float64.
func limitArg(request mcp.CallToolRequest, def int) int {
	switch v := request.Params.Arguments["limit"].(type) {
	case float64:
		if v >= 1 {
			return int(v)
		}
	case int:
		if v >= 1 {
			return v
		}
	}
	return def
}

func moodNames() string {
	kinds := entities.AllMoodKinds()
	names := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		names = append(names, kind.String())
	}
	return strings.Join(names, ", ")
}
