package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/journal/internal/analytics"
	"github.com/mrlokans/journal/internal/entities"
	"github.com/mrlokans/journal/internal/journal"
)

const maxTagLimit = 100

// StatsController serves dashboard statistics and the reference data an entry editor needs.
type StatsController struct {
	stats StatsProvider
}

func NewStatsController(stats StatsProvider) *StatsController {
	return &StatsController{stats: stats}
}

// GetStats handles GET /api/stats?limit=N
// limit caps the number of top tags (default analytics.DefaultTagLimit).
func (sc *StatsController) GetStats(c *gin.Context) {
	limit := parseQueryInt(c, "limit", analytics.DefaultTagLimit, maxTagLimit)
	c.JSON(http.StatusOK, sc.stats.Summary(limit))
}

// MoodOption describes a mood kind for pickers.
type MoodOption struct {
	Value int    `json:"value"`
	Name  string `json:"name"`
}

// GetReference handles GET /api/reference
func (sc *StatsController) GetReference(c *gin.Context) {
	kinds := entities.AllMoodKinds()
	moods := make([]MoodOption, 0, len(kinds))
	for _, kind := range kinds {
		moods = append(moods, MoodOption{Value: int(kind), Name: kind.String()})
	}

	c.JSON(http.StatusOK, gin.H{
		"moods":               moods,
		"default_mood":        journal.DefaultPrimaryMood.String(),
		"max_secondary_moods": journal.MaxSecondaryMoods,
		"categories":          journal.Categories(),
		"suggested_tags":      journal.SuggestedTags(),
	})
}
