package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"journai/internal/journal"
)

// moodFilter reads ?mood=. Empty and "all" mean no filter; any other value
// is normalised, so unknown labels filter on neutral.
func moodFilter(raw string) *journal.Mood {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return nil
	}
	mood := journal.NormalizeMood(raw)
	return &mood
}

func (a *App) journalInsights(c *gin.Context) {
	user, _ := authUserFromContext(c)
	ctx := c.Request.Context()

	now := a.now().In(a.loc)
	window := journal.ResolveRange(c.Query("range"), now)
	mood := moodFilter(c.Query("mood"))

	entries, err := a.store.ListJournalsInRange(ctx, user.ID, window.Start, window.End, mood)
	if err != nil {
		a.internalError(c, "journal.insights_failed", "Failed to fetch journal insights", err,
			slog.String("range", window.Name))
		return
	}

	report := journal.BuildInsights(entries, now)
	a.logger.InfoContext(ctx, "journal.insights",
		slog.String("user_id", user.ID),
		slog.String("range", window.Name),
		slog.Int("total_entries", report.TotalEntries),
	)
	c.JSON(http.StatusOK, insightsResponse{
		InsightReport: report,
		Range:         window.Name,
		MoodFilter:    mood,
		From:          window.Start,
		To:            window.End,
	})
}
