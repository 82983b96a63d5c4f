package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"journai/internal/journal"
	"journai/internal/store"
)

func (a *App) analyzeJournal(c *gin.Context) {
	user, _ := authUserFromContext(c)

	var payload analyzeJournalRequest
	if !mustJSON(c, &payload) {
		return
	}
	text := strings.TrimSpace(payload.Text)
	if text == "" {
		writeError(c, http.StatusBadRequest, "Journal text is required")
		return
	}

	analysis, tier := a.analyzer.AnalyzeWithTier(c.Request.Context(), text)
	a.logger.InfoContext(c.Request.Context(), "journal.analyzed",
		slog.String("user_id", user.ID),
		slog.Int("text_length", len(text)),
		slog.String("mood", analysis.Mood.String()),
		slog.String("tier", tier.String()),
	)
	c.JSON(http.StatusOK, analyzeJournalResponse{Analysis: analysis, Tier: tier.String()})
}

func (a *App) saveJournal(c *gin.Context) {
	user, _ := authUserFromContext(c)

	var payload saveJournalRequest
	if !mustJSON(c, &payload) {
		return
	}
	if strings.TrimSpace(payload.Text) == "" {
		writeError(c, http.StatusBadRequest, "Journal text is required")
		return
	}

	entry, err := a.store.CreateJournal(c.Request.Context(), user.ID, payload.toInput())
	if err != nil {
		a.internalError(c, "journal.save_failed", "Failed to save journal", err)
		return
	}
	a.logger.InfoContext(c.Request.Context(), "journal.saved",
		slog.String("user_id", user.ID),
		slog.String("journal_id", entry.ID),
		slog.String("mood", entry.Mood.String()),
	)
	c.JSON(http.StatusCreated, toJournalResponse(entry))
}

func (a *App) updateJournal(c *gin.Context) {
	user, _ := authUserFromContext(c)

	id, ok := entryIDParam(c)
	if !ok {
		writeError(c, http.StatusNotFound, "Journal not found")
		return
	}
	var payload saveJournalRequest
	if !mustJSON(c, &payload) {
		return
	}
	if strings.TrimSpace(payload.Text) == "" {
		writeError(c, http.StatusBadRequest, "Journal text is required")
		return
	}

	entry, err := a.store.UpdateJournal(c.Request.Context(), user.ID, id, payload.toInput())
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, http.StatusNotFound, "Journal not found")
		return
	}
	if err != nil {
		a.internalError(c, "journal.update_failed", "Failed to update journal", err,
			slog.String("journal_id", id.String()))
		return
	}
	c.JSON(http.StatusOK, toJournalResponse(entry))
}

// listJournals returns the entries of ?month=YYYY-MM in the app timezone,
// or the latest entries newest first when no month is given.
func (a *App) listJournals(c *gin.Context) {
	user, _ := authUserFromContext(c)
	ctx := c.Request.Context()

	month := strings.TrimSpace(c.Query("month"))
	if month != "" {
		window, err := journal.MonthRange(month, a.loc)
		if err != nil {
			writeError(c, http.StatusBadRequest, "month must be formatted as YYYY-MM")
			return
		}
		entries, err := a.store.ListJournalsInRange(ctx, user.ID, window.Start, window.End, nil)
		if err != nil {
			a.internalError(c, "journal.list_failed", "Failed to fetch user journal", err,
				slog.String("month", month))
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"month":    window.Name,
			"journals": toJournalResponses(entries),
		})
		return
	}

	limit := queryInt(c, "limit", latestEntriesLimit)
	if limit == 0 || limit > latestEntriesLimit {
		limit = latestEntriesLimit
	}
	offset := queryInt(c, "offset", 0)

	entries, err := a.store.ListJournals(ctx, user.ID, limit, offset)
	if err != nil {
		a.internalError(c, "journal.list_failed", "Failed to fetch user journal", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"limit":    limit,
		"offset":   offset,
		"journals": toJournalResponses(entries),
	})
}

func (a *App) getJournal(c *gin.Context) {
	user, _ := authUserFromContext(c)

	id, ok := entryIDParam(c)
	if !ok {
		writeError(c, http.StatusNotFound, "Journal not found")
		return
	}
	entry, err := a.store.GetJournal(c.Request.Context(), user.ID, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, http.StatusNotFound, "Journal not found")
		return
	}
	if err != nil {
		a.internalError(c, "journal.get_failed", "Failed to fetch journal", err,
			slog.String("journal_id", id.String()))
		return
	}
	c.JSON(http.StatusOK, toJournalResponse(entry))
}

func (a *App) deleteJournal(c *gin.Context) {
	user, _ := authUserFromContext(c)

	id, ok := entryIDParam(c)
	if !ok {
		writeError(c, http.StatusNotFound, "Journal not found")
		return
	}
	err := a.store.DeleteJournal(c.Request.Context(), user.ID, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, http.StatusNotFound, "Journal not found")
		return
	}
	if err != nil {
		a.internalError(c, "journal.delete_failed", "Failed to delete journal", err,
			slog.String("journal_id", id.String()))
		return
	}
	a.logger.InfoContext(c.Request.Context(), "journal.deleted",
		slog.String("user_id", user.ID),
		slog.String("journal_id", id.String()),
	)
	c.JSON(http.StatusOK, gin.H{"id": id.String(), "deleted": true})
}
