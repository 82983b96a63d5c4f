package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"journai/internal/journal"
	"journai/internal/store"
)

type analyzeJournalRequest struct {
	Text string `json:"text"`
}

type analyzeJournalResponse struct {
	journal.Analysis
	Tier string `json:"tier"`
}

// saveJournalRequest is shared by save and update. Missing analysis fields
// default to a neutral mood and empty strings.
type saveJournalRequest struct {
	Text    string  `json:"text"`
	Title   *string `json:"title"`
	Mood    *string `json:"mood"`
	Summary *string `json:"summary"`
	Reason  *string `json:"reason"`
}

func (r saveJournalRequest) toInput() store.JournalInput {
	content := strings.TrimSpace(r.Text)
	in := store.JournalInput{
		Content: content,
		Mood:    journal.MoodNeutral,
	}
	if r.Mood != nil {
		in.Mood = journal.NormalizeMood(*r.Mood)
	}
	if r.Summary != nil {
		in.Summary = strings.TrimSpace(*r.Summary)
	}
	if r.Reason != nil {
		in.Reason = strings.TrimSpace(*r.Reason)
	}
	if r.Title != nil {
		in.Title = strings.TrimSpace(*r.Title)
	}
	if in.Title == "" {
		in.Title = journal.GenerateTitle(content)
	}
	return in
}

type journalResponse struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	Mood      journal.Mood `json:"mood"`
	Summary   string       `json:"summary"`
	Reason    string       `json:"reason"`
	WordCount int          `json:"word_count"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func toJournalResponse(entry journal.Entry) journalResponse {
	return journalResponse{
		ID:        entry.ID,
		Title:     entry.Title,
		Content:   entry.Content,
		Mood:      entry.Mood,
		Summary:   entry.Summary,
		Reason:    entry.Reason,
		WordCount: journal.WordCount(entry.Content),
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}
}

func toJournalResponses(entries []journal.Entry) []journalResponse {
	out := make([]journalResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toJournalResponse(entry))
	}
	return out
}

type insightsResponse struct {
	journal.InsightReport
	Range      string        `json:"range"`
	MoodFilter *journal.Mood `json:"mood_filter"`
	From       time.Time     `json:"from"`
	To         time.Time     `json:"to"`
}

type meResponse struct {
	User         store.User `json:"user"`
	JournalCount int        `json:"journal_count"`
}

// entryIDParam parses the :id path segment. Malformed ids cannot name an
// entry, so callers answer them as not found.
func entryIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// queryInt reads a non-negative integer query parameter, falling back to def
// when absent or malformed.
func queryInt(c *gin.Context, key string, def int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}
