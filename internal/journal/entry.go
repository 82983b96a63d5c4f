package journal

import "time"

// Entry is the read-only view of a stored journal entry used by the
// aggregation code. CreatedAt is a local wall-clock time; only its calendar
// date and weekday matter here.
type Entry struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	Mood      Mood
	Summary   string
	Reason    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Analysis is the mood/summary/reason triple extracted from a model reply.
type Analysis struct {
	Mood    Mood   `json:"mood"`
	Summary string `json:"summary"`
	Reason  string `json:"reason"`
}

const (
	defaultSummary = "Please share your journal thoughts and experiences for analysis"
	defaultReason  = "Unable to analyze the provided content. Please write about your day, feelings, or experiences."
)

// DefaultAnalysis is returned whenever nothing usable can be read from the
// model, including when the model call itself failed.
func DefaultAnalysis() Analysis {
	return Analysis{
		Mood:    MoodNeutral,
		Summary: defaultSummary,
		Reason:  defaultReason,
	}
}
