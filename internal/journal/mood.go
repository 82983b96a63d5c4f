package journal

import "strings"

// Mood is one of the fixed journal mood labels.
type Mood int

const (
	MoodNeutral Mood = iota
	MoodHappy
	MoodSad
	MoodAnxious
	MoodExcited
	MoodAngry
	MoodPeaceful
	MoodGrateful
	MoodFrustrated
	MoodWorried
	MoodContent
	MoodTired
)

var moodLabels = [...]string{
	MoodNeutral:    "neutral",
	MoodHappy:      "happy",
	MoodSad:        "sad",
	MoodAnxious:    "anxious",
	MoodExcited:    "excited",
	MoodAngry:      "angry",
	MoodPeaceful:   "peaceful",
	MoodGrateful:   "grateful",
	MoodFrustrated: "frustrated",
	MoodWorried:    "worried",
	MoodContent:    "content",
	MoodTired:      "tired",
}

var moodsByLabel = map[string]Mood{
	"happy":      MoodHappy,
	"sad":        MoodSad,
	"anxious":    MoodAnxious,
	"neutral":    MoodNeutral,
	"excited":    MoodExcited,
	"angry":      MoodAngry,
	"peaceful":   MoodPeaceful,
	"grateful":   MoodGrateful,
	"frustrated": MoodFrustrated,
	"worried":    MoodWorried,
	"content":    MoodContent,
	"tired":      MoodTired,
}

// NormalizeMood maps free text to a Mood. Anything that is not one of the
// twelve labels (after trimming and lower-casing) becomes MoodNeutral.
func NormalizeMood(raw string) Mood {
	mood, ok := moodsByLabel[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return MoodNeutral
	}
	return mood
}

// ParseMood is NormalizeMood that also reports whether the input matched a label.
func ParseMood(raw string) (Mood, bool) {
	mood, ok := moodsByLabel[strings.ToLower(strings.TrimSpace(raw))]
	return mood, ok
}

// AllMoods returns the labels in declaration order.
func AllMoods() []Mood {
	moods := make([]Mood, len(moodLabels))
	for i := range moodLabels {
		moods[i] = Mood(i)
	}
	return moods
}

func (m Mood) String() string {
	if m < 0 || int(m) >= len(moodLabels) {
		return moodLabels[MoodNeutral]
	}
	return moodLabels[m]
}

func (m Mood) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText never fails; unknown labels decode as neutral.
func (m *Mood) UnmarshalText(text []byte) error {
	*m = NormalizeMood(string(text))
	return nil
}
