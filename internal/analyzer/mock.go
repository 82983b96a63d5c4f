package analyzer

import (
	"context"
	"encoding/json"
	"strings"

	"journai/internal/journal"
)

// MockClient answers locally with a keyword guess so the API can run
// without provider credentials.
type MockClient struct{}

var mockKeywords = []struct {
	mood     journal.Mood
	keywords []string
}{
	{journal.MoodTired, []string{"tired", "exhausted", "drained", "sleepy"}},
	{journal.MoodAnxious, []string{"anxious", "nervous", "panic"}},
	{journal.MoodWorried, []string{"worried", "worry", "concerned"}},
	{journal.MoodAngry, []string{"angry", "furious", "mad"}},
	{journal.MoodFrustrated, []string{"frustrated", "annoyed", "stuck"}},
	{journal.MoodSad, []string{"sad", "lonely", "cried", "down"}},
	{journal.MoodGrateful, []string{"grateful", "thankful", "blessed"}},
	{journal.MoodExcited, []string{"excited", "can't wait", "thrilled"}},
	{journal.MoodPeaceful, []string{"peaceful", "calm", "relaxed"}},
	{journal.MoodContent, []string{"content", "satisfied"}},
	{journal.MoodHappy, []string{"happy", "great", "fun", "joy"}},
}

func (MockClient) Name() string {
	return "mock"
}

func (MockClient) Generate(_ context.Context, prompt string) (string, error) {
	entry := prompt
	if idx := strings.LastIndex(prompt, "JOURNAL ENTRY:"); idx != -1 {
		entry = prompt[idx+len("JOURNAL ENTRY:"):]
	}
	entry = strings.TrimSpace(entry)
	lowered := strings.ToLower(entry)

	mood := journal.MoodNeutral
	matched := ""
	for _, candidate := range mockKeywords {
		for _, keyword := range candidate.keywords {
			if strings.Contains(lowered, keyword) {
				mood, matched = candidate.mood, keyword
				break
			}
		}
		if matched != "" {
			break
		}
	}

	reason := "No strong emotional language found."
	if matched != "" {
		reason = "The entry mentions \"" + matched + "\"."
	}
	reply, err := json.Marshal(analysisReply{
		Mood:    mood.String(),
		Summary: mockSummary(entry),
		Reason:  reason,
	})
	if err != nil {
		return "", err
	}
	return string(reply), nil
}

func mockSummary(entry string) string {
	words := strings.Fields(entry)
	if len(words) == 0 {
		return ""
	}
	if len(words) > 20 {
		words = append(words[:20:20], "...")
	}
	return strings.Join(words, " ")
}
