package journal

import (
	"encoding/json"
	"strings"
)

// Tier identifies which parser produced an Analysis.
type Tier int

const (
	TierStructured Tier = iota + 1
	TierHeuristic
	TierDefault
)

func (t Tier) String() string {
	switch t {
	case TierStructured:
		return "structured"
	case TierHeuristic:
		return "heuristic"
	default:
		return "default"
	}
}

type replyParser struct {
	tier  Tier
	parse func(raw string) (Analysis, bool)
}

// Ordered by priority; the first parser that reports ok wins.
var replyParsers = []replyParser{
	{tier: TierStructured, parse: ParseStructured},
	{tier: TierHeuristic, parse: ParseHeuristic},
}

// Interpret turns a raw model reply into an Analysis. It never fails: when no
// parser recognises the reply it returns DefaultAnalysis.
func Interpret(raw string) Analysis {
	analysis, _ := InterpretWithTier(raw)
	return analysis
}

// InterpretWithTier is Interpret that also reports which tier answered.
func InterpretWithTier(raw string) (Analysis, Tier) {
	for _, p := range replyParsers {
		if analysis, ok := p.parse(raw); ok {
			return analysis, p.tier
		}
	}
	return DefaultAnalysis(), TierDefault
}

// ParseStructured reads the reply as a JSON object with mood, summary and
// reason keys. A reply wrapped in prose or code fences is retried on the
// span between the first '{' and the last '}'.
func ParseStructured(raw string) (Analysis, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Analysis{}, false
	}

	fields, ok := decodeObject(s)
	if !ok {
		start := strings.IndexByte(s, '{')
		end := strings.LastIndexByte(s, '}')
		if start == -1 || end <= start {
			return Analysis{}, false
		}
		fields, ok = decodeObject(s[start : end+1])
		if !ok {
			return Analysis{}, false
		}
	}

	return Analysis{
		Mood:    NormalizeMood(textField(fields, "mood")),
		Summary: textField(fields, "summary"),
		Reason:  textField(fields, "reason"),
	}, true
}

func decodeObject(s string) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

// textField renders a JSON value as text: strings as-is, scalars verbatim,
// null, objects and arrays as "".
func textField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" || strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		return ""
	}
	return text
}

// ParseHeuristic scans "key: value" lines. A line is attributed to the first
// of mood, summary, reason it mentions (case-insensitive) and later lines
// overwrite earlier ones for the same key. It reports ok when at least one
// line carried a value separator.
func ParseHeuristic(raw string) (Analysis, bool) {
	var (
		mood    string
		summary string
		reason  string
		found   bool
	)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		lowered := strings.ToLower(line)

		var target *string
		switch {
		case strings.Contains(lowered, "mood"):
			target = &mood
		case strings.Contains(lowered, "summary"):
			target = &summary
		case strings.Contains(lowered, "reason"):
			target = &reason
		default:
			continue
		}

		value, ok := lineValue(line)
		if !ok {
			continue
		}
		*target = value
		found = true
	}

	if !found {
		return Analysis{}, false
	}
	return Analysis{
		Mood:    NormalizeMood(mood),
		Summary: summary,
		Reason:  reason,
	}, true
}

func lineValue(line string) (string, bool) {
	idx := strings.IndexByte(line, ':')
	if idx == -1 {
		return "", false
	}
	return strings.Trim(line[idx+1:], " \t\r\"',"), true
}
