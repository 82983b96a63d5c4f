package journal

import (
	"sort"
	"time"

	"github.com/golang-sql/civil"
)

// Streaks holds the writing streaks in calendar days.
type Streaks struct {
	Current int `json:"current_streak"`
	Longest int `json:"longest_streak"`
}

// ComputeStreaks reduces timestamps to distinct calendar dates and measures
// runs of consecutive days. The current streak counts backwards from the
// calendar date of today and is 0 when today has no entry. Timestamps are
// expected to share one location; today is read in that location.
func ComputeStreaks(timestamps []time.Time, today time.Time) Streaks {
	if len(timestamps) == 0 {
		return Streaks{}
	}
	today = today.In(timestamps[0].Location())

	present := make(map[civil.Date]struct{}, len(timestamps))
	days := make([]civil.Date, 0, len(timestamps))
	for _, ts := range timestamps {
		day := civil.DateOf(ts)
		if _, ok := present[day]; ok {
			continue
		}
		present[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})

	return Streaks{
		Current: currentStreak(present, civil.DateOf(today)),
		Longest: longestStreak(days),
	}
}

// longestStreak expects distinct dates sorted ascending.
func longestStreak(days []civil.Date) int {
	if len(days) == 0 {
		return 0
	}
	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i-1].AddDays(1) == days[i] {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

func currentStreak(present map[civil.Date]struct{}, today civil.Date) int {
	if _, ok := present[today]; !ok {
		return 0
	}
	streak := 1
	for {
		if _, ok := present[today.AddDays(-streak)]; !ok {
			return streak
		}
		streak++
	}
}
