package journal

import (
	"math"
	"sort"
	"time"

	"github.com/golang-sql/civil"
)

// MaxTrendPoints caps the word count trend series.
const MaxTrendPoints = 30

var weekdayOrder = [...]time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

type MoodShare struct {
	Mood       Mood `json:"mood"`
	Count      int  `json:"count"`
	Percentage int  `json:"percentage"`
}

type TrendPoint struct {
	Date       string `json:"date"`
	WordCount  int    `json:"word_count"`
	EntryCount int    `json:"entry_count"`
}

type DayActivity struct {
	Day     string `json:"day"`
	Entries int    `json:"entries"`
}

// InsightReport summarises a set of entries that were already scoped to one
// user and time window by the caller.
type InsightReport struct {
	TotalEntries         int           `json:"total_entries"`
	TotalWords           int           `json:"total_words"`
	AverageWordsPerEntry int           `json:"average_words_per_entry"`
	CurrentStreak        int           `json:"current_streak"`
	LongestStreak        int           `json:"longest_streak"`
	MoodDistribution     []MoodShare   `json:"mood_distribution"`
	WordCountTrend       []TrendPoint  `json:"word_count_trend"`
	WeeklyActivity       []DayActivity `json:"weekly_activity"`
}

type dayTotals struct {
	date    civil.Date
	words   int
	entries int
}

// BuildInsights aggregates entries into an InsightReport. now supplies the
// calendar date used as "today" for the current streak.
func BuildInsights(entries []Entry, now time.Time) InsightReport {
	total := len(entries)
	report := InsightReport{
		TotalEntries:     total,
		MoodDistribution: []MoodShare{},
		WordCountTrend:   []TrendPoint{},
	}

	moodIndex := make(map[Mood]int)
	days := make(map[civil.Date]*dayTotals)
	weekly := make(map[time.Weekday]int, len(weekdayOrder))
	timestamps := make([]time.Time, 0, total)

	for _, entry := range entries {
		words := WordCount(entry.Content)
		report.TotalWords += words

		mood := entry.Mood
		if mood < MoodNeutral || mood > MoodTired {
			mood = MoodNeutral
		}
		if idx, ok := moodIndex[mood]; ok {
			report.MoodDistribution[idx].Count++
		} else {
			moodIndex[mood] = len(report.MoodDistribution)
			report.MoodDistribution = append(report.MoodDistribution, MoodShare{Mood: mood, Count: 1})
		}

		date := civil.DateOf(entry.CreatedAt)
		bucket, ok := days[date]
		if !ok {
			bucket = &dayTotals{date: date}
			days[date] = bucket
		}
		bucket.words += words
		bucket.entries++

		weekly[entry.CreatedAt.Weekday()]++
		timestamps = append(timestamps, entry.CreatedAt)
	}

	if total > 0 {
		report.AverageWordsPerEntry = roundHalfUp(float64(report.TotalWords) / float64(total))
		for i := range report.MoodDistribution {
			report.MoodDistribution[i].Percentage = roundHalfUp(100 * float64(report.MoodDistribution[i].Count) / float64(total))
		}
	}
	// Stable on first-seen order so ties never flip between identical calls.
	sort.SliceStable(report.MoodDistribution, func(i, j int) bool {
		return report.MoodDistribution[i].Count > report.MoodDistribution[j].Count
	})

	report.WordCountTrend = trendSeries(days)

	report.WeeklyActivity = make([]DayActivity, 0, len(weekdayOrder))
	for _, day := range weekdayOrder {
		report.WeeklyActivity = append(report.WeeklyActivity, DayActivity{
			Day:     day.String()[:3],
			Entries: weekly[day],
		})
	}

	streaks := ComputeStreaks(timestamps, now)
	report.CurrentStreak = streaks.Current
	report.LongestStreak = streaks.Longest
	return report
}

func trendSeries(days map[civil.Date]*dayTotals) []TrendPoint {
	ordered := make([]*dayTotals, 0, len(days))
	for _, bucket := range days {
		ordered = append(ordered, bucket)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].date.Before(ordered[j].date)
	})
	if len(ordered) > MaxTrendPoints {
		ordered = ordered[:MaxTrendPoints]
	}

	points := make([]TrendPoint, 0, len(ordered))
	for _, bucket := range ordered {
		points = append(points, TrendPoint{
			Date:       bucket.date.String(),
			WordCount:  bucket.words,
			EntryCount: bucket.entries,
		})
	}
	return points
}

func roundHalfUp(value float64) int {
	return int(math.Floor(value + 0.5))
}
