package main

import (
	"math"
	"sort"
	"time"
)

// streakRule decides which habit logs keep a streak alive.
type streakRule string

const (
	// streakAnyLog counts a day as kept when any log row exists for it,
	// whatever its value.
	streakAnyLog streakRule = "any"
	// streakCompletedOnly counts a day only when a log for it reached the
	// habit's target (completed = value >= target_value).
	streakCompletedOnly streakRule = "completed"
)

// parseStreakRule maps a query value to a rule; anything unrecognised is streakAnyLog.
func parseStreakRule(s string) streakRule {
	if streakRule(s) == streakCompletedOnly {
		return streakCompletedOnly
	}
	return streakAnyLog
}

// completionWindowDays is the trailing window used by dashboards.
const completionWindowDays = 7

// habitStats is the per-habit consistency summary shown on dashboards.
type habitStats struct {
	CurrentStreak  int     `json:"current_streak"`
	LongestStreak  int     `json:"longest_streak"`
	CompletionRate float64 `json:"completion_rate"`
	DoneToday      bool    `json:"done_today"`
	Rule           string  `json:"rule"`
}

// civilDay maps t to midnight UTC of its calendar date in t's own location, so
// that day arithmetic is unaffected by DST or the location of scanned values.
func civilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// uniqueLogDays returns the distinct calendar days of logs that satisfy rule,
// sorted most recent first.
func uniqueLogDays(logs []habitLog, rule streakRule) []time.Time {
	seen := make(map[time.Time]bool, len(logs))
	days := make([]time.Time, 0, len(logs))
	for _, l := range logs {
		if rule == streakCompletedOnly && !l.Completed {
			continue
		}
		d := civilDay(l.Date.Time)
		if seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	return days
}

// calculateStreak counts consecutive calendar days ending today or yesterday.
// If the most recent kept day is older than yesterday the streak is broken (0).
func calculateStreak(logs []habitLog, today time.Time, rule streakRule) int {
	days := uniqueLogDays(logs, rule)
	if len(days) == 0 {
		return 0
	}

	t := civilDay(today)
	yesterday := t.AddDate(0, 0, -1)
	if !days[0].Equal(t) && !days[0].Equal(yesterday) {
		return 0
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		if !days[i].Equal(days[i-1].AddDate(0, 0, -1)) {
			break
		}
		streak++
	}
	return streak
}

// longestStreak returns the longest run of consecutive kept days anywhere in logs.
func longestStreak(logs []habitLog, rule streakRule) int {
	days := uniqueLogDays(logs, rule)
	if len(days) == 0 {
		return 0
	}

	longest, current := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Equal(days[i-1].AddDate(0, 0, -1)) {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 1
		}
	}
	return longest
}

// completionRate returns the percentage of days in the trailing window (ending
// today, inclusive) that have a completed log. Logs outside the window are
// ignored; a non-positive window yields 0.
func completionRate(logs []habitLog, today time.Time, window int) float64 {
	if window <= 0 {
		return 0
	}
	t := civilDay(today)
	start := t.AddDate(0, 0, -(window - 1))

	done := make(map[time.Time]bool)
	for _, l := range logs {
		if !l.Completed {
			continue
		}
		d := civilDay(l.Date.Time)
		if d.Before(start) || d.After(t) {
			continue
		}
		done[d] = true
	}
	rate := float64(len(done)) / float64(window) * 100
	return math.Round(rate*10) / 10
}

// computeHabitStats bundles streaks, completion rate, and today's state for one habit.
func computeHabitStats(logs []habitLog, today time.Time, rule streakRule) habitStats {
	stats := habitStats{
		CurrentStreak:  calculateStreak(logs, today, rule),
		LongestStreak:  longestStreak(logs, rule),
		CompletionRate: completionRate(logs, today, completionWindowDays),
		Rule:           string(rule),
	}
	t := civilDay(today)
	for _, l := range logs {
		if l.Completed && civilDay(l.Date.Time).Equal(t) {
			stats.DoneToday = true
			break
		}
	}
	return stats
}

// isCompleted reports whether value meets the habit's daily target.
func isCompleted(value, target float64) bool {
	return value >= target
}
