package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/montanaflynn/stats"
)

// CalendarDateLayout is the ISO-8601 calendar date layout used by contribution calendars.
const CalendarDateLayout = "2006-01-02"

// ErrUnorderedCalendar is returned by ValidateCalendar when dates are not strictly ascending.
var ErrUnorderedCalendar = errors.New("contribution calendar is not strictly ascending")

// ParseContributionDay builds a ContributionDay from an ISO-8601 date string.
func ParseContributionDay(date string, count int) (ContributionDay, error) {
	t, err := time.Parse(CalendarDateLayout, date)
	if err != nil {
		return ContributionDay{}, fmt.Errorf("invalid contribution date %q: %w", date, err)
	}
	return ContributionDay{Date: t, Count: count}, nil
}

// ValidateCalendar checks the precondition of ComputeStreaks: dates must be
// strictly ascending, so there are no duplicates either.
func ValidateCalendar(days []ContributionDay) error {
	for i := 1; i < len(days); i++ {
		if daysBetween(days[i-1].Date, days[i].Date) <= 0 {
			return fmt.Errorf("%w: %s follows %s", ErrUnorderedCalendar,
				days[i].Date.Format(CalendarDateLayout), days[i-1].Date.Format(CalendarDateLayout))
		}
	}
	return nil
}

// scanState is the state of the backward scan computing the current streak.
type scanState int

const (
	notStarted scanState = iota
	counting
)

// ComputeStreaks derives the current streak, the longest streak and the
// number of active days from a calendar sorted by ascending date.
// Calling it with unsorted or duplicated dates gives undefined results.
func ComputeStreaks(days []ContributionDay, today time.Time) StreakResult {
	var result StreakResult

	state := notStarted
	for i := len(days) - 1; i >= 0; i-- {
		// Too much time has passed for the days seen so far to reach today.
		if daysBetween(days[i].Date, today) > result.CurrentStreak {
			break
		}
		if days[i].Count > 0 {
			state = counting
			result.CurrentStreak++
			continue
		}
		if state == counting {
			break
		}
	}

	run := 0
	for _, day := range days {
		if day.Count <= 0 {
			run = 0
			continue
		}
		result.ActiveDays++
		run++
		if run > result.LongestStreak {
			result.LongestStreak = run
		}
	}

	return result
}

// SummarizeCalendar returns the total number of contributions and the
// average per calendar day, rounded to two decimals.
func SummarizeCalendar(days []ContributionDay) ActivitySummary {
	if len(days) == 0 {
		return ActivitySummary{}
	}
	counts := make(stats.Float64Data, 0, len(days))
	for _, day := range days {
		counts = append(counts, float64(day.Count))
	}
	total, _ := counts.Sum()
	mean, _ := counts.Mean()
	avg, _ := stats.Round(mean, 2)
	return ActivitySummary{
		TotalContributions: int(total),
		DailyAverage:       avg,
	}
}

// daysBetween returns the number of calendar days from a to b, ignoring the time of day.
func daysBetween(a, b time.Time) int {
	return int(calendarDate(b).Sub(calendarDate(a)).Hours() / 24)
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
