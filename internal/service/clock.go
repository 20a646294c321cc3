package service

import (
	"time"

	"taskflow/internal/model"
)

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// endOfDay is the conventional due-date instant for generated tasks:
// 23:59:59 of the given calendar day.
func endOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, 0, t.Location())
}

func dedupDay(t time.Time) string {
	return t.Format("2006-01-02")
}

// addFrequency advances a date by exactly one frequency unit using
// calendar arithmetic, not elapsed time.
func addFrequency(t time.Time, f model.Frequency) time.Time {
	switch f {
	case model.FrequencyDaily:
		return t.AddDate(0, 0, 1)
	case model.FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case model.FrequencyMonthly:
		return t.AddDate(0, 1, 0)
	}
	return t
}
