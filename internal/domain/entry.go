// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a row does not exist or is not owned by the caller.
var ErrNotFound = errors.New("not found")

// Entry represents a single weight / body-fat measurement for one calendar day.
type Entry struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"userId" db:"user_id"`
	RecordedAt  time.Time `json:"recordedAt" db:"recorded_at"`
	WeightKg    float64   `json:"weightKg" db:"weight_kg"`
	FatPct      *float64  `json:"fatPct,omitempty" db:"fat_pct"`
	FatWeightKg *float64  `json:"fatWeightKg,omitempty" db:"fat_weight_kg"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Day returns the calendar date of the entry as YYYY-MM-DD.
func (e Entry) Day() string {
	return DayString(e.RecordedAt)
}

// SeriesPoint is one fat-weight observation, oldest first when returned by a repository.
type SeriesPoint struct {
	RecordedAt  time.Time `json:"recordedAt" db:"recorded_at"`
	FatWeightKg float64   `json:"fatWeightKg" db:"fat_weight_kg"`
	WeightKg    float64   `json:"weightKg" db:"weight_kg"`
}

// EntryRepository is the port for entry persistence. Every method is scoped to userID.
type EntryRepository interface {
	AddEntry(ctx context.Context, userID int64, recordedAt time.Time, weightKg float64, fatPct *float64) (int64, error)
	// UpdateEntry replaces weight and fat of an owned entry. A nil recordedAt keeps the stored date.
	UpdateEntry(ctx context.Context, id, userID int64, recordedAt *time.Time, weightKg float64, fatPct *float64) (bool, error)
	DeleteEntry(ctx context.Context, id, userID int64) (bool, error)
	// EntryByDate matches on the calendar date of recorded_at, ignoring time of day.
	EntryByDate(ctx context.Context, userID int64, day time.Time) (*Entry, error)
	// ListRecentEntries returns entries newest first. limit <= 0 returns all of them.
	ListRecentEntries(ctx context.Context, userID int64, limit int) ([]Entry, error)
	FatWeightSeries(ctx context.Context, userID int64) ([]SeriesPoint, error)
	LatestFatWeight(ctx context.Context, userID int64) (*float64, error)
	LatestWeight(ctx context.Context, userID int64) (*float64, error)
}

const dayLayout = "2006-01-02"

// referenceHour is the fixed time of day every recorded_at is normalised to.
const referenceHour = 12

// DayOf normalises t to its calendar date at the reference time, in UTC.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, referenceHour, 0, 0, 0, time.UTC)
}

// DayBounds returns the [start, end) UTC range covering the calendar date of t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// ParseDay parses a YYYY-MM-DD string into a normalised entry date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return DayOf(t), nil
}

// DayString formats the calendar date of t as YYYY-MM-DD.
func DayString(t time.Time) string {
	return t.Format(dayLayout)
}
