// Package memory implements in-memory repositories for development and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"bodytrack/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	entries  []domain.Entry
	profiles map[int64]*domain.Profile

	entryIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		profiles: make(map[int64]*domain.Profile),
	}
}

// Ensure interfaces are met.
var _ domain.EntryRepository = (*DB)(nil)
var _ domain.ProfileRepository = (*DB)(nil)

// Ping always succeeds.
func (db *DB) Ping(ctx context.Context) error { return nil }

// --- EntryRepository ---

// AddEntry stores a new entry and derives its fat weight.
func (db *DB) AddEntry(ctx context.Context, userID int64, recordedAt time.Time, weightKg float64, fatPct *float64) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.entryIDCounter++
	id := db.entryIDCounter

	db.entries = append(db.entries, domain.Entry{
		ID:          id,
		UserID:      userID,
		RecordedAt:  recordedAt.UTC(),
		WeightKg:    weightKg,
		FatPct:      copyFloat(fatPct),
		FatWeightKg: domain.FatWeight(weightKg, fatPct),
		CreatedAt:   time.Now().UTC(),
	})
	return id, nil
}

// UpdateEntry rewrites an owned entry.
func (db *DB) UpdateEntry(ctx context.Context, id, userID int64, recordedAt *time.Time, weightKg float64, fatPct *float64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	i := db.indexOf(id, userID)
	if i < 0 {
		return false, nil
	}
	e := &db.entries[i]
	if recordedAt != nil {
		e.RecordedAt = recordedAt.UTC()
	}
	e.WeightKg = weightKg
	e.FatPct = copyFloat(fatPct)
	e.FatWeightKg = domain.FatWeight(weightKg, fatPct)
	return true, nil
}

// DeleteEntry removes an owned entry.
func (db *DB) DeleteEntry(ctx context.Context, id, userID int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	i := db.indexOf(id, userID)
	if i < 0 {
		return false, nil
	}
	db.entries = append(db.entries[:i], db.entries[i+1:]...)
	return true, nil
}

// EntryByDate returns the latest entry recorded on the calendar date of day.
func (db *DB) EntryByDate(ctx context.Context, userID int64, day time.Time) (*domain.Entry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	start, end := domain.DayBounds(day)
	var found *domain.Entry
	for i := range db.entries {
		e := &db.entries[i]
		if e.UserID != userID || e.RecordedAt.Before(start) || !e.RecordedAt.Before(end) {
			continue
		}
		if found == nil || newer(*e, *found) {
			found = e
		}
	}
	if found == nil {
		return nil, nil
	}
	ret := *found
	return &ret, nil
}

// ListRecentEntries lists the user's entries, newest first.
func (db *DB) ListRecentEntries(ctx context.Context, userID int64, limit int) ([]domain.Entry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := db.userEntries(userID)
	sort.SliceStable(result, func(i, j int) bool {
		return newer(result[i], result[j])
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// FatWeightSeries returns the user's fat-weight points, oldest first.
func (db *DB) FatWeightSeries(ctx context.Context, userID int64) ([]domain.SeriesPoint, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	entries := db.userEntries(userID)
	sort.SliceStable(entries, func(i, j int) bool {
		return newer(entries[j], entries[i])
	})
	var series []domain.SeriesPoint
	for _, e := range entries {
		if e.FatWeightKg == nil {
			continue
		}
		series = append(series, domain.SeriesPoint{
			RecordedAt:  e.RecordedAt,
			FatWeightKg: *e.FatWeightKg,
			WeightKg:    e.WeightKg,
		})
	}
	return series, nil
}

// LatestFatWeight returns the fat weight of the most recent entry that has one.
func (db *DB) LatestFatWeight(ctx context.Context, userID int64) (*float64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var latest *domain.Entry
	for i := range db.entries {
		e := &db.entries[i]
		if e.UserID == userID && e.FatWeightKg != nil && (latest == nil || newer(*e, *latest)) {
			latest = e
		}
	}
	if latest == nil {
		return nil, nil
	}
	return copyFloat(latest.FatWeightKg), nil
}

// LatestWeight returns the weight of the most recent entry.
func (db *DB) LatestWeight(ctx context.Context, userID int64) (*float64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var latest *domain.Entry
	for i := range db.entries {
		e := &db.entries[i]
		if e.UserID == userID && (latest == nil || newer(*e, *latest)) {
			latest = e
		}
	}
	if latest == nil {
		return nil, nil
	}
	w := latest.WeightKg
	return &w, nil
}

func (db *DB) indexOf(id, userID int64) int {
	for i, e := range db.entries {
		if e.ID == id && e.UserID == userID {
			return i
		}
	}
	return -1
}

func (db *DB) userEntries(userID int64) []domain.Entry {
	var result []domain.Entry
	for _, e := range db.entries {
		if e.UserID == userID {
			result = append(result, e)
		}
	}
	return result
}

// newer orders by recorded_at, then id, matching the SQL store.
func newer(a, b domain.Entry) bool {
	if !a.RecordedAt.Equal(b.RecordedAt) {
		return a.RecordedAt.After(b.RecordedAt)
	}
	return a.ID > b.ID
}

// --- ProfileRepository ---

// EnsureUser returns the profile, creating an empty one if needed.
func (db *DB) EnsureUser(ctx context.Context, userID int64) (*domain.Profile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return copyProfile(db.profile(userID)), nil
}

// GetUser returns the profile or nil.
func (db *DB) GetUser(ctx context.Context, userID int64) (*domain.Profile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.profiles[userID]
	if !ok {
		return nil, nil
	}
	return copyProfile(p), nil
}

// SetUserHeight upserts the height.
func (db *DB) SetUserHeight(ctx context.Context, userID int64, heightCm float64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.profile(userID).HeightCm = &heightCm
	return nil
}

// SetUserGoal upserts both goal fields.
func (db *DB) SetUserGoal(ctx context.Context, userID int64, weightKg, fatPct float64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	p := db.profile(userID)
	p.GoalWeightKg = &weightKg
	p.GoalFatPct = &fatPct
	return nil
}

func (db *DB) profile(userID int64) *domain.Profile {
	p, ok := db.profiles[userID]
	if !ok {
		p = &domain.Profile{ID: userID, CreatedAt: time.Now().UTC()}
		db.profiles[userID] = p
	}
	return p
}

func copyProfile(p *domain.Profile) *domain.Profile {
	ret := *p
	ret.HeightCm = copyFloat(p.HeightCm)
	ret.GoalWeightKg = copyFloat(p.GoalWeightKg)
	ret.GoalFatPct = copyFloat(p.GoalFatPct)
	return &ret
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
