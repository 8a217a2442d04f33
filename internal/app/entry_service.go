package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bodytrack/internal/domain"
)

// EntryService encapsulates measurement use cases.
type EntryService struct {
	repo domain.EntryRepository
}

// NewEntryService creates an EntryService backed by the given repository.
func NewEntryService(repo domain.EntryRepository) *EntryService {
	return &EntryService{repo: repo}
}

// Record validates and stores a new measurement for the given day.
func (s *EntryService) Record(ctx context.Context, userID int64, day time.Time, weightKg float64, fatPct *float64) (*domain.Entry, error) {
	if err := validateEntry(weightKg, fatPct); err != nil {
		return nil, err
	}
	day = domain.DayOf(day)
	id, err := s.repo.AddEntry(ctx, userID, day, weightKg, fatPct)
	if err != nil {
		return nil, fmt.Errorf("add entry: %w", err)
	}
	return &domain.Entry{
		ID:          id,
		UserID:      userID,
		RecordedAt:  day,
		WeightKg:    weightKg,
		FatPct:      fatPct,
		FatWeightKg: domain.FatWeight(weightKg, fatPct),
	}, nil
}

// Update rewrites an owned entry. A nil day keeps the stored date.
// Returns domain.ErrNotFound when the entry is gone or belongs to someone else.
func (s *EntryService) Update(ctx context.Context, id, userID int64, day *time.Time, weightKg float64, fatPct *float64) error {
	if err := validateEntry(weightKg, fatPct); err != nil {
		return err
	}
	if day != nil {
		d := domain.DayOf(*day)
		day = &d
	}
	ok, err := s.repo.UpdateEntry(ctx, id, userID, day, weightKg, fatPct)
	if err != nil {
		return fmt.Errorf("update entry %d: %w", id, err)
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes an owned entry.
func (s *EntryService) Delete(ctx context.Context, id, userID int64) error {
	ok, err := s.repo.DeleteEntry(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// Conflict returns the entry already recorded on day, ignoring excludeID
// (the entry being edited). Returns nil when the day is free.
func (s *EntryService) Conflict(ctx context.Context, userID int64, day time.Time, excludeID int64) (*domain.Entry, error) {
	e, err := s.repo.EntryByDate(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("entry by date: %w", err)
	}
	if e == nil || (excludeID != 0 && e.ID == excludeID) {
		return nil, nil
	}
	return e, nil
}

// Replace overwrites the conflicting entry with the pending values. When an
// existing entry was being edited into that day, the edited entry is removed
// so only one entry remains for the date.
func (s *EntryService) Replace(ctx context.Context, userID, conflictID, editedID int64, day time.Time, weightKg float64, fatPct *float64) error {
	if err := s.Update(ctx, conflictID, userID, &day, weightKg, fatPct); err != nil {
		return err
	}
	if editedID == 0 || editedID == conflictID {
		return nil
	}
	if err := s.Delete(ctx, editedID, userID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

// List returns every entry of the user, newest first.
func (s *EntryService) List(ctx context.Context, userID int64) ([]domain.Entry, error) {
	return s.repo.ListRecentEntries(ctx, userID, 0)
}

func validateEntry(weightKg float64, fatPct *float64) error {
	if err := validateWeight(weightKg); err != nil {
		return err
	}
	return validateFatPct(fatPct)
}
