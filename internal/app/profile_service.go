package app

import (
	"context"
	"fmt"

	"bodytrack/internal/domain"
)

// ProfileService manages per-user height and goal settings.
type ProfileService struct {
	repo domain.ProfileRepository
}

// NewProfileService creates a ProfileService backed by the given repository.
func NewProfileService(repo domain.ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

// Ensure returns the user's profile, creating it on first contact.
func (s *ProfileService) Ensure(ctx context.Context, userID int64) (*domain.Profile, error) {
	p, err := s.repo.EnsureUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ensure user %d: %w", userID, err)
	}
	return p, nil
}

// SetHeight validates and stores the user's height.
func (s *ProfileService) SetHeight(ctx context.Context, userID int64, heightCm float64) error {
	if err := validateHeight(heightCm); err != nil {
		return err
	}
	return s.repo.SetUserHeight(ctx, userID, heightCm)
}

// SetGoal validates and stores the goal weight and fat percentage together.
func (s *ProfileService) SetGoal(ctx context.Context, userID int64, weightKg, fatPct float64) error {
	if err := validateEntry(weightKg, &fatPct); err != nil {
		return err
	}
	return s.repo.SetUserGoal(ctx, userID, weightKg, fatPct)
}
