package domain

import (
	"context"
	"time"
)

// Profile holds per-user settings. ID equals the chat user identifier.
type Profile struct {
	ID           int64     `json:"id" db:"user_id"`
	HeightCm     *float64  `json:"heightCm,omitempty" db:"height_cm"`
	GoalWeightKg *float64  `json:"goalWeightKg,omitempty" db:"goal_weight_kg"`
	GoalFatPct   *float64  `json:"goalFatPct,omitempty" db:"goal_fat_pct"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// HasGoal reports whether both goal fields are set.
func (p *Profile) HasGoal() bool {
	return p != nil && p.GoalWeightKg != nil && p.GoalFatPct != nil
}

// GoalFatWeight returns the fat mass implied by the goal, or nil without a goal.
func (p *Profile) GoalFatWeight() *float64 {
	if !p.HasGoal() {
		return nil
	}
	return FatWeight(*p.GoalWeightKg, p.GoalFatPct)
}

// ProfileRepository is the port for profile persistence.
type ProfileRepository interface {
	// EnsureUser returns the profile for userID, creating an empty one on first use.
	EnsureUser(ctx context.Context, userID int64) (*Profile, error)
	GetUser(ctx context.Context, userID int64) (*Profile, error)
	SetUserHeight(ctx context.Context, userID int64, heightCm float64) error
	SetUserGoal(ctx context.Context, userID int64, weightKg, fatPct float64) error
}
