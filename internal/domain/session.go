package domain

import (
	"context"
	"time"
)

// Step identifies where a user is inside a multi-step dialog.
type Step string

const (
	StepIdle         Step = ""
	StepAddWeight    Step = "add:weight"
	StepAddFat       Step = "add:fat"
	StepAddDate      Step = "add:date"
	StepAddConfirm   Step = "add:confirm"
	StepEditChoosing Step = "edit:choosing"
	StepEditWeight   Step = "edit:weight"
	StepEditFat      Step = "edit:fat"
	StepEditDate     Step = "edit:date"
	StepEditConfirm  Step = "edit:confirm"
	StepHeight       Step = "height"
	StepGoalWeight   Step = "goal:weight"
	StepGoalFat      Step = "goal:fat"
)

// Session is the in-progress conversation state of one user. Only the fields
// relevant to the current Step are populated.
type Session struct {
	UserID int64 `json:"userId"`
	Step   Step  `json:"step"`

	WeightKg *float64 `json:"weightKg,omitempty"`
	FatPct   *float64 `json:"fatPct,omitempty"`
	// FatSet distinguishes "fat % skipped" from "fat % not asked yet".
	FatSet bool `json:"fatSet,omitempty"`

	// Date is the day picked in the calendar, pending conflict resolution.
	Date *time.Time `json:"date,omitempty"`
	// Month is the first day of the month currently shown by the calendar.
	Month *time.Time `json:"month,omitempty"`

	EntryID      int64      `json:"entryId,omitempty"`
	OriginalDate *time.Time `json:"originalDate,omitempty"`
	ConflictID   int64      `json:"conflictId,omitempty"`

	Page    int     `json:"page,omitempty"`
	Entries []Entry `json:"entries,omitempty"`

	GoalWeightKg *float64 `json:"goalWeightKg,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// Idle reports whether no flow is in progress.
func (s *Session) Idle() bool {
	return s == nil || s.Step == StepIdle
}

// Reset discards every collected field and returns the session to idle.
func (s *Session) Reset() {
	*s = Session{UserID: s.UserID}
}

// SessionStore persists conversation state keyed by user id.
type SessionStore interface {
	// Load returns the stored session or a fresh idle one.
	Load(ctx context.Context, userID int64) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context, userID int64) error
}
