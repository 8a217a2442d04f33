package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bodytrack/internal/domain"
)

// EnsureUser creates the profile row on first contact and returns it.
func (d *DB) EnsureUser(ctx context.Context, userID int64) (*domain.Profile, error) {
	_, err := d.sql.ExecContext(ctx,
		d.sql.Rebind("INSERT INTO profiles(user_id, created_at) VALUES(?, ?) ON CONFLICT (user_id) DO NOTHING;"),
		userID, time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}
	return d.GetUser(ctx, userID)
}

// GetUser returns the profile or nil when the user is unknown.
func (d *DB) GetUser(ctx context.Context, userID int64) (*domain.Profile, error) {
	var p domain.Profile
	err := d.sql.GetContext(ctx, &p,
		d.sql.Rebind("SELECT user_id, height_cm, goal_weight_kg, goal_fat_pct, created_at FROM profiles WHERE user_id=?;"),
		userID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

// SetUserHeight upserts the height.
func (d *DB) SetUserHeight(ctx context.Context, userID int64, heightCm float64) error {
	_, err := d.sql.ExecContext(ctx,
		d.sql.Rebind("INSERT INTO profiles(user_id, height_cm, created_at) VALUES(?, ?, ?) ON CONFLICT (user_id) DO UPDATE SET height_cm = excluded.height_cm;"),
		userID, heightCm, time.Now().UTC(),
	)
	return err
}

// SetUserGoal upserts goal weight and fat percentage together.
func (d *DB) SetUserGoal(ctx context.Context, userID int64, weightKg, fatPct float64) error {
	_, err := d.sql.ExecContext(ctx,
		d.sql.Rebind("INSERT INTO profiles(user_id, goal_weight_kg, goal_fat_pct, created_at) VALUES(?, ?, ?, ?) ON CONFLICT (user_id) DO UPDATE SET goal_weight_kg = excluded.goal_weight_kg, goal_fat_pct = excluded.goal_fat_pct;"),
		userID, weightKg, fatPct, time.Now().UTC(),
	)
	return err
}
