package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bodytrack/internal/domain"
)

const entryColumns = "id, user_id, recorded_at, weight_kg, fat_pct, fat_weight_kg, created_at"

// AddEntry inserts a new entry with its derived fat weight.
func (d *DB) AddEntry(ctx context.Context, userID int64, recordedAt time.Time, weightKg float64, fatPct *float64) (int64, error) {
	var id int64
	err := d.sql.QueryRowxContext(ctx,
		d.sql.Rebind("INSERT INTO entries(user_id, recorded_at, weight_kg, fat_pct, fat_weight_kg, created_at) VALUES(?, ?, ?, ?, ?, ?) RETURNING id;"),
		userID, recordedAt.UTC(), weightKg, nullFloat(fatPct), nullFloat(domain.FatWeight(weightKg, fatPct)), time.Now().UTC(),
	).Scan(&id)
	return id, err
}

// UpdateEntry rewrites an owned entry, recomputing its fat weight.
func (d *DB) UpdateEntry(ctx context.Context, id, userID int64, recordedAt *time.Time, weightKg float64, fatPct *float64) (bool, error) {
	fatWeight := nullFloat(domain.FatWeight(weightKg, fatPct))
	var (
		res sql.Result
		err error
	)
	if recordedAt != nil {
		res, err = d.sql.ExecContext(ctx,
			d.sql.Rebind("UPDATE entries SET recorded_at=?, weight_kg=?, fat_pct=?, fat_weight_kg=? WHERE id=? AND user_id=?;"),
			recordedAt.UTC(), weightKg, nullFloat(fatPct), fatWeight, id, userID,
		)
	} else {
		res, err = d.sql.ExecContext(ctx,
			d.sql.Rebind("UPDATE entries SET weight_kg=?, fat_pct=?, fat_weight_kg=? WHERE id=? AND user_id=?;"),
			weightKg, nullFloat(fatPct), fatWeight, id, userID,
		)
	}
	return affected(res, err)
}

// DeleteEntry removes an owned entry.
func (d *DB) DeleteEntry(ctx context.Context, id, userID int64) (bool, error) {
	return affected(d.sql.ExecContext(ctx,
		d.sql.Rebind("DELETE FROM entries WHERE id=? AND user_id=?;"), id, userID))
}

// EntryByDate returns the latest entry whose recorded_at falls on the
// calendar date of day.
func (d *DB) EntryByDate(ctx context.Context, userID int64, day time.Time) (*domain.Entry, error) {
	start, end := domain.DayBounds(day)
	var e domain.Entry
	err := d.sql.GetContext(ctx, &e,
		d.sql.Rebind("SELECT "+entryColumns+" FROM entries WHERE user_id=? AND recorded_at >= ? AND recorded_at < ? ORDER BY recorded_at DESC, id DESC LIMIT 1;"),
		userID, start, end,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	normalise(&e)
	return &e, nil
}

// ListRecentEntries returns entries newest first; limit <= 0 returns all.
func (d *DB) ListRecentEntries(ctx context.Context, userID int64, limit int) ([]domain.Entry, error) {
	q := "SELECT " + entryColumns + " FROM entries WHERE user_id=? ORDER BY recorded_at DESC, id DESC"
	args := []any{userID}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	out := []domain.Entry{}
	if err := d.sql.SelectContext(ctx, &out, d.sql.Rebind(q+";"), args...); err != nil {
		return nil, err
	}
	for i := range out {
		normalise(&out[i])
	}
	return out, nil
}

// FatWeightSeries returns fat-weight points oldest first.
func (d *DB) FatWeightSeries(ctx context.Context, userID int64) ([]domain.SeriesPoint, error) {
	out := []domain.SeriesPoint{}
	err := d.sql.SelectContext(ctx, &out,
		d.sql.Rebind("SELECT recorded_at, fat_weight_kg, weight_kg FROM entries WHERE user_id=? AND fat_weight_kg IS NOT NULL ORDER BY recorded_at ASC, id ASC;"),
		userID,
	)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].RecordedAt = out[i].RecordedAt.UTC()
	}
	return out, nil
}

// LatestFatWeight returns the fat weight of the most recent entry that has one.
func (d *DB) LatestFatWeight(ctx context.Context, userID int64) (*float64, error) {
	return d.latest(ctx, "SELECT fat_weight_kg FROM entries WHERE user_id=? AND fat_weight_kg IS NOT NULL ORDER BY recorded_at DESC, id DESC LIMIT 1;", userID)
}

// LatestWeight returns the weight of the most recent entry.
func (d *DB) LatestWeight(ctx context.Context, userID int64) (*float64, error) {
	return d.latest(ctx, "SELECT weight_kg FROM entries WHERE user_id=? ORDER BY recorded_at DESC, id DESC LIMIT 1;", userID)
}

func (d *DB) latest(ctx context.Context, query string, userID int64) (*float64, error) {
	var v float64
	if err := d.sql.GetContext(ctx, &v, d.sql.Rebind(query), userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func normalise(e *domain.Entry) {
	e.RecordedAt = e.RecordedAt.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
}

func affected(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
