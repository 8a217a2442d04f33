package memory

import (
	"context"
	"testing"
	"time"

	"bodytrack/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func day(s string) time.Time {
	d, err := domain.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestEntryRepository(t *testing.T) {
	db := New()
	ctx := context.Background()
	userID := int64(1)

	id, err := db.AddEntry(ctx, userID, day("2024-01-01"), 80, ptr(20))
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero ID")
	}
	if _, err := db.AddEntry(ctx, userID, day("2024-01-03"), 79, nil); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}

	entries, err := db.ListRecentEntries(ctx, userID, 0)
	if err != nil {
		t.Fatalf("ListRecentEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Day() != "2024-01-03" {
		t.Errorf("expected newest first, got %s", entries[0].Day())
	}
	if entries[1].FatWeightKg == nil || *entries[1].FatWeightKg != 16 {
		t.Errorf("expected fat weight 16, got %v", entries[1].FatWeightKg)
	}

	limited, _ := db.ListRecentEntries(ctx, userID, 1)
	if len(limited) != 1 {
		t.Errorf("expected limit to apply, got %d", len(limited))
	}

	// Other user sees nothing
	other, _ := db.ListRecentEntries(ctx, 999, 0)
	if len(other) != 0 {
		t.Error("expected 0 entries for other user")
	}

	series, _ := db.FatWeightSeries(ctx, userID)
	if len(series) != 1 || series[0].WeightKg != 80 {
		t.Errorf("expected one fat point with weight 80, got %+v", series)
	}

	fw, _ := db.LatestFatWeight(ctx, userID)
	if fw == nil || *fw != 16 {
		t.Errorf("expected latest fat weight 16, got %v", fw)
	}
	w, _ := db.LatestWeight(ctx, userID)
	if w == nil || *w != 79 {
		t.Errorf("expected latest weight 79, got %v", w)
	}
}

func TestEntryByDateIgnoresTimeOfDay(t *testing.T) {
	db := New()
	ctx := context.Background()

	late := time.Date(2024, 1, 2, 23, 30, 0, 0, time.UTC)
	id, _ := db.AddEntry(ctx, 1, late, 80, nil)

	got, err := db.EntryByDate(ctx, 1, day("2024-01-02"))
	if err != nil {
		t.Fatalf("EntryByDate: %v", err)
	}
	if got == nil || got.ID != id {
		t.Fatalf("expected entry %d, got %+v", id, got)
	}
	if got, _ := db.EntryByDate(ctx, 1, day("2024-01-03")); got != nil {
		t.Errorf("expected no entry on the next day, got %+v", got)
	}
	if got, _ := db.EntryByDate(ctx, 2, day("2024-01-02")); got != nil {
		t.Error("expected lookup to be scoped to the user")
	}
}

func TestUpdateAndDeleteOwnership(t *testing.T) {
	db := New()
	ctx := context.Background()
	id, _ := db.AddEntry(ctx, 1, day("2024-01-01"), 80, ptr(20))

	ok, err := db.UpdateEntry(ctx, id, 2, nil, 70, nil)
	if err != nil || ok {
		t.Fatalf("expected foreign update to fail, got ok=%v err=%v", ok, err)
	}
	newDay := day("2024-02-01")
	ok, _ = db.UpdateEntry(ctx, id, 1, &newDay, 78, nil)
	if !ok {
		t.Fatal("expected update to succeed")
	}
	e, _ := db.EntryByDate(ctx, 1, newDay)
	if e == nil || e.WeightKg != 78 || e.FatWeightKg != nil {
		t.Errorf("expected recomputed entry, got %+v", e)
	}

	ok, _ = db.DeleteEntry(ctx, id, 2)
	if ok {
		t.Error("expected foreign delete to fail")
	}
	ok, _ = db.DeleteEntry(ctx, id, 1)
	if !ok {
		t.Error("expected delete to succeed")
	}
	ok, _ = db.DeleteEntry(ctx, id, 1)
	if ok {
		t.Error("expected second delete to report false")
	}
}

func TestProfileRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	if p, _ := db.GetUser(ctx, 5); p != nil {
		t.Fatal("expected no profile before EnsureUser")
	}
	p, err := db.EnsureUser(ctx, 5)
	if err != nil || p == nil || p.ID != 5 {
		t.Fatalf("EnsureUser = %+v, %v", p, err)
	}

	_ = db.SetUserHeight(ctx, 5, 180)
	_ = db.SetUserHeight(ctx, 5, 181)
	_ = db.SetUserGoal(ctx, 5, 75, 15)

	p, _ = db.GetUser(ctx, 5)
	if p.HeightCm == nil || *p.HeightCm != 181 {
		t.Errorf("expected height 181, got %v", p.HeightCm)
	}
	if !p.HasGoal() {
		t.Error("expected goal to be set")
	}

	// Returned profiles are copies.
	*p.HeightCm = 1
	p2, _ := db.GetUser(ctx, 5)
	if *p2.HeightCm != 181 {
		t.Error("expected stored profile to be unaffected")
	}
}

func TestSessionStoreTTL(t *testing.T) {
	store := NewSessionStore(time.Hour)
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	s, err := store.Load(ctx, 7)
	if err != nil || !s.Idle() {
		t.Fatalf("expected fresh idle session, got %+v, %v", s, err)
	}

	s.Step = domain.StepAddWeight
	s.UpdatedAt = now
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s, _ = store.Load(ctx, 7)
	if s.Step != domain.StepAddWeight {
		t.Errorf("expected saved step, got %q", s.Step)
	}

	now = now.Add(2 * time.Hour)
	s, _ = store.Load(ctx, 7)
	if !s.Idle() {
		t.Error("expected expired session to be idle")
	}

	s.Step = domain.StepHeight
	s.UpdatedAt = now
	_ = store.Save(ctx, s)
	_ = store.Clear(ctx, 7)
	s, _ = store.Load(ctx, 7)
	if !s.Idle() {
		t.Error("expected cleared session to be idle")
	}
}
