package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bodytrack/internal/app"
	"bodytrack/internal/domain"
)

type mockProfileRepo struct {
	getFn func(ctx context.Context, userID int64) (*domain.Profile, error)
}

func (m *mockProfileRepo) EnsureUser(ctx context.Context, userID int64) (*domain.Profile, error) {
	p, err := m.GetUser(ctx, userID)
	if p == nil && err == nil {
		p = &domain.Profile{ID: userID}
	}
	return p, err
}

func (m *mockProfileRepo) GetUser(ctx context.Context, userID int64) (*domain.Profile, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockProfileRepo) SetUserHeight(context.Context, int64, float64) error { return nil }

func (m *mockProfileRepo) SetUserGoal(context.Context, int64, float64, float64) error { return nil }

type fakeRenderer struct {
	dashboards   []app.Dashboard
	placeholders []string
	err          error
}

func (f *fakeRenderer) RenderDashboard(_ context.Context, d app.Dashboard) ([]byte, error) {
	f.dashboards = append(f.dashboards, d)
	return []byte("dashboard"), f.err
}

func (f *fakeRenderer) RenderPlaceholder(_ context.Context, msg string) ([]byte, error) {
	f.placeholders = append(f.placeholders, msg)
	return []byte("placeholder"), f.err
}

func TestReport_Placeholder(t *testing.T) {
	r := &fakeRenderer{}
	svc := app.NewStatsService(&mockEntryRepo{}, &mockProfileRepo{}, r)

	rep, err := svc.Report(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(rep.Image) != "placeholder" || len(r.placeholders) != 1 {
		t.Errorf("expected placeholder image, got %q", rep.Image)
	}
	if !strings.Contains(rep.Text, "No fat % entries yet") {
		t.Errorf("unexpected text:\n%s", rep.Text)
	}
}

func TestReport_Dashboard(t *testing.T) {
	series := []domain.SeriesPoint{
		{RecordedAt: daysAgo(8), FatWeightKg: 12, WeightKg: 80},
		{RecordedAt: daysAgo(0), FatWeightKg: 10, WeightKg: 78},
	}
	entries := []domain.Entry{
		{RecordedAt: daysAgo(0), WeightKg: 78, FatWeightKg: ptr(10)},
		{RecordedAt: daysAgo(8), WeightKg: 80, FatWeightKg: ptr(12)},
	}
	repo := &mockEntryRepo{
		seriesFn:     func(context.Context, int64) ([]domain.SeriesPoint, error) { return series, nil },
		listFn:       func(context.Context, int64, int) ([]domain.Entry, error) { return entries, nil },
		latestFatFn:  func(context.Context, int64) (*float64, error) { return ptr(10), nil },
		latestWeight: func(context.Context, int64) (*float64, error) { return ptr(78), nil },
	}
	profiles := &mockProfileRepo{
		getFn: func(_ context.Context, id int64) (*domain.Profile, error) {
			return &domain.Profile{ID: id, HeightCm: ptr(180), GoalWeightKg: ptr(75), GoalFatPct: ptr(10)}, nil
		},
	}
	r := &fakeRenderer{}
	svc := app.NewStatsService(repo, profiles, r)

	rep, err := svc.Report(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.dashboards) != 1 {
		t.Fatalf("expected one dashboard render, got %d", len(r.dashboards))
	}
	d := r.dashboards[0]
	if len(d.Gauges) != len(app.LossRateWindows) {
		t.Fatalf("expected %d gauges, got %d", len(app.LossRateWindows), len(d.Gauges))
	}
	if d.Gauges[0].Rate == nil || !almostEqual(*d.Gauges[0].Rate, 1.0, 1e-9) {
		t.Errorf("7d gauge = %v; want 1.0", d.Gauges[0].Rate)
	}
	if d.Gauges[0].Caution != app.CautionRate {
		t.Errorf("caution = %v", d.Gauges[0].Caution)
	}
	if d.GoalFatKg == nil || !almostEqual(*d.GoalFatKg, 7.5, 1e-9) {
		t.Errorf("goal fat = %v; want 7.5", d.GoalFatKg)
	}
	if rep.Summary.BMI == nil || !almostEqual(*rep.Summary.BMI, 24.07, 0.01) {
		t.Errorf("BMI = %v", rep.Summary.BMI)
	}
	for _, want := range []string{"Current fat weight: 10.00 kg", "7d: 1.000 fat kg per kg weight", "Goal: 75.0 kg @ 10.0%"} {
		if !strings.Contains(rep.Text, want) {
			t.Errorf("missing %q in:\n%s", want, rep.Text)
		}
	}
}

func TestReport_Errors(t *testing.T) {
	boom := errors.New("boom")

	repo := &mockEntryRepo{
		seriesFn: func(context.Context, int64) ([]domain.SeriesPoint, error) { return nil, boom },
	}
	if _, err := app.NewStatsService(repo, &mockProfileRepo{}, &fakeRenderer{}).Report(context.Background(), 1); !errors.Is(err, boom) {
		t.Errorf("expected series error, got %v", err)
	}

	if _, err := app.NewStatsService(&mockEntryRepo{}, &mockProfileRepo{}, &fakeRenderer{err: boom}).Report(context.Background(), 1); !errors.Is(err, boom) {
		t.Errorf("expected render error, got %v", err)
	}
}
