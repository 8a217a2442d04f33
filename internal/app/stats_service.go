package app

import (
	"context"
	"fmt"
	"time"

	"bodytrack/internal/domain"
)

var (
	// LossRateWindows are the day offsets the fat-loss rate is reported for.
	LossRateWindows = []int{7, 30}
	// DailyDropWindows are the windows the average daily drop is reported for.
	DailyDropWindows = []int{7, 14, 30}
)

// CautionRate is the fat-loss rate below which a gauge is drawn as a warning.
const CautionRate = 0.5

const placeholderMessage = "Add entries with fat % to see your chart"

// Gauge is one rate dial of the dashboard.
type Gauge struct {
	Label   string
	Rate    *float64
	Caution float64
}

// Dashboard is the chart request handed to a ChartRenderer.
type Dashboard struct {
	Gauges    []Gauge
	Series    []domain.SeriesPoint
	GoalFatKg *float64
}

// ChartRenderer turns chart requests into PNG bytes.
type ChartRenderer interface {
	RenderDashboard(ctx context.Context, d Dashboard) ([]byte, error)
	RenderPlaceholder(ctx context.Context, message string) ([]byte, error)
}

// Report is the result of a stats request.
type Report struct {
	Summary Summary
	Text    string
	Image   []byte
}

// StatsService derives statistics and charts from stored entries.
type StatsService struct {
	entries  domain.EntryRepository
	profiles domain.ProfileRepository
	renderer ChartRenderer
	now      func() time.Time
}

// NewStatsService creates a StatsService.
func NewStatsService(entries domain.EntryRepository, profiles domain.ProfileRepository, renderer ChartRenderer) *StatsService {
	return &StatsService{entries: entries, profiles: profiles, renderer: renderer, now: time.Now}
}

// Summarize computes the stats summary for the user along with the
// fat-weight series it was derived from.
func (s *StatsService) Summarize(ctx context.Context, userID int64) (Summary, []domain.SeriesPoint, error) {
	var sum Summary

	profile, err := s.profiles.GetUser(ctx, userID)
	if err != nil {
		return sum, nil, fmt.Errorf("get user: %w", err)
	}
	sum.Goal = profile

	series, err := s.entries.FatWeightSeries(ctx, userID)
	if err != nil {
		return sum, nil, fmt.Errorf("fat weight series: %w", err)
	}
	if sum.LatestFatWeight, err = s.entries.LatestFatWeight(ctx, userID); err != nil {
		return sum, nil, fmt.Errorf("latest fat weight: %w", err)
	}
	weight, err := s.entries.LatestWeight(ctx, userID)
	if err != nil {
		return sum, nil, fmt.Errorf("latest weight: %w", err)
	}
	if profile != nil {
		sum.BMI = domain.BMI(weight, profile.HeightCm)
	}

	all, err := s.entries.ListRecentEntries(ctx, userID, 0)
	if err != nil {
		return sum, nil, fmt.Errorf("list entries: %w", err)
	}
	for _, days := range LossRateWindows {
		sum.LossRates = append(sum.LossRates, WindowValue{Days: days, Value: ComputeFatLossRate(all, days)})
	}
	now := s.now()
	for _, days := range DailyDropWindows {
		sum.DailyDrops = append(sum.DailyDrops, WindowValue{Days: days, Value: AverageDailyDrop(series, days, now)})
	}
	if goal := profile.GoalFatWeight(); goal != nil {
		sum.Projection, sum.ProjectionReason = ProjectGoalDate(series, *goal)
	}
	return sum, series, nil
}

// Report builds the stats text and chart for the user. Without fat data the
// chart is a placeholder image.
func (s *StatsService) Report(ctx context.Context, userID int64) (*Report, error) {
	sum, series, err := s.Summarize(ctx, userID)
	if err != nil {
		return nil, err
	}

	var img []byte
	if len(series) == 0 {
		img, err = s.renderer.RenderPlaceholder(ctx, placeholderMessage)
	} else {
		img, err = s.renderer.RenderDashboard(ctx, buildDashboard(sum, series))
	}
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return &Report{Summary: sum, Text: FormatStatsSummary(sum), Image: img}, nil
}

func buildDashboard(sum Summary, series []domain.SeriesPoint) Dashboard {
	d := Dashboard{Series: series, GoalFatKg: sum.Goal.GoalFatWeight()}
	for _, r := range sum.LossRates {
		d.Gauges = append(d.Gauges, Gauge{
			Label:   fmt.Sprintf("%dd fat share of loss", r.Days),
			Rate:    r.Value,
			Caution: CautionRate,
		})
	}
	return d
}
