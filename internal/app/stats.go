package app

import (
	"math"
	"sort"
	"time"

	"bodytrack/internal/domain"
)

// Reasons reported by ProjectGoalDate when no date can be projected.
const (
	ReasonNotEnoughData = "not enough data"
	ReasonFlatTrend     = "trend is flat or increasing"
	ReasonGoalReached   = "goal already reached"
	ReasonTooFar        = "goal is more than 10 years away at the current trend"
)

const (
	day = 24 * time.Hour
	// projectionWindowDays is the trailing window the projection trend is fitted on.
	projectionWindowDays = 30
	maxProjectionDays    = 3650
)

// AverageDailyDrop returns the average fat-weight loss per day over the points
// recorded within windowDays of now. The series must already be ordered
// oldest first. Returns nil with fewer than two points in the window or when
// they share a timestamp.
func AverageDailyDrop(series []domain.SeriesPoint, windowDays int, now time.Time) *float64 {
	cutoff := now.Add(-time.Duration(windowDays) * day)
	var window []domain.SeriesPoint
	for _, p := range series {
		if !p.RecordedAt.Before(cutoff) {
			window = append(window, p)
		}
	}
	if len(window) < 2 {
		return nil
	}
	first, last := window[0], window[len(window)-1]
	elapsed := last.RecordedAt.Sub(first.RecordedAt).Hours() / 24
	if elapsed <= 0 {
		return nil
	}
	v := (first.FatWeightKg - last.FatWeightKg) / elapsed
	return &v
}

// ComputeFatLossRate returns the fat mass lost per kg of total weight lost
// between the latest entry and the earlier entry closest to targetDays before
// it. Entries without a fat measurement are ignored; input order does not matter.
func ComputeFatLossRate(entries []domain.Entry, targetDays int) *float64 {
	usable := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		if e.FatWeightKg != nil {
			usable = append(usable, e)
		}
	}
	if len(usable) < 2 {
		return nil
	}
	sort.SliceStable(usable, func(i, j int) bool {
		return usable[i].RecordedAt.Before(usable[j].RecordedAt)
	})

	latest := usable[len(usable)-1]
	target := latest.RecordedAt.Add(-time.Duration(targetDays) * day)

	ref := -1
	var best time.Duration
	for i, e := range usable[:len(usable)-1] {
		d := absDuration(e.RecordedAt.Sub(target))
		if ref == -1 || d < best {
			ref, best = i, d
		}
	}
	prev := usable[ref]
	if prev.RecordedAt.Equal(latest.RecordedAt) {
		return nil
	}
	weightDelta := prev.WeightKg - latest.WeightKg
	if weightDelta == 0 {
		return nil
	}
	v := (*prev.FatWeightKg - *latest.FatWeightKg) / weightDelta
	return &v
}

// ProjectGoalDate extrapolates the fat-weight trend of the trailing 30 days
// (ending at the latest point) to the day goalFatKg is reached. The trend is
// a least-squares slope, so a steeper decline always projects an earlier day.
// When no date can be given, reason explains why.
func ProjectGoalDate(series []domain.SeriesPoint, goalFatKg float64) (*time.Time, string) {
	if len(series) == 0 {
		return nil, ReasonNotEnoughData
	}
	latest := series[len(series)-1]
	if latest.FatWeightKg <= goalFatKg {
		return nil, ReasonGoalReached
	}

	cutoff := latest.RecordedAt.Add(-projectionWindowDays * day)
	var xs, ys []float64
	for _, p := range series {
		if p.RecordedAt.Before(cutoff) {
			continue
		}
		xs = append(xs, p.RecordedAt.Sub(cutoff).Hours()/24)
		ys = append(ys, p.FatWeightKg)
	}
	slope, ok := leastSquaresSlope(xs, ys)
	if !ok {
		return nil, ReasonNotEnoughData
	}
	if slope >= 0 {
		return nil, ReasonFlatTrend
	}

	days := (latest.FatWeightKg - goalFatKg) / -slope
	if days > maxProjectionDays {
		return nil, ReasonTooFar
	}
	at := domain.DayOf(latest.RecordedAt.Add(time.Duration(math.Ceil(days)) * day))
	return &at, ""
}

func leastSquaresSlope(xs, ys []float64) (float64, bool) {
	n := float64(len(xs))
	if len(xs) < 2 {
		return 0, false
	}
	var sx, sy float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
	}
	mx, my := sx/n, sy/n
	var num, den float64
	for i := range xs {
		num += (xs[i] - mx) * (ys[i] - my)
		den += (xs[i] - mx) * (xs[i] - mx)
	}
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
