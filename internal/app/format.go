package app

import (
	"fmt"
	"strings"
	"time"

	"bodytrack/internal/domain"
)

// WindowValue is a derived statistic for a window of days. Value is nil when
// there is not enough data.
type WindowValue struct {
	Days  int
	Value *float64
}

// Summary collects everything the stats message shows.
type Summary struct {
	LatestFatWeight *float64
	BMI             *float64
	Goal            *domain.Profile
	LossRates       []WindowValue
	DailyDrops      []WindowValue
	Projection      *time.Time
	// ProjectionReason explains a missing Projection. Only shown with a goal.
	ProjectionReason string
}

// FormatEntryLine renders an entry as "{i}. {date}: {w} kg, fat {p}%".
// index <= 0 omits the list prefix; a missing fat % is omitted.
func FormatEntryLine(e domain.Entry, index int) string {
	var b strings.Builder
	if index > 0 {
		fmt.Fprintf(&b, "%d. ", index)
	}
	fmt.Fprintf(&b, "%s: %.1f kg", e.Day(), e.WeightKg)
	if e.FatPct != nil {
		fmt.Fprintf(&b, ", fat %.1f%%", *e.FatPct)
	}
	return b.String()
}

// FormatSavedEntry renders the confirmation shown after a write.
func FormatSavedEntry(verb string, day time.Time, weightKg float64, fatPct *float64) string {
	msg := fmt.Sprintf("Entry %s: %s %.1f kg", verb, domain.DayString(day), weightKg)
	if fatPct != nil {
		msg += fmt.Sprintf(" and fat %.1f%%", *fatPct)
	} else {
		msg += " (no fat %)"
	}
	return msg
}

// FormatGoal renders "Goal: 80.0 kg @ 20.0% (fat 16.00 kg)".
func FormatGoal(p *domain.Profile) string {
	if !p.HasGoal() {
		return ""
	}
	return fmt.Sprintf("Goal: %.1f kg @ %.1f%% (fat %.2f kg)", *p.GoalWeightKg, *p.GoalFatPct, *p.GoalFatWeight())
}

// FormatStatsSummary renders the multi-line stats message.
func FormatStatsSummary(s Summary) string {
	var lines []string
	if s.LatestFatWeight != nil {
		lines = append(lines, fmt.Sprintf("Current fat weight: %.2f kg", *s.LatestFatWeight))
	} else {
		lines = append(lines, "No fat % entries yet to build stats.")
	}
	if s.BMI != nil {
		lines = append(lines, fmt.Sprintf("Latest BMI: %.1f", *s.BMI))
	} else {
		lines = append(lines, "Set your height to see BMI.")
	}
	if s.Goal.HasGoal() {
		lines = append(lines, FormatGoal(s.Goal))
	}

	if len(s.LossRates) > 0 {
		lines = append(lines, "", "Fat lost per kg of weight lost:")
		for _, r := range s.LossRates {
			if r.Value == nil {
				lines = append(lines, fmt.Sprintf("- %dd: not enough data", r.Days))
				continue
			}
			lines = append(lines, fmt.Sprintf("- %dd: %.3f fat kg per kg weight", r.Days, *r.Value))
		}
	}
	if len(s.DailyDrops) > 0 {
		lines = append(lines, "", "Average fat weight drop:")
		for _, r := range s.DailyDrops {
			if r.Value == nil {
				lines = append(lines, fmt.Sprintf("- %dd: not enough data", r.Days))
				continue
			}
			lines = append(lines, fmt.Sprintf("- %dd: %.3f kg/day", r.Days, *r.Value))
		}
	}

	if s.Goal.HasGoal() {
		lines = append(lines, "")
		if s.Projection != nil {
			lines = append(lines, "Projected goal date: "+domain.DayString(*s.Projection))
		} else {
			lines = append(lines, "Projected goal date: "+s.ProjectionReason)
		}
	}
	return strings.Join(lines, "\n")
}
