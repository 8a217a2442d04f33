package app

import (
	"fmt"
	"time"

	"bodytrack/internal/domain"
)

// Reply button labels. Text messages equal to one of these act as commands.
const (
	BtnAddEntry    = "Add entry"
	BtnEditEntries = "Edit entries"
	BtnStats       = "Stats"
	BtnSetHeight   = "Set height"
	BtnAddGoal     = "Add goal"
	BtnEditGoal    = "Edit goal"
	BtnCancel      = "Cancel"
	BtnSkipFat     = "Skip fat %"
)

// Button is a single control. Data is empty for reply buttons.
type Button struct {
	Text string
	Data string
}

// Keyboard is a transport-neutral set of controls attached to a response.
// Inline keyboards are attached to the message; reply keyboards replace the
// user's input keyboard.
type Keyboard struct {
	Rows        [][]Button
	Inline      bool
	Placeholder string
}

// MainKeyboard returns the idle menu. The goal button reads "Edit goal" once a goal exists.
func MainKeyboard(goalSet bool) *Keyboard {
	goal := BtnAddGoal
	if goalSet {
		goal = BtnEditGoal
	}
	return &Keyboard{
		Rows: [][]Button{
			{{Text: BtnAddEntry}, {Text: BtnEditEntries}},
			{{Text: BtnStats}, {Text: BtnSetHeight}},
			{{Text: goal}},
		},
		Placeholder: "Choose an action",
	}
}

// CancelKeyboard offers only the Cancel button.
func CancelKeyboard() *Keyboard {
	return &Keyboard{Rows: [][]Button{{{Text: BtnCancel}}}}
}

// FatKeyboard offers skipping the fat % step.
func FatKeyboard() *Keyboard {
	return &Keyboard{
		Rows:        [][]Button{{{Text: BtnSkipFat}}, {{Text: BtnCancel}}},
		Placeholder: "Fat %, e.g. 18.5",
	}
}

var weekdays = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// CalendarKeyboard renders an inline month calendar for month, Monday first.
// today is marked with a star; keep adds a shortcut row for the current date.
func CalendarKeyboard(ctx string, month, today time.Time, keep *time.Time) *Keyboard {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	noop := datePayload(ctx, ActionNoop, "")

	rows := [][]Button{{{Text: first.Format("January 2006"), Data: noop}}}

	header := make([]Button, 0, len(weekdays))
	for _, w := range weekdays {
		header = append(header, Button{Text: w, Data: noop})
	}
	rows = append(rows, header)

	offset := (int(first.Weekday()) + 6) % 7
	week := make([]Button, 0, 7)
	for i := 0; i < offset; i++ {
		week = append(week, Button{Text: " ", Data: noop})
	}
	todayStr := domain.DayString(today)
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		label := fmt.Sprintf("%d", d.Day())
		if domain.DayString(d) == todayStr {
			label = "⭐" + label
		}
		week = append(week, Button{Text: label, Data: datePayload(ctx, ActionPick, domain.DayString(d))})
		if len(week) == 7 {
			rows = append(rows, week)
			week = make([]Button, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, Button{Text: " ", Data: noop})
		}
		rows = append(rows, week)
	}

	rows = append(rows, []Button{
		{Text: "◀ Prev", Data: datePayload(ctx, ActionNav, domain.DayString(first.AddDate(0, -1, 0)))},
		{Text: "⭐ Today", Data: datePayload(ctx, ActionPick, todayStr)},
		{Text: "Next ▶", Data: datePayload(ctx, ActionNav, domain.DayString(first.AddDate(0, 1, 0)))},
	})
	if keep != nil {
		rows = append(rows, []Button{{Text: "Keep " + domain.DayString(*keep), Data: datePayload(ctx, ActionPick, domain.DayString(*keep))}})
	}
	return &Keyboard{Rows: rows, Inline: true}
}

// DuplicateKeyboard offers the three resolutions of a date conflict.
func DuplicateKeyboard(ctx string) *Keyboard {
	return &Keyboard{
		Rows: [][]Button{
			{{Text: "Replace existing", Data: duplicatePayload(ctx, ActionReplace)}},
			{{Text: "Choose different date", Data: duplicatePayload(ctx, ActionDifferent)}},
			{{Text: "Keep old data", Data: duplicatePayload(ctx, ActionKeep)}},
		},
		Inline: true,
	}
}

// PageCount returns the number of pages needed for n items, at least one.
func PageCount(n, pageSize int) int {
	if pageSize <= 0 || n <= 0 {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}

// ClampPage limits page to the valid range for n items.
func ClampPage(page, n, pageSize int) int {
	last := PageCount(n, pageSize) - 1
	if page > last {
		page = last
	}
	if page < 0 {
		page = 0
	}
	return page
}

// EntryPageKeyboard renders one page of the entry browser. Each entry gets a
// pick button and a delete button; prev/next appear only when such a page exists.
func EntryPageKeyboard(entries []domain.Entry, page, pageSize int) *Keyboard {
	if pageSize <= 0 {
		pageSize = len(entries)
	}
	page = ClampPage(page, len(entries), pageSize)
	start := page * pageSize
	end := min(start+pageSize, len(entries))

	rows := make([][]Button, 0, end-start+1)
	for i := start; i < end; i++ {
		rows = append(rows, []Button{
			{Text: FormatEntryLine(entries[i], i+1), Data: entryPayload(ActionPick, i)},
			{Text: "🗑", Data: entryPayload(ActionDelete, i)},
		})
	}

	var nav []Button
	if page > 0 {
		nav = append(nav, Button{Text: "◀ Prev", Data: entryPayload(ActionPage, page-1)})
	}
	nav = append(nav, Button{Text: BtnCancel, Data: entryPayload(ActionCancel, 0)})
	if page < PageCount(len(entries), pageSize)-1 {
		nav = append(nav, Button{Text: "Next ▶", Data: entryPayload(ActionPage, page+1)})
	}
	rows = append(rows, nav)
	return &Keyboard{Rows: rows, Inline: true}
}
