package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"bodytrack/internal/domain"
)

const (
	msgAskWeight    = "Send weight in kg (e.g., 82.3)."
	msgBadWeight    = "Please send a valid weight in kg, e.g. 82.3."
	msgAskFat       = "Send fat % (e.g., 18.5) or tap skip."
	msgBadFat       = "Please send a fat % between 0 and 100, or tap skip."
	msgAskDate      = "Pick the date for this entry, or send it as YYYY-MM-DD."
	msgBadDate      = "Please pick a date in the calendar or send it as YYYY-MM-DD."
	msgKeptExisting = "Kept the existing entry."
)

func (d *Dialog) startAdd(sess *domain.Session) ([]Response, error) {
	sess.Reset()
	sess.Step = domain.StepAddWeight
	return reply(msgAskWeight, CancelKeyboard()), nil
}

func (d *Dialog) onWeight(sess *domain.Session, text string) ([]Response, error) {
	w, err := ParseWeight(text)
	if err != nil {
		return reply(msgBadWeight, CancelKeyboard()), nil
	}
	sess.WeightKg = &w
	if sess.Step == domain.StepEditWeight {
		sess.Step = domain.StepEditFat
	} else {
		sess.Step = domain.StepAddFat
	}
	return reply(msgAskFat, FatKeyboard()), nil
}

func isSkip(text string) bool {
	return text == BtnSkipFat || strings.EqualFold(text, "skip")
}

func (d *Dialog) onFat(sess *domain.Session, text string) ([]Response, error) {
	if sess.WeightKg == nil {
		return nil, errInconsistent
	}
	var fat *float64
	if !isSkip(text) {
		v, err := ParseFatPct(text)
		if err != nil {
			return reply(msgBadFat, FatKeyboard()), nil
		}
		fat = &v
	}
	sess.FatPct = fat
	sess.FatSet = true
	if sess.Step == domain.StepEditFat {
		sess.Step = domain.StepEditDate
	} else {
		sess.Step = domain.StepAddDate
	}
	return d.askDate(sess, false), nil
}

// askDate shows the calendar for the session's month, defaulting to the
// month of the original date when editing and the current month otherwise.
func (d *Dialog) askDate(sess *domain.Session, inPlace bool) []Response {
	if sess.Month == nil {
		m := d.today()
		if sess.OriginalDate != nil {
			m = *sess.OriginalDate
		}
		sess.Month = &m
	}
	ctx := flowContext(sess.Step)
	var keep *time.Time
	if ctx == ContextEdit {
		keep = sess.OriginalDate
	}
	return []Response{{
		Text:     msgAskDate,
		Keyboard: CalendarKeyboard(ctx, *sess.Month, d.today(), keep),
		Edit:     inPlace,
	}}
}

func (d *Dialog) onTypedDate(ctx context.Context, sess *domain.Session, text string) ([]Response, error) {
	day, err := domain.ParseDay(text)
	if err != nil {
		return append(reply(msgBadDate, nil), d.askDate(sess, false)...), nil
	}
	return d.selectDate(ctx, sess, day)
}

func (d *Dialog) onDateButton(ctx context.Context, sess *domain.Session, p Payload) ([]Response, error) {
	want := domain.StepAddDate
	if p.Context == ContextEdit {
		want = domain.StepEditDate
	}
	if sess.Step != want {
		return []Response{{Notice: msgStaleButton}}, nil
	}

	switch p.Action {
	case ActionNoop:
		return []Response{{}}, nil
	case ActionNav:
		month, ok := p.Day()
		if !ok {
			return []Response{{Notice: msgStaleButton}}, nil
		}
		sess.Month = &month
		return d.askDate(sess, true), nil
	case ActionPick:
		day, ok := p.Day()
		if !ok {
			return []Response{{Notice: msgStaleButton}}, nil
		}
		out, err := d.selectDate(ctx, sess, day)
		if err != nil {
			return nil, err
		}
		picked := Response{Text: "Date: " + domain.DayString(day), Edit: true}
		return append([]Response{picked}, out...), nil
	}
	return []Response{{Notice: msgStaleButton}}, nil
}

// selectDate checks the chosen day for an existing entry and either asks how
// to resolve the conflict or writes the pending values.
func (d *Dialog) selectDate(ctx context.Context, sess *domain.Session, day time.Time) ([]Response, error) {
	if sess.WeightKg == nil || !sess.FatSet {
		return nil, errInconsistent
	}
	edit := sess.Step == domain.StepEditDate
	if edit && sess.EntryID == 0 {
		return nil, errInconsistent
	}

	var exclude int64
	if edit {
		exclude = sess.EntryID
	}
	conflict, err := d.entries.Conflict(ctx, sess.UserID, day, exclude)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		sess.Date = &day
		sess.ConflictID = conflict.ID
		if edit {
			sess.Step = domain.StepEditConfirm
		} else {
			sess.Step = domain.StepAddConfirm
		}
		text := "An entry already exists for " + domain.DayString(day) + ":\n" +
			FormatEntryLine(*conflict, 0) + "\nWhat should I do?"
		return reply(text, DuplicateKeyboard(flowContext(sess.Step))), nil
	}

	if !edit {
		e, err := d.entries.Record(ctx, sess.UserID, day, *sess.WeightKg, sess.FatPct)
		if err != nil {
			return nil, err
		}
		sess.Reset()
		return reply(FormatSavedEntry("saved", e.RecordedAt, e.WeightKg, e.FatPct), d.mainMenu(ctx, sess.UserID)), nil
	}

	w, fat := *sess.WeightKg, sess.FatPct
	err = d.entries.Update(ctx, sess.EntryID, sess.UserID, &day, w, fat)
	sess.Reset()
	if errors.Is(err, domain.ErrNotFound) {
		return reply(msgNotUpdated, d.mainMenu(ctx, sess.UserID)), nil
	}
	if err != nil {
		return nil, err
	}
	return reply(FormatSavedEntry("updated", day, w, fat), d.mainMenu(ctx, sess.UserID)), nil
}

func (d *Dialog) onDuplicateButton(ctx context.Context, sess *domain.Session, p Payload) ([]Response, error) {
	want := domain.StepAddConfirm
	if p.Context == ContextEdit {
		want = domain.StepEditConfirm
	}
	if sess.Step != want {
		return []Response{{Notice: msgStaleButton}}, nil
	}

	switch p.Action {
	case ActionReplace:
		return d.replaceExisting(ctx, sess)
	case ActionDifferent:
		sess.Date = nil
		sess.ConflictID = 0
		if p.Context == ContextEdit {
			sess.Step = domain.StepEditDate
		} else {
			sess.Step = domain.StepAddDate
		}
		return d.askDate(sess, true), nil
	case ActionKeep:
		sess.Reset()
		return []Response{
			{Text: msgKeptExisting, Edit: true},
			{Text: msgChoose, Keyboard: d.mainMenu(ctx, sess.UserID)},
		}, nil
	}
	return []Response{{Notice: msgStaleButton}}, nil
}

func (d *Dialog) replaceExisting(ctx context.Context, sess *domain.Session) ([]Response, error) {
	if sess.WeightKg == nil || !sess.FatSet || sess.Date == nil || sess.ConflictID == 0 {
		return nil, errInconsistent
	}
	var edited int64
	if sess.Step == domain.StepEditConfirm {
		if sess.EntryID == 0 {
			return nil, errInconsistent
		}
		edited = sess.EntryID
	}

	day, w, fat := *sess.Date, *sess.WeightKg, sess.FatPct
	err := d.entries.Replace(ctx, sess.UserID, sess.ConflictID, edited, day, w, fat)
	sess.Reset()
	if errors.Is(err, domain.ErrNotFound) {
		return reply(msgNotUpdated, d.mainMenu(ctx, sess.UserID)), nil
	}
	if err != nil {
		return nil, err
	}
	return []Response{
		{Text: "Replaced the entry for " + domain.DayString(day) + ".", Edit: true},
		{Text: FormatSavedEntry("saved", day, w, fat), Keyboard: d.mainMenu(ctx, sess.UserID)},
	}, nil
}
