package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"bodytrack/internal/domain"
	"bodytrack/internal/logger"
)

// User-facing messages shared by several flows.
const (
	msgWelcome     = "Hi! I track your weight and body fat. Use the buttons below."
	msgChoose      = "Choose an action."
	msgCancelled   = "Cancelled. Choose next action."
	msgRestart     = "Something went wrong, please start again."
	msgNotUpdated  = "Could not update entry."
	msgNotDeleted  = "Could not delete entry."
	msgStaleButton = "This button is no longer active."
)

// errInconsistent marks a session missing a value an earlier step should have collected.
var errInconsistent = errors.New("inconsistent session state")

// Event is an inbound message or button press from one user.
type Event struct {
	UserID  int64
	Text    string
	Payload string
}

// IsCallback reports whether the event is a button press.
func (e Event) IsCallback() bool {
	return e.Payload != ""
}

// Response is one outbound message. Edit replaces the message the pressed
// button belongs to; Notice is a short acknowledgement of the press.
type Response struct {
	Text     string
	Keyboard *Keyboard
	Image    []byte
	Notice   string
	Edit     bool
}

// Dialog is the conversation state machine. Events of one user are handled
// one at a time; different users proceed concurrently.
type Dialog struct {
	entries  *EntryService
	profiles *ProfileService
	stats    *StatsService
	sessions domain.SessionStore
	log      *logger.Logger
	pageSize int
	now      func() time.Time

	locks sync.Map
}

// NewDialog creates a Dialog. pageSize is the number of entries per browse page.
func NewDialog(entries *EntryService, profiles *ProfileService, stats *StatsService, sessions domain.SessionStore, log *logger.Logger, pageSize int) *Dialog {
	if pageSize <= 0 {
		pageSize = 5
	}
	return &Dialog{
		entries:  entries,
		profiles: profiles,
		stats:    stats,
		sessions: sessions,
		log:      log,
		pageSize: pageSize,
		now:      time.Now,
	}
}

func (d *Dialog) lock(userID int64) *sync.Mutex {
	mu, _ := d.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Handle processes one event and returns the responses to send. Failures of
// the entry or profile store end the current flow with a notice; only
// session store failures are returned.
func (d *Dialog) Handle(ctx context.Context, ev Event) ([]Response, error) {
	mu := d.lock(ev.UserID)
	mu.Lock()
	defer mu.Unlock()

	sess, err := d.sessions.Load(ctx, ev.UserID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	sess.UserID = ev.UserID

	var out []Response
	if ev.IsCallback() {
		out, err = d.handleCallback(ctx, sess, ev.Payload)
	} else {
		out, err = d.handleText(ctx, sess, strings.TrimSpace(ev.Text))
	}
	if err != nil {
		if errors.Is(err, errInconsistent) {
			d.log.Warn("session reset", "user_id", ev.UserID, "step", sess.Step)
		} else {
			d.log.Error("dialog step failed", "user_id", ev.UserID, "step", sess.Step, "error", err)
		}
		sess.Reset()
		out = []Response{{Text: msgRestart, Keyboard: d.mainMenu(ctx, ev.UserID)}}
	}

	if sess.Idle() {
		err = d.sessions.Clear(ctx, ev.UserID)
	} else {
		sess.UpdatedAt = d.now().UTC()
		err = d.sessions.Save(ctx, sess)
	}
	if err != nil {
		return out, fmt.Errorf("persist session: %w", err)
	}
	return out, nil
}

func (d *Dialog) handleText(ctx context.Context, sess *domain.Session, text string) ([]Response, error) {
	switch text {
	case "/start":
		return d.start(ctx, sess)
	case "/cancel", BtnCancel:
		return d.cancel(ctx, sess)
	case BtnAddEntry:
		return d.startAdd(sess)
	case BtnEditEntries:
		return d.startBrowse(ctx, sess)
	case BtnStats:
		return d.showStats(ctx, sess)
	case BtnSetHeight:
		return d.startHeight(sess)
	case BtnAddGoal, BtnEditGoal:
		return d.startGoal(sess)
	}

	switch sess.Step {
	case domain.StepAddWeight, domain.StepEditWeight:
		return d.onWeight(sess, text)
	case domain.StepAddFat, domain.StepEditFat:
		return d.onFat(sess, text)
	case domain.StepAddDate, domain.StepEditDate:
		return d.onTypedDate(ctx, sess, text)
	case domain.StepAddConfirm, domain.StepEditConfirm:
		return reply("Choose one of the options above.", DuplicateKeyboard(flowContext(sess.Step))), nil
	case domain.StepEditChoosing:
		return d.onTypedSelection(ctx, sess, text)
	case domain.StepHeight:
		return d.onHeight(ctx, sess, text)
	case domain.StepGoalWeight:
		return d.onGoalWeight(sess, text)
	case domain.StepGoalFat:
		return d.onGoalFat(ctx, sess, text)
	}
	return reply(msgChoose, d.mainMenu(ctx, sess.UserID)), nil
}

func (d *Dialog) handleCallback(ctx context.Context, sess *domain.Session, raw string) ([]Response, error) {
	p, ok := ParsePayload(raw)
	if !ok {
		return []Response{{Notice: msgStaleButton}}, nil
	}
	switch p.Domain {
	case DomainDate:
		return d.onDateButton(ctx, sess, p)
	case DomainDuplicate:
		return d.onDuplicateButton(ctx, sess, p)
	case DomainEntry:
		return d.onEntryButton(ctx, sess, p)
	}
	return []Response{{Notice: msgStaleButton}}, nil
}

func (d *Dialog) start(ctx context.Context, sess *domain.Session) ([]Response, error) {
	sess.Reset()
	p, err := d.profiles.Ensure(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	return reply(msgWelcome, MainKeyboard(p.HasGoal())), nil
}

func (d *Dialog) cancel(ctx context.Context, sess *domain.Session) ([]Response, error) {
	sess.Reset()
	return reply(msgCancelled, d.mainMenu(ctx, sess.UserID)), nil
}

func (d *Dialog) showStats(ctx context.Context, sess *domain.Session) ([]Response, error) {
	sess.Reset()
	report, err := d.stats.Report(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	return []Response{{
		Text:     report.Text,
		Image:    report.Image,
		Keyboard: MainKeyboard(report.Summary.Goal.HasGoal()),
	}}, nil
}

// mainMenu builds the idle menu. A failed profile lookup falls back to "Add goal".
func (d *Dialog) mainMenu(ctx context.Context, userID int64) *Keyboard {
	p, err := d.profiles.Ensure(ctx, userID)
	if err != nil {
		d.log.Warn("profile lookup failed", "user_id", userID, "error", err)
		return MainKeyboard(false)
	}
	return MainKeyboard(p.HasGoal())
}

func (d *Dialog) today() time.Time {
	return domain.DayOf(d.now().UTC())
}

func reply(text string, kb *Keyboard) []Response {
	return []Response{{Text: text, Keyboard: kb}}
}

// flowContext maps a step to the callback context of its flow.
func flowContext(step domain.Step) string {
	if strings.HasPrefix(string(step), "edit:") {
		return ContextEdit
	}
	return ContextAdd
}
