package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bodytrack/internal/domain"
)

const (
	msgNoEntries   = "No entries yet. Add one first."
	msgNoneLeft    = "No entries left."
	msgStaleIndex  = "That entry is no longer in the list. Pick again."
	msgBadSelected = "Send the number of an entry from the list."
)

func (d *Dialog) startBrowse(ctx context.Context, sess *domain.Session) ([]Response, error) {
	sess.Reset()
	entries, err := d.entries.List(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return reply(msgNoEntries, d.mainMenu(ctx, sess.UserID)), nil
	}
	sess.Step = domain.StepEditChoosing
	sess.Entries = entries
	return d.browsePage(sess, "", false), nil
}

// browsePage renders the cached list at the session page, clamped.
func (d *Dialog) browsePage(sess *domain.Session, prefix string, inPlace bool) []Response {
	sess.Page = ClampPage(sess.Page, len(sess.Entries), d.pageSize)
	text := fmt.Sprintf("Pick an entry to edit, or 🗑 to delete it (page %d/%d).",
		sess.Page+1, PageCount(len(sess.Entries), d.pageSize))
	if prefix != "" {
		text = prefix + "\n" + text
	}
	return []Response{{
		Text:     text,
		Keyboard: EntryPageKeyboard(sess.Entries, sess.Page, d.pageSize),
		Edit:     inPlace,
	}}
}

// refreshBrowse reloads the list after it changed underneath the session.
// With nothing left the flow ends.
func (d *Dialog) refreshBrowse(ctx context.Context, sess *domain.Session, prefix string, inPlace bool) ([]Response, error) {
	entries, err := d.entries.List(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		sess.Reset()
		text := msgNoneLeft
		if prefix != "" {
			text = prefix + "\n" + msgNoneLeft
		}
		return []Response{
			{Text: text, Edit: inPlace},
			{Text: msgChoose, Keyboard: d.mainMenu(ctx, sess.UserID)},
		}, nil
	}
	sess.Entries = entries
	return d.browsePage(sess, prefix, inPlace), nil
}

func (d *Dialog) onEntryButton(ctx context.Context, sess *domain.Session, p Payload) ([]Response, error) {
	if sess.Step != domain.StepEditChoosing {
		return []Response{{Notice: msgStaleButton}}, nil
	}
	if p.Action == ActionCancel {
		sess.Reset()
		return []Response{
			{Text: msgCancelled, Edit: true},
			{Text: msgChoose, Keyboard: d.mainMenu(ctx, sess.UserID)},
		}, nil
	}

	idx, ok := p.Index()
	if !ok {
		return []Response{{Notice: msgStaleButton}}, nil
	}
	switch p.Action {
	case ActionPage:
		sess.Page = idx
		return d.browsePage(sess, "", true), nil
	case ActionPick:
		return d.pickEntry(ctx, sess, idx, true)
	case ActionDelete:
		return d.deleteEntry(ctx, sess, idx)
	}
	return []Response{{Notice: msgStaleButton}}, nil
}

func (d *Dialog) onTypedSelection(ctx context.Context, sess *domain.Session, text string) ([]Response, error) {
	// Accept "3" as well as a pasted list line such as "3. 2024-01-01: ...".
	head, _, _ := strings.Cut(text, ".")
	n, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil || n <= 0 {
		return d.browsePage(sess, msgBadSelected, false), nil
	}
	return d.pickEntry(ctx, sess, n-1, false)
}

func (d *Dialog) pickEntry(ctx context.Context, sess *domain.Session, idx int, inPlace bool) ([]Response, error) {
	if idx < 0 || idx >= len(sess.Entries) {
		return d.refreshBrowse(ctx, sess, msgStaleIndex, inPlace)
	}
	e := sess.Entries[idx]
	original := e.RecordedAt
	sess.Entries = nil
	sess.Page = 0
	sess.EntryID = e.ID
	sess.OriginalDate = &original
	sess.Step = domain.StepEditWeight

	text := "Editing " + FormatEntryLine(e, 0) + "\n" + msgAskWeight
	if inPlace {
		return []Response{
			{Text: "Editing " + FormatEntryLine(e, 0), Edit: true},
			{Text: msgAskWeight, Keyboard: CancelKeyboard()},
		}, nil
	}
	return reply(text, CancelKeyboard()), nil
}

func (d *Dialog) deleteEntry(ctx context.Context, sess *domain.Session, idx int) ([]Response, error) {
	if idx < 0 || idx >= len(sess.Entries) {
		return d.refreshBrowse(ctx, sess, msgStaleIndex, true)
	}
	e := sess.Entries[idx]
	err := d.entries.Delete(ctx, e.ID, sess.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		out, rerr := d.refreshBrowse(ctx, sess, msgNotDeleted, true)
		if rerr != nil {
			return nil, rerr
		}
		out[0].Notice = msgNotDeleted
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	return d.refreshBrowse(ctx, sess, "Deleted "+FormatEntryLine(e, 0)+".", true)
}
