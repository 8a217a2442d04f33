package app

import (
	"strconv"
	"strings"
	"time"

	"bodytrack/internal/domain"
)

// Callback payload domains.
const (
	DomainDate      = "DP"
	DomainDuplicate = "DUP"
	DomainEntry     = "ES"
)

// Callback payload contexts.
const (
	ContextAdd  = "add"
	ContextEdit = "edit"
)

// Callback payload actions, grouped by domain.
const (
	ActionNav  = "nav"
	ActionPick = "pick"
	ActionNoop = "noop"

	ActionReplace   = "replace"
	ActionDifferent = "different"
	ActionKeep      = "keep"

	ActionDelete = "delete"
	ActionPage   = "page"
	ActionCancel = "cancel"
)

const payloadSep = "|"

var payloadActions = map[string]map[string]bool{
	DomainDate:      {ActionNav: true, ActionPick: true, ActionNoop: true},
	DomainDuplicate: {ActionReplace: true, ActionDifferent: true, ActionKeep: true},
	DomainEntry:     {ActionPick: true, ActionDelete: true, ActionPage: true, ActionCancel: true},
}

// Payload is the decoded form of a button payload
// "<domain>|<context>|<action>|<arg>".
type Payload struct {
	Domain  string
	Context string
	Action  string
	Arg     string
}

// String encodes p back into its wire form.
func (p Payload) String() string {
	return strings.Join([]string{p.Domain, p.Context, p.Action, p.Arg}, payloadSep)
}

// ParsePayload decodes a button payload. ok is false for anything that is not
// a known domain/action with exactly four fields.
func ParsePayload(s string) (Payload, bool) {
	parts := strings.Split(s, payloadSep)
	if len(parts) != 4 {
		return Payload{}, false
	}
	p := Payload{Domain: parts[0], Context: parts[1], Action: parts[2], Arg: parts[3]}
	actions, known := payloadActions[p.Domain]
	if !known || !actions[p.Action] {
		return Payload{}, false
	}
	if p.Context != ContextAdd && p.Context != ContextEdit {
		return Payload{}, false
	}
	return p, true
}

// Day decodes a YYYY-MM-DD argument.
func (p Payload) Day() (time.Time, bool) {
	d, err := domain.ParseDay(p.Arg)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// Index decodes a non-negative integer argument.
func (p Payload) Index() (int, bool) {
	n, err := strconv.Atoi(p.Arg)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func datePayload(ctx, action, arg string) string {
	return Payload{Domain: DomainDate, Context: ctx, Action: action, Arg: arg}.String()
}

func duplicatePayload(ctx, action string) string {
	return Payload{Domain: DomainDuplicate, Context: ctx, Action: action}.String()
}

func entryPayload(action string, arg int) string {
	return Payload{Domain: DomainEntry, Context: ContextEdit, Action: action, Arg: strconv.Itoa(arg)}.String()
}
