// Package telegram connects the dialog to the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"time"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"

	"bodytrack/internal/app"
	"bodytrack/internal/logger"
)

const (
	handleTimeout = 30 * time.Second
	msgFailure    = "Something went wrong, please try again."
)

// Handler processes one inbound event.
type Handler interface {
	Handle(ctx context.Context, ev app.Event) ([]app.Response, error)
}

// replier is the subset of tele.Context used to deliver responses.
type replier interface {
	Send(what interface{}, opts ...interface{}) error
	Edit(what interface{}, opts ...interface{}) error
	Respond(resp ...*tele.CallbackResponse) error
}

// Bot long-polls Telegram and forwards messages and button presses to a Handler.
type Bot struct {
	bot     *tele.Bot
	handler Handler
	log     *logger.Logger
}

// New creates the bot and registers its handlers. It does not start polling.
func New(token string, pollTimeout time.Duration, h Handler, log *logger.Logger) (*Bot, error) {
	b := &Bot{handler: h, log: log.With("component", "telegram")}

	tb, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: pollTimeout},
		OnError: func(err error, c tele.Context) {
			b.log.Error("telegram update failed", "error", err)
		},
	})
	if err != nil {
		return nil, err
	}
	b.bot = tb

	tb.Handle("/start", b.onText)
	tb.Handle("/cancel", b.onText)
	tb.Handle(tele.OnText, b.onText)
	tb.Handle(tele.OnCallback, b.onCallback)
	return b, nil
}

// Start polls for updates until Stop is called.
func (b *Bot) Start() {
	b.log.Info("bot started", "username", b.bot.Me.Username)
	b.bot.Start()
}

// Stop ends polling.
func (b *Bot) Stop() {
	b.bot.Stop()
}

func (b *Bot) onText(c tele.Context) error {
	if c.Sender() == nil {
		return nil
	}
	return b.dispatch(c, app.Event{UserID: c.Sender().ID, Text: c.Text()})
}

func (b *Bot) onCallback(c tele.Context) error {
	cb := c.Callback()
	if cb == nil || c.Sender() == nil {
		return nil
	}
	return b.dispatch(c, app.Event{UserID: c.Sender().ID, Payload: cb.Data})
}

func (b *Bot) dispatch(r replier, ev app.Event) error {
	log := b.log.With("event_id", uuid.NewString(), "user_id", ev.UserID)
	log.Debug("event received", "callback", ev.IsCallback())

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	resps, err := b.handler.Handle(ctx, ev)
	if err != nil {
		log.Error("handle event", "error", err)
		if ev.IsCallback() {
			_ = r.Respond(&tele.CallbackResponse{})
		}
		return r.Send(msgFailure)
	}
	return deliver(r, log, ev.IsCallback(), resps)
}

// deliver renders responses in order. Button presses are always answered so
// the client stops its progress indicator.
func deliver(r replier, log *logger.Logger, callback bool, resps []app.Response) error {
	if callback {
		var notice string
		for _, resp := range resps {
			if resp.Notice != "" {
				notice = resp.Notice
				break
			}
		}
		if err := r.Respond(&tele.CallbackResponse{Text: notice}); err != nil {
			log.Warn("answer callback", "error", err)
		}
	}

	for _, resp := range resps {
		if err := send(r, callback, resp); err != nil {
			return err
		}
	}
	return nil
}

func send(r replier, callback bool, resp app.Response) error {
	var opts []interface{}
	if m := toMarkup(resp.Keyboard); m != nil {
		opts = append(opts, m)
	}

	switch {
	case resp.Image != nil:
		photo := &tele.Photo{File: tele.FromReader(bytes.NewReader(resp.Image)), Caption: resp.Text}
		return r.Send(photo, opts...)
	case resp.Text == "":
		return nil
	case resp.Edit && callback && (resp.Keyboard == nil || resp.Keyboard.Inline):
		if resp.Keyboard == nil {
			// An empty markup drops the inline keyboard of the edited message.
			opts = append(opts, &tele.ReplyMarkup{})
		}
		return r.Edit(resp.Text, opts...)
	default:
		return r.Send(resp.Text, opts...)
	}
}

func toMarkup(kb *app.Keyboard) *tele.ReplyMarkup {
	if kb == nil {
		return nil
	}
	m := &tele.ReplyMarkup{}
	if kb.Inline {
		m.InlineKeyboard = make([][]tele.InlineButton, 0, len(kb.Rows))
		for _, row := range kb.Rows {
			btns := make([]tele.InlineButton, 0, len(row))
			for _, b := range row {
				btns = append(btns, tele.InlineButton{Text: b.Text, Data: b.Data})
			}
			m.InlineKeyboard = append(m.InlineKeyboard, btns)
		}
		return m
	}

	m.ResizeKeyboard = true
	m.Placeholder = kb.Placeholder
	m.ReplyKeyboard = make([][]tele.ReplyButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		btns := make([]tele.ReplyButton, 0, len(row))
		for _, b := range row {
			btns = append(btns, tele.ReplyButton{Text: b.Text})
		}
		m.ReplyKeyboard = append(m.ReplyKeyboard, btns)
	}
	return m
}
