package app

import (
	"context"
	"fmt"

	"bodytrack/internal/domain"
)

const (
	msgAskHeight     = "Send your height in cm (50-250)."
	msgBadHeight     = "Please send a height between 50 and 250 cm."
	msgAskGoalWeight = "Send goal weight in kg (e.g., 75)."
	msgAskGoalFat    = "Send goal fat % (e.g., 15)."
	msgBadGoalFat    = "Please send a goal fat % between 0 and 100."
)

func (d *Dialog) startHeight(sess *domain.Session) ([]Response, error) {
	sess.Reset()
	sess.Step = domain.StepHeight
	return reply(msgAskHeight, CancelKeyboard()), nil
}

func (d *Dialog) onHeight(ctx context.Context, sess *domain.Session, text string) ([]Response, error) {
	h, err := ParseHeight(text)
	if err != nil {
		return reply(msgBadHeight, CancelKeyboard()), nil
	}
	if err := d.profiles.SetHeight(ctx, sess.UserID, h); err != nil {
		return nil, err
	}
	sess.Reset()
	return reply(fmt.Sprintf("Height saved: %.1f cm", h), d.mainMenu(ctx, sess.UserID)), nil
}

func (d *Dialog) startGoal(sess *domain.Session) ([]Response, error) {
	sess.Reset()
	sess.Step = domain.StepGoalWeight
	return reply(msgAskGoalWeight, CancelKeyboard()), nil
}

func (d *Dialog) onGoalWeight(sess *domain.Session, text string) ([]Response, error) {
	w, err := ParseWeight(text)
	if err != nil {
		return reply(msgBadWeight, CancelKeyboard()), nil
	}
	sess.GoalWeightKg = &w
	sess.Step = domain.StepGoalFat
	return reply(msgAskGoalFat, CancelKeyboard()), nil
}

func (d *Dialog) onGoalFat(ctx context.Context, sess *domain.Session, text string) ([]Response, error) {
	if sess.GoalWeightKg == nil {
		return nil, errInconsistent
	}
	fat, err := ParseFatPct(text)
	if err != nil {
		return reply(msgBadGoalFat, CancelKeyboard()), nil
	}
	w := *sess.GoalWeightKg
	if err := d.profiles.SetGoal(ctx, sess.UserID, w, fat); err != nil {
		return nil, err
	}
	sess.Reset()
	goal := &domain.Profile{ID: sess.UserID, GoalWeightKg: &w, GoalFatPct: &fat}
	return reply("Saved. "+FormatGoal(goal), MainKeyboard(true)), nil
}
