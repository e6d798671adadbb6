package router

import (
	"context"
	"fmt"
	"strings"

	"relaybot/internal/registry"
	"relaybot/internal/transport"
)

func (r *Router) handleIntervalChosen(ctx context.Context, cb transport.Callback, ref transport.MessageRef, hours int) {
	if !validInterval(hours) {
		r.answer(ctx, cb.ID, textUnknownAction)
		return
	}
	err := r.reg.Update(ctx, cb.ChatID, func(o *registry.Operator) {
		o.Settings.IntervalHours = hours
		o.Settings.Enabled = true
	})
	if err != nil {
		r.answer(ctx, cb.ID, textPleaseStart)
		return
	}
	r.answer(ctx, cb.ID, "")
	r.edit(ctx, ref, textChooseHour, hourGridMarkup())
}

func (r *Router) handleStartHourChosen(ctx context.Context, cb transport.Callback, ref transport.MessageRef, op registry.Operator, hour int) {
	err := r.reg.Update(ctx, cb.ChatID, func(o *registry.Operator) {
		o.Settings.StartTime = hour
		o.Settings.Enabled = true
	})
	if err != nil {
		r.answer(ctx, cb.ID, textPleaseStart)
		return
	}
	r.answer(ctx, cb.ID, "")

	interval := op.Settings.IntervalHours
	if fresh, ok := r.reg.Get(ctx, cb.ChatID); ok {
		interval = fresh.Settings.IntervalHours
	}
	r.edit(ctx, ref, scheduleSummary(interval, hour), nil)
}

func validInterval(hours int) bool {
	for _, h := range intervalChoices {
		if h == hours {
			return true
		}
	}
	return false
}

// scheduleSummary renders the confirmation with the first few send times of
// the day, so the operator sees what the chosen interval actually means.
func scheduleSummary(intervalHours, startHour int) string {
	var times []string
	for i, h := 0, startHour; i < 24/max(intervalHours, 1) && i < 8; i++ {
		times = append(times, fmt.Sprintf("%02d:00", h%24))
		h += intervalHours
	}
	return fmt.Sprintf("✅ Schedule saved: %s.\nSend times: %s",
		intervalLabel(intervalHours), strings.Join(times, ", "))
}
