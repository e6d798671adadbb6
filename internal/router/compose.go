package router

import (
	"context"
	"fmt"

	"relaybot/internal/registry"
	"relaybot/internal/session"
	"relaybot/internal/transport"
	"relaybot/pkg/logx"
)

// content extracts the broadcastable payload of a message: plain text, or a
// photo reference with its caption.
func content(m transport.Message) (text, photoID string, ok bool) {
	if m.PhotoID != "" {
		return m.Caption, m.PhotoID, true
	}
	if m.Text != "" {
		return m.Text, "", true
	}
	return "", "", false
}

func (r *Router) handleCustomMessage(ctx context.Context, chatID int64, m transport.Message) {
	text, photoID, ok := content(m)
	if !ok {
		r.reply(ctx, chatID, textAskCustomMessage, nil)
		return
	}
	op, found := r.reg.Get(ctx, chatID)
	if !found {
		r.sessions.Reset(chatID)
		r.reply(ctx, chatID, textPleaseStart, nil)
		return
	}
	r.sessions.SetState(chatID, session.Authed)
	r.broadcastToRoster(ctx, chatID, op, text, photoID)
}

func (r *Router) handleDefaultMessage(ctx context.Context, chatID int64, m transport.Message) {
	text, photoID, ok := content(m)
	if !ok {
		r.reply(ctx, chatID, textAskDefaultMessage, nil)
		return
	}
	err := r.reg.Update(ctx, chatID, func(o *registry.Operator) {
		o.Settings.DefaultMessage = text
		o.Settings.DefaultPhoto = photoID
	})
	if err != nil {
		r.sessions.Reset(chatID)
		r.reply(ctx, chatID, textPleaseStart, nil)
		return
	}
	r.sessions.SetState(chatID, session.Authed)
	r.reply(ctx, chatID, textDefaultSaved, mainMenuMarkup())
}

// broadcastToRoster fans the message out; the dispatcher reports the outcome
// (or a "no groups" notice) back to the operator itself.
func (r *Router) broadcastToRoster(ctx context.Context, chatID int64, op registry.Operator, text, photoID string) {
	rep := r.disp.Broadcast(ctx, chatID, op.Groups, text, photoID)
	r.log.Info("operator broadcast",
		logx.Int64("chat_id", chatID),
		logx.Int("succeeded", rep.Succeeded),
		logx.Int("total", rep.Total))
}

func profileText(op registry.Operator) string {
	s := op.Settings
	schedule := "off"
	if s.Enabled {
		schedule = fmt.Sprintf("%s starting at %02d:00", intervalLabel(s.IntervalHours), s.StartTime)
	}
	return fmt.Sprintf("👤 %s\nGroups: %d\nSchedule: %s\nDefault message: %s",
		op.Login, len(op.Groups), schedule, truncate(s.DefaultMessage, 80))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
