package router

import (
	"context"

	"relaybot/internal/registry"
	"relaybot/internal/transport"
	"relaybot/pkg/logx"
)

// handleLogout deletes the operator record, leaves every group of the
// pre-deletion roster exactly once, and resets the dialog to the unauthenticated
// state.
func (r *Router) handleLogout(ctx context.Context, cb transport.Callback, ref transport.MessageRef, op registry.Operator) {
	removed, ok := r.reg.Remove(ctx, cb.ChatID)
	if !ok {
		removed = op
	}
	r.sessions.Reset(cb.ChatID)
	r.answer(ctx, cb.ID, "Logged out")

	for _, g := range removed.Groups {
		if err := r.adapter.LeaveChat(ctx, g.ID); err != nil {
			r.log.Warn("leave on logout failed",
				logx.Int64("group_id", g.ID),
				logx.Err(err))
		}
	}
	r.log.Info("operator logged out",
		logx.Int64("chat_id", cb.ChatID),
		logx.String("login", removed.Login),
		logx.Int("groups_left", len(removed.Groups)))

	r.edit(ctx, ref, textSessionReset, nil)
	r.reply(ctx, cb.ChatID, "👋 Goodbye!", removeKeyboardMarkup())
}
