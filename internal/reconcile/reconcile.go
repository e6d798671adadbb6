// Package reconcile keeps operator rosters in sync with the bot's real
// membership in group chats. It is the only writer of rosters.
package reconcile

import (
	"context"
	"fmt"

	"relaybot/internal/registry"
	"relaybot/internal/transport"
	"relaybot/pkg/logx"
)

type Reconciler struct {
	reg     *registry.Service
	adapter transport.Adapter
	log     logx.Logger
}

func New(reg *registry.Service, adapter transport.Adapter, log logx.Logger) *Reconciler {
	return &Reconciler{reg: reg, adapter: adapter, log: log}
}

// Handle applies one membership change. Events from users who are not
// registered operators are dropped: an invite from a stranger must not
// create a roster. Duplicate deliveries of the same event are no-ops
// because every mutation checks roster membership first.
func (r *Reconciler) Handle(ctx context.Context, ev transport.Membership) {
	op, ok := r.reg.Get(ctx, ev.ActorID)
	if !ok {
		r.log.Debug("membership change from unregistered user",
			logx.Int64("actor_id", ev.ActorID),
			logx.Int64("chat_id", ev.ChatID),
			logx.String("status", string(ev.NewStatus)))
		return
	}

	switch ev.NewStatus {
	case transport.StatusAdministrator:
		if op.HasGroup(ev.ChatID) {
			return
		}
		err := r.reg.Update(ctx, ev.ActorID, func(o *registry.Operator) {
			o.AddGroup(registry.Group{ID: ev.ChatID, Title: ev.ChatTitle})
		})
		if err != nil {
			r.log.Error("roster add failed", logx.Int64("actor_id", ev.ActorID), logx.Err(err))
			return
		}
		r.log.Info("group added to roster",
			logx.Int64("actor_id", ev.ActorID),
			logx.Int64("chat_id", ev.ChatID),
			logx.String("title", ev.ChatTitle))
		r.notify(ctx, ev.ActorID,
			fmt.Sprintf("✅ Group \"%s\" added. The bot will post your broadcasts there.", ev.ChatTitle))

	case transport.StatusMember:
		// In the chat but without admin rights; nothing to persist yet.
		r.notify(ctx, ev.ActorID,
			fmt.Sprintf("⚠️ The bot joined \"%s\" but needs administrator rights before it can be added to your groups.", ev.ChatTitle))

	case transport.StatusLeft, transport.StatusKicked:
		if !op.HasGroup(ev.ChatID) {
			return
		}
		title := rosterTitle(op, ev.ChatID, ev.ChatTitle)
		err := r.reg.Update(ctx, ev.ActorID, func(o *registry.Operator) {
			o.RemoveGroup(ev.ChatID)
		})
		if err != nil {
			r.log.Error("roster remove failed", logx.Int64("actor_id", ev.ActorID), logx.Err(err))
			return
		}
		r.log.Info("group removed from roster",
			logx.Int64("actor_id", ev.ActorID),
			logx.Int64("chat_id", ev.ChatID))
		r.notify(ctx, ev.ActorID,
			fmt.Sprintf("ℹ️ Group \"%s\" was removed from your groups.", title))
	}
}

// rosterTitle prefers the stored title; leave/kick events often carry an
// empty one.
func rosterTitle(op registry.Operator, chatID int64, fallback string) string {
	for _, g := range op.Groups {
		if g.ID == chatID && g.Title != "" {
			return g.Title
		}
	}
	if fallback != "" {
		return fallback
	}
	return "(unknown)"
}

func (r *Reconciler) notify(ctx context.Context, operatorChat int64, text string) {
	if _, err := r.adapter.SendText(ctx, transport.ChatTarget{ChatID: operatorChat}, text, nil); err != nil {
		r.log.Warn("operator notification failed", logx.Int64("chat_id", operatorChat), logx.Err(err))
	}
}
