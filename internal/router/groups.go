package router

import (
	"context"
	"fmt"

	"relaybot/internal/registry"
	"relaybot/internal/transport"
	"relaybot/pkg/logx"
)

// showGroups renders the roster browser. With a message ref it edits the
// existing browser message in place; with a zero ref it sends a new one.
func (r *Router) showGroups(ctx context.Context, chatID int64, op registry.Operator, ref transport.MessageRef) {
	if len(op.Groups) == 0 {
		r.edit(ctx, transport.MessageRef{ChatID: chatID, MessageID: ref.MessageID}, textNoGroups, nil)
		return
	}
	r.edit(ctx, transport.MessageRef{ChatID: chatID, MessageID: ref.MessageID},
		textGroupsHeader, groupListMarkup(op.Groups))
}

func (r *Router) showGroupInfo(ctx context.Context, cb transport.Callback, ref transport.MessageRef, op registry.Operator, groupID int64) {
	g, ok := findGroup(op, groupID)
	if !ok {
		r.answer(ctx, cb.ID, textUnknownAction)
		r.showGroups(ctx, cb.ChatID, op, ref)
		return
	}
	r.answer(ctx, cb.ID, "")

	title := g.Title
	if info, err := r.adapter.ChatInfo(ctx, groupID); err == nil && info.Title != "" {
		title = info.Title
	}
	members := "unknown"
	if n, err := r.adapter.MemberCount(ctx, groupID); err == nil {
		members = fmt.Sprintf("%d", n)
	} else {
		r.log.Debug("member count failed", logx.Int64("chat_id", groupID), logx.Err(err))
	}

	text := fmt.Sprintf("👥 %s\nID: %d\nMembers: %s", title, groupID, members)
	r.edit(ctx, ref, text, groupInfoMarkup(groupID))
}

func (r *Router) askRemoveGroup(ctx context.Context, cb transport.Callback, ref transport.MessageRef, op registry.Operator, groupID int64) {
	g, ok := findGroup(op, groupID)
	if !ok {
		r.answer(ctx, cb.ID, textUnknownAction)
		r.showGroups(ctx, cb.ChatID, op, ref)
		return
	}
	r.answer(ctx, cb.ID, "")
	text := fmt.Sprintf("Remove \"%s\"? The bot will leave the group.", displayTitle(g))
	r.edit(ctx, ref, text, removeConfirmMarkup(groupID))
}

func (r *Router) removeGroup(ctx context.Context, cb transport.Callback, ref transport.MessageRef, groupID int64) {
	err := r.reg.Update(ctx, cb.ChatID, func(o *registry.Operator) {
		o.RemoveGroup(groupID)
	})
	if err != nil {
		r.answer(ctx, cb.ID, textPleaseStart)
		return
	}
	if err := r.adapter.LeaveChat(ctx, groupID); err != nil {
		r.log.Warn("leave chat failed", logx.Int64("chat_id", groupID), logx.Err(err))
	}
	r.answer(ctx, cb.ID, "Group removed")

	op, ok := r.reg.Get(ctx, cb.ChatID)
	if !ok {
		return
	}
	r.showGroups(ctx, cb.ChatID, op, ref)
}

func findGroup(op registry.Operator, id int64) (registry.Group, bool) {
	for _, g := range op.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return registry.Group{}, false
}

func displayTitle(g registry.Group) string {
	if g.Title != "" {
		return g.Title
	}
	return fmt.Sprintf("group %d", g.ID)
}
