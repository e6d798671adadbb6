package router

import (
	"fmt"

	tele "gopkg.in/telebot.v4"

	"relaybot/internal/callback"
	"relaybot/internal/registry"
	"relaybot/internal/transport"
	"relaybot/pkg/tgui"
)

func mainMenuMarkup() *transport.SendOptions {
	return &transport.SendOptions{ReplyMarkupAdapter: tgui.Reply(
		[]string{labelSendMessage, labelMyGroups},
		[]string{labelProfile, labelSettings},
		[]string{labelHelp, labelLogout},
	)}
}

func sendMenuMarkup() *transport.SendOptions {
	kb := tgui.NewInline().
		Row(tgui.Btn("✍️ Custom message", callback.SendCustom())).
		Row(tgui.Btn("📋 Default message", callback.SendDefault()))
	return &transport.SendOptions{ReplyMarkupAdapter: kb.Markup()}
}

func settingsMenuMarkup() *transport.SendOptions {
	kb := tgui.NewInline().
		Row(tgui.Btn("📝 Set default message", callback.SetDefaultMessage())).
		Row(tgui.Btn("⏰ Set schedule", callback.SetInterval()))
	return &transport.SendOptions{ReplyMarkupAdapter: kb.Markup()}
}

func logoutConfirmMarkup() *transport.SendOptions {
	kb := tgui.ConfirmInline(
		tgui.Btn("✅ Yes, log out", callback.LogoutConfirm()),
		tgui.Btn("❌ Cancel", callback.LogoutCancel()),
	)
	return &transport.SendOptions{ReplyMarkupAdapter: kb.Markup()}
}

// intervalChoices are the offered broadcast periods, in hours.
var intervalChoices = []int{1, 2, 3, 4, 6, 8, 12, 24}

func intervalMenuMarkup() *transport.SendOptions {
	buttons := make([]tele.Btn, 0, len(intervalChoices))
	for _, h := range intervalChoices {
		buttons = append(buttons, tgui.Btn(intervalLabel(h), callback.Interval(h)))
	}
	return &transport.SendOptions{ReplyMarkupAdapter: tgui.Grid(4, buttons)}
}

func intervalLabel(hours int) string {
	if hours == 1 {
		return "every hour"
	}
	if hours == 24 {
		return "once a day"
	}
	return fmt.Sprintf("every %dh", hours)
}

func hourGridMarkup() *transport.SendOptions {
	return &transport.SendOptions{ReplyMarkupAdapter: tgui.HourGrid(callback.StartTime)}
}

func groupListMarkup(groups []registry.Group) *transport.SendOptions {
	kb := tgui.NewInline()
	for _, g := range groups {
		title := g.Title
		if title == "" {
			title = fmt.Sprintf("group %d", g.ID)
		}
		kb.Row(tgui.Btn(title, callback.GroupInfo(g.ID)))
	}
	return &transport.SendOptions{ReplyMarkupAdapter: kb.Markup()}
}

func groupInfoMarkup(id int64) *transport.SendOptions {
	kb := tgui.NewInline().
		Row(tgui.Btn("🗑 Remove group", callback.RemoveGroup(id))).
		Row(tgui.Btn("⬅️ Back", callback.BackToGroups()))
	return &transport.SendOptions{ReplyMarkupAdapter: kb.Markup()}
}

func removeConfirmMarkup(id int64) *transport.SendOptions {
	kb := tgui.ConfirmInline(
		tgui.Btn("✅ Yes, remove", callback.ConfirmRemoveGroup(id)),
		tgui.Btn("⬅️ Back", callback.BackToGroups()),
	)
	return &transport.SendOptions{ReplyMarkupAdapter: kb.Markup()}
}

func removeKeyboardMarkup() *transport.SendOptions {
	return &transport.SendOptions{ReplyMarkupAdapter: tgui.RemoveKeyboard()}
}
