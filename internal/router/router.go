// Package router drives the private-chat dialog: the login state machine,
// the main menu, message composition, the groups browser, schedule
// configuration and logout. Group-chat traffic never reaches it.
package router

import (
	"context"
	"strings"

	"relaybot/internal/broadcast"
	"relaybot/internal/callback"
	"relaybot/internal/config"
	"relaybot/internal/registry"
	"relaybot/internal/session"
	"relaybot/internal/transport"
	"relaybot/pkg/logx"
)

type Router struct {
	reg      *registry.Service
	sessions *session.Store
	disp     *broadcast.Dispatcher
	adapter  transport.Adapter
	log      logx.Logger
	auth     config.AuthConfig
}

func New(reg *registry.Service, sessions *session.Store, disp *broadcast.Dispatcher, adapter transport.Adapter, log logx.Logger, auth config.AuthConfig) *Router {
	return &Router{
		reg:      reg,
		sessions: sessions,
		disp:     disp,
		adapter:  adapter,
		log:      log,
		auth:     auth,
	}
}

// HandleMessage processes one inbound private message. Menu labels are
// matched before session state so the keyboard always works, even when the
// user is parked in the middle of a dialog.
func (r *Router) HandleMessage(ctx context.Context, m transport.Message) {
	if !m.IsPrivate {
		return
	}
	chatID := m.ChatID
	text := strings.TrimSpace(m.Text)

	switch text {
	case "/start":
		r.handleStart(ctx, chatID)
		return
	case "/help", labelHelp:
		r.reply(ctx, chatID, textHelp, nil)
		return
	}

	if op, ok := r.reg.Get(ctx, chatID); ok {
		if r.handleMenuLabel(ctx, chatID, text, op) {
			return
		}
	}

	sess := r.sessions.Get(chatID)
	switch sess.State {
	case session.AwaitLogin:
		r.handleLoginInput(ctx, chatID, text)
	case session.AwaitPassword:
		r.handlePasswordInput(ctx, chatID, sess, text)
	case session.AwaitCustomMessage:
		r.handleCustomMessage(ctx, chatID, m)
	case session.AwaitDefaultMessage:
		r.handleDefaultMessage(ctx, chatID, m)
	case session.Authed:
		r.reply(ctx, chatID, textUseMenu, mainMenuMarkup())
	default:
		// Idle chats ignore everything except /start and the menu.
	}
}

func (r *Router) handleStart(ctx context.Context, chatID int64) {
	if op, ok := r.reg.Get(ctx, chatID); ok {
		r.sessions.Set(chatID, session.Session{State: session.Authed})
		r.reply(ctx, chatID, "Welcome back, "+op.Login+"! "+textMainMenu, mainMenuMarkup())
		return
	}
	r.sessions.Set(chatID, session.Session{State: session.AwaitLogin})
	r.reply(ctx, chatID, textAskLogin, removeKeyboardMarkup())
}

// handleMenuLabel dispatches reply-keyboard presses for authenticated
// operators. Returns false when text is not a known label.
func (r *Router) handleMenuLabel(ctx context.Context, chatID int64, text string, op registry.Operator) bool {
	switch text {
	case labelSendMessage:
		r.sessions.SetState(chatID, session.Authed)
		r.reply(ctx, chatID, textSendMenu, sendMenuMarkup())
	case labelMyGroups:
		r.sessions.SetState(chatID, session.Authed)
		r.showGroups(ctx, chatID, op, transport.MessageRef{})
	case labelProfile:
		r.sessions.SetState(chatID, session.Authed)
		r.reply(ctx, chatID, profileText(op), nil)
	case labelSettings:
		r.sessions.SetState(chatID, session.Authed)
		r.reply(ctx, chatID, textSettingsMenu, settingsMenuMarkup())
	case labelLogout:
		r.sessions.SetState(chatID, session.Authed)
		r.reply(ctx, chatID, textLogoutConfirm, logoutConfirmMarkup())
	default:
		return false
	}
	return true
}

// HandleCallback processes one inline-button press. Unknown tokens get an
// explicit answer instead of a silent drop.
func (r *Router) HandleCallback(ctx context.Context, cb transport.Callback) {
	cmd, err := callback.Parse(cb.Data)
	if err != nil {
		r.log.Warn("rejected callback token",
			logx.String("data", cb.Data),
			logx.Int64("chat_id", cb.ChatID))
		r.answer(ctx, cb.ID, textUnknownAction)
		return
	}

	op, ok := r.reg.Get(ctx, cb.ChatID)
	if !ok {
		r.answer(ctx, cb.ID, textPleaseStart)
		return
	}
	ref := transport.MessageRef{ChatID: cb.ChatID, MessageID: cb.MessageID}

	switch cmd.Kind {
	case callback.KindSendCustom:
		r.sessions.SetState(cb.ChatID, session.AwaitCustomMessage)
		r.answer(ctx, cb.ID, "")
		r.reply(ctx, cb.ChatID, textAskCustomMessage, nil)

	case callback.KindSendDefault:
		r.answer(ctx, cb.ID, "")
		r.broadcastToRoster(ctx, cb.ChatID, op, op.Settings.DefaultMessage, op.Settings.DefaultPhoto)

	case callback.KindSetDefaultMessage:
		r.sessions.SetState(cb.ChatID, session.AwaitDefaultMessage)
		r.answer(ctx, cb.ID, "")
		r.reply(ctx, cb.ChatID, textAskDefaultMessage, nil)

	case callback.KindSetInterval:
		r.answer(ctx, cb.ID, "")
		r.edit(ctx, ref, textChooseInterval, intervalMenuMarkup())

	case callback.KindInterval:
		r.handleIntervalChosen(ctx, cb, ref, cmd.Interval)

	case callback.KindStartTime:
		r.handleStartHourChosen(ctx, cb, ref, op, cmd.Hour)

	case callback.KindGroupInfo:
		r.showGroupInfo(ctx, cb, ref, op, cmd.GroupID)

	case callback.KindRemoveGroup:
		r.askRemoveGroup(ctx, cb, ref, op, cmd.GroupID)

	case callback.KindConfirmRemoveGroup:
		r.removeGroup(ctx, cb, ref, cmd.GroupID)

	case callback.KindBackToGroups:
		r.answer(ctx, cb.ID, "")
		r.showGroups(ctx, cb.ChatID, op, ref)

	case callback.KindLogoutConfirm:
		r.handleLogout(ctx, cb, ref, op)

	case callback.KindLogoutCancel:
		r.answer(ctx, cb.ID, "")
		r.edit(ctx, ref, textLogoutCancelled, nil)
	}
}

func (r *Router) reply(ctx context.Context, chatID int64, text string, opt *transport.SendOptions) {
	if _, err := r.adapter.SendText(ctx, transport.ChatTarget{ChatID: chatID}, text, opt); err != nil {
		r.log.Warn("reply failed", logx.Int64("chat_id", chatID), logx.Err(err))
	}
}

// edit rewrites an existing menu message in place; if editing fails (message
// too old, deleted) it falls back to sending a fresh one.
func (r *Router) edit(ctx context.Context, ref transport.MessageRef, text string, opt *transport.SendOptions) {
	if ref.MessageID == 0 {
		r.reply(ctx, ref.ChatID, text, opt)
		return
	}
	if err := r.adapter.EditText(ctx, ref, text, opt); err != nil {
		r.log.Debug("edit failed, sending instead", logx.Int64("chat_id", ref.ChatID), logx.Err(err))
		r.reply(ctx, ref.ChatID, text, opt)
	}
}

func (r *Router) answer(ctx context.Context, callbackID, text string) {
	if err := r.adapter.AnswerCallback(ctx, callbackID, text); err != nil {
		r.log.Debug("callback answer failed", logx.Err(err))
	}
}
