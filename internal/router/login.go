package router

import (
	"context"
	"errors"

	"relaybot/internal/registry"
	"relaybot/internal/session"
	"relaybot/pkg/logx"
)

func (r *Router) handleLoginInput(ctx context.Context, chatID int64, text string) {
	if text == "" {
		r.reply(ctx, chatID, textAskLogin, nil)
		return
	}
	r.sessions.Set(chatID, session.Session{State: session.AwaitPassword, LoginDraft: text})
	r.reply(ctx, chatID, textAskPassword, nil)
}

// handlePasswordInput completes the login dialog. A login already present in
// the registry binds this chat to the existing record (returning operator);
// an unseen login registers a fresh one with default settings.
//
// Password verification is off by default to keep compatibility with
// registries created by earlier deployments, where any matching login was
// accepted as proof of identity. auth.verify_passwords turns the check on.
func (r *Router) handlePasswordInput(ctx context.Context, chatID int64, sess session.Session, text string) {
	login := sess.LoginDraft
	if login == "" {
		// Draft lost (restart mid-dialog); start over.
		r.sessions.Set(chatID, session.Session{State: session.AwaitLogin})
		r.reply(ctx, chatID, textAskLogin, nil)
		return
	}
	if text == "" {
		r.reply(ctx, chatID, textAskPassword, nil)
		return
	}

	if _, existing, found := r.reg.FindByLogin(ctx, login); found {
		if r.auth.VerifyPasswords && existing.Password != text {
			r.log.Info("password rejected", logx.Int64("chat_id", chatID), logx.String("login", login))
			r.sessions.Set(chatID, session.Session{State: session.AwaitLogin})
			r.reply(ctx, chatID, textBadPassword, nil)
			return
		}
		r.reg.Put(ctx, chatID, existing)
		r.finishLogin(ctx, chatID, login, true)
		return
	}

	if err := r.reg.Register(ctx, chatID, login, text); err != nil {
		if errors.Is(err, registry.ErrLoginTaken) {
			r.sessions.Set(chatID, session.Session{State: session.AwaitLogin})
			r.reply(ctx, chatID, textLoginTaken, nil)
			return
		}
		r.log.Error("registration failed", logx.Int64("chat_id", chatID), logx.Err(err))
		r.sessions.Set(chatID, session.Session{State: session.AwaitLogin})
		r.reply(ctx, chatID, textAskLogin, nil)
		return
	}
	r.finishLogin(ctx, chatID, login, false)
}

func (r *Router) finishLogin(ctx context.Context, chatID int64, login string, returning bool) {
	r.sessions.Set(chatID, session.Session{State: session.Authed})
	greeting := "✅ Account created. Welcome, " + login + "!"
	if returning {
		greeting = "✅ Logged in. Welcome back, " + login + "!"
	}
	r.log.Info("operator logged in",
		logx.Int64("chat_id", chatID),
		logx.String("login", login),
		logx.Bool("returning", returning))
	r.reply(ctx, chatID, greeting+"\n\n"+textMainMenu, mainMenuMarkup())
}
