package router_test

import (
	"context"
	"strings"
	"testing"

	"relaybot/internal/broadcast"
	"relaybot/internal/config"
	"relaybot/internal/registry"
	"relaybot/internal/router"
	"relaybot/internal/session"
	"relaybot/internal/store"
	"relaybot/internal/transport"
	"relaybot/internal/transport/transporttest"
	"relaybot/pkg/logx"
)

const chat int64 = 1001

type fixture struct {
	r        *router.Router
	reg      *registry.Service
	sessions *session.Store
	fake     *transporttest.Fake
}

func newFixture(t *testing.T, auth config.AuthConfig) *fixture {
	t.Helper()
	ctx := context.Background()

	backend := store.NewFile(t.TempDir()+"/data.json", logx.Nop())
	reg, err := registry.New(ctx, backend, logx.Nop(), registry.PolicyFirstMatch)
	if err != nil {
		t.Fatal(err)
	}
	fake := transporttest.NewFake()
	disp := broadcast.New(fake, logx.Nop(), &config.BroadcastConfig{RatePerSec: 1000})
	sessions := session.NewStore()
	r := router.New(reg, sessions, disp, fake, logx.Nop(), auth)
	return &fixture{r: r, reg: reg, sessions: sessions, fake: fake}
}

func (f *fixture) text(t *testing.T, chatID int64, s string) {
	t.Helper()
	f.r.HandleMessage(context.Background(), transport.Message{
		ChatID: chatID, FromID: chatID, Text: s, IsPrivate: true,
	})
}

func (f *fixture) press(t *testing.T, chatID int64, data string) {
	t.Helper()
	f.r.HandleCallback(context.Background(), transport.Callback{
		ID: "cb-" + data, FromID: chatID, ChatID: chatID, MessageID: 1, Data: data,
	})
}

func (f *fixture) login(t *testing.T, chatID int64, login, password string) {
	t.Helper()
	f.text(t, chatID, "/start")
	f.text(t, chatID, login)
	f.text(t, chatID, password)
}

func lastText(t *testing.T, f *fixture, chatID int64) string {
	t.Helper()
	sent := f.fake.SentTo(chatID)
	if len(sent) == 0 {
		t.Fatal("no messages sent to chat")
	}
	return sent[len(sent)-1].Text
}

func TestLoginCreatesExactlyOneOperator(t *testing.T) {
	t.Parallel()
	f := newFixture(t, config.AuthConfig{})
	ctx := context.Background()

	f.login(t, chat, "alice", "secret")

	if st := f.sessions.Get(chat).State; st != session.Authed {
		t.Fatalf("state = %v, want Authed", st)
	}
	op, ok := f.reg.Get(ctx, chat)
	if !ok || op.Login != "alice" {
		t.Fatalf("operator = %+v, ok = %v", op, ok)
	}
	if len(f.reg.Snapshot(ctx).Users) != 1 {
		t.Fatal("want exactly one operator record")
	}
	// Fresh operators get the default schedule.
	if !op.Settings.Enabled || op.Settings.IntervalHours != 3 || op.Settings.StartTime != 8 {
		t.Fatalf("settings = %+v", op.Settings)
	}
}

func TestReturningLoginBindsExistingRecord(t *testing.T) {
	t.Parallel()
	f := newFixture(t, config.AuthConfig{})
	ctx := context.Background()

	f.login(t, chat, "alice", "secret")
	if err := f.reg.Update(ctx, chat, func(o *registry.Operator) {
		o.AddGroup(registry.Group{ID: -7, Title: "news"})
	}); err != nil {
		t.Fatal(err)
	}

	const otherChat int64 = 2002
	f.login(t, otherChat, "alice", "whatever") // no password check by default

	op, ok := f.reg.Get(ctx, otherChat)
	if !ok {
		t.Fatal("returning login did not bind")
	}
	if len(op.Groups) != 1 || op.Groups[0].ID != -7 {
		t.Fatalf("groups not carried over: %+v", op.Groups)
	}
}

func TestPasswordVerificationWhenEnabled(t *testing.T) {
	t.Parallel()
	f := newFixture(t, config.AuthConfig{VerifyPasswords: true})

	f.login(t, chat, "alice", "secret")

	const otherChat int64 = 2002
	f.login(t, otherChat, "alice", "wrong")

	if _, ok := f.reg.Get(context.Background(), otherChat); ok {
		t.Fatal("wrong password must not bind the record")
	}
	if st := f.sessions.Get(otherChat).State; st != session.AwaitLogin {
		t.Fatalf("state = %v, want AwaitLogin after rejection", st)
	}
}

func TestIdleIgnoresRandomText(t *testing.T) {
	t.Parallel()
	f := newFixture(t, config.AuthConfig{})

	f.text(t, chat, "hello?")
	if got := len(f.fake.SentTo(chat)); got != 0 {
		t.Fatalf("idle chat got %d replies, want 0", got)
	}
}

func TestCustomBroadcastReportsCounts(t *testing.T) {
	t.Parallel()
	f := newFixture(t, config.AuthConfig{})
	ctx := context.Background()

	f.login(t, chat, "alice", "secret")
	if err := f.reg.Update(ctx, chat, func(o *registry.Operator) {
		o.AddGroup(registry.Group{ID: -1, Title: "a"})
		o.AddGroup(registry.Group{ID: -2, Title: "b"})
	}); err != nil {
		t.Fatal(err)
	}
	f.fake.FailChats[-2] = true
	f.fake.Reset()

	f.press(t, chat, "send_custom")
	f.text(t, chat, "big announcement")

	if got := lastText(t, f, chat); !strings.Contains(got, "1 out of 2") {
		t.Fatalf("report = %q, want 1 out of 2", got)
	}
	if got := f.fake.SentTo(-1); len(got) != 1 || got[0].Text != "big announcement" {
		t.Fatalf("group -1 got %+v", got)
	}
	if st := f.sessions.Get(chat).State; st != session.Authed {
		t.Fatalf("state = %v, want Authed after send", st)
	}
}

func TestCustomBroadcastEmptyRoster(t *testing.T) {
	t.Parallel()
	f := newFixture(t, config.AuthConfig{})

	f.login(t, chat, "alice", "secret")
	f.fake.Reset()

	f.press(t, chat, "send_custom")
	f.text(t, chat, "into the void")

	sent := f.fake.SentTo(chat)
	// Prompt + "no groups" notice only; nothing broadcast anywhere else.
	if len(f.fake.SentMessages()) != len(sent) {
		t.Fatal("no group sends expected")
	}
	if got := sent[len(sent)-1].Text; !strings.Contains(got, "no groups") {
		t.Fatalf("notice = %q", got)
	}
}

func TestDefaultMessagePersisted(t *testing.T) {
	t.Parallel()
	f := newFixture(t, config.AuthConfig{})
	ctx := context.Background()

	f.login(t, chat, "alice", "secret")
	f.press(t, chat, "set_default_message")
	f.r.HandleMessage(ctx, transport.Message{
		ChatID: chat, FromID: chat, PhotoID: "file-123", Caption: "daily photo", IsPrivate: true,
	})

	op, _ := f.reg.Get(ctx, chat)
	if op.Settings.DefaultMessage != "daily photo" || op.Settings.DefaultPhoto != "file-123" {
		t.Fatalf("settings = %+v", op.Settings)
	}
}

func TestScheduleConfigurationFlow(t *testing.T) {
	t.Parallel()
	f := newFixture(t, config.AuthConfig{})
	ctx := context.Background()

	f.login(t, chat, "alice", "secret")
	f.press(t, chat, "set_interval")
	f.press(t, chat, "interval_6")
	f.press(t, chat, "starttime_8")

	op, _ := f.reg.Get(ctx, chat)
	if op.Settings.IntervalHours != 6 || op.Settings.StartTime != 8 {
		t.Fatalf("settings = %+v", op.Settings)
	}
}

func TestGroupRemoveConfirmFlow(t *testing.T) {
	t.Parallel()
	f := newFixture(t, config.AuthConfig{})
	ctx := context.Background()

	f.login(t, chat, "alice", "secret")
	if err := f.reg.Update(ctx, chat, func(o *registry.Operator) {
		o.AddGroup(registry.Group{ID: -50, Title: "old group"})
	}); err != nil {
		t.Fatal(err)
	}

	f.press(t, chat, "remove_group_-50")
	// Not removed yet; waiting for confirmation.
	if op, _ := f.reg.Get(ctx, chat); len(op.Groups) != 1 {
		t.Fatal("group removed before confirmation")
	}

	f.press(t, chat, "confirm_remove_group_-50")
	if op, _ := f.reg.Get(ctx, chat); len(op.Groups) != 0 {
		t.Fatal("group not removed after confirmation")
	}
	if left := f.fake.LeftChats(); len(left) != 1 || left[0] != -50 {
		t.Fatalf("left chats = %v, want [-50]", left)
	}
}

func TestLogoutLeavesEveryGroupOnce(t *testing.T) {
	t.Parallel()
	f := newFixture(t, config.AuthConfig{})
	ctx := context.Background()

	f.login(t, chat, "alice", "secret")
	if err := f.reg.Update(ctx, chat, func(o *registry.Operator) {
		o.AddGroup(registry.Group{ID: -1, Title: "a"})
		o.AddGroup(registry.Group{ID: -2, Title: "b"})
		o.AddGroup(registry.Group{ID: -3, Title: "c"})
	}); err != nil {
		t.Fatal(err)
	}

	f.press(t, chat, "logout_confirm")

	if _, ok := f.reg.Get(ctx, chat); ok {
		t.Fatal("operator record survived logout")
	}
	left := f.fake.LeftChats()
	seen := map[int64]int{}
	for _, id := range left {
		seen[id]++
	}
	for _, want := range []int64{-1, -2, -3} {
		if seen[want] != 1 {
			t.Fatalf("left chats = %v, want each of -1,-2,-3 exactly once", left)
		}
	}
	if st := f.sessions.Get(chat).State; st != session.Idle {
		t.Fatalf("state = %v, want Idle after logout", st)
	}
}

func TestUnknownCallbackAnswered(t *testing.T) {
	t.Parallel()
	f := newFixture(t, config.AuthConfig{})

	f.login(t, chat, "alice", "secret")
	f.press(t, chat, "launch_missiles")

	answered := f.fake.AnsweredCallbacks()
	if len(answered) == 0 || answered[len(answered)-1] != "cb-launch_missiles" {
		t.Fatalf("answered = %v, want the rejected token acknowledged", answered)
	}
}

func TestMenuLabelBeatsDialogState(t *testing.T) {
	t.Parallel()
	f := newFixture(t, config.AuthConfig{})

	f.login(t, chat, "alice", "secret")
	f.press(t, chat, "send_custom") // park in AwaitCustomMessage
	f.fake.Reset()

	f.text(t, chat, "👥 My groups")

	if got := lastText(t, f, chat); !strings.Contains(got, "no groups") {
		t.Fatalf("reply = %q, want the groups view, not a broadcast", got)
	}
	if len(f.fake.SentMessages()) != len(f.fake.SentTo(chat)) {
		t.Fatal("menu label must not be broadcast to groups")
	}
}
