package broadcast

import (
	"context"
	"strings"
	"testing"

	"relaybot/internal/config"
	"relaybot/internal/registry"
	"relaybot/internal/transport/transporttest"
	"relaybot/pkg/logx"
)

func fastDispatcher(fake *transporttest.Fake) *Dispatcher {
	// High rate so tests don't sit in limiter.Wait.
	return New(fake, logx.Nop(), &config.BroadcastConfig{RatePerSec: 1000})
}

func TestSendAllSucceed(t *testing.T) {
	t.Parallel()

	fake := transporttest.NewFake()
	d := fastDispatcher(fake)

	groups := []registry.Group{
		{ID: -100, Title: "alpha"},
		{ID: -200, Title: "beta"},
		{ID: -300, Title: "gamma"},
	}
	rep := d.Send(context.Background(), groups, "hello", "")

	if rep.Total != 3 || rep.Succeeded != 3 || len(rep.Failed) != 0 {
		t.Fatalf("report = %+v", rep)
	}
	if got := len(fake.SentMessages()); got != 3 {
		t.Fatalf("sent %d messages, want 3", got)
	}
}

func TestSendToleratesPartialFailure(t *testing.T) {
	t.Parallel()

	fake := transporttest.NewFake()
	fake.FailChats[-200] = true
	d := fastDispatcher(fake)

	groups := []registry.Group{
		{ID: -100, Title: "alpha"},
		{ID: -200, Title: "beta"},
		{ID: -300, Title: "gamma"},
	}
	rep := d.Send(context.Background(), groups, "hello", "")

	if rep.Succeeded != 2 {
		t.Fatalf("succeeded = %d, want 2", rep.Succeeded)
	}
	if len(rep.Failed) != 1 || rep.Failed[0].ChatID != -200 {
		t.Fatalf("failed = %+v", rep.Failed)
	}
	// The failing middle group must not stop delivery to the last one.
	if got := fake.SentTo(-300); len(got) != 1 {
		t.Fatalf("chat -300 got %d messages, want 1", len(got))
	}
}

func TestBroadcastReportsToOperator(t *testing.T) {
	t.Parallel()

	fake := transporttest.NewFake()
	fake.FailChats[-200] = true
	d := fastDispatcher(fake)

	groups := []registry.Group{
		{ID: -100, Title: "alpha"},
		{ID: -200, Title: "beta"},
	}
	rep := d.Broadcast(context.Background(), 10, groups, "hello", "")

	if rep.Total != 2 || rep.Succeeded != 1 {
		t.Fatalf("report = %+v", rep)
	}
	got := fake.SentTo(10)
	if len(got) != 1 {
		t.Fatalf("operator got %d messages, want 1", len(got))
	}
	if !strings.Contains(got[0].Text, "1 out of 2") {
		t.Fatalf("operator report = %q", got[0].Text)
	}
}

func TestBroadcastEmptyRosterNotice(t *testing.T) {
	t.Parallel()

	fake := transporttest.NewFake()
	d := fastDispatcher(fake)

	rep := d.Broadcast(context.Background(), 10, nil, "hello", "")
	if rep.Total != 0 || rep.Succeeded != 0 {
		t.Fatalf("report = %+v", rep)
	}
	got := fake.SentTo(10)
	if len(got) != 1 || !strings.Contains(got[0].Text, "no groups") {
		t.Fatalf("operator got %+v, want the no-groups notice", got)
	}
	// Nothing besides the notice may go out.
	if len(fake.SentMessages()) != 1 {
		t.Fatalf("sent %d messages, want only the notice", len(fake.SentMessages()))
	}
}

func TestSendPhotoUsesPhotoPath(t *testing.T) {
	t.Parallel()

	fake := transporttest.NewFake()
	d := fastDispatcher(fake)

	rep := d.Send(context.Background(), []registry.Group{{ID: -1, Title: "g"}}, "caption", "photo-file-id")
	if rep.Succeeded != 1 {
		t.Fatalf("report = %+v", rep)
	}
	sent := fake.SentMessages()
	if sent[0].PhotoID != "photo-file-id" || sent[0].Text != "caption" {
		t.Fatalf("sent = %+v", sent[0])
	}
}

func TestSendEmptyRoster(t *testing.T) {
	t.Parallel()

	fake := transporttest.NewFake()
	d := fastDispatcher(fake)

	rep := d.Send(context.Background(), nil, "hello", "")
	if rep.Total != 0 || rep.Succeeded != 0 || len(rep.Failed) != 0 {
		t.Fatalf("report = %+v", rep)
	}
	if len(fake.SentMessages()) != 0 {
		t.Fatal("no messages expected for empty roster")
	}
}

func TestSendCancelledContext(t *testing.T) {
	t.Parallel()

	fake := transporttest.NewFake()
	d := fastDispatcher(fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	groups := []registry.Group{{ID: -1, Title: "a"}, {ID: -2, Title: "b"}}
	rep := d.Send(ctx, groups, "hello", "")

	if rep.Succeeded != 0 || len(rep.Failed) != 2 {
		t.Fatalf("report = %+v", rep)
	}
}
