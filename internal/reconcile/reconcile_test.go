package reconcile_test

import (
	"context"
	"testing"

	"relaybot/internal/reconcile"
	"relaybot/internal/registry"
	"relaybot/internal/store"
	"relaybot/internal/transport"
	"relaybot/internal/transport/transporttest"
	"relaybot/pkg/logx"
)

const operatorChat int64 = 777

func newFixture(t *testing.T) (*reconcile.Reconciler, *registry.Service, *transporttest.Fake) {
	t.Helper()
	ctx := context.Background()

	backend := store.NewFile(t.TempDir()+"/data.json", logx.Nop())
	reg, err := registry.New(ctx, backend, logx.Nop(), registry.PolicyFirstMatch)
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(ctx, operatorChat, "alice", "secret"); err != nil {
		t.Fatal(err)
	}

	fake := transporttest.NewFake()
	return reconcile.New(reg, fake, logx.Nop()), reg, fake
}

func TestAdminAddsGroupOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r, reg, fake := newFixture(t)

	ev := transport.Membership{
		ActorID:   operatorChat,
		ChatID:    -100500,
		ChatTitle: "announcements",
		NewStatus: transport.StatusAdministrator,
	}
	r.Handle(ctx, ev)
	r.Handle(ctx, ev) // duplicate delivery

	op, ok := reg.Get(ctx, operatorChat)
	if !ok {
		t.Fatal("operator vanished")
	}
	if len(op.Groups) != 1 || op.Groups[0].ID != -100500 {
		t.Fatalf("groups = %+v, want exactly one entry for -100500", op.Groups)
	}
	// Operator notified once, not once per delivery.
	if got := len(fake.SentTo(operatorChat)); got != 1 {
		t.Fatalf("operator got %d notifications, want 1", got)
	}
}

func TestMemberWithoutAdminPersistsNothing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r, reg, fake := newFixture(t)

	r.Handle(ctx, transport.Membership{
		ActorID:   operatorChat,
		ChatID:    -1,
		ChatTitle: "pending",
		NewStatus: transport.StatusMember,
	})

	op, _ := reg.Get(ctx, operatorChat)
	if len(op.Groups) != 0 {
		t.Fatalf("groups = %+v, want empty", op.Groups)
	}
	if got := len(fake.SentTo(operatorChat)); got != 1 {
		t.Fatalf("operator got %d notifications, want 1 (admin rights hint)", got)
	}
}

func TestLeftRemovesGroup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r, reg, _ := newFixture(t)

	r.Handle(ctx, transport.Membership{
		ActorID: operatorChat, ChatID: -9, ChatTitle: "g", NewStatus: transport.StatusAdministrator,
	})
	r.Handle(ctx, transport.Membership{
		ActorID: operatorChat, ChatID: -9, NewStatus: transport.StatusKicked,
	})
	r.Handle(ctx, transport.Membership{ // duplicate leave
		ActorID: operatorChat, ChatID: -9, NewStatus: transport.StatusLeft,
	})

	op, _ := reg.Get(ctx, operatorChat)
	if len(op.Groups) != 0 {
		t.Fatalf("groups = %+v, want empty", op.Groups)
	}
}

func TestUnregisteredActorIgnored(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r, reg, fake := newFixture(t)

	r.Handle(ctx, transport.Membership{
		ActorID:   424242, // not an operator
		ChatID:    -5,
		ChatTitle: "strangers",
		NewStatus: transport.StatusAdministrator,
	})

	if _, ok := reg.Get(ctx, 424242); ok {
		t.Fatal("stranger must not gain an operator record")
	}
	if len(fake.SentMessages()) != 0 {
		t.Fatal("nobody should be notified")
	}
}
