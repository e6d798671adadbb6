// Package app wires the process together: config, logging, storage,
// transport, the dialog router, the membership reconciler and the
// scheduler, all supervised under one context.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"relaybot/internal/broadcast"
	"relaybot/internal/config"
	"relaybot/internal/reconcile"
	"relaybot/internal/registry"
	"relaybot/internal/router"
	"relaybot/internal/runtime/supervisor"
	"relaybot/internal/scheduler"
	"relaybot/internal/session"
	"relaybot/internal/store"
	"relaybot/internal/transport"
	"relaybot/internal/transport/telegram"
	"relaybot/pkg/logx"
)

const updateBuffer = 256

type App struct {
	cfgm *config.Manager
	sup  *supervisor.Supervisor

	log  logx.Logger
	logs *logx.Service

	adapter transport.Adapter
	backend registry.Backend
	policy  registry.DuplicatePolicy

	reg      *registry.Service
	sessions *session.Store
	disp     *broadcast.Dispatcher
	router   *router.Router
	rec      *reconcile.Reconciler
	sched    *scheduler.Scheduler

	updates chan transport.Update
	cfgSub  chan *config.Config
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logs, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File:    logx.FileConfig{Enabled: cfg.Logging.File.Enabled, Path: cfg.Logging.File.Path},
	})
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	policy, ok := registry.ParseDuplicatePolicy(cfg.Auth.DuplicateLoginPolicy)
	if !ok {
		_ = logs.Close()
		return nil, fmt.Errorf("auth.duplicate_login_policy: unknown value %q", cfg.Auth.DuplicateLoginPolicy)
	}

	pollTimeout, err := config.ParseDurationOrDefault("telegram.poll_timeout", cfg.Telegram.PollTimeout, 10*time.Second)
	if err != nil {
		_ = logs.Close()
		return nil, err
	}
	adapter, err := telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		PollTimeout: pollTimeout,
	}, log.With(logx.String("comp", "telegram")))
	if err != nil {
		_ = logs.Close()
		return nil, fmt.Errorf("telegram adapter: %w", err)
	}

	backend, err := store.Open(cfg.Storage, log.With(logx.String("comp", "store")))
	if err != nil {
		_ = logs.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	return &App{
		cfgm:    cfgm,
		log:     log,
		logs:    logs,
		adapter: adapter,
		backend: backend,
		policy:  policy,
	}, nil
}

func (a *App) Start(ctx context.Context) error {
	cfg := a.cfgm.Get()

	a.sup = supervisor.New(ctx, a.log.With(logx.String("comp", "supervisor")))

	reg, err := registry.New(ctx, a.backend, a.log.With(logx.String("comp", "registry")), a.policy)
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}
	a.reg = reg
	a.sessions = session.NewStore()
	a.disp = broadcast.New(a.adapter, a.log.With(logx.String("comp", "broadcast")), cfg.Broadcast)
	a.router = router.New(reg, a.sessions, a.disp, a.adapter,
		a.log.With(logx.String("comp", "router")), cfg.Auth)
	a.rec = reconcile.New(reg, a.adapter, a.log.With(logx.String("comp", "reconcile")))

	a.sched, err = scheduler.New(reg, a.disp, a.log.With(logx.String("comp", "scheduler")), cfg.Scheduler)
	if err != nil {
		return err
	}

	a.updates = make(chan transport.Update, updateBuffer)
	if err := a.adapter.Start(a.sup.Context(), a.updates); err != nil {
		return fmt.Errorf("start transport: %w", err)
	}

	a.sup.Go("updates.dispatch", a.dispatchLoop)
	a.sup.GoRestart("config.watch", a.cfgm.Watch)

	a.cfgSub = a.cfgm.Subscribe(1)
	a.sup.Go("config.apply", a.applyLoop)

	if err := a.sched.Start(a.sup.Context()); err != nil {
		return err
	}

	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		a.log.Warn("sd_notify failed", logx.Err(err))
	} else if sent {
		a.log.Debug("sd_notify: ready")
	}
	a.log.Info("relay bot started")
	return nil
}

// dispatchLoop is the single consumer of transport updates. Handlers run to
// completion in order, so two dialogs never interleave within one chat.
func (a *App) dispatchLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case up := <-a.updates:
			switch up.Kind {
			case transport.UpdateMessage:
				if up.Message != nil {
					a.router.HandleMessage(ctx, *up.Message)
				}
			case transport.UpdateCallback:
				if up.Callback != nil {
					a.router.HandleCallback(ctx, *up.Callback)
				}
			case transport.UpdateMembership:
				if up.Membership != nil {
					a.rec.Handle(ctx, *up.Membership)
				}
			}
		}
	}
}

// applyLoop propagates hot config reloads to the components that can absorb
// them without a restart: log sinks and broadcast pacing. Token, storage
// driver and schedule topology changes still need a process restart.
func (a *App) applyLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case cfg, ok := <-a.cfgSub:
			if !ok {
				return nil
			}
			a.logs.Apply(logx.Config{
				Level:   cfg.Logging.Level,
				Console: cfg.Logging.Console,
				File:    logx.FileConfig{Enabled: cfg.Logging.File.Enabled, Path: cfg.Logging.File.Path},
			})
			a.disp.Apply(cfg.Broadcast)
			a.log.Info("runtime config applied")
		}
	}
}

func (a *App) Stop(ctx context.Context) error {
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	a.log.Info("shutting down")

	if a.sched != nil {
		a.sched.Stop()
	}
	if err := a.adapter.Stop(ctx); err != nil {
		a.log.Warn("transport stop", logx.Err(err))
	}
	if a.sup != nil {
		if err := a.sup.Stop(ctx); err != nil && ctx.Err() == nil {
			a.log.Warn("supervisor stop", logx.Err(err))
		}
	}
	if a.cfgSub != nil {
		a.cfgm.Unsubscribe(a.cfgSub)
	}
	if a.reg != nil {
		if err := a.reg.Close(); err != nil {
			a.log.Warn("storage close", logx.Err(err))
		}
	} else if a.backend != nil {
		_ = a.backend.Close()
	}
	a.log.Info("bye")
	return a.logs.Close()
}
