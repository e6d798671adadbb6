// Package broadcast fans one message out to an operator's group roster.
// Delivery is best effort per recipient: one dead group never aborts the
// rest of the roster, and the caller gets a per-chat failure report back.
package broadcast

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"relaybot/internal/config"
	"relaybot/internal/registry"
	"relaybot/internal/transport"
	"relaybot/pkg/logx"
)

const (
	defaultRatePerSec = 1
	retryBackoff      = 500 * time.Millisecond
)

const noticeNoGroups = "⚠️ You have no groups to send messages to."

// Report summarizes one fan-out.
type Report struct {
	Total     int
	Succeeded int
	Failed    []Failure
}

type Failure struct {
	ChatID int64
	Title  string
	Err    error
}

type Dispatcher struct {
	adapter transport.Adapter
	log     logx.Logger

	mu       sync.Mutex
	limiter  *rate.Limiter
	retryMax int
}

func New(adapter transport.Adapter, log logx.Logger, cfg *config.BroadcastConfig) *Dispatcher {
	d := &Dispatcher{adapter: adapter, log: log}
	d.Apply(cfg)
	return d
}

// Apply installs new pacing settings. Safe to call while sends are in flight;
// the new limiter takes effect on the next recipient.
func (d *Dispatcher) Apply(cfg *config.BroadcastConfig) {
	perSec := defaultRatePerSec
	retryMax := 0
	if cfg != nil {
		if cfg.RatePerSec > 0 {
			perSec = cfg.RatePerSec
		}
		if cfg.RetryMax > 0 {
			retryMax = cfg.RetryMax
		}
	}
	d.mu.Lock()
	d.limiter = rate.NewLimiter(rate.Limit(perSec), perSec)
	d.retryMax = retryMax
	d.mu.Unlock()
}

func (d *Dispatcher) settings() (*rate.Limiter, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.limiter, d.retryMax
}

// Broadcast fans the message out to the roster and reports the outcome back
// to the operator's private chat: a "no groups" notice for an empty roster,
// otherwise a succeeded/total summary once the batch completes. Every
// broadcast path goes through here so the operator always hears back,
// whether the send was manual or scheduled.
func (d *Dispatcher) Broadcast(ctx context.Context, operatorChat int64, groups []registry.Group, text, photoID string) Report {
	if len(groups) == 0 {
		d.notifyOperator(ctx, operatorChat, noticeNoGroups)
		return Report{}
	}
	rep := d.Send(ctx, groups, text, photoID)
	d.notifyOperator(ctx, operatorChat,
		fmt.Sprintf("✅ Message sent to %d out of %d groups.", rep.Succeeded, rep.Total))
	return rep
}

func (d *Dispatcher) notifyOperator(ctx context.Context, chatID int64, text string) {
	if _, err := d.adapter.SendText(ctx, transport.ChatTarget{ChatID: chatID}, text, nil); err != nil {
		d.log.Warn("operator report failed", logx.Int64("chat_id", chatID), logx.Err(err))
	}
}

// Send delivers text (or a photo with caption when photoID is set) to every
// group in the roster, in roster order. Context cancellation stops the
// fan-out early; groups not attempted count as failed.
func (d *Dispatcher) Send(ctx context.Context, groups []registry.Group, text, photoID string) Report {
	rep := Report{Total: len(groups)}

	for i, g := range groups {
		if err := ctx.Err(); err != nil {
			for _, rest := range groups[i:] {
				rep.Failed = append(rep.Failed, Failure{ChatID: rest.ID, Title: rest.Title, Err: err})
			}
			break
		}

		if err := d.sendOne(ctx, g, text, photoID); err != nil {
			d.log.Warn("group delivery failed",
				logx.Int64("chat_id", g.ID),
				logx.String("title", g.Title),
				logx.Err(err))
			rep.Failed = append(rep.Failed, Failure{ChatID: g.ID, Title: g.Title, Err: err})
			continue
		}
		rep.Succeeded++
	}

	d.log.Info("broadcast finished",
		logx.Int("total", rep.Total),
		logx.Int("succeeded", rep.Succeeded),
		logx.Int("failed", len(rep.Failed)))
	return rep
}

func (d *Dispatcher) sendOne(ctx context.Context, g registry.Group, text, photoID string) error {
	limiter, retryMax := d.settings()

	var lastErr error
	for attempt := 0; attempt <= retryMax; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		target := transport.ChatTarget{ChatID: g.ID}
		var err error
		if photoID != "" {
			_, err = d.adapter.SendPhoto(ctx, target, photoID, text, nil)
		} else {
			_, err = d.adapter.SendText(ctx, target, text, nil)
		}
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt < retryMax {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBackoff):
			}
		}
	}
	return lastErr
}
