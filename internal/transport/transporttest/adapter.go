// Package transporttest provides an in-memory transport.Adapter for tests.
package transporttest

import (
	"context"
	"fmt"
	"sync"

	"relaybot/internal/transport"
)

// Sent records one outbound message.
type Sent struct {
	ChatID  int64
	Text    string
	PhotoID string
	Edited  bool
	Markup  any
}

// Fake implements transport.Adapter with everything recorded in memory.
// Chats listed in FailChats reject every send with a synthetic error.
type Fake struct {
	mu sync.Mutex

	FailChats map[int64]bool
	Infos     map[int64]transport.ChatInfo
	Counts    map[int64]int

	sent      []Sent
	left      []int64
	answered  []string
	nextMsgID int
}

func NewFake() *Fake {
	return &Fake{
		FailChats: map[int64]bool{},
		Infos:     map[int64]transport.ChatInfo{},
		Counts:    map[int64]int{},
	}
}

func (f *Fake) Start(ctx context.Context, out chan<- transport.Update) error { return nil }
func (f *Fake) Stop(ctx context.Context) error                               { return nil }

func (f *Fake) SendText(ctx context.Context, to transport.ChatTarget, text string, opt *transport.SendOptions) (transport.MessageRef, error) {
	return f.record(to.ChatID, text, "", opt)
}

func (f *Fake) SendPhoto(ctx context.Context, to transport.ChatTarget, photoID, caption string, opt *transport.SendOptions) (transport.MessageRef, error) {
	return f.record(to.ChatID, caption, photoID, opt)
}

func (f *Fake) record(chatID int64, text, photoID string, opt *transport.SendOptions) (transport.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailChats[chatID] {
		return transport.MessageRef{}, fmt.Errorf("chat %d unreachable", chatID)
	}
	var markup any
	if opt != nil {
		markup = opt.ReplyMarkupAdapter
	}
	f.nextMsgID++
	f.sent = append(f.sent, Sent{ChatID: chatID, Text: text, PhotoID: photoID, Markup: markup})
	return transport.MessageRef{ChatID: chatID, MessageID: f.nextMsgID}, nil
}

func (f *Fake) EditText(ctx context.Context, ref transport.MessageRef, text string, opt *transport.SendOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailChats[ref.ChatID] {
		return fmt.Errorf("chat %d unreachable", ref.ChatID)
	}
	var markup any
	if opt != nil {
		markup = opt.ReplyMarkupAdapter
	}
	f.sent = append(f.sent, Sent{ChatID: ref.ChatID, Text: text, Edited: true, Markup: markup})
	return nil
}

func (f *Fake) AnswerCallback(ctx context.Context, callbackID string, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered = append(f.answered, callbackID)
	return nil
}

func (f *Fake) LeaveChat(ctx context.Context, chatID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailChats[chatID] {
		return fmt.Errorf("chat %d unreachable", chatID)
	}
	f.left = append(f.left, chatID)
	return nil
}

func (f *Fake) ChatInfo(ctx context.Context, chatID int64) (transport.ChatInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if info, ok := f.Infos[chatID]; ok {
		return info, nil
	}
	return transport.ChatInfo{}, fmt.Errorf("chat %d unknown", chatID)
}

func (f *Fake) MemberCount(ctx context.Context, chatID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailChats[chatID] {
		return 0, fmt.Errorf("chat %d unreachable", chatID)
	}
	return f.Counts[chatID], nil
}

// SentMessages returns a copy of everything sent or edited so far.
func (f *Fake) SentMessages() []Sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Sent(nil), f.sent...)
}

// SentTo filters recorded messages by chat.
func (f *Fake) SentTo(chatID int64) []Sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Sent
	for _, s := range f.sent {
		if s.ChatID == chatID {
			out = append(out, s)
		}
	}
	return out
}

// LeftChats returns the chats the adapter was asked to leave.
func (f *Fake) LeftChats() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.left...)
}

// AnsweredCallbacks returns IDs of acknowledged callback queries.
func (f *Fake) AnsweredCallbacks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.answered...)
}

// Reset clears recorded traffic but keeps the configured fixtures.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
	f.left = nil
	f.answered = nil
}
