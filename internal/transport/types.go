package transport

import "context"

type UpdateKind string

const (
	UpdateMessage    UpdateKind = "message"
	UpdateCallback   UpdateKind = "callback"
	UpdateMembership UpdateKind = "membership"
)

// Update is a closed tagged variant: exactly one of the pointers matching
// Kind is non-nil. Malformed platform events are rejected at the adapter
// boundary and never reach handlers.
type Update struct {
	Kind       UpdateKind
	Message    *Message
	Callback   *Callback
	Membership *Membership
}

type Message struct {
	ID           int
	ChatID       int64
	FromID       int64
	FromUsername string
	Text         string
	// PhotoID is the opaque file reference of the attached image, if any.
	PhotoID   string
	Caption   string
	IsPrivate bool
}

type Callback struct {
	ID        string
	FromID    int64
	ChatID    int64
	MessageID int
	Data      string
}

// MemberStatus is the bot's own membership state in a chat after a change.
type MemberStatus string

const (
	StatusAdministrator MemberStatus = "administrator"
	StatusMember        MemberStatus = "member"
	StatusLeft          MemberStatus = "left"
	StatusKicked        MemberStatus = "kicked"
)

// ParseMemberStatus validates a raw platform status string.
// Statuses the relay has no policy for (creator, restricted) report ok=false.
func ParseMemberStatus(raw string) (MemberStatus, bool) {
	switch MemberStatus(raw) {
	case StatusAdministrator, StatusMember, StatusLeft, StatusKicked:
		return MemberStatus(raw), true
	default:
		return "", false
	}
}

// Membership describes a change of the bot's membership in a group chat,
// attributed to the user who performed it.
type Membership struct {
	ActorID   int64
	ChatID    int64
	ChatTitle string
	NewStatus MemberStatus
}

type ChatTarget struct {
	ChatID int64
}

type MessageRef struct {
	ChatID    int64
	MessageID int
}

type SendOptions struct {
	ParseMode          string
	DisablePreview     bool
	ReplyMarkupAdapter any // adapter-specific markup (Telegram: *telebot.ReplyMarkup)
}

type ChatInfo struct {
	ID       int64
	Title    string
	Username string
}

type Adapter interface {
	Start(ctx context.Context, out chan<- Update) error
	Stop(ctx context.Context) error

	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
	SendPhoto(ctx context.Context, to ChatTarget, photoID, caption string, opt *SendOptions) (MessageRef, error)
	EditText(ctx context.Context, ref MessageRef, text string, opt *SendOptions) error
	AnswerCallback(ctx context.Context, callbackID string, text string) error

	LeaveChat(ctx context.Context, chatID int64) error
	ChatInfo(ctx context.Context, chatID int64) (ChatInfo, error)
	MemberCount(ctx context.Context, chatID int64) (int, error)
}
