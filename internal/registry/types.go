package registry

import (
	"context"
	"strconv"
	"time"
)

// Backend persists the whole operator document. Implementations live in
// internal/store; reads and writes always move the complete document so
// the on-disk shape stays a single JSON object regardless of driver.
type Backend interface {
	Load(ctx context.Context) (Document, error)
	Save(ctx context.Context, doc Document) error
	Close() error
}

// Document is the persisted registry: operator records keyed by the decimal
// string form of their private chat ID.
type Document struct {
	Users map[string]Operator `json:"users"`
}

func NewDocument() Document {
	return Document{Users: map[string]Operator{}}
}

// Key renders a chat ID the way the document stores it.
func Key(chatID int64) string { return strconv.FormatInt(chatID, 10) }

// Operator is one authenticated bot user and everything the relay knows
// about them: credentials, group roster, and broadcast schedule.
type Operator struct {
	Login    string   `json:"login"`
	Password string   `json:"password"`
	Groups   []Group  `json:"groups"`
	Settings Settings `json:"notificationSettings"`
}

type Group struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Settings drives the periodic broadcast sweep for one operator.
// IntervalHours counts from StartTime (an hour-of-day in the target zone);
// LastNotified is the UTC instant of the last automatic send.
type Settings struct {
	Enabled        bool      `json:"enabled"`
	IntervalHours  int       `json:"intervalHours"`
	StartTime      int       `json:"startTime"`
	DefaultMessage string    `json:"defaultMessage"`
	DefaultPhoto   string    `json:"defaultPhoto,omitempty"`
	LastNotified   time.Time `json:"lastNotified"`
}

const PlaceholderMessage = "This is a default periodic message."

func DefaultSettings() Settings {
	return Settings{
		Enabled:        true,
		IntervalHours:  3,
		StartTime:      8,
		DefaultMessage: PlaceholderMessage,
	}
}

// HasGroup reports whether the roster already contains id.
func (o Operator) HasGroup(id int64) bool {
	for _, g := range o.Groups {
		if g.ID == id {
			return true
		}
	}
	return false
}

// AddGroup appends the group if absent; on a duplicate ID it refreshes the
// stored title instead. Returns true if the roster changed.
func (o *Operator) AddGroup(g Group) bool {
	for i, have := range o.Groups {
		if have.ID == g.ID {
			if have.Title != g.Title && g.Title != "" {
				o.Groups[i].Title = g.Title
				return true
			}
			return false
		}
	}
	o.Groups = append(o.Groups, g)
	return true
}

// RemoveGroup deletes the group by ID. Removing an absent group is a no-op.
func (o *Operator) RemoveGroup(id int64) bool {
	for i, g := range o.Groups {
		if g.ID == id {
			o.Groups = append(o.Groups[:i], o.Groups[i+1:]...)
			return true
		}
	}
	return false
}

func (o Operator) clone() Operator {
	cp := o
	cp.Groups = append([]Group(nil), o.Groups...)
	return cp
}
