package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/vigia/backend/internal/models"
)

var (
	// ErrNotReady is returned when the WhatsApp bridge is not connected
	ErrNotReady = errors.New("gateway not ready")
	// ErrNotGroup is returned when a chat id does not resolve to a group
	ErrNotGroup = errors.New("chat is not a group")
)

// MessageRef identifies a message inside a chat for deletion
type MessageRef struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
}

// Participant is one member of a group chat
type Participant struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
	IsMe    bool   `json:"isMe"`
}

// InboundMessage is a group message reported by the bridge
type InboundMessage struct {
	MessageID  string    `json:"messageId"`
	ChatID     string    `json:"chatId"`
	ChatName   string    `json:"chatName"`
	IsGroup    bool      `json:"isGroup"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Body       string    `json:"body"`
	Timestamp  time.Time `json:"timestamp"`
}

// Status is a snapshot of the bridge connection lifecycle
type Status struct {
	Status string `json:"status"`
	Ready  bool   `json:"ready"`
	QR     string `json:"qr,omitempty"`
}

// Gateway is the messaging transport consumed by the moderation engine.
// Every call is best-effort from the engine's point of view: a failure is
// recorded as an audit event, never propagated into ledger state.
type Gateway interface {
	// SendMessage posts text into a chat, mentioning the given user ids
	SendMessage(ctx context.Context, chatID, text string, mentions []string) error
	// DeleteMessage removes a message, for everyone when asked
	DeleteMessage(ctx context.Context, ref MessageRef, forEveryone bool) error
	// RemoveParticipants kicks users out of a group
	RemoveParticipants(ctx context.Context, chatID string, userIDs []string) error
	// GroupAdmins lists the admin participants of a group
	GroupAdmins(ctx context.Context, chatID string) ([]Participant, error)
	// IsBotAdmin reports whether the bridge account is admin in a group
	IsBotAdmin(ctx context.Context, chatID string) (bool, error)
	// ContactName resolves a user id to a display name
	ContactName(ctx context.Context, userID string) (string, error)
	// ListGroups lists the groups the bridge account participates in
	ListGroups(ctx context.Context) ([]models.GroupInfo, error)
	// Ready reports whether the transport is connected and usable
	Ready() bool
}
