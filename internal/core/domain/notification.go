package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidNotificationType = errors.New("invalid notification type")
	ErrNotificationTitleEmpty  = errors.New("notification title cannot be empty")
	ErrNoRecipients            = errors.New("notification has no recipients")
	ErrDeviceTokenEmpty        = errors.New("device token cannot be empty")
)

type NotificationType string

const (
	NotificationChat         NotificationType = "chat"
	NotificationInvite       NotificationType = "invite"
	NotificationMilestone    NotificationType = "milestone"
	NotificationPod          NotificationType = "pod"
	NotificationCoping       NotificationType = "coping"
	NotificationWallet       NotificationType = "wallet"
	NotificationSubscription NotificationType = "subscription"
	NotificationProfile      NotificationType = "profile"
	NotificationJournal      NotificationType = "journal"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationChat, NotificationInvite, NotificationMilestone, NotificationPod,
		NotificationCoping, NotificationWallet, NotificationSubscription,
		NotificationProfile, NotificationJournal:
		return true
	}
	return false
}

type Notification struct {
	ID        string           `json:"id" db:"id"`
	SenderID  *string          `json:"sender_id,omitempty" db:"sender_id"`
	Recipient string           `json:"recipient" db:"recipient_id"`
	PodID     *string          `json:"pod_id,omitempty" db:"pod_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Body      string           `json:"body" db:"body"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// NewNotifications fans a single message out to one record per recipient.
func NewNotifications(senderID *string, recipients []string, podID *string, nType NotificationType, title, body string) ([]*Notification, error) {
	if !nType.Valid() {
		return nil, ErrInvalidNotificationType
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrNotificationTitleEmpty
	}

	now := time.Now().UTC()
	seen := make(map[string]bool)
	var out []*Notification
	for _, r := range recipients {
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, &Notification{
			ID:        uuid.NewString(),
			SenderID:  senderID,
			Recipient: r,
			PodID:     podID,
			Type:      nType,
			Title:     title,
			Body:      strings.TrimSpace(body),
			CreatedAt: now,
		})
	}
	if len(out) == 0 {
		return nil, ErrNoRecipients
	}
	return out, nil
}

type DeviceToken struct {
	UserID    string    `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	Platform  string    `json:"platform" db:"platform"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type NotificationRepository interface {
	CreateMany(ctx context.Context, items []*Notification) error
	ListByRecipient(ctx context.Context, userID string, page PageRequest) ([]*Notification, int, error)
	// UpsertDeviceToken moves a token to userID if another user held it.
	UpsertDeviceToken(ctx context.Context, token *DeviceToken) error
	ListDeviceTokens(ctx context.Context, userIDs []string) ([]DeviceToken, error)
}

// PushProvider delivers a notification to devices. Implementations must not
// fail the caller when only some tokens are rejected.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []DeviceToken, title, body string, data map[string]string) error
}
