package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPodNotFound      = errors.New("pod not found")
	ErrPodNameEmpty     = errors.New("pod name cannot be empty")
	ErrPodNameTooLong   = errors.New("pod name is too long (max 100 chars)")
	ErrInvalidPrivacy   = errors.New("invalid privacy level (must be public or private)")
	ErrPodPrivate       = errors.New("pod is private")
	ErrAlreadyPodMember = errors.New("user is already a member of this pod")
	ErrNotPodMember     = errors.New("user is not a member of this pod")
	ErrEmptyMessage     = errors.New("message cannot be empty")
	ErrPodOwnerCannotGo = errors.New("pod creator cannot leave the pod")
)

const (
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"

	MaxPodNameLen = 100
)

type Pod struct {
	ID              string     `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	Description     string     `json:"description,omitempty" db:"description"`
	PrivacyLevel    string     `json:"privacy_level" db:"privacy_level"`
	CreatedBy       string     `json:"created_by" db:"created_by"`
	Members         []string   `json:"members" db:"-"`
	LastActiveTime  time.Time  `json:"last_active_time" db:"last_active_time"`
	LastMessageTime *time.Time `json:"last_message_time,omitempty" db:"last_message_time"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

type PodMessage struct {
	ID       string    `json:"id" db:"id"`
	PodID    string    `json:"pod_id" db:"pod_id"`
	SenderID string    `json:"sender" db:"sender_id"`
	Message  string    `json:"msg" db:"message"`
	SentAt   time.Time `json:"sent_at" db:"sent_at"`
}

func NewPod(creatorID, name, description, privacy string) (*Pod, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrPodNameEmpty
	}
	if len(name) > MaxPodNameLen {
		return nil, ErrPodNameTooLong
	}
	if privacy == "" {
		privacy = PrivacyPublic
	}
	if privacy != PrivacyPublic && privacy != PrivacyPrivate {
		return nil, ErrInvalidPrivacy
	}

	now := time.Now().UTC()
	return &Pod{
		ID:             uuid.NewString(),
		Name:           name,
		Description:    strings.TrimSpace(description),
		PrivacyLevel:   privacy,
		CreatedBy:      creatorID,
		Members:        []string{creatorID},
		LastActiveTime: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (p *Pod) IsMember(userID string) bool {
	for _, m := range p.Members {
		if m == userID {
			return true
		}
	}
	return false
}

func NewPodMessage(podID, senderID, msg string) (*PodMessage, error) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return nil, ErrEmptyMessage
	}
	return &PodMessage{
		ID:       uuid.NewString(),
		PodID:    podID,
		SenderID: senderID,
		Message:  msg,
		SentAt:   time.Now().UTC(),
	}, nil
}

type PodRepository interface {
	// Create persists the pod and its creator membership in one transaction.
	Create(ctx context.Context, pod *Pod) error
	GetByID(ctx context.Context, id string) (*Pod, error)
	ListByMember(ctx context.Context, userID string) ([]*Pod, error)
	AddMember(ctx context.Context, podID, userID string) error
	RemoveMember(ctx context.Context, podID, userID string) error
	AddMessage(ctx context.Context, msg *PodMessage) error
	ListMessages(ctx context.Context, podID string, limit int) ([]*PodMessage, error)
}
