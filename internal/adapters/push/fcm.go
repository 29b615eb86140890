package push

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
)

var ErrAllPushesFailed = errors.New("all push notifications failed")

var _ domain.PushProvider = (*FCMProvider)(nil)

type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type FCMProvider struct {
	client messageSender
}

// NewFCMProvider prefers base64 credentials in FCM_SERVICE_ACCOUNT_JSON and
// falls back to the service account file at credentialsFile.
func NewFCMProvider(ctx context.Context, credentialsFile string) (*FCMProvider, error) {
	var opt option.ClientOption

	if encoded := os.Getenv("FCM_SERVICE_ACCOUNT_JSON"); encoded != "" {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("push: decode FCM_SERVICE_ACCOUNT_JSON: %w", err)
		}
		opt = option.WithCredentialsJSON(decoded)
		slog.Info("fcm initialized from environment credentials")
	} else {
		if _, err := os.Stat(credentialsFile); err != nil {
			return nil, fmt.Errorf("push: firebase credentials %q unavailable: %w", credentialsFile, err)
		}
		opt = option.WithCredentialsFile(credentialsFile)
		slog.Info("fcm initialized from credentials file", "path", credentialsFile)
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("push: init firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("push: messaging client: %w", err)
	}

	return &FCMProvider{client: client}, nil
}

func newMessage(token domain.DeviceToken, title, body string, data map[string]string) *messaging.Message {
	msg := &messaging.Message{
		Token: token.Token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	switch token.Platform {
	case "ios":
		msg.APNS = &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		}
	default:
		msg.Android = &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		}
	}
	return msg
}

// SendPush sends one message per token. The batch endpoint is not used.
// It only fails when every token was rejected.
func (p *FCMProvider) SendPush(ctx context.Context, tokens []domain.DeviceToken, title, body string, data map[string]string) error {
	if len(tokens) == 0 {
		return nil
	}

	sent, failed := 0, 0
	for _, token := range tokens {
		if _, err := p.client.Send(ctx, newMessage(token, title, body, data)); err != nil {
			slog.Warn("fcm send failed", "user_id", token.UserID, "platform", token.Platform, "error", err)
			failed++
			continue
		}
		sent++
	}

	slog.Debug("fcm batch delivered", "sent", sent, "failed", failed)

	if sent == 0 && failed > 0 {
		return ErrAllPushesFailed
	}
	return nil
}
