package utils

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"google.golang.org/api/option"

	"carrental-backend/pkg/logger"
)

// Notifier pushes a message to one device token.
type Notifier interface {
	SendNotification(ctx context.Context, token, title, body string, data map[string]string) error
}

type FCM struct {
	client *messaging.Client
	log    logger.ILogger
}

// InitFCM connects to Firebase Cloud Messaging with a service account file.
func InitFCM(ctx context.Context, credentialsPath string, log logger.ILogger) (*FCM, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase messaging: %w", err)
	}

	log.Info("firebase cloud messaging ready")
	return &FCM{client: client, log: log}, nil
}

func (f *FCM) SendNotification(ctx context.Context, token, title, body string, data map[string]string) error {
	if token == "" {
		return nil
	}

	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data, // e.g. order_id, type
	}

	if _, err := f.client.Send(ctx, message); err != nil {
		f.log.Error("fcm send failed", logger.Error(err))
		return err
	}
	return nil
}

// NopNotifier is used when FCM_CREDENTIALS is not configured.
type NopNotifier struct{}

func (NopNotifier) SendNotification(context.Context, string, string, string, map[string]string) error {
	return nil
}
