package service

import (
	"context"
	"fmt"

	"munlink-backend/internal/config"
	"munlink-backend/internal/logger"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type fcmPushSender struct {
	client *messaging.Client
}

// NewFCMPushSender builds a Firebase Cloud Messaging client from a service
// account file.
func NewFCMPushSender(ctx context.Context, credentialsFile, projectID string) (PushSender, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize messaging client: %w", err)
	}
	return &fcmPushSender{client: client}, nil
}

func (s *fcmPushSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	logger.ExternalServiceCall("fcm", "Send", "title", title)
	id, err := s.client.Send(ctx, msg)
	logger.ExternalServiceResult("fcm", "Send", err, "messageID", id)
	if err != nil {
		return fmt.Errorf("failed to send push notification: %w", err)
	}
	return nil
}

type noopPushSender struct{}

func (noopPushSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	return nil
}

func NewPushSender(ctx context.Context, cfg config.PushConfig) (PushSender, error) {
	if !cfg.Enabled {
		return noopPushSender{}, nil
	}
	return NewFCMPushSender(ctx, cfg.CredentialsFile, cfg.ProjectID)
}
