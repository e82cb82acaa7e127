package service

import (
	"context"
	"fmt"

	"munlink-backend/internal/domain"
	"munlink-backend/internal/logger"
	"munlink-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
	userRepo repository.UserRepository
	email    EmailSender
	push     PushSender
}

func NewNotificationService(noteRepo repository.NotificationRepository, userRepo repository.UserRepository, email EmailSender, push PushSender) NotificationService {
	return &notificationService{noteRepo: noteRepo, userRepo: userRepo, email: email, push: push}
}

func (s *notificationService) Notify(ctx context.Context, userID int32, title, message string, attrs map[string]string) error {
	note := &domain.Notification{
		UserID:     userID,
		Title:      title,
		Message:    message,
		Attributes: attrs,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		logger.WarnContext(ctx, "Skipping email and push, user lookup failed", "userID", userID, "error", err)
		return nil
	}

	if s.email != nil && user.Email != "" {
		body := fmt.Sprintf("Hello %s,\n\n%s\n\nMunLink Zambales", user.FullName(), message)
		if err := s.email.Send(ctx, user.Email, user.FullName(), title, body); err != nil {
			logger.WarnContext(ctx, "Failed to email notification", "userID", userID, "error", err)
		}
	}
	if s.push != nil && user.PushToken != "" {
		if err := s.push.Send(ctx, user.PushToken, title, message, attrs); err != nil {
			logger.WarnContext(ctx, "Failed to push notification", "userID", userID, "error", err)
		}
	}
	return nil
}

func (s *notificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	return s.noteRepo.List(ctx, userID, pageSize, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	return s.noteRepo.MarkAsRead(ctx, notificationID, userID)
}

// notify is the best-effort call used after state changes. A failed
// notification never fails the transition that caused it.
func notify(ctx context.Context, n NotificationService, userID int32, title, message string, attrs map[string]string) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, userID, title, message, attrs); err != nil {
		logger.WarnContext(ctx, "Failed to notify user", "userID", userID, "title", title, "error", err)
	}
}
