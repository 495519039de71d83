package notification

import (
	"context"
	"fmt"
	"time"

	directoryRepo "stylora/database/repository/directory"
	"stylora/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// Service defines methods for sending FCM pushes to booking counterparties.
type Service interface {
	NotifyUser(ctx context.Context, userID, title, body string, data map[string]string) error
	NotifyStylist(ctx context.Context, stylistID, title, body string, data map[string]string) error
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Directory directoryRepo.DirectoryRepository
	Client    *messaging.Client
	Logger    *zap.Logger
}

func NewDefaultNotificationService(directory directoryRepo.DirectoryRepository, client *messaging.Client, logger *zap.Logger) *DefaultNotificationService {
	return &DefaultNotificationService{Directory: directory, Client: client, Logger: logger}
}

// NotifyUser looks up a user's FCM token and sends a push.
func (s *DefaultNotificationService) NotifyUser(ctx context.Context, userID, title, body string, data map[string]string) error {
	user, err := s.Directory.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("could not find user %s: %w", userID, err)
	}
	return s.send(ctx, user.FCMToken, "user", title, body, data)
}

// NotifyStylist looks up a stylist's FCM token and sends a push.
func (s *DefaultNotificationService) NotifyStylist(ctx context.Context, stylistID, title, body string, data map[string]string) error {
	stylist, err := s.Directory.GetStylist(ctx, stylistID)
	if err != nil {
		return fmt.Errorf("could not find stylist %s: %w", stylistID, err)
	}
	return s.send(ctx, stylist.FCMToken, "stylist", title, body, data)
}

func (s *DefaultNotificationService) send(ctx context.Context, token, role, title, body string, data map[string]string) error {
	if token == "" {
		return fmt.Errorf("recipient has no FCM token")
	}
	if data == nil {
		data = map[string]string{}
	}
	if _, ok := data["role"]; !ok {
		data["role"] = role
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	if _, err := s.Client.Send(ctx, msg); err != nil {
		s.Logger.Warn("failed to send FCM message", zap.String("role", role), zap.Error(err))
		return utils.NewExternalServiceError("push notification failed", err)
	}
	return nil
}
