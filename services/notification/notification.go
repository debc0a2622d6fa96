package notification

import (
	"context"
	"fmt"

	userRepo "parkly/database/repository/user"
	"parkly/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// NotificationService delivers push notifications to a user's device.
type NotificationService interface {
	SendPush(ctx context.Context, userID, title, body string, data map[string]string) error
}

// FCMNotificationService implements NotificationService over Firebase
// Cloud Messaging using the token registered on the user record.
type FCMNotificationService struct {
	Users userRepo.UserRepository
}

func NewFCMNotificationService(users userRepo.UserRepository) *FCMNotificationService {
	return &FCMNotificationService{Users: users}
}

func (s *FCMNotificationService) SendPush(ctx context.Context, userID, title, body string, data map[string]string) error {
	if utils.FCMClient == nil {
		return fmt.Errorf("fcm client is not initialized")
	}

	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve user %s for push: %w", userID, err)
	}
	if user.FCMToken == "" {
		return fmt.Errorf("user %s has no registered device token", userID)
	}

	msg := &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	resp, err := utils.FCMClient.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send push to user %s: %w", userID, err)
	}

	utils.GetLogger().Info("Push notification sent",
		zap.String("userID", userID),
		zap.String("messageID", resp))
	return nil
}
