package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/learnhubhq/learnhub-api/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationService manages per-user in-app notifications.
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new notification service
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// CreateNotificationRequest describes one notification to dispatch.
// Data is free-form context (course id, transaction id, ...) stored as
// JSONB alongside the rendered title/message.
type CreateNotificationRequest struct {
	UserID  uint
	Type    model.NotificationType
	Title   string
	Message string
	Data    map[string]interface{}
}

// Create persists a notification for a user.
func (s *NotificationService) Create(ctx context.Context, req CreateNotificationRequest) (*model.Notification, error) {
	notification := model.Notification{
		UserID:  req.UserID,
		Type:    req.Type,
		Title:   req.Title,
		Message: req.Message,
		Read:    false,
	}

	if req.Data != nil {
		raw, err := json.Marshal(req.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode notification data: %w", err)
		}
		notification.Data = datatypes.JSON(raw)
	}

	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return &notification, nil
}

// NotificationList is a page of notifications plus the unread counter
// the client renders as a badge.
type NotificationList struct {
	Notifications []model.NotificationResponse `json:"notifications"`
	UnreadCount   int64                        `json:"unread_count"`
}

// ListForUser returns the user's 50 most recent notifications, newest
// first, with the total unread count.
func (s *NotificationService) ListForUser(ctx context.Context, userID uint) (*NotificationList, error) {
	var notifications []model.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(50).
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	var unread int64
	err = s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&unread).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	responses := make([]model.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		responses = append(responses, n.ToResponse())
	}

	return &NotificationList{Notifications: responses, UnreadCount: unread}, nil
}

// MarkAsRead flags one notification as read. The update is scoped to
// the owner: marking someone else's notification yields ErrNotFound.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID uint) error {
	result := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead flags every unread notification of the user as read and
// returns how many were updated.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Delete removes one notification owned by the user.
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&model.Notification{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearAll removes every notification of the user and returns the count.
func (s *NotificationService) ClearAll(ctx context.Context, userID uint) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clear notifications: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// CleanupOldRead deletes read notifications older than the retention
// window. Called by the scheduled cleanup job.
func (s *NotificationService) CleanupOldRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result := s.db.WithContext(ctx).
		Where("read = ? AND created_at < ?", true, cutoff).
		Delete(&model.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clean up notifications: %w", result.Error)
	}
	return result.RowsAffected, nil
}
