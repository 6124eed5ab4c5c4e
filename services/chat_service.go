package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/learnhubhq/learnhub-api/model"
	"gorm.io/gorm"
)

// historyLimit caps how much backlog a participant gets on join.
const historyLimit = 100

// ChatService persists course room messages and serves their history.
// Fan-out to live connections happens in the realtime hub; this service
// is the durable half.
type ChatService struct {
	db     *gorm.DB
	access *AccessService
}

// NewChatService creates a new chat service
func NewChatService(db *gorm.DB, access *AccessService) *ChatService {
	return &ChatService{db: db, access: access}
}

// History returns the last 100 messages of a course room in
// chronological order. Only participants (enrolled students or the
// instructor) may read it.
func (s *ChatService) History(ctx context.Context, userID, courseID uint) ([]model.MessageResponse, error) {
	if _, err := s.access.RequireParticipant(ctx, userID, courseID); err != nil {
		return nil, err
	}

	// Newest first to apply the limit, then reversed for display order.
	// The id tie-break keeps messages with identical timestamps in
	// insertion order.
	var messages []model.CourseMessage
	err := s.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Preload("Sender").
		Order("created_at DESC, id DESC").
		Limit(historyLimit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	responses := make([]model.MessageResponse, len(messages))
	for i, m := range messages {
		responses[len(messages)-1-i] = m.ToResponse()
	}
	return responses, nil
}

// Post stores a message in a course room on behalf of userID. The
// sender must be a participant and the text must be non-empty after
// trimming. Returns the stored message with the sender profile attached.
func (s *ChatService) Post(ctx context.Context, userID, courseID uint, text string) (*model.MessageResponse, error) {
	if _, err := s.access.RequireParticipant(ctx, userID, courseID); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	message := model.CourseMessage{
		CourseID: courseID,
		SenderID: userID,
		Content:  text,
	}
	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	if err := s.db.WithContext(ctx).Preload("Sender").First(&message, message.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to load stored message: %w", err)
	}

	response := message.ToResponse()
	return &response, nil
}
