package model

import (
	"time"
)

// CourseMessage is a single chat message in a course room. Messages are
// immutable once created and ordered by creation time.
type CourseMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	CourseID  uint      `gorm:"not null;index" json:"course_id"`
	SenderID  uint      `gorm:"not null;index" json:"sender_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`

	// Relationships
	Sender User   `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Course Course `gorm:"foreignKey:CourseID" json:"-"`
}

// TableName specifies the table name for CourseMessage
func (CourseMessage) TableName() string {
	return "course_messages"
}

// MessageResponse is the broadcast/API shape of a message, enriched with
// the sender's display fields.
type MessageResponse struct {
	ID        uint          `json:"id"`
	CourseID  uint          `json:"course_id"`
	Content   string        `json:"content"`
	Sender    PublicProfile `json:"sender"`
	CreatedAt time.Time     `json:"created_at"`
}

// ToResponse converts a CourseMessage to its API shape.
func (m *CourseMessage) ToResponse() MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		CourseID:  m.CourseID,
		Content:   m.Content,
		Sender:    m.Sender.Public(),
		CreatedAt: m.CreatedAt,
	}
}
