package model

import (
	"time"
)

// CourseRating is one user's 1-5 rating of a course. A resubmission
// overwrites the existing row; there is never more than one row per
// (course, user) pair. "No rating yet" is represented by row absence,
// never by a stored zero.
type CourseRating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_rating_course_user" json:"course_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_rating_course_user" json:"user_id"`
	Value     int       `gorm:"not null" json:"value"` // 1-5

	// Relationships
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Course Course `gorm:"foreignKey:CourseID" json:"-"`
}

// TableName specifies the table name for CourseRating
func (CourseRating) TableName() string {
	return "course_ratings"
}
