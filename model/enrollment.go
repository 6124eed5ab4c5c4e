package model

import (
	"time"
)

// Enrollment statuses
const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentDropped   = "dropped"
)

// Enrollment links one student to one purchased course. The composite
// unique index is the authoritative guard against duplicate enrollment;
// the application-level existence check is only the fast path.
type Enrollment struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	CourseID       uint       `gorm:"not null;uniqueIndex:idx_enrollment_course_user" json:"course_id"`
	UserID         uint       `gorm:"not null;uniqueIndex:idx_enrollment_course_user" json:"user_id"`
	TransactionID  string     `gorm:"type:varchar(100);not null" json:"transaction_id"`
	AmountPaid     float64    `gorm:"not null" json:"amount_paid"`
	PaymentMethod  string     `gorm:"type:varchar(50)" json:"payment_method"`
	PaymentStatus  string     `gorm:"type:varchar(20);default:'completed'" json:"payment_status"`
	Status         string     `gorm:"type:varchar(20);default:'active'" json:"status"` // active, completed, dropped
	Progress       int        `gorm:"default:0" json:"progress"`                       // 0-100
	CompletionDate *time.Time `json:"completion_date,omitempty"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Course Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

// Participating reports whether this enrollment still grants course
// access (chat, materials). Dropped enrollments do not.
func (e *Enrollment) Participating() bool {
	return e.Status != EnrollmentDropped
}
