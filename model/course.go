package model

import (
	"time"

	"gorm.io/gorm"
)

// ApprovalStatus is the admin-mediated review state of a course.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Course represents a marketplace course owned by an instructor
type Course struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	InstructorID uint           `gorm:"not null;index" json:"instructor_id"`
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `gorm:"type:text;not null" json:"description"`
	Category     string         `gorm:"type:varchar(100);not null;index" json:"category"`
	Level        string         `gorm:"type:varchar(20);not null" json:"level"` // beginner, intermediate, advanced
	Price        float64        `gorm:"not null" json:"price"`
	ThumbnailURL string         `gorm:"type:varchar(512)" json:"thumbnail_url,omitempty"`

	// Derived from CourseRating rows, recomputed on every rating write.
	Rating      float64 `gorm:"default:0" json:"rating"`
	RatingCount int     `gorm:"default:0" json:"rating_count"`

	// Approval workflow. A course is publicly visible only when
	// approved AND published.
	ApprovalStatus  ApprovalStatus `gorm:"type:varchar(20);default:'pending';index" json:"approval_status"`
	Published       bool           `gorm:"default:false" json:"published"`
	RejectionReason string         `gorm:"type:text" json:"rejection_reason,omitempty"`
	ApprovedByID    *uint          `json:"approved_by_id,omitempty"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`

	// Relationships
	Instructor  User            `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	Enrollments []Enrollment    `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"enrollments,omitempty"`
	Ratings     []CourseRating  `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Messages    []CourseMessage `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// PubliclyVisible reports whether the course appears in the public catalog.
func (c *Course) PubliclyVisible() bool {
	return c.ApprovalStatus == ApprovalApproved && c.Published
}
