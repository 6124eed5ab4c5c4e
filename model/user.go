package model

import (
	"time"

	"gorm.io/gorm"
)

// User roles. Role is fixed at registration; admins are created out of band.
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// User represents a registered user in the system
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	Name         string         `gorm:"not null" json:"name"`
	Role         string         `gorm:"type:varchar(20);default:'student'" json:"role"` // student, instructor, admin
	Bio          string         `gorm:"type:text" json:"bio,omitempty"`
	AvatarURL    string         `gorm:"type:varchar(512)" json:"avatar_url,omitempty"`
	EmailOptIn   bool           `gorm:"default:true" json:"email_opt_in"`
	TokenVersion int            `gorm:"default:0" json:"-"` // Increment to invalidate all user tokens

	// Relationships
	CreatedCourses []Course            `gorm:"foreignKey:InstructorID" json:"created_courses,omitempty"`
	Enrollments    []Enrollment        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Ratings        []CourseRating      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Messages       []CourseMessage     `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"-"`
	Notifications  []Notification      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TokenBlacklist []JWTTokenBlacklist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsAdmin reports whether the user can run the approval workflow.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PublicProfile is the subset of user fields safe to embed in other
// responses (chat messages, enrollment listings).
type PublicProfile struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Public returns the user's public profile.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Name:      u.Name,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
	}
}
