package services

import (
	"context"
	"fmt"

	"github.com/learnhubhq/learnhub-api/model"
	"gorm.io/gorm"
)

// CourseAccess is the result of a membership check for one (user, course)
// pair. The course instructor is implicitly treated as enrolled for
// access-control purposes (chat, materials, history).
type CourseAccess struct {
	IsEnrolled   bool `json:"isEnrolled"`
	IsInstructor bool `json:"isInstructor"`
}

// CanParticipate reports whether the user may join the course room and
// read its materials.
func (a CourseAccess) CanParticipate() bool {
	return a.IsEnrolled || a.IsInstructor
}

// AccessService is the single capability check used by course routes,
// chat routes and the live channel. Every caller re-derives membership
// from the store here instead of trusting prior state.
type AccessService struct {
	db *gorm.DB
}

// NewAccessService creates a new access service
func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{db: db}
}

// CheckCourse resolves the caller's relationship to a course.
// Returns ErrNotFound if the course does not exist.
func (s *AccessService) CheckCourse(ctx context.Context, userID, courseID uint) (CourseAccess, error) {
	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, courseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return CourseAccess{}, ErrNotFound
		}
		return CourseAccess{}, fmt.Errorf("failed to load course: %w", err)
	}

	access := CourseAccess{IsInstructor: course.InstructorID == userID}

	var enrollment model.Enrollment
	err := s.db.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		First(&enrollment).Error
	switch {
	case err == nil:
		access.IsEnrolled = enrollment.Participating()
	case err == gorm.ErrRecordNotFound:
		// Not enrolled at all.
	default:
		return CourseAccess{}, fmt.Errorf("failed to check enrollment: %w", err)
	}

	return access, nil
}

// RequireParticipant returns ErrForbidden unless the user is the course
// instructor or actively enrolled.
func (s *AccessService) RequireParticipant(ctx context.Context, userID, courseID uint) (CourseAccess, error) {
	access, err := s.CheckCourse(ctx, userID, courseID)
	if err != nil {
		return CourseAccess{}, err
	}
	if !access.CanParticipate() {
		return access, ErrForbidden
	}
	return access, nil
}
