package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/learnhubhq/learnhub-api/model"
	"gorm.io/gorm"
)

// EnrollmentService handles the purchase/enrollment workflow.
type EnrollmentService struct {
	db            *gorm.DB
	notifications *NotificationService
	email         *EmailService // optional, nil disables receipts
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(db *gorm.DB, notifications *NotificationService, email *EmailService) *EnrollmentService {
	return &EnrollmentService{
		db:            db,
		notifications: notifications,
		email:         email,
	}
}

// PaymentDetails is the caller-supplied payment metadata. No gateway is
// integrated: the amount charged is trusted from the course's stored
// price and the transaction id comes from the caller.
type PaymentDetails struct {
	TransactionID string
	PaymentMethod string
}

// EnrollResult separates the primary outcome from best-effort side
// effects. SideEffectErrors lists notification/email failures that were
// logged and swallowed; the enrollment itself still succeeded.
type EnrollResult struct {
	Course           *model.Course     `json:"course"`
	Enrollment       *model.Enrollment `json:"enrollment"`
	SideEffectErrors []string          `json:"side_effect_errors,omitempty"`
}

// Enroll records a purchase of courseID by the user. At most one
// enrollment can exist per (course, user): the existence check is the
// fast path and the store's unique index is the authoritative guard —
// a duplicate-key error from a concurrent purchase maps to
// ErrAlreadyEnrolled, never to an internal error.
func (s *EnrollmentService) Enroll(ctx context.Context, user *model.User, courseID uint, payment PaymentDetails) (*EnrollResult, error) {
	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, courseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	var existing int64
	err := s.db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("course_id = ? AND user_id = ?", courseID, user.ID).
		Count(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if existing > 0 {
		return nil, ErrAlreadyEnrolled
	}

	if strings.TrimSpace(payment.TransactionID) == "" {
		return nil, ErrInvalidPayment
	}

	enrollment := model.Enrollment{
		CourseID:      courseID,
		UserID:        user.ID,
		TransactionID: payment.TransactionID,
		AmountPaid:    course.Price,
		PaymentMethod: payment.PaymentMethod,
		PaymentStatus: "completed",
		Status:        model.EnrollmentActive,
		Progress:      0,
	}

	if err := s.db.WithContext(ctx).Create(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}

	result := &EnrollResult{Enrollment: &enrollment}
	result.SideEffectErrors = s.fireEnrollmentSideEffects(ctx, user, &course, &enrollment)

	// Return the course with its current participant list.
	s.db.WithContext(ctx).Preload("Instructor").Preload("Enrollments").First(&course, courseID)
	result.Course = &course

	return result, nil
}

// fireEnrollmentSideEffects sends the purchase/payment notifications and
// the optional email receipt. Failures are logged and collected, never
// propagated: the enrollment has already committed.
func (s *EnrollmentService) fireEnrollmentSideEffects(ctx context.Context, user *model.User, course *model.Course, enrollment *model.Enrollment) []string {
	var failures []string

	record := func(what string, err error) {
		if err != nil {
			log.Printf("enrollment side effect %s failed for user %d course %d: %v", what, user.ID, course.ID, err)
			failures = append(failures, fmt.Sprintf("%s: %v", what, err))
		}
	}

	_, err := s.notifications.Create(ctx, CreateNotificationRequest{
		UserID:  user.ID,
		Type:    model.NotificationCoursePurchase,
		Title:   "Course purchased",
		Message: fmt.Sprintf("You are now enrolled in %q.", course.Title),
		Data: map[string]interface{}{
			"course_id": course.ID,
		},
	})
	record("purchase notification", err)

	_, err = s.notifications.Create(ctx, CreateNotificationRequest{
		UserID:  user.ID,
		Type:    model.NotificationPayment,
		Title:   "Payment confirmed",
		Message: fmt.Sprintf("Payment of %.2f for %q was received.", enrollment.AmountPaid, course.Title),
		Data: map[string]interface{}{
			"course_id":      course.ID,
			"transaction_id": enrollment.TransactionID,
			"amount":         enrollment.AmountPaid,
		},
	})
	record("payment notification", err)

	if user.EmailOptIn && s.email != nil {
		err = s.email.SendReceiptEmail(user.Email, user.Name, course.Title, enrollment.AmountPaid, enrollment.TransactionID)
		record("email receipt", err)
	}

	return failures
}

// UpdateEnrollmentInput is a partial update of one enrollment record.
type UpdateEnrollmentInput struct {
	Status         *string
	Progress       *int
	CompletionDate *time.Time
}

// UpdateEnrollment patches the enrollment for (course, user).
func (s *EnrollmentService) UpdateEnrollment(ctx context.Context, courseID, userID uint, in UpdateEnrollmentInput) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := s.db.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		First(&enrollment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load enrollment: %w", err)
	}

	if in.Status != nil {
		enrollment.Status = *in.Status
	}
	if in.Progress != nil {
		enrollment.Progress = *in.Progress
	}
	if in.CompletionDate != nil {
		enrollment.CompletionDate = in.CompletionDate
	}

	if err := s.db.WithContext(ctx).Save(&enrollment).Error; err != nil {
		return nil, fmt.Errorf("failed to update enrollment: %w", err)
	}

	return &enrollment, nil
}

// EnrolledCourse merges a course with the student's own enrollment state.
type EnrolledCourse struct {
	Course         model.Course `json:"course"`
	EnrollmentDate time.Time    `json:"enrollment_date"`
	Progress       int          `json:"progress"`
	Status         string       `json:"status"`
}

// ListEnrolledCourses returns every course the student is enrolled in,
// merged with their enrollment date, progress and status. Enrollments
// whose course no longer exists are silently skipped.
func (s *EnrollmentService) ListEnrolledCourses(ctx context.Context, userID uint) ([]EnrolledCourse, error) {
	var enrollments []model.Enrollment
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch enrollments: %w", err)
	}

	courses := make([]EnrolledCourse, 0, len(enrollments))
	for _, e := range enrollments {
		var course model.Course
		err := s.db.WithContext(ctx).Preload("Instructor").First(&course, e.CourseID).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				continue // dangling reference, skip
			}
			return nil, fmt.Errorf("failed to fetch course %d: %w", e.CourseID, err)
		}

		courses = append(courses, EnrolledCourse{
			Course:         course,
			EnrollmentDate: e.CreatedAt,
			Progress:       e.Progress,
			Status:         e.Status,
		})
	}

	return courses, nil
}

// ListCourseEnrollments returns every enrollment for one course with the
// student profiles attached (instructor/admin view).
func (s *EnrollmentService) ListCourseEnrollments(ctx context.Context, courseID uint) ([]model.Enrollment, error) {
	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, courseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	var enrollments []model.Enrollment
	err := s.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Preload("User").
		Order("created_at ASC").
		Find(&enrollments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch enrollments: %w", err)
	}
	return enrollments, nil
}
