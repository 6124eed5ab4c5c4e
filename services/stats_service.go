package services

import (
	"context"
	"fmt"

	"github.com/learnhubhq/learnhub-api/model"
	"gorm.io/gorm"
)

// PlatformStats is the admin dashboard aggregate.
type PlatformStats struct {
	TotalUsers       int64   `json:"total_users"`
	TotalStudents    int64   `json:"total_students"`
	TotalInstructors int64   `json:"total_instructors"`
	TotalCourses     int64   `json:"total_courses"`
	PendingCourses   int64   `json:"pending_courses"`
	ApprovedCourses  int64   `json:"approved_courses"`
	RejectedCourses  int64   `json:"rejected_courses"`
	TotalEnrollments int64   `json:"total_enrollments"`
	TotalRevenue     float64 `json:"total_revenue"`
	TotalMessages    int64   `json:"total_messages"`
}

// StatsService computes platform-wide aggregates for the admin panel.
type StatsService struct {
	db *gorm.DB
}

// NewStatsService creates a new stats service
func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// PlatformStats gathers the platform aggregates in one pass. Counts are
// computed independently; a dashboard snapshot does not need to be a
// consistent point-in-time view.
func (s *StatsService) PlatformStats(ctx context.Context) (*PlatformStats, error) {
	stats := &PlatformStats{}
	db := s.db.WithContext(ctx)

	if err := db.Model(&model.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if err := db.Model(&model.User{}).Where("role = ?", model.RoleStudent).Count(&stats.TotalStudents).Error; err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}
	if err := db.Model(&model.User{}).Where("role = ?", model.RoleInstructor).Count(&stats.TotalInstructors).Error; err != nil {
		return nil, fmt.Errorf("failed to count instructors: %w", err)
	}

	if err := db.Model(&model.Course{}).Count(&stats.TotalCourses).Error; err != nil {
		return nil, fmt.Errorf("failed to count courses: %w", err)
	}
	if err := db.Model(&model.Course{}).Where("approval_status = ?", model.ApprovalPending).Count(&stats.PendingCourses).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending courses: %w", err)
	}
	if err := db.Model(&model.Course{}).Where("approval_status = ?", model.ApprovalApproved).Count(&stats.ApprovedCourses).Error; err != nil {
		return nil, fmt.Errorf("failed to count approved courses: %w", err)
	}
	if err := db.Model(&model.Course{}).Where("approval_status = ?", model.ApprovalRejected).Count(&stats.RejectedCourses).Error; err != nil {
		return nil, fmt.Errorf("failed to count rejected courses: %w", err)
	}

	if err := db.Model(&model.Enrollment{}).Count(&stats.TotalEnrollments).Error; err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}

	var revenue struct{ Total float64 }
	err := db.Model(&model.Enrollment{}).
		Select("COALESCE(SUM(amount_paid), 0) AS total").
		Where("payment_status = ?", "completed").
		Scan(&revenue).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	stats.TotalRevenue = revenue.Total

	if err := db.Model(&model.CourseMessage{}).Count(&stats.TotalMessages).Error; err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}

	return stats, nil
}
