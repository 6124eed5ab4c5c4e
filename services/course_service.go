package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/learnhubhq/learnhub-api/model"
	"github.com/learnhubhq/learnhub-api/utils/cache"
	"gorm.io/gorm"
)

const (
	catalogCacheKey = "catalog:public"
	catalogCacheTTL = 60 * time.Second
)

// CourseService handles the course lifecycle: creation, updates,
// deletion and the admin approval workflow.
type CourseService struct {
	db            *gorm.DB
	notifications *NotificationService
	redisCache    *cache.RedisCache // optional, nil disables catalog caching
}

// NewCourseService creates a new course service
func NewCourseService(db *gorm.DB, notifications *NotificationService, redisCache *cache.RedisCache) *CourseService {
	return &CourseService{
		db:            db,
		notifications: notifications,
		redisCache:    redisCache,
	}
}

// CreateCourseInput holds the fields required to create a course.
type CreateCourseInput struct {
	Title        string
	Description  string
	Category     string
	Level        string
	Price        float64
	ThumbnailURL string
}

// UpdateCourseInput is a partial course update. Nil fields are left
// unchanged. Approval state is never touched here; only admins move it.
type UpdateCourseInput struct {
	Title        *string
	Description  *string
	Category     *string
	Level        *string
	Price        *float64
	ThumbnailURL *string
}

// CatalogFilter narrows the public catalog listing.
type CatalogFilter struct {
	Search   string
	Category string
	Level    string
	Page     int
	Limit    int
}

// Create registers a new course owned by the instructor. New courses
// always start pending review and unpublished.
func (s *CourseService) Create(ctx context.Context, instructorID uint, in CreateCourseInput) (*model.Course, error) {
	course := model.Course{
		InstructorID:   instructorID,
		Title:          strings.TrimSpace(in.Title),
		Description:    strings.TrimSpace(in.Description),
		Category:       strings.TrimSpace(in.Category),
		Level:          in.Level,
		Price:          in.Price,
		ThumbnailURL:   in.ThumbnailURL,
		Rating:         0,
		ApprovalStatus: model.ApprovalPending,
		Published:      false,
	}

	if err := s.db.WithContext(ctx).Create(&course).Error; err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.db.WithContext(ctx).Preload("Instructor").First(&course, course.ID)
	return &course, nil
}

// GetByID fetches one course with its instructor.
func (s *CourseService) GetByID(ctx context.Context, courseID uint) (*model.Course, error) {
	var course model.Course
	err := s.db.WithContext(ctx).Preload("Instructor").First(&course, courseID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch course: %w", err)
	}
	return &course, nil
}

// ownedCourse loads a course and enforces that userID is its instructor.
func (s *CourseService) ownedCourse(ctx context.Context, userID, courseID uint) (*model.Course, error) {
	course, err := s.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.InstructorID != userID {
		return nil, ErrForbidden
	}
	return course, nil
}

// Update applies a partial update to a course owned by userID.
func (s *CourseService) Update(ctx context.Context, userID, courseID uint, in UpdateCourseInput) (*model.Course, error) {
	course, err := s.ownedCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		course.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		course.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		course.Category = strings.TrimSpace(*in.Category)
	}
	if in.Level != nil {
		course.Level = *in.Level
	}
	if in.Price != nil {
		course.Price = *in.Price
	}
	if in.ThumbnailURL != nil {
		course.ThumbnailURL = *in.ThumbnailURL
	}

	if err := s.db.WithContext(ctx).Save(course).Error; err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	s.invalidateCatalogCache(ctx)
	return course, nil
}

// Delete removes a course owned by userID. Enrollments, messages and
// ratings are intentionally left in place; soft deletion keeps them
// reachable for audit.
func (s *CourseService) Delete(ctx context.Context, userID, courseID uint) error {
	course, err := s.ownedCourse(ctx, userID, courseID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(course).Error; err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	s.invalidateCatalogCache(ctx)
	return nil
}

// Approve transitions a pending course to approved and publishes it.
func (s *CourseService) Approve(ctx context.Context, adminID, courseID uint) (*model.Course, error) {
	course, err := s.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.ApprovalStatus != model.ApprovalPending {
		return nil, ErrNotPending
	}

	now := time.Now()
	course.ApprovalStatus = model.ApprovalApproved
	course.Published = true
	course.RejectionReason = ""
	course.ApprovedByID = &adminID
	course.ApprovedAt = &now

	if err := s.db.WithContext(ctx).Save(course).Error; err != nil {
		return nil, fmt.Errorf("failed to approve course: %w", err)
	}

	s.invalidateCatalogCache(ctx)
	return course, nil
}

// Reject transitions a pending course to rejected with a mandatory
// reason and notifies the instructor. The notification is best-effort:
// a failure there never fails the rejection itself.
func (s *CourseService) Reject(ctx context.Context, adminID, courseID uint, reason string) (*model.Course, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrMissingReason
	}

	course, err := s.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.ApprovalStatus != model.ApprovalPending {
		return nil, ErrNotPending
	}

	course.ApprovalStatus = model.ApprovalRejected
	course.Published = false
	course.RejectionReason = reason
	course.ApprovedByID = &adminID

	if err := s.db.WithContext(ctx).Save(course).Error; err != nil {
		return nil, fmt.Errorf("failed to reject course: %w", err)
	}

	_, nerr := s.notifications.Create(ctx, CreateNotificationRequest{
		UserID:  course.InstructorID,
		Type:    model.NotificationCourseUpdate,
		Title:   "Course rejected",
		Message: fmt.Sprintf("Your course %q was rejected: %s", course.Title, reason),
		Data: map[string]interface{}{
			"course_id": course.ID,
			"reason":    reason,
		},
	})
	if nerr != nil {
		log.Printf("course %d rejection notification failed: %v", course.ID, nerr)
	}

	s.invalidateCatalogCache(ctx)
	return course, nil
}

// ListPublic returns the public catalog: approved AND published courses
// only. Unfiltered first pages are served from a short-lived Redis cache.
func (s *CourseService) ListPublic(ctx context.Context, f CatalogFilter) ([]model.Course, int64, error) {
	cacheable := s.redisCache != nil && f.Search == "" && f.Category == "" && f.Level == "" && f.Page <= 1

	if cacheable {
		var cached struct {
			Courses []model.Course `json:"courses"`
			Total   int64          `json:"total"`
		}
		if err := s.redisCache.GetJSON(ctx, catalogCacheKey, &cached); err == nil {
			return cached.Courses, cached.Total, nil
		}
	}

	query := s.db.WithContext(ctx).Model(&model.Course{}).
		Where("approval_status = ? AND published = ?", model.ApprovalApproved, true)

	if f.Search != "" {
		like := "%" + f.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.Level != "" {
		query = query.Where("level = ?", f.Level)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 10
	}

	var courses []model.Course
	err := query.Preload("Instructor").
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&courses).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch courses: %w", err)
	}

	if cacheable {
		payload := map[string]interface{}{"courses": courses, "total": total}
		if err := s.redisCache.SetJSON(ctx, catalogCacheKey, payload, catalogCacheTTL); err != nil {
			log.Printf("catalog cache write failed: %v", err)
		}
	}

	return courses, total, nil
}

// ListByStatus returns courses in one approval state (admin view).
func (s *CourseService) ListByStatus(ctx context.Context, status model.ApprovalStatus) ([]model.Course, error) {
	var courses []model.Course
	err := s.db.WithContext(ctx).
		Where("approval_status = ?", status).
		Preload("Instructor").
		Order("created_at ASC").
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch courses: %w", err)
	}
	return courses, nil
}

// ListPending returns courses awaiting review (admin view).
func (s *CourseService) ListPending(ctx context.Context) ([]model.Course, error) {
	return s.ListByStatus(ctx, model.ApprovalPending)
}

// ListAll returns every course regardless of state (admin view).
func (s *CourseService) ListAll(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := s.db.WithContext(ctx).
		Preload("Instructor").
		Order("created_at DESC").
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch courses: %w", err)
	}
	return courses, nil
}

// ListByInstructor returns all courses owned by one instructor,
// whatever their approval state.
func (s *CourseService) ListByInstructor(ctx context.Context, instructorID uint) ([]model.Course, error) {
	var courses []model.Course
	err := s.db.WithContext(ctx).
		Where("instructor_id = ?", instructorID).
		Order("created_at DESC").
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch courses: %w", err)
	}
	return courses, nil
}

func (s *CourseService) invalidateCatalogCache(ctx context.Context) {
	if s.redisCache == nil {
		return
	}
	if err := s.redisCache.Delete(ctx, catalogCacheKey); err != nil {
		log.Printf("catalog cache invalidation failed: %v", err)
	}
}
