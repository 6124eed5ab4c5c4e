package services

import (
	"context"
	"fmt"

	"github.com/learnhubhq/learnhub-api/model"
	"gorm.io/gorm"
)

// RatingService manages per-student course ratings and keeps the
// denormalized aggregate on the course row in sync.
type RatingService struct {
	db     *gorm.DB
	access *AccessService
}

// NewRatingService creates a new rating service
func NewRatingService(db *gorm.DB, access *AccessService) *RatingService {
	return &RatingService{db: db, access: access}
}

// RatingSummary is the aggregate state returned after a rating change.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// Rate records or replaces the student's rating for a course. Only
// enrolled students may rate; the instructor cannot rate their own
// course. Rating again overwrites the previous value, it never adds a
// second row. The course's average and count are recomputed from the
// rating rows inside the same transaction, so the aggregate can drift
// from the source of truth only until the next write.
func (s *RatingService) Rate(ctx context.Context, userID, courseID uint, value int) (*RatingSummary, error) {
	if value < 1 || value > 5 {
		return nil, ErrInvalidRating
	}

	access, err := s.access.CheckCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if access.IsInstructor {
		return nil, ErrForbidden
	}
	if !access.IsEnrolled {
		return nil, ErrNotEnrolled
	}

	var summary RatingSummary
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rating model.CourseRating
		err := tx.Where("course_id = ? AND user_id = ?", courseID, userID).First(&rating).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			rating = model.CourseRating{CourseID: courseID, UserID: userID, Value: value}
			if err := tx.Create(&rating).Error; err != nil {
				return fmt.Errorf("failed to create rating: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to load rating: %w", err)
		default:
			rating.Value = value
			if err := tx.Save(&rating).Error; err != nil {
				return fmt.Errorf("failed to update rating: %w", err)
			}
		}

		recomputed, err := recomputeCourseRating(tx, courseID)
		if err != nil {
			return err
		}
		summary = *recomputed
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &summary, nil
}

// recomputeCourseRating rebuilds a course's aggregate from its rating
// rows and persists it on the course record.
func recomputeCourseRating(tx *gorm.DB, courseID uint) (*RatingSummary, error) {
	var agg struct {
		Average float64
		Count   int64
	}
	err := tx.Model(&model.CourseRating{}).
		Select("COALESCE(AVG(value), 0) AS average, COUNT(*) AS count").
		Where("course_id = ?", courseID).
		Scan(&agg).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	err = tx.Model(&model.Course{}).
		Where("id = ?", courseID).
		Updates(map[string]interface{}{
			"rating":       agg.Average,
			"rating_count": agg.Count,
		}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to store course rating: %w", err)
	}

	return &RatingSummary{Average: agg.Average, Count: agg.Count}, nil
}

// GetUserRating returns the student's rating for a course, or nil when
// they have not rated it. Absence of a row is the only "unrated" state;
// a stored zero never occurs.
func (s *RatingService) GetUserRating(ctx context.Context, userID, courseID uint) (*model.CourseRating, error) {
	var rating model.CourseRating
	err := s.db.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		First(&rating).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch rating: %w", err)
	}
	return &rating, nil
}

// ListForCourse returns all ratings for one course with rater profiles.
func (s *RatingService) ListForCourse(ctx context.Context, courseID uint) ([]model.CourseRating, error) {
	var ratings []model.CourseRating
	err := s.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Preload("User").
		Order("updated_at DESC").
		Find(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ratings: %w", err)
	}
	return ratings, nil
}

// ResyncAllCourseRatings rebuilds every course's stored aggregate from
// the rating rows. Run by the scheduled consistency job.
func (s *RatingService) ResyncAllCourseRatings(ctx context.Context) (int, error) {
	var courseIDs []uint
	err := s.db.WithContext(ctx).Model(&model.Course{}).
		Pluck("id", &courseIDs).Error
	if err != nil {
		return 0, fmt.Errorf("failed to list courses: %w", err)
	}

	resynced := 0
	for _, id := range courseIDs {
		if _, err := recomputeCourseRating(s.db.WithContext(ctx), id); err != nil {
			return resynced, err
		}
		resynced++
	}
	return resynced, nil
}
