package services

import (
	"context"
	"testing"

	"github.com/learnhubhq/learnhub-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateRequiresEnrollment(t *testing.T) {
	db := newTestDB(t)
	svc := NewRatingService(db, NewAccessService(db))
	instructor := seedUser(t, db, model.RoleInstructor)
	outsider := seedUser(t, db, model.RoleStudent)
	course := seedCourse(t, db, instructor.ID, model.ApprovalApproved, true)

	_, err := svc.Rate(context.Background(), outsider.ID, course.ID, 4)
	assert.ErrorIs(t, err, ErrNotEnrolled)

	// The instructor is a participant but not a student of their own
	// course, so they cannot rate it either.
	_, err = svc.Rate(context.Background(), instructor.ID, course.ID, 5)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRateValidatesRange(t *testing.T) {
	db := newTestDB(t)
	svc := NewRatingService(db, NewAccessService(db))
	instructor := seedUser(t, db, model.RoleInstructor)
	student := seedUser(t, db, model.RoleStudent)
	course := seedCourse(t, db, instructor.ID, model.ApprovalApproved, true)
	seedEnrollment(t, db, course.ID, student.ID)

	for _, v := range []int{0, -1, 6} {
		_, err := svc.Rate(context.Background(), student.ID, course.ID, v)
		assert.ErrorIs(t, err, ErrInvalidRating)
	}
}

func TestRateUpsertsAndRecomputesAggregate(t *testing.T) {
	db := newTestDB(t)
	svc := NewRatingService(db, NewAccessService(db))
	instructor := seedUser(t, db, model.RoleInstructor)
	alice := seedUser(t, db, model.RoleStudent)
	bob := seedUser(t, db, model.RoleStudent)
	course := seedCourse(t, db, instructor.ID, model.ApprovalApproved, true)
	seedEnrollment(t, db, course.ID, alice.ID)
	seedEnrollment(t, db, course.ID, bob.ID)

	summary, err := svc.Rate(context.Background(), alice.ID, course.ID, 5)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, summary.Average, 0.001)
	assert.EqualValues(t, 1, summary.Count)

	summary, err = svc.Rate(context.Background(), bob.ID, course.ID, 3)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, summary.Average, 0.001)
	assert.EqualValues(t, 2, summary.Count)

	// Re-rating replaces, never adds a second row.
	summary, err = svc.Rate(context.Background(), alice.ID, course.ID, 1)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, summary.Average, 0.001)
	assert.EqualValues(t, 2, summary.Count)

	var stored model.Course
	require.NoError(t, db.First(&stored, course.ID).Error)
	assert.InDelta(t, 2.0, stored.Rating, 0.001)
	assert.Equal(t, 2, stored.RatingCount)
}

func TestGetUserRatingAbsenceMeansUnrated(t *testing.T) {
	db := newTestDB(t)
	svc := NewRatingService(db, NewAccessService(db))
	instructor := seedUser(t, db, model.RoleInstructor)
	student := seedUser(t, db, model.RoleStudent)
	course := seedCourse(t, db, instructor.ID, model.ApprovalApproved, true)
	seedEnrollment(t, db, course.ID, student.ID)

	rating, err := svc.GetUserRating(context.Background(), student.ID, course.ID)
	require.NoError(t, err)
	assert.Nil(t, rating)

	_, err = svc.Rate(context.Background(), student.ID, course.ID, 4)
	require.NoError(t, err)

	rating, err = svc.GetUserRating(context.Background(), student.ID, course.ID)
	require.NoError(t, err)
	require.NotNil(t, rating)
	assert.Equal(t, 4, rating.Value)
}

func TestResyncAllCourseRatings(t *testing.T) {
	db := newTestDB(t)
	svc := NewRatingService(db, NewAccessService(db))
	instructor := seedUser(t, db, model.RoleInstructor)
	student := seedUser(t, db, model.RoleStudent)
	course := seedCourse(t, db, instructor.ID, model.ApprovalApproved, true)
	seedEnrollment(t, db, course.ID, student.ID)

	_, err := svc.Rate(context.Background(), student.ID, course.ID, 5)
	require.NoError(t, err)

	// Simulate drift in the denormalized aggregate.
	require.NoError(t, db.Model(&model.Course{}).Where("id = ?", course.ID).
		Updates(map[string]interface{}{"rating": 1.0, "rating_count": 99}).Error)

	resynced, err := svc.ResyncAllCourseRatings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resynced)

	var stored model.Course
	require.NoError(t, db.First(&stored, course.ID).Error)
	assert.InDelta(t, 5.0, stored.Rating, 0.001)
	assert.Equal(t, 1, stored.RatingCount)
}
