package services

import (
	"context"
	"testing"

	"github.com/learnhubhq/learnhub-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCourseStartsPending(t *testing.T) {
	db := newTestDB(t)
	svc := NewCourseService(db, NewNotificationService(db), nil)
	instructor := seedUser(t, db, model.RoleInstructor)

	course, err := svc.Create(context.Background(), instructor.ID, CreateCourseInput{
		Title:       "  Distributed Systems  ",
		Description: "Consensus, replication and failure modes.",
		Category:    "programming",
		Level:       "advanced",
		Price:       59.99,
	})
	require.NoError(t, err)

	assert.Equal(t, "Distributed Systems", course.Title)
	assert.Equal(t, model.ApprovalPending, course.ApprovalStatus)
	assert.False(t, course.Published)
	assert.False(t, course.PubliclyVisible())
	assert.Zero(t, course.Rating)
}

func TestUpdateCourseRequiresOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := NewCourseService(db, NewNotificationService(db), nil)
	owner := seedUser(t, db, model.RoleInstructor)
	other := seedUser(t, db, model.RoleInstructor)
	course := seedCourse(t, db, owner.ID, model.ApprovalPending, false)

	newTitle := "Renamed"
	_, err := svc.Update(context.Background(), other.ID, course.ID, UpdateCourseInput{Title: &newTitle})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(context.Background(), owner.ID, course.ID, UpdateCourseInput{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestApproveCoursePublishes(t *testing.T) {
	db := newTestDB(t)
	svc := NewCourseService(db, NewNotificationService(db), nil)
	instructor := seedUser(t, db, model.RoleInstructor)
	admin := seedUser(t, db, model.RoleAdmin)
	course := seedCourse(t, db, instructor.ID, model.ApprovalPending, false)

	approved, err := svc.Approve(context.Background(), admin.ID, course.ID)
	require.NoError(t, err)

	assert.Equal(t, model.ApprovalApproved, approved.ApprovalStatus)
	assert.True(t, approved.Published)
	assert.True(t, approved.PubliclyVisible())
	require.NotNil(t, approved.ApprovedByID)
	assert.Equal(t, admin.ID, *approved.ApprovedByID)
	assert.NotNil(t, approved.ApprovedAt)

	// Approving twice fails: the course is no longer pending.
	_, err = svc.Approve(context.Background(), admin.ID, course.ID)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestRejectCourseRequiresReason(t *testing.T) {
	db := newTestDB(t)
	notifications := NewNotificationService(db)
	svc := NewCourseService(db, notifications, nil)
	instructor := seedUser(t, db, model.RoleInstructor)
	admin := seedUser(t, db, model.RoleAdmin)
	course := seedCourse(t, db, instructor.ID, model.ApprovalPending, false)

	_, err := svc.Reject(context.Background(), admin.ID, course.ID, "   ")
	assert.ErrorIs(t, err, ErrMissingReason)

	rejected, err := svc.Reject(context.Background(), admin.ID, course.ID, "No syllabus attached")
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalRejected, rejected.ApprovalStatus)
	assert.False(t, rejected.Published)
	assert.Equal(t, "No syllabus attached", rejected.RejectionReason)

	// The instructor got a course_update notification about it.
	list, err := notifications.ListForUser(context.Background(), instructor.ID)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, model.NotificationCourseUpdate, list.Notifications[0].Type)
}

func TestListPublicFiltersVisibility(t *testing.T) {
	db := newTestDB(t)
	svc := NewCourseService(db, NewNotificationService(db), nil)
	instructor := seedUser(t, db, model.RoleInstructor)

	seedCourse(t, db, instructor.ID, model.ApprovalApproved, true)
	seedCourse(t, db, instructor.ID, model.ApprovalPending, false)
	seedCourse(t, db, instructor.ID, model.ApprovalRejected, false)

	// Approved but unpublished must stay hidden too.
	hidden := seedCourse(t, db, instructor.ID, model.ApprovalApproved, false)

	courses, total, err := svc.ListPublic(context.Background(), CatalogFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, courses, 1)
	assert.NotEqual(t, hidden.ID, courses[0].ID)
	assert.True(t, courses[0].PubliclyVisible())
}

func TestListPublicSearchFilter(t *testing.T) {
	db := newTestDB(t)
	svc := NewCourseService(db, NewNotificationService(db), nil)
	instructor := seedUser(t, db, model.RoleInstructor)

	match := seedCourse(t, db, instructor.ID, model.ApprovalApproved, true)
	match.Title = "Advanced Networking"
	require.NoError(t, db.Save(match).Error)
	seedCourse(t, db, instructor.ID, model.ApprovalApproved, true)

	courses, total, err := svc.ListPublic(context.Background(), CatalogFilter{Search: "Networking", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, courses, 1)
	assert.Equal(t, match.ID, courses[0].ID)
}

func TestDeleteCourseKeepsEnrollments(t *testing.T) {
	db := newTestDB(t)
	svc := NewCourseService(db, NewNotificationService(db), nil)
	instructor := seedUser(t, db, model.RoleInstructor)
	student := seedUser(t, db, model.RoleStudent)
	course := seedCourse(t, db, instructor.ID, model.ApprovalApproved, true)
	seedEnrollment(t, db, course.ID, student.ID)

	require.NoError(t, svc.Delete(context.Background(), instructor.ID, course.ID))

	_, err := svc.GetByID(context.Background(), course.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Enrollment rows survive the course deletion.
	var enrollments int64
	require.NoError(t, db.Model(&model.Enrollment{}).Where("course_id = ?", course.ID).Count(&enrollments).Error)
	assert.EqualValues(t, 1, enrollments)
}
