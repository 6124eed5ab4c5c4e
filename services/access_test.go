package services

import (
	"context"
	"testing"

	"github.com/learnhubhq/learnhub-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCourseResolvesMembership(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccessService(db)
	instructor := seedUser(t, db, model.RoleInstructor)
	student := seedUser(t, db, model.RoleStudent)
	outsider := seedUser(t, db, model.RoleStudent)
	course := seedCourse(t, db, instructor.ID, model.ApprovalApproved, true)
	seedEnrollment(t, db, course.ID, student.ID)

	access, err := svc.CheckCourse(context.Background(), instructor.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, access.IsInstructor)
	assert.False(t, access.IsEnrolled)
	assert.True(t, access.CanParticipate())

	access, err = svc.CheckCourse(context.Background(), student.ID, course.ID)
	require.NoError(t, err)
	assert.False(t, access.IsInstructor)
	assert.True(t, access.IsEnrolled)
	assert.True(t, access.CanParticipate())

	access, err = svc.CheckCourse(context.Background(), outsider.ID, course.ID)
	require.NoError(t, err)
	assert.False(t, access.CanParticipate())

	_, err = svc.CheckCourse(context.Background(), student.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRequireParticipantExcludesDropped(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccessService(db)
	instructor := seedUser(t, db, model.RoleInstructor)
	student := seedUser(t, db, model.RoleStudent)
	course := seedCourse(t, db, instructor.ID, model.ApprovalApproved, true)
	enrollment := seedEnrollment(t, db, course.ID, student.ID)

	_, err := svc.RequireParticipant(context.Background(), student.ID, course.ID)
	require.NoError(t, err)

	enrollment.Status = model.EnrollmentDropped
	require.NoError(t, db.Save(enrollment).Error)

	_, err = svc.RequireParticipant(context.Background(), student.ID, course.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}
