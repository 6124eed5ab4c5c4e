package services

import (
	"context"
	"testing"

	"github.com/learnhubhq/learnhub-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatformStats(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(db)
	instructor := seedUser(t, db, model.RoleInstructor)
	alice := seedUser(t, db, model.RoleStudent)
	bob := seedUser(t, db, model.RoleStudent)
	seedUser(t, db, model.RoleAdmin)

	approved := seedCourse(t, db, instructor.ID, model.ApprovalApproved, true)
	seedCourse(t, db, instructor.ID, model.ApprovalPending, false)
	seedEnrollment(t, db, approved.ID, alice.ID)
	seedEnrollment(t, db, approved.ID, bob.ID)

	require.NoError(t, db.Create(&model.CourseMessage{
		CourseID: approved.ID,
		SenderID: alice.ID,
		Content:  "hi",
	}).Error)

	stats, err := svc.PlatformStats(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 4, stats.TotalUsers)
	assert.EqualValues(t, 2, stats.TotalStudents)
	assert.EqualValues(t, 1, stats.TotalInstructors)
	assert.EqualValues(t, 2, stats.TotalCourses)
	assert.EqualValues(t, 1, stats.PendingCourses)
	assert.EqualValues(t, 1, stats.ApprovedCourses)
	assert.EqualValues(t, 0, stats.RejectedCourses)
	assert.EqualValues(t, 2, stats.TotalEnrollments)
	assert.InDelta(t, 39.98, stats.TotalRevenue, 0.001)
	assert.EqualValues(t, 1, stats.TotalMessages)
}
