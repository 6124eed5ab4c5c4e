package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/learnhubhq/learnhub-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRequiresParticipation(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(db, NewAccessService(db))
	instructor := seedUser(t, db, model.RoleInstructor)
	outsider := seedUser(t, db, model.RoleStudent)
	course := seedCourse(t, db, instructor.ID, model.ApprovalApproved, true)

	_, err := svc.Post(context.Background(), outsider.ID, course.ID, "hello")
	assert.ErrorIs(t, err, ErrForbidden)

	// The instructor participates without an enrollment row.
	message, err := svc.Post(context.Background(), instructor.ID, course.ID, "welcome everyone")
	require.NoError(t, err)
	assert.Equal(t, "welcome everyone", message.Content)
	assert.Equal(t, instructor.ID, message.Sender.ID)
}

func TestPostRejectsEmptyText(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(db, NewAccessService(db))
	instructor := seedUser(t, db, model.RoleInstructor)
	course := seedCourse(t, db, instructor.ID, model.ApprovalApproved, true)

	_, err := svc.Post(context.Background(), instructor.ID, course.ID, "   \t  ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestPostDroppedEnrollmentLosesAccess(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(db, NewAccessService(db))
	instructor := seedUser(t, db, model.RoleInstructor)
	student := seedUser(t, db, model.RoleStudent)
	course := seedCourse(t, db, instructor.ID, model.ApprovalApproved, true)
	enrollment := seedEnrollment(t, db, course.ID, student.ID)

	_, err := svc.Post(context.Background(), student.ID, course.ID, "first")
	require.NoError(t, err)

	enrollment.Status = model.EnrollmentDropped
	require.NoError(t, db.Save(enrollment).Error)

	_, err = svc.Post(context.Background(), student.ID, course.ID, "second")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestHistoryReturnsChronologicalTail(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(db, NewAccessService(db))
	instructor := seedUser(t, db, model.RoleInstructor)
	student := seedUser(t, db, model.RoleStudent)
	course := seedCourse(t, db, instructor.ID, model.ApprovalApproved, true)
	seedEnrollment(t, db, course.ID, student.ID)

	// Insert directly with explicit ids so ordering is deterministic
	// even when timestamps collide inside one test run.
	for i := 1; i <= 105; i++ {
		msg := model.CourseMessage{
			CourseID: course.ID,
			SenderID: student.ID,
			Content:  fmt.Sprintf("message %d", i),
		}
		require.NoError(t, db.Create(&msg).Error)
	}

	history, err := svc.History(context.Background(), student.ID, course.ID)
	require.NoError(t, err)
	require.Len(t, history, 100)

	// Oldest of the window first, newest last.
	assert.Equal(t, "message 6", history[0].Content)
	assert.Equal(t, "message 105", history[99].Content)
}

func TestHistoryBreaksTimestampTiesByID(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(db, NewAccessService(db))
	instructor := seedUser(t, db, model.RoleInstructor)
	student := seedUser(t, db, model.RoleStudent)
	course := seedCourse(t, db, instructor.ID, model.ApprovalApproved, true)
	seedEnrollment(t, db, course.ID, student.ID)

	for i := 1; i <= 3; i++ {
		msg := model.CourseMessage{
			CourseID: course.ID,
			SenderID: student.ID,
			Content:  fmt.Sprintf("message %d", i),
		}
		require.NoError(t, db.Create(&msg).Error)
	}

	// Collapse every timestamp to the same instant: insertion order must
	// still win via the id column.
	require.NoError(t, db.Model(&model.CourseMessage{}).
		Where("course_id = ?", course.ID).
		Update("created_at", "2026-01-02 03:04:05").Error)

	history, err := svc.History(context.Background(), student.ID, course.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i, message := range history {
		assert.Equal(t, fmt.Sprintf("message %d", i+1), message.Content)
	}
}

func TestHistoryRequiresParticipation(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(db, NewAccessService(db))
	instructor := seedUser(t, db, model.RoleInstructor)
	outsider := seedUser(t, db, model.RoleStudent)
	course := seedCourse(t, db, instructor.ID, model.ApprovalApproved, true)

	_, err := svc.History(context.Background(), outsider.ID, course.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.History(context.Background(), outsider.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}
