package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/learnhubhq/learnhub-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateNotificationStoresPayload(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	user := seedUser(t, db, model.RoleStudent)

	created, err := svc.Create(context.Background(), CreateNotificationRequest{
		UserID:  user.ID,
		Type:    model.NotificationCoursePurchase,
		Title:   "Course purchased",
		Message: "You are now enrolled.",
		Data:    map[string]interface{}{"course_id": 42},
	})
	require.NoError(t, err)
	assert.False(t, created.Read)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(created.Data, &payload))
	assert.EqualValues(t, 42, payload["course_id"])
}

func TestListForUserCountsUnread(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	user := seedUser(t, db, model.RoleStudent)
	other := seedUser(t, db, model.RoleStudent)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), CreateNotificationRequest{
			UserID: user.ID, Type: model.NotificationSystem, Title: "t", Message: "m",
		})
		require.NoError(t, err)
	}
	_, err := svc.Create(context.Background(), CreateNotificationRequest{
		UserID: other.ID, Type: model.NotificationSystem, Title: "t", Message: "m",
	})
	require.NoError(t, err)

	list, err := svc.ListForUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, list.Notifications, 3)
	assert.EqualValues(t, 3, list.UnreadCount)

	require.NoError(t, svc.MarkAsRead(context.Background(), user.ID, list.Notifications[0].ID))

	list, err = svc.ListForUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.UnreadCount)
}

func TestMarkAsReadIsOwnerScoped(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	owner := seedUser(t, db, model.RoleStudent)
	intruder := seedUser(t, db, model.RoleStudent)

	created, err := svc.Create(context.Background(), CreateNotificationRequest{
		UserID: owner.ID, Type: model.NotificationSystem, Title: "t", Message: "m",
	})
	require.NoError(t, err)

	err = svc.MarkAsRead(context.Background(), intruder.ID, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Delete(context.Background(), intruder.ID, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.MarkAsRead(context.Background(), owner.ID, created.ID))
}

func TestMarkAllReadAndClearAll(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	user := seedUser(t, db, model.RoleStudent)

	for i := 0; i < 4; i++ {
		_, err := svc.Create(context.Background(), CreateNotificationRequest{
			UserID: user.ID, Type: model.NotificationSystem, Title: "t", Message: "m",
		})
		require.NoError(t, err)
	}

	updated, err := svc.MarkAllRead(context.Background(), user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, updated)

	removed, err := svc.ClearAll(context.Background(), user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, removed)

	list, err := svc.ListForUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, list.Notifications)
}

func TestCleanupOldReadKeepsUnread(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	user := seedUser(t, db, model.RoleStudent)

	oldRead, err := svc.Create(context.Background(), CreateNotificationRequest{
		UserID: user.ID, Type: model.NotificationSystem, Title: "old read", Message: "m",
	})
	require.NoError(t, err)
	require.NoError(t, svc.MarkAsRead(context.Background(), user.ID, oldRead.ID))

	oldUnread, err := svc.Create(context.Background(), CreateNotificationRequest{
		UserID: user.ID, Type: model.NotificationSystem, Title: "old unread", Message: "m",
	})
	require.NoError(t, err)

	// Age both rows past the retention window.
	stale := time.Now().Add(-100 * 24 * time.Hour)
	require.NoError(t, db.Model(&model.Notification{}).
		Where("id IN ?", []uint{oldRead.ID, oldUnread.ID}).
		Update("created_at", stale).Error)

	removed, err := svc.CleanupOldRead(context.Background(), 90*24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	list, err := svc.ListForUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, "old unread", list.Notifications[0].Title)
}
