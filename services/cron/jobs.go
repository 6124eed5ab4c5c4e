package cron

import (
	"context"
	"fmt"
	"time"
)

// notificationRetention is how long read notifications are kept before
// the daily cleanup removes them.
const notificationRetention = 90 * 24 * time.Hour

// ResyncCourseRatings rebuilds every course's stored rating aggregate
// from the rating rows. The aggregate is maintained transactionally on
// each write; this job repairs any drift from manual data fixes.
func (m *CronManager) ResyncCourseRatings() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	jobName := "resync_course_ratings"

	resynced, err := m.ratings.ResyncAllCourseRatings(ctx)
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to resync ratings: %w", err))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Resynced %d course rating aggregates", resynced))
}

// CleanupNotifications removes read notifications past the retention
// window. Runs daily at 2 AM.
func (m *CronManager) CleanupNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	jobName := "cleanup_notifications"

	removed, err := m.notifications.CleanupOldRead(ctx, notificationRetention)
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to clean notifications: %w", err))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d old read notifications", removed))
}

// CleanupExpiredTokens removes expired entries from the JWT blacklist.
// Runs daily at 3 AM.
func (m *CronManager) CleanupExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	jobName := "cleanup_expired_tokens"

	if err := m.blacklist.CleanupExpiredTokens(ctx); err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to clean token blacklist: %w", err))
		return
	}

	m.logJobComplete(jobName, "Expired blacklist entries removed")
}
