package services

import (
	"fmt"
	"testing"

	"github.com/learnhubhq/learnhub-api/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema.
// A single connection keeps every query on the same in-memory store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Enrollment{},
		&model.CourseRating{},
		&model.CourseMessage{},
		&model.Notification{},
		&model.JWTTokenBlacklist{},
		&model.CronJobLog{},
	))

	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role string) *model.User {
	t.Helper()

	user := model.User{
		Email:        fmt.Sprintf("%s-%d@example.com", role, seq(t)),
		PasswordHash: "x",
		Name:         "Test " + role,
		Role:         role,
		EmailOptIn:   true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedCourse(t *testing.T, db *gorm.DB, instructorID uint, status model.ApprovalStatus, published bool) *model.Course {
	t.Helper()

	course := model.Course{
		InstructorID:   instructorID,
		Title:          fmt.Sprintf("Course %d", seq(t)),
		Description:    "A course used in tests",
		Category:       "programming",
		Level:          "beginner",
		Price:          19.99,
		ApprovalStatus: status,
		Published:      published,
	}
	require.NoError(t, db.Create(&course).Error)
	return &course
}

func seedEnrollment(t *testing.T, db *gorm.DB, courseID, userID uint) *model.Enrollment {
	t.Helper()

	enrollment := model.Enrollment{
		CourseID:      courseID,
		UserID:        userID,
		TransactionID: fmt.Sprintf("txn-%d", seq(t)),
		AmountPaid:    19.99,
		PaymentStatus: "completed",
		Status:        model.EnrollmentActive,
	}
	require.NoError(t, db.Create(&enrollment).Error)
	return &enrollment
}

var seqCounter int

// seq yields unique suffixes for seeded rows within a test binary.
func seq(t *testing.T) int {
	t.Helper()
	seqCounter++
	return seqCounter
}
