package database

import (
	"fmt"
	"log"
	"os"

	"github.com/learnhubhq/learnhub-api/model"
	"github.com/learnhubhq/learnhub-api/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedDemoCatalog(); err != nil {
		return fmt.Errorf("failed to seed demo catalog: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

// SeedAdminUser creates the default admin user
func (s *Seeder) SeedAdminUser() error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Admin user already exists, skipping...")
		return nil
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		log.Println("⚠️  ADMIN_EMAIL and ADMIN_PASSWORD environment variables not set, skipping admin user creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.User{
		Email:        adminEmail,
		PasswordHash: passwordHash,
		Name:         "System Administrator",
		Role:         model.RoleAdmin,
		EmailOptIn:   false,
		TokenVersion: 0,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Created admin user: %s\n", admin.Email)
	return nil
}

// SeedDemoCatalog creates a demo instructor with a couple of approved
// courses. Only runs when SEED_DEMO=true; production deployments skip it.
func (s *Seeder) SeedDemoCatalog() error {
	if os.Getenv("SEED_DEMO") != "true" {
		log.Println("⏭️  SEED_DEMO not set, skipping demo catalog...")
		return nil
	}

	var count int64
	if err := s.db.Model(&model.Course{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Courses already exist, skipping demo catalog...")
		return nil
	}

	passwordHash, err := auth.HashPassword("demo-instructor-password")
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	instructor := model.User{
		Email:        "instructor@learnhub.local",
		PasswordHash: passwordHash,
		Name:         "Demo Instructor",
		Role:         model.RoleInstructor,
		EmailOptIn:   false,
	}
	if err := s.db.Create(&instructor).Error; err != nil {
		return err
	}

	courses := []model.Course{
		{
			InstructorID:   instructor.ID,
			Title:          "Introduction to Go",
			Description:    "Build backend services with Go, from syntax basics to production HTTP APIs.",
			Category:       "programming",
			Level:          "beginner",
			Price:          29.99,
			ApprovalStatus: model.ApprovalApproved,
			Published:      true,
		},
		{
			InstructorID:   instructor.ID,
			Title:          "PostgreSQL for Application Developers",
			Description:    "Schema design, indexing and query tuning for developers shipping on Postgres.",
			Category:       "databases",
			Level:          "intermediate",
			Price:          49.99,
			ApprovalStatus: model.ApprovalApproved,
			Published:      true,
		},
	}

	for i := range courses {
		if err := s.db.Create(&courses[i]).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Created demo instructor and %d courses\n", len(courses))
	return nil
}

// RunSeeds is the entry point used by the seed command
func RunSeeds(db *gorm.DB) error {
	seeder := NewSeeder(db)
	return seeder.SeedAll()
}
