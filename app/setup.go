package app

import (
	"fmt"
	"os"

	"github.com/learnhubhq/learnhub-api/api"
	"github.com/learnhubhq/learnhub-api/config"
	"github.com/learnhubhq/learnhub-api/database"
	"github.com/learnhubhq/learnhub-api/router"
	"github.com/learnhubhq/learnhub-api/services/cron"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		print("If not running, run the following command:\n")
		print("  make docker-up   (for Docker setup)\n")
		print("  make db-up       (for local PostgreSQL)\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		print("Error running migrations:\n")
		return err
	}

	// Init API
	var server *api.APIServer = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Setup Routes (includes logging, recovery and the security stack)
	deps := router.SetupRoutes(app, store)

	// Scheduled jobs (enabled by default)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" {
		cronManager = cron.NewCronManager(store.DB(), deps.Notifications, deps.Ratings, deps.Blacklist)
		if err := cronManager.Start(); err != nil {
			print("Warning: Failed to start cron jobs\n")
			print("Error: ", err.Error(), "\n")
			// Don't fail the app, just log the warning
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		if deps.RedisCache != nil {
			deps.RedisCache.Close()
		}
		store.Close()
	}()

	// Get the PORT & Start the Server
	return server.Run()
}
