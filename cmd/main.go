package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/courseforge/courseforge-backend/internal/db"
	"github.com/courseforge/courseforge-backend/internal/handlers"
	"github.com/courseforge/courseforge-backend/internal/logger"
	"github.com/courseforge/courseforge-backend/internal/middleware"
	"github.com/courseforge/courseforge-backend/internal/repos"
	"github.com/courseforge/courseforge-backend/internal/server"
	"github.com/courseforge/courseforge-backend/internal/services"
	"github.com/courseforge/courseforge-backend/internal/utils"
)

func main() {
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	courseRepo := repos.NewCourseRepo(thePG, log)
	unitRepo := repos.NewUnitRepo(thePG, log)
	lessonRepo := repos.NewLessonRepo(thePG, log)
	competencyRepo := repos.NewCompetencyRepo(thePG, log)
	activityRepo := repos.NewActivityRepo(thePG, log)
	generatedDocumentRepo := repos.NewGeneratedDocumentRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	storageService, err := services.NewLocalDocumentStorage(log)
	if err != nil {
		log.Error("Could not init DocumentStorage", "error", err)
		os.Exit(1)
	}
	templateService, err := services.NewTemplateService(log)
	if err != nil {
		log.Error("Could not init TemplateService", "error", err)
		os.Exit(1)
	}
	docGenService := services.NewDocumentGenerationService(
		courseRepo,
		unitRepo,
		lessonRepo,
		competencyRepo,
		activityRepo,
		generatedDocumentRepo,
		storageService,
		templateService,
		log,
	)

	// Handlers
	log.Info("Setting up Handlers from main...")
	healthcheckHandler := handlers.NewHealthcheckHandler()
	documentHandler := handlers.NewDocumentHandler(log, docGenService)

	// Middleware
	log.Info("Setting up middleware from main...")
	requestLogMiddleware := middleware.NewRequestLogMiddleware(log)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		HealthcheckHandler:   healthcheckHandler,
		DocumentHandler:      documentHandler,
		RequestLogMiddleware: requestLogMiddleware,
	})

	port := utils.GetEnv("SERVER_PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
