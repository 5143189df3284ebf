package main

import (
	"context"
	"os"
	"strconv"

	"go.uber.org/zap"

	dbadapter "postpilot/internal/adapters/database"
	"postpilot/internal/adapters/httpapi"
	queueadapter "postpilot/internal/adapters/queue"
	redisadapter "postpilot/internal/adapters/redis"
	"postpilot/internal/config"
	"postpilot/internal/core/connection"
	connectionapp "postpilot/internal/core/connection/service"
	"postpilot/internal/core/notification"
	"postpilot/internal/core/post"
	postapp "postpilot/internal/core/post/service"
	publishapp "postpilot/internal/core/publish/service"
	"postpilot/internal/core/schedule"
	scheduleapp "postpilot/internal/core/schedule/service"
	"postpilot/internal/core/user"
	userapp "postpilot/internal/core/user/service"
	"postpilot/internal/platforms"
	"postpilot/internal/vault"
	"postpilot/internal/workers"
)

func main() {
	config.InitLogger()
	config.Init()

	config.InitDB()
	if err := config.DB.AutoMigrate(
		&user.User{},
		&post.Post{},
		&schedule.RecurrenceRule{},
		&schedule.ScheduleRecord{},
		&connection.Connection{},
		&notification.Notification{},
	); err != nil {
		config.Logger.Fatal("Error during migrations:", zap.Error(err))
	}
	config.Logger.Info("✅ Database migrations completed")

	config.InitRedis()
	defer closeResources(config.Logger)

	credentialVault, err := vault.New([]byte(os.Getenv("VAULT_MASTER_KEY")), "platform-credentials")
	if err != nil {
		config.Logger.Fatal("Error initializing credential vault:", zap.Error(err))
	}

	registry := platforms.NewRegistry()
	if id, secret := os.Getenv("TWITTER_CLIENT_ID"), os.Getenv("TWITTER_CLIENT_SECRET"); id != "" && secret != "" {
		registry.Register(platforms.NewTwitter(id, secret))
	}
	if id, secret := os.Getenv("LINKEDIN_CLIENT_ID"), os.Getenv("LINKEDIN_CLIENT_SECRET"); id != "" && secret != "" {
		registry.Register(platforms.NewLinkedIn(id, secret))
	}
	if len(registry.IDs()) == 0 {
		config.Logger.Fatal("No platform providers configured")
	}
	config.Logger.Info("Platform providers registered", zap.Strings("platforms", registry.IDs()))

	publicBaseURL := os.Getenv("PUBLIC_BASE_URL")
	queueClient := queueadapter.NewClient(
		os.Getenv("QUEUE_URL"),
		os.Getenv("QUEUE_TOKEN"),
		publicBaseURL+"/publish/callback",
	)

	userRepo := dbadapter.NewUserRepositoryDatabase()
	postRepo := dbadapter.NewPostRepositoryDatabase()
	ruleRepo := dbadapter.NewRuleRepositoryDatabase()
	scheduleRepo := dbadapter.NewScheduleRepositoryDatabase()
	connectionRepo := dbadapter.NewConnectionRepositoryDatabase()
	notificationRepo := dbadapter.NewNotificationRepositoryDatabase()
	notificationFeed := redisadapter.NewNotificationFeedRedis(config.RedisClient)

	jwtKey := []byte(os.Getenv("JWT_SECRET"))
	userSvc := userapp.NewUserService(userRepo, jwtKey)
	postSvc := postapp.NewPostService(postRepo)
	scheduleSvc := scheduleapp.NewScheduleService(postRepo, ruleRepo, scheduleRepo, queueClient, registry, config.Logger)
	connectionSvc := connectionapp.NewConnectionService(connectionRepo, registry, credentialVault, jwtKey, publicBaseURL, config.Logger)
	publishSvc := publishapp.NewPublishService(scheduleRepo, postRepo, connectionRepo, notificationRepo, registry, credentialVault, config.Logger)

	appOrigin := os.Getenv("APP_ORIGIN")
	if appOrigin == "" {
		appOrigin = publicBaseURL
	}
	r := httpapi.SetupRoutes(
		userSvc, postSvc, scheduleSvc, connectionSvc, publishSvc,
		notificationFeed, jwtKey, os.Getenv("QUEUE_TOKEN"), appOrigin,
	)

	batchSize, err := strconv.Atoi(os.Getenv("BATCH_SIZE"))
	if err != nil || batchSize <= 0 {
		batchSize = 100
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notificationWorker := workers.NewNotificationWorker(notificationRepo, notificationFeed, batchSize, config.Logger)
	go notificationWorker.Run(ctx)

	expiryWorker := workers.NewExpiryWorker(connectionRepo, config.Logger)
	if err := expiryWorker.Start(ctx); err != nil {
		config.Logger.Fatal("Error starting expiry worker:", zap.Error(err))
	}
	defer expiryWorker.Stop()

	config.Logger.Info("App is running...")
	if err := r.Run(":" + os.Getenv("APP_PORT")); err != nil {
		config.Logger.Fatal("Server failed to start:", zap.Error(err))
	}
}

func closeResources(logger *zap.Logger) {
	if err := config.RedisClient.Close(); err != nil {
		logger.Error("Error closing Redis connection:", zap.Error(err))
	}

	sqlDB, err := config.DB.DB()
	if err != nil {
		logger.Error("Error getting raw DB:", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("Error closing database connection:", zap.Error(err))
	}
}
