package main

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"antigravity/cache"
	"antigravity/crud"
	"antigravity/http"
	"antigravity/storage"
)

// main is the app's entry point. Every component takes its collaborators
// explicitly; there is no ambient registry.
func main() {
	// Load a .env file if present, then the config file / environment.
	_ = godotenv.Load()
	config, err := LoadConfig()
	must(err)

	logger, err := newLogger(config.IsProd())
	must(err)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if config.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.SentryDSN,
			Environment: config.Env,
		})
		must(err)
		defer sentry.Flush(2 * time.Second)
	}

	// Open a database connection and execute migrations.
	db := NewDB(config.Database.ConnectionInfo())
	must(Open(db, config.IsProd()))
	defer Close(db)
	must(AutoMigrate(db))

	// The follower-count cache runs without redis when no addr is set.
	var rdb *redis.Client
	if config.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
	}

	// Start the crud services. Notification comes first so the
	// engagement services can fan out to it.
	services, err := crud.NewServices(
		db.Gorm,
		logger,
		crud.WithNotification(),
		crud.WithUser(config.Pepper),
		crud.WithPost(),
		crud.WithFollow(),
		crud.WithLike(),
		crud.WithRetweet(),
		crud.WithComment(),
	)
	must(err)

	images := storage.NewImageService(config.UploadDir, config.BaseURL)
	stats := cache.NewFollowStats(services.Follow, rdb, 5*time.Minute, logger)

	// Set up a webserver and serve the app.
	server := http.NewServer(
		services,
		images,
		stats,
		logger,
		config.JWTSecret,
		time.Duration(config.JWTTTLMinutes)*time.Minute,
		config.UploadDir,
	)
	server.Run(config.Port)
}

// newLogger builds the zap logger for the current environment.
func newLogger(isProd bool) (*zap.Logger, error) {
	if isProd {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// must is a little helper for shortening the panic instruction.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
