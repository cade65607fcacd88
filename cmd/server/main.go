package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"rpsarena/internal/config"
	"rpsarena/internal/database"
	"rpsarena/internal/game"
	"rpsarena/internal/handlers"
	"rpsarena/internal/llm"
	"rpsarena/internal/lock"
	"rpsarena/internal/repository"
	"rpsarena/internal/security"
	"rpsarena/internal/service"
)

func main() {
	hashPassword := flag.String("hash-password", "", "Print a bcrypt hash for ADMIN_PASSWORD and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := security.HashPassword(*hashPassword)
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		fmt.Println(hash)
		return
	}

	// Load configuration
	cfg := config.Load()
	cfg.ConfigureLogging()

	ctx := context.Background()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Infof("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Info("Migrations completed successfully")

	// Seed bad words filter
	if cfg.BadWordsURL != "" {
		if err := db.SeedBadWords(ctx, cfg.BadWordsURL); err != nil {
			log.Warnf("Failed to seed bad words filter: %v", err)
		}
	}

	// Shared state lives in Redis when configured, otherwise in process
	var (
		locker  lock.Locker           = lock.NewMemoryLocker()
		lockout security.LockoutStore = security.NewMemoryLockout(cfg.LoginMaxAttempts, cfg.LoginLockout)
	)
	if cfg.RedisURL != "" {
		client, err := lock.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer client.Close()

		locker = lock.NewRedisLocker(client, lock.TTLFor(cfg.LLMTimeout))
		lockout = security.NewRedisLockout(client, cfg.LoginMaxAttempts, cfg.LoginLockout)
		log.Info("Using Redis for session locks and login lockout")
	}

	secret := cfg.AdminSessionSecret
	if secret == "" {
		secret = randomSecret()
		log.Warn("ADMIN_SESSION_SECRET is not set; admin sessions will not survive a restart")
	}
	if cfg.AdminPassword == "" {
		log.Warn("ADMIN_PASSWORD is not set; admin login is disabled")
	}

	// Initialize repositories
	opponentRepo := repository.NewOpponentRepository(db)
	gameRepo := repository.NewGameRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	// Initialize services
	engine := game.NewEngine(nil)
	commentator := game.NewCommentator(nil)
	adapter := llm.NewAdapter(llm.NewOpenAIGateway, engine, commentator, cfg.LLMTimeout)

	gameService := service.NewGameService(gameRepo, opponentRepo, adapter, engine, commentator, locker, cfg.DefaultRounds)
	gameService.SetNameFilter(db)
	opponentService := service.NewOpponentService(opponentRepo, adapter)
	statsService := service.NewStatsService(statsRepo)
	backupService := service.NewBackupService(db)
	authService := service.NewAuthService(cfg.AdminUsername, cfg.AdminPassword,
		security.NewTokenIssuer(secret, cfg.SessionDuration), lockout)

	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	loginLimiter := security.NewRateLimiter(10, time.Minute)
	clientIP, err := security.NewClientIPResolver(cfg.TrustedProxies)
	if err != nil {
		log.Fatalf("Invalid TRUSTED_PROXIES: %v", err)
	}

	scheduler, err := newScheduler(ctx, cfg, statsService, emailService, backupService, loginLimiter)
	if err != nil {
		log.Fatalf("Failed to set up scheduler: %v", err)
	}
	scheduler.Start()

	// Initialize handlers
	router := &handlers.Router{
		Middleware: handlers.NewMiddleware(authService, loginLimiter, clientIP),
		Game:       handlers.NewGameHandler(gameService),
		Stats:      handlers.NewStatsHandler(statsService),
		Opponents:  handlers.NewOpponentHandler(opponentService),
		Auth:       handlers.NewAuthHandler(authService, clientIP),
		Avatars:    handlers.NewAvatarHandler(cfg.AvatarsPath),
		Health:     handlers.NewHealthHandler(db),
		Backup:     handlers.NewBackupHandler(backupService),
	}

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.LLMTimeout*2 + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Infof("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown failed: %v", err)
	}
	if err := scheduler.Shutdown(); err != nil {
		log.Errorf("Scheduler shutdown failed: %v", err)
	}
}

func newScheduler(ctx context.Context, cfg *config.Config, stats *service.StatsService, email *service.EmailService,
	backups *service.BackupService, limiters ...*security.RateLimiter) (*service.Scheduler, error) {
	scheduler, err := service.NewScheduler()
	if err != nil {
		return nil, err
	}

	if err := scheduler.AddRateLimiterSweep(5*time.Minute, limiters...); err != nil {
		return nil, err
	}

	if email.IsEnabled() && cfg.AdminEmail != "" {
		if err := scheduler.AddStatsDigest(cfg.DigestCron, stats, email, cfg.AdminEmail); err != nil {
			return nil, err
		}
	}

	if cfg.BackupS3Bucket != "" {
		uploader, err := service.NewBackupUploader(ctx, cfg.AWSRegion, cfg.BackupS3Bucket, cfg.BackupS3Prefix)
		if err != nil {
			return nil, err
		}
		if err := scheduler.AddBackup(cfg.BackupCron, backups, uploader); err != nil {
			return nil, err
		}
	}

	return scheduler, nil
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("Failed to generate session secret: %v", err)
	}
	return hex.EncodeToString(b)
}
