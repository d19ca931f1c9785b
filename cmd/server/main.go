package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"hanzidrill/internal/audio"
	"hanzidrill/internal/cache"
	"hanzidrill/internal/config"
	"hanzidrill/internal/database"
	"hanzidrill/internal/handlers"
	"hanzidrill/internal/lexicon"
	"hanzidrill/internal/models"
	"hanzidrill/internal/repository"
	"hanzidrill/internal/security"
	"hanzidrill/internal/service"

	"github.com/google/uuid"
)

// Login and registration attempts allowed per client IP
const (
	loginRate   = 10
	loginWindow = time.Minute
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// The dictionary is optional; without it words need an explicit meaning
	var lex lexicon.Lexicon
	dict, err := lexicon.LoadCEDICT(cfg.CEDICTPath)
	if err != nil {
		log.Printf("Warning: dictionary not loaded: %v", err)
	} else {
		log.Printf("Dictionary loaded: %d entries", dict.Len())
		lex = dict
	}
	romanizer := lexicon.NewRomanizer(dict)

	// Prompt audio is written under the static directory
	audioDir := filepath.Join(cfg.StaticFilesPath, "audio")
	if err := os.MkdirAll(audioDir, 0755); err != nil {
		log.Fatalf("Failed to create audio directory: %v", err)
	}
	ttsService := audio.NewTTSService(audioDir, "/static/audio")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	wordRepo := repository.NewWordRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	// Session snapshots go to Redis when configured, otherwise to SQL
	var sessions service.SessionStore = reviewRepo
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer client.Close()
		sessions = cache.NewRedisSessionStore(client, cache.DefaultSessionTTL)
		log.Println("Review session snapshots stored in Redis")
	}

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		log.Println("Warning: JWT_SECRET not set, tokens will not survive a restart")
		jwtSecret = uuid.NewString()
	}
	tokens, err := security.NewTokenIssuer(jwtSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("Failed to create token issuer: %v", err)
	}

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, tokens)
	settingsService := service.NewSettingsService(settingsRepo, defaultQuizConfig(cfg))
	wordService := service.NewWordService(wordRepo, lex, romanizer)
	backupService := service.NewBackupService(wordRepo)
	reviewService := service.NewReviewService(service.ReviewOptions{
		Words:     wordRepo,
		Configs:   settingsService,
		History:   reviewRepo,
		Sessions:  sessions,
		Mailer:    emailService,
		Users:     userRepo,
		Speaker:   ttsService,
		Romanizer: romanizer,
	})

	loginLimiter := security.NewRateLimiter(loginRate, loginWindow)
	defer loginLimiter.Stop()

	// Setup routes
	mux := http.NewServeMux()
	handlers.Routes{
		Middleware:  handlers.NewMiddleware(authService),
		LoginLimit:  loginLimiter,
		Auth:        handlers.NewAuthHandler(authService),
		Words:       handlers.NewWordHandler(wordService, backupService),
		Settings:    handlers.NewSettingsHandler(settingsService),
		Review:      handlers.NewReviewHandler(reviewService, ttsService),
		StaticFiles: cfg.StaticFilesPath,
	}.Register(mux)

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	// Running sessions keep their snapshots and resume on the next start
	reviewService.Close()
}

// defaultQuizConfig applies the configured defaults, falling back to the
// built-in ones when they are out of range
func defaultQuizConfig(cfg *config.Config) models.QuizConfig {
	defaults := models.DefaultQuizConfig()
	defaults.CharSet = models.CharSet(cfg.DefaultCharSet)
	defaults.NumWords = cfg.DefaultNumWords
	if err := defaults.Validate(); err != nil {
		log.Printf("Warning: invalid quiz defaults (%v), using built-in defaults", err)
		return models.DefaultQuizConfig()
	}
	return defaults
}
