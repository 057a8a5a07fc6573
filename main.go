package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Niethin69/aadhvikha-learn-empower-succeed/api"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/clients/resend"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/config"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/inits"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/notify"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/ratelimit"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/routines"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/services"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/sheetsync"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/storage"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/validators"
)

func main() {
	envErr := godotenv.Load(".env")

	cfg := config.LoadConfig()
	inits.LoggerInit(cfg.LogLevel, cfg.GinMode != gin.ReleaseMode)
	gin.SetMode(cfg.GinMode)

	if envErr != nil {
		log.Warn().Msg("No .env file loaded, using the process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	submissions, db, err := inits.DBInit(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database setup failed")
	}
	defer db.Close()

	var windows ratelimit.Store
	if cfg.RedisURL != "" {
		redisStore, err := ratelimit.NewRedisStoreFromURL(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Redis setup failed")
		}
		defer redisStore.Close()
		windows = redisStore
	} else {
		memStore, err := inits.LimiterInit()
		if err != nil {
			log.Fatal().Err(err).Msg("Rate limit store setup failed")
		}
		go routines.StartCleanupRoutine(ctx, memStore, time.Minute)
		windows = memStore
	}

	store, err := storage.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("Document storage setup failed")
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	notifier := notify.New(resend.NewClient(cfg.ResendAPIKey), cfg.NotificationFrom, cfg.NotificationRecipients)
	syncer := sheetsync.New(cfg.GoogleSheetsCredentials, cfg.GoogleSheetsID)
	if !syncer.Configured() {
		log.Warn().Msg("Google Sheets sync disabled, GOOGLE_SHEETS_CREDENTIALS or GOOGLE_SHEETS_ID missing")
	}

	submissionService := services.NewSubmissionService(services.Deps{
		Repository:    submissions,
		Store:         store,
		Notifier:      notifier,
		Syncer:        syncer,
		Captcha:       validators.NewTurnstileVerifier(cfg.TurnstileSecretKey, cfg.TestToken, gin.Mode() == gin.ReleaseMode),
		FormLimiter:   ratelimit.FormSubmissions(windows),
		UploadLimiter: ratelimit.FileUploads(windows),
	})

	routerCfg := api.RouterConfig{
		MaxRequestsPerMinute: cfg.MaxRequestsPerMinute,
		MaxUploadBytes:       cfg.MaxUploadBytes,
		AllowedHosts:         cfg.AllowedHosts,
		FunctionLimiter:      ratelimit.New("functions", windows, 30, time.Minute),
	}
	if fileStore, ok := store.(*storage.FileStore); ok {
		routerCfg.FilesDir = fileStore.Dir
	}
	router := api.NewRouter(api.NewHandlers(submissionService, notifier, syncer), routerCfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	submissionService.Wait()
}
