package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/turisesng/village-link-app/admin"
	"github.com/turisesng/village-link-app/announcement"
	"github.com/turisesng/village-link-app/auth"
	"github.com/turisesng/village-link-app/config"
	"github.com/turisesng/village-link-app/db"
	"github.com/turisesng/village-link-app/jobs"
	"github.com/turisesng/village-link-app/notification"
	"github.com/turisesng/village-link-app/onboarding"
	"github.com/turisesng/village-link-app/permits"
	"github.com/turisesng/village-link-app/profile"
	"github.com/turisesng/village-link-app/riders"
	"github.com/turisesng/village-link-app/storage"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("bootstrap database pool")
	}
	defer pool.Close()

	uploads, err := storage.NewLocalStore(cfg.UploadDir, cfg.UploadBase)
	if err != nil {
		logger.Fatal().Err(err).Msg("bootstrap upload store")
	}

	notifications := notification.NewRepository(pool)

	authService := auth.NewService(auth.NewRepository(pool), cfg.JWTSecret)
	profileRepo := profile.NewRepository(pool)
	jobRepo := jobs.NewRepository(pool)
	riderRepo := riders.NewRepository(pool)
	permitRepo := permits.NewRepository(pool)
	jobService := jobs.NewService(pool, jobRepo).WithNotifier(notifications)
	riderService := riders.NewService(pool, riderRepo).WithNotifier(notifications)
	permitService := permits.NewService(pool, permitRepo).WithNotifier(notifications)
	onboardingRepo := onboarding.NewRepository(pool)
	onboardingService := onboarding.NewService(pool, onboardingRepo, authService, profileRepo, uploads).
		WithNotifier(notifications)

	server := &Server{
		authService:         authService,
		profileService:      profile.NewService(profileRepo),
		jobService:          jobService,
		riderService:        riderService,
		permitService:       permitService,
		onboardingService:   onboardingService,
		announcementService: announcement.NewService(announcement.NewRepository(pool)),
		notificationService: notification.NewService(notifications),
		adminService:        admin.NewService(onboardingRepo, permitRepo, jobRepo, riderRepo),
		logger:              logger,
	}

	mux := server.routes()
	mux.Handle(cfg.UploadBase+"/", http.StripPrefix(cfg.UploadBase+"/", http.FileServer(http.Dir(cfg.UploadDir))))

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown http server")
		}
	}()

	logger.Info().Str("addr", cfg.ListenAddr).Msg("api listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("serve http")
	}
}
