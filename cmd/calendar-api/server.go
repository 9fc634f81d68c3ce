package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/noah-isme/ego-calendar-api/api/swagger"
	"github.com/noah-isme/ego-calendar-api/internal/handler"
	"github.com/noah-isme/ego-calendar-api/internal/middleware"
	"github.com/noah-isme/ego-calendar-api/internal/repository"
	"github.com/noah-isme/ego-calendar-api/internal/service"
	"github.com/noah-isme/ego-calendar-api/pkg/cache"
	"github.com/noah-isme/ego-calendar-api/pkg/config"
	"github.com/noah-isme/ego-calendar-api/pkg/database"
	"github.com/noah-isme/ego-calendar-api/pkg/database/migrations"
	"github.com/noah-isme/ego-calendar-api/pkg/geo"
	"github.com/noah-isme/ego-calendar-api/pkg/llm"
	"github.com/noah-isme/ego-calendar-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/ego-calendar-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/ego-calendar-api/pkg/middleware/requestid"
	"github.com/noah-isme/ego-calendar-api/pkg/notify"
	"github.com/noah-isme/ego-calendar-api/pkg/storage"
	"github.com/noah-isme/ego-calendar-api/pkg/timeutil"
	"github.com/noah-isme/ego-calendar-api/pkg/tracing"
)

const shutdownTimeout = 15 * time.Second

func runMigrations(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	return migrate(ctx, db, logr)
}

func migrate(ctx context.Context, db *sqlx.DB, logr *zap.Logger) error {
	applied, err := migrations.Run(ctx, db, logr)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logr.Info("migrations applied", zap.Int("count", applied))
	return nil
}

func serve(parent context.Context, cfg *config.Config, logr *zap.Logger, runMigrate bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logr.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if runMigrate {
		if err := migrate(ctx, db, logr); err != nil {
			return err
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, using in-process cache only", zap.Error(err))
	}

	metrics := service.NewMetricsService()
	var cacheRepo service.CacheRepository
	if redisClient != nil {
		defer redisClient.Close()
		cacheRepo = repository.NewCacheRepository(redisClient, "ego-calendar")
	}
	cacheSvc := service.NewCacheService(cacheRepo, cfg.Geo.LocalCacheSize, metrics, cfg.Geo.CacheTTL, logr)

	validate := validator.New()
	loc := timeutil.ResolveLocation(cfg.Calendar.DefaultTimezone)

	users := repository.NewUserRepository(db)
	events := repository.NewEventRepository(db)
	chats := repository.NewChatRepository(db)
	profiles := repository.NewProfileRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	reminders := repository.NewReminderRepository(db)
	interactions := repository.NewInteractionRepository(db)

	llmClient := llm.NewClient(llm.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
		Observer:    metrics.ObserveUpstream,
	})
	geoClient := geo.NewClient(geo.Config{
		NominatimURL: cfg.Geo.NominatimURL,
		OpenMeteoURL: cfg.Geo.OpenMeteoURL,
		OverpassURL:  cfg.Geo.OverpassURL,
		UserAgent:    cfg.Geo.UserAgent,
		Timeout:      cfg.Geo.Timeout,
		Observer:     metrics.ObserveUpstream,
	})

	authSvc := service.NewAuthService(users, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.ProjectName,
	})
	var googleSvc *service.GoogleAuthService
	if cfg.Google.Enabled() {
		googleSvc = service.NewGoogleAuthService(service.GoogleConfig{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
		}, users, authSvc, logr)
	}
	userSvc := service.NewUserService(users, validate, logr)

	geoSvc := service.NewGeoService(geoClient, cacheSvc, cfg.Geo.CacheTTL, loc, logr)
	eventSvc := service.NewEventService(events, validate, logr)
	compressor := service.NewHistoryCompressor(llmClient, cfg.History.CompressThreshold, cfg.History.TokenBudget, metrics, logr)
	chatSvc := service.NewChatService(llmClient, compressor, chats, events, loc, validate, logr)
	resolver := service.NewIntentResolver(events, validate, logr, metrics, service.IntentResolverConfig{
		Location:    loc,
		DefaultType: cfg.Calendar.DefaultType,
	})
	interpretSvc := service.NewInterpretService(resolver, chatSvc, geoSvc, profiles, interactions, validate, logr)
	rescheduleSvc := service.NewRescheduleService(llmClient, chatSvc, loc, logr)
	recommendSvc := service.NewRecommendationService(llmClient, geoSvc, profiles, service.RecommendationConfig{
		Radii:      cfg.Recommend.Radii,
		Categories: cfg.Recommend.Categories,
	}, logr)
	profileSvc := service.NewProfileService(profiles, geoSvc, validate, logr)
	settingsSvc := service.NewSettingsService(settingsRepo, cfg.Calendar.DefaultTimezone, validate, logr)
	reminderSvc := service.NewReminderService(reminders, events, validate, logr)
	interactionSvc := service.NewInteractionService(interactions, logr)
	exportSvc := service.NewExportService(events, settingsSvc, storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		service.ExportConfig{APIPrefix: cfg.APIPrefix}, logr)

	if cfg.Reminders.Enabled {
		dispatcher := service.NewReminderDispatcher(reminders, notify.NewEmailSender(cfg.Reminders.ResendAPIKey, cfg.Reminders.EmailFrom), metrics,
			service.ReminderDispatcherConfig{
				PollInterval: cfg.Reminders.PollInterval,
				Workers:      cfg.Reminders.Workers,
				Retries:      cfg.Reminders.Retries,
				Location:     loc,
			}, logr)
		dispatcher.Start(ctx)
		defer dispatcher.Stop()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(reqidmiddleware.Middleware())
	engine.Use(middleware.Tracing())
	engine.Use(logger.GinMiddleware(logr))
	engine.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	engine.Use(middleware.Metrics(metrics))
	engine.Use(middleware.WithResponseMeta())

	var google handler.GoogleAuth
	if googleSvc != nil {
		google = googleSvc
	}
	router := &handler.Router{
		Auth:            handler.NewAuthHandler(authSvc, google),
		Users:           handler.NewUserHandler(userSvc),
		Events:          handler.NewEventHandler(eventSvc),
		Interpret:       handler.NewInterpretHandler(interpretSvc),
		Chat:            handler.NewChatHandler(chatSvc, rescheduleSvc),
		Geo:             handler.NewGeoHandler(geoSvc),
		Recommendations: handler.NewRecommendationHandler(recommendSvc),
		Profile:         handler.NewProfileHandler(profileSvc, settingsSvc),
		Reminders:       handler.NewReminderHandler(reminderSvc),
		Interactions:    handler.NewInteractionHandler(interactionSvc, loc),
		Export:          handler.NewExportHandler(exportSvc),
		Metrics:         handler.NewMetricsHandler(metrics, db),
		Authenticate:    middleware.JWT(authSvc),
		Docs:            cfg.Env != config.EnvProduction,
	}
	router.Register(engine, cfg.APIPrefix)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
