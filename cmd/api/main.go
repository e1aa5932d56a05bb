package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/phr/backend/internal/adapters/cache"
	"github.com/zatekoja/phr/backend/internal/adapters/database"
	"github.com/zatekoja/phr/backend/internal/adapters/events"
	"github.com/zatekoja/phr/backend/internal/adapters/providers/hmis"
	"github.com/zatekoja/phr/backend/internal/adapters/storage"
	"github.com/zatekoja/phr/backend/internal/api/handlers"
	"github.com/zatekoja/phr/backend/internal/api/middleware"
	"github.com/zatekoja/phr/backend/internal/api/routes"
	"github.com/zatekoja/phr/backend/internal/application/analysis"
	"github.com/zatekoja/phr/backend/internal/application/services"
	"github.com/zatekoja/phr/backend/internal/domain/providers"
	"github.com/zatekoja/phr/backend/internal/infrastructure/clients/gemini"
	"github.com/zatekoja/phr/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/phr/backend/internal/infrastructure/clients/redis"
	s3client "github.com/zatekoja/phr/backend/internal/infrastructure/clients/s3"
	"github.com/zatekoja/phr/backend/internal/infrastructure/notifications"
	"github.com/zatekoja/phr/backend/internal/infrastructure/observability"
	"github.com/zatekoja/phr/backend/pkg/config"
	"github.com/zatekoja/phr/backend/pkg/retry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized successfully")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized successfully")

	// Redis backs the cache and the event bus; both fall back when it is down
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize Redis client, using in-memory cache")
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Info().Msg("Redis client initialized successfully")
		}
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	} else {
		cacheProvider = cache.NewMemoryAdapter(5*time.Minute, 10*time.Minute)
	}

	var eventBus providers.EventBus
	switch {
	case len(cfg.Events.KafkaBrokers) > 0:
		eventBus = events.NewKafkaEventBus(cfg.Events)
		log.Info().Strs("brokers", cfg.Events.KafkaBrokers).Msg("Kafka event bus initialized")
	case redisClient != nil:
		eventBus = events.NewRedisEventBus(redisClient.Client())
		log.Info().Msg("Redis event bus initialized")
	default:
		log.Warn().Msg("Event bus disabled, notifications will not be streamed")
	}
	if eventBus != nil {
		defer eventBus.Close()
	}

	documentStore, err := newDocumentStore(ctx, &cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize document storage")
	}

	// AI orchestration. Without a key every analysis degrades to its fallback.
	var model providers.GenerativeModel
	if cfg.AI.Available() {
		geminiClient, err := gemini.NewClient(&cfg.AI)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			model = geminiClient
		}
	} else {
		log.Warn().Msg("GEMINI_API_KEY is not set; AI analysis disabled")
	}

	logSink := analysis.NewAsyncLogSink(observability.ComponentLogger("ai"), 512)
	defer logSink.Close()

	invoker := analysis.NewInvoker(model, retry.Config{
		MaxAttempts:   cfg.AI.MaxAttempts,
		InitialDelay:  cfg.AI.BaseDelay,
		BackoffFactor: cfg.AI.BackoffFactor,
	}, analysis.NewMetricsSink(metrics, logSink), analysis.Limits{
		MaxUploadBytes: cfg.AI.MaxUploadBytes,
		Timeout:        cfg.AI.Timeout,
	})
	analyzer := analysis.NewAnalyzer(invoker)

	hmisProvider := hmis.NewHospitalSystemProvider(&cfg.HMIS, cacheProvider)

	var otpSender services.OTPSender = notifications.LogSender{}
	if cfg.WhatsApp.Enabled() {
		sender, err := notifications.NewWhatsAppCloudSender(cfg.WhatsApp)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize WhatsApp sender, OTPs will only be logged")
		} else {
			otpSender = sender
		}
	}

	clock := services.Clock(time.Now)

	tokens, err := services.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTTTL, clock)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize token issuer")
	}

	// Initialize adapters
	userRepo := database.NewUserAdapter(pgClient)
	doctorRepo := database.NewDoctorAdapter(pgClient)
	appointmentRepo := database.NewAppointmentAdapter(pgClient)
	assessmentRepo := database.NewAssessmentAdapter(pgClient)
	documentRepo := database.NewDocumentAdapter(pgClient)
	medicineRepo := database.NewMedicineAdapter(pgClient)
	labRepo := database.NewLabAdapter(pgClient)
	carePackageRepo := database.NewCarePackageAdapter(pgClient)
	notificationRepo := database.NewNotificationAdapter(pgClient)
	ambulanceRepo := database.NewAmbulanceAdapter(pgClient)
	chatRepo := database.NewChatAdapter(pgClient)

	// Initialize services
	notificationService := services.NewNotificationService(
		notificationRepo, medicineRepo, appointmentRepo, eventBus, cfg.Notifications.RetentionDays, clock,
	)
	authService := services.NewAuthService(userRepo, cacheProvider, otpSender, tokens, cfg.Auth.OTPTTL, clock)
	profileService := services.NewProfileService(userRepo, hmisProvider, clock)
	doctorService := services.NewDoctorService(doctorRepo, appointmentRepo, hmisProvider, cfg.HMIS.Timeout)
	appointmentService := services.NewAppointmentService(
		appointmentRepo, doctorRepo, userRepo, hmisProvider, notificationService, clock,
	)
	assessmentService := services.NewAssessmentService(assessmentRepo, documentStore, analyzer, clock)
	recordService := services.NewRecordService(documentRepo, userRepo, documentStore, analyzer, notificationService, clock)
	medicineService := services.NewMedicineService(medicineRepo, documentStore, analyzer, notificationService, clock)
	labService := services.NewLabService(labRepo, notificationService, clock)
	carePackageService := services.NewCarePackageService(carePackageRepo, notificationService, clock)
	insightsService := services.NewInsightsService(userRepo, documentRepo, assessmentRepo, analyzer, clock)
	ambulanceService := services.NewAmbulanceService(ambulanceRepo, notificationService, clock)
	peerSupportService := services.NewPeerSupportService(chatRepo, clock)

	scheduler := services.NewReminderScheduler(notificationService, cfg.Notifications.ReminderInterval, clock)
	go scheduler.Start(ctx)

	// Initialize handlers
	maxUpload := cfg.Server.MaxUploadBytes
	h := routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Profile:      handlers.NewProfileHandler(profileService),
		Doctor:       handlers.NewDoctorHandler(doctorService),
		Appointment:  handlers.NewAppointmentHandler(appointmentService),
		Assessment:   handlers.NewAssessmentHandler(assessmentService, maxUpload),
		Record:       handlers.NewRecordHandler(recordService, maxUpload),
		Medicine:     handlers.NewMedicineHandler(medicineService, maxUpload),
		Care:         handlers.NewCareHandler(labService, carePackageService, insightsService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Support:      handlers.NewSupportHandler(ambulanceService, peerSupportService),
		SSE:          handlers.NewSSEHandler(eventBus),
	}

	cacheMiddleware := middleware.NewCacheMiddleware(cacheProvider, metrics, nil)

	router := routes.NewRouter(h, authService, cfg.HMIS.APIKey, cacheMiddleware, cfg.Server.AllowedOrigins, metrics)
	handler := router.SetupRoutes()

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// newDocumentStore selects S3 or the local filesystem for uploaded files
func newDocumentStore(ctx context.Context, cfg *config.StorageConfig) (providers.DocumentStore, error) {
	if cfg.Provider == "s3" {
		client, err := s3client.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Info().Str("bucket", cfg.S3Bucket).Msg("Using S3 document storage")
		return storage.NewS3Store(client, cfg.S3Bucket, cfg.S3PathPrefix), nil
	}

	store, err := storage.NewLocalStore(cfg.LocalDir)
	if err != nil {
		return nil, err
	}
	log.Info().Str("dir", cfg.LocalDir).Msg("Using local document storage")
	return store, nil
}
