package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/rwalling/tasklog/api/openapi"
	"github.com/rwalling/tasklog/internal/config"
	"github.com/rwalling/tasklog/internal/database"
	"github.com/rwalling/tasklog/internal/handlers"
	"github.com/rwalling/tasklog/internal/logger"
	"github.com/rwalling/tasklog/internal/middleware"
	"github.com/rwalling/tasklog/internal/services/oidc"
	"github.com/rwalling/tasklog/internal/telemetry"
)

const serviceName = "tasklog-api"

// Set at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("oidc_provider", cfg.OIDCProvider),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), serviceName, version, cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					if err := telemetry.Shutdown(tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	if err := db.Migrate(context.Background()); err != nil {
		zapLogger.Fatal("failed_to_run_migrations", zap.Error(err))
	}

	redisLimiter, err := middleware.NewRedisRateLimiter(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	defer func() {
		if err := redisLimiter.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_redis")

	todoRepo := database.NewTodoRepository(db)
	todoRepo.SetLogger(zapLogger)
	historyRepo := database.NewHistoryRepository(db)
	transferRepo := database.NewTransferRepository(db)
	oidcConfigRepo := database.NewOIDCConfigRepository(db)
	ratelimitConfigRepo := database.NewRatelimitConfigRepository(db)

	oidcProvider := oidc.NewProvider(oidcConfigRepo)
	jwksManager := oidc.NewJWKSManager()

	todoHandler := handlers.NewTodoHandler(todoRepo, historyRepo, transferRepo, zapLogger)
	historyHandler := handlers.NewHistoryHandler(historyRepo, zapLogger)
	authHandler := handlers.NewAuthHandler(oidcProvider, cfg.OIDCProvider, zapLogger)
	healthHandler := handlers.NewHealthHandler(db, redisLimiter, zapLogger)

	rateLimitMW, err := middleware.RateLimitFromDB(redisLimiter.Client(), ratelimitConfigRepo, "5-S")
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}
	authMW := middleware.Auth(oidcProvider, jwksManager, cfg.OIDCProvider, zapLogger)

	r := mux.NewRouter()

	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Public routes
	r.HandleFunc("/healthz", healthHandler.Healthz).Methods("GET")
	r.HandleFunc("/version", handlers.Version(version, commit)).Methods("GET")

	openAPIHandler := handlers.NewOpenAPIHandler(openapi.Spec)
	openAPIHandler.RegisterRoutes(r)

	apiRouter := r.PathPrefix("/api/v1").Subrouter()

	authRouter := apiRouter.PathPrefix("/auth").Subrouter()

	loginRouter := authRouter.PathPrefix("/oidc").Subrouter()
	loginRouter.Use(rateLimitMW)
	loginRouter.HandleFunc("/login", authHandler.GetOIDCLogin).Methods("GET")

	protectedAuthRouter := authRouter.PathPrefix("").Subrouter()
	protectedAuthRouter.Use(authMW)
	protectedAuthRouter.Use(rateLimitMW)
	protectedAuthRouter.HandleFunc("/me", authHandler.GetMe).Methods("GET")

	todosRouter := apiRouter.PathPrefix("/todos").Subrouter()
	todosRouter.Use(authMW)
	todosRouter.Use(rateLimitMW)
	todoHandler.RegisterRoutes(todosRouter)

	historyRouter := apiRouter.PathPrefix("/history").Subrouter()
	historyRouter.Use(authMW)
	historyRouter.Use(rateLimitMW)
	historyHandler.RegisterRoutes(historyRouter)

	// Preflight requests short-circuit here; the CORS middleware has already
	// written the headers.
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}
