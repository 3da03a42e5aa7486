package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fitstack/fitness-platform/internal"
	"github.com/fitstack/fitness-platform/internal/auth"
	"github.com/fitstack/fitness-platform/internal/authz"
	"github.com/fitstack/fitness-platform/internal/core/events"
	"github.com/fitstack/fitness-platform/internal/password"
	"github.com/fitstack/fitness-platform/internal/rbac"
	rbacpg "github.com/fitstack/fitness-platform/internal/rbac/postgres"
	"github.com/fitstack/fitness-platform/internal/session"
	sessionpg "github.com/fitstack/fitness-platform/internal/session/postgres"
	"github.com/fitstack/fitness-platform/internal/transport"
	"github.com/fitstack/fitness-platform/internal/transport/rest"
	"github.com/fitstack/fitness-platform/internal/user"
	userpg "github.com/fitstack/fitness-platform/internal/user/postgres"
	"github.com/fitstack/fitness-platform/internal/workout"
	workoutpg "github.com/fitstack/fitness-platform/internal/workout/postgres"
	"github.com/fitstack/fitness-platform/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config         *internal.Config
	DB             *sqlx.DB
	GormDB         *gorm.DB
	Router         *chi.Mux
	Logger         *slog.Logger
	EventBus       *events.EventBus
	Sessions       *session.Manager
	Engine         *authz.Engine
	AuthHandler    *auth.Handler
	UserHandler    *user.Handler
	WorkoutHandler *workout.Handler
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(
		deps.Router,
		deps.DB.DB,
		deps.DB,
		deps.Engine,
		deps.AuthHandler,
		deps.UserHandler,
		deps.WorkoutHandler,
		deps.Logger,
	)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		deps.Sessions.Close()
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	appLogger := logger.LoggerWrapper()
	if appLogger == nil {
		appLogger = slog.Default()
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// gorm shares the pgx connection pool instead of opening its own
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	eventBus := events.NewEventBus(appLogger)

	userRepo := userpg.NewRepository(gormDB)
	rbacRepo := rbacpg.NewRepository(gormDB)
	sessionRepo := sessionpg.NewRepository(gormDB)
	workoutRepo := workoutpg.NewRepository(gormDB)

	passwordManager := password.NewManager(config.Security.BCryptCost, config.Password)
	sessionManager := session.NewManager(sessionRepo, config.Session, config.Security.RefreshTokenExpiry, eventBus, appLogger)
	rbacService := rbac.NewService(rbacRepo, eventBus, appLogger)
	engine := authz.NewEngine(rbacService, appLogger)

	tokenGenerator := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenTTL,
		session.ParseExpiry(config.Security.RefreshTokenExpiry),
	)

	authService := auth.NewService(
		userRepo,
		passwordManager,
		sessionManager,
		tokenGenerator,
		engine,
		eventBus,
		appLogger,
	)

	userService := user.NewService(userRepo)
	workoutService := workout.NewService(workoutRepo, appLogger)

	authHandler := auth.NewHandler(authService)
	userHandler := user.NewHandler(transport.NewBaseHandler(appLogger), userService)
	workoutHandler := workout.NewHandler(workoutService)

	return &Dependencies{
		Config:         config,
		DB:             db,
		GormDB:         gormDB,
		Router:         chi.NewRouter(),
		Logger:         appLogger,
		EventBus:       eventBus,
		Sessions:       sessionManager,
		Engine:         engine,
		AuthHandler:    authHandler,
		UserHandler:    userHandler,
		WorkoutHandler: workoutHandler,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
