package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/BiscuitNick/treatment-plans-sub000/internal/config"
	"github.com/BiscuitNick/treatment-plans-sub000/internal/domain/goalhistory"
	"github.com/BiscuitNick/treatment-plans-sub000/internal/domain/session"
	"github.com/BiscuitNick/treatment-plans-sub000/internal/domain/suggestion"
	"github.com/BiscuitNick/treatment-plans-sub000/internal/domain/treatmentplan"
	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/auth"
	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/db"
	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/middleware"
	"github.com/BiscuitNick/treatment-plans-sub000/internal/platform/plandoc"
)

// PlanContentAdapter adapts the treatment-plan repository to the
// goalhistory.PlanSource interface, avoiding a circular import between the
// goalhistory and treatmentplan packages.
type PlanContentAdapter struct {
	repo treatmentplan.Repository
}

func NewPlanContentAdapter(repo treatmentplan.Repository) *PlanContentAdapter {
	return &PlanContentAdapter{repo: repo}
}

// PlanContent implements goalhistory.PlanSource.
func (a *PlanContentAdapter) PlanContent(ctx context.Context, planID uuid.UUID) ([]byte, error) {
	plan, err := a.repo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	return plan.CurrentContent, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "revision-server",
		Short: "Treatment plan revision API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the revision API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s)\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "Version", "Name", "Status", "Applied At")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format(time.RFC3339)
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.RequestBodyLimit))
	e.Use(middleware.RequestTimeout(time.Duration(cfg.RequestTimeoutSecs) * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	switch cfg.ResolvedAuthMode() {
	case "development":
		logger.Warn().Msg("auth disabled, using development identity")
		e.Use(auth.DevAuthMiddleware())
	case "hmac":
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			SigningKey: []byte(cfg.JWTSigningKey),
		}))
	default:
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
			JWKSURL:  cfg.AuthJWKSURL,
		}))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/ready", db.HealthHandler(pool))

	// Repositories
	planRepo := treatmentplan.NewRepoPG(pool)
	suggestionRepo := suggestion.NewRepoPG(pool)
	historyRepo := goalhistory.NewRepoPG(pool)
	sessionRepo := session.NewRepoPG(pool)

	// Services
	txRunner := db.NewRunner(pool)
	reviewInterval := time.Duration(cfg.ReviewIntervalDays) * 24 * time.Hour

	planSvc := treatmentplan.NewService(planRepo, historyRepo, sessionRepo, txRunner, logger)
	suggestionSvc := suggestion.NewService(suggestionRepo, planRepo, historyRepo,
		sessionRepo, txRunner, plandoc.NewUUIDGenerator(), reviewInterval, logger)
	historySvc := goalhistory.NewService(historyRepo, NewPlanContentAdapter(planRepo), logger)

	// Routes
	apiV1 := e.Group("/api/v1")
	treatmentplan.NewHandler(planSvc).RegisterRoutes(apiV1)
	suggestion.NewHandler(suggestionSvc).RegisterRoutes(apiV1)
	goalhistory.NewHandler(historySvc).RegisterRoutes(apiV1)
	session.NewHandler(sessionRepo).RegisterRoutes(apiV1)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
