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

	"github.com/concierge/concierge/internal/config"
	"github.com/concierge/concierge/internal/domain/appointments"
	"github.com/concierge/concierge/internal/domain/audit"
	"github.com/concierge/concierge/internal/domain/identity"
	"github.com/concierge/concierge/internal/domain/leads"
	"github.com/concierge/concierge/internal/domain/messaging"
	"github.com/concierge/concierge/internal/domain/partners"
	"github.com/concierge/concierge/internal/domain/payouts"
	"github.com/concierge/concierge/internal/domain/pharmacy"
	"github.com/concierge/concierge/internal/domain/rewards"
	"github.com/concierge/concierge/internal/domain/triage"
	"github.com/concierge/concierge/internal/platform/auth"
	"github.com/concierge/concierge/internal/platform/db"
	"github.com/concierge/concierge/internal/platform/middleware"
	"github.com/concierge/concierge/internal/platform/notification"
)

// payoutGateAdapter adapts the partners service to the payouts gate,
// avoiding a direct import between the two domains.
type payoutGateAdapter struct {
	partners *partners.Service
}

func (a *payoutGateAdapter) CheckPayable(ctx context.Context, partnerID uuid.UUID) error {
	_, err := a.partners.RequireActive(ctx, partnerID)
	return err
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "concierge-server",
		Short: "Healthcare concierge back-office API server",
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
		Short: "Start the API server",
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

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
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

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	inTx := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.WithTx(ctx, pool, fn)
	}

	// Escalation alerts go to the structured log until a real queue
	// integration is configured.
	notifier := notification.NewDispatcher(notification.LogSender{Logger: logger}, logger)

	// Domain services
	auditSvc := audit.NewService(audit.NewRepoPG(pool), logger)

	rewardsSvc := rewards.NewService(
		rewards.NewAccountRepoPG(pool),
		rewards.NewTransactionRepoPG(pool),
		rewards.NewTierRepoPG(pool),
		inTx,
	)

	triageSvc := triage.NewService(
		triage.NewSubmissionRepoPG(pool),
		triage.NewNoteRepoPG(pool),
		triage.NewReplyRepoPG(pool),
		triage.NewFileRepoPG(pool),
		triage.NewFeedbackRepoPG(pool),
		triage.NewActivityRepoPG(pool),
		notifier,
	)

	pharmacySvc := pharmacy.NewService(
		pharmacy.NewMedicationRepoPG(pool),
		pharmacy.NewRefillRepoPG(pool),
		inTx,
	)

	leadsSvc := leads.NewService(leads.NewRepoPG(pool))
	partnersSvc := partners.NewService(partners.NewRepoPG(pool))
	appointmentsSvc := appointments.NewService(appointments.NewRepoPG(pool))
	messagingSvc := messaging.NewService(messaging.NewRepoPG(pool))
	identitySvc := identity.NewService(identity.NewRepoPG(pool))

	payoutsSvc := payouts.NewService(
		payouts.NewAccountRepoPG(pool),
		payouts.NewEntryRepoPG(pool),
		&payoutGateAdapter{partners: partnersSvc},
		inTx,
	)

	// Triage "schedule" decisions book callbacks through appointments.
	triageSvc.SetScheduler(appointmentsSvc)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
			JWKSURL:  cfg.AuthJWKSURL,
		}))
	}

	// Audit middleware, backed by the audit domain
	e.Use(middleware.Audit(logger, auditSvc))

	// API group
	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Domain routes
	rewards.NewHandler(rewardsSvc).RegisterRoutes(apiV1)
	triage.NewHandler(triageSvc).RegisterRoutes(apiV1)
	pharmacy.NewHandler(pharmacySvc).RegisterRoutes(apiV1)
	leads.NewHandler(leadsSvc).RegisterRoutes(apiV1)
	partners.NewHandler(partnersSvc).RegisterRoutes(apiV1)
	appointments.NewHandler(appointmentsSvc).RegisterRoutes(apiV1)
	messaging.NewHandler(messagingSvc).RegisterRoutes(apiV1)
	payouts.NewHandler(payoutsSvc).RegisterRoutes(apiV1)
	audit.NewHandler(auditSvc).RegisterRoutes(apiV1)
	identity.NewHandler(identitySvc).RegisterRoutes(apiV1)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
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
