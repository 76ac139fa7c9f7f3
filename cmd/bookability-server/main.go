package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/moonlitpsych/bookability/internal/config"
	"github.com/moonlitpsych/bookability/internal/domain/network"
	"github.com/moonlitpsych/bookability/internal/domain/payer"
	"github.com/moonlitpsych/bookability/internal/domain/provider"
	"github.com/moonlitpsych/bookability/internal/platform/auth"
	"github.com/moonlitpsych/bookability/internal/platform/db"
	"github.com/moonlitpsych/bookability/internal/platform/middleware"
	"github.com/moonlitpsych/bookability/internal/platform/reporting"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bookability-server",
		Short: "Provider-payer bookability API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(auditCmd())
	rootCmd.AddCommand(exportCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the bookability API server",
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

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
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
	statusCmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
	cmd.AddCommand(statusCmd)

	return cmd
}

// auditCmd runs the guardrail audit from the command line and prints the
// report as JSON. Exit code 1 when anomalies are present, so the audit can
// gate a deploy or run under cron.
func auditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Run the data-integrity guardrail audit",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

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

			svc := network.NewService(network.NewRepoPG(pool), network.NewSnapshotLoaderPG(pool), logger)
			report, err := svc.Audit(ctx)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}

			if len(report.Anomalies) > 0 {
				return fmt.Errorf("%d anomalies found", len(report.Anomalies))
			}
			return nil
		},
	}
}

// exportCmd writes the resolved coverage list as CSV to stdout or a file.
func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export resolved coverage as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			asOf, _ := cmd.Flags().GetString("as-of")
			outPath, _ := cmd.Flags().GetString("out")

			logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

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

			var eval *network.Evaluation
			if asOf != "" {
				d, err := time.Parse("2006-01-02", asOf)
				if err != nil {
					return fmt.Errorf("invalid --as-of date %q, expected YYYY-MM-DD", asOf)
				}
				eval = &network.Evaluation{Date: d, Mode: network.ModeAsOfServiceDate}
			}

			svc := network.NewService(network.NewRepoPG(pool), network.NewSnapshotLoaderPG(pool), logger)
			res, err := svc.Bookable(ctx, network.Scope{}, eval)
			if err != nil {
				return err
			}

			out := os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			return reporting.WriteCoverageCSV(out, res)
		},
	}
	cmd.Flags().String("as-of", "", "Service date (YYYY-MM-DD); defaults to today")
	cmd.Flags().String("out", "", "Output file path; defaults to stdout")
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
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	switch cfg.ResolvedAuthMode() {
	case "development":
		e.Use(auth.DevAuthMiddleware())
	default:
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			JWKSURL:    cfg.AuthJWKSURL,
			SigningKey: []byte(cfg.AuthSigningKey),
		}))
	}

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

	// Health check
	e.GET("/health", db.HealthHandler(pool))

	// -- Register domain handlers --

	// Provider domain
	provRepo := provider.NewRepoPG(pool)
	provSvc := provider.NewService(provRepo)
	provider.NewHandler(provSvc).RegisterRoutes(apiV1)

	// Payer domain
	payerRepo := payer.NewRepoPG(pool)
	payerSvc := payer.NewService(payerRepo)
	payer.NewHandler(payerSvc).RegisterRoutes(apiV1)

	// Network domain: relationships, bookability resolution, guardrail audit
	relRepo := network.NewRepoPG(pool)
	snapLoader := network.NewSnapshotLoaderPG(pool)
	netSvc := network.NewService(relRepo, snapLoader, logger)
	network.NewHandler(netSvc).RegisterRoutes(apiV1)

	// Reporting: SQL measures and CSV coverage export
	reporting.NewHandler(pool, netSvc).RegisterRoutes(apiV1)

	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server stopped")
	}
	return nil
}
