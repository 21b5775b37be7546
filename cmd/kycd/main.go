package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	jwttoken "kycgate/internal/jwt_token"
	"kycgate/internal/platform/config"
	"kycgate/internal/platform/httpserver"
	"kycgate/internal/platform/logger"
	"kycgate/internal/platform/postgres"
	"kycgate/internal/scheduler"
)

var Version = "dev"

// main only assembles the command tree. Each command loads configuration,
// wires the app and owns its own lifecycle.
func main() {
	rootCmd := &cobra.Command{
		Use:           "kycd",
		Short:         "KYC onboarding gateway: enrollment API, lifecycle jobs and whitelist buffer",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (config.Config, *slog.Logger, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	slog.SetDefault(log)
	return cfg, log, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func serveCmd() *cobra.Command {
	var withBatch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the enrollment and callback API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()

			a, err := buildApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			if withBatch {
				sched, err := newScheduler(a)
				if err != nil {
					return err
				}
				go sched.Start(ctx)
			}

			srv := httpserver.New(cfg.Server.Addr, newRouter(a))
			errCh := make(chan error, 1)
			go func() {
				log.Info("starting kycgate", "addr", cfg.Server.Addr, "version", Version)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server error: %w", err)
				}
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}
			log.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().BoolVar(&withBatch, "with-batch", false, "also run the scheduled jobs in this process")
	return cmd
}

func batchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch",
		Short: "Run the lifecycle and whitelist jobs on their schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()

			a, err := buildApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			sched, err := newScheduler(a)
			if err != nil {
				return err
			}
			sched.Start(ctx)
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [job]",
		Short: "Run one job once and exit",
		Long: `Run one job once and exit. The exit status is non-zero when the job fails.

Examples:
  kycd run process_applicants
  kycd run flush_whitelist`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()

			a, err := buildApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			sched, err := newScheduler(a)
			if err != nil {
				return err
			}
			if !slices.Contains(sched.Jobs(), args[0]) {
				return fmt.Errorf("unknown job %q, expected one of: %s", args[0], strings.Join(sched.Jobs(), ", "))
			}
			return sched.RunOnce(ctx, args[0])
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if cfg.Postgres.DSN == "" {
				return errors.New("DATABASE_URL is required to migrate")
			}
			ctx, stop := signalContext()
			defer stop()

			db, err := postgres.Open(ctx, cfg.Postgres)
			if err != nil {
				return fmt.Errorf("open postgres: %w", err)
			}
			defer db.Close()

			if err := postgres.Migrate(ctx, db); err != nil {
				return err
			}
			log.Info("migrations applied")
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token [user-uuid]",
		Short: "Mint a bearer token for local testing of the enrollment route",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			token, err := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer).
				GenerateAccessToken(args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}

func newScheduler(a *app) (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.cfg.Lifecycle.JobTimeout,
		scheduler.WithLogger(a.logger),
		scheduler.WithMetrics(a.metrics),
	)
	if err := registerJobs(sched, jobTable(a.kyc, a.whitelist, a.cfg.Schedule)); err != nil {
		return nil, err
	}
	return sched, nil
}
