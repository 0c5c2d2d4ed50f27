package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/giygas/patient-dashboard/config"
	"github.com/giygas/patient-dashboard/dashboard"
	"github.com/giygas/patient-dashboard/data"
	"github.com/giygas/patient-dashboard/fetcher"
	"github.com/giygas/patient-dashboard/handlers"
	"github.com/giygas/patient-dashboard/health"
	"github.com/giygas/patient-dashboard/logging"
	"github.com/giygas/patient-dashboard/scheduler"
	"github.com/giygas/patient-dashboard/server"
)

const pageTitle = "Patient Dashboard"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "patient-dashboard",
		Short:         "Patient dashboard rendered from the remote patient list",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, verbose)
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at info level even in test mode")

	rootCmd.AddCommand(serveCmd(&envFile, &verbose))
	rootCmd.AddCommand(renderCmd(&envFile, &verbose))

	return rootCmd
}

func serveCmd(envFile *string, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*envFile, *verbose)
		},
	}
}

func renderCmd(envFile *string, verbose *bool) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Fetch once and write the dashboard HTML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, err := bootstrap(*envFile, *verbose)
			if err != nil {
				return err
			}
			defer svc.Close()

			if out == "-" {
				return runRender(cmd.Context(), cfg, cmd.OutOrStdout())
			}
			return renderToFile(cmd.Context(), cfg, out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")

	return cmd
}

// createOutput opens the render target; replaced in tests
var createOutput = func(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

// renderToFile writes the page to name. A failed close is reported even
// when rendering succeeded.
func renderToFile(ctx context.Context, cfg *config.Config, name string) error {
	f, err := createOutput(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}

	renderErr := runRender(ctx, cfg, f)
	if err := f.Close(); err != nil {
		closeErr := fmt.Errorf("failed to close %s: %w", name, err)
		if renderErr != nil {
			return errors.Join(renderErr, closeErr)
		}
		return closeErr
	}
	return renderErr
}

// loadEnv reads envFile from the working directory, then from the
// executable's directory. A missing file is not an error.
func loadEnv(envFile string) {
	if err := godotenv.Load(envFile); err == nil {
		return
	}

	ex, err := os.Executable()
	if err != nil {
		return
	}
	_ = godotenv.Load(filepath.Join(filepath.Dir(ex), envFile))
}

func bootstrap(envFile string, verbose bool) (*config.Config, *logging.LoggingService, error) {
	loadEnv(envFile)

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	// a failed log directory falls back to console and is already logged
	svc, _ := logging.InitLoggerWithOptions(logging.Options{
		Dir:            cfg.LogDir,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
		Env:            cfg.Env,
		Level:          cfg.LogLevel,
		Verbose:        verbose,
	})

	return cfg, svc, nil
}

func newBuilder(cfg *config.Config) (*fetcher.Client, *dashboard.Builder) {
	client := fetcher.NewClient(fetcher.Config{
		URL:        cfg.PatientsURL,
		Credential: cfg.PatientsCredential,
	})
	return client, dashboard.NewBuilder(client, cfg.TargetPatient, dashboard.NewEChartsRenderer())
}

// runRender performs one fetch and render cycle into w. The page is written
// even on failure; the failure is then returned.
func runRender(ctx context.Context, cfg *config.Config, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	_, builder := newBuilder(cfg)

	page, result, buildID := builder.Build(ctx)
	if err := dashboard.WriteLayout(w, dashboard.View{Title: pageTitle, BuildID: buildID, Page: page}); err != nil {
		return err
	}

	if !result.OK() {
		return fmt.Errorf("dashboard render failed (%s): %w", result.Kind(), result.Err())
	}
	return nil
}

func runServe(envFile string, verbose bool) error {
	cfg, svc, err := bootstrap(envFile, verbose)
	if err != nil {
		return err
	}
	defer svc.Close()

	store := data.NewStatusContainer()
	store.SetServerStartTime(time.Now())

	client, builder := newBuilder(cfg)

	probe := scheduler.NewScheduler(store, client, cfg.TargetPatient, cfg.ProbeIntervalMinutes)
	if err := probe.Start(); err != nil {
		return fmt.Errorf("failed to start upstream probe: %w", err)
	}
	defer probe.Stop()

	checker := health.NewHealthChecker(store, probe.Interval(), scheduler.DegradedIntervals)
	srv := server.NewServer(cfg, handlers.NewHTTPHandler(builder, checker, store, pageTitle))

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case sig := <-quit:
		logging.Info("Received signal", "signal", sig.String())
	case err := <-serveErr:
		if err != nil {
			logging.Error("Server failed", "error", err)
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}
