package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/app"
	"github.com/noah-isme/study-planner-api/internal/router"
	"github.com/noah-isme/study-planner-api/internal/service"
	"github.com/noah-isme/study-planner-api/pkg/config"
	"github.com/noah-isme/study-planner-api/pkg/logger"
)

const (
	shutdownTimeout        = 10 * time.Second
	defaultCleanupInterval = time.Hour
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the planner API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

// NewExportCommand writes the planner data to a file.
func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks, exams and settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			format, _ := cmd.Flags().GetString("format")
			return runExport(cmd.Context(), out, service.ExportFormat(format), cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("out", "", "Output path; defaults to the generated file name, - for stdout")
	cmd.Flags().String("format", string(service.ExportFormatJSON), "json, csv or pdf")
	return cmd
}

// NewScanCommand runs one due-today reminder scan.
func NewScanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Send reminders for tasks due today",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

// NewResetCommand clears tasks, exams and settings.
func NewResetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear tasks, exams and settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				return errors.New("refusing to reset without --yes")
			}
			return runReset(cmd.Context(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().Bool("yes", false, "Confirm the reset")
	return cmd
}

func bootstrap(ctx context.Context, opts ...app.Option) (*app.App, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	a, err := app.New(ctx, cfg, logr, opts...)
	if err != nil {
		_ = logr.Sync()
		return nil, nil, err
	}
	return a, func() {
		a.Close()
		_ = logr.Sync()
	}, nil
}

func runServer(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer cleanup()
	cfg, logr := a.Config, a.Logger

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Notifications.Enabled {
		a.Notifications.Start(ctx)
		defer a.Notifications.Stop()
		go a.Notifications.Run(ctx)
	}
	go cleanupExports(ctx, a)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router.SetupRouter(a),
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
		return err
	case <-ctx.Done():
	}

	logr.Info("server shutting down")
	// streams never finish on their own; close tabs so they return
	a.Hub.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func cleanupExports(ctx context.Context, a *app.App) {
	interval := a.Config.Exports.CleanupInterval
	if interval <= 0 {
		interval = defaultCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := a.Data.Cleanup()
			if err != nil {
				a.Logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				a.Logger.Info("expired exports removed", zap.Int("count", len(removed)))
			}
		}
	}
}

func runExport(ctx context.Context, out string, format service.ExportFormat, stdout io.Writer) error {
	a, cleanup, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	file, err := a.Data.Render(ctx, format)
	if err != nil {
		return err
	}
	if out == "-" {
		_, err = stdout.Write(file.Body)
		return err
	}
	if out == "" {
		out = file.Name
	}
	if err := os.WriteFile(out, file.Body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(stdout, "exported %s (%d bytes)\n", out, len(file.Body))
	return nil
}

type printNotifier struct {
	w io.Writer
}

func (p printNotifier) Notify(_ context.Context, r service.Reminder) error {
	_, err := fmt.Fprintf(p.w, "%s: %s\n", r.Title, r.Body)
	return err
}

func runScan(ctx context.Context, stdout io.Writer) error {
	a, cleanup, err := bootstrap(ctx, app.WithNotifier(printNotifier{w: stdout}))
	if err != nil {
		return err
	}
	defer cleanup()

	added, err := a.Notifications.Scan(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%d reminder(s) sent\n", added)
	return nil
}

func runReset(ctx context.Context, stdout io.Writer) error {
	a, cleanup, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := a.Data.Reset(ctx); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "tasks, exams and settings cleared")
	return nil
}
