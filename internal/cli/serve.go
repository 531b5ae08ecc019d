package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/halim/toolbridge/internal/audit"
	"github.com/halim/toolbridge/internal/config"
	"github.com/halim/toolbridge/internal/logger"
	"github.com/halim/toolbridge/internal/media"
	"github.com/halim/toolbridge/internal/metrics"
	"github.com/halim/toolbridge/pkg/gateway"
	"github.com/halim/toolbridge/pkg/httpapi"
	"github.com/halim/toolbridge/pkg/mediatools"
	"github.com/halim/toolbridge/pkg/plugin"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway server",
	Long: `Run the gateway server in the foreground. The server registers the
builtin tool catalogue, loads plugin manifests, and serves the tool API
until interrupted.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLogger, err := logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		Console:   true,
		Pretty:    true,
		Redaction: cfg.Logging.Redaction,
		MaxSize:   cfg.Logging.MaxSize,
		MaxAge:    cfg.Logging.MaxAge,
		Compress:  cfg.Logging.Compress,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()
	zl := appLogger.GetZerolog()

	registry := gateway.NewRegistry()
	auth := gateway.NewAuthenticator(gateway.AuthOptions{
		APIKey:      cfg.Auth.APIKey,
		ServiceUser: cfg.Auth.ServiceUser,
		Tokens:      cfg.Auth.Tokens,
	})

	// Audit sinks: metrics always count dispatches, the sqlite trail and
	// the websocket stream are optional.
	var recorders []gateway.AuditRecorder

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics()
		recorders = append(recorders, m)
	}

	if cfg.Audit.Enabled {
		store, err := audit.NewStore(cfg.Audit.Path)
		if err != nil {
			return fmt.Errorf("failed to open audit store: %w", err)
		}
		defer store.Close()
		recorders = append(recorders, store)

		if cfg.Audit.RetentionDays > 0 {
			pruner, err := audit.NewPruner(store, cfg.Audit.PruneSchedule,
				time.Duration(cfg.Audit.RetentionDays)*24*time.Hour)
			if err != nil {
				return fmt.Errorf("failed to configure audit pruner: %w", err)
			}
			pruner.Start()
			defer pruner.Stop()
		}
	}

	var broadcaster *httpapi.Broadcaster
	if cfg.Events.Enabled {
		broadcaster = httpapi.NewBroadcaster(zl)
		recorders = append(recorders, broadcaster)
	}

	dispatcher := gateway.NewDispatcher(registry, auth, gateway.DispatcherOptions{
		Timeout:          time.Duration(cfg.Dispatch.TimeoutSeconds) * time.Second,
		MaxConcurrent:    cfg.Dispatch.MaxConcurrent,
		StrictValidation: cfg.Dispatch.StrictValidation,
		Audit:            gateway.FanoutRecorder(recorders...),
	})

	// Builtin catalogue, backed by the upstream server when configured.
	if cfg.Upstream.URL != "" {
		client := media.NewClient(cfg.Upstream.URL, cfg.Upstream.Token,
			time.Duration(cfg.Upstream.TimeoutSeconds)*time.Second, zl)
		if err := mediatools.Register(registry, client.Services()); err != nil {
			return fmt.Errorf("failed to register builtin tools: %w", err)
		}
	} else {
		zl.Warn().Msg("No upstream configured; builtin tools disabled")
	}

	// Plugin manifests.
	if cfg.Plugins.Enabled {
		if err := os.MkdirAll(cfg.Plugins.Dir, 0755); err != nil {
			return fmt.Errorf("failed to create plugin directory: %w", err)
		}
		loader := plugin.NewLoader(registry, zl)
		if err := loader.LoadDir(cfg.Plugins.Dir); err != nil {
			return fmt.Errorf("failed to load plugins: %w", err)
		}
		if cfg.Plugins.Watch {
			watcher, err := plugin.NewWatcher(loader, cfg.Plugins.Dir, zl)
			if err != nil {
				return fmt.Errorf("failed to watch plugin directory: %w", err)
			}
			defer watcher.Stop()
		}
	}

	if m != nil {
		m.ToolsRegistered.Set(float64(registry.Len()))
	}

	server := httpapi.NewServer(httpapi.ServerOptions{
		Host:               cfg.Server.Host,
		Port:               cfg.Server.Port,
		APIKeyHeader:       cfg.Server.APIKeyHeader,
		APIKeyQuery:        cfg.Server.APIKeyQuery,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
	}, dispatcher, registry, auth, m, broadcaster, zl)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		zl.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	return server.Stop()
}
