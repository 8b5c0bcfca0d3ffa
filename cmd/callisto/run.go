package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"mercator-hq/callisto/pkg/audit"
	"mercator-hq/callisto/pkg/audit/recorder"
	"mercator-hq/callisto/pkg/audit/retention"
	"mercator-hq/callisto/pkg/audit/storage"
	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/client"
	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/proxy"
	"mercator-hq/callisto/pkg/security/auth"
	"mercator-hq/callisto/pkg/server"
	"mercator-hq/callisto/pkg/session"
	"mercator-hq/callisto/pkg/telemetry/logging"
	"mercator-hq/callisto/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Callisto proxy server",
	Long: `Start the Callisto proxy server with the specified configuration.

The server listens on the configured address and executes proxied requests
through the session store, redirect follower, and audit recorder.

Examples:
  # Start with default config
  callisto run

  # Start with custom config
  callisto run --config /etc/callisto/config.yaml

  # Override listen address
  callisto run --listen 0.0.0.0:8000

  # Validate config without starting server
  callisto run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	// Initialize logging based on config
	if _, err := logging.Setup(logging.Config{
		Level:  cfg.Telemetry.Logging.Level,
		Format: cfg.Telemetry.Logging.Format,
	}); err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	// Print startup banner
	printBanner(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics collector. Recording is a no-op when metrics are disabled;
	// the exposition endpoint is only mounted when enabled.
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	var metricsHandler http.Handler
	if cfg.Telemetry.Metrics.Enabled {
		metricsHandler = collector.Handler()
	}

	// Outbound client factory
	factory, err := client.NewHTTPFactory(client.Options{
		Profile:            cfg.Client.Profile,
		Timeout:            cfg.Client.RequestTimeout,
		Proxy:              cfg.Client.Proxy,
		InsecureSkipVerify: cfg.Client.InsecureSkipVerify,
	})
	if err != nil {
		return cli.NewConfigError("client.proxy", err.Error())
	}

	// Session store and reaper
	slog.Info("initializing session store",
		"max_sessions", cfg.Sessions.MaxSessions,
		"ttl", cfg.Sessions.TTL,
	)
	store := session.NewStore(session.Options{
		MaxSessions: cfg.Sessions.MaxSessions,
		TTL:         cfg.Sessions.TTL,
		Factory:     factory,
		Metrics:     collector,
	})
	defer store.Shutdown()

	reaper := session.NewReaper(store, cfg.Sessions.SweepSchedule)
	if err := reaper.Start(ctx); err != nil {
		return cli.NewConfigError("sessions.sweep_schedule", err.Error())
	}
	defer reaper.Stop()

	fmt.Printf("✓ Session store initialized (capacity %d)\n", cfg.Sessions.MaxSessions)

	// Request executor
	composer := proxy.NewHeaderComposer(cfg.Client.Profile)
	follower := proxy.NewRedirectFollower(composer, cfg.Redirects.MaxHops)
	executor := proxy.NewExecutor(store, follower, collector)

	// Initialize audit recording (if enabled)
	var auditRecorder *recorder.Recorder
	if cfg.Audit.Enabled {
		slog.Info("initializing audit recording",
			"backend", cfg.Audit.Backend,
		)

		var auditStorage audit.Storage
		switch cfg.Audit.Backend {
		case "sqlite":
			sqliteConfig := storage.DefaultSQLiteConfig()
			sqliteConfig.Path = cfg.Audit.SQLitePath
			auditStorage, err = storage.NewSQLiteStorage(sqliteConfig)
			if err != nil {
				return fmt.Errorf("failed to create SQLite storage: %w", err)
			}
		case "memory":
			auditStorage = storage.NewMemoryStorage()
		default:
			return fmt.Errorf("unsupported audit backend: %s", cfg.Audit.Backend)
		}
		defer auditStorage.Close()

		recorderConfig := recorder.DefaultConfig()
		recorderConfig.AsyncBuffer = cfg.Audit.AsyncBuffer
		auditRecorder = recorder.NewRecorder(auditStorage, recorderConfig)
		defer auditRecorder.Close()

		// Start retention pruner if schedule is configured
		if cfg.Audit.PruneSchedule != "" {
			pruner := retention.NewPruner(auditStorage, &retention.Config{
				RetentionDays: cfg.Audit.RetentionDays,
				PruneSchedule: cfg.Audit.PruneSchedule,
				MaxRecords:    cfg.Audit.MaxRecords,
			})
			if err := pruner.Start(ctx); err != nil {
				slog.Warn("failed to start retention scheduler", "error", err)
			} else {
				defer pruner.Stop()
				if next := pruner.NextPruning(); next != nil {
					slog.Debug("audit retention scheduler started", "next_pruning", next)
				}
			}
		}

		fmt.Println("✓ Audit store initialized")
	}

	// API key authentication (if enabled)
	var validator *auth.Validator
	if cfg.Auth.Enabled {
		validator = auth.NewValidator(keyInfos(cfg.Auth.Keys))
		fmt.Printf("✓ Authentication enabled (%d keys)\n", validator.Count())

		if cfg.Auth.WatchConfig {
			watcher, werr := config.NewWatcher(cfgFile, nil)
			if werr != nil {
				slog.Warn("failed to create config watcher", "error", werr)
			} else {
				go func() {
					if werr := watcher.Watch(ctx, func(newCfg *config.Config) {
						validator.Replace(keyInfos(newCfg.Auth.Keys))
						slog.Info("api keys reloaded", "count", len(newCfg.Auth.Keys))
					}); werr != nil {
						slog.Warn("config watcher stopped", "error", werr)
					}
				}()
				defer watcher.Stop()
			}
		}
	} else {
		slog.Warn("authentication disabled, all requests accepted")
	}

	// Create HTTP server
	slog.Info("creating HTTP server")
	opts := server.Options{
		Version:   Version,
		Executor:  executor,
		Store:     store,
		Validator: validator,
		Metrics:   metricsHandler,
	}
	if auditRecorder != nil {
		opts.Recorder = auditRecorder
	}
	srv := server.NewServer(cfg, opts)

	// Start server in background goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if metricsHandler != nil {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for shutdown signal or server error
	sigChan := cli.WaitForShutdown()

	select {
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		fmt.Println("✓ Server stopped")
		return nil
	}
}

// keyInfos converts configured API keys into validator entries.
func keyInfos(keys []config.APIKey) []*auth.KeyInfo {
	infos := make([]*auth.KeyInfo, 0, len(keys))
	for _, k := range keys {
		infos = append(infos, &auth.KeyInfo{
			Key:      k.Key,
			Name:     k.Name,
			Disabled: k.Disabled,
		})
	}
	return infos
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Callisto v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	slog.Debug("client profile", "profile", cfg.Client.Profile)
	slog.Debug("redirect limit", "max_hops", cfg.Redirects.MaxHops)

	if cfg.Audit.Enabled {
		slog.Debug("audit enabled", "backend", cfg.Audit.Backend)
	}
}
