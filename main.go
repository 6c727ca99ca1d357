/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PivotLLM/ClickBridge/config"
	"github.com/PivotLLM/ClickBridge/gateway"
	"github.com/PivotLLM/ClickBridge/global"
	"github.com/PivotLLM/ClickBridge/goals"
	"github.com/PivotLLM/ClickBridge/logging"
	"github.com/PivotLLM/ClickBridge/scheduler"
	"github.com/PivotLLM/ClickBridge/server"
)

// shutdownTimeout bounds graceful shutdown of the gateway
const shutdownTimeout = 15 * time.Second

func main() {
	// Top-level panic recovery
	defer func() {
		if rec := recover(); rec != nil {
			_, _ = fmt.Fprintf(os.Stderr, "FATAL PANIC: %v\n", rec)
			os.Exit(2)
		}
	}()

	// Parse command line flags
	var (
		configPath  = flag.String("config", "", "Path to JSON configuration file")
		gatewayMode = flag.Bool("gateway", false, "Run the HTTP gateway instead of the MCP server")
		version     = flag.Bool("version", false, "Show version information")
		help        = flag.Bool("help", false, "Show help information")
	)
	flag.Parse()

	// Handle version flag
	if *version {
		fmt.Printf("%s v%s\n", global.ProgramName, global.Version)
		return
	}

	// Handle help flag
	if *help {
		showHelp()
		return
	}

	var opts []config.Option
	if *configPath != "" {
		opts = append(opts, config.WithConfigPath(*configPath))
	}
	cfg := config.New(opts...)

	// Load and validate configuration
	if err := cfg.Load(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger with config path
	logger, err := logging.New(cfg.LogFile())
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer func(logger *logging.Logger) {
		// Ensure logs are flushed before exit
		_ = logger.Sync()
		_ = logger.Close()
	}(logger)

	// Set log level from config
	logger.SetLevel(cfg.LogLevel())

	if *gatewayMode {
		logger.Infof("%s v%s starting gateway on %s", global.ProgramName, global.Version, cfg.ListenAddr())
		if err := runGateway(cfg, logger); err != nil {
			logger.Fatalf("Gateway error: %v", err)
		}
		return
	}

	logger.Infof("%s v%s starting MCP server", global.ProgramName, global.Version)

	// Create and start server
	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to create server: %v", err)
	}

	// Run the server
	if err := srv.Run(); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
}

// runGateway serves the HTTP gateway and the weekly trigger until a signal arrives
func runGateway(cfg *config.Config, logger *logging.Logger) error {
	for _, warning := range cfg.GatewayWarnings() {
		logger.Warn(warning)
	}

	var opts []gateway.Option
	if path := cfg.GoalsFile(); path != "" {
		logger.Infof("Learning goals stored in %s", path)
		opts = append(opts, gateway.WithGoalsStore(goals.NewFileStore(path, logger)))
	}
	gw := gateway.New(cfg, logger, opts...)

	sched, err := scheduler.New(cfg, gw, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           gw.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.ListenAndServe()
	}()
	sched.Start()

	select {
	case sig := <-sigChan:
		logger.Infof("Shutdown signal received (%s)", sig)
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			sched.Stop(context.Background())
			return fmt.Errorf("listen on %s: %w", cfg.ListenAddr(), err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Warnf("Gateway shutdown incomplete: %v", err)
	}
	sched.Stop(ctx)
	logger.Info("Gateway stopped")
	return nil
}

func showHelp() {
	fmt.Printf(`%s v%s - ClickUp gateway and MCP tool server

USAGE:
    %s [OPTIONS]

OPTIONS:
    --config PATH    Optional JSON configuration file (environment overrides it)
    --gateway        Run the HTTP gateway and weekly trigger
    --version        Show version information
    --help           Show this help message

MODES:
    By default %s runs an MCP server on stdio. Tools call the gateway
    at CLICKUP_WORKER_URL using CLICKUP_SHARED_SECRET.

    With --gateway it listens on GATEWAY_LISTEN_ADDR (default %s) and relays
    authenticated requests to the ClickUp API. Every request must carry the
    %s header matching PD_SHARED_SECRET.

ENVIRONMENT:
    PD_SHARED_SECRET          Gateway shared secret
    CLICKUP_API_TOKEN         ClickUp API token ("Bearer " prefix is stripped)
    CLICKUP_DEFAULT_LIST_ID   List used when a request names none
    CLICKUP_API_URL           Upstream API base (default %s)
    CLICKUP_UPSTREAM_TIMEOUT  Upstream request timeout (default %s)
    CLICKUP_WEEKLY_SCHEDULE   Cron spec for the weekly session, UTC (default "%s")
    CLICKUP_GOALS_FILE        JSON file for learning goals (default: built-in goals)
    CLICKUP_WORKER_URL        Gateway URL used by the MCP server (default %s)
    CLICKUP_SHARED_SECRET     Secret sent by the MCP server (default: PD_SHARED_SECRET)
    LOG_FILE                  Log file (default: stderr)
    LOG_LEVEL                 DEBUG, INFO, WARN, ERROR or FATAL (default INFO)

EXAMPLES:
    # Run the gateway
    %s --gateway

    # Run the MCP server with a config file
    %s --config /path/to/config.json
`, global.ProgramName, global.Version,
		global.ProgramName,
		global.ProgramName,
		global.DefaultListenAddr,
		global.HeaderSharedSecret,
		global.DefaultAPIURL,
		global.DefaultUpstreamTimeout,
		global.DefaultWeeklySchedule,
		global.DefaultWorkerURL,
		global.ProgramName,
		global.ProgramName)
}
