package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"agent-gateway/internal/adapter/llm"
	"agent-gateway/internal/catalog"
	"agent-gateway/internal/infra/config"
	"agent-gateway/internal/infra/logger"
	"agent-gateway/internal/infra/tracer"
	"agent-gateway/internal/rpc"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Config
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// 2. Logger & Tracer
	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	ctx := context.Background()
	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(ctx)

	// 3. Catalog
	cat := catalog.New()

	// 4. Provider (picked once at startup; no per-request failover)
	provider, err := llm.Select(cfg.LLM, log)
	if err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	log.Info("provider selected", "provider", provider.Name(), "agents", cat.Len())

	// 5. Server
	metrics := &rpc.Metrics{}
	dispatcher := rpc.NewDispatcher(cat, provider, cfg.LLM.RequestTimeout, log, metrics)
	server := rpc.NewServer(cfg.Server.Addr, dispatcher, metrics, log)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(runCtx); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	log.Info("gateway stopped")
	return nil
}
