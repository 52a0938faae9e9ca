// cmd/mcp-server/main.go — Standalone HTTP MCP server for gosimplify
//
// Exposes the simplifier as an HTTP endpoint for agent frameworks.
//
// Usage:
//
//	go run ./cmd/mcp-server -config gosimplify.yaml
//	go run ./cmd/mcp-server -addr :9090
//
// Tool call endpoint: POST /tool
// Engine endpoint:    POST /simplify[?mode=normalize]
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
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

	"github.com/njchilds90/gosimplify/internal/config"
	"github.com/njchilds90/gosimplify/internal/engine"
	"github.com/njchilds90/gosimplify/internal/journal"
	"github.com/njchilds90/gosimplify/internal/logging"
	"github.com/njchilds90/gosimplify/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mcp-server:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to a YAML config file")
	addr := flag.String("addr", "", "Listen address (overrides server.addr)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	var j engine.Journal
	if cfg.Journal != "" {
		store, err := journal.Open(cfg.Journal)
		if err != nil {
			return err
		}
		defer store.Close()
		j = store
	}

	eng, err := engine.New(engine.Options{
		Mode:      engine.Mode(cfg.Mode),
		MaxDepth:  cfg.MaxDepth,
		MaxPasses: cfg.MaxPasses,
	}, j, logger)
	if err != nil {
		return err
	}

	srv := server.NewServer(cfg.Server, server.NewHandler(eng, logger, cfg.Server.MaxBodyBytes))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("gosimplify MCP server listening",
			"addr", cfg.Server.Addr,
			"mode", cfg.Mode,
			"journal", cfg.Journal,
		)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
