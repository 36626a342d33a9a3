// veild is the de-identification HTTP service daemon.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"veil/internal/audit"
	"veil/internal/config"
	"veil/internal/detect"
	"veil/internal/logger"
	"veil/internal/lookup"
	"veil/internal/pipeline"
	"veil/internal/resolve"
	"veil/internal/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("veild failed: %v", err)
	}
}

func run() error {
	cfgPath := flag.String("config", "", "path to config.toml (default ~/.veil/config.toml)")
	flag.Parse()

	path := *cfgPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	lg := logger.New("VEILD", cfg.Log.Level)

	// Lookup structures are loaded once here and shared read-only by every
	// request from now on.
	store, err := lookup.Load(cfg.Lookup.Dir, cfg.Lookup.CacheFile)
	if err != nil {
		return err
	}
	registry := detect.NewRegistry(store)
	if err := registry.Validate(cfg.Detectors.Disabled); err != nil {
		return fmt.Errorf("config detectors.disabled: %w", err)
	}

	resolver := resolve.New()
	resolver.Connectors = cfg.Resolver.Connectors
	deid := pipeline.New(registry, resolver)

	auditLog, err := audit.NewJSONLLogger(cfg.Log.AuditFile)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := server.New(addr, deid, lg, auditLog)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		lg.Infof("shutdown", "received signal %s", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
