// Package main runs the Dokimion attribute server.
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
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/entrhq/dokimion/pkg/config"
	"github.com/entrhq/dokimion/pkg/logging"
	"github.com/entrhq/dokimion/pkg/server"
	"github.com/entrhq/dokimion/pkg/service"
	"github.com/entrhq/dokimion/pkg/types"
)

const (
	version         = "0.1.0"
	shutdownTimeout = 10 * time.Second
)

// Config holds the command line options
type Config struct {
	ConfigPath  string
	Host        string
	Port        int
	LockTimeout time.Duration
	Projects    string
	LogLevel    string
	ShowVersion bool
}

func main() {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Printf("dokimion-server v%s\n", version)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		stop()
		log.Fatalf("Server error: %v", err)
	}
}

func parseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.ConfigPath, "config", "", "Path to the config file (default: ~/.dokimion/config.json or DOKIMION_CONFIG)")
	flag.StringVar(&cfg.Host, "host", "", "Listen host (or set DOKIMION_HOST)")
	flag.IntVar(&cfg.Port, "port", 0, "Listen port (or set DOKIMION_PORT)")
	flag.DurationVar(&cfg.LockTimeout, "lock-timeout", 0, "How long a save waits for a busy attribute (or set DOKIMION_LOCK_TIMEOUT)")
	flag.StringVar(&cfg.Projects, "projects", "", "Comma separated project IDs to seed, open to everyone")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "dokimion-server - project attribute service\n\n")
		fmt.Fprintf(os.Stderr, "Usage: dokimion-server [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  DOKIMION_CONFIG        Config file path\n")
		fmt.Fprintf(os.Stderr, "  DOKIMION_HOST          Listen host\n")
		fmt.Fprintf(os.Stderr, "  DOKIMION_PORT          Listen port\n")
		fmt.Fprintf(os.Stderr, "  DOKIMION_LOCK_TIMEOUT  Entity lock timeout (e.g. 30s)\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  dokimion-server -port 9090\n")
		fmt.Fprintf(os.Stderr, "  dokimion-server -projects demo,shop -lock-timeout 5s\n")
	}

	flag.Parse()
	return cfg
}

func run(ctx context.Context, cfg *Config) error {
	if err := config.Initialize(cfg.ConfigPath); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	settings, err := config.ResolveServer(config.ServerSettings{
		Host:        cfg.Host,
		Port:        cfg.Port,
		LockTimeout: cfg.LockTimeout,
		Projects:    seedProjects(cfg.Projects),
	})
	if err != nil {
		return err
	}

	logger := logging.NewWriterLogger("server", os.Stderr)
	logger.SetLevel(logging.ParseLevel(cfg.LogLevel))

	projects := service.NewMemoryProjects(settings.Projects...)
	svc := service.NewAttributeService(
		service.NewMemoryRepository(),
		projects,
		service.WithLockTTL(settings.LockTimeout),
		service.WithLogger(logger.With("service")),
	)

	srv, err := server.New(svc, logger, &server.Config{Host: settings.Host, Port: settings.Port})
	if err != nil {
		return err
	}

	logger.Infof("dokimion-server v%s, %d seeded projects, lock timeout %s",
		version, len(settings.Projects), settings.LockTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// seedProjects turns "a,b" into open projects a and b.
func seedProjects(raw string) []types.Project {
	var out []types.Project
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		out = append(out, types.Project{ID: id, Name: id})
	}
	return out
}
