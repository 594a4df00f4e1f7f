// Package main opens the terminal attribute editor against a Dokimion server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/dokimion/pkg/backend"
	"github.com/entrhq/dokimion/pkg/config"
	"github.com/entrhq/dokimion/pkg/logging"
	"github.com/entrhq/dokimion/pkg/tui"
	"github.com/entrhq/dokimion/pkg/types"
)

const version = "0.1.0"

// Config holds the command line options
type Config struct {
	ConfigPath  string
	BaseURL     string
	Project     string
	User        string
	Roles       string
	Timeout     time.Duration
	AttributeID string
	ShowVersion bool
}

func main() {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Printf("dokimion v%s\n", version)
		return
	}

	if err := run(cfg); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func parseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.ConfigPath, "config", "", "Path to the config file (default: ~/.dokimion/config.json or DOKIMION_CONFIG)")
	flag.StringVar(&cfg.BaseURL, "url", "", "Server API base URL (or set DOKIMION_URL)")
	flag.StringVar(&cfg.Project, "project", "", "Project ID (or set DOKIMION_PROJECT)")
	flag.StringVar(&cfg.User, "user", "", "Login sent with every request (or set DOKIMION_USER)")
	flag.StringVar(&cfg.Roles, "roles", "", "Comma separated roles (or set DOKIMION_ROLES)")
	flag.DurationVar(&cfg.Timeout, "timeout", 0, "Per request timeout (or set DOKIMION_TIMEOUT)")
	flag.StringVar(&cfg.AttributeID, "edit", "", "ID of an existing attribute to edit")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "dokimion - project attribute editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: dokimion [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  dokimion -project demo                 # create an attribute\n")
		fmt.Fprintf(os.Stderr, "  dokimion -project demo -edit <id>      # edit an existing one\n")
		fmt.Fprintf(os.Stderr, "  dokimion -url http://host:8080/api -user alice -roles admin\n")
	}

	flag.Parse()
	return cfg
}

func run(cfg *Config) error {
	if err := config.Initialize(cfg.ConfigPath); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	var roles []string
	for _, r := range strings.Split(cfg.Roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}

	settings, err := config.ResolveBackend(config.BackendSettings{
		BaseURL: cfg.BaseURL,
		Project: cfg.Project,
		User:    cfg.User,
		Roles:   roles,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return err
	}

	// stdout belongs to the TUI
	logger, logErr := tuiLogger()
	defer logger.Close()
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", logErr)
	}

	client, err := backend.NewClient(settings.BaseURL,
		backend.WithTimeout(settings.Timeout),
		backend.WithIdentity(settings.User, settings.Roles...),
	)
	if err != nil {
		return err
	}

	attr := types.EmptyAttribute()
	if cfg.AttributeID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), settings.Timeout)
		err := client.Get(ctx, backend.AttributePath(settings.Project, cfg.AttributeID), &attr)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to load attribute %s: %w", cfg.AttributeID, err)
		}
	}

	model := tui.New(tui.Config{
		Backend:   client,
		Project:   settings.Project,
		Attribute: attr,
		Edit:      cfg.AttributeID != "",
		Logger:    logger,
		Timeout:   settings.Timeout,
	})

	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("editor error: %w", err)
	}

	if m, ok := final.(tui.Model); ok {
		if msg := m.Form().ErrorMessage(); msg != "" {
			logger.Warnf("editor closed with error: %s", msg)
		}
	}
	return nil
}

// tuiLogger opens the file logger. When that fails it returns a discarding
// logger with the error: the stderr fallback would draw over the alt screen.
func tuiLogger() (*logging.Logger, error) {
	logger, err := logging.NewLogger("tui")
	if err != nil {
		logger.Close()
		return logging.Nop(), fmt.Errorf("file logging disabled: %w", err)
	}
	return logger, nil
}
