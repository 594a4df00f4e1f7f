// Package main runs the browser smoke check of a Dokimion deployment: it
// opens the configured URL in headless chromium and verifies the page
// renders readable text.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/entrhq/dokimion/pkg/harness"
)

const caseName = "Smoke.PageRenders"

// Config holds the command line options
type Config struct {
	ParamsPath string
	URL        string
	Expect     string
	Install    bool
}

func main() {
	cfg := parseFlags()

	failed, err := run(cfg)
	if err != nil {
		log.Fatalf("e2e error: %v", err)
	}
	if failed {
		os.Exit(1)
	}
}

func parseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.ParamsPath, "params", "", "YAML file with test parameters (Url, Username, ...)")
	flag.StringVar(&cfg.URL, "url", "", "Page to open, overrides the Url parameter")
	flag.StringVar(&cfg.Expect, "expect", "", "Text the page must contain (optional)")
	flag.BoolVar(&cfg.Install, "install", false, "Install the Playwright driver and chromium first")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "dokimion-e2e - browser smoke check\n\n")
		fmt.Fprintf(os.Stderr, "Usage: dokimion-e2e [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  dokimion-e2e -params e2e.yaml\n")
		fmt.Fprintf(os.Stderr, "  dokimion-e2e -install -url http://localhost:3000 -expect Attribute\n")
	}

	flag.Parse()
	return cfg
}

// run executes the smoke case and reports whether it failed. The returned
// error is reserved for harness setup problems.
func run(cfg *Config) (bool, error) {
	var params harness.TestParameters
	if cfg.ParamsPath != "" {
		p, err := harness.LoadParameters(cfg.ParamsPath)
		if err != nil {
			return false, err
		}
		params = p
	}
	if cfg.URL != "" {
		params.URL = &cfg.URL
	}

	actions := harness.NewUserActions(params, os.Stdout)
	url := harness.StringOr(actions.Params.URL, "")
	if url == "" {
		return false, errors.New("no page to open: set Url in the parameters file or use -url")
	}

	launcher := harness.NewLauncher(cfg.Install)
	if err := launcher.Initialize(); err != nil {
		return false, err
	}
	defer func() {
		if err := launcher.Shutdown(); err != nil {
			_ = actions.Log("shutdown: " + err.Error())
		}
	}()

	result := harness.TestResult{FullName: caseName, Outcome: harness.OutcomePassed}
	if err := smoke(launcher, actions, url, cfg.Expect); err != nil {
		result.Outcome = harness.OutcomeFailure
		var setup *setupError
		if errors.As(err, &setup) {
			result.Outcome = harness.OutcomeError
		}
		result.StackTrace = err.Error()
	}

	if err := actions.AfterTestCase(result); err != nil {
		return true, err
	}
	if !result.Outcome.IsFailure() {
		_ = actions.Log(result.FullName + " : " + string(result.Outcome))
	}
	return result.Outcome.IsFailure(), nil
}

// setupError marks failures of the browser itself rather than the page.
type setupError struct{ err error }

func (e *setupError) Error() string { return e.err.Error() }
func (e *setupError) Unwrap() error { return e.err }

func smoke(launcher *harness.Launcher, actions *harness.UserActions, url, expect string) error {
	session, err := launcher.StartSession(caseName, actions.BuildSessionConfig())
	if err != nil {
		return &setupError{err: err}
	}
	defer func() { _ = launcher.CloseSession(session.Name) }()

	if err := session.Navigate(url); err != nil {
		return err
	}
	text, err := session.VisibleText()
	if err != nil {
		return &setupError{err: err}
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("page %s rendered no visible text", url)
	}
	if expect != "" && !strings.Contains(text, expect) {
		return fmt.Errorf("page %s does not contain %q", url, expect)
	}
	return nil
}
