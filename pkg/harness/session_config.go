package harness

import (
	"fmt"
	"strconv"
	"strings"
)

// PageLoadStrategy controls when navigation is considered complete.
type PageLoadStrategy int

const (
	// PageLoadNormal waits for the load event
	PageLoadNormal PageLoadStrategy = iota
	// PageLoadEager waits for DOMContentLoaded
	PageLoadEager
	// PageLoadNone returns as soon as the response is committed
	PageLoadNone
)

func (s PageLoadStrategy) String() string {
	switch s {
	case PageLoadNormal:
		return "normal"
	case PageLoadEager:
		return "eager"
	case PageLoadNone:
		return "none"
	default:
		return fmt.Sprintf("PageLoadStrategy(%d)", int(s))
	}
}

// WaitUntil maps the strategy onto the Playwright wait state name.
func (s PageLoadStrategy) WaitUntil() string {
	switch s {
	case PageLoadEager:
		return "domcontentloaded"
	case PageLoadNone:
		return "commit"
	default:
		return "load"
	}
}

const (
	flagHeadless             = "--headless=new"
	flagDisableGPU           = "--disable-gpu"
	flagDisableSiteIsolation = "--disable-site-isolation-trials"
	windowSizeFlagPrefix     = "--window-size="

	// DefaultWindowSize is the fixed window geometry of test sessions
	DefaultWindowSize = "1920,1080"
)

// SessionConfig describes how a browser session for a UI test is launched.
// Values returned by BuildSessionConfig share no state with each other.
type SessionConfig struct {
	Headless         bool
	WindowSize       string
	PageLoadStrategy PageLoadStrategy
	ExtraFlags       []string
}

// BuildSessionConfig returns the deterministic headless configuration used by
// every UI test: normal page loads, headless, 1920x1080, no GPU and no
// site-isolation trials.
func BuildSessionConfig() SessionConfig {
	return SessionConfig{
		Headless:         true,
		WindowSize:       DefaultWindowSize,
		PageLoadStrategy: PageLoadNormal,
		ExtraFlags:       []string{flagDisableGPU, flagDisableSiteIsolation},
	}
}

// Args returns the browser command line flags in launch order.
func (c SessionConfig) Args() []string {
	args := make([]string, 0, len(c.ExtraFlags)+2)
	if c.Headless {
		args = append(args, flagHeadless)
	}
	if c.WindowSize != "" {
		args = append(args, windowSizeFlagPrefix+c.WindowSize)
	}
	args = append(args, c.ExtraFlags...)
	return args
}

// Viewport parses WindowSize ("W,H" or "WxH").
func (c SessionConfig) Viewport() (width, height int, err error) {
	size := strings.ReplaceAll(c.WindowSize, "x", ",")
	parts := strings.Split(size, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid window size %q", c.WindowSize)
	}
	width, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid window width %q: %w", parts[0], err)
	}
	height, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid window height %q: %w", parts[1], err)
	}
	return width, height, nil
}
