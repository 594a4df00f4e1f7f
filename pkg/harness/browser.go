package harness

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// DefaultTimeout is the default Playwright operation timeout in milliseconds.
const DefaultTimeout = 30000.0

// Session is a running browser with a single page, owned by one test case.
type Session struct {
	Name      string
	Config    SessionConfig
	Browser   playwright.Browser
	Context   playwright.BrowserContext
	Page      playwright.Page
	StartedAt time.Time
}

// Launcher owns the Playwright driver and the sessions started from it.
type Launcher struct {
	mu          sync.Mutex
	pw          *playwright.Playwright
	sessions    map[string]*Session
	initialized bool
	install     bool
}

// NewLauncher creates a launcher. When install is true the Playwright driver
// and chromium are installed on Initialize.
func NewLauncher(install bool) *Launcher {
	return &Launcher{
		sessions: make(map[string]*Session),
		install:  install,
	}
}

// Initialize starts the Playwright driver. Safe to call more than once.
func (l *Launcher) Initialize() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.initialized {
		return nil
	}

	opts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}

	if l.install {
		if err := playwright.Install(opts); err != nil {
			return fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	l.pw = pw
	l.initialized = true
	return nil
}

// LaunchOptions converts a session config into Playwright launch options.
func LaunchOptions(cfg SessionConfig) playwright.BrowserTypeLaunchOptions {
	headless := cfg.Headless
	return playwright.BrowserTypeLaunchOptions{
		Headless: &headless,
		Args:     cfg.Args(),
	}
}

// ContextOptions converts a session config into browser context options.
func ContextOptions(cfg SessionConfig) (playwright.BrowserNewContextOptions, error) {
	width, height, err := cfg.Viewport()
	if err != nil {
		return playwright.BrowserNewContextOptions{}, err
	}
	return playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: width, Height: height},
	}, nil
}

// StartSession launches chromium with cfg and opens a blank page.
func (l *Launcher) StartSession(name string, cfg SessionConfig) (*Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.initialized {
		return nil, fmt.Errorf("launcher not initialized")
	}
	if _, exists := l.sessions[name]; exists {
		return nil, fmt.Errorf("session %q already exists", name)
	}

	contextOpts, err := ContextOptions(cfg)
	if err != nil {
		return nil, err
	}

	browser, err := l.pw.Chromium.Launch(LaunchOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(contextOpts)
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(DefaultTimeout)

	session := &Session{
		Name:      name,
		Config:    cfg,
		Browser:   browser,
		Context:   bctx,
		Page:      page,
		StartedAt: time.Now(),
	}
	l.sessions[name] = session
	return session, nil
}

// CloseSession closes a session and forgets it.
func (l *Launcher) CloseSession(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	session, exists := l.sessions[name]
	if !exists {
		return fmt.Errorf("session %q not found", name)
	}
	delete(l.sessions, name)
	return session.close()
}

// Shutdown closes every session and stops the driver.
func (l *Launcher) Shutdown() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error
	for name, session := range l.sessions {
		if err := session.close(); err != nil {
			errs = append(errs, err)
		}
		delete(l.sessions, name)
	}

	if l.initialized && l.pw != nil {
		if err := l.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
		l.initialized = false
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}

func (s *Session) close() error {
	_ = s.Page.Close()
	_ = s.Context.Close()
	return s.Browser.Close()
}

// Navigate opens url and waits according to the session's page load strategy.
func (s *Session) Navigate(url string) error {
	waitUntil := playwright.WaitUntilState(s.Config.PageLoadStrategy.WaitUntil())
	if _, err := s.Page.Goto(url, playwright.PageGotoOptions{WaitUntil: &waitUntil}); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// Fill types value into the element matching selector.
func (s *Session) Fill(selector, value string) error {
	if err := s.Page.Fill(selector, value); err != nil {
		return fmt.Errorf("fill %s failed: %w", selector, err)
	}
	return nil
}

// Click clicks the element matching selector.
func (s *Session) Click(selector string) error {
	if err := s.Page.Click(selector); err != nil {
		return fmt.Errorf("click %s failed: %w", selector, err)
	}
	return nil
}

// VisibleText returns the readable text of the current page.
func (s *Session) VisibleText() (string, error) {
	content, err := s.Page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return VisibleText(content)
}
