package config

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	// SectionIDBackend is the identifier for the client connection section
	SectionIDBackend = "backend"

	defaultBackendURL     = "http://localhost:8080/api"
	defaultBackendProject = "default"
	defaultBackendTimeout = 30 * time.Second
)

// BackendSection configures how clients reach the attribute server.
type BackendSection struct {
	BaseURL string
	Project string
	User    string
	Roles   []string
	Timeout time.Duration
	mu      sync.RWMutex
}

// NewBackendSection creates the section with defaults.
func NewBackendSection() *BackendSection {
	return &BackendSection{
		BaseURL: defaultBackendURL,
		Project: defaultBackendProject,
		Timeout: defaultBackendTimeout,
	}
}

// ID returns the section identifier.
func (s *BackendSection) ID() string {
	return SectionIDBackend
}

// Title returns the section title.
func (s *BackendSection) Title() string {
	return "Backend"
}

// Description returns the section description.
func (s *BackendSection) Description() string {
	return "Server URL, project and identity used by the attribute editor and the e2e runner."
}

// Data returns the current configuration data.
func (s *BackendSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"base_url": s.BaseURL,
		"project":  s.Project,
		"user":     s.User,
		"roles":    strings.Join(s.Roles, ","),
		"timeout":  s.Timeout.String(),
	}
}

// SetData updates the configuration from the provided data.
func (s *BackendSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "base_url", "project", "user":
			str, ok := value.(string)
			if !ok {
				return fmt.Errorf("invalid value type for %s: expected string, got %T", key, value)
			}
			switch key {
			case "base_url":
				s.BaseURL = str
			case "project":
				s.Project = str
			case "user":
				s.User = str
			}

		case "roles":
			// either "a,b" or ["a","b"]
			if str, ok := value.(string); ok {
				s.Roles = splitList(str)
				continue
			}
			roles, err := stringList(key, value)
			if err != nil {
				return err
			}
			s.Roles = roles

		case "timeout":
			d, err := durationValue(key, value)
			if err != nil {
				return err
			}
			s.Timeout = d
		}
	}
	return nil
}

// Validate validates the current configuration.
func (s *BackendSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, err := url.Parse(s.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute URL, got %q", s.BaseURL)
	}
	if s.Project == "" {
		return fmt.Errorf("project must not be empty")
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", s.Timeout)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *BackendSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BaseURL = defaultBackendURL
	s.Project = defaultBackendProject
	s.User = ""
	s.Roles = nil
	s.Timeout = defaultBackendTimeout
}

// Snapshot returns a copy of the settings safe to use without locking.
func (s *BackendSection) Snapshot() BackendSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return BackendSettings{
		BaseURL: s.BaseURL,
		Project: s.Project,
		User:    s.User,
		Roles:   append([]string(nil), s.Roles...),
		Timeout: s.Timeout,
	}
}

// BackendSettings is a point-in-time copy of BackendSection.
type BackendSettings struct {
	BaseURL string
	Project string
	User    string
	Roles   []string
	Timeout time.Duration
}
