package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/dokimion/pkg/types"
)

const (
	// SectionIDServer is the identifier for the attribute server section
	SectionIDServer = "server"

	defaultServerHost  = "localhost"
	defaultServerPort  = 8080
	defaultLockTimeout = time.Minute
)

// ServerSection configures dokimion-server.
type ServerSection struct {
	Host        string
	Port        int
	LockTimeout time.Duration

	// Projects are seeded into the project repository at startup
	Projects []types.Project
	mu       sync.RWMutex
}

// NewServerSection creates the section with defaults.
func NewServerSection() *ServerSection {
	return &ServerSection{
		Host:        defaultServerHost,
		Port:        defaultServerPort,
		LockTimeout: defaultLockTimeout,
	}
}

// ID returns the section identifier.
func (s *ServerSection) ID() string {
	return SectionIDServer
}

// Title returns the section title.
func (s *ServerSection) Title() string {
	return "Server"
}

// Description returns the section description.
func (s *ServerSection) Description() string {
	return "Listen address, entity lock timeout and seeded projects of the attribute server."
}

// Data returns the current configuration data.
func (s *ServerSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects := make([]any, 0, len(s.Projects))
	for _, p := range s.Projects {
		projects = append(projects, map[string]any{
			"id":          p.ID,
			"name":        p.Name,
			"description": p.Description,
			"readers":     toAnySlice(p.Readers),
			"writers":     toAnySlice(p.Writers),
		})
	}

	return map[string]any{
		"host":         s.Host,
		"port":         s.Port,
		"lock_timeout": s.LockTimeout.String(),
		"projects":     projects,
	}
}

// SetData updates the configuration from the provided data.
func (s *ServerSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "host":
			host, ok := value.(string)
			if !ok {
				return fmt.Errorf("invalid value type for host: expected string, got %T", value)
			}
			s.Host = host

		case "port":
			port, err := intValue(key, value)
			if err != nil {
				return err
			}
			s.Port = port

		case "lock_timeout":
			d, err := durationValue(key, value)
			if err != nil {
				return err
			}
			s.LockTimeout = d

		case "projects":
			projects, err := projectsValue(value)
			if err != nil {
				return err
			}
			s.Projects = projects
		}
	}
	return nil
}

// Validate validates the current configuration.
func (s *ServerSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", s.Port)
	}
	if s.LockTimeout <= 0 {
		return fmt.Errorf("lock_timeout must be positive, got %s", s.LockTimeout)
	}
	seen := make(map[string]bool, len(s.Projects))
	for _, p := range s.Projects {
		if p.ID == "" {
			return fmt.Errorf("project id must not be empty")
		}
		if seen[p.ID] {
			return fmt.Errorf("project %q configured twice", p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *ServerSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Host = defaultServerHost
	s.Port = defaultServerPort
	s.LockTimeout = defaultLockTimeout
	s.Projects = nil
}

// Snapshot returns a copy of the settings safe to use without locking.
func (s *ServerSection) Snapshot() ServerSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ServerSettings{
		Host:        s.Host,
		Port:        s.Port,
		LockTimeout: s.LockTimeout,
		Projects:    append([]types.Project(nil), s.Projects...),
	}
}

// ServerSettings is a point-in-time copy of ServerSection.
type ServerSettings struct {
	Host        string
	Port        int
	LockTimeout time.Duration
	Projects    []types.Project
}

func projectsValue(value any) ([]types.Project, error) {
	list, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("invalid value type for projects: expected list, got %T", value)
	}

	projects := make([]types.Project, 0, len(list))
	for i, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid project #%d: expected object, got %T", i, item)
		}
		var p types.Project
		p.ID, _ = entry["id"].(string)
		p.Name, _ = entry["name"].(string)
		p.Description, _ = entry["description"].(string)
		var err error
		if p.Readers, err = stringList("readers", entry["readers"]); err != nil {
			return nil, err
		}
		if p.Writers, err = stringList("writers", entry["writers"]); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}
