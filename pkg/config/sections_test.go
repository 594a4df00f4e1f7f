package config

import (
	"testing"
	"time"

	"github.com/entrhq/dokimion/pkg/types"
)

func TestServerSection(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		s := NewServerSection()
		if err := s.Validate(); err != nil {
			t.Fatalf("defaults should validate: %v", err)
		}
		if s.ID() != SectionIDServer || s.Title() == "" || s.Description() == "" {
			t.Error("section metadata missing")
		}
	})

	t.Run("round trips through Data", func(t *testing.T) {
		s := NewServerSection()
		s.Port = 9000
		s.LockTimeout = 2 * time.Second
		s.Projects = []types.Project{{ID: "p", Name: "P", Writers: []string{"w"}}}

		restored := NewServerSection()
		if err := restored.SetData(s.Data()); err != nil {
			t.Fatalf("SetData failed: %v", err)
		}
		got := restored.Snapshot()
		if got.Port != 9000 || got.LockTimeout != 2*time.Second {
			t.Errorf("unexpected settings: %+v", got)
		}
		if len(got.Projects) != 1 || got.Projects[0].Writers[0] != "w" {
			t.Errorf("projects not restored: %+v", got.Projects)
		}
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*ServerSection)
		}{
			{"port too large", func(s *ServerSection) { s.Port = 70000 }},
			{"zero lock timeout", func(s *ServerSection) { s.LockTimeout = 0 }},
			{"empty project id", func(s *ServerSection) { s.Projects = []types.Project{{}} }},
			{"duplicate project", func(s *ServerSection) { s.Projects = []types.Project{{ID: "a"}, {ID: "a"}} }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				s := NewServerSection()
				tt.mutate(s)
				if err := s.Validate(); err == nil {
					t.Error("expected validation error")
				}
			})
		}
	})

	t.Run("rejects wrong types", func(t *testing.T) {
		s := NewServerSection()
		if err := s.SetData(map[string]interface{}{"host": 12}); err == nil {
			t.Error("expected error for numeric host")
		}
		if err := s.SetData(map[string]interface{}{"lock_timeout": "soon"}); err == nil {
			t.Error("expected error for bad duration")
		}
		if err := s.SetData(map[string]interface{}{"projects": "p1"}); err == nil {
			t.Error("expected error for non-list projects")
		}
	})

	t.Run("reset restores defaults", func(t *testing.T) {
		s := NewServerSection()
		s.Host = "0.0.0.0"
		s.Projects = []types.Project{{ID: "x"}}
		s.Reset()
		if s.Host != defaultServerHost || s.Projects != nil {
			t.Errorf("reset incomplete: %+v", s.Snapshot())
		}
	})
}

func TestBackendSection(t *testing.T) {
	t.Run("roles accept list or comma string", func(t *testing.T) {
		s := NewBackendSection()
		if err := s.SetData(map[string]interface{}{"roles": []interface{}{"a", "b"}}); err != nil {
			t.Fatalf("SetData failed: %v", err)
		}
		if len(s.Roles) != 2 {
			t.Errorf("expected 2 roles, got %v", s.Roles)
		}
		if err := s.SetData(map[string]interface{}{"roles": "x, y ,"}); err != nil {
			t.Fatalf("SetData failed: %v", err)
		}
		if len(s.Roles) != 2 || s.Roles[1] != "y" {
			t.Errorf("expected [x y], got %v", s.Roles)
		}
	})

	t.Run("validation", func(t *testing.T) {
		s := NewBackendSection()
		if err := s.Validate(); err != nil {
			t.Fatalf("defaults should validate: %v", err)
		}
		s.BaseURL = "localhost"
		if err := s.Validate(); err == nil {
			t.Error("expected error for relative base URL")
		}
		s.Reset()
		s.Project = ""
		if err := s.Validate(); err == nil {
			t.Error("expected error for empty project")
		}
	})

	t.Run("timeout accepts nanoseconds", func(t *testing.T) {
		s := NewBackendSection()
		if err := s.SetData(map[string]interface{}{"timeout": float64(time.Second)}); err != nil {
			t.Fatalf("SetData failed: %v", err)
		}
		if s.Timeout != time.Second {
			t.Errorf("expected 1s, got %s", s.Timeout)
		}
	})
}
