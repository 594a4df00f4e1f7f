package service

import (
	"context"
	"sync"

	"github.com/entrhq/dokimion/pkg/types"
)

// ProjectRepository resolves project descriptors.
type ProjectRepository interface {
	FindOne(ctx context.Context, projectID string) (types.Project, error)
}

// MemoryProjects holds seeded projects. An unknown project resolves to an
// open descriptor (no readers or writers) that is not stored, so lookups of
// arbitrary names never grow the set.
type MemoryProjects struct {
	mu       sync.RWMutex
	projects map[string]types.Project
}

// NewMemoryProjects creates a project repository seeded with projects.
func NewMemoryProjects(projects ...types.Project) *MemoryProjects {
	m := &MemoryProjects{projects: make(map[string]types.Project)}
	for _, p := range projects {
		m.Put(p)
	}
	return m
}

// Put stores or replaces a project descriptor.
func (m *MemoryProjects) Put(p types.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.Name == "" {
		p.Name = p.ID
	}
	m.projects[p.ID] = p
}

// FindOne returns the project, or an open descriptor when it is not seeded.
func (m *MemoryProjects) FindOne(ctx context.Context, projectID string) (types.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[projectID]
	if !ok {
		return types.Project{ID: projectID, Name: projectID}, nil
	}
	p.Readers = append([]string(nil), p.Readers...)
	p.Writers = append([]string(nil), p.Writers...)
	return p, nil
}

// canRead reports whether login may read the project.
func canRead(s Session, p types.Project) bool {
	if s.Admin() {
		return true
	}
	if len(p.Readers) == 0 {
		return true
	}
	return contains(p.Readers, s.Login) || contains(p.Writers, s.Login)
}

// canWrite reports whether login may modify the project's entities.
func canWrite(s Session, p types.Project) bool {
	if s.Admin() {
		return true
	}
	if len(p.Writers) == 0 {
		return true
	}
	return contains(p.Writers, s.Login)
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
