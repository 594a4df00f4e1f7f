package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gobwas/glob"

	"github.com/entrhq/dokimion/pkg/types"
)

// Filter narrows a listing. NamePattern is a glob ("*", "?", "[a-z]", "{a,b}")
// matched against attribute names ignoring case. A zero Limit means no limit.
type Filter struct {
	NamePattern string
	Skip        int
	Limit       int
}

// matcher compiles the name pattern. A nil glob matches everything.
func (f Filter) matcher() (glob.Glob, error) {
	if f.NamePattern == "" {
		return nil, nil
	}
	g, err := glob.Compile(strings.ToLower(f.NamePattern))
	if err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid name pattern %q: %v", f.NamePattern, err)}
	}
	return g, nil
}

// Repository stores attributes per project.
type Repository interface {
	FindOne(ctx context.Context, project, id string) (types.Attribute, error)
	Find(ctx context.Context, project string, filter Filter) ([]types.Attribute, error)
	Save(ctx context.Context, project string, attr types.Attribute) (types.Attribute, error)
	Delete(ctx context.Context, project, id string) error
	Exists(ctx context.Context, project, id string) (bool, error)
	Count(ctx context.Context, project string, filter Filter) (int, error)
}

// MemoryRepository is a process-local Repository. Listings keep insertion
// order.
type MemoryRepository struct {
	mu       sync.RWMutex
	projects map[string]*projectAttributes
}

type projectAttributes struct {
	byID  map[string]types.Attribute
	order []string
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{projects: make(map[string]*projectAttributes)}
}

// FindOne returns a copy of the stored attribute or ErrNotFound.
func (r *MemoryRepository) FindOne(ctx context.Context, project, id string) (types.Attribute, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[project]
	if !ok {
		return types.Attribute{}, ErrNotFound
	}
	attr, ok := p.byID[id]
	if !ok {
		return types.Attribute{}, ErrNotFound
	}
	return attr.Clone(), nil
}

// Find returns copies of the attributes matching filter.
func (r *MemoryRepository) Find(ctx context.Context, project string, filter Filter) ([]types.Attribute, error) {
	g, err := filter.matcher()
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []types.Attribute{}
	p, ok := r.projects[project]
	if !ok {
		return result, nil
	}

	skipped := 0
	for _, id := range p.order {
		attr := p.byID[id]
		if g != nil && !g.Match(strings.ToLower(attr.Name)) {
			continue
		}
		if skipped < filter.Skip {
			skipped++
			continue
		}
		result = append(result, attr.Clone())
		if filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
	}
	return result, nil
}

// Save inserts or replaces the attribute with attr.ID, which must be set.
func (r *MemoryRepository) Save(ctx context.Context, project string, attr types.Attribute) (types.Attribute, error) {
	if attr.ID == "" {
		return types.Attribute{}, fmt.Errorf("cannot store attribute without id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[project]
	if !ok {
		p = &projectAttributes{byID: make(map[string]types.Attribute)}
		r.projects[project] = p
	}
	if _, exists := p.byID[attr.ID]; !exists {
		p.order = append(p.order, attr.ID)
	}
	p.byID[attr.ID] = attr.Clone()
	return attr.Clone(), nil
}

// Delete removes the attribute or returns ErrNotFound.
func (r *MemoryRepository) Delete(ctx context.Context, project, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[project]
	if !ok {
		return ErrNotFound
	}
	if _, exists := p.byID[id]; !exists {
		return ErrNotFound
	}
	delete(p.byID, id)
	for i, existing := range p.order {
		if existing == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return nil
}

// Exists reports whether an attribute with id is stored.
func (r *MemoryRepository) Exists(ctx context.Context, project, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[project]
	if !ok {
		return false, nil
	}
	_, exists := p.byID[id]
	return exists, nil
}

// Count returns the number of attributes matching the filter, ignoring
// Skip and Limit.
func (r *MemoryRepository) Count(ctx context.Context, project string, filter Filter) (int, error) {
	filter.Skip, filter.Limit = 0, 0
	attrs, err := r.Find(ctx, project, filter)
	if err != nil {
		return 0, err
	}
	return len(attrs), nil
}
