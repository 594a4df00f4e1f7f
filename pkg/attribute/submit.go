package attribute

import (
	"context"

	"github.com/entrhq/dokimion/pkg/backend"
	"github.com/entrhq/dokimion/pkg/types"
)

// Handlers are the callbacks reporting success to the owner of the form.
// Nil handlers are skipped.
type Handlers struct {
	// OnAttributeAdded receives the attribute returned by the backend
	OnAttributeAdded func(types.Attribute)

	// OnAttributeRemoved receives the attribute as it was before deletion
	OnAttributeRemoved func(types.Attribute)
}

// Logger is the subset of logging.Logger used for non-critical failures.
type Logger interface {
	Warnf(format string, v ...interface{})
}

// PrepareSubmit validates the form. When validation fails the returned form
// carries the error and ok is false; no backend call must be made. When ok
// is true, Attribute of the returned form is the payload to POST.
func (f Form) PrepareSubmit() (Form, bool) {
	if err := f.Validate(); err != nil {
		return f.WithError(err), false
	}
	return f, true
}

// ApplySaveResult folds the outcome of the POST into the form. On success
// the added handler runs and the attribute is reset. On failure the unsaved
// edits are kept and the error slot is set.
func (f Form) ApplySaveResult(saved types.Attribute, err error, h Handlers) Form {
	if err != nil {
		return f.WithError(&SaveFailedError{Reason: err})
	}
	if h.OnAttributeAdded != nil {
		h.OnAttributeAdded(saved)
	}
	return f.reset()
}

// Submit validates and, when valid, issues exactly one
// POST {project}/attribute with the current attribute.
func (f Form) Submit(ctx context.Context, b backend.Backend, project string, h Handlers) Form {
	next, ok := f.PrepareSubmit()
	if !ok {
		return next
	}
	saved, err := Save(ctx, b, project, next.Attribute)
	return next.ApplySaveResult(saved, err, h)
}

// Save posts attr to the backend and returns the stored attribute.
func Save(ctx context.Context, b backend.Backend, project string, attr types.Attribute) (types.Attribute, error) {
	var saved types.Attribute
	if err := b.Post(ctx, backend.AttributesPath(project), attr.Clone(), &saved); err != nil {
		return types.Attribute{}, err
	}
	return saved, nil
}

// PrepareRemove checks that the attribute can be deleted.
func (f Form) PrepareRemove() error {
	if !f.Attribute.IsPersisted() {
		return ErrNotPersisted
	}
	return nil
}

// ApplyRemoveResult folds the outcome of the DELETE into the form. removed is
// the attribute as it was when the delete was issued.
func (f Form) ApplyRemoveResult(removed types.Attribute, err error, h Handlers) Form {
	if err != nil {
		return f.WithError(&RemoveFailedError{Reason: err})
	}
	if h.OnAttributeRemoved != nil {
		h.OnAttributeRemoved(removed)
	}
	return f.reset()
}

// Remove issues DELETE {project}/attribute/{id} for a persisted attribute.
func (f Form) Remove(ctx context.Context, b backend.Backend, project string, h Handlers) (Form, error) {
	if err := f.PrepareRemove(); err != nil {
		return f, err
	}
	removed := f.Attribute.Clone()
	err := b.Delete(ctx, backend.AttributePath(project, removed.ID))
	return f.ApplyRemoveResult(removed, err, h), nil
}

// FetchProject loads the project descriptor.
func FetchProject(ctx context.Context, b backend.Backend, project string) (*types.Project, error) {
	var p types.Project
	if err := b.Get(ctx, backend.ProjectPath(project), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ApplyHydrateResult stores the fetched descriptor. Failures are logged and
// never reach the error slot.
func (f Form) ApplyHydrateResult(p *types.Project, err error, logger Logger) Form {
	if err != nil {
		if logger != nil {
			logger.Warnf("failed to load project descriptor: %v", err)
		}
		return f
	}
	next := f
	next.Project = p
	return next
}

// Hydrate fetches {project}/project when id is set and merges the result
// into the form.
func (f Form) Hydrate(ctx context.Context, b backend.Backend, project, id string, logger Logger) Form {
	if id == "" {
		return f
	}
	p, err := FetchProject(ctx, b, project)
	return f.ApplyHydrateResult(p, err, logger)
}
