package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/entrhq/dokimion/pkg/logging"
	"github.com/entrhq/dokimion/pkg/types"
)

// DefaultLockTTL bounds how long an update waits for a concurrent update of
// the same attribute.
const DefaultLockTTL = time.Minute

// AttributeService applies access control and bookkeeping around a
// Repository.
type AttributeService struct {
	repo     Repository
	projects ProjectRepository
	locks    *entityLocks
	lockTTL  time.Duration
	logger   *logging.Logger
	now      func() time.Time
	newID    func() string
}

// Option configures an AttributeService.
type Option func(*AttributeService)

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(s *AttributeService) {
		s.lockTTL = ttl
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *AttributeService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces time.Now, used for bookkeeping timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *AttributeService) {
		s.now = now
	}
}

// NewAttributeService creates the service.
func NewAttributeService(repo Repository, projects ProjectRepository, opts ...Option) *AttributeService {
	s := &AttributeService{
		repo:     repo,
		projects: projects,
		locks:    newEntityLocks(),
		lockTTL:  DefaultLockTTL,
		logger:   logging.Nop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Project returns the project descriptor with its attributes.
func (s *AttributeService) Project(ctx context.Context, session Session, projectID string) (types.Project, error) {
	p, err := s.projects.FindOne(ctx, projectID)
	if err != nil {
		return types.Project{}, err
	}
	if !canRead(session, p) {
		return types.Project{}, accessDenied(session.Login, "read", projectID)
	}
	attrs, err := s.repo.Find(ctx, projectID, Filter{})
	if err != nil {
		return types.Project{}, err
	}
	p.Attributes = attrs
	return p, nil
}

// FindAll lists every attribute of the project.
func (s *AttributeService) FindAll(ctx context.Context, session Session, projectID string) ([]types.Attribute, error) {
	return s.FindFiltered(ctx, session, projectID, Filter{})
}

// FindFiltered lists the attributes matching filter.
func (s *AttributeService) FindFiltered(ctx context.Context, session Session, projectID string, filter Filter) ([]types.Attribute, error) {
	s.logger.Debugf("find attributes in %s (pattern=%q skip=%d limit=%d)", projectID, filter.NamePattern, filter.Skip, filter.Limit)

	if err := s.requireRead(ctx, session, projectID, projectID); err != nil {
		return nil, err
	}
	return s.repo.Find(ctx, projectID, filter)
}

// FindOne returns a single attribute.
func (s *AttributeService) FindOne(ctx context.Context, session Session, projectID, id string) (types.Attribute, error) {
	attr, err := s.repo.FindOne(ctx, projectID, id)
	if err != nil {
		return types.Attribute{}, err
	}
	if err := s.requireRead(ctx, session, projectID, id); err != nil {
		return types.Attribute{}, err
	}
	return attr, nil
}

// Count returns the number of matching attributes, or 0 when the session
// cannot read the project.
func (s *AttributeService) Count(ctx context.Context, session Session, projectID string, filter Filter) (int, error) {
	p, err := s.projects.FindOne(ctx, projectID)
	if err != nil {
		return 0, err
	}
	if !canRead(session, p) {
		return 0, nil
	}
	return s.repo.Count(ctx, projectID, filter)
}

// Save creates the attribute when it has no ID and updates it otherwise. An
// ID that is not stored yet creates the attribute under that ID.
func (s *AttributeService) Save(ctx context.Context, session Session, projectID string, attr types.Attribute) (types.Attribute, error) {
	if err := s.requireWrite(ctx, session, projectID, attr.ID, "save"); err != nil {
		return types.Attribute{}, err
	}
	return s.save(ctx, session, projectID, attr)
}

// SaveAll saves attrs in order after one access check. Every name is
// checked before anything is stored. The batch is not atomic: on the first
// failing save the attributes stored so far are returned with the error.
func (s *AttributeService) SaveAll(ctx context.Context, session Session, projectID string, attrs []types.Attribute) ([]types.Attribute, error) {
	if err := s.requireWrite(ctx, session, projectID, "", "save"); err != nil {
		return nil, err
	}
	for i, attr := range attrs {
		if strings.TrimSpace(attr.Name) == "" {
			return nil, &ValidationError{Message: fmt.Sprintf("attribute %d: attribute name is required", i)}
		}
	}

	saved := make([]types.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		stored, err := s.save(ctx, session, projectID, attr)
		if err != nil {
			return saved, err
		}
		saved = append(saved, stored)
	}
	return saved, nil
}

// Delete removes an attribute.
func (s *AttributeService) Delete(ctx context.Context, session Session, projectID, id string) error {
	if err := s.requireWrite(ctx, session, projectID, id, "delete"); err != nil {
		return err
	}
	if _, err := s.FindOne(ctx, session, projectID, id); err != nil {
		return err
	}
	if err := s.deleteLocked(ctx, projectID, id); err != nil {
		return err
	}
	s.logger.Infof("attribute %s deleted from %s by %s", id, projectID, session.Login)
	return nil
}

// DeleteFiltered removes every attribute matching filter and returns the
// removed IDs. Attributes deleted concurrently are skipped.
func (s *AttributeService) DeleteFiltered(ctx context.Context, session Session, projectID string, filter Filter) ([]string, error) {
	if err := s.requireWrite(ctx, session, projectID, projectID, "delete"); err != nil {
		return nil, err
	}
	matches, err := s.repo.Find(ctx, projectID, filter)
	if err != nil {
		return nil, err
	}

	deleted := make([]string, 0, len(matches))
	for _, attr := range matches {
		err := s.deleteLocked(ctx, projectID, attr.ID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return deleted, err
		}
		deleted = append(deleted, attr.ID)
	}
	s.logger.Infof("%d attributes matching %q deleted from %s by %s", len(deleted), filter.NamePattern, projectID, session.Login)
	return deleted, nil
}

// deleteLocked removes id while holding the lock update uses, so a
// concurrent update cannot store the attribute again afterwards.
func (s *AttributeService) deleteLocked(ctx context.Context, projectID, id string) error {
	unlock, err := s.locks.lock(ctx, entityKey(projectID, id), s.lockTTL)
	if err != nil {
		return err
	}
	defer unlock()
	return s.repo.Delete(ctx, projectID, id)
}

func (s *AttributeService) save(ctx context.Context, session Session, projectID string, attr types.Attribute) (types.Attribute, error) {
	if strings.TrimSpace(attr.Name) == "" {
		return types.Attribute{}, &ValidationError{Message: "attribute name is required"}
	}
	if attr.AttrValues == nil {
		attr.AttrValues = []types.KeyValue{}
	}

	if attr.ID == "" {
		return s.create(ctx, session, projectID, attr)
	}
	return s.update(ctx, session, projectID, attr)
}

func (s *AttributeService) create(ctx context.Context, session Session, projectID string, attr types.Attribute) (types.Attribute, error) {
	// serialises the duplicate-name check with concurrent creates
	unlock, err := s.locks.lock(ctx, projectID+"#create", s.lockTTL)
	if err != nil {
		return types.Attribute{}, err
	}
	defer unlock()

	if attr.ID != "" {
		exists, err := s.repo.Exists(ctx, projectID, attr.ID)
		if err != nil {
			return types.Attribute{}, err
		}
		if exists {
			return types.Attribute{}, &ValidationError{
				Message:  fmt.Sprintf("Entity with id [%s] already exists", attr.ID),
				Conflict: true,
			}
		}
	} else {
		attr.ID = s.newID()
	}

	existing, err := s.repo.Find(ctx, projectID, Filter{})
	if err != nil {
		return types.Attribute{}, err
	}
	if types.ContainsName(existing, attr.Name) {
		return types.Attribute{}, &ValidationError{Message: MessageDuplicateName, Conflict: true}
	}

	attr.CreatedTime = s.millis()
	attr.CreatedBy = session.Login
	return s.store(ctx, session, projectID, attr)
}

func (s *AttributeService) update(ctx context.Context, session Session, projectID string, attr types.Attribute) (types.Attribute, error) {
	unlock, err := s.locks.lock(ctx, entityKey(projectID, attr.ID), s.lockTTL)
	if err != nil {
		return types.Attribute{}, err
	}
	defer unlock()

	existing, err := s.repo.FindOne(ctx, projectID, attr.ID)
	if errors.Is(err, ErrNotFound) {
		// client-chosen id for a new attribute
		return s.create(ctx, session, projectID, attr)
	}
	if err != nil {
		return types.Attribute{}, err
	}
	if existing.LastModifiedTime > attr.LastModifiedTime {
		return types.Attribute{}, &ValidationError{Message: MessageLostUpdate}
	}

	attr.CreatedTime = existing.CreatedTime
	attr.CreatedBy = existing.CreatedBy
	return s.store(ctx, session, projectID, attr)
}

func (s *AttributeService) store(ctx context.Context, session Session, projectID string, attr types.Attribute) (types.Attribute, error) {
	attr.LastModifiedTime = s.millis()
	attr.LastModifiedBy = session.Login

	saved, err := s.repo.Save(ctx, projectID, attr)
	if err != nil {
		return types.Attribute{}, fmt.Errorf("failed to store attribute: %w", err)
	}
	s.logger.Infof("attribute %s (%s) saved in %s by %s", saved.ID, saved.Name, projectID, session.Login)
	return saved, nil
}

func (s *AttributeService) requireRead(ctx context.Context, session Session, projectID, id string) error {
	p, err := s.projects.FindOne(ctx, projectID)
	if err != nil {
		return err
	}
	if !canRead(session, p) {
		return accessDenied(session.Login, "read", id)
	}
	return nil
}

func (s *AttributeService) requireWrite(ctx context.Context, session Session, projectID, id, action string) error {
	p, err := s.projects.FindOne(ctx, projectID)
	if err != nil {
		return err
	}
	if !canWrite(session, p) {
		return accessDenied(session.Login, action, id)
	}
	return nil
}

func entityKey(projectID, id string) string {
	return projectID + "/" + id
}

func (s *AttributeService) millis() int64 {
	return s.now().UnixMilli()
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
