package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/dokimion/pkg/types"
)

func TestSaveAll(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and updates in order", func(t *testing.T) {
		svc := newTestService()
		existing, err := svc.Save(ctx, alice, "demo", types.Attribute{Name: "Color"})
		require.NoError(t, err)

		existing.Name = "Colour"
		saved, err := svc.SaveAll(ctx, alice, "demo", []types.Attribute{
			existing,
			{Name: "Size"},
		})
		require.NoError(t, err)
		require.Len(t, saved, 2)
		assert.Equal(t, existing.ID, saved[0].ID)
		assert.Equal(t, "Colour", saved[0].Name)
		assert.NotEmpty(t, saved[1].ID)

		all, err := svc.FindAll(ctx, alice, "demo")
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("blank name rejects the whole batch", func(t *testing.T) {
		svc := newTestService()
		_, err := svc.SaveAll(ctx, alice, "demo", []types.Attribute{{Name: "Size"}, {Name: " "}})
		require.True(t, IsValidation(err))

		n, err := svc.Count(ctx, alice, "demo", Filter{})
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("stops at the first conflict", func(t *testing.T) {
		svc := newTestService()
		saved, err := svc.SaveAll(ctx, alice, "demo", []types.Attribute{
			{Name: "Size"}, {Name: "size"}, {Name: "Weight"},
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.True(t, verr.Conflict)
		require.Len(t, saved, 1)
		assert.Equal(t, "Size", saved[0].Name)
	})

	t.Run("requires write access", func(t *testing.T) {
		svc := newTestService(restricted())
		_, err := svc.SaveAll(ctx, bob, "secure", []types.Attribute{{Name: "Size"}})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestDeleteFiltered(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(restricted())

	for _, name := range []string{"Color", "Size", "Colour"} {
		_, err := svc.Save(ctx, alice, "secure", types.Attribute{Name: name})
		require.NoError(t, err)
	}

	_, err := svc.DeleteFiltered(ctx, bob, "secure", Filter{NamePattern: "col*"})
	require.ErrorIs(t, err, ErrAccessDenied)

	deleted, err := svc.DeleteFiltered(ctx, alice, "secure", Filter{NamePattern: "col*"})
	require.NoError(t, err)
	assert.Len(t, deleted, 2)

	left, err := svc.FindAll(ctx, alice, "secure")
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "Size", left[0].Name)

	none, err := svc.DeleteFiltered(ctx, alice, "secure", Filter{NamePattern: "col*"})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = svc.DeleteFiltered(ctx, alice, "secure", Filter{NamePattern: "[unclosed"})
	assert.True(t, IsValidation(err))
}

func TestDelete_WaitsForEntityLock(t *testing.T) {
	ctx := context.Background()
	svc := NewAttributeService(NewMemoryRepository(), NewMemoryProjects(), WithLockTTL(20*time.Millisecond))

	saved, err := svc.Save(ctx, alice, "demo", types.Attribute{Name: "Color"})
	require.NoError(t, err)

	// an update in flight holds the entity lock
	unlock, err := svc.locks.lock(ctx, entityKey("demo", saved.ID), 0)
	require.NoError(t, err)

	err = svc.Delete(ctx, alice, "demo", saved.ID)
	require.ErrorIs(t, err, ErrLockTimeout)
	_, err = svc.FindOne(ctx, alice, "demo", saved.ID)
	require.NoError(t, err, "attribute survives while the lock is held")

	unlock()
	require.NoError(t, svc.Delete(ctx, alice, "demo", saved.ID))
}

func TestMemoryProjects_UnknownIsNotStored(t *testing.T) {
	projects := NewMemoryProjects(types.Project{ID: "demo"})
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		p, err := projects.FindOne(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, p.ID)
		assert.Empty(t, p.Readers)
		assert.Empty(t, p.Writers)
	}
	assert.Len(t, projects.projects, 1)

	seeded, err := projects.FindOne(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, "demo", seeded.Name)
}
