package tui

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/dokimion/pkg/attribute"
	"github.com/entrhq/dokimion/pkg/backend"
	"github.com/entrhq/dokimion/pkg/types"
)

type call struct {
	method string
	path   string
	body   any
}

type fakeBackend struct {
	calls     []call
	existing  []types.Attribute
	project   types.Project
	saved     types.Attribute
	postErr   error
	deleteErr error
}

func (b *fakeBackend) Get(_ context.Context, path string, out any) error {
	b.calls = append(b.calls, call{method: "GET", path: path})
	if path == backend.ProjectPath("demo") {
		return roundTrip(b.project, out)
	}
	return roundTrip(b.existing, out)
}

func (b *fakeBackend) Post(_ context.Context, path string, body any, out any) error {
	b.calls = append(b.calls, call{method: "POST", path: path, body: body})
	if b.postErr != nil {
		return b.postErr
	}
	return roundTrip(b.saved, out)
}

func (b *fakeBackend) Delete(_ context.Context, path string) error {
	b.calls = append(b.calls, call{method: "DELETE", path: path})
	return b.deleteErr
}

func roundTrip(in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// run executes cmd and feeds every resulting message back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = run(t, m, c)
		}
		return m
	case tea.QuitMsg, nil:
		return m
	default:
		next, cmd := m.Update(msg)
		return run(t, next.(Model), cmd)
	}
}

func press(t *testing.T, m Model, k tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(Model), cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

func newModel(b *fakeBackend, attr types.Attribute, edit bool) Model {
	return New(Config{
		Backend:   b,
		Project:   "demo",
		Attribute: attr,
		Edit:      edit,
		Copy:      func(string) error { return nil },
	})
}

func TestInit_ListsAndHydrates(t *testing.T) {
	b := &fakeBackend{
		existing: []types.Attribute{{ID: "a1", Name: "Size", AttrValues: []types.KeyValue{}}},
		project:  types.Project{ID: "demo", Name: "Demo project"},
	}

	t.Run("new attribute skips hydration", func(t *testing.T) {
		b.calls = nil
		m := newModel(b, types.EmptyAttribute(), false)
		m = run(t, m, m.Init())

		require.Len(t, b.calls, 1)
		assert.Equal(t, "demo/attribute", b.calls[0].path)
		require.Len(t, m.Form().ProjectAttributes, 1)
		assert.Nil(t, m.Form().Project)
	})

	t.Run("persisted attribute loads the project", func(t *testing.T) {
		b.calls = nil
		m := newModel(b, types.Attribute{ID: "a1", Name: "Size"}, true)
		m = run(t, m, m.Init())

		require.Len(t, b.calls, 2)
		assert.Equal(t, "demo/project", b.calls[1].path)
		require.NotNil(t, m.Form().Project)
		assert.Equal(t, "Demo project", m.Form().Project.Name)
		assert.Contains(t, m.View(), "Demo project")
	})
}

func TestEditing(t *testing.T) {
	m := newModel(&fakeBackend{}, types.EmptyAttribute(), false)

	m = typeText(t, m, "Color")
	assert.Equal(t, "Color", m.Form().Attribute.Name)

	m, _ = press(t, m, tea.KeyCtrlN)
	require.Len(t, m.Form().Attribute.AttrValues, 1)
	assert.Equal(t, 1, m.focus, "new pair key is focused")

	m = typeText(t, m, "hex")
	m, _ = press(t, m, tea.KeyTab)
	m = typeText(t, m, "#fff")
	assert.Equal(t, []types.KeyValue{{Key: "hex", Value: "#fff"}}, m.Form().Attribute.AttrValues)

	m, _ = press(t, m, tea.KeyCtrlN)
	m = typeText(t, m, "rgb")
	require.Len(t, m.Form().Attribute.AttrValues, 2)

	// drop the first pair while its value is focused
	m.setFocus(2)
	m, _ = press(t, m, tea.KeyCtrlD)
	assert.Equal(t, []types.KeyValue{{Key: "rgb"}}, m.Form().Attribute.AttrValues)
	assert.Equal(t, "rgb", m.pairInputs[0][0].Value())
}

func TestFocusWraps(t *testing.T) {
	m := newModel(&fakeBackend{}, types.Attribute{Name: "Color", AttrValues: []types.KeyValue{{Key: "k", Value: "v"}}}, true)

	assert.Equal(t, 0, m.focus)
	m, _ = press(t, m, tea.KeyShiftTab)
	assert.Equal(t, 2, m.focus)
	m, _ = press(t, m, tea.KeyTab)
	assert.Equal(t, 0, m.focus)
}

func TestSave(t *testing.T) {
	t.Run("success resets and records the attribute", func(t *testing.T) {
		b := &fakeBackend{saved: types.Attribute{ID: "a2", Name: "Color", AttrValues: []types.KeyValue{}}}
		m := newModel(b, types.EmptyAttribute(), false)
		m = typeText(t, m, "Color")

		m, cmd := press(t, m, tea.KeyCtrlS)
		require.NotNil(t, cmd)
		assert.Equal(t, 1, m.pending)
		m = run(t, m, cmd)

		require.Len(t, b.calls, 1)
		assert.Equal(t, "POST", b.calls[0].method)
		assert.Equal(t, 0, m.pending)
		assert.Equal(t, types.EmptyAttribute(), m.Form().Attribute)
		assert.Equal(t, "", m.nameInput.Value())
		assert.True(t, types.ContainsName(m.attributes, "Color"))
		assert.Contains(t, m.View(), "Saved Color")
	})

	t.Run("duplicate name never reaches the backend", func(t *testing.T) {
		b := &fakeBackend{existing: []types.Attribute{{ID: "a1", Name: "color"}}}
		m := newModel(b, types.EmptyAttribute(), false)
		m = run(t, m, m.Init())
		b.calls = nil

		m = typeText(t, m, "Color")
		m, cmd := press(t, m, tea.KeyCtrlS)
		assert.Nil(t, cmd)
		assert.Empty(t, b.calls)
		assert.True(t, m.Form().HasError(attribute.ErrDuplicateName))
		assert.Contains(t, m.View(), "Duplicate Attribute")
	})

	t.Run("success after a rejected submit clears the error", func(t *testing.T) {
		b := &fakeBackend{
			existing: []types.Attribute{{ID: "a1", Name: "color"}},
			saved:    types.Attribute{ID: "a2", Name: "Colors", AttrValues: []types.KeyValue{}},
		}
		m := newModel(b, types.EmptyAttribute(), false)
		m = run(t, m, m.Init())

		m = typeText(t, m, "Color")
		m, _ = press(t, m, tea.KeyCtrlS)
		require.True(t, m.Form().HasError(attribute.ErrDuplicateName))

		m = typeText(t, m, "s")
		m, cmd := press(t, m, tea.KeyCtrlS)
		m = run(t, m, cmd)

		assert.Equal(t, "", m.Form().ErrorMessage())
		view := m.View()
		assert.Contains(t, view, "Saved Colors")
		assert.NotContains(t, view, "Duplicate Attribute")
	})

	t.Run("backend failure keeps edits", func(t *testing.T) {
		b := &fakeBackend{postErr: &backend.StatusError{Code: 500}}
		m := newModel(b, types.EmptyAttribute(), false)
		m = typeText(t, m, "Color")

		m, cmd := press(t, m, tea.KeyCtrlS)
		m = run(t, m, cmd)

		assert.Equal(t, "Color", m.Form().Attribute.Name)
		assert.Equal(t, "Couldn't save attributes: request failed with status 500", m.Form().ErrorMessage())
	})
}

func TestRemove(t *testing.T) {
	t.Run("unsaved attribute", func(t *testing.T) {
		b := &fakeBackend{}
		m := newModel(b, types.Attribute{Name: "Color"}, false)

		m, cmd := press(t, m, tea.KeyCtrlR)
		assert.Nil(t, cmd)
		assert.Empty(t, b.calls)
		assert.Contains(t, m.status, "not saved")
	})

	t.Run("persisted attribute", func(t *testing.T) {
		b := &fakeBackend{}
		m := newModel(b, types.Attribute{ID: "a1", Name: "Color"}, true)
		m.attributes = []types.Attribute{{ID: "a1", Name: "Color"}, {ID: "a2", Name: "Size"}}

		m, cmd := press(t, m, tea.KeyCtrlR)
		m = run(t, m, cmd)

		require.Len(t, b.calls, 1)
		assert.Equal(t, call{method: "DELETE", path: "demo/attribute/a1"}, b.calls[0])
		assert.Equal(t, []types.Attribute{{ID: "a2", Name: "Size"}}, m.attributes)
		assert.Equal(t, types.EmptyAttribute(), m.Form().Attribute)
	})

	t.Run("failure", func(t *testing.T) {
		b := &fakeBackend{deleteErr: errors.New("boom")}
		m := newModel(b, types.Attribute{ID: "a1", Name: "Color"}, true)

		m, cmd := press(t, m, tea.KeyCtrlR)
		m = run(t, m, cmd)

		assert.Equal(t, "a1", m.Form().Attribute.ID)
		assert.Equal(t, "Couldn't remove attribute: boom", m.Form().ErrorMessage())
	})
}

func TestCopy(t *testing.T) {
	var copied string
	m := New(Config{
		Backend:   &fakeBackend{},
		Project:   "demo",
		Attribute: types.Attribute{Name: "Color", AttrValues: []types.KeyValue{{Key: "hex", Value: "#fff"}}},
		Copy: func(s string) error {
			copied = s
			return nil
		},
	})

	m, cmd := press(t, m, tea.KeyCtrlY)
	m = run(t, m, cmd)

	assert.JSONEq(t, `{"id":null,"name":"Color","attrValues":[{"key":"hex","value":"#fff"}]}`, copied)
	assert.Equal(t, "Copied to clipboard", m.status)
}

func TestClose(t *testing.T) {
	m := newModel(&fakeBackend{}, types.Attribute{Name: "Color"}, false)
	m.form = m.form.WithError(errors.New("boom"))
	require.NotEmpty(t, m.Form().ErrorMessage())

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)

	assert.True(t, m.Closed())
	assert.Equal(t, types.EmptyAttribute(), m.Form().Attribute)
	assert.Empty(t, m.Form().ErrorMessage())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}
