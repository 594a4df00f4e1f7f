package tui

import (
	"context"
	"encoding/json"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/dokimion/pkg/attribute"
	"github.com/entrhq/dokimion/pkg/backend"
	"github.com/entrhq/dokimion/pkg/types"
)

// attributesLoadedMsg carries the project attribute list used for the
// duplicate-name check.
type attributesLoadedMsg struct {
	attrs []types.Attribute
	err   error
}

// projectLoadedMsg carries the project descriptor fetched on open.
type projectLoadedMsg struct {
	project *types.Project
	err     error
}

// attributeSavedMsg is the outcome of one POST.
type attributeSavedMsg struct {
	saved types.Attribute
	err   error
}

// attributeRemovedMsg is the outcome of one DELETE. removed is the attribute
// as it was when the request was issued.
type attributeRemovedMsg struct {
	removed types.Attribute
	err     error
}

// copiedMsg reports a clipboard write.
type copiedMsg struct {
	err error
}

func (m Model) requestContext() (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), m.timeout)
}

func (m Model) listAttributesCmd() tea.Cmd {
	b, project := m.backend, m.project
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()

		var attrs []types.Attribute
		err := b.Get(ctx, backend.AttributesPath(project), &attrs)
		return attributesLoadedMsg{attrs: attrs, err: err}
	}
}

func (m Model) hydrateCmd() tea.Cmd {
	b, project := m.backend, m.project
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()

		p, err := attribute.FetchProject(ctx, b, project)
		return projectLoadedMsg{project: p, err: err}
	}
}

func (m Model) saveCmd(attr types.Attribute) tea.Cmd {
	b, project := m.backend, m.project
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()

		saved, err := attribute.Save(ctx, b, project, attr)
		return attributeSavedMsg{saved: saved, err: err}
	}
}

func (m Model) removeCmd(attr types.Attribute) tea.Cmd {
	b, project := m.backend, m.project
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()

		err := b.Delete(ctx, backend.AttributePath(project, attr.ID))
		return attributeRemovedMsg{removed: attr, err: err}
	}
}

func (m Model) copyCmd(attr types.Attribute) tea.Cmd {
	write := m.copy
	return func() tea.Msg {
		data, err := json.MarshalIndent(attr, "", "  ")
		if err != nil {
			return copiedMsg{err: err}
		}
		return copiedMsg{err: write(string(data))}
	}
}

// DefaultTimeout bounds each backend call issued by the editor.
const DefaultTimeout = 30 * time.Second
