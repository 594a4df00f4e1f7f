// Package tui is a terminal editor for a single project attribute, shown as
// a modal: a name field, a list of key/value pairs and the save/remove
// actions backed by the attribute server.
package tui

import (
	"errors"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/dokimion/pkg/attribute"
	"github.com/entrhq/dokimion/pkg/backend"
	"github.com/entrhq/dokimion/pkg/logging"
	"github.com/entrhq/dokimion/pkg/types"
)

// Config configures the editor.
type Config struct {
	Backend backend.Backend
	Project string

	// Attribute is the attribute to edit; leave it empty to create one
	Attribute types.Attribute
	Edit      bool

	Logger  *logging.Logger
	Timeout time.Duration

	// Copy writes to the system clipboard. Defaults to clipboard.WriteAll.
	Copy func(string) error
}

// Model is the bubbletea model of the attribute editor.
type Model struct {
	form       attribute.Form
	attributes []types.Attribute

	backend backend.Backend
	project string
	logger  *logging.Logger
	timeout time.Duration
	copy    func(string) error

	nameInput  textinput.Model
	pairInputs [][2]textinput.Model
	focus      int

	keys    keyMap
	help    help.Model
	pending int
	status  string
	closed  bool
	width   int
	height  int
}

// New creates the editor.
func New(cfg Config) Model {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	copyFn := cfg.Copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	attr := cfg.Attribute
	if attr.AttrValues == nil {
		attr.AttrValues = []types.KeyValue{}
	}

	m := Model{
		form:    attribute.New(attr, nil, cfg.Edit),
		backend: cfg.Backend,
		project: cfg.Project,
		logger:  logger,
		timeout: timeout,
		copy:    copyFn,
		keys:    defaultKeyMap(),
		help:    help.New(),
		width:   80,
	}
	m.syncInputs()
	return m
}

// Init lists the project attributes and, for a persisted attribute, loads
// the project descriptor.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.listAttributesCmd()}
	if m.form.Attribute.IsPersisted() {
		cmds = append(cmds, m.hydrateCmd())
	}
	return tea.Batch(cmds...)
}

// Form returns the current form state.
func (m Model) Form() attribute.Form {
	return m.form
}

// Closed reports whether the user dismissed the editor.
func (m Model) Closed() bool {
	return m.closed
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case attributesLoadedMsg:
		if msg.err != nil {
			m.logger.Warnf("failed to list attributes: %v", msg.err)
			return m, nil
		}
		m.attributes = msg.attrs
		m.form = m.form.WithProps(m.form.Attribute, m.attributes, m.form.Edit)
		return m, nil

	case projectLoadedMsg:
		m.form = m.form.ApplyHydrateResult(msg.project, msg.err, m.logger)
		return m, nil

	case attributeSavedMsg:
		m.pending--
		return m.applySaved(msg), nil

	case attributeRemovedMsg:
		m.pending--
		return m.applyRemoved(msg), nil

	case copiedMsg:
		if msg.err != nil {
			m.logger.Warnf("failed to copy attribute: %v", msg.err)
			m.status = "Copy failed"
		} else {
			m.status = "Copied to clipboard"
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		m.closed = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Close):
		m.form = m.form.Close()
		m.closed = true
		m.syncInputs()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Next):
		m.setFocus(m.focus + 1)
		return m, nil

	case key.Matches(msg, m.keys.Prev):
		m.setFocus(m.focus - 1)
		return m, nil

	case key.Matches(msg, m.keys.AddPair):
		m.form = m.form.AddKeyValue()
		m.syncInputs()
		m.setFocus(m.fieldCount() - 2)
		return m, nil

	case key.Matches(msg, m.keys.DropPair):
		pair, _, ok := m.focusedPair()
		if !ok {
			return m, nil
		}
		next, err := m.form.RemoveKeyValue(pair)
		if err != nil {
			return m, nil
		}
		m.form = next
		m.syncInputs()
		m.setFocus(m.focus)
		return m, nil

	case key.Matches(msg, m.keys.Save):
		return m.submit()

	case key.Matches(msg, m.keys.Remove):
		return m.remove()

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyCmd(m.form.Attribute.Clone())
	}

	return m.updateFocusedInput(msg)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	next, ok := m.form.PrepareSubmit()
	m.form = next
	if !ok {
		return m, nil
	}
	m.pending++
	m.status = ""
	return m, m.saveCmd(m.form.Attribute.Clone())
}

func (m Model) remove() (tea.Model, tea.Cmd) {
	if err := m.form.PrepareRemove(); err != nil {
		if errors.Is(err, attribute.ErrNotPersisted) {
			m.status = "Nothing to remove: the attribute is not saved yet"
		}
		return m, nil
	}
	m.pending++
	m.status = ""
	return m, m.removeCmd(m.form.Attribute.Clone())
}

func (m Model) applySaved(msg attributeSavedMsg) Model {
	var added *types.Attribute
	m.form = m.form.ApplySaveResult(msg.saved, msg.err, attribute.Handlers{
		OnAttributeAdded: func(a types.Attribute) { added = &a },
	})
	if added != nil {
		m.attributes = upsert(m.attributes, *added)
		m.form = m.form.WithProps(m.form.Attribute, m.attributes, false)
		m.status = "Saved " + added.Name
		m.syncInputs()
		m.setFocus(0)
	}
	return m
}

func (m Model) applyRemoved(msg attributeRemovedMsg) Model {
	var removed *types.Attribute
	m.form = m.form.ApplyRemoveResult(msg.removed, msg.err, attribute.Handlers{
		OnAttributeRemoved: func(a types.Attribute) { removed = &a },
	})
	if removed != nil {
		m.attributes = without(m.attributes, removed.ID)
		m.form = m.form.WithProps(m.form.Attribute, m.attributes, false)
		m.status = "Removed " + removed.Name
		m.syncInputs()
		m.setFocus(0)
	}
	return m
}

// updateFocusedInput forwards a key to the focused input and copies the new
// text into the form.
func (m Model) updateFocusedInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == 0 {
		m.nameInput, cmd = m.nameInput.Update(msg)
		if m.nameInput.Value() != m.form.Attribute.Name {
			m.form = m.form.SetName(m.nameInput.Value())
		}
		return m, cmd
	}

	pair, field, ok := m.focusedPair()
	if !ok {
		return m, nil
	}
	input := &m.pairInputs[pair][field]
	*input, cmd = input.Update(msg)

	var err error
	if field == 0 {
		m.form, err = m.form.SetKey(pair, input.Value())
	} else {
		m.form, err = m.form.SetValue(pair, input.Value())
	}
	if err != nil {
		m.logger.Debugf("ignored edit of pair %d: %v", pair, err)
	}
	return m, cmd
}

// syncInputs rebuilds the text inputs from the form, keeping the focus slot
// when it still exists.
func (m *Model) syncInputs() {
	m.nameInput = newInput("Attribute name", m.form.Attribute.Name)
	m.pairInputs = make([][2]textinput.Model, len(m.form.Attribute.AttrValues))
	for i, kv := range m.form.Attribute.AttrValues {
		m.pairInputs[i] = [2]textinput.Model{
			newInput("key", kv.Key),
			newInput("value", kv.Value),
		}
	}
	m.setFocus(m.focus)
}

// fieldCount is the name field plus two fields per pair.
func (m Model) fieldCount() int {
	return 1 + 2*len(m.pairInputs)
}

func (m *Model) setFocus(i int) {
	n := m.fieldCount()
	switch {
	case i < 0:
		i = n - 1
	case i >= n:
		i = 0
	}
	m.focus = i

	m.nameInput.Blur()
	for p := range m.pairInputs {
		m.pairInputs[p][0].Blur()
		m.pairInputs[p][1].Blur()
	}
	if i == 0 {
		m.nameInput.Focus()
		return
	}
	pair, field, _ := m.focusedPair()
	m.pairInputs[pair][field].Focus()
}

// focusedPair maps the focus slot to (pair index, 0 for key or 1 for value).
func (m Model) focusedPair() (pair, field int, ok bool) {
	if m.focus < 1 || m.focus >= m.fieldCount() {
		return 0, 0, false
	}
	return (m.focus - 1) / 2, (m.focus - 1) % 2, true
}

func newInput(placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.Prompt = ""
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.SetValue(value)
	return ti
}

func upsert(attrs []types.Attribute, attr types.Attribute) []types.Attribute {
	out := make([]types.Attribute, 0, len(attrs)+1)
	replaced := false
	for _, a := range attrs {
		if a.ID == attr.ID {
			out = append(out, attr)
			replaced = true
			continue
		}
		out = append(out, a)
	}
	if !replaced {
		out = append(out, attr)
	}
	return out
}

func without(attrs []types.Attribute, id string) []types.Attribute {
	out := make([]types.Attribute, 0, len(attrs))
	for _, a := range attrs {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return out
}
