// Package attribute implements the editing lifecycle of a single project
// attribute: local edits, the duplicate/empty-name checks, and the create and
// delete round trips against the backend.
//
// Form is a value type. Every transition returns a new Form and leaves the
// receiver untouched, so a caller holding the previous state never observes
// a later edit.
package attribute

import (
	"errors"

	"github.com/entrhq/dokimion/pkg/types"
)

// Form is the editable state of the attribute dialog.
type Form struct {
	// Attribute being edited
	Attribute types.Attribute

	// ProjectAttributes are the project's existing attributes, used only for
	// the duplicate-name check. Owned by the caller.
	ProjectAttributes []types.Attribute

	// Edit is true when an existing attribute is being edited; the
	// duplicate-name check is skipped in that case.
	Edit bool

	// Project holds the descriptor fetched by Hydrate, if any
	Project *types.Project

	// Err is the single error slot shown to the user. Last one wins.
	Err error
}

// New creates a form from the parent-supplied props.
func New(attr types.Attribute, projectAttributes []types.Attribute, edit bool) Form {
	return Form{}.WithProps(attr, projectAttributes, edit)
}

// WithProps replaces attribute, project attributes and edit flag together.
// Nothing from the previous attribute is merged in.
func (f Form) WithProps(attr types.Attribute, projectAttributes []types.Attribute, edit bool) Form {
	next := f
	next.Attribute = attr.Clone()
	next.ProjectAttributes = projectAttributes
	next.Edit = edit
	return next
}

// ErrorMessage is the text of the error slot, or "" when clear.
func (f Form) ErrorMessage() string {
	if f.Err == nil {
		return ""
	}
	return f.Err.Error()
}

// SetName sets the attribute name. No validation happens until submit.
func (f Form) SetName(name string) Form {
	next := f.clone()
	next.Attribute.Name = name
	return next
}

// SetKey sets the key of the i-th pair.
func (f Form) SetKey(i int, key string) (Form, error) {
	if !f.validIndex(i) {
		return f, ErrIndexOutOfRange
	}
	next := f.clone()
	next.Attribute.AttrValues[i].Key = key
	return next, nil
}

// SetValue sets the value of the i-th pair.
func (f Form) SetValue(i int, value string) (Form, error) {
	if !f.validIndex(i) {
		return f, ErrIndexOutOfRange
	}
	next := f.clone()
	next.Attribute.AttrValues[i].Value = value
	return next, nil
}

// AddKeyValue appends an empty pair.
func (f Form) AddKeyValue() Form {
	next := f.clone()
	next.Attribute.AttrValues = append(next.Attribute.AttrValues, types.KeyValue{})
	return next
}

// RemoveKeyValue removes the i-th pair; later pairs shift left by one.
// An invalid index leaves the form unchanged.
func (f Form) RemoveKeyValue(i int) (Form, error) {
	if !f.validIndex(i) {
		return f, ErrIndexOutOfRange
	}
	next := f.clone()
	values := next.Attribute.AttrValues
	next.Attribute.AttrValues = append(values[:i], values[i+1:]...)
	return next, nil
}

// Validate runs the submit checks in order: duplicate name (new attributes
// only), then empty name.
func (f Form) Validate() error {
	duplicate := types.ContainsName(f.ProjectAttributes, f.Attribute.Name)
	if duplicate && !f.Edit {
		return ErrDuplicateName
	}
	if f.Attribute.Name == "" {
		return ErrEmptyName
	}
	return nil
}

// Close discards unsaved edits and clears the error.
func (f Form) Close() Form {
	next := f
	next.Attribute = types.EmptyAttribute()
	next.Err = nil
	return next
}

// WithError stores err in the error slot.
func (f Form) WithError(err error) Form {
	next := f
	next.Err = err
	return next
}

// HasError reports whether the error slot holds target (errors.Is semantics).
func (f Form) HasError(target error) bool {
	return errors.Is(f.Err, target)
}

// reset replaces the attribute with the empty sentinel after a successful
// round trip. An earlier error no longer applies and is cleared.
func (f Form) reset() Form {
	next := f
	next.Attribute = types.EmptyAttribute()
	next.Err = nil
	return next
}

func (f Form) validIndex(i int) bool {
	return i >= 0 && i < len(f.Attribute.AttrValues)
}

// clone copies the form so the key/value slice is not shared.
func (f Form) clone() Form {
	next := f
	next.Attribute = f.Attribute.Clone()
	return next
}
