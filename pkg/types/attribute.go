package types

import (
	"encoding/json"
	"strings"
)

// KeyValue is a single key/value pair of an attribute.
// Position inside Attribute.AttrValues is preserved for display and removal.
type KeyValue struct {
	Key   string `json:"key" validate:"max=256"`
	Value string `json:"value" validate:"max=4096"`
}

// Attribute is a named, user-defined metadata entry on a project.
//
// ID is empty for an attribute that has not been persisted yet; the backend
// assigns it on creation.
type Attribute struct {
	ID         string     `json:"-"`
	Name       string     `json:"name" validate:"required,max=256"`
	AttrValues []KeyValue `json:"attrValues" validate:"dive"`

	// Bookkeeping maintained by the service layer
	CreatedBy        string `json:"createdBy,omitempty"`
	CreatedTime      int64  `json:"createdTime,omitempty"`
	LastModifiedBy   string `json:"lastModifiedBy,omitempty"`
	LastModifiedTime int64  `json:"lastModifiedTime,omitempty"`
}

// attributeJSON mirrors Attribute with a nullable id so that an unsaved
// attribute serialises as {"id":null,...}.
type attributeJSON struct {
	ID *string `json:"id"`
	attributeFields
}

type attributeFields Attribute

// MarshalJSON encodes an empty ID as null.
func (a Attribute) MarshalJSON() ([]byte, error) {
	out := attributeJSON{attributeFields: attributeFields(a)}
	if a.ID != "" {
		id := a.ID
		out.ID = &id
	}
	if out.AttrValues == nil {
		out.AttrValues = []KeyValue{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts a null or missing id.
func (a *Attribute) UnmarshalJSON(data []byte) error {
	var in attributeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*a = Attribute(in.attributeFields)
	if in.ID != nil {
		a.ID = *in.ID
	}
	return nil
}

// EmptyAttribute returns the reset sentinel {id:null, name:"", attrValues:[]}.
// Every call returns an independent value.
func EmptyAttribute() Attribute {
	return Attribute{AttrValues: []KeyValue{}}
}

// IsPersisted reports whether the backend has assigned an ID.
func (a Attribute) IsPersisted() bool {
	return a.ID != ""
}

// Clone returns a deep copy of the attribute.
func (a Attribute) Clone() Attribute {
	c := a
	c.AttrValues = make([]KeyValue, len(a.AttrValues))
	copy(c.AttrValues, a.AttrValues)
	return c
}

// SameName reports whether two attribute names are equal ignoring case.
func SameName(a, b string) bool {
	return strings.ToLower(a) == strings.ToLower(b)
}

// ContainsName reports whether any attribute in attrs has the given name,
// compared case-insensitively.
func ContainsName(attrs []Attribute, name string) bool {
	for _, attr := range attrs {
		if SameName(attr.Name, name) {
			return true
		}
	}
	return false
}

// Project is the project descriptor returned by GET {project}/project.
type Project struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Readers     []string    `json:"readers,omitempty"`
	Writers     []string    `json:"writers,omitempty"`
	Attributes  []Attribute `json:"attributes"`
}
