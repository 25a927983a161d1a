// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schema is the registry of model card fields. Each FieldSpec
// declares the field's shape, description, default, and optional closed
// vocabulary. The registry is pure data shared read-only by every stage.
package schema

import "slices"

// Shape declares whether a field holds one value or an ordered sequence.
type Shape int

const (
	Scalar Shape = iota
	ListOfScalar
)

func (s Shape) String() string {
	if s == ListOfScalar {
		return "list"
	}
	return "scalar"
}

// FieldSpec describes one model card field.
type FieldSpec struct {
	Name        string
	Description string
	Shape       Shape

	// Default is the value the record starts with before extraction.
	// New sets it to NotAvailable when empty.
	Default string

	// Allowed is the closed vocabulary, or nil when any value is accepted.
	Allowed []string

	// Fallback replaces an out-of-vocabulary scalar value. It must be a
	// member of Allowed.
	Fallback string

	// IssueName names vocabulary issues (invalid_<IssueName>). Defaults to Name.
	IssueName string

	Required bool
}

// HasVocabulary reports whether the field is restricted to a closed set.
func (f FieldSpec) HasVocabulary() bool { return len(f.Allowed) > 0 }

// Allows reports whether v is in the field's vocabulary. Fields without a
// vocabulary allow everything.
func (f FieldSpec) Allows(v string) bool {
	return !f.HasVocabulary() || slices.Contains(f.Allowed, v)
}

// VocabularyIssue returns the issue key used for out-of-vocabulary values.
func (f FieldSpec) VocabularyIssue() string {
	if f.IssueName != "" {
		return "invalid_" + f.IssueName
	}
	return "invalid_" + f.Name
}

// NotAvailable is the declared default of a field with no explicit Default.
const NotAvailable = "N/A"

// Schema is the ordered set of FieldSpecs.
type Schema struct {
	fields []FieldSpec
	byName map[string]int
}

// New builds a Schema from fields in declaration order. Duplicate names
// keep the first declaration.
func New(fields ...FieldSpec) *Schema {
	s := &Schema{byName: make(map[string]int, len(fields))}
	for _, f := range fields {
		if _, dup := s.byName[f.Name]; dup {
			continue
		}
		if f.Default == "" {
			f.Default = NotAvailable
		}
		s.byName[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s
}

// Fields returns a copy of the field list in declaration order.
func (s *Schema) Fields() []FieldSpec {
	return slices.Clone(s.fields)
}

// Names returns the field names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	i, ok := s.byName[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.fields[i], true
}

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }
