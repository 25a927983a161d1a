// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSchemaShape(t *testing.T) {
	s := Default()
	require.Equal(t, 22, s.Len())

	names := s.Names()
	assert.Equal(t, FieldCapabilityName, names[0])
	assert.Equal(t, "current_version", names[len(names)-1])

	for _, f := range s.Fields() {
		assert.NotEmpty(t, f.Description, f.Name)
		assert.Equal(t, "N/A", f.Default, f.Name)
		if f.Fallback != "" {
			assert.True(t, f.Allows(f.Fallback), "fallback for %s must be in vocabulary", f.Name)
		}
	}
}

func TestNewDefaults(t *testing.T) {
	s := New(
		FieldSpec{Name: "a", Shape: Scalar},
		FieldSpec{Name: "b", Shape: Scalar, Default: "unknown"},
	)
	a, _ := s.Field("a")
	b, _ := s.Field("b")
	assert.Equal(t, NotAvailable, a.Default)
	assert.Equal(t, "unknown", b.Default)
}

func TestRequiredFields(t *testing.T) {
	var required []string
	for _, f := range Default().Fields() {
		if f.Required {
			required = append(required, f.Name)
		}
	}
	assert.Equal(t, []string{FieldCapabilityName, "brief_description", FieldCategory}, required)
}

func TestVocabularyFields(t *testing.T) {
	tests := []struct {
		name     string
		shape    Shape
		issue    string
		accept   string
		reject   string
		fallback string
	}{
		{FieldCompute, Scalar, "invalid_compute", "HPC", "Supercomputer", "None specified"},
		{FieldCategory, ListOfScalar, "invalid_category", "Energy", "Quantum", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := Default().Field(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.shape, f.Shape)
			assert.True(t, f.HasVocabulary())
			assert.Equal(t, tt.issue, f.VocabularyIssue())
			assert.True(t, f.Allows(tt.accept))
			assert.False(t, f.Allows(tt.reject))
			assert.Equal(t, tt.fallback, f.Fallback)
		})
	}
}

func TestFieldWithoutVocabularyAllowsAnything(t *testing.T) {
	f, ok := Default().Field("brief_description")
	require.True(t, ok)
	assert.False(t, f.HasVocabulary())
	assert.True(t, f.Allows("anything at all"))
	assert.Equal(t, "invalid_brief_description", f.VocabularyIssue())
}

func TestNewKeepsFirstDuplicate(t *testing.T) {
	s := New(
		FieldSpec{Name: "a", Description: "first"},
		FieldSpec{Name: "b"},
		FieldSpec{Name: "a", Description: "second"},
	)
	assert.Equal(t, []string{"a", "b"}, s.Names())
	f, _ := s.Field("a")
	assert.Equal(t, "first", f.Description)

	_, ok := s.Field("missing")
	assert.False(t, ok)
}

func TestFieldsReturnsCopy(t *testing.T) {
	s := New(FieldSpec{Name: "a"})
	fields := s.Fields()
	fields[0].Name = "mutated"
	assert.Equal(t, []string{"a"}, s.Names())
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "scalar", Scalar.String())
	assert.Equal(t, "list", ListOfScalar.String())
}
