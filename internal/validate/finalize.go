// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/pdiddy/modelcard/internal/schema"
	"github.com/pdiddy/modelcard/pkg/types"
)

// Record is the output of Finalize. Card is set only when the strict check
// passed; Fields always holds the completed record.
type Record struct {
	Card      *types.ModelCard
	Fields    map[string]any
	Validated bool
}

// Finalize fills absent fields with empty defaults (empty list or empty
// string) and validates the record against the schema. On failure the
// returned issues contain IssueSchemaValidation and Record.Card is nil.
// Issues recorded earlier by CoerceAndCheck are not affected.
func Finalize(s *schema.Schema, cleaned map[string]any) (Record, map[string]string) {
	fields := make(map[string]any, s.Len())
	for _, f := range s.Fields() {
		if v, ok := cleaned[f.Name]; ok && v != nil {
			fields[f.Name] = v
			continue
		}
		if f.Shape == schema.ListOfScalar {
			fields[f.Name] = []string{}
		} else {
			fields[f.Name] = ""
		}
	}
	for k, v := range cleaned {
		if _, known := fields[k]; !known {
			fields[k] = v
		}
	}

	issues := map[string]string{}
	card, err := checkStrict(s, fields)
	if err != nil {
		issues[IssueSchemaValidation] = err.Error()
		return Record{Fields: fields}, issues
	}
	return Record{Card: card, Fields: fields, Validated: true}, issues
}

// Validate runs CoerceAndCheck then Finalize and merges their issues.
func Validate(s *schema.Schema, raw map[string]any) (Record, map[string]string) {
	cleaned, issues := CoerceAndCheck(s, raw)
	rec, final := Finalize(s, cleaned)
	for k, v := range final {
		issues[k] = v
	}
	return rec, issues
}

// CUESchema renders the schema as a closed CUE definition named #Card.
func CUESchema(s *schema.Schema) string {
	var b strings.Builder
	b.WriteString("#Card: {\n")
	for _, f := range s.Fields() {
		fmt.Fprintf(&b, "\t%s: %s\n", f.Name, cueType(f))
	}
	b.WriteString("}\n")
	return b.String()
}

func cueType(f schema.FieldSpec) string {
	elem := "string"
	if f.HasVocabulary() {
		quoted := make([]string, len(f.Allowed))
		for i, v := range f.Allowed {
			quoted[i] = strconv.Quote(v)
		}
		elem = strings.Join(quoted, " | ")
	}
	if f.Shape == schema.ListOfScalar {
		return "[...(" + elem + ")]"
	}
	if f.HasVocabulary() {
		// Empty is the scalar default for a field no stage populated.
		return elem + ` | ""`
	}
	return elem
}

// checkStrict unifies fields with the closed #Card definition and decodes
// the result into a ModelCard.
func checkStrict(s *schema.Schema, fields map[string]any) (*types.ModelCard, error) {
	ctx := cuecontext.New()

	def := ctx.CompileString(CUESchema(s)).LookupPath(cue.ParsePath("#Card"))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("compiling card schema: %w", err)
	}

	data := ctx.Encode(fields)
	if err := data.Err(); err != nil {
		return nil, fmt.Errorf("encoding record: %s", cueerrors.Details(err, nil))
	}

	unified := def.Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("%s", strings.TrimSpace(cueerrors.Details(err, nil)))
	}

	var card types.ModelCard
	if err := unified.Decode(&card); err != nil {
		return nil, fmt.Errorf("decoding card: %w", err)
	}
	return &card, nil
}
