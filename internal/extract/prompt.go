// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/modelcard/internal/index"
	"github.com/pdiddy/modelcard/internal/schema"
)

// fieldPromptTmpl asks for a single model card field from retrieved context.
var fieldPromptTmpl = template.Must(template.New("field").Parse(`You are an expert scientific software auditor. Using only the context below, determine the value of the model card field "{{.Name}}".

Field description: {{.Description}}
Expected value: {{if .List}}a JSON array of strings{{else}}a single string{{end}}.
{{- if .Allowed}}
IMPORTANT: the only acceptable values are {{range $i, $v := .Allowed}}{{if $i}}, {{end}}"{{$v}}"{{end}}. Use null if none of them apply.
{{- end}}

Return a JSON object with exactly one key, "{{.Name}}". If the context does not contain this information, set its value to null. Do not include any text outside the JSON object.

Context:
{{range .Passages}}
--- source: {{.Source}}
{{.Text}}
{{end}}`))

type promptData struct {
	Name        string
	Description string
	List        bool
	Allowed     []string
	Passages    []index.Passage
}

func renderPrompt(f schema.FieldSpec, passages []index.Passage) (string, error) {
	var buf bytes.Buffer
	err := fieldPromptTmpl.Execute(&buf, promptData{
		Name:        f.Name,
		Description: f.Description,
		List:        f.Shape == schema.ListOfScalar,
		Allowed:     f.Allowed,
		Passages:    passages,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// responseSchema is the JSON schema for a single-key response object.
func responseSchema(f schema.FieldSpec) map[string]any {
	item := map[string]any{"type": "string"}
	if f.HasVocabulary() {
		item["enum"] = f.Allowed
	}

	var value map[string]any
	if f.Shape == schema.ListOfScalar {
		value = map[string]any{"type": []string{"array", "null"}, "items": item}
	} else {
		value = map[string]any{"type": []string{"string", "null"}}
		if f.HasVocabulary() {
			value["enum"] = append(append([]any{}, toAny(f.Allowed)...), nil)
		}
	}
	value["description"] = f.Description

	return map[string]any{
		"type":                 "object",
		"properties":           map[string]any{f.Name: value},
		"required":             []string{f.Name},
		"additionalProperties": false,
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
