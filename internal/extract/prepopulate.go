// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"github.com/pdiddy/modelcard/internal/schema"
	"github.com/pdiddy/modelcard/pkg/types"
)

// Prepopulate writes the fields derivable from source metadata into
// rc.Extracted and returns the set of fields that model output must not
// overwrite. The license line is seeded but left open to the model.
func Prepopulate(rc *types.RunContext) map[string]bool {
	locked := map[string]bool{}

	name := rc.Inputs.Name
	if name == "" {
		name = rc.Provenance.SourceID
	}
	if name != "" {
		rc.Extracted[schema.FieldCapabilityName] = name
		locked[schema.FieldCapabilityName] = true
	}

	if len(rc.Provenance.Contributors) > 0 {
		rc.Extracted[schema.FieldKeyContributors] = append([]string(nil), rc.Provenance.Contributors...)
		locked[schema.FieldKeyContributors] = true
	}

	if rc.Provenance.License != "" {
		if _, set := rc.Extracted[schema.FieldLicense]; !set {
			rc.Extracted[schema.FieldLicense] = rc.Provenance.License
		}
	}
	return locked
}
