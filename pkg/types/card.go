// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the modelcard pipeline:
// run configuration, ingested documents, the finished ModelCard, and the
// per-run RunContext threaded through every stage.
package types

// ModelCard is the finalized metadata record describing a scientific
// software artifact. Every schema field has exactly one entry. List-shaped
// fields are always sequences; vocabulary fields hold only allowed values.
type ModelCard struct {
	CapabilityName            string   `json:"capability_name" yaml:"capability_name"`
	BriefDescription          string   `json:"brief_description" yaml:"brief_description"`
	SystemsCovered            string   `json:"systems_covered" yaml:"systems_covered"`
	ContactName               string   `json:"contact_name" yaml:"contact_name"`
	ContactEmail              string   `json:"contact_email" yaml:"contact_email"`
	KeyContributors           []string `json:"key_contributors" yaml:"key_contributors"`
	DOI                       string   `json:"doi" yaml:"doi"`
	ComputationalRequirements string   `json:"computational_requirements" yaml:"computational_requirements"`
	SponsoringProjects        []string `json:"sponsoring_projects" yaml:"sponsoring_projects"`
	Figure                    string   `json:"figure" yaml:"figure"`
	FigureCaption             string   `json:"figure_caption" yaml:"figure_caption"`
	SpatialResolution         []string `json:"spatial_resolution" yaml:"spatial_resolution"`
	GeographicScope           []string `json:"geographic_scope" yaml:"geographic_scope"`
	TemporalResolution        []string `json:"temporal_resolution" yaml:"temporal_resolution"`
	TemporalRange             []string `json:"temporal_range" yaml:"temporal_range"`
	InputVariables            []string `json:"input_variables" yaml:"input_variables"`
	OutputVariables           []string `json:"output_variables" yaml:"output_variables"`
	Interdependencies         []string `json:"interdependencies" yaml:"interdependencies"`
	KeyPublications           []string `json:"key_publications" yaml:"key_publications"`
	Category                  []string `json:"category" yaml:"category"`
	License                   string   `json:"license" yaml:"license"`
	CurrentVersion            string   `json:"current_version" yaml:"current_version"`
}
