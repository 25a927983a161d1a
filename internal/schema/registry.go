// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package schema

// Field names referenced outside the registry.
const (
	FieldCapabilityName  = "capability_name"
	FieldKeyContributors = "key_contributors"
	FieldDOI             = "doi"
	FieldCompute         = "computational_requirements"
	FieldKeyPublications = "key_publications"
	FieldCategory        = "category"
	FieldLicense         = "license"
)

// ComputeVocabulary lists accepted computational_requirements values.
var ComputeVocabulary = []string{"HPC", "Laptop", "None specified"}

// CategoryVocabulary lists accepted category tags.
var CategoryVocabulary = []string{
	"Atmosphere",
	"Physical Hydrology",
	"Water Management",
	"Wildfire",
	"Energy",
	"Multisectoral",
	"Land Use Land Cover",
	"Socioeconomics",
}

var defaultSchema = New(
	FieldSpec{Name: FieldCapabilityName, Shape: Scalar, Required: true,
		Description: "The primary name of the software, model, dataset, or tool."},
	FieldSpec{Name: "brief_description", Shape: Scalar, Required: true,
		Description: "A brief, one or two-sentence description of the software's main purpose and function. What are the typical uses? Who is currently using it?"},
	FieldSpec{Name: "systems_covered", Shape: Scalar,
		Description: "The real-world systems the model represents (e.g., energy systems, water resources, climate, ecosystems, land use, socioeconomics, machine learning models). List the main ones."},
	FieldSpec{Name: "contact_name", Shape: Scalar,
		Description: "The name of the primary contact person for the software, if specified."},
	FieldSpec{Name: "contact_email", Shape: Scalar,
		Description: "The email address of the primary contact person."},
	FieldSpec{Name: FieldKeyContributors, Shape: ListOfScalar,
		Description: "Names or GitHub handles of other significant contributors mentioned."},
	FieldSpec{Name: FieldDOI, Shape: Scalar,
		Description: "The current Digital Object Identifier (DOI) for citing the software, if available (check CITATION.cff or README)."},
	FieldSpec{Name: FieldCompute, Shape: Scalar,
		Allowed: ComputeVocabulary, Fallback: "None specified", IssueName: "compute",
		Description: "Hardware needed to run the software (e.g., Standard laptop, High-performance computing (HPC) cluster, GPU required)."},
	FieldSpec{Name: "sponsoring_projects", Shape: ListOfScalar,
		Description: "Projects or funding agencies that sponsored the development, if mentioned."},
	FieldSpec{Name: "figure", Shape: Scalar,
		Description: "Reference or URL to a key figure illustrating the software's structure or results, if described or linked in the text."},
	FieldSpec{Name: "figure_caption", Shape: Scalar,
		Description: "The caption associated with the key figure, if available in the text."},
	FieldSpec{Name: "spatial_resolution", Shape: ListOfScalar,
		Description: "The spatial resolutions (range of tested grid spacing or distance between resolved features) at which the model can operate (e.g., 1 km, 5 arcmin, 0.5 degrees). Return all that apply."},
	FieldSpec{Name: "geographic_scope", Shape: ListOfScalar,
		Description: "The geographic area the model covers or is applied to (e.g., Global, CONUS, specific region, point location). Mention both potential and current applications if specified."},
	FieldSpec{Name: "temporal_resolution", Shape: ListOfScalar,
		Description: "The time step or frequency of the model's calculations. Either: seconds, minutes, hourly, daily, monthly, annual, 5-year, or decadal. Return all that apply."},
	FieldSpec{Name: "temporal_range", Shape: ListOfScalar,
		Description: "The time period the model simulates. Either: historical, near-future, far-future, specific period. Return all that apply."},
	FieldSpec{Name: "input_variables", Shape: ListOfScalar,
		Description: "Key input data or variables required by the software. List major examples."},
	FieldSpec{Name: "output_variables", Shape: ListOfScalar,
		Description: "Key output data or results generated by the software. List major examples."},
	FieldSpec{Name: "interdependencies", Shape: ListOfScalar,
		Description: "Other models, software libraries, or specific datasets the software relies on or commonly interacts with (e.g., E3SM, GCAM, specific weather data)."},
	FieldSpec{Name: FieldKeyPublications, Shape: ListOfScalar,
		Description: "Key publications describing or applying the software, as full citations."},
	FieldSpec{Name: FieldCategory, Shape: ListOfScalar, Required: true,
		Allowed: CategoryVocabulary, IssueName: "category",
		Description: "Domain classification tags. Return all that apply."},
	FieldSpec{Name: FieldLicense, Shape: Scalar,
		Description: "The name of the license associated with the software, model, dataset, or tool."},
	FieldSpec{Name: "current_version", Shape: Scalar,
		Description: "The current version of the software, model, dataset, or tool."},
)

// Default returns the model card schema. The returned value is shared and
// must not be modified.
func Default() *Schema { return defaultSchema }
