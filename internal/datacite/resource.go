// Package datacite defines the resource model for DataCite publication metadata.
package datacite

import "strings"

// Name types recognized by DataCite.
const (
	NameTypePersonal       = "Personal"
	NameTypeOrganizational = "Organizational"
	// NameTypeUnknown is the default when the metadata carries no nameType.
	NameTypeUnknown = "Unknown"
)

// DOI lifecycle events accepted by the DataCite REST API.
const (
	StateDraft    = "draft"
	StateRegister = "register"
	StatePublish  = "publish"
)

// AllowedTitleTypes is the closed set of optional title qualifiers.
var AllowedTitleTypes = []string{
	"AlternativeTitle",
	"Subtitle",
	"TranslatedTitle",
	"Other",
}

// AllowedResourceTypesGeneral is the closed set of resourceTypeGeneral values.
var AllowedResourceTypesGeneral = []string{
	"Audiovisual",
	"Book",
	"Book chapter",
	"Collection",
	"Computational notebook",
	"Conference paper",
	"Conference proceeding",
	"DataPaper",
	"Dataset",
	"Dissertation",
	"Event",
	"Image",
	"InteractiveResource",
	"Journal",
	"Journal article",
	"Model",
	"Output management plan",
	"Other",
	"Peer review",
	"PhysicalObject",
	"Preprint",
	"Report",
	"Service",
	"Software",
	"Sound",
	"Standard",
	"Text",
	"Workflow",
}

// IsAllowedTitleType reports whether t is a recognized titleType value.
func IsAllowedTitleType(t string) bool {
	for _, v := range AllowedTitleTypes {
		if t == v {
			return true
		}
	}
	return false
}

// IsAllowedResourceTypeGeneral reports whether t is a recognized
// resourceTypeGeneral value.
func IsAllowedResourceTypeGeneral(t string) bool {
	for _, v := range AllowedResourceTypesGeneral {
		if t == v {
			return true
		}
	}
	return false
}

// Identifier is the DOI identifier of a resource.
type Identifier struct {
	Identifier     string `json:"identifier"`
	IdentifierType string `json:"identifierType,omitempty"`
}

// Title is a resource title with optional type and language qualifiers.
type Title struct {
	Title     string `json:"title"`
	TitleType string `json:"titleType,omitempty"`
	Lang      string `json:"lang,omitempty"`
}

// NameIdentifier is an identifier for a person or organization,
// typically an ORCID or ROR.
type NameIdentifier struct {
	NameIdentifier       string `json:"nameIdentifier"`
	NameIdentifierScheme string `json:"nameIdentifierScheme,omitempty"`
	SchemeURI            string `json:"schemeURI,omitempty"`
}

// Creator is a main researcher or producer of the resource.
// Name carries the display name; the registry client mirrors it into the
// wire field the REST API expects.
type Creator struct {
	Name            string           `json:"creatorName"`
	NameType        string           `json:"nameType,omitempty"`
	GivenName       string           `json:"givenName,omitempty"`
	FamilyName      string           `json:"familyName,omitempty"`
	Affiliations    []string         `json:"affiliation,omitempty"`
	NameIdentifiers []NameIdentifier `json:"nameIdentifiers,omitempty"`
}

// Contributor is an institution or person contributing to the resource
// in a role other than creator.
type Contributor struct {
	Name            string           `json:"contributorName"`
	NameType        string           `json:"nameType,omitempty"`
	GivenName       string           `json:"givenName,omitempty"`
	FamilyName      string           `json:"familyName,omitempty"`
	ContributorType string           `json:"contributorType,omitempty"`
	Affiliations    []string         `json:"affiliation,omitempty"`
	NameIdentifiers []NameIdentifier `json:"nameIdentifiers,omitempty"`
}

// Date is a date relevant to the resource, with its DataCite dateType.
type Date struct {
	Date            string `json:"date"`
	DateType        string `json:"dateType,omitempty"`
	DateInformation string `json:"dateInformation,omitempty"`
}

// ResourceType describes the resource, with a free specific type and a
// general type from AllowedResourceTypesGeneral.
type ResourceType struct {
	ResourceType        string `json:"resourceType"`
	ResourceTypeGeneral string `json:"resourceTypeGeneral,omitempty"`
}

// Subject is a keyword or classification code.
type Subject struct {
	Subject       string `json:"subject"`
	SubjectScheme string `json:"subjectScheme,omitempty"`
	SchemeURI     string `json:"schemeURI,omitempty"`
}

// Description is an abstract or other descriptive text.
type Description struct {
	Description     string `json:"description"`
	DescriptionType string `json:"descriptionType,omitempty"`
	Lang            string `json:"lang,omitempty"`
}

// Rights is a rights statement with an optional URI.
type Rights struct {
	Rights    string `json:"rights"`
	RightsURI string `json:"rightsUri,omitempty"`
	Lang      string `json:"lang,omitempty"`
}

// Size is an unstructured size statement (pages, bytes, duration).
type Size struct {
	Size string `json:"size"`
}

// Format is a technical format of the resource (MIME type, file extension).
type Format struct {
	Format string `json:"format"`
}

// AlternateIdentifier is a non-DOI identifier of the same resource.
type AlternateIdentifier struct {
	AlternateIdentifier     string `json:"alternateIdentifier"`
	AlternateIdentifierType string `json:"alternateIdentifierType,omitempty"`
}

// RelatedIdentifier points to a related resource.
type RelatedIdentifier struct {
	RelatedIdentifier     string `json:"relatedIdentifier,omitempty"`
	RelatedIdentifierType string `json:"relatedIdentifierType,omitempty"`
	RelationType          string `json:"relationType,omitempty"`
	RelatedMetadataScheme string `json:"relatedMetadataScheme,omitempty"`
	SchemeURI             string `json:"schemeURI,omitempty"`
	SchemeType            string `json:"schemeType,omitempty"`
	ResourceTypeGeneral   string `json:"resourceTypeGeneral,omitempty"`
}

// GeoLocationPoint is a single latitude/longitude pair.
type GeoLocationPoint struct {
	PointLatitude  string `json:"pointLatitude,omitempty"`
	PointLongitude string `json:"pointLongitude,omitempty"`
}

// GeoLocationBox is a bounding box of latitudes and longitudes.
type GeoLocationBox struct {
	EastBoundLongitude string `json:"eastBoundLongitude,omitempty"`
	WestBoundLongitude string `json:"westBoundLongitude,omitempty"`
	NorthBoundLatitude string `json:"northBoundLatitude,omitempty"`
	SouthBoundLatitude string `json:"southBoundLatitude,omitempty"`
}

// GeoLocation is a spatial region or named place related to the resource.
type GeoLocation struct {
	GeoLocationPlace string            `json:"geoLocationPlace,omitempty"`
	GeoLocationPoint *GeoLocationPoint `json:"geoLocationPoint,omitempty"`
	GeoLocationBox   *GeoLocationBox   `json:"geoLocationBox,omitempty"`
}

// AwardNumber is the code assigned by a funder to an award.
type AwardNumber struct {
	AwardNumber string `json:"awardNumber"`
	AwardURI    string `json:"awardUri,omitempty"`
}

// FunderIdentifier is a unique identifier of a funding entity.
type FunderIdentifier struct {
	FunderIdentifier     string `json:"funderIdentifier"`
	FunderIdentifierType string `json:"funderIdentifierType,omitempty"`
}

// FundingReference names a funding source for the resource.
type FundingReference struct {
	FunderName       string            `json:"funderName"`
	FunderIdentifier *FunderIdentifier `json:"funderIdentifier,omitempty"`
	AwardNumber      *AwardNumber      `json:"awardNumber,omitempty"`
	AwardTitle       string            `json:"awardTitle,omitempty"`
}

// Resource is the aggregate publication metadata record destined for the
// DOI registry. Required fields: Identifier, Creators, Titles, Publisher,
// PublicationYear, ResourceType. A Resource belongs to exactly one
// synchronization attempt and is never shared.
type Resource struct {
	Identifier           *Identifier           `json:"identifier,omitempty"`
	Creators             []Creator             `json:"creators,omitempty"`
	Titles               []Title               `json:"titles,omitempty"`
	Publisher            string                `json:"publisher,omitempty"`
	PublicationYear      int                   `json:"publicationYear,omitempty"`
	ResourceType         *ResourceType         `json:"resourceType,omitempty"`
	Subjects             []Subject             `json:"subjects,omitempty"`
	Contributors         []Contributor         `json:"contributors,omitempty"`
	Dates                []Date                `json:"dates,omitempty"`
	Language             string                `json:"language,omitempty"`
	AlternateIdentifiers []AlternateIdentifier `json:"alternateIdentifiers,omitempty"`
	RelatedIdentifiers   []RelatedIdentifier   `json:"relatedIdentifiers,omitempty"`
	Sizes                []Size                `json:"sizes,omitempty"`
	Formats              []Format              `json:"formats,omitempty"`
	Version              string                `json:"version,omitempty"`
	RightsList           []Rights              `json:"rightsList,omitempty"`
	Descriptions         []Description         `json:"descriptions,omitempty"`
	GeoLocations         []GeoLocation         `json:"geoLocations,omitempty"`
	FundingReferences    []FundingReference    `json:"fundingReferences,omitempty"`
}

// DOI returns the resource's DOI value, or "" if no identifier is set.
func (r *Resource) DOI() string {
	if r.Identifier == nil {
		return ""
	}
	return r.Identifier.Identifier
}

// MainTitle returns the first title, or "" if none.
func (r *Resource) MainTitle() string {
	if len(r.Titles) == 0 {
		return ""
	}
	return r.Titles[0].Title
}

// PersonalName joins non-empty family and given names with a comma,
// the display form DataCite expects for personal names.
func PersonalName(family, given string) string {
	parts := make([]string, 0, 2)
	if family != "" {
		parts = append(parts, family)
	}
	if given != "" {
		parts = append(parts, given)
	}
	return strings.Join(parts, ", ")
}
