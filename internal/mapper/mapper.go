// Package mapper parses DataCite-style XML metadata documents into the
// resource model, accumulating validation findings instead of failing fast.
package mapper

import (
	"strconv"
	"strings"
	"time"

	"github.com/ecmwf-copernicus/copernicus-publication/internal/datacite"
)

// requiredSections are the top-level sections that must be present and
// non-empty for a document to be valid.
var requiredSections = []string{
	"identifier",
	"creators",
	"titles",
	"publisher",
	"publicationYear",
	"resourceType",
}

// dateLayouts are tried in order when parsing free-form date text.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01",
	"2006",
	"January 2, 2006",
	"2 January 2006",
	"02/01/2006",
}

// Parse maps a metadata document into a Resource. Field-level problems
// accumulate as findings and never stop the pass; only a document that is
// not well-formed XML returns a non-nil error (ErrMalformedDocument).
//
// state is the requested DOI lifecycle state (datacite.StateDraft etc.);
// draft documents tolerate placeholder publication years and empty
// contributor names.
func Parse(data []byte, state string) (*datacite.Resource, Findings, error) {
	root, err := parseDocument(data)
	if err != nil {
		return nil, nil, err
	}

	m := &mapper{res: &datacite.Resource{}, state: state}
	for _, section := range root.Children() {
		switch section.Name() {
		case "identifier":
			m.setIdentifier(section)
		case "creators":
			m.setCreators(section)
		case "titles":
			m.setTitles(section)
		case "publisher":
			m.setPublisher(section)
		case "publicationYear":
			m.setPublicationYear(section)
		case "resourceType":
			m.setResourceType(section)
		case "subjects":
			m.setSubjects(section)
		case "contributors":
			m.setContributors(section)
		case "dates":
			m.setDates(section)
		case "language":
			m.res.Language = section.Text()
		case "alternateIdentifiers":
			m.setAlternateIdentifiers(section)
		case "relatedIdentifiers":
			m.setRelatedIdentifiers(section)
		case "sizes":
			m.setSizes(section)
		case "formats":
			m.setFormats(section)
		case "version":
			m.res.Version = section.Text()
		case "rightsList":
			m.setRightsList(section)
		case "descriptions":
			m.setDescriptions(section)
		case "geoLocations":
			m.setGeoLocations(section)
		case "fundingReferences":
			m.setFundingReferences(section)
		default:
			// Unknown sections are ignored for forward compatibility.
		}
	}
	m.checkRequired()

	return m.res, m.findings, nil
}

type mapper struct {
	res      *datacite.Resource
	state    string
	findings Findings
}

func (m *mapper) setIdentifier(section *Node) {
	doi := strings.ToLower(section.Text())
	id := &datacite.Identifier{Identifier: doi}
	if section.HasAttr("identifierType") {
		id.IdentifierType = section.Attr("identifierType")
	}
	m.res.Identifier = id
}

func (m *mapper) nameIdentifier(node *Node) datacite.NameIdentifier {
	ni := datacite.NameIdentifier{NameIdentifier: node.Text()}
	if node.HasAttr("nameIdentifierScheme") {
		ni.NameIdentifierScheme = node.Attr("nameIdentifierScheme")
	}
	if node.HasAttr("schemeURI") {
		ni.SchemeURI = node.Attr("schemeURI")
	}
	return ni
}

func affiliations(node *Node) []string {
	var out []string
	for _, a := range node.ChildrenNamed("affiliation") {
		out = append(out, a.Text())
	}
	return out
}

func (m *mapper) setCreators(section *Node) {
	var creators []datacite.Creator
	for _, node := range section.Children() {
		nameNode := node.Child("creatorName")
		var creator datacite.Creator
		creator.NameType = datacite.NameTypeUnknown
		if nameNode != nil {
			creator.Name = nameNode.Text()
			if nameNode.HasAttr("nameType") {
				creator.NameType = nameNode.Attr("nameType")
			}
		}
		creator.GivenName = node.ChildText("givenName")
		creator.FamilyName = node.ChildText("familyName")
		if creator.NameType == datacite.NameTypePersonal {
			// The display name is always rebuilt for personal names,
			// overwriting whatever the document supplied.
			creator.Name = datacite.PersonalName(creator.FamilyName, creator.GivenName)
		}
		if creator.Name == "" {
			m.findings.errorf("creators", "creator name can not be empty")
		}
		creator.Affiliations = affiliations(node)
		for _, id := range node.ChildrenNamed("nameIdentifier") {
			creator.NameIdentifiers = append(creator.NameIdentifiers, m.nameIdentifier(id))
		}
		creators = append(creators, creator)
	}
	m.res.Creators = creators
}

func (m *mapper) setContributors(section *Node) {
	var contributors []datacite.Contributor
	for _, node := range section.Children() {
		var contributor datacite.Contributor
		contributor.Affiliations = affiliations(node)
		nameNode := node.Child("contributorName")
		contributor.NameType = datacite.NameTypeUnknown
		if nameNode != nil {
			contributor.Name = nameNode.Text()
			if nameNode.HasAttr("nameType") {
				contributor.NameType = nameNode.Attr("nameType")
			}
		}
		contributor.GivenName = node.ChildText("givenName")
		contributor.FamilyName = node.ChildText("familyName")
		contributor.ContributorType = node.Attr("contributorType")
		if contributor.NameType == datacite.NameTypePersonal {
			contributor.Name = datacite.PersonalName(contributor.FamilyName, contributor.GivenName)
		}
		if contributor.Name == "" && m.state != datacite.StateDraft {
			m.findings.warnf("contributors", "contributor name can not be empty")
		}
		for _, id := range node.ChildrenNamed("nameIdentifier") {
			contributor.NameIdentifiers = append(contributor.NameIdentifiers, m.nameIdentifier(id))
		}
		contributors = append(contributors, contributor)
	}
	m.res.Contributors = contributors
}

func (m *mapper) setTitles(section *Node) {
	var titles []datacite.Title
	for _, node := range section.Children() {
		title := datacite.Title{Title: node.Text()}
		if title.Title == "" {
			m.findings.errorf("titles", "title is required")
		}
		if titleType := node.Attr("titleType"); titleType != "" {
			if !datacite.IsAllowedTitleType(titleType) {
				m.findings.errorf("titles", "title type %q is wrong", titleType)
			}
			title.TitleType = titleType
		}
		if node.HasAttr("lang") {
			title.Lang = node.Attr("lang")
		}
		titles = append(titles, title)
	}
	m.res.Titles = titles
}

func (m *mapper) setPublisher(section *Node) {
	m.res.Publisher = section.Text()
}

// setPublicationYear validates the parsed year but stores the current
// year regardless. The original system behaved this way and downstream
// records depend on it; see DESIGN.md before changing.
func (m *mapper) setPublicationYear(section *Node) {
	currentYear := time.Now().Year()
	year, err := strconv.Atoi(section.Text())
	if (err != nil || year < 1000 || year > currentYear) && m.state != datacite.StateDraft {
		m.findings.errorf("publicationYear", "publication year must be a year between 1000 and %d", currentYear)
	}
	m.res.PublicationYear = currentYear
}

func (m *mapper) setResourceType(section *Node) {
	rt := &datacite.ResourceType{ResourceType: section.Text()}
	general := section.Attr("resourceTypeGeneral")
	switch {
	case general == "":
		m.findings.errorf("resourceType", "resource type general is required")
	case !datacite.IsAllowedResourceTypeGeneral(general):
		m.findings.errorf("resourceType", "attribute resourceTypeGeneral %q is not valid", general)
	default:
		rt.ResourceTypeGeneral = general
	}
	m.res.ResourceType = rt
}

func (m *mapper) setSubjects(section *Node) {
	var subjects []datacite.Subject
	for _, node := range section.Children() {
		subject := datacite.Subject{Subject: node.Text()}
		if node.HasAttr("subjectScheme") {
			subject.SubjectScheme = node.Attr("subjectScheme")
		}
		if node.HasAttr("schemeURI") {
			subject.SchemeURI = node.Attr("schemeURI")
		}
		subjects = append(subjects, subject)
	}
	m.res.Subjects = subjects
}

func (m *mapper) setDates(section *Node) {
	var dates []datacite.Date
	for _, node := range section.Children() {
		date := datacite.Date{
			Date:     m.parseDate(node.Text()),
			DateType: node.Attr("dateType"),
		}
		if node.HasAttr("dateInformation") {
			date.DateInformation = node.Attr("dateInformation")
		}
		dates = append(dates, date)
	}
	m.res.Dates = dates
}

// parseDate normalizes free-form date text to YYYY-MM-DD on a best-effort
// basis. Unparseable text is kept as-is with a warning.
func (m *mapper) parseDate(text string) string {
	if text == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.Format("2006-01-02")
		}
	}
	m.findings.warnf("dates", "unrecognized date value %q", text)
	return text
}

func (m *mapper) setAlternateIdentifiers(section *Node) {
	var ids []datacite.AlternateIdentifier
	for _, node := range section.Children() {
		ids = append(ids, datacite.AlternateIdentifier{
			AlternateIdentifier:     node.Text(),
			AlternateIdentifierType: node.Attr("alternateIdentifierType"),
		})
	}
	m.res.AlternateIdentifiers = ids
}

func (m *mapper) setRelatedIdentifiers(section *Node) {
	var ids []datacite.RelatedIdentifier
	for _, node := range section.Children() {
		related := datacite.RelatedIdentifier{
			SchemeURI:             node.Attr("schemeURI"),
			RelatedIdentifierType: node.Attr("relatedIdentifierType"),
			RelatedMetadataScheme: node.Attr("relatedMetadataScheme"),
			RelationType:          node.Attr("relationType"),
		}
		if node.HasAttr("relatedIdentifier") {
			related.RelatedIdentifier = node.Attr("relatedIdentifier")
		}
		if node.HasAttr("resourceTypeGeneral") {
			related.ResourceTypeGeneral = node.Attr("resourceTypeGeneral")
		}
		if node.HasAttr("schemeType") {
			related.SchemeType = node.Attr("schemeType")
		}
		ids = append(ids, related)
	}
	m.res.RelatedIdentifiers = ids
}

func (m *mapper) setSizes(section *Node) {
	var sizes []datacite.Size
	for _, node := range section.Children() {
		sizes = append(sizes, datacite.Size{Size: node.Text()})
	}
	m.res.Sizes = sizes
}

func (m *mapper) setFormats(section *Node) {
	var formats []datacite.Format
	for _, node := range section.Children() {
		formats = append(formats, datacite.Format{Format: node.Text()})
	}
	m.res.Formats = formats
}

func (m *mapper) setRightsList(section *Node) {
	var list []datacite.Rights
	for _, node := range section.Children() {
		rights := datacite.Rights{Rights: node.Text()}
		if node.HasAttr("rightsURI") {
			rights.RightsURI = node.Attr("rightsURI")
		}
		rights.Lang = node.Attr("lang")
		list = append(list, rights)
	}
	m.res.RightsList = list
}

func (m *mapper) setDescriptions(section *Node) {
	var descriptions []datacite.Description
	for _, node := range section.Children() {
		description := datacite.Description{
			Description:     node.Text(),
			DescriptionType: node.Attr("descriptionType"),
		}
		if node.HasAttr("lang") {
			description.Lang = node.Attr("lang")
		}
		descriptions = append(descriptions, description)
	}
	m.res.Descriptions = descriptions
}

func (m *mapper) setGeoLocations(section *Node) {
	var locations []datacite.GeoLocation
	for _, node := range section.Children() {
		location := datacite.GeoLocation{
			GeoLocationPlace: node.ChildText("geoLocationPlace"),
		}
		if point := node.Child("geoLocationPoint"); point != nil {
			location.GeoLocationPoint = &datacite.GeoLocationPoint{
				PointLatitude:  point.ChildText("pointLatitude"),
				PointLongitude: point.ChildText("pointLongitude"),
			}
		}
		if box := node.Child("geoLocationBox"); box != nil {
			location.GeoLocationBox = &datacite.GeoLocationBox{
				EastBoundLongitude: box.ChildText("eastBoundLongitude"),
				WestBoundLongitude: box.ChildText("westBoundLongitude"),
				NorthBoundLatitude: box.ChildText("northBoundLatitude"),
				SouthBoundLatitude: box.ChildText("southBoundLatitude"),
			}
		}
		locations = append(locations, location)
	}
	m.res.GeoLocations = locations
}

func (m *mapper) setFundingReferences(section *Node) {
	var refs []datacite.FundingReference
	for _, node := range section.Children() {
		ref := datacite.FundingReference{
			FunderName: node.ChildText("funderName"),
			AwardTitle: node.ChildText("awardTitle"),
		}
		if award := node.Child("awardNumber"); award != nil {
			ref.AwardNumber = &datacite.AwardNumber{
				AwardNumber: award.Text(),
				AwardURI:    award.Attr("awardURI"),
			}
		}
		if funder := node.Child("funderIdentifier"); funder != nil {
			ref.FunderIdentifier = &datacite.FunderIdentifier{
				FunderIdentifier:     funder.Text(),
				FunderIdentifierType: funder.Attr("funderIdentifierType"),
			}
		}
		refs = append(refs, ref)
	}
	m.res.FundingReferences = refs
}

// checkRequired enforces the six required-field invariant after all
// sections are processed.
func (m *mapper) checkRequired() {
	for _, section := range requiredSections {
		if m.sectionEmpty(section) {
			m.findings.errorf(section, "<%s> tag is missing and is required", section)
		}
	}
}

func (m *mapper) sectionEmpty(section string) bool {
	switch section {
	case "identifier":
		return m.res.Identifier == nil || m.res.Identifier.Identifier == ""
	case "creators":
		return len(m.res.Creators) == 0
	case "titles":
		return len(m.res.Titles) == 0
	case "publisher":
		return m.res.Publisher == ""
	case "publicationYear":
		return m.res.PublicationYear == 0
	case "resourceType":
		return m.res.ResourceType == nil
	}
	return false
}
