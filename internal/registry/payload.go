package registry

import (
	"encoding/json"

	"github.com/ecmwf-copernicus/copernicus-publication/internal/datacite"
)

// envelope is the JSON:API wrapper DataCite expects around every payload.
type envelope struct {
	Data payloadData `json:"data"`
}

type payloadData struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Relationships *relationships `json:"relationships,omitempty"`
	Attributes    interface{}    `json:"attributes"`
}

type relationships struct {
	Client clientRelationship `json:"client"`
}

type clientRelationship struct {
	Data clientRef `json:"data"`
}

type clientRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// wireCreator adds the "name" attribute the REST API reads alongside the
// schema's creatorName.
type wireCreator struct {
	datacite.Creator
	WireName string `json:"name"`
}

type wireContributor struct {
	datacite.Contributor
	WireName string `json:"name"`
}

// createAttributes is the full resource serialized as the DOI's attribute
// object, plus the registration fields. The creators/contributors slices
// shadow the embedded resource's so display names can be mirrored.
type createAttributes struct {
	*datacite.Resource
	DOI    string `json:"doi"`
	Prefix string `json:"prefix"`
	Suffix string `json:"suffix"`
	// Event is always "draft" on create: the registry requires a landing
	// URL before any non-draft transition, and none exists yet.
	Event        string                 `json:"event"`
	Types        *datacite.ResourceType `json:"types,omitempty"`
	Creators     []wireCreator          `json:"creators,omitempty"`
	Contributors []wireContributor      `json:"contributors,omitempty"`
}

// updateAttributes carries only the URL update; no resource body.
type updateAttributes struct {
	DOI    string `json:"doi"`
	Prefix string `json:"prefix"`
	Suffix string `json:"suffix"`
	Event  string `json:"event"`
	URL    string `json:"url"`
}

// createPayload builds the POST /dois body for a resource.
func createPayload(res *datacite.Resource, prefix, suffix, repositoryID string) ([]byte, error) {
	doi := res.DOI()

	attrs := createAttributes{
		Resource: res,
		DOI:      doi,
		Prefix:   prefix,
		Suffix:   suffix,
		Event:    datacite.StateDraft,
		Types:    res.ResourceType,
	}
	for _, c := range res.Creators {
		attrs.Creators = append(attrs.Creators, wireCreator{Creator: c, WireName: c.Name})
	}
	for _, c := range res.Contributors {
		attrs.Contributors = append(attrs.Contributors, wireContributor{Contributor: c, WireName: c.Name})
	}

	return json.Marshal(envelope{Data: payloadData{
		ID:   doi,
		Type: "dois",
		Relationships: &relationships{
			Client: clientRelationship{Data: clientRef{ID: repositoryID, Type: "clients"}},
		},
		Attributes: attrs,
	}})
}

// updatePayload builds the PUT /dois/{doi} body pointing the DOI at its
// landing URL, with the originally requested lifecycle event.
func updatePayload(doi, prefix, suffix, event, landingURL string) ([]byte, error) {
	return json.Marshal(envelope{Data: payloadData{
		ID:   doi,
		Type: "dois",
		Attributes: updateAttributes{
			DOI:    doi,
			Prefix: prefix,
			Suffix: suffix,
			Event:  event,
			URL:    landingURL,
		},
	}})
}
