package registry

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ecmwf-copernicus/copernicus-publication/internal/datacite"
)

func testResource() *datacite.Resource {
	return &datacite.Resource{
		Identifier: &datacite.Identifier{Identifier: "10.82044/abc-999", IdentifierType: "DOI"},
		Creators: []datacite.Creator{
			{Name: "Smith, Jane", NameType: datacite.NameTypePersonal, GivenName: "Jane", FamilyName: "Smith"},
		},
		Titles:          []datacite.Title{{Title: "A study"}},
		Publisher:       "ECMWF",
		PublicationYear: 2026,
		ResourceType:    &datacite.ResourceType{ResourceType: "article", ResourceTypeGeneral: "Text"},
		Contributors: []datacite.Contributor{
			{Name: "Rossi, Marco", NameType: datacite.NameTypePersonal, ContributorType: "DataManager"},
		},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		status int
		want   Outcome
	}{
		{201, OutcomeCreated},
		{200, OutcomeUpdated},
		{204, OutcomeUnregistered},
		{401, OutcomeUnauthorized},
		{403, OutcomeSchemaError},
		{422, OutcomeSchemaError},
		{404, OutcomeNotFound},
		{500, OutcomeTransport},
		{418, OutcomeTransport},
	}

	for _, tt := range tests {
		if got := classify(tt.status); got != tt.want {
			t.Errorf("classify(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestCreateDOI_PayloadAndHeaders(t *testing.T) {
	var gotAuth, gotContentType string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/dois" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient("ECMWF.COPERNICUS", "secret", WithBaseURL(srv.URL))
	outcome, err := c.CreateDOI(context.Background(), testResource(), "10.82044", "abc-999")
	if err != nil {
		t.Fatalf("CreateDOI() error = %v", err)
	}
	if outcome != OutcomeCreated {
		t.Errorf("outcome = %v, want %v", outcome, OutcomeCreated)
	}

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("ECMWF.COPERNICUS:secret"))
	if gotAuth != wantAuth {
		t.Errorf("Authorization = %q, want %q", gotAuth, wantAuth)
	}
	if gotContentType != "application/vnd.api+json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}

	var payload struct {
		Data struct {
			ID            string `json:"id"`
			Type          string `json:"type"`
			Relationships struct {
				Client struct {
					Data struct {
						ID   string `json:"id"`
						Type string `json:"type"`
					} `json:"data"`
				} `json:"client"`
			} `json:"relationships"`
			Attributes map[string]json.RawMessage `json:"attributes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("unmarshaling payload: %v", err)
	}

	if payload.Data.ID != "10.82044/abc-999" || payload.Data.Type != "dois" {
		t.Errorf("data id/type = %q/%q", payload.Data.ID, payload.Data.Type)
	}
	if payload.Data.Relationships.Client.Data.ID != "ECMWF.COPERNICUS" || payload.Data.Relationships.Client.Data.Type != "clients" {
		t.Errorf("client relationship = %+v", payload.Data.Relationships.Client.Data)
	}

	attrs := payload.Data.Attributes
	// Create always goes out as draft regardless of the requested state.
	if string(attrs["event"]) != `"draft"` {
		t.Errorf("event = %s, want draft", attrs["event"])
	}
	if string(attrs["doi"]) != `"10.82044/abc-999"` {
		t.Errorf("doi = %s", attrs["doi"])
	}
	if string(attrs["prefix"]) != `"10.82044"` || string(attrs["suffix"]) != `"abc-999"` {
		t.Errorf("prefix/suffix = %s/%s", attrs["prefix"], attrs["suffix"])
	}
	if _, ok := attrs["types"]; !ok {
		t.Error("expected resource type mirrored into types attribute")
	}

	// Display names are mirrored into the "name" wire field.
	var creators []map[string]json.RawMessage
	if err := json.Unmarshal(attrs["creators"], &creators); err != nil {
		t.Fatalf("unmarshaling creators: %v", err)
	}
	if len(creators) != 1 {
		t.Fatalf("len(creators) = %d", len(creators))
	}
	if string(creators[0]["creatorName"]) != `"Smith, Jane"` || string(creators[0]["name"]) != `"Smith, Jane"` {
		t.Errorf("creator wire fields = %v", creators[0])
	}

	var contributors []map[string]json.RawMessage
	if err := json.Unmarshal(attrs["contributors"], &contributors); err != nil {
		t.Fatalf("unmarshaling contributors: %v", err)
	}
	if string(contributors[0]["contributorName"]) != `"Rossi, Marco"` || string(contributors[0]["name"]) != `"Rossi, Marco"` {
		t.Errorf("contributor wire fields = %v", contributors[0])
	}
}

func TestUpdateURL_PayloadIsMinimal(t *testing.T) {
	var gotBody []byte
	var gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient("ECMWF.COPERNICUS", "secret", WithBaseURL(srv.URL))
	outcome, err := c.UpdateURL(context.Background(), "10.82044/abc-999", "10.82044", "abc-999",
		datacite.StatePublish, "https://example.org/node/42")
	if err != nil {
		t.Fatalf("UpdateURL() error = %v", err)
	}
	if outcome != OutcomeUpdated {
		t.Errorf("outcome = %v, want %v", outcome, OutcomeUpdated)
	}
	if gotPath != "/dois/10.82044%2Fabc-999" && gotPath != "/dois/10.82044/abc-999" {
		t.Errorf("path = %q", gotPath)
	}

	var payload struct {
		Data struct {
			Attributes map[string]interface{} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("unmarshaling payload: %v", err)
	}

	attrs := payload.Data.Attributes
	// The requested event goes out on update, not the forced draft.
	if attrs["event"] != "publish" {
		t.Errorf("event = %v, want publish", attrs["event"])
	}
	if attrs["url"] != "https://example.org/node/42" {
		t.Errorf("url = %v", attrs["url"])
	}
	// No resource body on update.
	for _, field := range []string{"creators", "titles", "publisher"} {
		if _, ok := attrs[field]; ok {
			t.Errorf("update payload should not carry %s", field)
		}
	}
}

func TestActivity(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantLen int
		wantErr bool
	}{
		{"existing doi", 200, `{"data":[{"id":"1","type":"activities"}]}`, 1, false},
		{"empty activity", 200, `{"data":[]}`, 0, false},
		{"unknown doi", 404, ``, 0, false},
		{"bad credentials", 401, ``, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient("repo", "pw", WithBaseURL(srv.URL))
			activity, err := c.Activity(context.Background(), "10.82044/abc-999")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Activity() error = %v", err)
			}
			if len(activity) != tt.wantLen {
				t.Errorf("len(activity) = %d, want %d", len(activity), tt.wantLen)
			}
		})
	}
}

func TestGetDOI(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"findable doi", 200, `{"data":{"id":"10.82044/abc-999"}}`, nil},
		{"draft or unknown doi", 404, ``, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient("repo", "pw", WithBaseURL(srv.URL))
			body, err := c.GetDOI(context.Background(), "10.82044/abc-999")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("GetDOI() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetDOI() error = %v", err)
			}
			if string(body) != tt.body {
				t.Errorf("body = %s", body)
			}
		})
	}
}

func TestClientPrefixes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("client-id"); got != "ecmwf.copernicus" {
			t.Errorf("client-id = %q", got)
		}
		w.Write([]byte(`{"data":[{"id":"10.82044"},{"id":"10.5555"}]}`))
	}))
	defer srv.Close()

	c := NewClient("ECMWF.COPERNICUS", "pw", WithBaseURL(srv.URL))
	prefixes, err := c.ClientPrefixes(context.Background())
	if err != nil {
		t.Fatalf("ClientPrefixes() error = %v", err)
	}
	if len(prefixes) != 2 || prefixes[0] != "10.82044" {
		t.Errorf("prefixes = %v", prefixes)
	}
}

func TestFabricaDOIURL(t *testing.T) {
	c := NewClient("repo", "pw", WithFabricaURL("https://doi.test.datacite.org/"))
	got := c.FabricaDOIURL("10.82044/abc-999")
	want := "https://doi.test.datacite.org/dois/10.82044%2Fabc-999"
	if got != want {
		t.Errorf("FabricaDOIURL() = %q, want %q", got, want)
	}
}
