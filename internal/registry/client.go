// Package registry provides a client for the DataCite REST API.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ecmwf-copernicus/copernicus-publication/internal/datacite"
)

const (
	// APIURL is the production DataCite REST API base URL.
	APIURL = "https://api.datacite.org/"

	// TestAPIURL is the DataCite test instance base URL.
	TestAPIURL = "https://api.test.datacite.org/"

	// FabricaURL is the production Fabrica UI, used for deep links.
	FabricaURL = "https://doi.datacite.org/"

	// TestFabricaURL is the Fabrica test instance.
	TestFabricaURL = "https://doi.test.datacite.org/"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit caps outbound requests per second.
	RateLimit = 5.0

	contentType = "application/vnd.api+json"

	doisEndpoint     = "dois"
	prefixesEndpoint = "prefixes"
)

// Outcome classifies the result of a registry call.
type Outcome string

const (
	OutcomeCreated      Outcome = "created"       // 201
	OutcomeUpdated      Outcome = "updated"       // 200
	OutcomeUnregistered Outcome = "unregistered"  // 204: DOI known but not registered
	OutcomeUnauthorized Outcome = "unauthorized"  // 401
	OutcomeSchemaError  Outcome = "schema_error"  // 403/422: payload rejected
	OutcomeNotFound     Outcome = "not_found"     // 404
	OutcomeTransport    Outcome = "transport"     // network failure or unexpected status
)

// ActivityRecord is a registry-side history entry for a DOI. It is used
// only to test for prior existence of an identifier; the activities
// endpoint answers even for draft DOIs not yet indexed in search.
type ActivityRecord struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Client is a rate-limited client for the DataCite REST API. Calls are
// single synchronous requests with no automatic retry; callers see the
// outcome and decide.
type Client struct {
	httpClient   *http.Client
	limiter      *rate.Limiter
	baseURL      string
	fabricaURL   string
	repositoryID string
	password     string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom API base URL (test instance or testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithFabricaURL sets the Fabrica base URL used for deep links.
func WithFabricaURL(u string) ClientOption {
	return func(c *Client) {
		c.fabricaURL = u
	}
}

// NewClient creates a DataCite API client for the given repository
// account. The password is sent via Basic auth on every request.
func NewClient(repositoryID, password string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		limiter:      rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:      APIURL,
		fabricaURL:   FabricaURL,
		repositoryID: repositoryID,
		password:     password,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RepositoryID returns the repository account this client authenticates as.
func (c *Client) RepositoryID() string {
	return c.repositoryID
}

// endpointURL builds {base}/{endpoint}[/{id}[/{parts...}]].
func (c *Client) endpointURL(endpoint, id string, parts ...string) string {
	u := strings.TrimSuffix(c.baseURL, "/") + "/" + endpoint
	if id != "" {
		u += "/" + url.PathEscape(id)
		for _, p := range parts {
			u += "/" + p
		}
	}
	return u
}

// FabricaDOIURL returns a Fabrica deep link for a DOI, suitable for
// showing users an existing record.
func (c *Client) FabricaDOIURL(doi string) string {
	return strings.TrimSuffix(c.fabricaURL, "/") + "/" + doisEndpoint + "/" + url.QueryEscape(doi)
}

func (c *Client) do(ctx context.Context, method, u string, body []byte) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.SetBasicAuth(c.repositoryID, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	return resp, nil
}

// classify maps an HTTP status code onto the outcome enumeration.
func classify(status int) Outcome {
	switch status {
	case http.StatusCreated:
		return OutcomeCreated
	case http.StatusOK:
		return OutcomeUpdated
	case http.StatusNoContent:
		return OutcomeUnregistered
	case http.StatusUnauthorized:
		return OutcomeUnauthorized
	case http.StatusForbidden, http.StatusUnprocessableEntity:
		return OutcomeSchemaError
	case http.StatusNotFound:
		return OutcomeNotFound
	default:
		return OutcomeTransport
	}
}

// Activity returns the activity history for a DOI. An empty result means
// the DOI does not exist yet. This works even for draft DOIs, which the
// main search endpoint does not index.
func (c *Client) Activity(ctx context.Context, doi string) ([]ActivityRecord, error) {
	resp, err := c.do(ctx, http.MethodGet, c.endpointURL(doisEndpoint, doi, "activities"), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &APIError{StatusCode: resp.StatusCode, DOI: doi, Message: "bad credentials"}
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, DOI: doi, Message: "activity lookup failed"}
	}

	var wrapper struct {
		Data []ActivityRecord `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return nil, fmt.Errorf("%w: parsing activities: %v", ErrInvalidResponse, err)
	}
	return wrapper.Data, nil
}

// CreateDOI registers a new draft DOI carrying the full resource
// metadata. The requested lifecycle state is deliberately not sent here:
// a landing URL must exist before any non-draft transition.
func (c *Client) CreateDOI(ctx context.Context, res *datacite.Resource, prefix, suffix string) (Outcome, error) {
	body, err := createPayload(res, prefix, suffix, c.repositoryID)
	if err != nil {
		return OutcomeTransport, fmt.Errorf("encoding create payload: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.endpointURL(doisEndpoint, ""), body)
	if err != nil {
		return OutcomeTransport, err
	}
	defer resp.Body.Close()

	return classify(resp.StatusCode), nil
}

// UpdateURL points an existing DOI at its landing URL and applies the
// requested lifecycle event (draft, register or publish).
func (c *Client) UpdateURL(ctx context.Context, doi, prefix, suffix, event, landingURL string) (Outcome, error) {
	body, err := updatePayload(doi, prefix, suffix, event, landingURL)
	if err != nil {
		return OutcomeTransport, fmt.Errorf("encoding update payload: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPut, c.endpointURL(doisEndpoint, doi), body)
	if err != nil {
		return OutcomeTransport, err
	}
	defer resp.Body.Close()

	return classify(resp.StatusCode), nil
}

// GetDOI fetches the registry record for a DOI. The registry answers with
// a body only for findable DOIs; drafts return nothing here.
func (c *Client) GetDOI(ctx context.Context, doi string) (json.RawMessage, error) {
	resp, err := c.do(ctx, http.MethodGet, c.endpointURL(doisEndpoint, doi), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		return body, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusUnauthorized:
		return nil, &APIError{StatusCode: resp.StatusCode, DOI: doi, Message: "bad credentials"}
	default:
		return nil, &APIError{StatusCode: resp.StatusCode, DOI: doi, Message: "lookup failed"}
	}
}

// ClientPrefixes lists the DOI prefixes assigned to the repository
// account, for prefix selection before registration.
func (c *Client) ClientPrefixes(ctx context.Context) ([]string, error) {
	u := c.endpointURL(prefixesEndpoint, "") + "?client-id=" + url.QueryEscape(strings.ToLower(c.repositoryID))
	resp, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "bad credentials"}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "prefix lookup failed"}
	}

	var wrapper struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return nil, fmt.Errorf("%w: parsing prefixes: %v", ErrInvalidResponse, err)
	}

	prefixes := make([]string, 0, len(wrapper.Data))
	for _, d := range wrapper.Data {
		prefixes = append(prefixes, d.ID)
	}
	return prefixes, nil
}
