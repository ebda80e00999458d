// Package lifecycle orchestrates the DOI synchronization state machine:
// parse, existence check, create, local persistence, URL update.
package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/ecmwf-copernicus/copernicus-publication/internal/datacite"
	"github.com/ecmwf-copernicus/copernicus-publication/internal/mapper"
	"github.com/ecmwf-copernicus/copernicus-publication/internal/registry"
)

// State is a position in the synchronization state machine.
type State string

const (
	StateNotStarted       State = "not_started"
	StateParsed           State = "parsed"
	StateInvalid          State = "invalid"
	StateExistenceChecked State = "existence_checked"
	StateConflict         State = "conflict"
	StateCreated          State = "created"
	StateLocallyPersisted State = "locally_persisted"
	StateURLUpdated       State = "url_updated"
)

// Intent describes what the caller wants from a synchronization attempt.
type Intent struct {
	// LocalOnly skips all registry calls and only persists the local
	// publication record.
	LocalOnly bool

	// State is the requested DOI lifecycle state (draft, register,
	// publish). Defaults to draft.
	State string

	// Prefix and Suffix override the identifier derived from the
	// document when a full sync with an explicit suffix is requested.
	Prefix string
	Suffix string
}

// AuthorRef names an author for local find-or-create resolution, keyed
// by display name plus optional ORCID.
type AuthorRef struct {
	Name  string
	ORCID string
}

// LocalRecord is the publication record handed to the local store.
type LocalRecord struct {
	Title           string
	Authors         []AuthorRef
	DOI             string
	Keywords        []string
	PublicationDate string
	Publisher       string
	DescriptionHTML string
}

// Registry is the subset of the DataCite client the controller needs.
type Registry interface {
	Activity(ctx context.Context, doi string) ([]registry.ActivityRecord, error)
	CreateDOI(ctx context.Context, res *datacite.Resource, prefix, suffix string) (registry.Outcome, error)
	UpdateURL(ctx context.Context, doi, prefix, suffix, event, landingURL string) (registry.Outcome, error)
	FabricaDOIURL(doi string) string
}

// LocalStore persists publication records and knows their canonical URLs.
// Implementations must provide their own concurrency safety; the
// controller treats calls as atomic.
type LocalStore interface {
	PersistPublication(ctx context.Context, rec LocalRecord) (int64, error)
	CanonicalURL(id int64) string
}

// Result is the terminal outcome of one synchronization attempt.
type Result struct {
	State    State
	Resource *datacite.Resource
	Findings mapper.Findings

	DOI    string
	Prefix string
	Suffix string

	// ConflictURL deep-links to the existing registry record when the
	// attempt halts at StateConflict.
	ConflictURL string

	// Outcome records the last registry outcome when a registry step
	// did not succeed.
	Outcome registry.Outcome

	// LocalID and LandingURL are set once the local record exists.
	LocalID    int64
	LandingURL string
}

// Controller drives one synchronization attempt. A Controller and its
// Resource are owned by a single invocation; nothing is shared.
type Controller struct {
	registry Registry
	store    LocalStore
	sink     Sink
}

// New creates a Controller with explicitly injected collaborators.
func New(reg Registry, store LocalStore, sink Sink) *Controller {
	return &Controller{registry: reg, store: store, sink: sink}
}

func (c *Controller) emit(sev Severity, format string, args ...interface{}) {
	if c.sink != nil {
		c.sink.Emit(Event{Severity: sev, Message: fmt.Sprintf(format, args...)})
	}
}

// Run executes the state machine over one metadata document. Expected
// terminal conditions (invalid document, conflict, rejected registry
// call) come back in the Result with a nil error; the error is non-nil
// only for a malformed document, transport failures and local
// persistence failures.
func (c *Controller) Run(ctx context.Context, doc []byte, intent Intent) (*Result, error) {
	if intent.State == "" {
		intent.State = datacite.StateDraft
	}

	result := &Result{State: StateNotStarted}

	res, findings, err := mapper.Parse(doc, intent.State)
	if err != nil {
		return result, err
	}
	result.State = StateParsed
	result.Resource = res
	result.Findings = findings

	c.assignIdentifier(result, res, intent)

	if findings.HasErrors() {
		result.State = StateInvalid
		c.error("metadata document failed validation with %d error(s); nothing was sent to DataCite", len(findings.Errors()))
		return result, nil
	}

	if intent.LocalOnly {
		return c.persistLocal(ctx, result, res)
	}

	// Best-effort duplicate guard; the window between this check and the
	// create call is an accepted risk.
	activity, err := c.registry.Activity(ctx, result.DOI)
	if err != nil {
		c.error("checking DOI %s in DataCite: %v", result.DOI, err)
		return result, err
	}
	result.State = StateExistenceChecked

	if len(activity) > 0 {
		result.State = StateConflict
		result.ConflictURL = c.registry.FabricaDOIURL(result.DOI)
		c.warn("a publication with DOI %s already exists in DataCite: %s", result.DOI, result.ConflictURL)
		return result, nil
	}

	outcome, err := c.registry.CreateDOI(ctx, res, result.Prefix, result.Suffix)
	if err != nil {
		c.error("creating DOI %s: %v", result.DOI, err)
		return result, err
	}
	if outcome != registry.OutcomeCreated {
		result.Outcome = outcome
		c.error("DataCite refused to create DOI %s: %s", result.DOI, describeOutcome(outcome))
		return result, nil
	}
	result.State = StateCreated
	c.info("a new DOI was created: %s", c.registry.FabricaDOIURL(result.DOI))

	if _, err := c.persistLocal(ctx, result, res); err != nil {
		// The DOI exists in the registry but nothing points at it; this
		// is a recoverable manual-fixup state, not rolled back.
		c.error("DOI %s was created in DataCite but the local record failed; manual reconciliation needed", result.DOI)
		return result, err
	}

	outcome, err = c.registry.UpdateURL(ctx, result.DOI, result.Prefix, result.Suffix, intent.State, result.LandingURL)
	if err != nil {
		c.warn("updating DOI %s URL: %v; the publication record was kept", result.DOI, err)
		return result, nil
	}
	if outcome != registry.OutcomeUpdated {
		result.Outcome = outcome
		c.warn("DataCite did not accept the URL update for %s: %s; the publication record was kept", result.DOI, describeOutcome(outcome))
		return result, nil
	}
	result.State = StateURLUpdated
	c.info("DOI %s now points at %s", result.DOI, result.LandingURL)

	return result, nil
}

// assignIdentifier derives prefix and suffix from the parsed identifier
// and applies caller overrides for full syncs with an explicit suffix.
func (c *Controller) assignIdentifier(result *Result, res *datacite.Resource, intent Intent) {
	result.DOI = res.DOI()
	result.Prefix, result.Suffix = datacite.SplitDOI(result.DOI)

	if !intent.LocalOnly && intent.Suffix != "" {
		if intent.Prefix != "" {
			result.Prefix = intent.Prefix
		}
		result.Suffix = intent.Suffix
		result.DOI = strings.ToLower(datacite.JoinDOI(result.Prefix, result.Suffix))
		if res.Identifier == nil {
			res.Identifier = &datacite.Identifier{IdentifierType: "DOI"}
		}
		res.Identifier.Identifier = result.DOI
	}
}

func (c *Controller) persistLocal(ctx context.Context, result *Result, res *datacite.Resource) (*Result, error) {
	rec := buildLocalRecord(res)

	id, err := c.store.PersistPublication(ctx, rec)
	if err != nil {
		return result, fmt.Errorf("persisting publication %q: %w", rec.Title, err)
	}
	result.State = StateLocallyPersisted
	result.LocalID = id
	result.LandingURL = c.store.CanonicalURL(id)
	c.info("publication record created: %s", result.LandingURL)

	return result, nil
}

// buildLocalRecord derives the local publication record from the parsed
// resource: personal authors as "Given Family", ORCID from the first
// ORCID name identifier, keywords from subjects, descriptions joined as
// HTML paragraphs.
func buildLocalRecord(res *datacite.Resource) LocalRecord {
	rec := LocalRecord{
		Title:           res.MainTitle(),
		DOI:             res.DOI(),
		Publisher:       res.Publisher,
		PublicationDate: fmt.Sprintf("%04d-01-01", res.PublicationYear),
	}

	for _, creator := range res.Creators {
		ref := AuthorRef{Name: creator.Name}
		if creator.NameType == datacite.NameTypePersonal {
			parts := make([]string, 0, 2)
			if creator.GivenName != "" {
				parts = append(parts, creator.GivenName)
			}
			if creator.FamilyName != "" {
				parts = append(parts, creator.FamilyName)
			}
			ref.Name = strings.Join(parts, " ")
		}
		for _, ni := range creator.NameIdentifiers {
			if ni.NameIdentifierScheme == "ORCID" {
				ref.ORCID = ni.NameIdentifier
				break
			}
		}
		rec.Authors = append(rec.Authors, ref)
	}

	for _, subject := range res.Subjects {
		rec.Keywords = append(rec.Keywords, subject.Subject)
	}

	var body strings.Builder
	for _, d := range res.Descriptions {
		fmt.Fprintf(&body, "<p>%s</p>", d.Description)
	}
	rec.DescriptionHTML = body.String()

	return rec
}

func describeOutcome(o registry.Outcome) string {
	switch o {
	case registry.OutcomeUnauthorized:
		return "bad credentials"
	case registry.OutcomeSchemaError:
		return "the metadata payload was rejected (schema error)"
	case registry.OutcomeNotFound:
		return "DOI does not exist or the account is not authorized for it"
	case registry.OutcomeUnregistered:
		return "DOI is known to the registry but not registered"
	default:
		return fmt.Sprintf("unexpected response (%s)", o)
	}
}
