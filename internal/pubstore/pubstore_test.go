package pubstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ecmwf-copernicus/copernicus-publication/internal/lifecycle"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "pubs.db"), "https://publications.example.org/")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord() lifecycle.LocalRecord {
	return lifecycle.LocalRecord{
		Title: "Forecast skill of the ensemble",
		Authors: []lifecycle.AuthorRef{
			{Name: "Jane Smith", ORCID: "0000-0001-2345-6789"},
			{Name: "Marco Rossi"},
		},
		DOI:             "10.82044/abc-999",
		Keywords:        []string{"climate", "reanalysis"},
		PublicationDate: "2020-01-01",
		Publisher:       "ECMWF",
		DescriptionHTML: "<p>An abstract.</p>",
	}
}

func TestPersistPublication(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.PersistPublication(ctx, testRecord())
	if err != nil {
		t.Fatalf("PersistPublication() error = %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero publication ID")
	}

	got, err := s.GetPublicationByDOI(ctx, "10.82044/abc-999")
	if err != nil {
		t.Fatalf("GetPublicationByDOI() error = %v", err)
	}
	if got == nil {
		t.Fatal("expected stored publication")
	}
	if got.Title != "Forecast skill of the ensemble" || got.Publisher != "ECMWF" {
		t.Errorf("title/publisher = %q/%q", got.Title, got.Publisher)
	}
	if len(got.Authors) != 2 || got.Authors[0].Name != "Jane Smith" || got.Authors[0].ORCID != "0000-0001-2345-6789" {
		t.Errorf("authors = %+v", got.Authors)
	}
	if len(got.Keywords) != 2 {
		t.Errorf("keywords = %v", got.Keywords)
	}
	if got.DescriptionHTML != "<p>An abstract.</p>" {
		t.Errorf("description = %q", got.DescriptionHTML)
	}
}

func TestPersistPublication_TitleRequired(t *testing.T) {
	s := openTestStore(t)

	_, err := s.PersistPublication(context.Background(), lifecycle.LocalRecord{Title: "  "})
	if !errors.Is(err, ErrTitleRequired) {
		t.Errorf("error = %v, want ErrTitleRequired", err)
	}

	count, err := s.CountPublications(context.Background())
	if err != nil {
		t.Fatalf("CountPublications() error = %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestPersistPublication_ReusesAuthorsAndTerms(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := testRecord()
	if _, err := s.PersistPublication(ctx, first); err != nil {
		t.Fatalf("first persist: %v", err)
	}

	second := testRecord()
	second.Title = "A follow-up study"
	second.DOI = "10.82044/def-111"
	if _, err := s.PersistPublication(ctx, second); err != nil {
		t.Fatalf("second persist: %v", err)
	}

	authors, err := s.CountAuthors(ctx)
	if err != nil {
		t.Fatalf("CountAuthors() error = %v", err)
	}
	if authors != 2 {
		t.Errorf("authors = %d, want 2 shared across both publications", authors)
	}

	pubs, err := s.CountPublications(ctx)
	if err != nil {
		t.Fatalf("CountPublications() error = %v", err)
	}
	if pubs != 2 {
		t.Errorf("publications = %d, want 2", pubs)
	}
}

func TestPersistPublication_SameNameDifferentORCID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := lifecycle.LocalRecord{
		Title: "Attribution test",
		Authors: []lifecycle.AuthorRef{
			{Name: "Jane Smith", ORCID: "0000-0001-2345-6789"},
			{Name: "Jane Smith", ORCID: "0000-0002-9999-0000"},
		},
	}
	if _, err := s.PersistPublication(ctx, rec); err != nil {
		t.Fatalf("PersistPublication() error = %v", err)
	}

	authors, err := s.CountAuthors(ctx)
	if err != nil {
		t.Fatalf("CountAuthors() error = %v", err)
	}
	if authors != 2 {
		t.Errorf("authors = %d, want 2 distinct identities", authors)
	}
}

func TestGetPublicationByDOI_NotFound(t *testing.T) {
	s := openTestStore(t)

	got, err := s.GetPublicationByDOI(context.Background(), "10.82044/nope")
	if err != nil {
		t.Fatalf("GetPublicationByDOI() error = %v", err)
	}
	if got != nil {
		t.Errorf("got = %+v, want nil", got)
	}
}

func TestCanonicalURL(t *testing.T) {
	s := openTestStore(t)

	if got := s.CanonicalURL(42); got != "https://publications.example.org/node/42" {
		t.Errorf("CanonicalURL(42) = %q", got)
	}
}
