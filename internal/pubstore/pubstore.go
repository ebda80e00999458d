// Package pubstore persists publication records in a local SQLite
// database, with find-or-create semantics for authors and keyword terms.
package pubstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ecmwf-copernicus/copernicus-publication/internal/lifecycle"
)

// ErrTitleRequired is returned when a record has no title to store.
var ErrTitleRequired = fmt.Errorf("publication title is required")

// Store wraps a SQLite database holding publications, authors and
// keyword terms. It implements lifecycle.LocalStore.
type Store struct {
	db      *sql.DB
	siteURL string
}

// Open opens or creates the publication database at path. siteURL is
// the public site base used to build canonical publication URLs.
func Open(path, siteURL string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, siteURL: strings.TrimSuffix(siteURL, "/")}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS publications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			doi TEXT,
			publication_date TEXT,
			publisher TEXT,
			description_html TEXT,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_publications_doi ON publications(doi) WHERE doi IS NOT NULL AND doi != '';

		CREATE TABLE IF NOT EXISTS authors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			orcid TEXT NOT NULL DEFAULT '',
			UNIQUE(name, orcid)
		);

		CREATE TABLE IF NOT EXISTS terms (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			label TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS publication_authors (
			publication_id INTEGER NOT NULL REFERENCES publications(id),
			author_id INTEGER NOT NULL REFERENCES authors(id),
			position INTEGER NOT NULL,
			PRIMARY KEY (publication_id, author_id)
		);

		CREATE TABLE IF NOT EXISTS publication_terms (
			publication_id INTEGER NOT NULL REFERENCES publications(id),
			term_id INTEGER NOT NULL REFERENCES terms(id),
			PRIMARY KEY (publication_id, term_id)
		);
	`
	_, err := db.Exec(schema)
	return err
}

// PersistPublication stores a publication record with its authors and
// keyword terms, reusing existing authors and terms by name. It returns
// the new publication's local ID.
func (s *Store) PersistPublication(ctx context.Context, rec lifecycle.LocalRecord) (int64, error) {
	if strings.TrimSpace(rec.Title) == "" {
		return 0, ErrTitleRequired
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO publications (title, doi, publication_date, publisher, description_html, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.Title, rec.DOI, rec.PublicationDate, rec.Publisher, rec.DescriptionHTML,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("inserting publication %q: %w", rec.Title, err)
	}
	pubID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, author := range rec.Authors {
		authorID, err := findOrCreateAuthor(ctx, tx, author.Name, author.ORCID)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO publication_authors (publication_id, author_id, position)
			VALUES (?, ?, ?)
		`, pubID, authorID, i); err != nil {
			return 0, fmt.Errorf("linking author %q: %w", author.Name, err)
		}
	}

	for _, keyword := range rec.Keywords {
		termID, err := findOrCreateTerm(ctx, tx, keyword)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO publication_terms (publication_id, term_id)
			VALUES (?, ?)
		`, pubID, termID); err != nil {
			return 0, fmt.Errorf("linking term %q: %w", keyword, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing publication %q: %w", rec.Title, err)
	}
	return pubID, nil
}

// CanonicalURL returns the public URL for a stored publication.
func (s *Store) CanonicalURL(id int64) string {
	return fmt.Sprintf("%s/node/%d", s.siteURL, id)
}

// findOrCreateAuthor returns the ID of the author with the given name
// and ORCID, creating it when absent. An empty name is not valid.
func findOrCreateAuthor(ctx context.Context, tx *sql.Tx, name, orcid string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("author name is required")
	}

	var id int64
	err := tx.QueryRowContext(ctx,
		"SELECT id FROM authors WHERE name = ? AND orcid = ?", name, orcid).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("looking up author %q: %w", name, err)
	}

	result, err := tx.ExecContext(ctx,
		"INSERT INTO authors (name, orcid) VALUES (?, ?)", name, orcid)
	if err != nil {
		return 0, fmt.Errorf("creating author %q: %w", name, err)
	}
	return result.LastInsertId()
}

// findOrCreateTerm returns the ID of the keyword term with the given
// label, creating it when absent.
func findOrCreateTerm(ctx context.Context, tx *sql.Tx, label string) (int64, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return 0, fmt.Errorf("term label is required")
	}

	var id int64
	err := tx.QueryRowContext(ctx,
		"SELECT id FROM terms WHERE label = ?", label).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("looking up term %q: %w", label, err)
	}

	result, err := tx.ExecContext(ctx,
		"INSERT INTO terms (label) VALUES (?)", label)
	if err != nil {
		return 0, fmt.Errorf("creating term %q: %w", label, err)
	}
	return result.LastInsertId()
}

// Publication is a stored publication record read back from the database.
type Publication struct {
	ID              int64
	Title           string
	DOI             string
	PublicationDate string
	Publisher       string
	DescriptionHTML string
	Authors         []lifecycle.AuthorRef
	Keywords        []string
}

// GetPublicationByDOI retrieves a stored publication by DOI. It returns
// nil when no publication carries that DOI.
func (s *Store) GetPublicationByDOI(ctx context.Context, doi string) (*Publication, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, doi, publication_date, publisher, description_html
		FROM publications
		WHERE doi = ?
	`, doi)

	var p Publication
	var pubDOI, date, publisher, body sql.NullString
	err := row.Scan(&p.ID, &p.Title, &pubDOI, &date, &publisher, &body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying publication by DOI: %w", err)
	}
	p.DOI = pubDOI.String
	p.PublicationDate = date.String
	p.Publisher = publisher.String
	p.DescriptionHTML = body.String

	if p.Authors, err = s.publicationAuthors(ctx, p.ID); err != nil {
		return nil, err
	}
	if p.Keywords, err = s.publicationKeywords(ctx, p.ID); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) publicationAuthors(ctx context.Context, pubID int64) ([]lifecycle.AuthorRef, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.name, a.orcid
		FROM authors a
		JOIN publication_authors pa ON pa.author_id = a.id
		WHERE pa.publication_id = ?
		ORDER BY pa.position
	`, pubID)
	if err != nil {
		return nil, fmt.Errorf("querying publication authors: %w", err)
	}
	defer rows.Close()

	var authors []lifecycle.AuthorRef
	for rows.Next() {
		var ref lifecycle.AuthorRef
		if err := rows.Scan(&ref.Name, &ref.ORCID); err != nil {
			return nil, err
		}
		authors = append(authors, ref)
	}
	return authors, rows.Err()
}

func (s *Store) publicationKeywords(ctx context.Context, pubID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.label
		FROM terms t
		JOIN publication_terms pt ON pt.term_id = t.id
		WHERE pt.publication_id = ?
		ORDER BY t.label
	`, pubID)
	if err != nil {
		return nil, fmt.Errorf("querying publication keywords: %w", err)
	}
	defer rows.Close()

	var keywords []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		keywords = append(keywords, label)
	}
	return keywords, rows.Err()
}

// CountPublications returns the total number of stored publications.
func (s *Store) CountPublications(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM publications").Scan(&count)
	return count, err
}

// CountAuthors returns the total number of distinct authors.
func (s *Store) CountAuthors(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM authors").Scan(&count)
	return count, err
}
