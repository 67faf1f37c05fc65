package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/akepally/ScholarRAG/internal/config"
	"github.com/akepally/ScholarRAG/internal/domain/paper"
	"github.com/akepally/ScholarRAG/pkg/logging"
)

const schema = `
	CREATE TABLE IF NOT EXISTS papers (
		id             TEXT PRIMARY KEY,
		doc_type       TEXT NOT NULL DEFAULT '',
		title          TEXT NOT NULL DEFAULT '',
		abstract       TEXT NOT NULL DEFAULT '',
		keywords       TEXT NOT NULL DEFAULT '[]',
		authors        TEXT NOT NULL DEFAULT '[]',
		venue          TEXT NOT NULL DEFAULT '',
		year           INTEGER NOT NULL DEFAULT 0,
		citation_count INTEGER NOT NULL DEFAULT 0,
		url            TEXT NOT NULL DEFAULT '',
		metadata       TEXT NOT NULL DEFAULT '{}',
		ingested_at    DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_papers_year ON papers(year);
	CREATE INDEX IF NOT EXISTS idx_papers_venue ON papers(venue);
`

const paperColumns = "id, doc_type, title, abstract, keywords, authors, venue, year, citation_count, url, metadata, ingested_at"

// Store is the durable paper catalog. The vector index is derived
// state; this is the record it can always be rebuilt from.
type Store struct {
	db     *sql.DB
	path   string
	logger *logging.Logger
}

// NewStore opens (or creates) the catalog database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		dataDir = config.GetDataDir()
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, config.CatalogFileName)

	// WAL so catalog reads do not block ingestion writes
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}

	return &Store{
		db:     db,
		path:   dbPath,
		logger: logging.NewLogger("catalog"),
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Import upserts a batch of papers in one transaction and returns how
// many rows were written. Papers without an id are skipped and counted
// out of the result.
func (s *Store) Import(ctx context.Context, papers []paper.Paper) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO papers (`+paperColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			doc_type = excluded.doc_type,
			title = excluded.title,
			abstract = excluded.abstract,
			keywords = excluded.keywords,
			authors = excluded.authors,
			venue = excluded.venue,
			year = excluded.year,
			citation_count = excluded.citation_count,
			url = excluded.url,
			metadata = excluded.metadata,
			ingested_at = excluded.ingested_at
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, p := range papers {
		if strings.TrimSpace(p.Id) == "" {
			s.logger.Warn("skipping paper without id", "title", p.Title)
			continue
		}
		keywordsJSON, authorsJSON, metadataJSON, err := marshalSideFields(p)
		if err != nil {
			return written, err
		}
		if p.IngestedAt.IsZero() {
			p.IngestedAt = time.Now().UTC()
		}

		if _, err := stmt.ExecContext(ctx, p.Id, p.DocType, p.Title, p.Abstract,
			keywordsJSON, authorsJSON, p.Venue, p.Year, p.CitationCount,
			p.URL, metadataJSON, p.IngestedAt); err != nil {
			return written, fmt.Errorf("saving paper %s: %w", p.Id, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return written, nil
}

// Get retrieves a paper by id.
func (s *Store) Get(ctx context.Context, id string) (paper.Paper, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+paperColumns+` FROM papers WHERE id = ?
	`, id)

	return scanPaper(row.Scan)
}

// List returns a page of the catalog, most recently ingested first.
func (s *Store) List(ctx context.Context, limit, offset int) ([]paper.Paper, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+paperColumns+` FROM papers
		ORDER BY ingested_at DESC, id ASC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	return collectPapers(rows)
}

// All returns the full catalog in id order. Rebuild jobs read from
// here so two rebuilds over the same catalog see the same sequence.
func (s *Store) All(ctx context.Context) ([]paper.Paper, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+paperColumns+` FROM papers ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	return collectPapers(rows)
}

// Search applies the structured filter. String fields match as
// case-insensitive substrings, years as an inclusive range.
func (s *Store) Search(ctx context.Context, f paper.Filter) ([]paper.Paper, error) {
	var conds []string
	var args []any

	if f.Title != "" {
		conds = append(conds, "title LIKE ?")
		args = append(args, like(f.Title))
	}
	if f.Author != "" {
		conds = append(conds, "authors LIKE ?")
		args = append(args, like(f.Author))
	}
	if f.Venue != "" {
		conds = append(conds, "venue LIKE ?")
		args = append(args, like(f.Venue))
	}
	if f.Keyword != "" {
		conds = append(conds, "(keywords LIKE ? OR title LIKE ? OR abstract LIKE ?)")
		args = append(args, like(f.Keyword), like(f.Keyword), like(f.Keyword))
	}
	if f.DocType != "" {
		conds = append(conds, "doc_type = ?")
		args = append(args, f.DocType)
	}
	if f.YearFrom > 0 {
		conds = append(conds, "year >= ?")
		args = append(args, f.YearFrom)
	}
	if f.YearTo > 0 {
		conds = append(conds, "year <= ?")
		args = append(args, f.YearTo)
	}

	query := "SELECT " + paperColumns + " FROM papers"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY year DESC, id ASC LIMIT ?"
	args = append(args, clampLimit(f.Limit))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching papers: %w", err)
	}
	defer rows.Close()

	return collectPapers(rows)
}

// Count returns the number of cataloged papers.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM papers").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting papers: %w", err)
	}
	return count, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return config.DefaultSearchLimit
	}
	if limit > config.SearchLimitCap {
		return config.SearchLimitCap
	}
	return limit
}

func like(term string) string {
	return "%" + term + "%"
}

func marshalSideFields(p paper.Paper) (string, string, string, error) {
	keywordsJSON, err := json.Marshal(p.Keywords)
	if err != nil {
		return "", "", "", fmt.Errorf("marshalling keywords: %w", err)
	}
	authorsJSON, err := json.Marshal(p.Authors)
	if err != nil {
		return "", "", "", fmt.Errorf("marshalling authors: %w", err)
	}
	if p.Metadata == nil {
		p.Metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(p.Metadata)
	if err != nil {
		return "", "", "", fmt.Errorf("marshalling metadata: %w", err)
	}
	return string(keywordsJSON), string(authorsJSON), string(metadataJSON), nil
}

// scanPaper works over both sql.Row and sql.Rows through their shared
// Scan signature.
func scanPaper(scan func(dest ...any) error) (paper.Paper, error) {
	var p paper.Paper
	var keywordsJSON, authorsJSON, metadataJSON string
	var ingestedAt sql.NullTime

	if err := scan(&p.Id, &p.DocType, &p.Title, &p.Abstract, &keywordsJSON,
		&authorsJSON, &p.Venue, &p.Year, &p.CitationCount, &p.URL,
		&metadataJSON, &ingestedAt); err != nil {
		if err == sql.ErrNoRows {
			return paper.Paper{}, paper.ErrNotFound
		}
		return paper.Paper{}, fmt.Errorf("scanning paper: %w", err)
	}

	if err := json.Unmarshal([]byte(keywordsJSON), &p.Keywords); err != nil {
		return paper.Paper{}, fmt.Errorf("unmarshaling keywords: %w", err)
	}
	if err := json.Unmarshal([]byte(authorsJSON), &p.Authors); err != nil {
		return paper.Paper{}, fmt.Errorf("unmarshaling authors: %w", err)
	}
	if err := json.Unmarshal([]byte(metadataJSON), &p.Metadata); err != nil {
		return paper.Paper{}, fmt.Errorf("unmarshaling metadata: %w", err)
	}
	if ingestedAt.Valid {
		p.IngestedAt = ingestedAt.Time
	}
	return p, nil
}

func collectPapers(rows *sql.Rows) ([]paper.Paper, error) {
	var papers []paper.Paper //nolint:prealloc // size unknown from query
	for rows.Next() {
		p, err := scanPaper(rows.Scan)
		if err != nil {
			return nil, err
		}
		papers = append(papers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating papers: %w", err)
	}
	return papers, nil
}
