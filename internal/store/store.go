// Package store persists scored runs to a SQLite database. The database is
// rebuildable: every pipeline run inserts a fresh snapshot and listing
// defaults to the most recent one.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huandu/go-sqlbuilder"

	"github.com/luiscosio/CiteIQ/internal/citation"
	"github.com/luiscosio/CiteIQ/internal/reference"
	_ "modernc.org/sqlite"
)

// DB wraps the records database.
type DB struct {
	db *sql.DB
}

// Run describes one pipeline execution.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	SortMode   string    `json:"sort_mode"`
	InputFiles []string  `json:"input_files"`
	Records    int       `json:"records"`
}

// Entry is one stored record row.
type Entry struct {
	RunID    string          `json:"run_id"`
	Position int             `json:"position"`
	Record   citation.Record `json:"record"`
}

// ListOptions filter and order a record listing. The zero value lists the
// latest run in score order.
type ListOptions struct {
	RunID    string  // empty selects the latest run
	Flag     string  // keep only records carrying this flag
	DOI      string  // keep only records with this DOI, any prefix form
	MinScore float64 // 0 = no minimum
	YearFrom int     // 0 = no lower bound
	YearTo   int     // 0 = no upper bound
	OrderBy  string  // score (default), year, or author
	Limit    int     // 0 = no limit
}

// Open opens or creates the records database at the given path.
func Open(path string) (*DB, error) {
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

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	// Flat columns mirror the record JSON for filtering and ordering.
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			sort_mode TEXT NOT NULL,
			input_files TEXT NOT NULL,
			record_count INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS records (
			run_id TEXT NOT NULL REFERENCES runs(id),
			position INTEGER NOT NULL,
			title TEXT,
			raw TEXT NOT NULL,
			doi TEXT,
			year INTEGER,
			first_author TEXT,
			score_total REAL NOT NULL,
			flags_json TEXT NOT NULL,
			record_json TEXT NOT NULL,
			PRIMARY KEY (run_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_records_doi ON records(doi) WHERE doi IS NOT NULL AND doi != '';
	`

	_, err := db.Exec(schema)
	return err
}

// InsertRun records one pipeline execution.
func (d *DB) InsertRun(run Run) error {
	filesJSON, err := json.Marshal(run.InputFiles)
	if err != nil {
		return fmt.Errorf("marshaling input files: %w", err)
	}

	_, err = d.db.Exec(
		`INSERT INTO runs (id, started_at, sort_mode, input_files, record_count) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC().Format(time.RFC3339), run.SortMode, string(filesJSON), run.Records,
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}
	return nil
}

// InsertRecords stores a run's records in their final order.
func (d *DB) InsertRecords(runID string, records []*citation.Record) error {
	stmt, err := d.db.Prepare(`
		INSERT INTO records (
			run_id, position, title, raw, doi, year, first_author,
			score_total, flags_json, record_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing record insert: %w", err)
	}
	defer stmt.Close()

	for i, record := range records {
		flags := record.Flags
		if flags == nil {
			flags = []citation.Flag{}
		}
		flagsJSON, err := json.Marshal(flags)
		if err != nil {
			return fmt.Errorf("marshaling flags for record %d: %w", i, err)
		}
		recordJSON, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshaling record %d: %w", i, err)
		}

		ref := record.Reference
		_, err = stmt.Exec(
			runID, i,
			nullableString(ref.Title), ref.Raw, nullableString(reference.NormalizeDOI(ref.DOI())),
			nullableInt(ref.Year), nullableString(authorSortKey(ref.Authors)),
			record.Score.Total(), string(flagsJSON), string(recordJSON),
		)
		if err != nil {
			return fmt.Errorf("inserting record %d: %w", i, err)
		}
	}
	return nil
}

// Runs lists all stored runs, newest first.
func (d *DB) Runs() ([]Run, error) {
	rows, err := d.db.Query(`SELECT id, started_at, sort_mode, input_files, record_count FROM runs ORDER BY started_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, filesJSON string
		if err := rows.Scan(&run.ID, &started, &run.SortMode, &filesJSON, &run.Records); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, started); err == nil {
			run.StartedAt = t
		}
		if err := json.Unmarshal([]byte(filesJSON), &run.InputFiles); err != nil {
			return nil, fmt.Errorf("parsing input files for run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LatestRunID returns the most recent run id, or "" for an empty database.
func (d *DB) LatestRunID() (string, error) {
	var id string
	err := d.db.QueryRow(`SELECT id FROM runs ORDER BY started_at DESC, id DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// List returns stored records matching the options. An empty database, or a
// filter that matches nothing, yields no entries and no error.
func (d *DB) List(opts ListOptions) ([]Entry, error) {
	runID := opts.RunID
	if runID == "" {
		latest, err := d.LatestRunID()
		if err != nil {
			return nil, fmt.Errorf("finding latest run: %w", err)
		}
		if latest == "" {
			return nil, nil
		}
		runID = latest
	}

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("run_id", "position", "record_json")
	sb.From("records")

	conds := []string{sb.Equal("run_id", runID)}
	if opts.Flag != "" {
		conds = append(conds, sb.Like("flags_json", `%"`+opts.Flag+`"%`))
	}
	if opts.DOI != "" {
		conds = append(conds, sb.Equal("doi", reference.NormalizeDOI(opts.DOI)))
	}
	if opts.MinScore > 0 {
		conds = append(conds, sb.GreaterEqualThan("score_total", opts.MinScore))
	}
	if opts.YearFrom > 0 {
		conds = append(conds, sb.GreaterEqualThan("year", opts.YearFrom))
	}
	if opts.YearTo > 0 {
		conds = append(conds, sb.LessEqualThan("year", opts.YearTo))
	}
	sb.Where(conds...)

	switch opts.OrderBy {
	case "", "score":
		sb.OrderBy("score_total DESC", "position ASC")
	case "year":
		sb.OrderBy("year DESC", "position ASC")
	case "author":
		sb.OrderBy("first_author ASC", "year ASC", "position ASC")
	default:
		return nil, fmt.Errorf("unknown order %q", opts.OrderBy)
	}
	if opts.Limit > 0 {
		sb.Limit(opts.Limit)
	}

	query, args := sb.Build()
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var recordJSON string
		if err := rows.Scan(&entry.RunID, &entry.Position, &recordJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(recordJSON), &entry.Record); err != nil {
			return nil, fmt.Errorf("parsing record %d: %w", entry.Position, err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// authorSortKey is the first author's surname, lowercased, matching the
// pipeline's author sort.
func authorSortKey(authors []reference.Author) string {
	if len(authors) == 0 {
		return ""
	}
	return strings.ToLower(authors[0].Surname())
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableInt(v int) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(v), Valid: true}
}
