package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/chrisjgaze/bp-analyzer/internal/analysis"
	"github.com/chrisjgaze/bp-analyzer/internal/extractor"
	"github.com/chrisjgaze/bp-analyzer/internal/findings"
	"github.com/chrisjgaze/bp-analyzer/internal/graph"
	"github.com/chrisjgaze/bp-analyzer/internal/xref"
)

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates or opens a SQLite database.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// EnsureSourceSchema creates the source documents table. Only ingest
// calls this; analysis never writes the source table.
func (s *SQLiteStore) EnsureSourceSchema(ctx context.Context, replace bool) error {
	if replace {
		if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS documents;`); err != nil {
			return err
		}
	}
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		kind TEXT,
		name TEXT,
		description TEXT,
		version TEXT,
		created_at TEXT,
		created_by TEXT,
		modified_at TEXT,
		modified_by TEXT,
		xml TEXT
	);`)
	return err
}

// InsertDocuments appends source records inside one transaction.
func (s *SQLiteStore) InsertDocuments(ctx context.Context, docs []Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO documents
		(id, kind, name, description, version, xml) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, d := range docs {
		if _, err := stmt.ExecContext(ctx, d.ID, d.Kind, d.Name, d.Description, d.Version, d.XML); err != nil {
			return fmt.Errorf("insert document %s: %w", d.ID, err)
		}
	}
	return tx.Commit()
}

// Documents reads the source table, optionally filtered by kind and a
// case-insensitive name fragment. IDs come back uppercased for stable
// cross-reference matching.
func (s *SQLiteStore) Documents(ctx context.Context, f Filter) ([]Document, error) {
	query := `SELECT UPPER(id), COALESCE(kind,''), COALESCE(name,''),
		COALESCE(description,''), COALESCE(version,''), COALESCE(xml,'')
		FROM documents WHERE 1=1`
	var args []any
	if f.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, f.Kind)
	}
	if f.NameLike != "" {
		query += ` AND instr(lower(name), lower(?)) > 0`
		args = append(args, f.NameLike)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Kind, &d.Name, &d.Description, &d.Version, &d.XML); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Derived tables, dropped and recreated on every run.
var derivedTables = []struct {
	name string
	ddl  string
}{
	{"code_units", `CREATE TABLE code_units (
		document_id TEXT,
		name TEXT,
		page TEXT,
		stage_id TEXT,
		stage TEXT,
		language TEXT,
		code TEXT,
		preview TEXT,
		line_count INTEGER,
		sha256 TEXT,
		is_global INTEGER
	);`},
	{"findings", `CREATE TABLE findings (
		document_id TEXT,
		name TEXT,
		page TEXT,
		stage_id TEXT,
		stage TEXT,
		category TEXT,
		snippet TEXT,
		line INTEGER
	);`},
	{"xrefs", `CREATE TABLE xrefs (
		source_id TEXT,
		source_name TEXT,
		kind TEXT,
		target TEXT,
		action TEXT,
		page TEXT,
		stage TEXT
	);`},
	{"edges", `CREATE TABLE edges (
		from_id TEXT,
		from_name TEXT,
		to_id TEXT,
		to_name TEXT,
		kind TEXT,
		weight INTEGER
	);`},
	{"stage_stats", `CREATE TABLE stage_stats (
		document_id TEXT,
		name TEXT,
		stage_type TEXT,
		count INTEGER
	);`},
	{"logging_summary", `CREATE TABLE logging_summary (
		document_id TEXT,
		name TEXT,
		total_stages INTEGER,
		enabled_count INTEGER,
		inhibited_count INTEGER,
		exception_count INTEGER,
		full_logging_pct REAL,
		no_logging_pct REAL,
		error_only_pct REAL,
		enabled_names TEXT,
		inhibited_names TEXT
	);`},
	{"credential_usage", `CREATE TABLE credential_usage (
		document_name TEXT,
		page TEXT,
		stage TEXT
	);`},
	{"resource_usage", `CREATE TABLE resource_usage (
		document_id TEXT,
		document_name TEXT,
		object TEXT
	);`},
	{"run_summary", `CREATE TABLE run_summary (
		run_id TEXT,
		created_at TEXT,
		total_processes INTEGER,
		total_objects INTEGER,
		ratio_process_to_object REAL,
		export_version TEXT
	);`},
}

// WriteRun replaces all derived records with the results of one run in
// a single transaction.
func (s *SQLiteStore) WriteRun(ctx context.Context, run RunInfo, results []*analysis.Result, g *graph.Graph) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range derivedTables {
		if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+t.name+`;`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("create %s: %w", t.name, err)
		}
	}

	for _, res := range results {
		if err := writeResult(ctx, tx, res); err != nil {
			return fmt.Errorf("write results for %s: %w", res.Input.ID, err)
		}
	}

	if g != nil {
		for _, e := range g.Edges() {
			if _, err := tx.ExecContext(ctx, `INSERT INTO edges
				(from_id, from_name, to_id, to_name, kind, weight) VALUES (?, ?, ?, ?, ?, ?)`,
				e.FromID, e.FromName, e.ToID, e.ToName, string(e.Kind), e.Weight); err != nil {
				return err
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO run_summary
		(run_id, created_at, total_processes, total_objects, ratio_process_to_object, export_version)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(time.RFC3339), run.TotalProcesses,
		run.TotalObjects, run.Ratio, run.ExportVersion); err != nil {
		return err
	}

	return tx.Commit()
}

func writeResult(ctx context.Context, tx *sql.Tx, res *analysis.Result) error {
	in := res.Input

	for _, u := range res.Units {
		if _, err := tx.ExecContext(ctx, `INSERT INTO code_units
			(document_id, name, page, stage_id, stage, language, code, preview, line_count, sha256, is_global)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			u.DocumentID, u.DocumentName, u.Page, u.StageID, u.StageName, u.Language,
			u.Display, u.Preview, u.DisplayLines, u.SHA256, boolInt(u.IsGlobal)); err != nil {
			return err
		}
		for _, f := range u.Findings {
			if _, err := tx.ExecContext(ctx, `INSERT INTO findings
				(document_id, name, page, stage_id, stage, category, snippet, line)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				u.DocumentID, u.DocumentName, u.Page, u.StageID, u.StageName,
				f.Category, f.Snippet, f.Line); err != nil {
				return err
			}
		}
	}

	for _, r := range res.Refs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO xrefs
			(source_id, source_name, kind, target, action, page, stage)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.SourceID, r.SourceName, string(r.Kind), r.Target, r.Action, r.Page, r.Stage); err != nil {
			return err
		}
	}

	for stageType, count := range res.Stats.StageTypes {
		if _, err := tx.ExecContext(ctx, `INSERT INTO stage_stats
			(document_id, name, stage_type, count) VALUES (?, ?, ?, ?)`,
			in.ID, in.Name, stageType, count); err != nil {
			return err
		}
	}

	l := res.Stats.Logging
	enabled, _ := json.Marshal(l.EnabledNames)
	inhibited, _ := json.Marshal(l.InhibitedNames)
	if _, err := tx.ExecContext(ctx, `INSERT INTO logging_summary
		(document_id, name, total_stages, enabled_count, inhibited_count, exception_count,
		 full_logging_pct, no_logging_pct, error_only_pct, enabled_names, inhibited_names)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Name, l.TotalStages, l.EnabledCount, l.InhibitedCount, l.ExceptionCount,
		l.FullLoggingPct, l.NoLoggingPct, l.ErrorOnlyPct, string(enabled), string(inhibited)); err != nil {
		return err
	}

	for _, c := range res.Stats.Credentials {
		if _, err := tx.ExecContext(ctx, `INSERT INTO credential_usage
			(document_name, page, stage) VALUES (?, ?, ?)`,
			in.Name, c.Page, c.Stage); err != nil {
			return err
		}
	}

	for _, obj := range res.Stats.Resources {
		if _, err := tx.ExecContext(ctx, `INSERT INTO resource_usage
			(document_id, document_name, object) VALUES (?, ?, ?)`,
			in.ID, in.Name, obj); err != nil {
			return err
		}
	}

	return nil
}

// Units reads code units with their findings attached, ordered by
// document name, page, then stage name.
func (s *SQLiteStore) Units(ctx context.Context) ([]analysis.Unit, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT document_id, name, page, stage_id,
		stage, language, code, preview, line_count, sha256, is_global
		FROM code_units ORDER BY name, page, stage;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []analysis.Unit
	for rows.Next() {
		var u analysis.Unit
		var global int
		if err := rows.Scan(&u.DocumentID, &u.DocumentName, &u.Page, &u.StageID,
			&u.StageName, &u.Language, &u.Display, &u.Preview, &u.DisplayLines,
			&u.SHA256, &global); err != nil {
			return nil, err
		}
		u.IsGlobal = global != 0
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byKey := map[string]*analysis.Unit{}
	for i := range units {
		byKey[unitKey(units[i].CodeUnit)] = &units[i]
	}

	frows, err := s.db.QueryContext(ctx, `SELECT document_id, page, stage_id, category, snippet, line FROM findings;`)
	if err != nil {
		return nil, err
	}
	defer frows.Close()

	for frows.Next() {
		var key extractor.CodeUnit
		var f findings.Finding
		if err := frows.Scan(&key.DocumentID, &key.Page, &key.StageID, &f.Category, &f.Snippet, &f.Line); err != nil {
			return nil, err
		}
		if u, ok := byKey[unitKey(key)]; ok {
			u.Findings = append(u.Findings, f)
		}
	}
	return units, frows.Err()
}

func unitKey(u extractor.CodeUnit) string {
	return u.DocumentID + "\x00" + u.Page + "\x00" + u.StageID
}

// Edges reads the aggregated reference graph.
func (s *SQLiteStore) Edges(ctx context.Context) ([]graph.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT from_id, from_name, to_id, to_name, kind, weight
		FROM edges ORDER BY from_name, to_name;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []graph.Edge
	for rows.Next() {
		var e graph.Edge
		var kind string
		if err := rows.Scan(&e.FromID, &e.FromName, &e.ToID, &e.ToName, &kind, &e.Weight); err != nil {
			return nil, err
		}
		e.Kind = xref.Kind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}

// LoggingSummaries reads per-document logging coverage.
func (s *SQLiteStore) LoggingSummaries(ctx context.Context) ([]LoggingRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT document_id, name, total_stages,
		enabled_count, inhibited_count, exception_count,
		full_logging_pct, no_logging_pct, error_only_pct
		FROM logging_summary ORDER BY name;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LoggingRow
	for rows.Next() {
		var r LoggingRow
		if err := rows.Scan(&r.DocumentID, &r.Name, &r.TotalStages,
			&r.EnabledCount, &r.InhibitedCount, &r.ExceptionCount,
			&r.FullLoggingPct, &r.NoLoggingPct, &r.ErrorOnlyPct); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CredentialUses reads credential-component call sites.
func (s *SQLiteStore) CredentialUses(ctx context.Context) ([]CredentialRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT document_name, page, stage
		FROM credential_usage ORDER BY document_name, page, stage;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CredentialRow
	for rows.Next() {
		var r CredentialRow
		if err := rows.Scan(&r.DocumentName, &r.Page, &r.Stage); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LastRun reads the summary of the stored run.
func (s *SQLiteStore) LastRun(ctx context.Context) (RunInfo, error) {
	var run RunInfo
	var created string
	err := s.db.QueryRowContext(ctx, `SELECT run_id, created_at, total_processes,
		total_objects, ratio_process_to_object, COALESCE(export_version,'')
		FROM run_summary LIMIT 1;`).Scan(&run.ID, &created, &run.TotalProcesses,
		&run.TotalObjects, &run.Ratio, &run.ExportVersion)
	if err != nil {
		return RunInfo{}, err
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return run, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
