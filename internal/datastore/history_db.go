package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aleister1102/canonguard/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Run statuses stored in the runs table
const (
	RunStatusStarted   = "STARTED"
	RunStatusCompleted = "COMPLETED"
	RunStatusFailed    = "FAILED"
	RunStatusCancelled = "CANCELLED"
)

// HistoryDB records audit runs and their page records in SQLite.
type HistoryDB struct {
	db     *sql.DB
	logger zerolog.Logger
}

// RunSummary holds the counts stored with a completed run
type RunSummary struct {
	Total      int
	Matches    int
	Mismatches int
	Errors     int
}

// MatchRate returns the percentage of Match records
func (s RunSummary) MatchRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Matches) * 100 / float64(s.Total)
}

// RunEntry represents a row in the runs table.
type RunEntry struct {
	RunID       string
	StartTime   time.Time
	EndTime     *time.Time
	Status      string
	Source      string
	URLCount    int
	Summary     RunSummary
	ReportPaths []string
}

// NewRunID returns a fresh run identifier
func NewRunID() string {
	return uuid.NewString()
}

// NewHistoryDB opens the database at path, creating its directory and schema when missing.
func NewHistoryDB(path string, logger zerolog.Logger) (*HistoryDB, error) {
	logger = logger.With().Str("component", "HistoryDB").Logger()
	logger.Info().Str("db_path", path).Msg("Initializing history database connection")

	dbDir := filepath.Dir(path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error().Err(err).Str("directory", dbDir).Msg("Failed to create history database directory")
		return nil, fmt.Errorf("failed to create history database directory %s: %w", dbDir, err)
	}

	dbInstance, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Error().Err(err).Str("db_path", path).Msg("Failed to open history database")
		return nil, fmt.Errorf("sql.Open failed for %s: %w", path, err)
	}
	// SQLite allows one writer at a time
	dbInstance.SetMaxOpenConns(1)

	h := &HistoryDB{
		db:     dbInstance,
		logger: logger,
	}

	if err := h.initSchema(); err != nil {
		_ = h.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logger.Debug().Str("path", path).Msg("History database ready")
	return h, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	if h.db != nil {
		return h.db.Close()
	}
	return nil
}

func (h *HistoryDB) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		start_time INTEGER NOT NULL,
		end_time INTEGER,
		status TEXT NOT NULL,
		source TEXT NOT NULL,
		url_count INTEGER NOT NULL DEFAULT 0,
		total INTEGER NOT NULL DEFAULT 0,
		matches INTEGER NOT NULL DEFAULT 0,
		mismatches INTEGER NOT NULL DEFAULT 0,
		errors INTEGER NOT NULL DEFAULT 0,
		report_paths TEXT
	);
	CREATE TABLE IF NOT EXISTS page_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		url TEXT NOT NULL,
		final_url TEXT,
		canonical_url TEXT,
		status TEXT NOT NULL,
		error TEXT,
		response_time REAL,
		http_status INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_page_records_run_id ON page_records(run_id);
	`
	if _, err := h.db.Exec(query); err != nil {
		h.logger.Error().Err(err).Msg("Failed to initialize schema")
		return err
	}
	return nil
}

// RecordRunStart inserts a run with status STARTED.
func (h *HistoryDB) RecordRunStart(ctx context.Context, runID, source string, urlCount int, startTime time.Time) error {
	query := `INSERT INTO runs (run_id, start_time, status, source, url_count) VALUES (?, ?, ?, ?, ?)`
	if _, err := h.db.ExecContext(ctx, query, runID, startTime.UnixMilli(), RunStatusStarted, source, urlCount); err != nil {
		h.logger.Error().Err(err).Str("run_id", runID).Msg("Failed to record run start")
		return fmt.Errorf("failed to insert run start record: %w", err)
	}
	h.logger.Debug().Str("run_id", runID).Str("source", source).Msg("Recorded run start")
	return nil
}

// CompleteRun stores the end time, final status, counts and report paths of a run.
func (h *HistoryDB) CompleteRun(ctx context.Context, runID string, endTime time.Time, status string, summary RunSummary, reportPaths []string) error {
	query := `UPDATE runs SET end_time = ?, status = ?, total = ?, matches = ?, mismatches = ?, errors = ?, report_paths = ? WHERE run_id = ?`
	paths := sql.NullString{String: strings.Join(reportPaths, "\n"), Valid: len(reportPaths) > 0}

	result, err := h.db.ExecContext(ctx, query, endTime.UnixMilli(), status, summary.Total, summary.Matches, summary.Mismatches, summary.Errors, paths, runID)
	if err != nil {
		h.logger.Error().Err(err).Str("run_id", runID).Msg("Failed to update run completion")
		return fmt.Errorf("failed to update run completion for %s: %w", runID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	h.logger.Debug().Str("run_id", runID).Str("status", status).Msg("Updated run completion")
	return nil
}

// SavePageRecords stores the records of a run in one transaction.
func (h *HistoryDB) SavePageRecords(ctx context.Context, runID string, records []models.PageRecord) (err error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO page_records
		(run_id, url, final_url, canonical_url, status, error, response_time, http_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err = stmt.ExecContext(ctx, runID, r.URL, nullString(r.FinalURL), nullString(r.CanonicalURL),
			string(r.Status), nullString(r.ErrorDetail), nullFloat(r.ResponseTimeSeconds), nullInt(r.HTTPStatus)); err != nil {
			return fmt.Errorf("failed to insert page record for %s: %w", r.URL, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit page records: %w", err)
	}
	h.logger.Debug().Str("run_id", runID).Int("records", len(records)).Msg("Saved page records")
	return nil
}

// LastRuns returns up to n runs, most recent first.
func (h *HistoryDB) LastRuns(ctx context.Context, n int) ([]RunEntry, error) {
	query := `SELECT run_id, start_time, end_time, status, source, url_count, total, matches, mismatches, errors, report_paths
		FROM runs ORDER BY start_time DESC, rowid DESC LIMIT ?`
	rows, err := h.db.QueryContext(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var (
			entry       RunEntry
			startMillis int64
			endMillis   sql.NullInt64
			paths       sql.NullString
		)
		if err := rows.Scan(&entry.RunID, &startMillis, &endMillis, &entry.Status, &entry.Source, &entry.URLCount,
			&entry.Summary.Total, &entry.Summary.Matches, &entry.Summary.Mismatches, &entry.Summary.Errors, &paths); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		entry.StartTime = time.UnixMilli(startMillis)
		if endMillis.Valid {
			end := time.UnixMilli(endMillis.Int64)
			entry.EndTime = &end
		}
		if paths.Valid && paths.String != "" {
			entry.ReportPaths = strings.Split(paths.String, "\n")
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// PreviousCompletedRun returns the most recent COMPLETED run other than excludeRunID, or nil.
func (h *HistoryDB) PreviousCompletedRun(ctx context.Context, excludeRunID string) (*RunEntry, error) {
	runs, err := h.LastRuns(ctx, 10)
	if err != nil {
		return nil, err
	}
	for i := range runs {
		if runs[i].RunID != excludeRunID && runs[i].Status == RunStatusCompleted {
			return &runs[i], nil
		}
	}
	return nil, nil
}

// PageRecords returns the stored records of a run in insertion order.
func (h *HistoryDB) PageRecords(ctx context.Context, runID string) ([]models.PageRecord, error) {
	query := `SELECT url, final_url, canonical_url, status, error, response_time, http_status
		FROM page_records WHERE run_id = ? ORDER BY id`
	rows, err := h.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query page records: %w", err)
	}
	defer rows.Close()

	var records []models.PageRecord
	for rows.Next() {
		var (
			r                            models.PageRecord
			status                       string
			finalURL, canonical, errText sql.NullString
			responseTime                 sql.NullFloat64
			httpStatus                   sql.NullInt64
		)
		if err := rows.Scan(&r.URL, &finalURL, &canonical, &status, &errText, &responseTime, &httpStatus); err != nil {
			return nil, fmt.Errorf("failed to scan page record row: %w", err)
		}
		r.Status = models.PageStatus(status)
		if finalURL.Valid {
			r.FinalURL = models.StringPtr(finalURL.String)
		}
		if canonical.Valid {
			r.CanonicalURL = models.StringPtr(canonical.String)
		}
		if errText.Valid {
			r.ErrorDetail = models.StringPtr(errText.String)
		}
		if responseTime.Valid {
			r.ResponseTimeSeconds = models.Float64Ptr(responseTime.Float64)
		}
		if httpStatus.Valid {
			r.HTTPStatus = models.IntPtr(int(httpStatus.Int64))
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}
