package datastore

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aleister1102/scamsiren/internal/common"
	"github.com/aleister1102/scamsiren/internal/models"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get when no record exists for the URL.
var ErrNotFound = errors.New("history record not found")

const urlKeyLength = 16

// HistoryRecord is one persisted verdict.
type HistoryRecord struct {
	ID             int64
	BatchID        string
	Input          string
	OriginalURL    string
	FinalURL       string
	Classification models.Classification
	Score          int
	SourceTier     models.SourceTier
	Verdict        models.RiskVerdict
	RecordedAt     time.Time
}

// History stores elevated verdicts in a local sqlite database.
type History struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewHistory opens (creating if needed) the database at path and ensures the schema.
func NewHistory(path string, logger zerolog.Logger) (*History, error) {
	logger = logger.With().Str("component", "History").Logger()
	logger.Debug().Str("db_path", path).Msg("Opening verdict history database")

	if err := common.NewFileManager(logger).EnsureDirectory(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sql.Open failed for %s: %w", path, err)
	}
	// sqlite allows one writer at a time.
	db.SetMaxOpenConns(1)

	h := &History{db: db, logger: logger}
	if err := h.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return h, nil
}

// Close closes the database connection.
func (h *History) Close() error {
	if h.db != nil {
		return h.db.Close()
	}
	return nil
}

func (h *History) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS risk_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url_key TEXT NOT NULL,
		batch_id TEXT,
		input TEXT NOT NULL,
		original_url TEXT NOT NULL,
		final_url TEXT NOT NULL,
		classification TEXT NOT NULL,
		score INTEGER NOT NULL,
		source_tier TEXT NOT NULL,
		verdict_json TEXT NOT NULL,
		recorded_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_risk_records_url_key ON risk_records (url_key);
	CREATE INDEX IF NOT EXISTS idx_risk_records_recorded_at ON risk_records (recorded_at);
	`
	_, err := h.db.Exec(query)
	return err
}

// urlKey is a short stable digest of a URL used as the lookup column.
func urlKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])[:urlKeyLength]
}

// Record stores the report and returns the new row ID. Callers decide what
// is worth storing, usually with verdict.ShouldPersist.
func (h *History) Record(ctx context.Context, report models.URLReport) (int64, error) {
	verdictJSON, err := json.Marshal(report.Verdict)
	if err != nil {
		return 0, fmt.Errorf("failed to encode verdict: %w", err)
	}

	recordedAt := report.StartedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	query := `INSERT INTO risk_records
		(url_key, batch_id, input, original_url, final_url, classification, score, source_tier, verdict_json, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := h.db.ExecContext(ctx, query,
		urlKey(report.OriginalURL),
		sql.NullString{String: report.BatchID, Valid: report.BatchID != ""},
		report.Input,
		report.OriginalURL,
		report.FinalURL,
		string(report.Verdict.Classification),
		report.Verdict.Score,
		string(report.SourceTier),
		string(verdictJSON),
		recordedAt.UTC(),
	)
	if err != nil {
		h.logger.Error().Err(err).Str("url", report.OriginalURL).Msg("Failed to record verdict")
		return 0, fmt.Errorf("failed to insert risk record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	h.logger.Debug().Int64("id", id).Str("url", report.OriginalURL).Msg("Recorded verdict")
	return id, nil
}

// Get returns the most recent record for originalURL, or ErrNotFound.
func (h *History) Get(ctx context.Context, originalURL string) (HistoryRecord, error) {
	records, err := h.query(ctx, "WHERE url_key = ? AND original_url = ?", 1, urlKey(originalURL), originalURL)
	if err != nil {
		return HistoryRecord{}, err
	}
	if len(records) == 0 {
		return HistoryRecord{}, ErrNotFound
	}
	return records[0], nil
}

// List returns up to limit records, newest first. A limit <= 0 returns all.
func (h *History) List(ctx context.Context, limit int) ([]HistoryRecord, error) {
	return h.query(ctx, "", limit)
}

// ListElevated is List restricted to medium, high and unreachable verdicts.
func (h *History) ListElevated(ctx context.Context, limit int) ([]HistoryRecord, error) {
	elevated := []models.Classification{
		models.ClassificationMedium,
		models.ClassificationHigh,
		models.ClassificationUnreachable,
	}
	placeholders := make([]string, len(elevated))
	args := make([]any, len(elevated))
	for i, c := range elevated {
		placeholders[i] = "?"
		args[i] = string(c)
	}
	where := fmt.Sprintf("WHERE classification IN (%s)", strings.Join(placeholders, ", "))
	return h.query(ctx, where, limit, args...)
}

func (h *History) query(ctx context.Context, where string, limit int, args ...any) ([]HistoryRecord, error) {
	query := `SELECT id, batch_id, input, original_url, final_url, classification, score, source_tier, verdict_json, recorded_at
		FROM risk_records ` + where + ` ORDER BY recorded_at DESC, id DESC`
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query risk records: %w", err)
	}
	defer rows.Close()

	var records []HistoryRecord
	for rows.Next() {
		var (
			rec            HistoryRecord
			batchID        sql.NullString
			classification string
			sourceTier     string
			verdictJSON    string
		)
		if err := rows.Scan(&rec.ID, &batchID, &rec.Input, &rec.OriginalURL, &rec.FinalURL,
			&classification, &rec.Score, &sourceTier, &verdictJSON, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan risk record: %w", err)
		}
		if err := json.Unmarshal([]byte(verdictJSON), &rec.Verdict); err != nil {
			return nil, fmt.Errorf("failed to decode verdict of record %d: %w", rec.ID, err)
		}
		rec.BatchID = batchID.String
		rec.Classification = models.Classification(classification)
		rec.SourceTier = models.SourceTier(sourceTier)
		records = append(records, rec)
	}
	return records, rows.Err()
}
