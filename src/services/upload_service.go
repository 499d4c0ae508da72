package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/username/faturamento/backend/src/logger"
	"github.com/username/faturamento/backend/src/models"
	"github.com/username/faturamento/backend/src/parsers"
	"github.com/username/faturamento/backend/src/processors"
)

const defaultHistoryLimit = 50

type uploadServiceImpl struct {
	ingestionProcessor *processors.IngestionProcessor
	store              *DatasetStore
	db                 *sql.DB
	reportCache        *ReportCache
	mu                 sync.Mutex
}

func NewUploadService(
	ingestionProcessor *processors.IngestionProcessor,
	store *DatasetStore,
	db *sql.DB,
	reportCache *ReportCache,
) UploadService {
	return &uploadServiceImpl{
		ingestionProcessor: ingestionProcessor,
		store:              store,
		db:                 db,
		reportCache:        reportCache,
	}
}

// ProcessUpload runs one ingestion end to end. Uploads are serialized; a
// failure at any step leaves the previous snapshot in place.
func (s *uploadServiceImpl) ProcessUpload(ctx context.Context, fileReader io.Reader, filename string, filesize int64) (*models.IngestionSummary, error) {
	log := logger.FromContext(ctx)
	start := time.Now()
	log.Info("ProcessUpload START", "filename", filename, "size", filesize)

	s.mu.Lock()
	defer s.mu.Unlock()

	parser, err := parsers.GetParser(parsers.DefaultSource)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	table, err := parser.Parse(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	log.Debug("Extract parsed", "headers", len(table.Headers), "rows", len(table.Rows))

	result, err := s.ingestionProcessor.Process(table)
	if err != nil {
		if errors.Is(err, processors.ErrSchemaMismatch) {
			log.Warn("Upload rejected: no expected column found", "filename", filename, "headers", table.Headers)
		}
		return nil, err
	}

	if err := s.store.Write(&result.Dataset); err != nil {
		log.Error("Failed to persist dataset snapshot", "error", err)
		return nil, err
	}

	_, last := result.Dataset.EmissionBounds()
	summary := &models.IngestionSummary{
		ID:               uuid.NewString(),
		Filename:         filename,
		FileSize:         filesize,
		RecordCount:      len(result.Dataset.Records),
		MatchedColumns:   result.Dataset.Columns,
		MissingRequired:  result.Validation.MissingRequired,
		Stats:            result.Stats,
		LastEmissionDate: last,
		CreatedAt:        time.Now().UTC(),
	}

	// The snapshot is already authoritative; a history failure is only logged.
	if err := s.recordIngestion(ctx, summary); err != nil {
		log.Error("Failed to record ingestion history", "id", summary.ID, "error", err)
	}

	s.reportCache.Flush()

	if len(summary.MissingRequired) > 0 {
		log.Warn("Upload is missing required columns", "missing", summary.MissingRequired)
	}
	log.Info("ProcessUpload END",
		"id", summary.ID,
		"records", summary.RecordCount,
		"unparsedDates", summary.Stats.UnparsedDates,
		"unparsedAmounts", summary.Stats.UnparsedAmounts,
		"droppedRows", summary.Stats.DroppedRows,
		"duration", time.Since(start))
	return summary, nil
}

func (s *uploadServiceImpl) recordIngestion(ctx context.Context, summary *models.IngestionSummary) error {
	if s.db == nil {
		return nil
	}
	var lastEmission sql.NullString
	if summary.LastEmissionDate != nil {
		lastEmission = sql.NullString{String: summary.LastEmissionDate.Format(models.DateFormat), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingestions
			(id, filename, file_size, record_count, matched_columns, missing_required,
			 unparsed_dates, unparsed_amounts, last_emission_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.ID, summary.Filename, summary.FileSize, summary.RecordCount,
		strings.Join(summary.MatchedColumns, ","), strings.Join(summary.MissingRequired, ","),
		summary.Stats.UnparsedDates, summary.Stats.UnparsedAmounts, lastEmission, summary.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: insert ingestion: %v", ErrPersistenceFailure, err)
	}
	return nil
}

// ListUploads returns the most recent ingestions first.
func (s *uploadServiceImpl) ListUploads(ctx context.Context, limit int) ([]models.IngestionSummary, error) {
	if s.db == nil {
		return []models.IngestionSummary{}, nil
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, file_size, record_count, matched_columns, missing_required,
		       unparsed_dates, unparsed_amounts, last_emission_date, created_at
		FROM ingestions
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying ingestion history: %w", err)
	}
	defer rows.Close()

	history := []models.IngestionSummary{}
	for rows.Next() {
		var (
			summary      models.IngestionSummary
			matched      string
			missing      string
			lastEmission sql.NullString
		)
		if err := rows.Scan(&summary.ID, &summary.Filename, &summary.FileSize, &summary.RecordCount,
			&matched, &missing, &summary.Stats.UnparsedDates, &summary.Stats.UnparsedAmounts,
			&lastEmission, &summary.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning ingestion row: %w", err)
		}
		summary.MatchedColumns = splitList(matched)
		summary.MissingRequired = splitList(missing)
		if lastEmission.Valid {
			if t, err := time.Parse(models.DateFormat, lastEmission.String); err == nil {
				summary.LastEmissionDate = &t
			}
		}
		history = append(history, summary)
	}
	return history, rows.Err()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
