package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Mohanmohan007/BSC-CARE/internal/models"
)

// ErrNotFound no row for the requested recording
var ErrNotFound = errors.New("recording not found")

// Schema vital_recordings table. Recording ids are unique per user only;
// seq keeps arrival order for equal timestamps. Tables created with the
// older single-column key are moved to the composite key.
const Schema = `
CREATE TABLE IF NOT EXISTS vital_recordings (
	seq              BIGSERIAL,
	recording_id     TEXT NOT NULL,
	user_id          TEXT NOT NULL,
	heart_rate       INTEGER NOT NULL,
	respiratory_rate INTEGER NOT NULL,
	recorded_at      TIMESTAMPTZ NOT NULL,
	survey           JSONB,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, recording_id)
);
DO $$
BEGIN
	IF EXISTS (
		SELECT 1 FROM pg_index i
		JOIN pg_class c ON c.oid = i.indrelid
		WHERE c.relname = 'vital_recordings' AND i.indisprimary AND i.indnatts = 1
	) THEN
		ALTER TABLE vital_recordings DROP CONSTRAINT vital_recordings_pkey;
		ALTER TABLE vital_recordings ADD PRIMARY KEY (user_id, recording_id);
	END IF;
END $$;
CREATE INDEX IF NOT EXISTS idx_vital_recordings_user ON vital_recordings (user_id, recorded_at, seq);
`

// RecordingRepository append-only store of a user's recordings
type RecordingRepository interface {
	// Insert appends a recording. A recording id the user already has is
	// left untouched and reported as inserted=false.
	Insert(ctx context.Context, userID string, rec models.Recording) (inserted bool, err error)
	ListByUser(ctx context.Context, userID string) ([]models.Recording, error)
	Get(ctx context.Context, userID, recordingID string) (*models.Recording, error)
}

// PostgresRecordingRepository RecordingRepository on PostgreSQL
type PostgresRecordingRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ RecordingRepository = (*PostgresRecordingRepository)(nil)

// NewPostgresRecordingRepository creates a new recording repository
func NewPostgresRecordingRepository(db *sql.DB, logger *zap.Logger) *PostgresRecordingRepository {
	return &PostgresRecordingRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureSchema creates the table and index when missing
func (r *PostgresRecordingRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create vital_recordings: %w", err)
	}
	return nil
}

func (r *PostgresRecordingRepository) Insert(ctx context.Context, userID string, rec models.Recording) (bool, error) {
	var survey interface{}
	if rec.Survey != nil {
		raw, err := json.Marshal(rec.Survey)
		if err != nil {
			return false, fmt.Errorf("failed to encode survey: %w", err)
		}
		survey = raw
	}

	query := `
		INSERT INTO vital_recordings (recording_id, user_id, heart_rate, respiratory_rate, recorded_at, survey)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, recording_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query,
		rec.ID, userID, rec.HeartRate, rec.RespiratoryRate, rec.Timestamp.UTC(), survey)
	if err != nil {
		return false, fmt.Errorf("failed to insert recording %s: %w", rec.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		r.logger.Debug("Recording already stored, skipped",
			zap.String("user_id", userID),
			zap.String("recording_id", rec.ID),
		)
	}
	return n > 0, nil
}

// ListByUser every recording of a user, oldest first
func (r *PostgresRecordingRepository) ListByUser(ctx context.Context, userID string) ([]models.Recording, error) {
	query := `
		SELECT recording_id, heart_rate, respiratory_rate, recorded_at, survey
		FROM vital_recordings
		WHERE user_id = $1
		ORDER BY recorded_at ASC, seq ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recordings: %w", err)
	}
	defer rows.Close()

	out := []models.Recording{}
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recordings: %w", err)
	}
	return out, nil
}

func (r *PostgresRecordingRepository) Get(ctx context.Context, userID, recordingID string) (*models.Recording, error) {
	query := `
		SELECT recording_id, heart_rate, respiratory_rate, recorded_at, survey
		FROM vital_recordings
		WHERE user_id = $1 AND recording_id = $2
	`
	rec, err := scanRecording(r.db.QueryRowContext(ctx, query, userID, recordingID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecording(s scanner) (*models.Recording, error) {
	var (
		rec        models.Recording
		recordedAt time.Time
		survey     []byte
	)
	if err := s.Scan(&rec.ID, &rec.HeartRate, &rec.RespiratoryRate, &recordedAt, &survey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan recording: %w", err)
	}
	rec.Timestamp = recordedAt.UTC()

	if len(survey) > 0 {
		rec.Survey = &models.Survey{}
		if err := json.Unmarshal(survey, rec.Survey); err != nil {
			return nil, fmt.Errorf("failed to decode survey of %s: %w", rec.ID, err)
		}
	}
	return &rec, nil
}
