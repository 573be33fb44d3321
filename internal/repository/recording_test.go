package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Mohanmohan007/BSC-CARE/internal/models"
)

var recordingColumns = []string{"recording_id", "heart_rate", "respiratory_rate", "recorded_at", "survey"}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresRecordingRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostgresRecordingRepository(db, zap.NewNop())
	return db, mock, repo
}

func TestInsert_WithSurvey(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	ts := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	rec := models.Recording{
		ID:              "rec-1",
		HeartRate:       72,
		RespiratoryRate: 16,
		Timestamp:       ts,
		Survey:          &models.Survey{BodyTemperature: decimal.RequireFromString("98.6"), Cough: true},
	}

	mock.ExpectExec(`INSERT INTO vital_recordings`).
		WithArgs("rec-1", "user-1", 72, 16, ts, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	inserted, err := repo.Insert(context.Background(), "user-1", rec)

	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_DuplicateIsSkipped(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	ts := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO vital_recordings .+ ON CONFLICT \(user_id, recording_id\) DO NOTHING`).
		WithArgs("rec-1", "user-1", 72, 16, ts, nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.Insert(context.Background(), "user-1",
		models.Recording{ID: "rec-1", HeartRate: 72, RespiratoryRate: 16, Timestamp: ts})

	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_SameIDForDifferentUsers(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	ts := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	rec := models.Recording{ID: "rec-1", HeartRate: 72, RespiratoryRate: 16, Timestamp: ts}

	// the conflict target is scoped to the user, so neither insert is swallowed
	for _, user := range []string{"user-1", "user-2"} {
		mock.ExpectExec(`ON CONFLICT \(user_id, recording_id\) DO NOTHING`).
			WithArgs("rec-1", user, 72, 16, ts, nil).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}

	for _, user := range []string{"user-1", "user-2"} {
		inserted, err := repo.Insert(context.Background(), user, rec)
		require.NoError(t, err)
		assert.True(t, inserted, user)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_DatabaseError(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	dbErr := errors.New("connection reset")
	mock.ExpectExec(`INSERT INTO vital_recordings`).WillReturnError(dbErr)

	_, err := repo.Insert(context.Background(), "user-1",
		models.Recording{ID: "rec-1", Timestamp: time.Now()})

	require.ErrorIs(t, err, dbErr)
}

func TestListByUser_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	ts1 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	ts2 := ts1.Add(time.Hour)
	rows := sqlmock.NewRows(recordingColumns).
		AddRow("rec-1", 72, 16, ts1, nil).
		AddRow("rec-2", 80, 18, ts2, []byte(`{"bodyTemperature":"37.9","unit":"C","fatigue":true}`))

	mock.ExpectQuery(`SELECT recording_id, heart_rate, respiratory_rate, recorded_at, survey`).
		WithArgs("user-1").
		WillReturnRows(rows)

	recs, err := repo.ListByUser(context.Background(), "user-1")

	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "rec-1", recs[0].ID)
	assert.Nil(t, recs[0].Survey)
	assert.Equal(t, 80, recs[1].HeartRate)
	require.NotNil(t, recs[1].Survey)
	assert.Equal(t, models.UnitCelsius, recs[1].Survey.Unit)
	assert.True(t, recs[1].Survey.Fatigue)
	assert.Equal(t, "37.9", recs[1].Survey.BodyTemperature.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByUser_EmptyResult(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT recording_id`).
		WithArgs("user-9").
		WillReturnRows(sqlmock.NewRows(recordingColumns))

	recs, err := repo.ListByUser(context.Background(), "user-9")

	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestListByUser_BadSurveyJSON(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	rows := sqlmock.NewRows(recordingColumns).
		AddRow("rec-1", 72, 16, time.Now(), []byte(`{"bodyTemperature":"hot"}`))
	mock.ExpectQuery(`SELECT recording_id`).WillReturnRows(rows)

	_, err := repo.ListByUser(context.Background(), "user-1")
	require.Error(t, err)
}

func TestGet_NotFound(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT recording_id`).
		WithArgs("user-1", "missing").
		WillReturnRows(sqlmock.NewRows(recordingColumns))

	rec, err := repo.Get(context.Background(), "user-1", "missing")

	assert.Nil(t, rec)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureSchema(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`(?s)CREATE TABLE IF NOT EXISTS vital_recordings .+PRIMARY KEY \(user_id, recording_id\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
