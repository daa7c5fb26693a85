package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestCountBeds_ScopedQuery(t *testing.T) {
	db, mock := setupMockDB(t)
	areaID := snowflake.ID(7)

	rows := sqlmock.NewRows([]string{"area_id", "is_available", "status_key", "beds"}).
		AddRow(int64(7), true, "occupied", int64(2)).
		AddRow(int64(7), true, nil, int64(1)).
		AddRow(int64(7), false, nil, int64(1))

	mock.ExpectQuery(`SELECT r.area_id AS area_id`).
		WithArgs(true, true, areaID).
		WillReturnRows(rows)

	out, err := Provide().CountBeds(context.Background(), db, &areaID)
	require.NoError(t, err)
	require.Len(t, out, 3)
	require.NotNil(t, out[0].StatusKey)
	assert.Equal(t, "occupied", *out[0].StatusKey)
	assert.EqualValues(t, 2, out[0].Beds)
	assert.Nil(t, out[1].StatusKey)
	assert.False(t, out[2].IsAvailable)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountBeds_QueryError(t *testing.T) {
	db, mock := setupMockDB(t)
	boom := errors.New("connection reset")

	mock.ExpectQuery(`GROUP BY r.area_id`).
		WithArgs(true, true).
		WillReturnError(boom)

	_, err := Provide().CountBeds(context.Background(), db, nil)
	require.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
