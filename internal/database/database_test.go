package database

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       sqlDB,
		DriverName: "postgres",
	}), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestPing(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectPing()
	assert.NoError(t, Ping(db))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.EqualError(t, Ping(db), "connection refused")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModelsCoversEveryTable(t *testing.T) {
	assert.Len(t, Models(), 10)
}
