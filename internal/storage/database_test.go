package storage_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/contact_svc/internal/storage"
	"github.com/MarkoPoloResearchLab/contact_svc/internal/testutil"
)

func TestOpenDatabaseRequiresDriverName(testingT *testing.T) {
	_, openErr := storage.OpenDatabase(storage.Config{DataSourceName: "file::memory:"})
	require.ErrorIs(testingT, openErr, storage.ErrMissingDatabaseDriverName)
}

func TestOpenDatabaseRejectsUnsupportedDriver(testingT *testing.T) {
	_, openErr := storage.OpenDatabase(storage.Config{DriverName: "mongodb", DataSourceName: "mongodb://localhost"})
	require.ErrorIs(testingT, openErr, storage.ErrUnsupportedDatabaseDriver)
}

func TestOpenDatabaseRequiresDataSourceName(testingT *testing.T) {
	_, openErr := storage.OpenDatabase(storage.Config{DriverName: storage.DriverNameSQLite})
	require.ErrorIs(testingT, openErr, storage.ErrMissingDataSourceName)
}

func TestOpenDatabaseAndAutoMigrate(testingT *testing.T) {
	sqliteDatabase := testutil.NewSQLiteTestDatabase(testingT)
	database, openErr := storage.OpenDatabase(sqliteDatabase.Configuration())
	require.NoError(testingT, openErr)
	require.NoError(testingT, storage.AutoMigrate(database))
}

func TestNewIDReturnsUniqueValues(testingT *testing.T) {
	first := storage.NewID()
	second := storage.NewID()
	require.NotEmpty(testingT, first)
	require.NotEqual(testingT, first, second)
}
