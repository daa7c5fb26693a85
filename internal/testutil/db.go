// Package testutil builds in-memory databases and fixtures for package tests.
package testutil

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/wardboard/internal/migration"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB returns a migrated in-memory SQLite database private to t. A single
// connection keeps the shared-cache database alive and serializes writers.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migration.AutoMigrate(db))
	return db
}

func NewNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

// Epoch is the fixed instant fake clocks start from in tests.
var Epoch = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// FailOn makes every raw statement containing fragment fail with err until
// the returned restore func is called or the test ends.
func FailOn(t *testing.T, db *gorm.DB, fragment string, err error) (restore func()) {
	t.Helper()
	name := "testutil:fail_on:" + fragment
	require.NoError(t, db.Callback().Raw().Before("gorm:raw").Register(name, func(tx *gorm.DB) {
		if strings.Contains(tx.Statement.SQL.String(), fragment) {
			_ = tx.AddError(err)
		}
	}))
	var once sync.Once
	restore = func() {
		once.Do(func() { _ = db.Callback().Raw().Remove(name) })
	}
	t.Cleanup(restore)
	return restore
}
