package testutil

import (
  "os"
  "testing"

  "gorm.io/driver/postgres"
  "gorm.io/gorm"

  "github.com/yungbote/tripflow-backend/internal/logger"
  "github.com/yungbote/tripflow-backend/internal/types"
)

// Logger returns a quiet logger for tests.
func Logger(tb testing.TB) *logger.Logger {
  tb.Helper()
  log, err := logger.New("test")
  if err != nil {
    tb.Fatalf("logger.New: %v", err)
  }
  return log
}

// DB opens the database named by TEST_POSTGRES_DSN and migrates the schema.
// Tests that need a real database skip when the variable is unset, so the
// default `go test ./...` run stays hermetic.
func DB(tb testing.TB) *gorm.DB {
  tb.Helper()
  dsn := os.Getenv("TEST_POSTGRES_DSN")
  if dsn == "" {
    tb.Skip("TEST_POSTGRES_DSN not set; skipping database test")
  }
  db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
  })
  if err != nil {
    tb.Fatalf("open test database: %v", err)
  }
  if err := db.AutoMigrate(
    &types.User{},
    &types.UserToken{},
    &types.Trip{},
    &types.TripMember{},
    &types.ItineraryVersion{},
    &types.Activity{},
    &types.ActivityVote{},
    &types.DisruptionEvent{},
    &types.Message{},
  ); err != nil {
    tb.Fatalf("automigrate: %v", err)
  }
  return db
}

// Tx hands the test a transaction that always rolls back, so tests never
// leak rows into each other.
func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
  tb.Helper()
  tx := db.Begin()
  if tx.Error != nil {
    tb.Fatalf("begin tx: %v", tx.Error)
  }
  tb.Cleanup(func() {
    _ = tx.Rollback()
  })
  return tx
}
