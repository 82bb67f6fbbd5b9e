package db

import (
  "path/filepath"
  "testing"

  "github.com/google/uuid"

  "github.com/yungbote/tripflow-backend/internal/logger"
  "github.com/yungbote/tripflow-backend/internal/types"
)

// The sqlite mode has to boot on a machine with no postgres instance, so the
// models must not carry postgres-only default expressions.
func TestSQLiteModeMigratesAndWrites(t *testing.T) {
  t.Setenv("DB_DRIVER", "sqlite")
  t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "tripflow.db"))

  log, err := logger.New("test")
  if err != nil {
    t.Fatalf("logger.New: %v", err)
  }
  svc, err := NewPostgresService(log)
  if err != nil {
    t.Fatalf("NewPostgresService: %v", err)
  }
  if err := svc.AutoMigrateAll(); err != nil {
    t.Fatalf("AutoMigrateAll: %v", err)
  }

  user := &types.User{
    ID:       uuid.New(),
    Email:    "sqlite@example.com",
    Password: "not-a-real-hash",
  }
  if err := svc.DB().Create(user).Error; err != nil {
    t.Fatalf("create user: %v", err)
  }
  var loaded types.User
  if err := svc.DB().First(&loaded, "id = ?", user.ID).Error; err != nil {
    t.Fatalf("load user: %v", err)
  }
  if loaded.Email != user.Email {
    t.Fatalf("email: want=%q got=%q", user.Email, loaded.Email)
  }
}
