package db

import (
  "fmt"

  "gorm.io/driver/postgres"
  "gorm.io/driver/sqlite"
  "gorm.io/gorm"

  "github.com/yungbote/tripflow-backend/internal/logger"
  "github.com/yungbote/tripflow-backend/internal/types"
  "github.com/yungbote/tripflow-backend/internal/utils"
)

type PostgresService struct {
  db  *gorm.DB
  log *logger.Logger
}

// NewPostgresService connects to postgres, or to an in-process sqlite file
// when DB_DRIVER=sqlite (local development without a postgres instance).
func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  driver := utils.GetEnv("DB_DRIVER", "postgres", log)
  if driver == "sqlite" {
    path := utils.GetEnv("SQLITE_PATH", "tripflow.db", log)
    log.Info("Connecting to sqlite...", "path", path)
    sdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
      DisableForeignKeyConstraintWhenMigrating: true,
    })
    if err != nil {
      return nil, fmt.Errorf("connect to sqlite: %w", err)
    }
    return &PostgresService{db: sdb, log: serviceLog}, nil
  }

  postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
  postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
  postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
  postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
  postgresName := utils.GetEnv("POSTGRES_NAME", "tripflow", log)

  dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
    postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

  log.Info("Connecting to Postgres...")
  gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
  })
  if err != nil {
    log.Error("Failed to connect to Postgres", "error", err)
    return nil, fmt.Errorf("connect to postgres: %w", err)
  }

  return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

func (s *PostgresService) AutoMigrateAll() error {
  s.log.Info("Auto migrating tables...")
  err := s.db.AutoMigrate(
    &types.User{},
    &types.UserToken{},
    &types.Trip{},
    &types.TripMember{},
    &types.ItineraryVersion{},
    &types.Activity{},
    &types.ActivityVote{},
    &types.DisruptionEvent{},
    &types.Message{},
  )
  if err != nil {
    s.log.Error("Auto migration failed", "error", err)
    return err
  }
  s.log.Info("Auto migration complete")
  return nil
}
