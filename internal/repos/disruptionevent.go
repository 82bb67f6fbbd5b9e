package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/tripflow-backend/internal/logger"
  "github.com/yungbote/tripflow-backend/internal/types"
)

// DisruptionEventRepo is append-only: no update or delete path exists.
type DisruptionEventRepo interface {
  Create(ctx context.Context, tx *gorm.DB, events []*types.DisruptionEvent) ([]*types.DisruptionEvent, error)
  GetByTripID(ctx context.Context, tx *gorm.DB, tripID uuid.UUID) ([]*types.DisruptionEvent, error)
}

type disruptionEventRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewDisruptionEventRepo(db *gorm.DB, baseLog *logger.Logger) DisruptionEventRepo {
  repoLog := baseLog.With("repo", "DisruptionEventRepo")
  return &disruptionEventRepo{db: db, log: repoLog}
}

func (r *disruptionEventRepo) Create(ctx context.Context, tx *gorm.DB, events []*types.DisruptionEvent) ([]*types.DisruptionEvent, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(events) == 0 {
    return []*types.DisruptionEvent{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&events).Error; err != nil {
    return nil, err
  }
  return events, nil
}

func (r *disruptionEventRepo) GetByTripID(ctx context.Context, tx *gorm.DB, tripID uuid.UUID) ([]*types.DisruptionEvent, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.DisruptionEvent
  if tripID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("trip_id = ?", tripID).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
