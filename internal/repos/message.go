package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/tripflow-backend/internal/logger"
  "github.com/yungbote/tripflow-backend/internal/types"
)

type MessageRepo interface {
  Create(ctx context.Context, tx *gorm.DB, messages []*types.Message) ([]*types.Message, error)
  GetByTripID(ctx context.Context, tx *gorm.DB, tripID uuid.UUID, limit int) ([]*types.Message, error)
}

type messageRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
  repoLog := baseLog.With("repo", "MessageRepo")
  return &messageRepo{db: db, log: repoLog}
}

func (r *messageRepo) Create(ctx context.Context, tx *gorm.DB, messages []*types.Message) ([]*types.Message, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(messages) == 0 {
    return []*types.Message{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&messages).Error; err != nil {
    return nil, err
  }
  return messages, nil
}

func (r *messageRepo) GetByTripID(ctx context.Context, tx *gorm.DB, tripID uuid.UUID, limit int) ([]*types.Message, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Message
  if tripID == uuid.Nil {
    return results, nil
  }

  q := transaction.WithContext(ctx).
    Where("trip_id = ?", tripID).
    Order("created_at ASC")
  if limit > 0 {
    q = q.Limit(limit)
  }

  if err := q.Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
