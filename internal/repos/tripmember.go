package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/tripflow-backend/internal/logger"
  "github.com/yungbote/tripflow-backend/internal/types"
)

type TripMemberRepo interface {
  Create(ctx context.Context, tx *gorm.DB, members []*types.TripMember) ([]*types.TripMember, error)
  GetByTripAndUser(ctx context.Context, tx *gorm.DB, tripID, userID uuid.UUID) (*types.TripMember, error)
  GetByTripID(ctx context.Context, tx *gorm.DB, tripID uuid.UUID) ([]*types.TripMember, error)
}

type tripMemberRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewTripMemberRepo(db *gorm.DB, baseLog *logger.Logger) TripMemberRepo {
  repoLog := baseLog.With("repo", "TripMemberRepo")
  return &tripMemberRepo{db: db, log: repoLog}
}

func (r *tripMemberRepo) Create(ctx context.Context, tx *gorm.DB, members []*types.TripMember) ([]*types.TripMember, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(members) == 0 {
    return []*types.TripMember{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&members).Error; err != nil {
    return nil, err
  }
  return members, nil
}

func (r *tripMemberRepo) GetByTripAndUser(ctx context.Context, tx *gorm.DB, tripID, userID uuid.UUID) (*types.TripMember, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.TripMember
  err := transaction.WithContext(ctx).
    Where("trip_id = ? AND user_id = ?", tripID, userID).
    First(&result).Error
  if err != nil {
    if err == gorm.ErrRecordNotFound {
      return nil, nil
    }
    return nil, err
  }
  return &result, nil
}

func (r *tripMemberRepo) GetByTripID(ctx context.Context, tx *gorm.DB, tripID uuid.UUID) ([]*types.TripMember, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.TripMember
  if tripID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("trip_id = ?", tripID).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
