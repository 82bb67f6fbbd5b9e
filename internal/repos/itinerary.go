package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/tripflow-backend/internal/logger"
  "github.com/yungbote/tripflow-backend/internal/types"
)

type ItineraryRepo interface {
  Create(ctx context.Context, tx *gorm.DB, versions []*types.ItineraryVersion) ([]*types.ItineraryVersion, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ItineraryVersion, error)
  GetByTripID(ctx context.Context, tx *gorm.DB, tripID uuid.UUID) ([]*types.ItineraryVersion, error)
  GetLatestByTripID(ctx context.Context, tx *gorm.DB, tripID uuid.UUID) (*types.ItineraryVersion, error)
  Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error

  // BumpRevision increments the optimistic-concurrency token only when the
  // stored revision still matches expected. Returns the number of rows that
  // matched; zero means the caller lost the race.
  BumpRevision(ctx context.Context, tx *gorm.DB, id uuid.UUID, expected int64) (int64, error)
}

type itineraryRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewItineraryRepo(db *gorm.DB, baseLog *logger.Logger) ItineraryRepo {
  repoLog := baseLog.With("repo", "ItineraryRepo")
  return &itineraryRepo{db: db, log: repoLog}
}

func (r *itineraryRepo) Create(ctx context.Context, tx *gorm.DB, versions []*types.ItineraryVersion) ([]*types.ItineraryVersion, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(versions) == 0 {
    return []*types.ItineraryVersion{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&versions).Error; err != nil {
    return nil, err
  }
  return versions, nil
}

func (r *itineraryRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ItineraryVersion, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.ItineraryVersion
  if len(ids) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *itineraryRepo) GetByTripID(ctx context.Context, tx *gorm.DB, tripID uuid.UUID) ([]*types.ItineraryVersion, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.ItineraryVersion
  if tripID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("trip_id = ?", tripID).
    Order("version DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *itineraryRepo) GetLatestByTripID(ctx context.Context, tx *gorm.DB, tripID uuid.UUID) (*types.ItineraryVersion, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.ItineraryVersion
  err := transaction.WithContext(ctx).
    Where("trip_id = ?", tripID).
    Order("version DESC").
    First(&result).Error
  if err != nil {
    if err == gorm.ErrRecordNotFound {
      return nil, nil
    }
    return nil, err
  }
  return &result, nil
}

func (r *itineraryRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if id == uuid.Nil || len(updates) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Model(&types.ItineraryVersion{}).
    Where("id = ?", id).
    Updates(updates).Error; err != nil {
    return err
  }
  return nil
}

func (r *itineraryRepo) BumpRevision(ctx context.Context, tx *gorm.DB, id uuid.UUID, expected int64) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  res := transaction.WithContext(ctx).
    Model(&types.ItineraryVersion{}).
    Where("id = ? AND revision = ?", id, expected).
    Update("revision", gorm.Expr("revision + 1"))
  if res.Error != nil {
    return 0, res.Error
  }
  return res.RowsAffected, nil
}
