package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/tripflow-backend/internal/logger"
  "github.com/yungbote/tripflow-backend/internal/types"
)

type ActivityRepo interface {
  Create(ctx context.Context, tx *gorm.DB, activities []*types.Activity) ([]*types.Activity, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Activity, error)
  GetByItineraryID(ctx context.Context, tx *gorm.DB, itineraryID uuid.UUID) ([]*types.Activity, error)
  DeleteByItineraryID(ctx context.Context, tx *gorm.DB, itineraryID uuid.UUID) error
  Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
}

type activityRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
  repoLog := baseLog.With("repo", "ActivityRepo")
  return &activityRepo{db: db, log: repoLog}
}

func (r *activityRepo) Create(ctx context.Context, tx *gorm.DB, activities []*types.Activity) ([]*types.Activity, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(activities) == 0 {
    return []*types.Activity{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&activities).Error; err != nil {
    return nil, err
  }
  return activities, nil
}

func (r *activityRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Activity, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Activity
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

func (r *activityRepo) GetByItineraryID(ctx context.Context, tx *gorm.DB, itineraryID uuid.UUID) ([]*types.Activity, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Activity
  if itineraryID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("itinerary_id = ?", itineraryID).
    Order("start_time ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *activityRepo) DeleteByItineraryID(ctx context.Context, tx *gorm.DB, itineraryID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if itineraryID == uuid.Nil {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Where("itinerary_id = ?", itineraryID).
    Delete(&types.Activity{}).Error; err != nil {
    return err
  }
  return nil
}

func (r *activityRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if id == uuid.Nil || len(updates) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Model(&types.Activity{}).
    Where("id = ?", id).
    Updates(updates).Error; err != nil {
    return err
  }
  return nil
}
