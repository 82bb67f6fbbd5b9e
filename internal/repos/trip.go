package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/tripflow-backend/internal/logger"
  "github.com/yungbote/tripflow-backend/internal/types"
)

type TripRepo interface {
  Create(ctx context.Context, tx *gorm.DB, trips []*types.Trip) ([]*types.Trip, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, tripIDs []uuid.UUID) ([]*types.Trip, error)
  GetByMemberUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Trip, error)
  Update(ctx context.Context, tx *gorm.DB, tripID uuid.UUID, updates map[string]any) error
  SetActiveItinerary(ctx context.Context, tx *gorm.DB, tripID uuid.UUID, itineraryID uuid.UUID) error
}

type tripRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewTripRepo(db *gorm.DB, baseLog *logger.Logger) TripRepo {
  repoLog := baseLog.With("repo", "TripRepo")
  return &tripRepo{db: db, log: repoLog}
}

func (r *tripRepo) Create(ctx context.Context, tx *gorm.DB, trips []*types.Trip) ([]*types.Trip, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(trips) == 0 {
    return []*types.Trip{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&trips).Error; err != nil {
    return nil, err
  }
  return trips, nil
}

func (r *tripRepo) GetByIDs(ctx context.Context, tx *gorm.DB, tripIDs []uuid.UUID) ([]*types.Trip, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Trip
  if len(tripIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", tripIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *tripRepo) GetByMemberUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Trip, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Trip
  if userID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Joins("JOIN trip_member ON trip_member.trip_id = trip.id").
    Where("trip_member.user_id = ?", userID).
    Order("trip.created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *tripRepo) Update(ctx context.Context, tx *gorm.DB, tripID uuid.UUID, updates map[string]any) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if tripID == uuid.Nil || len(updates) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Model(&types.Trip{}).
    Where("id = ?", tripID).
    Updates(updates).Error; err != nil {
    return err
  }
  return nil
}

func (r *tripRepo) SetActiveItinerary(ctx context.Context, tx *gorm.DB, tripID uuid.UUID, itineraryID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if tripID == uuid.Nil || itineraryID == uuid.Nil {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Model(&types.Trip{}).
    Where("id = ?", tripID).
    Update("active_itinerary_id", itineraryID).Error; err != nil {
    return err
  }
  return nil
}
