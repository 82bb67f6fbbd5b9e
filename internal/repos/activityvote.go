package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/tripflow-backend/internal/logger"
  "github.com/yungbote/tripflow-backend/internal/types"
)

type ActivityVoteRepo interface {
  Create(ctx context.Context, tx *gorm.DB, votes []*types.ActivityVote) ([]*types.ActivityVote, error)
  GetByActivityAndUser(ctx context.Context, tx *gorm.DB, activityID, userID uuid.UUID) (*types.ActivityVote, error)
  GetByActivityIDs(ctx context.Context, tx *gorm.DB, activityIDs []uuid.UUID) ([]*types.ActivityVote, error)
  UpdateVote(ctx context.Context, tx *gorm.DB, id uuid.UUID, vote string) error
  DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type activityVoteRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewActivityVoteRepo(db *gorm.DB, baseLog *logger.Logger) ActivityVoteRepo {
  repoLog := baseLog.With("repo", "ActivityVoteRepo")
  return &activityVoteRepo{db: db, log: repoLog}
}

func (r *activityVoteRepo) Create(ctx context.Context, tx *gorm.DB, votes []*types.ActivityVote) ([]*types.ActivityVote, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(votes) == 0 {
    return []*types.ActivityVote{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&votes).Error; err != nil {
    return nil, err
  }
  return votes, nil
}

func (r *activityVoteRepo) GetByActivityAndUser(ctx context.Context, tx *gorm.DB, activityID, userID uuid.UUID) (*types.ActivityVote, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.ActivityVote
  err := transaction.WithContext(ctx).
    Where("activity_id = ? AND user_id = ?", activityID, userID).
    First(&result).Error
  if err != nil {
    if err == gorm.ErrRecordNotFound {
      return nil, nil
    }
    return nil, err
  }
  return &result, nil
}

func (r *activityVoteRepo) GetByActivityIDs(ctx context.Context, tx *gorm.DB, activityIDs []uuid.UUID) ([]*types.ActivityVote, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.ActivityVote
  if len(activityIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("activity_id IN ?", activityIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *activityVoteRepo) UpdateVote(ctx context.Context, tx *gorm.DB, id uuid.UUID, vote string) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if id == uuid.Nil {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Model(&types.ActivityVote{}).
    Where("id = ?", id).
    Update("vote", vote).Error; err != nil {
    return err
  }
  return nil
}

func (r *activityVoteRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if id == uuid.Nil {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Where("id = ?", id).
    Delete(&types.ActivityVote{}).Error; err != nil {
    return err
  }
  return nil
}
