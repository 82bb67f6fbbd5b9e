package services

import (
  "context"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/yungbote/tripflow-backend/internal/apperr"
  "github.com/yungbote/tripflow-backend/internal/logger"
  "github.com/yungbote/tripflow-backend/internal/repos"
  "github.com/yungbote/tripflow-backend/internal/types"
)

// VoteTally is derived from vote rows on demand, never stored.
type VoteTally struct {
  Up     int    `json:"up"`
  Down   int    `json:"down"`
  MyVote string `json:"my_vote,omitempty"`
}

func (t *VoteTally) Score() int { return t.Up - t.Down }

// ActivityPatch lists the fields an inline edit may touch. Times, category
// and the owning itinerary are immutable through this path.
type ActivityPatch struct {
  Name         *string  `json:"name,omitempty"`
  Description  *string  `json:"description,omitempty"`
  LocationName *string  `json:"location_name,omitempty"`
  Cost         *float64 `json:"cost,omitempty"`
  Notes        *string  `json:"notes,omitempty"`
}

// CollabService applies fine-grained per-activity mutations that do not
// require regenerating the whole plan. Each mutation is independent and
// best-effort: a failure leaves prior state untouched and is reported to the
// caller.
type CollabService interface {
  CastVote(ctx context.Context, activityID, userID uuid.UUID, vote string) (*VoteTally, error)
  SetStatus(ctx context.Context, activityID, userID uuid.UUID, status string) (*types.Activity, error)
  EditFields(ctx context.Context, activityID, userID uuid.UUID, patch ActivityPatch) (*types.Activity, error)
  VoteCounts(ctx context.Context, activityIDs []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]*VoteTally, error)
}

type collabService struct {
  db  *gorm.DB
  log *logger.Logger

  activityRepo  repos.ActivityRepo
  voteRepo      repos.ActivityVoteRepo
  itineraryRepo repos.ItineraryRepo
  memberRepo    repos.TripMemberRepo
  notifier      TripNotifier
}

func NewCollabService(
  db *gorm.DB,
  baseLog *logger.Logger,
  activityRepo repos.ActivityRepo,
  voteRepo repos.ActivityVoteRepo,
  itineraryRepo repos.ItineraryRepo,
  memberRepo repos.TripMemberRepo,
  notifier TripNotifier,
) CollabService {
  return &collabService{
    db:            db,
    log:           baseLog.With("service", "CollabService"),
    activityRepo:  activityRepo,
    voteRepo:      voteRepo,
    itineraryRepo: itineraryRepo,
    memberRepo:    memberRepo,
    notifier:      notifier,
  }
}

func (s *collabService) loadActivity(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) (*types.Activity, error) {
  rows, err := s.activityRepo.GetByIDs(ctx, tx, []uuid.UUID{activityID})
  if err != nil {
    return nil, apperr.Persistence("load activity", err)
  }
  if len(rows) == 0 {
    return nil, fmt.Errorf("activity %s: %w", activityID, apperr.ErrNotFound)
  }
  return rows[0], nil
}

func (s *collabService) tripIDForActivity(ctx context.Context, tx *gorm.DB, activity *types.Activity) (uuid.UUID, error) {
  versions, err := s.itineraryRepo.GetByIDs(ctx, tx, []uuid.UUID{activity.ItineraryID})
  if err != nil {
    return uuid.Nil, apperr.Persistence("load itinerary", err)
  }
  if len(versions) == 0 {
    return uuid.Nil, fmt.Errorf("itinerary %s: %w", activity.ItineraryID, apperr.ErrNotFound)
  }
  return versions[0].TripID, nil
}

// requireMember gates every mutation on the caller's membership in the
// activity's trip. Non-members get ErrForbidden so activity IDs alone grant
// nothing.
func (s *collabService) requireMember(ctx context.Context, tx *gorm.DB, tripID, userID uuid.UUID) error {
  member, err := s.memberRepo.GetByTripAndUser(ctx, tx, tripID, userID)
  if err != nil {
    return apperr.Persistence("load trip membership", err)
  }
  if member == nil {
    return apperr.ErrForbidden
  }
  return nil
}

// CastVote applies toggle semantics: the same value submitted again removes
// the vote, a different value updates it in place. At most one row per
// (activity, user) survives.
func (s *collabService) CastVote(ctx context.Context, activityID, userID uuid.UUID, vote string) (*VoteTally, error) {
  if !types.ValidVote(vote) {
    return nil, apperr.Validation("unknown vote value %q", vote)
  }

  var tripID uuid.UUID
  err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    activity, err := s.loadActivity(ctx, tx, activityID)
    if err != nil {
      return err
    }
    tripID, err = s.tripIDForActivity(ctx, tx, activity)
    if err != nil {
      return err
    }
    if err := s.requireMember(ctx, tx, tripID, userID); err != nil {
      return err
    }

    existing, err := s.voteRepo.GetByActivityAndUser(ctx, tx, activityID, userID)
    if err != nil {
      return apperr.Persistence("load vote", err)
    }
    switch {
    case existing == nil:
      now := time.Now()
      row := &types.ActivityVote{
        ID:         uuid.New(),
        ActivityID: activityID,
        UserID:     userID,
        Vote:       vote,
        CreatedAt:  now,
        UpdatedAt:  now,
      }
      if _, err := s.voteRepo.Create(ctx, tx, []*types.ActivityVote{row}); err != nil {
        return apperr.Persistence("create vote", err)
      }
    case existing.Vote == vote:
      // Toggle off.
      if err := s.voteRepo.DeleteByID(ctx, tx, existing.ID); err != nil {
        return apperr.Persistence("delete vote", err)
      }
    default:
      if err := s.voteRepo.UpdateVote(ctx, tx, existing.ID, vote); err != nil {
        return apperr.Persistence("update vote", err)
      }
    }
    return nil
  })
  if err != nil {
    return nil, err
  }

  tallies, err := s.VoteCounts(ctx, []uuid.UUID{activityID}, userID)
  if err != nil {
    return nil, err
  }
  tally := tallies[activityID]
  if tally == nil {
    tally = &VoteTally{}
  }
  s.notifier.VoteChanged(ctx, tripID, activityID, tally)
  return tally, nil
}

// SetStatus preserves the observed toggle rule: requesting the status the
// activity already has resets it to pending, anything else sets the
// requested value.
func (s *collabService) SetStatus(ctx context.Context, activityID, userID uuid.UUID, status string) (*types.Activity, error) {
  if !types.ValidActivityStatus(status) {
    return nil, apperr.Validation("unknown activity status %q", status)
  }

  var updated *types.Activity
  var tripID uuid.UUID
  err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    activity, err := s.loadActivity(ctx, tx, activityID)
    if err != nil {
      return err
    }
    tripID, err = s.tripIDForActivity(ctx, tx, activity)
    if err != nil {
      return err
    }
    if err := s.requireMember(ctx, tx, tripID, userID); err != nil {
      return err
    }

    next := status
    if activity.Status == status {
      next = types.ActivityStatusPending
    }
    if err := s.activityRepo.Update(ctx, tx, activityID, map[string]any{
      "status":     next,
      "updated_at": time.Now(),
    }); err != nil {
      return apperr.Persistence("update activity status", err)
    }
    activity.Status = next
    updated = activity
    return nil
  })
  if err != nil {
    return nil, err
  }

  s.notifier.ActivityUpdated(ctx, tripID, updated)
  return updated, nil
}

func (s *collabService) EditFields(ctx context.Context, activityID, userID uuid.UUID, patch ActivityPatch) (*types.Activity, error) {
  updates := map[string]any{}
  if patch.Name != nil {
    if *patch.Name == "" {
      return nil, apperr.Validation("activity name cannot be empty")
    }
    updates["name"] = *patch.Name
  }
  if patch.Description != nil {
    updates["description"] = *patch.Description
  }
  if patch.LocationName != nil {
    updates["location_name"] = *patch.LocationName
  }
  if patch.Cost != nil {
    cost := *patch.Cost
    if cost < 0 {
      cost = 0
    }
    updates["cost"] = cost
  }
  if patch.Notes != nil {
    updates["notes"] = *patch.Notes
  }
  if len(updates) == 0 {
    return nil, apperr.Validation("no editable fields in patch")
  }
  updates["updated_at"] = time.Now()

  var updated *types.Activity
  var tripID uuid.UUID
  err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    activity, err := s.loadActivity(ctx, tx, activityID)
    if err != nil {
      return err
    }
    tripID, err = s.tripIDForActivity(ctx, tx, activity)
    if err != nil {
      return err
    }
    if err := s.requireMember(ctx, tx, tripID, userID); err != nil {
      return err
    }
    if err := s.activityRepo.Update(ctx, tx, activityID, updates); err != nil {
      return apperr.Persistence("update activity", err)
    }
    fresh, err := s.loadActivity(ctx, tx, activityID)
    if err != nil {
      return err
    }
    updated = fresh
    return nil
  })
  if err != nil {
    return nil, err
  }

  s.notifier.ActivityUpdated(ctx, tripID, updated)
  return updated, nil
}

func (s *collabService) VoteCounts(ctx context.Context, activityIDs []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]*VoteTally, error) {
  out := make(map[uuid.UUID]*VoteTally, len(activityIDs))
  for _, id := range activityIDs {
    out[id] = &VoteTally{}
  }
  if len(activityIDs) == 0 {
    return out, nil
  }

  votes, err := s.voteRepo.GetByActivityIDs(ctx, nil, activityIDs)
  if err != nil {
    return nil, apperr.Persistence("load votes", err)
  }
  for _, v := range votes {
    tally, ok := out[v.ActivityID]
    if !ok {
      continue
    }
    switch v.Vote {
    case types.VoteUp:
      tally.Up++
    case types.VoteDown:
      tally.Down++
    }
    if v.UserID == userID {
      tally.MyVote = v.Vote
    }
  }
  return out, nil
}
