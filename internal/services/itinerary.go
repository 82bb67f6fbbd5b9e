package services

import (
  "context"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/yungbote/tripflow-backend/internal/apperr"
  "github.com/yungbote/tripflow-backend/internal/logger"
  "github.com/yungbote/tripflow-backend/internal/repos"
  "github.com/yungbote/tripflow-backend/internal/types"
)

// MetadataUpdate is a partial write against an itinerary version, independent
// of activity replacement.
type MetadataUpdate struct {
  CostBreakdown map[string]any
  RegretScore   *float64
  VariantID     *string
}

// ItineraryService owns the "one active version per trip" invariant. The
// trip row carries an explicit active_itinerary_id pointer; highest-version
// lookup survives only to adopt rows written before the pointer existed.
//
// Methods that accept a tx participate in a caller-owned transaction; passing
// nil makes the method open its own.
type ItineraryService interface {
  GetOrCreateActive(ctx context.Context, tx *gorm.DB, tripID, userID uuid.UUID) (*types.ItineraryVersion, error)
  ReplaceActivities(ctx context.Context, tx *gorm.DB, itineraryID uuid.UUID, expectedRevision int64, drafts []ActivityDraft) ([]*types.Activity, error)
  UpdateMetadata(ctx context.Context, tx *gorm.DB, itineraryID uuid.UUID, meta MetadataUpdate) error
  PromoteNewVersion(ctx context.Context, tripID, userID uuid.UUID, variantID string) (*types.ItineraryVersion, error)
  Active(ctx context.Context, tripID uuid.UUID) (*types.ItineraryVersion, error)
  ActiveWithActivities(ctx context.Context, tripID uuid.UUID) (*types.ItineraryVersion, []*types.Activity, error)
  History(ctx context.Context, tripID uuid.UUID) ([]*types.ItineraryVersion, error)
}

type itineraryService struct {
  db  *gorm.DB
  log *logger.Logger

  tripRepo      repos.TripRepo
  itineraryRepo repos.ItineraryRepo
  activityRepo  repos.ActivityRepo
}

func NewItineraryService(
  db *gorm.DB,
  baseLog *logger.Logger,
  tripRepo repos.TripRepo,
  itineraryRepo repos.ItineraryRepo,
  activityRepo repos.ActivityRepo,
) ItineraryService {
  return &itineraryService{
    db:            db,
    log:           baseLog.With("service", "ItineraryService"),
    tripRepo:      tripRepo,
    itineraryRepo: itineraryRepo,
    activityRepo:  activityRepo,
  }
}

func (s *itineraryService) loadTrip(ctx context.Context, tx *gorm.DB, tripID uuid.UUID) (*types.Trip, error) {
  trips, err := s.tripRepo.GetByIDs(ctx, tx, []uuid.UUID{tripID})
  if err != nil {
    return nil, apperr.Persistence("load trip", err)
  }
  if len(trips) == 0 {
    return nil, fmt.Errorf("trip %s: %w", tripID, apperr.ErrNotFound)
  }
  return trips[0], nil
}

func (s *itineraryService) resolveActive(ctx context.Context, tx *gorm.DB, trip *types.Trip) (*types.ItineraryVersion, error) {
  if trip.ActiveItineraryID != nil {
    versions, err := s.itineraryRepo.GetByIDs(ctx, tx, []uuid.UUID{*trip.ActiveItineraryID})
    if err != nil {
      return nil, apperr.Persistence("load active itinerary", err)
    }
    if len(versions) > 0 {
      return versions[0], nil
    }
    s.log.Warn("active itinerary pointer is dangling", "trip_id", trip.ID, "itinerary_id", *trip.ActiveItineraryID)
  }
  // Legacy rows predate the pointer: fall back to highest version.
  latest, err := s.itineraryRepo.GetLatestByTripID(ctx, tx, trip.ID)
  if err != nil {
    return nil, apperr.Persistence("load latest itinerary", err)
  }
  return latest, nil
}

func (s *itineraryService) GetOrCreateActive(ctx context.Context, tx *gorm.DB, tripID, userID uuid.UUID) (*types.ItineraryVersion, error) {
  if tx != nil {
    return s.getOrCreateActive(ctx, tx, tripID, userID)
  }
  var out *types.ItineraryVersion
  err := s.db.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
    v, err := s.getOrCreateActive(ctx, txx, tripID, userID)
    if err != nil {
      return err
    }
    out = v
    return nil
  })
  if err != nil {
    return nil, err
  }
  return out, nil
}

func (s *itineraryService) getOrCreateActive(ctx context.Context, tx *gorm.DB, tripID, userID uuid.UUID) (*types.ItineraryVersion, error) {
  trip, err := s.loadTrip(ctx, tx, tripID)
  if err != nil {
    return nil, err
  }

  existing, err := s.resolveActive(ctx, tx, trip)
  if err != nil {
    return nil, err
  }
  if existing != nil {
    if trip.ActiveItineraryID == nil || *trip.ActiveItineraryID != existing.ID {
      // Adopt the legacy row into the pointer so the convention dies here.
      if err := s.tripRepo.SetActiveItinerary(ctx, tx, trip.ID, existing.ID); err != nil {
        return nil, apperr.Persistence("adopt active itinerary", err)
      }
    }
    return existing, nil
  }

  now := time.Now()
  version := &types.ItineraryVersion{
    ID:            uuid.New(),
    TripID:        trip.ID,
    CreatedBy:     userID,
    Version:       1,
    Revision:      0,
    CostBreakdown: datatypes.JSON([]byte(`{}`)),
    CreatedAt:     now,
    UpdatedAt:     now,
  }
  if _, err := s.itineraryRepo.Create(ctx, tx, []*types.ItineraryVersion{version}); err != nil {
    return nil, apperr.Persistence("create itinerary version", err)
  }
  if err := s.tripRepo.SetActiveItinerary(ctx, tx, trip.ID, version.ID); err != nil {
    return nil, apperr.Persistence("promote itinerary version", err)
  }
  s.log.Info("Created first itinerary version", "trip_id", trip.ID, "itinerary_id", version.ID)
  return version, nil
}

func (s *itineraryService) ReplaceActivities(ctx context.Context, tx *gorm.DB, itineraryID uuid.UUID, expectedRevision int64, drafts []ActivityDraft) ([]*types.Activity, error) {
  if tx != nil {
    return s.replaceActivities(ctx, tx, itineraryID, expectedRevision, drafts)
  }
  var out []*types.Activity
  err := s.db.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
    rows, err := s.replaceActivities(ctx, txx, itineraryID, expectedRevision, drafts)
    if err != nil {
      return err
    }
    out = rows
    return nil
  })
  if err != nil {
    return nil, err
  }
  return out, nil
}

// replaceActivities is the only mutation path for regenerate and
// apply-variant/replan flows: a revision CAS followed by delete-all then
// bulk-insert, all inside one transaction so no zero-activity window is
// observable.
func (s *itineraryService) replaceActivities(ctx context.Context, tx *gorm.DB, itineraryID uuid.UUID, expectedRevision int64, drafts []ActivityDraft) ([]*types.Activity, error) {
  matched, err := s.itineraryRepo.BumpRevision(ctx, tx, itineraryID, expectedRevision)
  if err != nil {
    return nil, apperr.Persistence("revision check", err)
  }
  if matched == 0 {
    versions, err := s.itineraryRepo.GetByIDs(ctx, tx, []uuid.UUID{itineraryID})
    if err != nil {
      return nil, apperr.Persistence("load itinerary for conflict report", err)
    }
    if len(versions) == 0 {
      return nil, fmt.Errorf("itinerary %s: %w", itineraryID, apperr.ErrNotFound)
    }
    return nil, apperr.Conflict(expectedRevision, versions[0].Revision)
  }

  if err := s.activityRepo.DeleteByItineraryID(ctx, tx, itineraryID); err != nil {
    return nil, apperr.Persistence("delete activities", err)
  }

  now := time.Now()
  rows := make([]*types.Activity, 0, len(drafts))
  for _, d := range drafts {
    cost := d.Cost
    if cost < 0 {
      cost = 0
    }
    status := d.Status
    if status == "" {
      status = types.ActivityStatusPending
    }
    rows = append(rows, &types.Activity{
      ID:             uuid.New(),
      ItineraryID:    itineraryID,
      Name:           d.Name,
      Description:    d.Description,
      LocationName:   d.LocationName,
      Lat:            d.Lat,
      Lng:            d.Lng,
      StartTime:      d.StartTime,
      EndTime:        d.EndTime,
      Category:       d.Category,
      Cost:           cost,
      Status:         status,
      Notes:          d.Notes,
      Priority:       d.Priority,
      ReviewScore:    d.ReviewScore,
      EstimatedSteps: d.EstimatedSteps,
      CreatedAt:      now,
      UpdatedAt:      now,
    })
  }
  if _, err := s.activityRepo.Create(ctx, tx, rows); err != nil {
    return nil, apperr.Persistence("insert activities", err)
  }
  return rows, nil
}

func (s *itineraryService) UpdateMetadata(ctx context.Context, tx *gorm.DB, itineraryID uuid.UUID, meta MetadataUpdate) error {
  updates := map[string]any{}
  if meta.CostBreakdown != nil {
    updates["cost_breakdown"] = datatypes.JSON(mustJSON(meta.CostBreakdown))
  }
  if meta.RegretScore != nil {
    updates["regret_score"] = *meta.RegretScore
  }
  if meta.VariantID != nil {
    updates["variant_id"] = *meta.VariantID
  }
  if len(updates) == 0 {
    return nil
  }
  updates["updated_at"] = time.Now()

  if err := s.itineraryRepo.Update(ctx, tx, itineraryID, updates); err != nil {
    return apperr.Persistence("update itinerary metadata", err)
  }
  return nil
}

func (s *itineraryService) PromoteNewVersion(ctx context.Context, tripID, userID uuid.UUID, variantID string) (*types.ItineraryVersion, error) {
  var out *types.ItineraryVersion
  err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    trip, err := s.loadTrip(ctx, tx, tripID)
    if err != nil {
      return err
    }
    latest, err := s.itineraryRepo.GetLatestByTripID(ctx, tx, tripID)
    if err != nil {
      return apperr.Persistence("load latest itinerary", err)
    }
    nextVersion := 1
    if latest != nil {
      nextVersion = latest.Version + 1
    }

    now := time.Now()
    version := &types.ItineraryVersion{
      ID:            uuid.New(),
      TripID:        trip.ID,
      CreatedBy:     userID,
      Version:       nextVersion,
      Revision:      0,
      VariantID:     variantID,
      CostBreakdown: datatypes.JSON([]byte(`{}`)),
      CreatedAt:     now,
      UpdatedAt:     now,
    }
    if _, err := s.itineraryRepo.Create(ctx, tx, []*types.ItineraryVersion{version}); err != nil {
      return apperr.Persistence("create itinerary version", err)
    }
    if err := s.tripRepo.SetActiveItinerary(ctx, tx, trip.ID, version.ID); err != nil {
      return apperr.Persistence("promote itinerary version", err)
    }
    out = version
    return nil
  })
  if err != nil {
    return nil, err
  }
  s.log.Info("Promoted new itinerary version", "trip_id", tripID, "version", out.Version, "variant_id", variantID)
  return out, nil
}

func (s *itineraryService) Active(ctx context.Context, tripID uuid.UUID) (*types.ItineraryVersion, error) {
  trip, err := s.loadTrip(ctx, nil, tripID)
  if err != nil {
    return nil, err
  }
  return s.resolveActive(ctx, nil, trip)
}

func (s *itineraryService) ActiveWithActivities(ctx context.Context, tripID uuid.UUID) (*types.ItineraryVersion, []*types.Activity, error) {
  active, err := s.Active(ctx, tripID)
  if err != nil {
    return nil, nil, err
  }
  if active == nil {
    return nil, nil, nil
  }
  activities, err := s.activityRepo.GetByItineraryID(ctx, nil, active.ID)
  if err != nil {
    return nil, nil, apperr.Persistence("load activities", err)
  }
  return active, activities, nil
}

func (s *itineraryService) History(ctx context.Context, tripID uuid.UUID) ([]*types.ItineraryVersion, error) {
  versions, err := s.itineraryRepo.GetByTripID(ctx, nil, tripID)
  if err != nil {
    return nil, apperr.Persistence("load itinerary history", err)
  }
  return versions, nil
}
