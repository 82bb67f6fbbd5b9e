package services

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/yungbote/tripflow-backend/internal/apperr"
  "github.com/yungbote/tripflow-backend/internal/logger"
  "github.com/yungbote/tripflow-backend/internal/repos"
  "github.com/yungbote/tripflow-backend/internal/types"
)

// IngestionService turns an externally-produced plan candidate into a
// well-formed write against the itinerary service. All candidate validation
// happens before any persistence call.
type IngestionService interface {
  // IngestForTrip resolves (or creates) the trip's active version and
  // replaces its activities with the candidate's.
  IngestForTrip(ctx context.Context, tripID, userID uuid.UUID, candidate *PlanCandidate) (*types.ItineraryVersion, []*types.Activity, error)

  // Ingest replaces activities on a known version; expectedRevision carries
  // the optimistic-concurrency token the caller read.
  Ingest(ctx context.Context, itineraryID uuid.UUID, expectedRevision int64, candidate *PlanCandidate) ([]*types.Activity, error)
}

type ingestionService struct {
  db  *gorm.DB
  log *logger.Logger

  itineraryRepo repos.ItineraryRepo
  itineraries   ItineraryService
  notifier      TripNotifier
}

func NewIngestionService(
  db *gorm.DB,
  baseLog *logger.Logger,
  itineraryRepo repos.ItineraryRepo,
  itineraries ItineraryService,
  notifier TripNotifier,
) IngestionService {
  return &ingestionService{
    db:            db,
    log:           baseLog.With("service", "IngestionService"),
    itineraryRepo: itineraryRepo,
    itineraries:   itineraries,
    notifier:      notifier,
  }
}

func (s *ingestionService) metadataFrom(candidate *PlanCandidate) MetadataUpdate {
  meta := MetadataUpdate{
    CostBreakdown: candidate.CostBreakdown(),
    RegretScore:   candidate.RegretScore,
  }
  if candidate.VariantID != "" {
    variant := candidate.VariantID
    meta.VariantID = &variant
  }
  return meta
}

func (s *ingestionService) IngestForTrip(ctx context.Context, tripID, userID uuid.UUID, candidate *PlanCandidate) (*types.ItineraryVersion, []*types.Activity, error) {
  if err := candidate.ValidateForReplace(true); err != nil {
    return nil, nil, err
  }

  var version *types.ItineraryVersion
  var rows []*types.Activity
  err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    v, err := s.itineraries.GetOrCreateActive(ctx, tx, tripID, userID)
    if err != nil {
      return err
    }
    inserted, err := s.itineraries.ReplaceActivities(ctx, tx, v.ID, v.Revision, candidate.Activities)
    if err != nil {
      return err
    }
    // Callers hand the returned revision to their next write.
    v.Revision++
    if err := s.itineraries.UpdateMetadata(ctx, tx, v.ID, s.metadataFrom(candidate)); err != nil {
      return err
    }
    version = v
    rows = inserted
    return nil
  })
  if err != nil {
    return nil, nil, err
  }

  s.log.Info("Ingested plan candidate", "trip_id", tripID, "itinerary_id", version.ID, "activities", len(rows), "variant_id", candidate.VariantID)
  s.notifier.ItineraryReplaced(ctx, tripID, version, len(rows))
  return version, rows, nil
}

func (s *ingestionService) Ingest(ctx context.Context, itineraryID uuid.UUID, expectedRevision int64, candidate *PlanCandidate) ([]*types.Activity, error) {
  if err := candidate.ValidateForReplace(true); err != nil {
    return nil, err
  }

  versions, err := s.itineraryRepo.GetByIDs(ctx, nil, []uuid.UUID{itineraryID})
  if err != nil {
    return nil, apperr.Persistence("load itinerary", err)
  }
  if len(versions) == 0 {
    return nil, apperr.ErrNotFound
  }
  version := versions[0]

  var rows []*types.Activity
  err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    inserted, err := s.itineraries.ReplaceActivities(ctx, tx, itineraryID, expectedRevision, candidate.Activities)
    if err != nil {
      return err
    }
    if err := s.itineraries.UpdateMetadata(ctx, tx, itineraryID, s.metadataFrom(candidate)); err != nil {
      return err
    }
    rows = inserted
    return nil
  })
  if err != nil {
    return nil, err
  }

  s.notifier.ItineraryReplaced(ctx, version.TripID, version, len(rows))
  return rows, nil
}
