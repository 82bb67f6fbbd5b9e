package services

import (
  "context"
  "encoding/json"
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

// DisruptionService drives the detect -> propose -> apply flow. Detect and
// ProposeReplan are read-only previews; only ApplyReplan writes, and every
// accepted replan leaves exactly one DisruptionEvent row behind.
type DisruptionService interface {
  Detect(ctx context.Context, tripID uuid.UUID) (*DisruptionReport, error)
  ProposeReplan(ctx context.Context, tripID uuid.UUID, disruption Disruption) (*PlanCandidate, error)
  ApplyReplan(ctx context.Context, tripID, userID uuid.UUID, candidate *PlanCandidate, disruption Disruption) (*types.DisruptionEvent, *types.ItineraryVersion, []*types.Activity, error)
  ListEvents(ctx context.Context, tripID uuid.UUID) ([]*types.DisruptionEvent, error)
}

type disruptionService struct {
  db  *gorm.DB
  log *logger.Logger

  tripRepo     repos.TripRepo
  eventRepo    repos.DisruptionEventRepo
  activityRepo repos.ActivityRepo
  client       PlannerClient
  itinerary    ItineraryService
  notifier     TripNotifier
}

func NewDisruptionService(
  db *gorm.DB,
  baseLog *logger.Logger,
  tripRepo repos.TripRepo,
  eventRepo repos.DisruptionEventRepo,
  activityRepo repos.ActivityRepo,
  client PlannerClient,
  itinerary ItineraryService,
  notifier TripNotifier,
) DisruptionService {
  return &disruptionService{
    db:           db,
    log:          baseLog.With("service", "DisruptionService"),
    tripRepo:     tripRepo,
    eventRepo:    eventRepo,
    activityRepo: activityRepo,
    client:       client,
    itinerary:    itinerary,
    notifier:     notifier,
  }
}

func (s *disruptionService) loadTrip(ctx context.Context, tripID uuid.UUID) (*types.Trip, error) {
  trips, err := s.tripRepo.GetByIDs(ctx, nil, []uuid.UUID{tripID})
  if err != nil {
    return nil, apperr.Persistence("load trip", err)
  }
  if len(trips) == 0 {
    return nil, fmt.Errorf("trip %s: %w", tripID, apperr.ErrNotFound)
  }
  return trips[0], nil
}

func (s *disruptionService) Detect(ctx context.Context, tripID uuid.UUID) (*DisruptionReport, error) {
  trip, err := s.loadTrip(ctx, tripID)
  if err != nil {
    return nil, err
  }
  _, activities, err := s.itinerary.ActiveWithActivities(ctx, tripID)
  if err != nil {
    return nil, err
  }
  if len(activities) == 0 {
    // Nothing to disrupt yet.
    return &DisruptionReport{Disruptions: []Disruption{}, OverallRisk: types.SeverityLow}, nil
  }

  raw, err := s.client.DetectDisruptions(ctx, trip, activities)
  if err != nil {
    return nil, err
  }
  report, err := DecodeDisruptionReport(raw)
  if err != nil {
    return nil, err
  }
  s.log.Info("Disruption scan complete", "trip_id", tripID, "disruptions", len(report.Disruptions), "needs_replan", report.NeedsReplan)
  return report, nil
}

func (s *disruptionService) ProposeReplan(ctx context.Context, tripID uuid.UUID, disruption Disruption) (*PlanCandidate, error) {
  if disruption.Type == "" || disruption.Title == "" {
    return nil, apperr.Validation("disruption requires type and title")
  }
  if !types.ValidSeverity(disruption.Severity) {
    return nil, apperr.Validation("invalid disruption severity %q", disruption.Severity)
  }

  trip, err := s.loadTrip(ctx, tripID)
  if err != nil {
    return nil, err
  }
  _, activities, err := s.itinerary.ActiveWithActivities(ctx, tripID)
  if err != nil {
    return nil, err
  }
  if len(activities) == 0 {
    return nil, apperr.Validation("trip has no activities to replan")
  }

  raw, err := s.client.ProposeReplan(ctx, trip, activities, disruption)
  if err != nil {
    return nil, err
  }
  return DecodeReplanCandidate(raw)
}

// ApplyReplan commits a previewed replan. The audit row, the activity
// replacement and the metadata update share one transaction, so a conflict or
// write failure rolls back the event row with everything else.
func (s *disruptionService) ApplyReplan(ctx context.Context, tripID, userID uuid.UUID, candidate *PlanCandidate, disruption Disruption) (*types.DisruptionEvent, *types.ItineraryVersion, []*types.Activity, error) {
  if err := candidate.ValidateForReplace(true); err != nil {
    return nil, nil, nil, err
  }
  if candidate.ChangesSummary == "" {
    return nil, nil, nil, apperr.Validation("replan candidate missing changes_summary")
  }
  if !types.ValidSeverity(disruption.Severity) {
    return nil, nil, nil, apperr.Validation("invalid disruption severity %q", disruption.Severity)
  }

  var (
    event   *types.DisruptionEvent
    version *types.ItineraryVersion
    rows    []*types.Activity
  )

  err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    v, err := s.itinerary.GetOrCreateActive(ctx, tx, tripID, userID)
    if err != nil {
      return err
    }

    old, err := s.snapshotActivities(ctx, tx, v.ID)
    if err != nil {
      return err
    }

    created, err := s.eventRepo.Create(ctx, tx, []*types.DisruptionEvent{{
      ID:            uuid.New(),
      TripID:        tripID,
      EventType:     disruption.Type,
      Description:   disruption.Title + ": " + disruption.Description,
      Severity:      disruption.Severity,
      ReplanApplied: true,
      Resolved:      true,
      OldItinerary:  old,
      NewItinerary:  datatypes.JSON(mustJSON(candidate)),
      CreatedAt:     time.Now(),
    }})
    if err != nil {
      return apperr.Persistence("create disruption event", err)
    }
    event = created[0]

    rows, err = s.itinerary.ReplaceActivities(ctx, tx, v.ID, v.Revision, candidate.Activities)
    if err != nil {
      return err
    }
    v.Revision++

    variant := types.VariantReplanned
    meta := MetadataUpdate{
      CostBreakdown: candidate.CostBreakdown(),
      RegretScore:   candidate.RegretScore,
      VariantID:     &variant,
    }
    if err := s.itinerary.UpdateMetadata(ctx, tx, v.ID, meta); err != nil {
      return err
    }

    version = v
    return nil
  })
  if err != nil {
    return nil, nil, nil, err
  }

  s.log.Info("Replan applied", "trip_id", tripID, "event_id", event.ID, "severity", disruption.Severity, "activities", len(rows))
  s.notifier.ReplanApplied(ctx, tripID, event)
  return event, version, rows, nil
}

func (s *disruptionService) snapshotActivities(ctx context.Context, tx *gorm.DB, itineraryID uuid.UUID) (datatypes.JSON, error) {
  activities, err := s.activityRepo.GetByItineraryID(ctx, tx, itineraryID)
  if err != nil {
    return nil, apperr.Persistence("snapshot activities", err)
  }
  buf, err := json.Marshal(activities)
  if err != nil {
    return nil, apperr.Persistence("snapshot activities", err)
  }
  return datatypes.JSON(buf), nil
}

func (s *disruptionService) ListEvents(ctx context.Context, tripID uuid.UUID) ([]*types.DisruptionEvent, error) {
  events, err := s.eventRepo.GetByTripID(ctx, nil, tripID)
  if err != nil {
    return nil, apperr.Persistence("list disruption events", err)
  }
  return events, nil
}
