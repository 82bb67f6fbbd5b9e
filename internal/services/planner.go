package services

import (
  "context"
  "fmt"
  "sync"
  "time"

  "github.com/google/uuid"
  "golang.org/x/sync/errgroup"
  "gorm.io/gorm"

  "github.com/yungbote/tripflow-backend/internal/apperr"
  "github.com/yungbote/tripflow-backend/internal/logger"
  "github.com/yungbote/tripflow-backend/internal/repos"
  "github.com/yungbote/tripflow-backend/internal/types"
)

// PlannerService fronts the AI collaborator for the generation flows:
// one-shot plan generation, the three-variant counterfactual comparison, and
// applying a previewed variant to the trip.
type PlannerService interface {
  GeneratePlan(ctx context.Context, tripID, userID uuid.UUID, req GenerateRequest) (*types.ItineraryVersion, []*types.Activity, error)
  GenerateCounterfactuals(ctx context.Context, tripID uuid.UUID, req GenerateRequest) (*CounterfactualSet, error)
  ApplyVariant(ctx context.Context, tripID, userID uuid.UUID, candidate *PlanCandidate) (*types.ItineraryVersion, []*types.Activity, error)
}

type plannerService struct {
  db  *gorm.DB
  log *logger.Logger

  tripRepo  repos.TripRepo
  client    PlannerClient
  ingestion IngestionService
}

func NewPlannerService(
  db *gorm.DB,
  baseLog *logger.Logger,
  tripRepo repos.TripRepo,
  client PlannerClient,
  ingestion IngestionService,
) PlannerService {
  return &plannerService{
    db:        db,
    log:       baseLog.With("service", "PlannerService"),
    tripRepo:  tripRepo,
    client:    client,
    ingestion: ingestion,
  }
}

func (s *plannerService) fillRequestFromTrip(ctx context.Context, tripID uuid.UUID, req GenerateRequest) (GenerateRequest, error) {
  trips, err := s.tripRepo.GetByIDs(ctx, nil, []uuid.UUID{tripID})
  if err != nil {
    return req, apperr.Persistence("load trip", err)
  }
  if len(trips) == 0 {
    return req, fmt.Errorf("trip %s: %w", tripID, apperr.ErrNotFound)
  }
  trip := trips[0]

  if req.Destination == "" {
    req.Destination = trip.Destination
  }
  if req.Country == "" {
    req.Country = trip.Country
  }
  if req.Days <= 0 {
    req.Days = int(trip.EndDate.Sub(trip.StartDate)/(24*time.Hour)) + 1
  }
  if req.Travelers <= 0 {
    req.Travelers = 1
  }
  if req.Budget <= 0 {
    req.Budget = trip.BudgetTotal
  }
  return req, nil
}

func (s *plannerService) GeneratePlan(ctx context.Context, tripID, userID uuid.UUID, req GenerateRequest) (*types.ItineraryVersion, []*types.Activity, error) {
  req, err := s.fillRequestFromTrip(ctx, tripID, req)
  if err != nil {
    return nil, nil, err
  }

  raw, err := s.client.GeneratePlan(ctx, req)
  if err != nil {
    return nil, nil, err
  }
  candidate, err := DecodePlanCandidate(raw)
  if err != nil {
    return nil, nil, err
  }
  return s.ingestion.IngestForTrip(ctx, tripID, userID, candidate)
}

var counterfactualVariants = [3]string{types.VariantBudget, types.VariantBalanced, types.VariantExperience}

// GenerateCounterfactuals fans out one planner call per strategy and returns
// the decoded set for client-side comparison. Nothing is persisted until the
// user applies one of the plans.
func (s *plannerService) GenerateCounterfactuals(ctx context.Context, tripID uuid.UUID, req GenerateRequest) (*CounterfactualSet, error) {
  req, err := s.fillRequestFromTrip(ctx, tripID, req)
  if err != nil {
    return nil, err
  }

  var mu sync.Mutex
  plans := make(map[string]*PlanCandidate, len(counterfactualVariants))

  g, gctx := errgroup.WithContext(ctx)
  for _, variant := range counterfactualVariants {
    variant := variant
    g.Go(func() error {
      raw, err := s.client.GenerateVariant(gctx, req, variant)
      if err != nil {
        return fmt.Errorf("variant %s: %w", variant, err)
      }
      pc, err := DecodePlanCandidate(raw)
      if err != nil {
        return fmt.Errorf("variant %s: %w", variant, err)
      }
      if pc.VariantID == "" {
        pc.VariantID = variant
      }
      mu.Lock()
      plans[variant] = pc
      mu.Unlock()
      return nil
    })
  }
  if err := g.Wait(); err != nil {
    return nil, err
  }

  out := &CounterfactualSet{
    Plans: make([]PlanCandidate, 0, len(counterfactualVariants)),
  }
  recommendation := types.VariantBalanced
  bestRegret := 2.0
  for _, variant := range counterfactualVariants {
    pc := plans[variant]
    out.Plans = append(out.Plans, *pc)
    if pc.RegretScore != nil && *pc.RegretScore < bestRegret {
      bestRegret = *pc.RegretScore
      recommendation = variant
    }
  }
  out.Recommendation = recommendation
  out.ComparisonNote = fmt.Sprintf("Compared %d strategies for %s; %q carries the lowest predicted regret.",
    len(out.Plans), req.Destination, recommendation)

  s.log.Info("Generated counterfactual plans", "trip_id", tripID, "recommendation", recommendation)
  return out, nil
}

func (s *plannerService) ApplyVariant(ctx context.Context, tripID, userID uuid.UUID, candidate *PlanCandidate) (*types.ItineraryVersion, []*types.Activity, error) {
  if candidate.VariantID == "" {
    return nil, nil, apperr.Validation("variant plan missing variant_id")
  }
  return s.ingestion.IngestForTrip(ctx, tripID, userID, candidate)
}
