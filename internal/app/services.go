package app

import (
  "context"
  "fmt"

  "gorm.io/gorm"

  "github.com/yungbote/tripflow-backend/internal/logger"
  "github.com/yungbote/tripflow-backend/internal/services"
  "github.com/yungbote/tripflow-backend/internal/sse"
)

type Services struct {
  Auth       services.AuthService
  Trip       services.TripService
  Itinerary  services.ItineraryService
  Ingestion  services.IngestionService
  Collab     services.CollabService
  Planner    services.PlannerService
  Disruption services.DisruptionService
  Message    services.MessageService

  Emitter services.SSEEmitter
  Bus     services.SSEBus
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, hub *sse.SSEHub) (Services, error) {
  log.Info("Wiring services...")

  var emitter services.SSEEmitter
  var bus services.SSEBus
  if cfg.UseRedisBus {
    b, err := services.NewRedisSSEBus(log)
    if err != nil {
      return Services{}, fmt.Errorf("init redis sse bus: %w", err)
    }
    if err := b.StartForwarder(context.Background(), hub.Broadcast); err != nil {
      return Services{}, fmt.Errorf("start sse forwarder: %w", err)
    }
    emitter = &services.RedisEmitter{Bus: b}
    bus = b
  } else {
    emitter = &services.HubEmitter{Hub: hub}
  }

  notifier := services.NewTripNotifier(emitter)

  planner, err := services.NewOpenAIPlanner(log)
  if err != nil {
    return Services{}, fmt.Errorf("init planner client: %w", err)
  }

  auth := services.NewAuthService(db, log, r.User, r.UserToken, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
  trip := services.NewTripService(db, log, r.Trip, r.TripMember, r.User)
  itinerary := services.NewItineraryService(db, log, r.Trip, r.Itinerary, r.Activity)
  ingestion := services.NewIngestionService(db, log, r.Itinerary, itinerary, notifier)
  collab := services.NewCollabService(db, log, r.Activity, r.ActivityVote, r.Itinerary, r.TripMember, notifier)
  plannerSvc := services.NewPlannerService(db, log, r.Trip, planner, ingestion)
  disruption := services.NewDisruptionService(db, log, r.Trip, r.DisruptionEvent, r.Activity, planner, itinerary, notifier)
  message := services.NewMessageService(db, log, r.Message, notifier)

  return Services{
    Auth:       auth,
    Trip:       trip,
    Itinerary:  itinerary,
    Ingestion:  ingestion,
    Collab:     collab,
    Planner:    plannerSvc,
    Disruption: disruption,
    Message:    message,
    Emitter:    emitter,
    Bus:        bus,
  }, nil
}
