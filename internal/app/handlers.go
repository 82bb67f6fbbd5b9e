package app

import (
  "github.com/gin-gonic/gin"

  "github.com/yungbote/tripflow-backend/internal/handlers"
  "github.com/yungbote/tripflow-backend/internal/logger"
  "github.com/yungbote/tripflow-backend/internal/middleware"
  "github.com/yungbote/tripflow-backend/internal/server"
  "github.com/yungbote/tripflow-backend/internal/sse"
)

type Handlers struct {
  Healthcheck *handlers.HealthcheckHandler
  Auth        *handlers.AuthHandler
  User        *handlers.UserHandler
  Trip        *handlers.TripHandler
  Itinerary   *handlers.ItineraryHandler
  Activity    *handlers.ActivityHandler
  Disruption  *handlers.DisruptionHandler
  Message     *handlers.MessageHandler
  SSE         *handlers.SSEHandler
}

type Middleware struct {
  Auth *middleware.AuthMiddleware
}

func wireHandlers(log *logger.Logger, svc Services, r Repos, hub *sse.SSEHub) Handlers {
  log.Info("Wiring handlers...")
  return Handlers{
    Healthcheck: handlers.NewHealthcheckHandler(),
    Auth:        handlers.NewAuthHandler(svc.Auth),
    User:        handlers.NewUserHandler(r.User),
    Trip:        handlers.NewTripHandler(svc.Trip),
    Itinerary:   handlers.NewItineraryHandler(svc.Trip, svc.Itinerary, svc.Ingestion, svc.Planner, svc.Emitter),
    Activity:    handlers.NewActivityHandler(svc.Collab, svc.Emitter),
    Disruption:  handlers.NewDisruptionHandler(svc.Trip, svc.Disruption, svc.Emitter),
    Message:     handlers.NewMessageHandler(svc.Trip, svc.Message, svc.Emitter),
    SSE:         handlers.NewSSEHandler(hub, svc.Trip),
  }
}

func wireMiddleware(log *logger.Logger, svc Services) Middleware {
  log.Info("Wiring middleware...")
  return Middleware{
    Auth: middleware.NewAuthMiddleware(log, svc.Auth),
  }
}

func wireRouter(cfg Config, h Handlers, mw Middleware) *gin.Engine {
  return server.NewRouter(server.RouterConfig{
    AllowOrigins:       cfg.AllowOrigins,
    AuthMiddleware:     mw.Auth,
    HealthcheckHandler: h.Healthcheck,
    AuthHandler:        h.Auth,
    UserHandler:        h.User,
    TripHandler:        h.Trip,
    ItineraryHandler:   h.Itinerary,
    ActivityHandler:    h.Activity,
    DisruptionHandler:  h.Disruption,
    MessageHandler:     h.Message,
    SSEHandler:         h.SSE,
  })
}
