package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"

  "github.com/yungbote/tripflow-backend/internal/handlers"
  "github.com/yungbote/tripflow-backend/internal/middleware"
)

type RouterConfig struct {
  AllowOrigins       []string
  AuthMiddleware     *middleware.AuthMiddleware
  HealthcheckHandler *handlers.HealthcheckHandler
  AuthHandler        *handlers.AuthHandler
  UserHandler        *handlers.UserHandler
  TripHandler        *handlers.TripHandler
  ItineraryHandler   *handlers.ItineraryHandler
  ActivityHandler    *handlers.ActivityHandler
  DisruptionHandler  *handlers.DisruptionHandler
  MessageHandler     *handlers.MessageHandler
  SSEHandler         *handlers.SSEHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  router.Use(cors.New(cors.Config{
    AllowOrigins:     cfg.AllowOrigins,
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

// ===============
// || Public    ||
// ===============
  router.GET("/healthcheck", cfg.HealthcheckHandler.Healthcheck)
  router.POST("/register", cfg.AuthHandler.Register)
  router.POST("/login", cfg.AuthHandler.Login)

// ===============
// || Protected ||
// ===============
  protected := router.Group("/api")
  protected.Use(cfg.AuthMiddleware.RequireAuth())

  // Auth
  protected.POST("/refresh", cfg.AuthHandler.Refresh)
  protected.POST("/logout", cfg.AuthHandler.Logout)

  // User
  protected.GET("/user", cfg.UserHandler.GetMe)

  // Trips
  protected.POST("/trips", cfg.TripHandler.Create)
  protected.GET("/trips", cfg.TripHandler.List)
  protected.GET("/trips/:tripID", cfg.TripHandler.Get)
  protected.PATCH("/trips/:tripID", cfg.TripHandler.Update)
  protected.POST("/trips/:tripID/members", cfg.TripHandler.AddMember)
  protected.GET("/trips/:tripID/members", cfg.TripHandler.Members)

  // Itinerary
  protected.GET("/trips/:tripID/itinerary", cfg.ItineraryHandler.GetActive)
  protected.GET("/trips/:tripID/itinerary/history", cfg.ItineraryHandler.History)
  protected.POST("/trips/:tripID/itinerary/promote", cfg.ItineraryHandler.Promote)
  protected.POST("/trips/:tripID/itinerary/ingest", cfg.ItineraryHandler.Ingest)
  protected.POST("/trips/:tripID/itinerary/generate", cfg.ItineraryHandler.Generate)
  protected.POST("/trips/:tripID/itinerary/counterfactuals", cfg.ItineraryHandler.Counterfactuals)
  protected.POST("/trips/:tripID/itinerary/apply-variant", cfg.ItineraryHandler.ApplyVariant)

  // Activities
  protected.POST("/activities/:activityID/vote", cfg.ActivityHandler.Vote)
  protected.POST("/activities/:activityID/status", cfg.ActivityHandler.SetStatus)
  protected.PATCH("/activities/:activityID", cfg.ActivityHandler.Edit)

  // Disruptions
  protected.POST("/trips/:tripID/disruptions/detect", cfg.DisruptionHandler.Detect)
  protected.POST("/trips/:tripID/disruptions/propose-replan", cfg.DisruptionHandler.ProposeReplan)
  protected.POST("/trips/:tripID/disruptions/apply-replan", cfg.DisruptionHandler.ApplyReplan)
  protected.GET("/trips/:tripID/disruptions", cfg.DisruptionHandler.ListEvents)

  // Messages
  protected.POST("/trips/:tripID/messages", cfg.MessageHandler.Send)
  protected.GET("/trips/:tripID/messages", cfg.MessageHandler.List)

  // SSE
  protected.GET("/trips/:tripID/events", cfg.SSEHandler.Stream)

  return router
}
