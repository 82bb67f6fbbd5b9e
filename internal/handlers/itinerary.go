package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/yungbote/tripflow-backend/internal/services"
)

type ItineraryHandler struct {
  tripService      services.TripService
  itineraryService services.ItineraryService
  ingestionService services.IngestionService
  plannerService   services.PlannerService
  emitter          services.SSEEmitter
}

func NewItineraryHandler(
  tripService services.TripService,
  itineraryService services.ItineraryService,
  ingestionService services.IngestionService,
  plannerService services.PlannerService,
  emitter services.SSEEmitter,
) *ItineraryHandler {
  return &ItineraryHandler{
    tripService:      tripService,
    itineraryService: itineraryService,
    ingestionService: ingestionService,
    plannerService:   plannerService,
    emitter:          emitter,
  }
}

func (ih *ItineraryHandler) requireMember(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
  userID, ok := currentUserID(c)
  if !ok {
    return uuid.Nil, uuid.Nil, false
  }
  tripID, ok := pathUUID(c, "tripID")
  if !ok {
    return uuid.Nil, uuid.Nil, false
  }
  if _, err := ih.tripService.RequireMember(c.Request.Context(), tripID, userID); err != nil {
    RespondServiceError(c, err)
    return uuid.Nil, uuid.Nil, false
  }
  return tripID, userID, true
}

// GET /api/trips/:tripID/itinerary
func (ih *ItineraryHandler) GetActive(c *gin.Context) {
  tripID, _, ok := ih.requireMember(c)
  if !ok {
    return
  }
  version, activities, err := ih.itineraryService.ActiveWithActivities(c.Request.Context(), tripID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"itinerary": version, "activities": activities})
}

// GET /api/trips/:tripID/itinerary/history
func (ih *ItineraryHandler) History(c *gin.Context) {
  tripID, _, ok := ih.requireMember(c)
  if !ok {
    return
  }
  versions, err := ih.itineraryService.History(c.Request.Context(), tripID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"versions": versions})
}

// POST /api/trips/:tripID/itinerary/promote
func (ih *ItineraryHandler) Promote(c *gin.Context) {
  tripID, userID, ok := ih.requireMember(c)
  if !ok {
    return
  }
  var req struct {
    VariantID string `json:"variant_id"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }
  version, err := ih.itineraryService.PromoteNewVersion(c.Request.Context(), tripID, userID, req.VariantID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, version)
}

// POST /api/trips/:tripID/itinerary/ingest
// Body is a raw plan candidate exactly as the collaborator produced it; it
// goes through the same strict decode as server-side generations.
func (ih *ItineraryHandler) Ingest(c *gin.Context) {
  tripID, userID, ok := ih.requireMember(c)
  if !ok {
    return
  }
  var raw map[string]any
  if err := c.ShouldBindJSON(&raw); err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }
  candidate, err := services.DecodePlanCandidate(raw)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  version, activities, err := ih.ingestionService.IngestForTrip(c.Request.Context(), tripID, userID, candidate)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  flushSSE(c.Request.Context(), ih.emitter)
  RespondOK(c, gin.H{"itinerary": version, "activities": activities})
}

// POST /api/trips/:tripID/itinerary/generate
func (ih *ItineraryHandler) Generate(c *gin.Context) {
  tripID, userID, ok := ih.requireMember(c)
  if !ok {
    return
  }
  var req services.GenerateRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }
  version, activities, err := ih.plannerService.GeneratePlan(c.Request.Context(), tripID, userID, req)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  flushSSE(c.Request.Context(), ih.emitter)
  RespondOK(c, gin.H{"itinerary": version, "activities": activities})
}

// POST /api/trips/:tripID/itinerary/counterfactuals
func (ih *ItineraryHandler) Counterfactuals(c *gin.Context) {
  tripID, _, ok := ih.requireMember(c)
  if !ok {
    return
  }
  var req services.GenerateRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }
  set, err := ih.plannerService.GenerateCounterfactuals(c.Request.Context(), tripID, req)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, set)
}

// POST /api/trips/:tripID/itinerary/apply-variant
func (ih *ItineraryHandler) ApplyVariant(c *gin.Context) {
  tripID, userID, ok := ih.requireMember(c)
  if !ok {
    return
  }
  var raw map[string]any
  if err := c.ShouldBindJSON(&raw); err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }
  candidate, err := services.DecodePlanCandidate(raw)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  version, activities, err := ih.plannerService.ApplyVariant(c.Request.Context(), tripID, userID, candidate)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  flushSSE(c.Request.Context(), ih.emitter)
  RespondOK(c, gin.H{"itinerary": version, "activities": activities})
}
