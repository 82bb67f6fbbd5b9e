package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/yungbote/tripflow-backend/internal/services"
)

type DisruptionHandler struct {
  tripService       services.TripService
  disruptionService services.DisruptionService
  emitter           services.SSEEmitter
}

func NewDisruptionHandler(
  tripService services.TripService,
  disruptionService services.DisruptionService,
  emitter services.SSEEmitter,
) *DisruptionHandler {
  return &DisruptionHandler{
    tripService:       tripService,
    disruptionService: disruptionService,
    emitter:           emitter,
  }
}

func (dh *DisruptionHandler) requireMember(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
  userID, ok := currentUserID(c)
  if !ok {
    return uuid.Nil, uuid.Nil, false
  }
  tripID, ok := pathUUID(c, "tripID")
  if !ok {
    return uuid.Nil, uuid.Nil, false
  }
  if _, err := dh.tripService.RequireMember(c.Request.Context(), tripID, userID); err != nil {
    RespondServiceError(c, err)
    return uuid.Nil, uuid.Nil, false
  }
  return tripID, userID, true
}

// POST /api/trips/:tripID/disruptions/detect
func (dh *DisruptionHandler) Detect(c *gin.Context) {
  tripID, _, ok := dh.requireMember(c)
  if !ok {
    return
  }
  report, err := dh.disruptionService.Detect(c.Request.Context(), tripID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, report)
}

// POST /api/trips/:tripID/disruptions/propose-replan
func (dh *DisruptionHandler) ProposeReplan(c *gin.Context) {
  tripID, _, ok := dh.requireMember(c)
  if !ok {
    return
  }
  var disruption services.Disruption
  if err := c.ShouldBindJSON(&disruption); err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }
  candidate, err := dh.disruptionService.ProposeReplan(c.Request.Context(), tripID, disruption)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, candidate)
}

// POST /api/trips/:tripID/disruptions/apply-replan
func (dh *DisruptionHandler) ApplyReplan(c *gin.Context) {
  tripID, userID, ok := dh.requireMember(c)
  if !ok {
    return
  }
  var req struct {
    Disruption services.Disruption `json:"disruption"`
    Plan       map[string]any      `json:"plan"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }
  candidate, err := services.DecodeReplanCandidate(req.Plan)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  event, version, activities, err := dh.disruptionService.ApplyReplan(c.Request.Context(), tripID, userID, candidate, req.Disruption)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  flushSSE(c.Request.Context(), dh.emitter)
  RespondOK(c, gin.H{"event": event, "itinerary": version, "activities": activities})
}

// GET /api/trips/:tripID/disruptions
func (dh *DisruptionHandler) ListEvents(c *gin.Context) {
  tripID, _, ok := dh.requireMember(c)
  if !ok {
    return
  }
  events, err := dh.disruptionService.ListEvents(c.Request.Context(), tripID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"events": events})
}
