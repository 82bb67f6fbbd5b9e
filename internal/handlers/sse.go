package handlers

import (
  "github.com/gin-gonic/gin"

  "github.com/yungbote/tripflow-backend/internal/services"
  "github.com/yungbote/tripflow-backend/internal/sse"
)

type SSEHandler struct {
  hub         *sse.SSEHub
  tripService services.TripService
}

func NewSSEHandler(hub *sse.SSEHub, tripService services.TripService) *SSEHandler {
  return &SSEHandler{hub: hub, tripService: tripService}
}

// GET /api/trips/:tripID/events
// Long-lived EventSource stream of everything that happens on a trip.
func (sh *SSEHandler) Stream(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  tripID, ok := pathUUID(c, "tripID")
  if !ok {
    return
  }
  if _, err := sh.tripService.RequireMember(c.Request.Context(), tripID, userID); err != nil {
    RespondServiceError(c, err)
    return
  }

  client := sh.hub.NewSSEClient(userID)
  sh.hub.AddChannel(client, sse.TripChannel(tripID))
  defer sh.hub.CloseClient(client)

  sh.hub.ServeHTTP(c.Writer, c.Request, client)
}
