package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/yungbote/tripflow-backend/internal/services"
)

type ActivityHandler struct {
  collabService services.CollabService
  emitter       services.SSEEmitter
}

func NewActivityHandler(collabService services.CollabService, emitter services.SSEEmitter) *ActivityHandler {
  return &ActivityHandler{collabService: collabService, emitter: emitter}
}

// POST /api/activities/:activityID/vote
// Voting the same direction twice clears the vote; voting the opposite
// direction replaces it.
func (ah *ActivityHandler) Vote(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  activityID, ok := pathUUID(c, "activityID")
  if !ok {
    return
  }
  var req struct {
    Vote string `json:"vote"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }
  tally, err := ah.collabService.CastVote(c.Request.Context(), activityID, userID, req.Vote)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  flushSSE(c.Request.Context(), ah.emitter)
  RespondOK(c, tally)
}

// POST /api/activities/:activityID/status
func (ah *ActivityHandler) SetStatus(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  activityID, ok := pathUUID(c, "activityID")
  if !ok {
    return
  }
  var req struct {
    Status string `json:"status"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }
  activity, err := ah.collabService.SetStatus(c.Request.Context(), activityID, userID, req.Status)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  flushSSE(c.Request.Context(), ah.emitter)
  RespondOK(c, activity)
}

// PATCH /api/activities/:activityID
func (ah *ActivityHandler) Edit(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  activityID, ok := pathUUID(c, "activityID")
  if !ok {
    return
  }
  var req struct {
    Name         *string  `json:"name"`
    Description  *string  `json:"description"`
    LocationName *string  `json:"location_name"`
    Cost         *float64 `json:"cost"`
    Notes        *string  `json:"notes"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }
  activity, err := ah.collabService.EditFields(c.Request.Context(), activityID, userID, services.ActivityPatch{
    Name:         req.Name,
    Description:  req.Description,
    LocationName: req.LocationName,
    Cost:         req.Cost,
    Notes:        req.Notes,
  })
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  flushSSE(c.Request.Context(), ah.emitter)
  RespondOK(c, activity)
}
