package handlers

import (
  "net/http"
  "strconv"

  "github.com/gin-gonic/gin"

  "github.com/yungbote/tripflow-backend/internal/services"
)

type MessageHandler struct {
  tripService    services.TripService
  messageService services.MessageService
  emitter        services.SSEEmitter
}

func NewMessageHandler(
  tripService services.TripService,
  messageService services.MessageService,
  emitter services.SSEEmitter,
) *MessageHandler {
  return &MessageHandler{
    tripService:    tripService,
    messageService: messageService,
    emitter:        emitter,
  }
}

// POST /api/trips/:tripID/messages
func (mh *MessageHandler) Send(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  tripID, ok := pathUUID(c, "tripID")
  if !ok {
    return
  }
  if _, err := mh.tripService.RequireMember(c.Request.Context(), tripID, userID); err != nil {
    RespondServiceError(c, err)
    return
  }
  var req struct {
    Content     string `json:"content"`
    MessageType string `json:"message_type"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }
  msg, err := mh.messageService.Send(c.Request.Context(), tripID, userID, req.Content, req.MessageType)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  flushSSE(c.Request.Context(), mh.emitter)
  RespondOK(c, msg)
}

// GET /api/trips/:tripID/messages
func (mh *MessageHandler) List(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  tripID, ok := pathUUID(c, "tripID")
  if !ok {
    return
  }
  if _, err := mh.tripService.RequireMember(c.Request.Context(), tripID, userID); err != nil {
    RespondServiceError(c, err)
    return
  }
  limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
  messages, err := mh.messageService.List(c.Request.Context(), tripID, limit)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"messages": messages})
}
