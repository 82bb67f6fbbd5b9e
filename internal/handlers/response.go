package handlers

import (
  "context"
  "errors"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/yungbote/tripflow-backend/internal/apperr"
  "github.com/yungbote/tripflow-backend/internal/requestdata"
  "github.com/yungbote/tripflow-backend/internal/services"
  "github.com/yungbote/tripflow-backend/internal/ssedata"
)

type APIError struct {
  Message string `json:"message"`
  Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
  Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
  msg := "unknown error"
  if err != nil {
    msg = err.Error()
  }
  c.JSON(status, ErrorEnvelope{
    Error: APIError{
      Message: msg,
      Code:    code,
    },
  })
}

func RespondOK(c *gin.Context, payload any) {
  c.JSON(http.StatusOK, payload)
}

// RespondServiceError translates the service error taxonomy into HTTP.
func RespondServiceError(c *gin.Context, err error) {
  switch {
  case apperr.IsValidation(err):
    RespondError(c, http.StatusBadRequest, "validation", err)
  case apperr.IsConflict(err):
    RespondError(c, http.StatusConflict, "conflict", err)
  case errors.Is(err, apperr.ErrNotFound):
    RespondError(c, http.StatusNotFound, "not_found", err)
  case errors.Is(err, apperr.ErrForbidden):
    RespondError(c, http.StatusForbidden, "forbidden", err)
  default:
    if ext, ok := apperr.AsExternal(err); ok {
      switch ext.Kind {
      case apperr.ExternalRateLimited, apperr.ExternalQuotaExhausted:
        RespondError(c, http.StatusTooManyRequests, string(ext.Kind), err)
      default:
        RespondError(c, http.StatusBadGateway, string(ext.Kind), err)
      }
      return
    }
    RespondError(c, http.StatusInternalServerError, "internal", err)
  }
}

// currentUserID reads the authenticated user from the request context. The
// auth middleware guarantees it is set on protected routes.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    RespondError(c, http.StatusForbidden, "forbidden", apperr.ErrForbidden)
    return uuid.Nil, false
  }
  return rd.UserID, true
}

// pathUUID parses a uuid path parameter, responding 400 on garbage.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
  id, err := uuid.Parse(c.Param(name))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return uuid.Nil, false
  }
  return id, true
}

// flushSSE drains messages accumulated during the request transaction. Called
// by handlers only after the service call returned, so nothing is broadcast
// for rolled-back writes.
func flushSSE(ctx context.Context, emitter services.SSEEmitter) {
  ssd := ssedata.GetSSEData(ctx)
  if ssd == nil {
    return
  }
  for _, msg := range ssd.Messages {
    emitter.Emit(ctx, msg)
  }
  ssd.Messages = ssd.Messages[:0]
}
