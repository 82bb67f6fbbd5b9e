package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/yungbote/tripflow-backend/internal/apperr"
  "github.com/yungbote/tripflow-backend/internal/repos"
  "github.com/yungbote/tripflow-backend/internal/requestdata"
)

type UserHandler struct {
  userRepo repos.UserRepo
}

func NewUserHandler(userRepo repos.UserRepo) *UserHandler {
  return &UserHandler{userRepo: userRepo}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    RespondError(c, http.StatusForbidden, "forbidden", apperr.ErrForbidden)
    return
  }
  users, err := uh.userRepo.GetByIDs(c.Request.Context(), nil, []uuid.UUID{rd.UserID})
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  if len(users) == 0 {
    RespondError(c, http.StatusNotFound, "not_found", apperr.ErrNotFound)
    return
  }
  RespondOK(c, users[0])
}
