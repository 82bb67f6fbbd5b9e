package handlers

import (
  "net/http"
  "time"

  "github.com/gin-gonic/gin"

  "github.com/yungbote/tripflow-backend/internal/services"
  "github.com/yungbote/tripflow-backend/internal/types"
)

type TripHandler struct {
  tripService services.TripService
}

func NewTripHandler(tripService services.TripService) *TripHandler {
  return &TripHandler{tripService: tripService}
}

// POST /api/trips
func (th *TripHandler) Create(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  var req struct {
    Destination string    `json:"destination"`
    Country     string    `json:"country"`
    StartDate   time.Time `json:"start_date"`
    EndDate     time.Time `json:"end_date"`
    BudgetTotal float64   `json:"budget_total"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }
  trip := &types.Trip{
    Destination: req.Destination,
    Country:     req.Country,
    StartDate:   req.StartDate,
    EndDate:     req.EndDate,
    BudgetTotal: req.BudgetTotal,
  }
  created, err := th.tripService.Create(c.Request.Context(), userID, trip)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, created)
}

// GET /api/trips
func (th *TripHandler) List(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  trips, err := th.tripService.ListForUser(c.Request.Context(), userID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"trips": trips})
}

// GET /api/trips/:tripID
func (th *TripHandler) Get(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  tripID, ok := pathUUID(c, "tripID")
  if !ok {
    return
  }
  trip, err := th.tripService.Get(c.Request.Context(), tripID, userID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, trip)
}

// PATCH /api/trips/:tripID
func (th *TripHandler) Update(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  tripID, ok := pathUUID(c, "tripID")
  if !ok {
    return
  }
  var req struct {
    Destination *string    `json:"destination"`
    Country     *string    `json:"country"`
    StartDate   *time.Time `json:"start_date"`
    EndDate     *time.Time `json:"end_date"`
    BudgetTotal *float64   `json:"budget_total"`
    Status      *string    `json:"status"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }
  trip, err := th.tripService.Update(c.Request.Context(), tripID, userID, services.TripUpdate{
    Destination: req.Destination,
    Country:     req.Country,
    StartDate:   req.StartDate,
    EndDate:     req.EndDate,
    BudgetTotal: req.BudgetTotal,
    Status:      req.Status,
  })
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, trip)
}

// POST /api/trips/:tripID/members
func (th *TripHandler) AddMember(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  tripID, ok := pathUUID(c, "tripID")
  if !ok {
    return
  }
  var req struct {
    Email string `json:"email"`
    Role  string `json:"role"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }
  member, err := th.tripService.AddMember(c.Request.Context(), tripID, userID, req.Email, req.Role)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, member)
}

// GET /api/trips/:tripID/members
func (th *TripHandler) Members(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  tripID, ok := pathUUID(c, "tripID")
  if !ok {
    return
  }
  members, err := th.tripService.Members(c.Request.Context(), tripID, userID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"members": members})
}
