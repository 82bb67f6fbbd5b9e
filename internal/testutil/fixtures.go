package testutil

import (
  "testing"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/yungbote/tripflow-backend/internal/types"
)

func SeedUser(tb testing.TB, db *gorm.DB, email string) *types.User {
  tb.Helper()
  user := &types.User{
    ID:        uuid.New(),
    Email:     email,
    Password:  "not-a-real-hash",
    FirstName: "Test",
    LastName:  "User",
  }
  if err := db.Create(user).Error; err != nil {
    tb.Fatalf("seed user: %v", err)
  }
  return user
}

// SeedTrip creates a trip with the organizer membership row, mirroring what
// TripService.Create does.
func SeedTrip(tb testing.TB, db *gorm.DB, organizerID uuid.UUID) *types.Trip {
  tb.Helper()
  start := time.Now().AddDate(0, 1, 0).Truncate(time.Hour)
  trip := &types.Trip{
    ID:          uuid.New(),
    OrganizerID: organizerID,
    Destination: "Lisbon",
    Country:     "Portugal",
    StartDate:   start,
    EndDate:     start.AddDate(0, 0, 4),
    BudgetTotal: 2500,
    Status:      types.TripStatusPlanning,
  }
  if err := db.Create(trip).Error; err != nil {
    tb.Fatalf("seed trip: %v", err)
  }
  member := &types.TripMember{
    ID:     uuid.New(),
    TripID: trip.ID,
    UserID: organizerID,
    Role:   types.TripRoleOrganizer,
  }
  if err := db.Create(member).Error; err != nil {
    tb.Fatalf("seed trip member: %v", err)
  }
  return trip
}

func SeedItinerary(tb testing.TB, db *gorm.DB, trip *types.Trip, createdBy uuid.UUID, version int) *types.ItineraryVersion {
  tb.Helper()
  iv := &types.ItineraryVersion{
    ID:            uuid.New(),
    TripID:        trip.ID,
    CreatedBy:     createdBy,
    Version:       version,
    Revision:      1,
    VariantID:     types.VariantBalanced,
    CostBreakdown: datatypes.JSON([]byte(`{}`)),
  }
  if err := db.Create(iv).Error; err != nil {
    tb.Fatalf("seed itinerary version: %v", err)
  }
  if err := db.Model(&types.Trip{}).Where("id = ?", trip.ID).
    Update("active_itinerary_id", iv.ID).Error; err != nil {
    tb.Fatalf("point trip at itinerary: %v", err)
  }
  return iv
}

func SeedActivity(tb testing.TB, db *gorm.DB, itineraryID uuid.UUID, name string, start time.Time) *types.Activity {
  tb.Helper()
  activity := &types.Activity{
    ID:          uuid.New(),
    ItineraryID: itineraryID,
    Name:        name,
    Category:    types.CategoryAttraction,
    StartTime:   start,
    EndTime:     start.Add(2 * time.Hour),
    Cost:        40,
    Status:      types.ActivityStatusPending,
  }
  if err := db.Create(activity).Error; err != nil {
    tb.Fatalf("seed activity: %v", err)
  }
  return activity
}
