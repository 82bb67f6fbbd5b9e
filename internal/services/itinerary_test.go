package services

import (
  "context"
  "testing"
  "time"

  "gorm.io/gorm"

  "github.com/yungbote/tripflow-backend/internal/apperr"
  "github.com/yungbote/tripflow-backend/internal/repos"
  "github.com/yungbote/tripflow-backend/internal/testutil"
  "github.com/yungbote/tripflow-backend/internal/types"
)

func newItineraryService(t *testing.T, tx *gorm.DB) ItineraryService {
  t.Helper()
  log := testutil.Logger(t)
  return NewItineraryService(
    tx,
    log,
    repos.NewTripRepo(tx, log),
    repos.NewItineraryRepo(tx, log),
    repos.NewActivityRepo(tx, log),
  )
}

func draftsNamed(names ...string) []ActivityDraft {
  start := time.Date(2026, 10, 2, 10, 0, 0, 0, time.UTC)
  out := make([]ActivityDraft, 0, len(names))
  for i, name := range names {
    s := start.Add(time.Duration(i) * 3 * time.Hour)
    out = append(out, ActivityDraft{
      Name:      name,
      Category:  types.CategoryAttraction,
      StartTime: s,
      EndTime:   s.Add(2 * time.Hour),
      Cost:      20,
      Status:    types.ActivityStatusPending,
    })
  }
  return out
}

func TestGetOrCreateActiveCreatesFirstVersion(t *testing.T) {
  db := testutil.DB(t)
  tx := testutil.Tx(t, db)
  svc := newItineraryService(t, tx)
  ctx := context.Background()

  user := testutil.SeedUser(t, tx, "organizer@example.com")
  trip := testutil.SeedTrip(t, tx, user.ID)

  v, err := svc.GetOrCreateActive(ctx, tx, trip.ID, user.ID)
  if err != nil {
    t.Fatalf("GetOrCreateActive: %v", err)
  }
  if v.Version != 1 {
    t.Fatalf("first version: want=1 got=%d", v.Version)
  }

  var reloaded types.Trip
  if err := tx.First(&reloaded, "id = ?", trip.ID).Error; err != nil {
    t.Fatalf("reload trip: %v", err)
  }
  if reloaded.ActiveItineraryID == nil || *reloaded.ActiveItineraryID != v.ID {
    t.Fatalf("trip pointer should reference the created version")
  }

  again, err := svc.GetOrCreateActive(ctx, tx, trip.ID, user.ID)
  if err != nil {
    t.Fatalf("GetOrCreateActive second call: %v", err)
  }
  if again.ID != v.ID {
    t.Fatalf("second call should return the same version: want=%s got=%s", v.ID, again.ID)
  }
}

func TestGetOrCreateActiveAdoptsLegacyRow(t *testing.T) {
  db := testutil.DB(t)
  tx := testutil.Tx(t, db)
  svc := newItineraryService(t, tx)
  ctx := context.Background()

  user := testutil.SeedUser(t, tx, "legacy@example.com")
  trip := testutil.SeedTrip(t, tx, user.ID)
  iv := testutil.SeedItinerary(t, tx, trip, user.ID, 3)

  // Simulate a row written before the pointer existed.
  if err := tx.Model(&types.Trip{}).Where("id = ?", trip.ID).
    Update("active_itinerary_id", nil).Error; err != nil {
    t.Fatalf("clear pointer: %v", err)
  }

  v, err := svc.GetOrCreateActive(ctx, tx, trip.ID, user.ID)
  if err != nil {
    t.Fatalf("GetOrCreateActive: %v", err)
  }
  if v.ID != iv.ID {
    t.Fatalf("should adopt highest-version row: want=%s got=%s", iv.ID, v.ID)
  }

  var reloaded types.Trip
  if err := tx.First(&reloaded, "id = ?", trip.ID).Error; err != nil {
    t.Fatalf("reload trip: %v", err)
  }
  if reloaded.ActiveItineraryID == nil || *reloaded.ActiveItineraryID != iv.ID {
    t.Fatalf("adoption should set the pointer")
  }
}

func TestReplaceActivitiesReplacesAtomically(t *testing.T) {
  db := testutil.DB(t)
  tx := testutil.Tx(t, db)
  svc := newItineraryService(t, tx)
  ctx := context.Background()

  user := testutil.SeedUser(t, tx, "replace@example.com")
  trip := testutil.SeedTrip(t, tx, user.ID)
  iv := testutil.SeedItinerary(t, tx, trip, user.ID, 1)
  testutil.SeedActivity(t, tx, iv.ID, "Old plan item", time.Now().Add(24*time.Hour))

  rows, err := svc.ReplaceActivities(ctx, tx, iv.ID, iv.Revision, draftsNamed("New A", "New B"))
  if err != nil {
    t.Fatalf("ReplaceActivities: %v", err)
  }
  if len(rows) != 2 {
    t.Fatalf("inserted rows: want=2 got=%d", len(rows))
  }

  var count int64
  if err := tx.Model(&types.Activity{}).Where("itinerary_id = ?", iv.ID).Count(&count).Error; err != nil {
    t.Fatalf("count activities: %v", err)
  }
  if count != 2 {
    t.Fatalf("old activities should be gone: want=2 got=%d", count)
  }

  var reloaded types.ItineraryVersion
  if err := tx.First(&reloaded, "id = ?", iv.ID).Error; err != nil {
    t.Fatalf("reload version: %v", err)
  }
  if reloaded.Revision != iv.Revision+1 {
    t.Fatalf("revision: want=%d got=%d", iv.Revision+1, reloaded.Revision)
  }
}

func TestReplaceActivitiesStaleRevisionConflicts(t *testing.T) {
  db := testutil.DB(t)
  tx := testutil.Tx(t, db)
  svc := newItineraryService(t, tx)
  ctx := context.Background()

  user := testutil.SeedUser(t, tx, "conflict@example.com")
  trip := testutil.SeedTrip(t, tx, user.ID)
  iv := testutil.SeedItinerary(t, tx, trip, user.ID, 1)
  old := testutil.SeedActivity(t, tx, iv.ID, "Survivor", time.Now().Add(24*time.Hour))

  _, err := svc.ReplaceActivities(ctx, tx, iv.ID, iv.Revision+5, draftsNamed("Loser"))
  if err == nil {
    t.Fatalf("stale revision should conflict")
  }
  if !apperr.IsConflict(err) {
    t.Fatalf("expected ConflictError, got %T: %v", err, err)
  }

  // The losing write must not have touched anything.
  var count int64
  if err := tx.Model(&types.Activity{}).Where("id = ?", old.ID).Count(&count).Error; err != nil {
    t.Fatalf("count: %v", err)
  }
  if count != 1 {
    t.Fatalf("conflicting replace must leave prior activities intact")
  }
}

func TestPromoteNewVersionSwingsPointer(t *testing.T) {
  db := testutil.DB(t)
  tx := testutil.Tx(t, db)
  svc := newItineraryService(t, tx)
  ctx := context.Background()

  user := testutil.SeedUser(t, tx, "promote@example.com")
  trip := testutil.SeedTrip(t, tx, user.ID)
  old := testutil.SeedItinerary(t, tx, trip, user.ID, 1)

  v2, err := svc.PromoteNewVersion(ctx, trip.ID, user.ID, types.VariantExperience)
  if err != nil {
    t.Fatalf("PromoteNewVersion: %v", err)
  }
  if v2.Version != 2 {
    t.Fatalf("next version: want=2 got=%d", v2.Version)
  }

  var reloaded types.Trip
  if err := tx.First(&reloaded, "id = ?", trip.ID).Error; err != nil {
    t.Fatalf("reload trip: %v", err)
  }
  if reloaded.ActiveItineraryID == nil || *reloaded.ActiveItineraryID != v2.ID {
    t.Fatalf("pointer should follow promotion")
  }

  history, err := svc.History(ctx, trip.ID)
  if err != nil {
    t.Fatalf("History: %v", err)
  }
  if len(history) != 2 {
    t.Fatalf("history length: want=2 got=%d", len(history))
  }
  if history[0].ID != v2.ID || history[1].ID != old.ID {
    t.Fatalf("history should be newest-first")
  }
}
