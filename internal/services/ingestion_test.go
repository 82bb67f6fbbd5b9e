package services

import (
  "context"
  "encoding/json"
  "testing"

  "gorm.io/gorm"

  "github.com/yungbote/tripflow-backend/internal/apperr"
  "github.com/yungbote/tripflow-backend/internal/repos"
  "github.com/yungbote/tripflow-backend/internal/testutil"
  "github.com/yungbote/tripflow-backend/internal/types"
)

func newIngestionService(t *testing.T, tx *gorm.DB, notifier TripNotifier) IngestionService {
  t.Helper()
  log := testutil.Logger(t)
  return NewIngestionService(
    tx,
    log,
    repos.NewItineraryRepo(tx, log),
    newItineraryService(t, tx),
    notifier,
  )
}

func mustDecodeCandidate(t *testing.T, payload map[string]any) *PlanCandidate {
  t.Helper()
  candidate, err := DecodePlanCandidate(payload)
  if err != nil {
    t.Fatalf("DecodePlanCandidate: %v", err)
  }
  return candidate
}

func TestIngestForTripRejectsInvalidCandidateBeforeAnyWrite(t *testing.T) {
  notifier := &fakeNotifier{}
  // nil db is safe here: validation fails before anything touches it.
  svc := NewIngestionService(nil, testLogger(t), nil, nil, notifier)

  _, _, err := svc.IngestForTrip(context.Background(), fakeTrip().ID, fakeTrip().OrganizerID, &PlanCandidate{})
  if err == nil || !apperr.IsValidation(err) {
    t.Fatalf("empty candidate should fail validation, got %v", err)
  }
  if notifier.replaced != 0 {
    t.Fatalf("rejected ingest must not broadcast, got %d events", notifier.replaced)
  }
}

func TestIngestForTripCreatesVersionAndActivities(t *testing.T) {
  db := testutil.DB(t)
  tx := testutil.Tx(t, db)
  notifier := &fakeNotifier{}
  svc := newIngestionService(t, tx, notifier)
  ctx := context.Background()

  user := testutil.SeedUser(t, tx, "planner@example.com")
  trip := testutil.SeedTrip(t, tx, user.ID)

  candidate := mustDecodeCandidate(t, validCandidatePayload())
  version, rows, err := svc.IngestForTrip(ctx, trip.ID, user.ID, candidate)
  if err != nil {
    t.Fatalf("IngestForTrip: %v", err)
  }
  if version.Version != 1 {
    t.Fatalf("version: want=1 got=%d", version.Version)
  }
  if len(rows) != len(candidate.Activities) {
    t.Fatalf("activities: want=%d got=%d", len(candidate.Activities), len(rows))
  }

  var stored types.ItineraryVersion
  if err := tx.First(&stored, "id = ?", version.ID).Error; err != nil {
    t.Fatalf("load version: %v", err)
  }
  if stored.VariantID != candidate.VariantID {
    t.Fatalf("variant: want=%q got=%q", candidate.VariantID, stored.VariantID)
  }
  var breakdown map[string]float64
  if err := json.Unmarshal(stored.CostBreakdown, &breakdown); err != nil {
    t.Fatalf("cost breakdown: %v", err)
  }
  if breakdown["activity_sum"] == 0 {
    t.Fatalf("cost breakdown should carry activity_sum, got %v", breakdown)
  }
  if notifier.replaced != 1 {
    t.Fatalf("broadcasts: want=1 got=%d", notifier.replaced)
  }
}

func TestIngestForTripReplacesPriorActivities(t *testing.T) {
  db := testutil.DB(t)
  tx := testutil.Tx(t, db)
  svc := newIngestionService(t, tx, &fakeNotifier{})
  ctx := context.Background()

  user := testutil.SeedUser(t, tx, "replanner@example.com")
  trip := testutil.SeedTrip(t, tx, user.ID)

  first := mustDecodeCandidate(t, validCandidatePayload())
  version, _, err := svc.IngestForTrip(ctx, trip.ID, user.ID, first)
  if err != nil {
    t.Fatalf("first ingest: %v", err)
  }

  second := validCandidatePayload()
  second["activities"] = []any{
    map[string]any{
      "name":       "LX Factory morning",
      "category":   types.CategoryAttraction,
      "start_time": "2026-10-03T09:00:00Z",
      "end_time":   "2026-10-03T11:00:00Z",
      "cost":       15.0,
      "status":     types.ActivityStatusPending,
    },
  }
  _, rows, err := svc.IngestForTrip(ctx, trip.ID, user.ID, mustDecodeCandidate(t, second))
  if err != nil {
    t.Fatalf("second ingest: %v", err)
  }
  if len(rows) != 1 {
    t.Fatalf("second ingest rows: want=1 got=%d", len(rows))
  }

  var count int64
  if err := tx.Model(&types.Activity{}).Where("itinerary_id = ?", version.ID).Count(&count).Error; err != nil {
    t.Fatalf("count activities: %v", err)
  }
  if count != 1 {
    t.Fatalf("old activities should be gone: count=%d", count)
  }

  var stored types.ItineraryVersion
  if err := tx.First(&stored, "id = ?", version.ID).Error; err != nil {
    t.Fatalf("load version: %v", err)
  }
  if stored.Revision != version.Revision+1 {
    t.Fatalf("revision: want=%d got=%d", version.Revision+1, stored.Revision)
  }
}

func TestIngestStaleRevisionConflicts(t *testing.T) {
  db := testutil.DB(t)
  tx := testutil.Tx(t, db)
  notifier := &fakeNotifier{}
  svc := newIngestionService(t, tx, notifier)
  ctx := context.Background()

  user := testutil.SeedUser(t, tx, "stale@example.com")
  trip := testutil.SeedTrip(t, tx, user.ID)
  iv := testutil.SeedItinerary(t, tx, trip, user.ID, 1)

  candidate := mustDecodeCandidate(t, validCandidatePayload())
  if _, err := svc.Ingest(ctx, iv.ID, iv.Revision+7, candidate); !apperr.IsConflict(err) {
    t.Fatalf("stale revision: want conflict, got %v", err)
  }

  var count int64
  if err := tx.Model(&types.Activity{}).Where("itinerary_id = ?", iv.ID).Count(&count).Error; err != nil {
    t.Fatalf("count activities: %v", err)
  }
  if count != 0 {
    t.Fatalf("conflicting ingest must write nothing: count=%d", count)
  }
  if notifier.replaced != 0 {
    t.Fatalf("conflicting ingest must not broadcast, got %d", notifier.replaced)
  }
}
