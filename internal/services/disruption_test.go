package services

import (
  "context"
  "testing"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/yungbote/tripflow-backend/internal/apperr"
  "github.com/yungbote/tripflow-backend/internal/repos"
  "github.com/yungbote/tripflow-backend/internal/testutil"
  "github.com/yungbote/tripflow-backend/internal/types"
)

// fakeItineraryService serves one version and its activities from memory.
type fakeItineraryService struct {
  version    *types.ItineraryVersion
  activities []*types.Activity
}

func (f *fakeItineraryService) GetOrCreateActive(ctx context.Context, tx *gorm.DB, tripID, userID uuid.UUID) (*types.ItineraryVersion, error) {
  return f.version, nil
}

func (f *fakeItineraryService) ReplaceActivities(ctx context.Context, tx *gorm.DB, itineraryID uuid.UUID, expectedRevision int64, drafts []ActivityDraft) ([]*types.Activity, error) {
  return nil, nil
}

func (f *fakeItineraryService) UpdateMetadata(ctx context.Context, tx *gorm.DB, itineraryID uuid.UUID, meta MetadataUpdate) error {
  return nil
}

func (f *fakeItineraryService) PromoteNewVersion(ctx context.Context, tripID, userID uuid.UUID, variantID string) (*types.ItineraryVersion, error) {
  return f.version, nil
}

func (f *fakeItineraryService) Active(ctx context.Context, tripID uuid.UUID) (*types.ItineraryVersion, error) {
  return f.version, nil
}

func (f *fakeItineraryService) ActiveWithActivities(ctx context.Context, tripID uuid.UUID) (*types.ItineraryVersion, []*types.Activity, error) {
  return f.version, f.activities, nil
}

func (f *fakeItineraryService) History(ctx context.Context, tripID uuid.UUID) ([]*types.ItineraryVersion, error) {
  if f.version == nil {
    return nil, nil
  }
  return []*types.ItineraryVersion{f.version}, nil
}

// fakeNotifier counts emitted trip events.
type fakeNotifier struct {
  replaced int
  replans  int
  votes    int
  edits    int
  messages int
}

func (f *fakeNotifier) ItineraryReplaced(ctx context.Context, tripID uuid.UUID, itinerary *types.ItineraryVersion, activityCount int) {
  f.replaced++
}
func (f *fakeNotifier) ActivityUpdated(ctx context.Context, tripID uuid.UUID, activity *types.Activity) {
  f.edits++
}
func (f *fakeNotifier) VoteChanged(ctx context.Context, tripID uuid.UUID, activityID uuid.UUID, tally *VoteTally) {
  f.votes++
}
func (f *fakeNotifier) MessageCreated(ctx context.Context, tripID uuid.UUID, message *types.Message) {
  f.messages++
}
func (f *fakeNotifier) ReplanApplied(ctx context.Context, tripID uuid.UUID, event *types.DisruptionEvent) {
  f.replans++
}

func someActivities(itineraryID uuid.UUID) []*types.Activity {
  start := time.Date(2026, 10, 2, 10, 0, 0, 0, time.UTC)
  return []*types.Activity{
    {
      ID:          uuid.New(),
      ItineraryID: itineraryID,
      Name:        "Belem Tower",
      Category:    types.CategoryAttraction,
      StartTime:   start,
      EndTime:     start.Add(2 * time.Hour),
      Cost:        15,
      Status:      types.ActivityStatusPending,
    },
  }
}

func TestDetectWithoutActivitiesSkipsPlanner(t *testing.T) {
  trip := fakeTrip()
  version := &types.ItineraryVersion{ID: uuid.New(), TripID: trip.ID, Version: 1, Revision: 1}
  itinerary := &fakeItineraryService{version: version}
  client := &fakePlannerClient{
    detectPayload: map[string]any{
      "disruptions": []any{
        map[string]any{"type": "weather", "severity": "high", "title": "Storm", "confidence": 0.9},
      },
      "needs_replan": true,
    },
  }
  svc := NewDisruptionService(nil, testLogger(t), &fakeTripRepo{trip: trip}, nil, nil, client, itinerary, &fakeNotifier{})

  report, err := svc.Detect(context.Background(), trip.ID)
  if err != nil {
    t.Fatalf("Detect: %v", err)
  }
  if len(report.Disruptions) != 0 || report.NeedsReplan {
    t.Fatalf("empty itinerary should produce an empty report, got %+v", report)
  }
}

func TestDetectDecodesPlannerReport(t *testing.T) {
  trip := fakeTrip()
  version := &types.ItineraryVersion{ID: uuid.New(), TripID: trip.ID, Version: 1, Revision: 1}
  itinerary := &fakeItineraryService{version: version, activities: someActivities(version.ID)}
  client := &fakePlannerClient{
    detectPayload: map[string]any{
      "disruptions": []any{
        map[string]any{"type": "weather", "severity": "high", "title": "Storm", "confidence": 0.9},
      },
      "overall_risk": "high",
      "needs_replan": true,
    },
  }
  svc := NewDisruptionService(nil, testLogger(t), &fakeTripRepo{trip: trip}, nil, nil, client, itinerary, &fakeNotifier{})

  report, err := svc.Detect(context.Background(), trip.ID)
  if err != nil {
    t.Fatalf("Detect: %v", err)
  }
  if !report.NeedsReplan || len(report.Disruptions) != 1 {
    t.Fatalf("unexpected report: %+v", report)
  }
}

func TestProposeReplanValidatesDisruption(t *testing.T) {
  trip := fakeTrip()
  svc := NewDisruptionService(nil, testLogger(t), &fakeTripRepo{trip: trip}, nil, nil, &fakePlannerClient{}, &fakeItineraryService{}, &fakeNotifier{})

  _, err := svc.ProposeReplan(context.Background(), trip.ID, Disruption{Type: "", Title: "x", Severity: "high"})
  if err == nil || !apperr.IsValidation(err) {
    t.Fatalf("missing type should be rejected, got %v", err)
  }
  _, err = svc.ProposeReplan(context.Background(), trip.ID, Disruption{Type: "weather", Title: "x", Severity: "cataclysmic"})
  if err == nil || !apperr.IsValidation(err) {
    t.Fatalf("unknown severity should be rejected, got %v", err)
  }
}

func TestApplyReplanRejectsBeforeAnyWrite(t *testing.T) {
  trip := fakeTrip()
  notifier := &fakeNotifier{}
  svc := NewDisruptionService(nil, testLogger(t), &fakeTripRepo{trip: trip}, nil, nil, &fakePlannerClient{}, &fakeItineraryService{}, notifier)

  disruption := Disruption{Type: "weather", Title: "Storm", Severity: types.SeverityHigh, Confidence: 0.9}

  // Empty candidate.
  _, _, _, err := svc.ApplyReplan(context.Background(), trip.ID, trip.OrganizerID, &PlanCandidate{TotalCost: 1}, disruption)
  if err == nil || !apperr.IsValidation(err) {
    t.Fatalf("empty candidate should be rejected, got %v", err)
  }

  // Missing changes summary.
  pc, err := DecodePlanCandidate(validCandidatePayload())
  if err != nil {
    t.Fatalf("DecodePlanCandidate: %v", err)
  }
  _, _, _, err = svc.ApplyReplan(context.Background(), trip.ID, trip.OrganizerID, pc, disruption)
  if err == nil || !apperr.IsValidation(err) {
    t.Fatalf("candidate without changes_summary should be rejected, got %v", err)
  }

  // Bad severity.
  pc.ChangesSummary = "Moved everything indoors"
  pc.ChangesCount = 1
  _, _, _, err = svc.ApplyReplan(context.Background(), trip.ID, trip.OrganizerID, pc, Disruption{Type: "weather", Title: "Storm", Severity: "nope"})
  if err == nil || !apperr.IsValidation(err) {
    t.Fatalf("bad severity should be rejected, got %v", err)
  }

  if notifier.replans != 0 {
    t.Fatalf("no replan event should be broadcast on rejection")
  }
}

func TestApplyReplanWritesOneAuditRowWithReplace(t *testing.T) {
  db := testutil.DB(t)
  tx := testutil.Tx(t, db)
  log := testutil.Logger(t)
  notifier := &fakeNotifier{}
  svc := NewDisruptionService(
    tx,
    log,
    repos.NewTripRepo(tx, log),
    repos.NewDisruptionEventRepo(tx, log),
    repos.NewActivityRepo(tx, log),
    &fakePlannerClient{},
    newItineraryService(t, tx),
    notifier,
  )
  ctx := context.Background()

  user := testutil.SeedUser(t, tx, "disrupted@example.com")
  trip := testutil.SeedTrip(t, tx, user.ID)
  iv := testutil.SeedItinerary(t, tx, trip, user.ID, 1)
  testutil.SeedActivity(t, tx, iv.ID, "Outdoor picnic", time.Now().Add(24*time.Hour))

  payload := validCandidatePayload()
  payload["changes_summary"] = "Moved the picnic indoors"
  payload["changes_count"] = 1.0
  candidate, err := DecodeReplanCandidate(payload)
  if err != nil {
    t.Fatalf("DecodeReplanCandidate: %v", err)
  }
  disruption := Disruption{Type: "weather", Title: "Storm front", Severity: types.SeverityHigh, Confidence: 0.9}

  event, version, activities, err := svc.ApplyReplan(ctx, trip.ID, user.ID, candidate, disruption)
  if err != nil {
    t.Fatalf("ApplyReplan: %v", err)
  }
  if !event.ReplanApplied || !event.Resolved {
    t.Fatalf("event flags: %+v", event)
  }
  if event.EventType != "weather" {
    t.Fatalf("event type: want=weather got=%q", event.EventType)
  }
  if len(activities) != len(candidate.Activities) {
    t.Fatalf("activities: want=%d got=%d", len(candidate.Activities), len(activities))
  }
  if version.Revision != iv.Revision+1 {
    t.Fatalf("revision: want=%d got=%d", iv.Revision+1, version.Revision)
  }

  var eventRows int64
  if err := tx.Model(&types.DisruptionEvent{}).Where("trip_id = ?", trip.ID).Count(&eventRows).Error; err != nil {
    t.Fatalf("count events: %v", err)
  }
  if eventRows != 1 {
    t.Fatalf("audit rows: want=1 got=%d", eventRows)
  }

  var stored types.ItineraryVersion
  if err := tx.First(&stored, "id = ?", version.ID).Error; err != nil {
    t.Fatalf("load version: %v", err)
  }
  if stored.VariantID != types.VariantReplanned {
    t.Fatalf("variant: want=%s got=%q", types.VariantReplanned, stored.VariantID)
  }

  var remaining int64
  if err := tx.Model(&types.Activity{}).Where("itinerary_id = ? AND name = ?", version.ID, "Outdoor picnic").Count(&remaining).Error; err != nil {
    t.Fatalf("count old activities: %v", err)
  }
  if remaining != 0 {
    t.Fatalf("old activity should have been replaced")
  }
  if notifier.replans != 1 {
    t.Fatalf("replan broadcasts: want=1 got=%d", notifier.replans)
  }
}
