package services

import (
  "context"
  "errors"
  "testing"
  "time"

  "gorm.io/gorm"

  "github.com/yungbote/tripflow-backend/internal/apperr"
  "github.com/yungbote/tripflow-backend/internal/repos"
  "github.com/yungbote/tripflow-backend/internal/testutil"
  "github.com/yungbote/tripflow-backend/internal/types"
)

func newCollabService(t *testing.T, tx *gorm.DB, notifier TripNotifier) CollabService {
  t.Helper()
  log := testutil.Logger(t)
  return NewCollabService(
    tx,
    log,
    repos.NewActivityRepo(tx, log),
    repos.NewActivityVoteRepo(tx, log),
    repos.NewItineraryRepo(tx, log),
    repos.NewTripMemberRepo(tx, log),
    notifier,
  )
}

func seedCollabFixture(t *testing.T, tx *gorm.DB, email string) (*types.Trip, *types.Activity, *types.User) {
  t.Helper()
  user := testutil.SeedUser(t, tx, email)
  trip := testutil.SeedTrip(t, tx, user.ID)
  iv := testutil.SeedItinerary(t, tx, trip, user.ID, 1)
  activity := testutil.SeedActivity(t, tx, iv.ID, "Tram 28 ride", time.Now().Add(48*time.Hour))
  return trip, activity, user
}

func TestCastVoteToggleLaw(t *testing.T) {
  db := testutil.DB(t)
  tx := testutil.Tx(t, db)
  notifier := &fakeNotifier{}
  svc := newCollabService(t, tx, notifier)
  ctx := context.Background()

  _, activity, user := seedCollabFixture(t, tx, "voter@example.com")

  tally, err := svc.CastVote(ctx, activity.ID, user.ID, types.VoteUp)
  if err != nil {
    t.Fatalf("CastVote up: %v", err)
  }
  if tally.Up != 1 || tally.Down != 0 || tally.MyVote != types.VoteUp {
    t.Fatalf("after up: %+v", tally)
  }

  // Same vote again toggles it off.
  tally, err = svc.CastVote(ctx, activity.ID, user.ID, types.VoteUp)
  if err != nil {
    t.Fatalf("CastVote toggle off: %v", err)
  }
  if tally.Up != 0 || tally.MyVote != "" {
    t.Fatalf("after toggle off: %+v", tally)
  }

  // Up then down replaces in place, never double-counts.
  if _, err := svc.CastVote(ctx, activity.ID, user.ID, types.VoteUp); err != nil {
    t.Fatalf("CastVote up: %v", err)
  }
  tally, err = svc.CastVote(ctx, activity.ID, user.ID, types.VoteDown)
  if err != nil {
    t.Fatalf("CastVote down: %v", err)
  }
  if tally.Up != 0 || tally.Down != 1 || tally.MyVote != types.VoteDown {
    t.Fatalf("after flip: %+v", tally)
  }
  if tally.Score() != -1 {
    t.Fatalf("score: want=-1 got=%d", tally.Score())
  }

  var rows int64
  if err := tx.Model(&types.ActivityVote{}).Where("activity_id = ?", activity.ID).Count(&rows).Error; err != nil {
    t.Fatalf("count votes: %v", err)
  }
  if rows != 1 {
    t.Fatalf("at most one vote row per user: got=%d", rows)
  }

  if notifier.votes != 4 {
    t.Fatalf("each cast should broadcast once: want=4 got=%d", notifier.votes)
  }
}

func TestCastVoteRejectsUnknownValue(t *testing.T) {
  db := testutil.DB(t)
  tx := testutil.Tx(t, db)
  svc := newCollabService(t, tx, &fakeNotifier{})

  _, activity, user := seedCollabFixture(t, tx, "badvote@example.com")
  _, err := svc.CastVote(context.Background(), activity.ID, user.ID, "meh")
  if err == nil || !apperr.IsValidation(err) {
    t.Fatalf("unknown vote should be rejected, got %v", err)
  }
}

func TestSetStatusToggleLaw(t *testing.T) {
  db := testutil.DB(t)
  tx := testutil.Tx(t, db)
  svc := newCollabService(t, tx, &fakeNotifier{})
  ctx := context.Background()

  _, activity, user := seedCollabFixture(t, tx, "status@example.com")

  updated, err := svc.SetStatus(ctx, activity.ID, user.ID, types.ActivityStatusDone)
  if err != nil {
    t.Fatalf("SetStatus done: %v", err)
  }
  if updated.Status != types.ActivityStatusDone {
    t.Fatalf("status: want=done got=%q", updated.Status)
  }

  // Requesting the current status resets to pending.
  updated, err = svc.SetStatus(ctx, activity.ID, user.ID, types.ActivityStatusDone)
  if err != nil {
    t.Fatalf("SetStatus toggle: %v", err)
  }
  if updated.Status != types.ActivityStatusPending {
    t.Fatalf("repeat should reset to pending, got=%q", updated.Status)
  }

  updated, err = svc.SetStatus(ctx, activity.ID, user.ID, types.ActivityStatusSkipped)
  if err != nil {
    t.Fatalf("SetStatus skipped: %v", err)
  }
  if updated.Status != types.ActivityStatusSkipped {
    t.Fatalf("status: want=skipped got=%q", updated.Status)
  }
}

func TestEditFields(t *testing.T) {
  db := testutil.DB(t)
  tx := testutil.Tx(t, db)
  svc := newCollabService(t, tx, &fakeNotifier{})
  ctx := context.Background()

  _, activity, user := seedCollabFixture(t, tx, "editor@example.com")

  if _, err := svc.EditFields(ctx, activity.ID, user.ID, ActivityPatch{}); err == nil {
    t.Fatalf("empty patch should be rejected")
  }

  empty := ""
  if _, err := svc.EditFields(ctx, activity.ID, user.ID, ActivityPatch{Name: &empty}); err == nil {
    t.Fatalf("blank name should be rejected")
  }

  name := "Tram 28 sunset ride"
  cost := -50.0
  notes := "book ahead"
  updated, err := svc.EditFields(ctx, activity.ID, user.ID, ActivityPatch{Name: &name, Cost: &cost, Notes: &notes})
  if err != nil {
    t.Fatalf("EditFields: %v", err)
  }
  if updated.Name != name {
    t.Fatalf("name: want=%q got=%q", name, updated.Name)
  }
  if updated.Cost != 0 {
    t.Fatalf("negative cost should clamp to 0, got=%v", updated.Cost)
  }
  if updated.Notes != notes {
    t.Fatalf("notes: want=%q got=%q", notes, updated.Notes)
  }
  // Schedule is immutable through this path.
  if !updated.StartTime.Equal(activity.StartTime) {
    t.Fatalf("start_time must not change on edit")
  }
}

func TestCollabMutationsRequireMembership(t *testing.T) {
  db := testutil.DB(t)
  tx := testutil.Tx(t, db)
  notifier := &fakeNotifier{}
  svc := newCollabService(t, tx, notifier)
  ctx := context.Background()

  _, activity, _ := seedCollabFixture(t, tx, "member@example.com")
  outsider := testutil.SeedUser(t, tx, "outsider@example.com")

  if _, err := svc.CastVote(ctx, activity.ID, outsider.ID, types.VoteUp); !errors.Is(err, apperr.ErrForbidden) {
    t.Fatalf("CastVote by non-member: want ErrForbidden, got %v", err)
  }
  if _, err := svc.SetStatus(ctx, activity.ID, outsider.ID, types.ActivityStatusDone); !errors.Is(err, apperr.ErrForbidden) {
    t.Fatalf("SetStatus by non-member: want ErrForbidden, got %v", err)
  }
  name := "Hijacked"
  if _, err := svc.EditFields(ctx, activity.ID, outsider.ID, ActivityPatch{Name: &name}); !errors.Is(err, apperr.ErrForbidden) {
    t.Fatalf("EditFields by non-member: want ErrForbidden, got %v", err)
  }

  var votes int64
  if err := tx.Model(&types.ActivityVote{}).Where("activity_id = ?", activity.ID).Count(&votes).Error; err != nil {
    t.Fatalf("count votes: %v", err)
  }
  if votes != 0 {
    t.Fatalf("rejected vote must not persist: got %d rows", votes)
  }
  var fresh types.Activity
  if err := tx.First(&fresh, "id = ?", activity.ID).Error; err != nil {
    t.Fatalf("reload activity: %v", err)
  }
  if fresh.Name != activity.Name || fresh.Status != activity.Status {
    t.Fatalf("rejected mutations must not persist: %+v", fresh)
  }
  if notifier.votes != 0 || notifier.edits != 0 {
    t.Fatalf("rejected mutations must not broadcast: votes=%d edits=%d", notifier.votes, notifier.edits)
  }
}
