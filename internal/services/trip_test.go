package services

import (
  "context"
  "errors"
  "testing"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/yungbote/tripflow-backend/internal/apperr"
  "github.com/yungbote/tripflow-backend/internal/repos"
  "github.com/yungbote/tripflow-backend/internal/testutil"
  "github.com/yungbote/tripflow-backend/internal/types"
)

func newTripService(t *testing.T, tx *gorm.DB) TripService {
  t.Helper()
  log := testutil.Logger(t)
  return NewTripService(
    tx,
    log,
    repos.NewTripRepo(tx, log),
    repos.NewTripMemberRepo(tx, log),
    repos.NewUserRepo(tx, log),
  )
}

func TestMembersCarriesUserRows(t *testing.T) {
  db := testutil.DB(t)
  tx := testutil.Tx(t, db)
  svc := newTripService(t, tx)
  ctx := context.Background()

  organizer := testutil.SeedUser(t, tx, "roster-organizer@example.com")
  trip := testutil.SeedTrip(t, tx, organizer.ID)
  friend := testutil.SeedUser(t, tx, "friend@example.com")
  if err := tx.Create(&types.TripMember{
    ID:        uuid.New(),
    TripID:    trip.ID,
    UserID:    friend.ID,
    Role:      types.TripRoleMember,
    CreatedAt: time.Now(),
  }).Error; err != nil {
    t.Fatalf("seed member: %v", err)
  }

  members, err := svc.Members(ctx, trip.ID, organizer.ID)
  if err != nil {
    t.Fatalf("Members: %v", err)
  }
  if len(members) != 2 {
    t.Fatalf("members: want=2 got=%d", len(members))
  }
  for _, m := range members {
    if m.User == nil {
      t.Fatalf("member %s missing user row", m.UserID)
    }
    if m.User.ID != m.UserID {
      t.Fatalf("user mismatch: member=%s user=%s", m.UserID, m.User.ID)
    }
  }
}

func TestMembersRejectsNonMember(t *testing.T) {
  db := testutil.DB(t)
  tx := testutil.Tx(t, db)
  svc := newTripService(t, tx)

  organizer := testutil.SeedUser(t, tx, "host@example.com")
  trip := testutil.SeedTrip(t, tx, organizer.ID)
  outsider := testutil.SeedUser(t, tx, "stranger@example.com")

  if _, err := svc.Members(context.Background(), trip.ID, outsider.ID); !errors.Is(err, apperr.ErrForbidden) {
    t.Fatalf("want ErrForbidden, got %v", err)
  }
}
