package services

import (
  "context"
  "fmt"
  "strings"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/yungbote/tripflow-backend/internal/apperr"
  "github.com/yungbote/tripflow-backend/internal/logger"
  "github.com/yungbote/tripflow-backend/internal/repos"
  "github.com/yungbote/tripflow-backend/internal/types"
)

type TripUpdate struct {
  Destination *string
  Country     *string
  StartDate   *time.Time
  EndDate     *time.Time
  BudgetTotal *float64
  Status      *string
}

type TripService interface {
  Create(ctx context.Context, organizerID uuid.UUID, trip *types.Trip) (*types.Trip, error)
  Get(ctx context.Context, tripID, userID uuid.UUID) (*types.Trip, error)
  ListForUser(ctx context.Context, userID uuid.UUID) ([]*types.Trip, error)
  Update(ctx context.Context, tripID, userID uuid.UUID, upd TripUpdate) (*types.Trip, error)
  AddMember(ctx context.Context, tripID, requesterID uuid.UUID, email, role string) (*types.TripMember, error)
  Members(ctx context.Context, tripID, userID uuid.UUID) ([]*types.TripMember, error)
  RequireMember(ctx context.Context, tripID, userID uuid.UUID) (*types.TripMember, error)
}

type tripService struct {
  db  *gorm.DB
  log *logger.Logger

  tripRepo   repos.TripRepo
  memberRepo repos.TripMemberRepo
  userRepo   repos.UserRepo
}

func NewTripService(
  db *gorm.DB,
  baseLog *logger.Logger,
  tripRepo repos.TripRepo,
  memberRepo repos.TripMemberRepo,
  userRepo repos.UserRepo,
) TripService {
  return &tripService{
    db:         db,
    log:        baseLog.With("service", "TripService"),
    tripRepo:   tripRepo,
    memberRepo: memberRepo,
    userRepo:   userRepo,
  }
}

func (s *tripService) Create(ctx context.Context, organizerID uuid.UUID, trip *types.Trip) (*types.Trip, error) {
  trip.Destination = strings.TrimSpace(trip.Destination)
  if trip.Destination == "" {
    return nil, apperr.Validation("trip requires a destination")
  }
  if trip.EndDate.Before(trip.StartDate) {
    return nil, apperr.Validation("trip end_date precedes start_date")
  }
  if trip.BudgetTotal < 0 {
    trip.BudgetTotal = 0
  }
  if trip.Status == "" {
    trip.Status = types.TripStatusPlanning
  }

  err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    trip.ID = uuid.New()
    trip.OrganizerID = organizerID
    if _, err := s.tripRepo.Create(ctx, tx, []*types.Trip{trip}); err != nil {
      return apperr.Persistence("create trip", err)
    }
    member := &types.TripMember{
      ID:     uuid.New(),
      TripID: trip.ID,
      UserID: organizerID,
      Role:   types.TripRoleOrganizer,
    }
    if _, err := s.memberRepo.Create(ctx, tx, []*types.TripMember{member}); err != nil {
      return apperr.Persistence("create organizer membership", err)
    }
    return nil
  })
  if err != nil {
    return nil, err
  }
  s.log.Info("Created trip", "trip_id", trip.ID, "organizer_id", organizerID, "destination", trip.Destination)
  return trip, nil
}

// RequireMember is the membership gate every trip-scoped operation goes
// through. Non-members get ErrForbidden, not ErrNotFound, so trip existence
// does not leak.
func (s *tripService) RequireMember(ctx context.Context, tripID, userID uuid.UUID) (*types.TripMember, error) {
  member, err := s.memberRepo.GetByTripAndUser(ctx, nil, tripID, userID)
  if err != nil {
    return nil, apperr.Persistence("load trip membership", err)
  }
  if member == nil {
    return nil, apperr.ErrForbidden
  }
  return member, nil
}

func (s *tripService) Get(ctx context.Context, tripID, userID uuid.UUID) (*types.Trip, error) {
  if _, err := s.RequireMember(ctx, tripID, userID); err != nil {
    return nil, err
  }
  trips, err := s.tripRepo.GetByIDs(ctx, nil, []uuid.UUID{tripID})
  if err != nil {
    return nil, apperr.Persistence("load trip", err)
  }
  if len(trips) == 0 {
    return nil, fmt.Errorf("trip %s: %w", tripID, apperr.ErrNotFound)
  }
  return trips[0], nil
}

func (s *tripService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*types.Trip, error) {
  trips, err := s.tripRepo.GetByMemberUserID(ctx, nil, userID)
  if err != nil {
    return nil, apperr.Persistence("list trips for user", err)
  }
  return trips, nil
}

func (s *tripService) Update(ctx context.Context, tripID, userID uuid.UUID, upd TripUpdate) (*types.Trip, error) {
  member, err := s.RequireMember(ctx, tripID, userID)
  if err != nil {
    return nil, err
  }
  if member.Role != types.TripRoleOrganizer {
    return nil, apperr.ErrForbidden
  }

  updates := map[string]any{}
  if upd.Destination != nil {
    dest := strings.TrimSpace(*upd.Destination)
    if dest == "" {
      return nil, apperr.Validation("destination cannot be empty")
    }
    updates["destination"] = dest
  }
  if upd.Country != nil {
    updates["country"] = *upd.Country
  }
  if upd.StartDate != nil {
    updates["start_date"] = *upd.StartDate
  }
  if upd.EndDate != nil {
    updates["end_date"] = *upd.EndDate
  }
  if upd.BudgetTotal != nil {
    if *upd.BudgetTotal < 0 {
      return nil, apperr.Validation("budget_total cannot be negative")
    }
    updates["budget_total"] = *upd.BudgetTotal
  }
  if upd.Status != nil {
    switch *upd.Status {
    case types.TripStatusPlanning, types.TripStatusBooked, types.TripStatusOngoing, types.TripStatusCompleted:
    default:
      return nil, apperr.Validation("invalid trip status %q", *upd.Status)
    }
    updates["status"] = *upd.Status
  }
  if len(updates) == 0 {
    return nil, apperr.Validation("no fields to update")
  }
  updates["updated_at"] = time.Now()

  if err := s.tripRepo.Update(ctx, nil, tripID, updates); err != nil {
    return nil, apperr.Persistence("update trip", err)
  }
  trips, err := s.tripRepo.GetByIDs(ctx, nil, []uuid.UUID{tripID})
  if err != nil {
    return nil, apperr.Persistence("reload trip", err)
  }
  if len(trips) == 0 {
    return nil, fmt.Errorf("trip %s: %w", tripID, apperr.ErrNotFound)
  }
  return trips[0], nil
}

func (s *tripService) AddMember(ctx context.Context, tripID, requesterID uuid.UUID, email, role string) (*types.TripMember, error) {
  requester, err := s.RequireMember(ctx, tripID, requesterID)
  if err != nil {
    return nil, err
  }
  if requester.Role != types.TripRoleOrganizer {
    return nil, apperr.ErrForbidden
  }
  if role == "" {
    role = types.TripRoleMember
  }
  if role != types.TripRoleMember && role != types.TripRoleOrganizer {
    return nil, apperr.Validation("invalid member role %q", role)
  }

  email = strings.ToLower(strings.TrimSpace(email))
  users, err := s.userRepo.GetByEmails(ctx, nil, []string{email})
  if err != nil {
    return nil, apperr.Persistence("load user by email", err)
  }
  if len(users) == 0 {
    return nil, fmt.Errorf("user %s: %w", email, apperr.ErrNotFound)
  }
  user := users[0]

  existing, err := s.memberRepo.GetByTripAndUser(ctx, nil, tripID, user.ID)
  if err != nil {
    return nil, apperr.Persistence("check existing membership", err)
  }
  if existing != nil {
    return existing, nil
  }

  member := &types.TripMember{
    ID:     uuid.New(),
    TripID: tripID,
    UserID: user.ID,
    Role:   role,
  }
  if _, err := s.memberRepo.Create(ctx, nil, []*types.TripMember{member}); err != nil {
    return nil, apperr.Persistence("create trip member", err)
  }
  s.log.Info("Added trip member", "trip_id", tripID, "user_id", user.ID, "role", role)
  return member, nil
}

func (s *tripService) Members(ctx context.Context, tripID, userID uuid.UUID) ([]*types.TripMember, error) {
  if _, err := s.RequireMember(ctx, tripID, userID); err != nil {
    return nil, err
  }
  members, err := s.memberRepo.GetByTripID(ctx, nil, tripID)
  if err != nil {
    return nil, apperr.Persistence("list trip members", err)
  }

  // Attach the user rows so the roster carries names and emails.
  users, err := s.userRepo.GetByTripID(ctx, nil, tripID)
  if err != nil {
    return nil, apperr.Persistence("list trip users", err)
  }
  byID := make(map[uuid.UUID]*types.User, len(users))
  for _, u := range users {
    byID[u.ID] = u
  }
  for _, m := range members {
    m.User = byID[m.UserID]
  }
  return members, nil
}
