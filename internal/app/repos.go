package app

import (
  "gorm.io/gorm"

  "github.com/yungbote/tripflow-backend/internal/logger"
  "github.com/yungbote/tripflow-backend/internal/repos"
)

type Repos struct {
  User            repos.UserRepo
  UserToken       repos.UserTokenRepo
  Trip            repos.TripRepo
  TripMember      repos.TripMemberRepo
  Itinerary       repos.ItineraryRepo
  Activity        repos.ActivityRepo
  ActivityVote    repos.ActivityVoteRepo
  DisruptionEvent repos.DisruptionEventRepo
  Message         repos.MessageRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
  log.Info("Wiring repos...")
  return Repos{
    User:            repos.NewUserRepo(db, log),
    UserToken:       repos.NewUserTokenRepo(db, log),
    Trip:            repos.NewTripRepo(db, log),
    TripMember:      repos.NewTripMemberRepo(db, log),
    Itinerary:       repos.NewItineraryRepo(db, log),
    Activity:        repos.NewActivityRepo(db, log),
    ActivityVote:    repos.NewActivityVoteRepo(db, log),
    DisruptionEvent: repos.NewDisruptionEventRepo(db, log),
    Message:         repos.NewMessageRepo(db, log),
  }
}
