package services

import (
  "context"
  "strings"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/yungbote/tripflow-backend/internal/apperr"
  "github.com/yungbote/tripflow-backend/internal/logger"
  "github.com/yungbote/tripflow-backend/internal/repos"
  "github.com/yungbote/tripflow-backend/internal/types"
)

const defaultMessageLimit = 100

type MessageService interface {
  Send(ctx context.Context, tripID, senderID uuid.UUID, content, messageType string) (*types.Message, error)
  List(ctx context.Context, tripID uuid.UUID, limit int) ([]*types.Message, error)
}

type messageService struct {
  db  *gorm.DB
  log *logger.Logger

  messageRepo repos.MessageRepo
  notifier    TripNotifier
}

func NewMessageService(
  db *gorm.DB,
  baseLog *logger.Logger,
  messageRepo repos.MessageRepo,
  notifier TripNotifier,
) MessageService {
  return &messageService{
    db:          db,
    log:         baseLog.With("service", "MessageService"),
    messageRepo: messageRepo,
    notifier:    notifier,
  }
}

func (s *messageService) Send(ctx context.Context, tripID, senderID uuid.UUID, content, messageType string) (*types.Message, error) {
  content = strings.TrimSpace(content)
  if content == "" {
    return nil, apperr.Validation("message content is empty")
  }
  if messageType == "" {
    messageType = "text"
  }

  msg := &types.Message{
    ID:          uuid.New(),
    TripID:      tripID,
    SenderID:    senderID,
    Content:     content,
    MessageType: messageType,
  }
  if _, err := s.messageRepo.Create(ctx, nil, []*types.Message{msg}); err != nil {
    return nil, apperr.Persistence("create message", err)
  }
  s.notifier.MessageCreated(ctx, tripID, msg)
  return msg, nil
}

func (s *messageService) List(ctx context.Context, tripID uuid.UUID, limit int) ([]*types.Message, error) {
  if limit <= 0 {
    limit = defaultMessageLimit
  }
  messages, err := s.messageRepo.GetByTripID(ctx, nil, tripID, limit)
  if err != nil {
    return nil, apperr.Persistence("list messages", err)
  }
  return messages, nil
}
