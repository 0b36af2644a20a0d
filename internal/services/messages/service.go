package messages

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/lernquiz/lernquiz-go/internal/dependencies/clock"
	"github.com/lernquiz/lernquiz-go/internal/model"
	"github.com/lernquiz/lernquiz-go/internal/storage"
)

const maxBodyLength = 2000

// Service handles direct messages between users
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a message Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// Send delivers a message from one user to another
func (s *Service) Send(ctx context.Context, from, to, body string) (*model.Message, error) {
	from = model.Normalize(from)
	to = model.Normalize(to)

	if to == "" {
		return nil, fmt.Errorf("%w: recipient required", model.ErrInvalidInput)
	}
	if to == from {
		return nil, fmt.Errorf("%w: cannot message yourself", model.ErrInvalidInput)
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: message body required", model.ErrInvalidInput)
	}
	if len(body) > maxBodyLength {
		return nil, fmt.Errorf("%w: message body too long", model.ErrInvalidInput)
	}

	if _, err := s.storage.GetUser(ctx, to); err != nil {
		return nil, err
	}

	msg := &model.Message{
		ID:     model.MessageID(uuid.NewString()),
		From:   from,
		To:     to,
		Body:   body,
		Read:   false,
		SentAt: s.clock.Now(),
	}
	if err := s.storage.SaveMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.logger.Info("message sent",
		slog.String("from", from),
		slog.String("to", to),
		slog.String("message_id", string(msg.ID)))

	return msg, nil
}

// MarkRead marks a message as read. Only the recipient may do so.
func (s *Service) MarkRead(ctx context.Context, id model.MessageID, username string) (*model.Message, error) {
	username = model.Normalize(username)

	msg, err := s.storage.GetMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg.To != username {
		return nil, model.ErrNotParticipant
	}
	if msg.Read {
		return msg, nil
	}

	if err := s.storage.MarkMessageRead(ctx, id); err != nil {
		return nil, err
	}
	msg.Read = true
	return msg, nil
}

// UnreadCount returns the number of unread messages for a user
func (s *Service) UnreadCount(ctx context.Context, username string) (int, error) {
	return s.storage.CountUnreadMessages(ctx, model.Normalize(username))
}
