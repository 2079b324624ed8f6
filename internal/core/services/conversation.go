package services

import (
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
)

type ConversationService struct {
	repo     ports.ConversationRepository
	users    ports.UserRepository
	bans     ports.BanRepository
	notifier Notifier
}

func NewConversationService(repo ports.ConversationRepository, users ports.UserRepository, bans ports.BanRepository, notifier Notifier) *ConversationService {
	return &ConversationService{repo: repo, users: users, bans: bans, notifier: notifier}
}

// StartOrGet returns the conversation between the actor and another user,
// creating it on first contact.
func (s *ConversationService) StartOrGet(ctx context.Context, actor *domain.User, otherID int64) (*domain.Conversation, error) {
	if err := ensureActive(ctx, s.bans, actor); err != nil {
		return nil, err
	}

	conv, err := domain.NewConversation(actor.ID, otherID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, otherID); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByParticipants(ctx, conv.User1ID, conv.User2ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrConversationNotFound) {
		return nil, err
	}

	if err := s.repo.Create(ctx, conv); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"conversation_id": conv.ID,
		"user1_id":        conv.User1ID,
		"user2_id":        conv.User2ID,
	}).Info("conversation started")

	return conv, nil
}

func (s *ConversationService) List(ctx context.Context, actor *domain.User, limit, offset int) ([]*domain.Conversation, int, error) {
	if actor == nil {
		return nil, 0, domain.ErrUnauthenticated
	}
	limit, offset = clampPage(limit, offset)
	return s.repo.ListForUser(ctx, actor.ID, limit, offset)
}

func (s *ConversationService) Send(ctx context.Context, actor *domain.User, conversationID int64, content string) (*domain.Message, error) {
	if err := ensureActive(ctx, s.bans, actor); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.ErrInvalidMessage
	}

	conv, err := s.participantConversation(ctx, actor, conversationID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ConversationID: conv.ID,
		UserID:         actor.ID,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	notify(ctx, s.notifier, conv.OtherParticipant(actor.ID), domain.NotificationNewMessage, map[string]interface{}{
		"conversation_id": conv.ID,
		"message_id":      msg.ID,
		"sender_id":       actor.ID,
		"sender_name":     actor.Name,
	})

	return msg, nil
}

func (s *ConversationService) Messages(ctx context.Context, actor *domain.User, conversationID int64, limit, offset int) ([]*domain.Message, int, error) {
	if _, err := s.participantConversation(ctx, actor, conversationID); err != nil {
		return nil, 0, err
	}
	limit, offset = clampPage(limit, offset)
	return s.repo.ListMessages(ctx, conversationID, limit, offset)
}

// MarkRead marks the messages the other participant sent as read and
// returns how many changed.
func (s *ConversationService) MarkRead(ctx context.Context, actor *domain.User, conversationID int64) (int64, error) {
	if _, err := s.participantConversation(ctx, actor, conversationID); err != nil {
		return 0, err
	}
	return s.repo.MarkRead(ctx, conversationID, actor.ID, time.Now())
}

// participantConversation hides conversations from non-participants as
// not found.
func (s *ConversationService) participantConversation(ctx context.Context, actor *domain.User, id int64) (*domain.Conversation, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	conv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(actor.ID) {
		return nil, domain.ErrConversationNotFound
	}
	return conv, nil
}
