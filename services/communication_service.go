package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/club-system/models"
	"github.com/Dosada05/club-system/repositories"
	"github.com/google/uuid"
)

// TargetAll - значение поля Target для сообщений всем участникам.
const TargetAll = "all"

type CommunicationService interface {
	SendMessage(ctx context.Context, input SendMessageInput) (*models.Message, error)
	GetMessageByID(ctx context.Context, id string) (*models.Message, error)
	GetMessages(ctx context.Context, includeExpired bool) ([]models.Message, error)
	GetMessagesForMember(ctx context.Context, memberID string) ([]models.Message, error)
	MarkRead(ctx context.Context, messageID, memberID string) (*models.Message, error)
	MarkAcknowledged(ctx context.Context, messageID, memberID string) (*models.Message, error)
	DeleteMessage(ctx context.Context, id string) error
	GetUnreadCount(ctx context.Context, memberID string) (int, error)
}

type SendMessageInput struct {
	Type      models.MessageType     `json:"type"`
	Title     string                 `json:"title"`
	Content   string                 `json:"content"`
	Author    string                 `json:"author"`
	Target    string                 `json:"target"`
	Priority  models.MessagePriority `json:"priority"`
	ExpiresAt *time.Time             `json:"expires_at"`
}

type communicationService struct {
	messageRepo repositories.MessageRepository
	hub         Broadcaster
	now         func() time.Time
}

// NewCommunicationService создаёт сервис внутренних сообщений.
// hub может быть nil, тогда новые сообщения не рассылаются по websocket.
func NewCommunicationService(messageRepo repositories.MessageRepository, hub Broadcaster) CommunicationService {
	return &communicationService{
		messageRepo: messageRepo,
		hub:         hub,
		now:         time.Now,
	}
}

func (s *communicationService) SendMessage(ctx context.Context, input SendMessageInput) (*models.Message, error) {
	v := newValidationError()
	if !models.ValidMessageType(input.Type) {
		v.add("type", "type must be one of: announcement, message, reminder")
	}
	if input.Title == "" {
		v.add("title", "title is required")
	}
	if input.Content == "" {
		v.add("content", "content is required")
	}
	if input.Priority != "" && !models.ValidMessagePriority(input.Priority) {
		v.add("priority", "priority must be one of: low, medium, high, urgent")
	}
	if v.hasErrors() {
		return nil, v
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	target := input.Target
	if target == "" {
		target = TargetAll
	}
	author := input.Author
	if author == "" {
		author = "system"
	}

	message := &models.Message{
		ID:             uuid.NewString(),
		Type:           input.Type,
		Title:          input.Title,
		Content:        input.Content,
		Author:         author,
		Target:         target,
		Priority:       priority,
		ExpiresAt:      input.ExpiresAt,
		ReadBy:         []string{},
		AcknowledgedBy: []string{},
		CreatedAt:      s.now(),
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom("messages", "MESSAGE_CREATED", message)
	}
	return message, nil
}

func (s *communicationService) GetMessageByID(ctx context.Context, id string) (*models.Message, error) {
	message, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	return message, nil
}

// GetMessages возвращает сообщения, по умолчанию без истёкших.
func (s *communicationService) GetMessages(ctx context.Context, includeExpired bool) ([]models.Message, error) {
	messages, err := s.messageRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	if includeExpired {
		return messages, nil
	}

	now := s.now()
	result := make([]models.Message, 0, len(messages))
	for i := range messages {
		if !messages[i].IsExpired(now) {
			result = append(result, messages[i])
		}
	}
	return result, nil
}

// GetMessagesForMember возвращает неистёкшие сообщения, адресованные
// участнику лично или всем.
func (s *communicationService) GetMessagesForMember(ctx context.Context, memberID string) ([]models.Message, error) {
	messages, err := s.GetMessages(ctx, false)
	if err != nil {
		return nil, err
	}

	result := make([]models.Message, 0, len(messages))
	for i := range messages {
		if messages[i].Target == TargetAll || messages[i].Target == memberID {
			result = append(result, messages[i])
		}
	}
	return result, nil
}

func (s *communicationService) MarkRead(ctx context.Context, messageID, memberID string) (*models.Message, error) {
	message, err := s.GetMessageByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	if message.IsReadBy(memberID) {
		return message, nil
	}
	message.MarkRead(memberID)

	if err := s.messageRepo.Update(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to mark message %s read: %w", messageID, err)
	}
	return message, nil
}

func (s *communicationService) MarkAcknowledged(ctx context.Context, messageID, memberID string) (*models.Message, error) {
	message, err := s.GetMessageByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	if message.IsAcknowledgedBy(memberID) {
		return message, nil
	}
	// подтверждение подразумевает прочтение
	message.MarkRead(memberID)
	message.MarkAcknowledged(memberID)

	if err := s.messageRepo.Update(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to acknowledge message %s: %w", messageID, err)
	}
	return message, nil
}

func (s *communicationService) DeleteMessage(ctx context.Context, id string) error {
	if err := s.messageRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("failed to delete message %s: %w", id, err)
	}
	return nil
}

func (s *communicationService) GetUnreadCount(ctx context.Context, memberID string) (int, error) {
	messages, err := s.GetMessagesForMember(ctx, memberID)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range messages {
		if !messages[i].IsReadBy(memberID) {
			count++
		}
	}
	return count, nil
}
