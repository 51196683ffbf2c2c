package models

import "time"

// MessageType представляет виды внутренних сообщений клуба.
type MessageType string

const (
	MessageAnnouncement MessageType = "announcement"
	MessageDirect       MessageType = "message"
	MessageReminderNote MessageType = "reminder"
)

// MessagePriority представляет приоритет сообщения.
type MessagePriority string

const (
	PriorityLow    MessagePriority = "low"
	PriorityMedium MessagePriority = "medium"
	PriorityHigh   MessagePriority = "high"
	PriorityUrgent MessagePriority = "urgent"
)

// ValidMessageType проверяет, что строка является известным видом сообщения.
func ValidMessageType(t MessageType) bool {
	switch t {
	case MessageAnnouncement, MessageDirect, MessageReminderNote:
		return true
	}
	return false
}

// ValidMessagePriority проверяет, что строка является известным приоритетом.
func ValidMessagePriority(p MessagePriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Message представляет внутреннее сообщение или объявление.
// Author - ID участника либо "system".
type Message struct {
	ID             string          `json:"id"`
	Type           MessageType     `json:"type"`
	Title          string          `json:"title"`
	Content        string          `json:"content"`
	Author         string          `json:"author"`
	Target         string          `json:"target"`
	Priority       MessagePriority `json:"priority"`
	ExpiresAt      *time.Time      `json:"expires_at,omitempty"`
	ReadBy         []string        `json:"read_by"`
	AcknowledgedBy []string        `json:"acknowledged_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

// IsExpired сообщает, истёк ли срок действия сообщения.
func (m *Message) IsExpired(now time.Time) bool {
	return m.ExpiresAt != nil && now.After(*m.ExpiresAt)
}

// IsReadBy сообщает, прочитал ли участник сообщение.
func (m *Message) IsReadBy(memberID string) bool {
	for _, id := range m.ReadBy {
		if id == memberID {
			return true
		}
	}
	return false
}

// IsAcknowledgedBy сообщает, подтвердил ли участник сообщение.
func (m *Message) IsAcknowledgedBy(memberID string) bool {
	for _, id := range m.AcknowledgedBy {
		if id == memberID {
			return true
		}
	}
	return false
}

// MarkRead отмечает сообщение прочитанным, повторная отметка не дублируется.
func (m *Message) MarkRead(memberID string) {
	if !m.IsReadBy(memberID) {
		m.ReadBy = append(m.ReadBy, memberID)
	}
}

// MarkAcknowledged отмечает подтверждение, повторная отметка не дублируется.
func (m *Message) MarkAcknowledged(memberID string) {
	if !m.IsAcknowledgedBy(memberID) {
		m.AcknowledgedBy = append(m.AcknowledgedBy, memberID)
	}
}
