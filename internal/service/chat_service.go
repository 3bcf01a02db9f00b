package service

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rohanjain3/AGRISMART-12/internal/entity"
)

// SendMessageRequest is a new chat message.
type SendMessageRequest struct {
	SenderID          uuid.UUID  `json:"sender_id"`
	ReceiverID        uuid.UUID  `json:"receiver_id"`
	Content           string     `json:"content"`
	AttachedProductID *uuid.UUID `json:"attached_product_id,omitempty"`
}

type conversationKey [2]uuid.UUID

func keyFor(a, b uuid.UUID) conversationKey {
	if strings.Compare(a.String(), b.String()) > 0 {
		a, b = b, a
	}
	return conversationKey{a, b}
}

// ChatService keeps per-conversation message logs in memory.
type ChatService struct {
	mu            sync.RWMutex
	conversations map[conversationKey][]entity.Message
	now           func() time.Time
}

func NewChatService() *ChatService {
	return &ChatService{
		conversations: make(map[conversationKey][]entity.Message),
		now:           time.Now,
	}
}

// Send appends a message to the sender/receiver conversation.
func (s *ChatService) Send(req SendMessageRequest) (entity.Message, error) {
	var fields []string
	if req.SenderID == uuid.Nil {
		fields = append(fields, "sender_id")
	}
	if req.ReceiverID == uuid.Nil || req.ReceiverID == req.SenderID {
		fields = append(fields, "receiver_id")
	}
	if strings.TrimSpace(req.Content) == "" {
		fields = append(fields, "content")
	}
	if len(fields) > 0 {
		return entity.Message{}, &entity.ValidationError{Fields: fields}
	}

	msg := entity.Message{
		ID:                uuid.New(),
		SenderID:          req.SenderID,
		ReceiverID:        req.ReceiverID,
		Content:           req.Content,
		Timestamp:         s.now(),
		AttachedProductID: req.AttachedProductID,
	}

	s.mu.Lock()
	key := keyFor(msg.SenderID, msg.ReceiverID)
	s.conversations[key] = append(s.conversations[key], msg)
	s.mu.Unlock()

	slog.Info("Service: Message sent", "message_id", msg.ID, "sender_id", msg.SenderID, "receiver_id", msg.ReceiverID)
	return msg, nil
}

// Conversation returns the messages exchanged between a and b, oldest first.
func (s *ChatService) Conversation(a, b uuid.UUID) []entity.Message {
	s.mu.RLock()
	msgs := s.conversations[keyFor(a, b)]
	out := make([]entity.Message, len(msgs))
	copy(out, msgs)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// MarkRead marks every message other sent to reader as read and returns how
// many changed.
func (s *ChatService) MarkRead(reader, other uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.conversations[keyFor(reader, other)]
	var n int
	for i := range msgs {
		if msgs[i].ReceiverID == reader && !msgs[i].IsRead {
			msgs[i].IsRead = true
			n++
		}
	}
	return n
}

// Unread counts unread messages addressed to reader across conversations.
func (s *ChatService) Unread(reader uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	for key, msgs := range s.conversations {
		if key[0] != reader && key[1] != reader {
			continue
		}
		for _, m := range msgs {
			if m.ReceiverID == reader && !m.IsRead {
				n++
			}
		}
	}
	return n
}
