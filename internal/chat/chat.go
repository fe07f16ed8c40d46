// Package chat implements the support messaging channel between accounts
// and verified agencies. Messages persist as one JSON blob; delivery fanout
// to live connections is delegated through a notify hook so the package
// stays transport-free.
package chat

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ethioska/sqboom/internal/domain"
	"github.com/ethioska/sqboom/internal/kv"
	"github.com/ethioska/sqboom/internal/logger"
)

// AutoReplyText is sent on behalf of support-capable agencies shortly after
// a user messages them.
const AutoReplyText = "Thank you for your message. We have received it and will get back to you shortly. (Automated Reply)"

// Service stores the message log and schedules agency auto-replies.
type Service struct {
	mu       sync.Mutex
	store    kv.Store
	messages []domain.ChatMessage

	// replyFrom holds the agency ids that answer automatically.
	replyFrom  map[string]bool
	replyDelay time.Duration

	notify func(domain.ChatMessage)
	now    func() time.Time

	// schedule is swapped in tests to fire replies synchronously.
	schedule func(d time.Duration, f func()) *time.Timer

	timersMu sync.Mutex
	timers   map[*time.Timer]struct{}
	closed   bool
}

// New loads the persisted log. Agencies with the ADMIN or SUPPORT role
// become auto-reply senders.
func New(store kv.Store, agencies []domain.Agency, replyDelay time.Duration) *Service {
	s := &Service{
		store:      store,
		replyFrom:  make(map[string]bool),
		replyDelay: replyDelay,
		now:        time.Now,
		schedule:   time.AfterFunc,
		timers:     make(map[*time.Timer]struct{}),
	}
	for _, a := range agencies {
		if a.Role == domain.RoleAdmin || a.Role == domain.RoleSupport {
			s.replyFrom[a.ID] = true
		}
	}
	s.load()
	return s
}

func (s *Service) load() {
	data, err := s.store.Get(context.Background(), kv.KeyChat)
	if err != nil {
		if err != kv.ErrNotFound {
			logger.Error("failed to load chat log", "error", err)
		}
		return
	}
	var messages []domain.ChatMessage
	if err := json.Unmarshal(data, &messages); err != nil {
		logger.Error("chat log corrupt, starting empty", "error", err)
		return
	}
	s.messages = messages
}

// SetNotify installs the delivery hook. Must be called before traffic starts.
func (s *Service) SetNotify(fn func(domain.ChatMessage)) {
	s.mu.Lock()
	s.notify = fn
	s.mu.Unlock()
}

// Send appends a message to the log. Messaging an auto-reply agency also
// schedules its canned answer. Returns false for blank text.
func (s *Service) Send(senderID, receiverID, text string) (domain.ChatMessage, bool) {
	text = strings.TrimSpace(text)
	if text == "" || senderID == "" || receiverID == "" {
		return domain.ChatMessage{}, false
	}

	msg := s.append(senderID, receiverID, text)

	if s.replyFrom[receiverID] && !s.replyFrom[senderID] {
		s.scheduleReply(receiverID, senderID)
	}
	return msg, true
}

func (s *Service) append(senderID, receiverID, text string) domain.ChatMessage {
	s.mu.Lock()
	msg := domain.ChatMessage{
		ID:         uuid.NewString(),
		Text:       text,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Timestamp:  s.now().UnixMilli(),
	}
	s.messages = append(s.messages, msg)
	s.persist()
	notify := s.notify
	s.mu.Unlock()

	if notify != nil {
		notify(msg)
	}
	return msg
}

func (s *Service) scheduleReply(agencyID, userID string) {
	s.timersMu.Lock()
	closed := s.closed
	s.timersMu.Unlock()
	if closed {
		return
	}

	var timer *time.Timer
	timer = s.schedule(s.replyDelay, func() {
		s.timersMu.Lock()
		delete(s.timers, timer)
		closed := s.closed
		s.timersMu.Unlock()
		if closed {
			return
		}
		s.append(agencyID, userID, AutoReplyText)
	})

	s.timersMu.Lock()
	if s.closed {
		timer.Stop()
	} else {
		s.timers[timer] = struct{}{}
	}
	s.timersMu.Unlock()
}

// Conversation returns the messages exchanged between two accounts in
// chronological order.
func (s *Service) Conversation(a, b string) []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ChatMessage, 0)
	for _, m := range s.messages {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, m)
		}
	}
	return out
}

// Inbox returns every message the account sent or received.
func (s *Service) Inbox(id string) []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ChatMessage, 0)
	for _, m := range s.messages {
		if m.SenderID == id || m.ReceiverID == id {
			out = append(out, m)
		}
	}
	return out
}

// Close cancels pending auto-replies.
func (s *Service) Close() {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	s.closed = true
	for t := range s.timers {
		t.Stop()
	}
	s.timers = map[*time.Timer]struct{}{}
}

// callers hold s.mu
func (s *Service) persist() {
	data, err := json.Marshal(s.messages)
	if err != nil {
		logger.Error("failed to marshal chat log", "error", err)
		return
	}
	if err := s.store.Set(context.Background(), kv.KeyChat, data); err != nil {
		logger.Error("failed to persist chat log", "error", err)
	}
}
