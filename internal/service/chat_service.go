package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"research-assistant-cli/internal/dto"
	"research-assistant-cli/internal/entity"
	"research-assistant-cli/internal/pkg/logger"

	"github.com/google/uuid"
)

type ChatState string

const (
	ChatIdle          ChatState = "idle"
	ChatAwaitingReply ChatState = "awaiting_reply"
)

var (
	// ErrReplyPending rejects a send while a prior send is unresolved.
	ErrReplyPending = errors.New("a reply is still pending")
	// ErrNoActiveSession rejects chat operations with no inquiry open.
	ErrNoActiveSession = errors.New("no inquiry is open")
)

// fallbackReply keeps the invariant that every user turn is followed by a
// response attempt, even when the remote call fails.
const fallbackReply = "Sorry, I wasn't able to answer that right now. Please try asking again."

type IChatService interface {
	Open(inquiry entity.Inquiry)
	Close()
	Active() (entity.Inquiry, bool)
	State() ChatState
	History() []entity.Message
	Send(ctx context.Context, query string) (entity.Message, error)
}

type chatAPI interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

type chatService struct {
	api    chatAPI
	logger logger.ILogger

	mu      sync.Mutex
	inquiry entity.Inquiry
	open    bool
	state   ChatState
	history []entity.Message
	pending uuid.UUID // request id of the in-flight send, uuid.Nil otherwise
}

func NewChatService(api chatAPI, sysLogger logger.ILogger) IChatService {
	return &chatService{
		api:    api,
		logger: sysLogger,
		state:  ChatIdle,
	}
}

// Open starts a fresh session for the inquiry. Any previous session's
// history is discarded; persistence of past turns is the remote service's
// concern, not this component's.
func (s *chatService) Open(inquiry entity.Inquiry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inquiry = inquiry
	s.open = true
	s.state = ChatIdle
	s.history = nil
	s.pending = uuid.Nil
}

func (s *chatService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	s.state = ChatIdle
	s.history = nil
	s.pending = uuid.Nil
}

func (s *chatService) Active() (entity.Inquiry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inquiry, s.open
}

func (s *chatService) State() ChatState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns a copy of the message log. Append-only and chronological;
// callers must treat it as immutable.
func (s *chatService) History() []entity.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Message, len(s.history))
	copy(out, s.history)
	return out
}

// Send is a two-phase append. Phase one puts the user's turn into the
// history immediately and enters AwaitingReply, blocking further sends.
// Phase two appends the assistant's turn, or the fallback apology if the
// request fails, and returns to Idle.
//
// Each send is tagged with a request id and the inquiry it was issued for.
// If the session was closed or switched while the request was in flight, the
// late resolution is discarded rather than applied to a different inquiry.
func (s *chatService) Send(ctx context.Context, query string) (entity.Message, error) {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return entity.Message{}, ErrNoActiveSession
	}
	if s.state == ChatAwaitingReply {
		s.mu.Unlock()
		return entity.Message{}, ErrReplyPending
	}

	requestId := uuid.New()
	inquiry := s.inquiry
	s.history = append(s.history, entity.Message{
		Role:      entity.MessageRoleUser,
		Content:   query,
		CreatedAt: time.Now(),
	})
	s.state = ChatAwaitingReply
	s.pending = requestId
	s.mu.Unlock()

	res, sendErr := s.api.Chat(ctx, &dto.ChatRequest{
		InquiryId:     inquiry.Id,
		Query:         query,
		ReferenceSets: inquiry.ReferenceSetIds,
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	// Stale resolution: the session moved on while we were waiting.
	if !s.open || s.inquiry.Id != inquiry.Id || s.pending != requestId {
		s.logger.Warn("chat", "discarding stale reply", map[string]interface{}{
			"inquiry":    inquiry.Id.String(),
			"request_id": requestId.String(),
		})
		return entity.Message{}, ErrNoActiveSession
	}

	s.state = ChatIdle
	s.pending = uuid.Nil

	var reply entity.Message
	if sendErr != nil {
		reply = entity.Message{
			Role:      entity.MessageRoleAssistant,
			Content:   fallbackReply,
			CreatedAt: time.Now(),
		}
		s.history = append(s.history, reply)
		s.logger.Warn("chat", "send failed", map[string]interface{}{
			"inquiry": inquiry.Id.String(),
			"error":   sendErr.Error(),
		})
		return reply, sendErr
	}

	reply = entity.Message{
		Role:      entity.MessageRoleAssistant,
		Content:   res.Response,
		Citations: res.Citations,
		Sources:   res.Sources,
		CreatedAt: time.Now(),
	}
	s.history = append(s.history, reply)
	return reply, nil
}
