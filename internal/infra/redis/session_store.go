package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"classroom-quiz/internal/app"
	"classroom-quiz/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Sessions themselves live in a local map; the state machine and its countdown
//     are in-process.
//   - Join codes are reserved in Redis with SETNX, so two instances sharing one
//     Redis never hand out the same code.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
	codes    map[string]string
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
		codes:    make(map[string]string),
	}
}

func (s *SessionStore) Add(session *app.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.codes[session.Code()]; taken {
		return domain.ErrCodeTaken
	}
	ok, err := s.client.SetNX(context.Background(), s.codeKey(session.Code()), session.ID(), s.ttl).Result()
	if err != nil {
		return fmt.Errorf("reserve join code: %w", err)
	}
	if !ok {
		return domain.ErrCodeTaken
	}
	s.sessions[session.ID()] = session
	s.codes[session.Code()] = session.ID()
	return nil
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

func (s *SessionStore) GetByCode(code string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.codes[code]
	if !ok {
		return nil, false
	}
	session, ok := s.sessions[id]
	return session, ok
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	delete(s.sessions, sessionID)
	delete(s.codes, session.Code())
	// best-effort release; the key expires on its own otherwise
	_ = s.client.Del(context.Background(), s.codeKey(session.Code())).Err()
}

func (s *SessionStore) codeKey(code string) string {
	return "quiz:code:" + code
}
