package repository

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/vasapolrittideah/taskboard-api/services/auth-service/internal/model"
)

// MemoryStore keeps users and reset tokens in process memory.
// It implements both UserRepository and PasswordResetTokenRepository.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	users   map[string]*model.User
	byEmail map[string]string
	tokens  map[string]*model.PasswordResetToken
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]*model.User),
		byEmail: make(map[string]string),
		tokens:  make(map[string]*model.PasswordResetToken),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return nil, ErrDuplicateKey
	}

	s.nextID++
	now := time.Now().UTC()
	created := *user
	created.ID = strconv.FormatInt(s.nextID, 10)
	created.CreatedAt = now
	created.UpdatedAt = now

	s.users[created.ID] = &created
	s.byEmail[created.Email] = created.ID

	out := created
	return &out, nil
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	out := *user
	return &out, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}

	out := *s.users[id]
	return &out, nil
}

func (s *MemoryStore) CreateToken(_ context.Context, token *model.PasswordResetToken) (*model.PasswordResetToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[token.UserID]; !ok {
		return nil, ErrNotFound
	}
	if _, ok := s.tokens[token.Token]; ok {
		return nil, ErrDuplicateKey
	}

	created := *token
	created.CreatedAt = time.Now().UTC()
	s.tokens[created.Token] = &created

	out := created
	return &out, nil
}

func (s *MemoryStore) GetToken(_ context.Context, token string) (*model.PasswordResetToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[token]
	if !ok {
		return nil, ErrNotFound
	}

	out := *t
	return &out, nil
}

func (s *MemoryStore) ConsumeToken(_ context.Context, token, passwordHash string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[token]
	if !ok {
		return ErrNotFound
	}
	if t.IsExpired(now) {
		return ErrExpired
	}

	user, ok := s.users[t.UserID]
	if !ok {
		return errors.New("password reset token owner not found")
	}

	delete(s.tokens, token)
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now().UTC()

	return nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }
