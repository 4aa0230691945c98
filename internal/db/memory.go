package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/RichardoC/drivewise/internal/models"
)

// Memory is a process-local Store. Its contents are lost on restart.
type Memory struct {
	mu sync.RWMutex

	messages      map[int64]models.ChatMessage
	nextMessageID int64

	users      map[int64]models.User
	nextUserID int64

	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		messages:      make(map[int64]models.ChatMessage),
		nextMessageID: 1,
		users:         make(map[int64]models.User),
		nextUserID:    1,
		now:           time.Now,
	}
}

func (m *Memory) CreateChatMessage(_ context.Context, in models.NewChatMessage) (*models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg := models.ChatMessage{
		ID:        m.nextMessageID,
		Question:  in.Question,
		Answer:    in.Answer,
		Citation:  in.Citation,
		Tags:      normalizeTags(in.Tags),
		Timestamp: m.now(),
	}
	m.nextMessageID++
	m.messages[msg.ID] = msg

	out := msg
	out.Tags = normalizeTags(msg.Tags)
	return &out, nil
}

func (m *Memory) GetRecentMessages(_ context.Context, limit int) ([]models.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]models.ChatMessage, 0, len(m.messages))
	for _, msg := range m.messages {
		msg.Tags = normalizeTags(msg.Tags)
		all = append(all, msg)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Timestamp.Equal(all[j].Timestamp) {
			return all[i].ID > all[j].ID
		}
		return all[i].Timestamp.After(all[j].Timestamp)
	})

	if limit < 0 {
		limit = 0
	}
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *Memory) GetUser(_ context.Context, id int64) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *Memory) CreateUser(_ context.Context, in models.NewUser) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == in.Username {
			return nil, ErrUserExists
		}
	}

	u := models.User{
		ID:       m.nextUserID,
		Username: in.Username,
		Password: in.Password,
	}
	m.nextUserID++
	m.users[u.ID] = u
	return &u, nil
}

func (m *Memory) Close() error {
	return nil
}
