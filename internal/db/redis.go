package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/RichardoC/drivewise/internal/models"
	"github.com/redis/go-redis/v9"
)

// Redis is a Store for deployments that run more than one server process.
// Messages live under <prefix>:message:<id> and are indexed by id in a sorted set;
// ids are issued by INCR, so id order is creation order.
type Redis struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

type redisMessage struct {
	ID        int64    `json:"id"`
	Question  string   `json:"question"`
	Answer    string   `json:"answer"`
	Citation  string   `json:"citation,omitempty"`
	Tags      []string `json:"tags"`
	CreatedAt int64    `json:"created_at"`
}

type redisUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func NewRedis(rdb *redis.Client, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix, now: time.Now}
}

func (r *Redis) key(parts ...string) string {
	k := r.prefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

func (r *Redis) CreateChatMessage(ctx context.Context, in models.NewChatMessage) (*models.ChatMessage, error) {
	id, err := r.rdb.Incr(ctx, r.key("message", "seq")).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate message id: %w", err)
	}

	msg := models.ChatMessage{
		ID:        id,
		Question:  in.Question,
		Answer:    in.Answer,
		Citation:  in.Citation,
		Tags:      normalizeTags(in.Tags),
		Timestamp: r.now(),
	}
	raw, err := json.Marshal(redisMessage{
		ID:        msg.ID,
		Question:  msg.Question,
		Answer:    msg.Answer,
		Citation:  msg.Citation,
		Tags:      msg.Tags,
		CreatedAt: msg.Timestamp.UnixNano(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode message %d: %w", id, err)
	}

	idStr := strconv.FormatInt(id, 10)
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key("message", idStr), raw, 0)
		pipe.ZAdd(ctx, r.key("messages"), redis.Z{Score: float64(id), Member: idStr})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save message %d: %w", id, err)
	}
	return &msg, nil
}

func (r *Redis) GetRecentMessages(ctx context.Context, limit int) ([]models.ChatMessage, error) {
	messages := make([]models.ChatMessage, 0)
	if limit <= 0 {
		return messages, nil
	}

	ids, err := r.rdb.ZRevRange(ctx, r.key("messages"), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list message ids: %w", err)
	}
	if len(ids) == 0 {
		return messages, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key("message", id)
	}
	values, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// indexed but body missing; skip rather than fail the whole page
			continue
		}
		var rm redisMessage
		if err := json.Unmarshal([]byte(s), &rm); err != nil {
			return nil, fmt.Errorf("failed to decode message %s: %w", ids[i], err)
		}
		messages = append(messages, models.ChatMessage{
			ID:        rm.ID,
			Question:  rm.Question,
			Answer:    rm.Answer,
			Citation:  rm.Citation,
			Tags:      normalizeTags(rm.Tags),
			Timestamp: time.Unix(0, rm.CreatedAt),
		})
	}
	return messages, nil
}

func (r *Redis) GetUser(ctx context.Context, id int64) (*models.User, error) {
	raw, err := r.rdb.Get(ctx, r.key("user", strconv.FormatInt(id, 10))).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	var ru redisUser
	if err := json.Unmarshal([]byte(raw), &ru); err != nil {
		return nil, fmt.Errorf("failed to decode user %d: %w", id, err)
	}
	return &models.User{ID: ru.ID, Username: ru.Username, Password: ru.Password}, nil
}

func (r *Redis) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	id, err := r.rdb.Get(ctx, r.key("username", username)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user id for %s: %w", username, err)
	}
	return r.GetUser(ctx, id)
}

func (r *Redis) CreateUser(ctx context.Context, in models.NewUser) (*models.User, error) {
	nameKey := r.key("username", in.Username)
	// reserve the username before issuing an id
	ok, err := r.rdb.SetNX(ctx, nameKey, 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to reserve username %s: %w", in.Username, err)
	}
	if !ok {
		return nil, ErrUserExists
	}

	id, err := r.rdb.Incr(ctx, r.key("user", "seq")).Result()
	if err != nil {
		r.rdb.Del(ctx, nameKey)
		return nil, fmt.Errorf("failed to allocate user id: %w", err)
	}

	raw, err := json.Marshal(redisUser{ID: id, Username: in.Username, Password: in.Password})
	if err != nil {
		r.rdb.Del(ctx, nameKey)
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key("user", strconv.FormatInt(id, 10)), raw, 0)
		pipe.Set(ctx, nameKey, id, 0)
		return nil
	})
	if err != nil {
		r.rdb.Del(ctx, nameKey)
		return nil, fmt.Errorf("failed to save user %d: %w", id, err)
	}
	return &models.User{ID: id, Username: in.Username, Password: in.Password}, nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
