package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/RichardoC/drivewise/internal/config"
	"github.com/RichardoC/drivewise/internal/models"
	"github.com/redis/go-redis/v9"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("username already taken")
)

// Store keeps chat history and users. Chat messages are append-only.
type Store interface {
	CreateChatMessage(ctx context.Context, msg models.NewChatMessage) (*models.ChatMessage, error)
	// GetRecentMessages returns at most limit messages, newest first.
	GetRecentMessages(ctx context.Context, limit int) ([]models.ChatMessage, error)

	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user models.NewUser) (*models.User, error)

	Close() error
}

// Open returns the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.Storage) (Store, error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		return NewMemory(), nil
	case config.DriverSQLite:
		return NewSQLite(cfg.SQLitePath)
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis at %s: %w", cfg.Redis.Addr, err)
		}
		return NewRedis(client, cfg.Redis.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func normalizeTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return append([]string(nil), tags...)
}
