package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RichardoC/drivewise/internal/models"
	"github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS chat_messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    question TEXT NOT NULL,
    answer TEXT NOT NULL,
    citation TEXT,
    tags TEXT NOT NULL DEFAULT '[]',
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS chat_messages_created_at ON chat_messages(created_at DESC, id DESC);

CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL
);`

// SQLite is a Store backed by a single sqlite file. created_at holds unix nanoseconds.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// one connection: writes are serialized and ":memory:" databases stay shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db, now: time.Now}, nil
}

func (s *SQLite) CreateChatMessage(ctx context.Context, in models.NewChatMessage) (*models.ChatMessage, error) {
	tags, err := json.Marshal(normalizeTags(in.Tags))
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	msg := &models.ChatMessage{
		Question:  in.Question,
		Answer:    in.Answer,
		Citation:  in.Citation,
		Tags:      normalizeTags(in.Tags),
		Timestamp: s.now(),
	}

	query := `
        INSERT INTO chat_messages (question, answer, citation, tags, created_at)
        VALUES (?, ?, ?, ?, ?)
        RETURNING id`

	citation := sql.NullString{String: in.Citation, Valid: in.Citation != ""}
	err = s.db.QueryRowContext(ctx, query, in.Question, in.Answer, citation, string(tags), msg.Timestamp.UnixNano()).
		Scan(&msg.ID)
	if err != nil {
		return nil, fmt.Errorf("insert chat message: %w", err)
	}
	return msg, nil
}

func (s *SQLite) GetRecentMessages(ctx context.Context, limit int) ([]models.ChatMessage, error) {
	messages := make([]models.ChatMessage, 0)
	if limit <= 0 {
		return messages, nil
	}

	query := `
        SELECT id, question, answer, citation, tags, created_at
        FROM chat_messages
        ORDER BY created_at DESC, id DESC
        LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			msg      models.ChatMessage
			citation sql.NullString
			tags     string
			created  int64
		)
		if err := rows.Scan(&msg.ID, &msg.Question, &msg.Answer, &citation, &tags, &created); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &msg.Tags); err != nil {
			return nil, fmt.Errorf("decode tags of message %d: %w", msg.ID, err)
		}
		msg.Tags = normalizeTags(msg.Tags)
		msg.Citation = citation.String
		msg.Timestamp = time.Unix(0, created)
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (s *SQLite) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, password FROM users WHERE id = ?`, id))
}

func (s *SQLite) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, password FROM users WHERE username = ?`, username))
}

func (s *SQLite) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Password); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *SQLite) CreateUser(ctx context.Context, in models.NewUser) (*models.User, error) {
	query := `
        INSERT INTO users (username, password)
        VALUES (?, ?)
        RETURNING id`

	u := &models.User{Username: in.Username, Password: in.Password}
	if err := s.db.QueryRowContext(ctx, query, in.Username, in.Password).Scan(&u.ID); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
