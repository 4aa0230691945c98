package models

import "time"

// ChatMessage is a stored question together with the answer it received.
// Once created it is never mutated.
type ChatMessage struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Citation  string    `json:"citation,omitempty"`
	Tags      []string  `json:"tags"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChatMessage holds the fields a caller supplies; the store assigns ID and Timestamp.
type NewChatMessage struct {
	Question string
	Answer   string
	Citation string
	Tags     []string
}

// Answer is what the assistant produced for a single question.
type Answer struct {
	Answer   string   `json:"answer"`
	Citation string   `json:"citation,omitempty"`
	Tags     []string `json:"tags"`
}
