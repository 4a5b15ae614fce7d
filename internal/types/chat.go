package types

import "time"

// ChatHistory is one turn of a conversation: the user message and the
// assistant response stored together.
type ChatHistory struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"-"`
	Username       string    `json:"username"`
	UserMessage    string    `json:"userMessage"`
	AiResponse     string    `json:"aiResponse"`
	ConversationID string    `json:"conversationId"`
	Timestamp      time.Time `json:"timestamp"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
}

// ConversationStats summarises one conversation for the admin surface.
type ConversationStats struct {
	ConversationID string    `json:"conversationId"`
	Username       string    `json:"username"`
	MessageCount   int       `json:"messageCount"`
	FirstMessage   time.Time `json:"firstMessage"`
	LastMessage    time.Time `json:"lastMessage"`
}

// ConversationDeletion reports what a conversation delete removed.
type ConversationDeletion struct {
	Stats   ConversationStats `json:"stats"`
	Deleted bool              `json:"deleted"`
}
