package state

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/banking-support-agent/agent/contract"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation as stored in the session log.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationState is the full history of one support thread.
type ConversationState struct {
	ThreadID   string    `json:"threadId"`
	CustomerID string    `json:"customerId"`
	Messages   []Message `json:"messages"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewConversationState starts an empty thread for a customer.
func NewConversationState(threadID, customerID string, now time.Time) *ConversationState {
	return &ConversationState{
		ThreadID:   threadID,
		CustomerID: customerID,
		Messages:   []Message{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// AppendUser records an inbound customer message.
func (c *ConversationState) AppendUser(content string, now time.Time) {
	c.Messages = append(c.Messages, Message{Role: RoleUser, Content: content, Timestamp: now})
	c.UpdatedAt = now
}

// AppendAssistant records the agent's reply.
func (c *ConversationState) AppendAssistant(content string, now time.Time) {
	c.Messages = append(c.Messages, Message{Role: RoleAssistant, Content: content, Timestamp: now})
	c.UpdatedAt = now
}

// Validate checks the identifying fields before the state is persisted.
func (c *ConversationState) Validate() error {
	if strings.TrimSpace(c.ThreadID) == "" {
		return fmt.Errorf("%w: threadID is empty", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.CustomerID) == "" {
		return fmt.Errorf("%w: customerID is empty", contractx.ErrValidation)
	}
	return nil
}

// Clone returns a deep copy so callers can mutate without racing the store.
func (c *ConversationState) Clone() *ConversationState {
	cp := *c
	cp.Messages = make([]Message, len(c.Messages))
	copy(cp.Messages, c.Messages)
	return &cp
}
