package contract

import "time"

// ToolResult is the structured outcome of one tool invocation. Soft business
// outcomes (insufficient funds, disabled feature) travel inside Result;
// Error carries hard tool failures and is reported back to the model as the
// tool output, never dropped.
type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ChatRequest is one user turn entering the agent. ThreadID may be empty or
// unknown, in which case a fresh conversation is started.
type ChatRequest struct {
	ThreadID   string `json:"thread_id,omitempty"`
	CustomerID string `json:"customer_id"`
	Message    string `json:"message"`
}

// ChatReply is the assistant's answer for one completed turn.
type ChatReply struct {
	ThreadID   string    `json:"thread_id"`
	CustomerID string    `json:"customer_id"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}
