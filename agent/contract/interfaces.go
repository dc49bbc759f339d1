package contract

import "context"

// Agent handles one user turn end to end: session bookkeeping, model
// exchange, tool dispatch, and the final assistant reply.
type Agent interface {
	HandleMessage(ctx context.Context, req ChatRequest) (ChatReply, error)
}
