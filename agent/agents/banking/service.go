package banking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"

	contractx "github.com/tanpawarit/banking-support-agent/agent/contract"
	statex "github.com/tanpawarit/banking-support-agent/agent/state"
	toolx "github.com/tanpawarit/banking-support-agent/agent/tool"
)

var (
	ErrInvalidCustomer = errors.New("customer id is required")
	ErrInvalidMessage  = errors.New("message is required")
)

const defaultMaxToolRounds = 8

// Config tunes the banking agent.
type Config struct {
	// SystemPrompt is the base instruction prepended to every model call.
	SystemPrompt string
	// MaxToolRounds caps how many tool-execution rounds a single chat
	// turn may run before the turn fails. Zero means the default of 8.
	MaxToolRounds int
}

// Service answers customer support messages with a tool-calling model.
// One Service handles many threads concurrently; per-thread history
// lives in the session store.
type Service struct {
	sessions  statex.Store
	chatModel einomodel.ToolCallingChatModel
	executor  toolx.Executor

	graphRunner compose.Runnable[contractx.ChatRequest, contractx.ChatReply]

	systemPrompt  string
	maxToolRounds int

	now         func() time.Time
	newThreadID func() string
}

var _ contractx.Agent = (*Service)(nil)

func New(
	sessions statex.Store,
	chatModel einomodel.ToolCallingChatModel,
	executor toolx.Executor,
	cfg Config,
) (*Service, error) {
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	if executor == nil {
		return nil, errors.New("tool executor is required")
	}

	boundModel, err := chatModel.WithTools(toolx.Infos())
	if err != nil {
		return nil, fmt.Errorf("%w: bind banking tools: %v", contractx.ErrModelInvoke, err)
	}

	maxToolRounds := cfg.MaxToolRounds
	if maxToolRounds <= 0 {
		maxToolRounds = defaultMaxToolRounds
	}

	s := &Service{
		sessions:      sessions,
		chatModel:     boundModel,
		executor:      executor,
		systemPrompt:  strings.TrimSpace(cfg.SystemPrompt),
		maxToolRounds: maxToolRounds,
		now:           time.Now,
		newThreadID: func() string {
			return "thread_" + uuid.NewString()
		},
	}

	graphRunner, err := s.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	s.graphRunner = graphRunner

	return s, nil
}

// HandleMessage runs one chat turn: it loads or creates the thread,
// appends the customer message, drives the model and its tools to a
// final reply, and persists the updated history.
func (s *Service) HandleMessage(ctx context.Context, req contractx.ChatRequest) (contractx.ChatReply, error) {
	return s.graphRunner.Invoke(ctx, req)
}
