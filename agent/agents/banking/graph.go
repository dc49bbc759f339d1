package banking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/tanpawarit/banking-support-agent/agent/contract"
	statex "github.com/tanpawarit/banking-support-agent/agent/state"
)

// graphState is the payload threaded through the chat-turn graph.
type graphState struct {
	req     contractx.ChatRequest
	session *statex.ConversationState
	reply   string
}

func (s *Service) compileHandleMessageGraph(
	ctx context.Context,
) (compose.Runnable[contractx.ChatRequest, contractx.ChatReply], error) {
	graph := compose.NewGraph[contractx.ChatRequest, contractx.ChatReply]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, req contractx.ChatRequest) (*graphState, error) {
			return s.validateRequest(req)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_or_create_session",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return s.loadOrCreateSession(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_or_create_session: %w", err)
	}

	if err := graph.AddLambdaNode("record_user_message",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return s.recordUserMessage(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node record_user_message: %w", err)
	}

	if err := graph.AddLambdaNode("run_dispatch_loop",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return s.runDispatchLoop(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node run_dispatch_loop: %w", err)
	}

	if err := graph.AddLambdaNode("record_assistant_message",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return s.recordAssistantMessage(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node record_assistant_message: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (contractx.ChatReply, error) {
			return s.finalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_or_create_session"},
		{"load_or_create_session", "record_user_message"},
		{"record_user_message", "run_dispatch_loop"},
		{"run_dispatch_loop", "record_assistant_message"},
		{"record_assistant_message", "finalize_reply"},
		{"finalize_reply", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("banking.handle_message"))
	if err != nil {
		return nil, fmt.Errorf("compile banking graph: %w", err)
	}
	return runner, nil
}

func (s *Service) validateRequest(req contractx.ChatRequest) (*graphState, error) {
	req.CustomerID = strings.TrimSpace(req.CustomerID)
	req.Message = strings.TrimSpace(req.Message)
	req.ThreadID = strings.TrimSpace(req.ThreadID)

	if req.CustomerID == "" {
		return nil, fmt.Errorf("%w: %v", contractx.ErrValidation, ErrInvalidCustomer)
	}
	if req.Message == "" {
		return nil, fmt.Errorf("%w: %v", contractx.ErrValidation, ErrInvalidMessage)
	}
	return &graphState{req: req}, nil
}

func (s *Service) loadOrCreateSession(ctx context.Context, in *graphState) (*graphState, error) {
	if in.req.ThreadID == "" {
		in.req.ThreadID = s.newThreadID()
		in.session = statex.NewConversationState(in.req.ThreadID, in.req.CustomerID, s.now())
		return in, nil
	}

	session, err := s.sessions.Load(ctx, in.req.ThreadID)
	if err != nil {
		if errors.Is(err, statex.ErrStateNotFound) {
			in.session = statex.NewConversationState(in.req.ThreadID, in.req.CustomerID, s.now())
			return in, nil
		}
		return nil, fmt.Errorf("load session thread=%s: %w", in.req.ThreadID, err)
	}
	in.session = session
	return in, nil
}

// recordUserMessage persists the user turn before the model runs, so a
// later model or tool failure still leaves the question in the thread.
func (s *Service) recordUserMessage(ctx context.Context, in *graphState) (*graphState, error) {
	in.session.AppendUser(in.req.Message, s.now())
	if err := s.sessions.Save(ctx, in.session); err != nil {
		return nil, fmt.Errorf("save session thread=%s: %w", in.session.ThreadID, err)
	}
	return in, nil
}

func (s *Service) recordAssistantMessage(ctx context.Context, in *graphState) (*graphState, error) {
	in.session.AppendAssistant(in.reply, s.now())
	if err := s.sessions.Save(ctx, in.session); err != nil {
		return nil, fmt.Errorf("save session thread=%s: %w", in.session.ThreadID, err)
	}
	return in, nil
}

func (s *Service) finalizeReply(in *graphState) (contractx.ChatReply, error) {
	return contractx.ChatReply{
		ThreadID:   in.session.ThreadID,
		CustomerID: in.session.CustomerID,
		Message:    in.reply,
		Timestamp:  s.now(),
	}, nil
}
