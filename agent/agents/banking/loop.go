package banking

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/banking-support-agent/agent/contract"
	statex "github.com/tanpawarit/banking-support-agent/agent/state"
)

// runDispatchLoop drives the model until it produces a plain reply.
// Each round the model either answers, which ends the loop, or requests
// tool calls, which are executed and fed back as tool messages. The
// round cap keeps a confused model from looping forever.
func (s *Service) runDispatchLoop(ctx context.Context, in *graphState) (*graphState, error) {
	messages := s.seedMessages(in.session)

	for round := 0; round < s.maxToolRounds; round++ {
		resp, err := s.chatModel.Generate(ctx, messages)
		if err != nil {
			return nil, fmt.Errorf("%w: generate round=%d: %v", contractx.ErrModelInvoke, round, err)
		}
		if resp == nil {
			return nil, fmt.Errorf("%w: model returned no message", contractx.ErrSchemaViolation)
		}

		if len(resp.ToolCalls) == 0 {
			reply := strings.TrimSpace(resp.Content)
			if reply == "" {
				return nil, fmt.Errorf("%w: model reply is empty", contractx.ErrSchemaViolation)
			}
			in.reply = reply
			return in, nil
		}

		messages = append(messages, resp)
		for _, call := range resp.ToolCalls {
			toolMsg, err := s.executeToolCall(ctx, call)
			if err != nil {
				return nil, err
			}
			messages = append(messages, toolMsg)
		}
	}

	return nil, fmt.Errorf("%w: thread=%s rounds=%d", contractx.ErrToolRoundsExceeded, in.session.ThreadID, s.maxToolRounds)
}

// seedMessages rebuilds the model context from the stored thread.
func (s *Service) seedMessages(session *statex.ConversationState) []*schema.Message {
	messages := make([]*schema.Message, 0, len(session.Messages)+2)
	messages = append(messages, schema.SystemMessage(s.systemPrompt))
	messages = append(messages, schema.SystemMessage(
		fmt.Sprintf("The current customer id is %s. Use it for all account lookups.", session.CustomerID),
	))
	for _, msg := range session.Messages {
		switch msg.Role {
		case statex.RoleUser:
			messages = append(messages, schema.UserMessage(msg.Content))
		case statex.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return messages
}

func (s *Service) executeToolCall(ctx context.Context, call schema.ToolCall) (*schema.Message, error) {
	tool := strings.TrimSpace(call.Function.Name)
	if tool == "" {
		return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
	}

	args := map[string]any{}
	rawArgs := strings.TrimSpace(call.Function.Arguments)
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return nil, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, tool, err)
		}
	}

	result, err := s.executor(ctx, tool, args)
	if err != nil {
		return nil, fmt.Errorf("execute tool=%s: %w", tool, err)
	}
	if result.Error != "" {
		log.Warn().Str("tool", tool).Str("error", result.Error).Msg("tool reported an error")
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result for tool=%s: %w", tool, err)
	}
	return schema.ToolMessage(string(payload), call.ID), nil
}
