package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/banking-support-agent/agent/contract"
	flagsx "github.com/tanpawarit/banking-support-agent/agent/flags"
	ledgerx "github.com/tanpawarit/banking-support-agent/agent/ledger"
)

type DeepResearchOutput struct {
	Analysis string `json:"analysis"`
}

type DisputeOutput struct {
	Status   string `json:"status"`
	TicketID string `json:"ticketId,omitempty"`
	Message  string `json:"message,omitempty"`
}

type SupportOutput struct {
	Info string `json:"info"`
}

const (
	DisputeStatusInitiated = "Dispute initiated"
	DisputeStatusFailed    = "failed"
)

var supportKnowledgeBase = map[string]string{
	"fees":  "Monthly maintenance fee is $10, waived with $5000 minimum balance.",
	"hours": "Branches are open 9am-5pm Mon-Fri.",
	"cards": "To report a lost card, call 1-800-LOST-CARD immediately.",
}

func (e *executor) executeDeepResearch(tool string, args map[string]any) (contractx.ToolResult, error) {
	customerID, ok := stringArg(args, "customerId")
	if !ok {
		return errorResult(tool, "customerId is required"), nil
	}
	query, ok := stringArg(args, "query")
	if !ok {
		return errorResult(tool, "query is required"), nil
	}

	customer, err := e.store.Customer(customerID)
	if err != nil {
		if errors.Is(err, ledgerx.ErrCustomerNotFound) {
			return errorResult(tool, "Customer not found"), nil
		}
		return contractx.ToolResult{}, err
	}

	analysis := fmt.Sprintf("Deep research analysis for %s:\n", customer.Name)
	normalized := strings.ToLower(query)
	switch {
	case strings.Contains(normalized, "spending"):
		analysis += "Spending has increased by 15% over the last quarter. Major categories: Software, Marketing."
	case strings.Contains(normalized, "quarter"):
		analysis += "Q3 results show a net positive cash flow. Savings have grown by 5%."
	default:
		analysis += "Customer financial health is stable. Consistent income streams detected."
	}

	return contractx.ToolResult{
		Tool:   tool,
		Result: DeepResearchOutput{Analysis: analysis},
	}, nil
}

func (e *executor) executeTransactionDispute(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
	if _, ok := stringArg(args, "customerId"); !ok {
		return errorResult(tool, "customerId is required"), nil
	}
	transactionID, ok := stringArg(args, "transactionId")
	if !ok {
		return errorResult(tool, "transactionId is required"), nil
	}
	if _, ok := stringArg(args, "reason"); !ok {
		return errorResult(tool, "reason is required"), nil
	}

	if !e.oracle.Enabled(ctx, flagsx.FlagTransactionDispute) {
		return contractx.ToolResult{
			Tool: tool,
			Result: DisputeOutput{
				Status:  DisputeStatusFailed,
				Message: "Transaction dispute feature is currently unavailable.",
			},
		}, nil
	}

	return contractx.ToolResult{
		Tool: tool,
		Result: DisputeOutput{
			Status:   DisputeStatusInitiated,
			TicketID: fmt.Sprintf("ticket_%s_%d", transactionID, e.now().UnixMilli()),
		},
	}, nil
}

func (e *executor) executeCommonSupport(tool string, args map[string]any) (contractx.ToolResult, error) {
	topic, ok := stringArg(args, "topic")
	if !ok {
		return errorResult(tool, "topic is required"), nil
	}

	normalized := strings.ToLower(topic)
	for key, info := range supportKnowledgeBase {
		if strings.Contains(normalized, key) {
			return contractx.ToolResult{
				Tool:   tool,
				Result: SupportOutput{Info: info},
			}, nil
		}
	}

	return contractx.ToolResult{
		Tool:   tool,
		Result: SupportOutput{Info: "Please contact our support hotline for this specific issue."},
	}, nil
}
