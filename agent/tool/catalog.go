package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/banking-support-agent/agent/contract"
	flagsx "github.com/tanpawarit/banking-support-agent/agent/flags"
	ledgerx "github.com/tanpawarit/banking-support-agent/agent/ledger"
)

const (
	ToolListAccounts       = "list-accounts"
	ToolGetAccountBalance  = "get-account-balance"
	ToolListTransactions   = "list-transactions"
	ToolTransferFunds      = "transfer-funds"
	ToolDeepResearch       = "deep-research"
	ToolTransactionDispute = "transaction-dispute"
	ToolCommonSupport      = "common-support"
)

const defaultTransactionLimit = 5

// Executor runs one named tool against its declared input. Hard tool
// failures (unknown customer, bad arguments) come back in ToolResult.Error;
// a non-nil Go error is reserved for infrastructure problems.
type Executor func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error)

type executor struct {
	store  *ledgerx.Store
	oracle *flagsx.Oracle
	now    func() time.Time
}

// ExecutorOption customizes tool execution.
type ExecutorOption func(*executor)

// WithClock overrides the dispute ticket timestamp source.
func WithClock(now func() time.Time) ExecutorOption {
	return func(e *executor) {
		if now != nil {
			e.now = now
		}
	}
}

// NewExecutor binds the tool catalog to a ledger store and flag oracle.
func NewExecutor(store *ledgerx.Store, oracle *flagsx.Oracle, opts ...ExecutorOption) Executor {
	e := &executor{
		store:  store,
		oracle: oracle,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	return func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
		switch tool {
		case ToolListAccounts:
			return e.executeListAccounts(tool, args)
		case ToolGetAccountBalance:
			return e.executeGetAccountBalance(tool, args)
		case ToolListTransactions:
			return e.executeListTransactions(tool, args)
		case ToolTransferFunds:
			return e.executeTransferFunds(tool, args)
		case ToolDeepResearch:
			return e.executeDeepResearch(tool, args)
		case ToolTransactionDispute:
			return e.executeTransactionDispute(ctx, tool, args)
		case ToolCommonSupport:
			return e.executeCommonSupport(tool, args)
		default:
			return contractx.ToolResult{
				Tool:  tool,
				Error: fmt.Sprintf("tool=%s is not available", tool),
			}, nil
		}
	}
}

// Infos declares the full tool catalog presented to the model.
func Infos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: ToolListAccounts,
			Desc: "List all accounts for a customer.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"customerId": {Type: schema.String, Desc: "Customer identifier", Required: true},
			}),
		},
		{
			Name: ToolGetAccountBalance,
			Desc: "Get the balance of a specific account.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"customerId": {Type: schema.String, Desc: "Customer identifier", Required: true},
				"accountId":  {Type: schema.String, Desc: "Account identifier", Required: true},
			}),
		},
		{
			Name: ToolListTransactions,
			Desc: "List transactions for a specific account.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"customerId": {Type: schema.String, Desc: "Customer identifier", Required: true},
				"accountId":  {Type: schema.String, Desc: "Account identifier", Required: true},
				"limit":      {Type: schema.Integer, Desc: "Maximum number of transactions to return (default 5)", Required: false},
			}),
		},
		{
			Name: ToolTransferFunds,
			Desc: "Transfer funds between two accounts.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"customerId":    {Type: schema.String, Desc: "Customer identifier", Required: true},
				"fromAccountId": {Type: schema.String, Desc: "Source account identifier", Required: true},
				"toAccountId":   {Type: schema.String, Desc: "Destination account identifier", Required: true},
				"amount":        {Type: schema.Number, Desc: "Amount to transfer, must be positive", Required: true},
			}),
		},
		{
			Name: ToolDeepResearch,
			Desc: "Analyze customer history and provide insights on spending trends and financial health.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"customerId": {Type: schema.String, Desc: "Customer identifier", Required: true},
				"query":      {Type: schema.String, Desc: `Specific aspect to analyze, e.g., "spending trends", "quarterly results"`, Required: true},
			}),
		},
		{
			Name: ToolTransactionDispute,
			Desc: "Initiate a dispute for a specific transaction.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"customerId":    {Type: schema.String, Desc: "Customer identifier", Required: true},
				"transactionId": {Type: schema.String, Desc: "Transaction to dispute", Required: true},
				"reason":        {Type: schema.String, Desc: "Reason for the dispute", Required: true},
			}),
		},
		{
			Name: ToolCommonSupport,
			Desc: "Provide answers to common banking support questions.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"topic": {Type: schema.String, Desc: `The support topic, e.g., "fees", "hours", "cards"`, Required: true},
			}),
		},
	}
}

func stringArg(args map[string]any, key string) (string, bool) {
	raw, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func numberArg(args map[string]any, key string) (float64, bool) {
	raw, ok := args[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func errorResult(tool, format string, a ...any) contractx.ToolResult {
	return contractx.ToolResult{
		Tool:  tool,
		Error: fmt.Sprintf(format, a...),
	}
}
