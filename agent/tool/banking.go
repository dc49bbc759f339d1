package tool

import (
	"errors"

	contractx "github.com/tanpawarit/banking-support-agent/agent/contract"
	ledgerx "github.com/tanpawarit/banking-support-agent/agent/ledger"
)

type AccountSummary struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
}

type ListAccountsOutput struct {
	Accounts []AccountSummary `json:"accounts"`
}

type AccountBalanceOutput struct {
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
}

type TransactionSummary struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Merchant    string  `json:"merchant"`
}

type ListTransactionsOutput struct {
	Transactions []TransactionSummary `json:"transactions"`
}

func (e *executor) executeListAccounts(tool string, args map[string]any) (contractx.ToolResult, error) {
	customerID, ok := stringArg(args, "customerId")
	if !ok {
		return errorResult(tool, "customerId is required"), nil
	}

	customer, err := e.store.Customer(customerID)
	if err != nil {
		if errors.Is(err, ledgerx.ErrCustomerNotFound) {
			return errorResult(tool, "Customer %s not found", customerID), nil
		}
		return contractx.ToolResult{}, err
	}

	accounts := make([]AccountSummary, 0, len(customer.Accounts))
	for _, a := range customer.Accounts {
		accounts = append(accounts, AccountSummary{
			ID:       a.ID,
			Type:     string(a.Type),
			Balance:  a.Balance,
			Currency: a.Currency,
		})
	}

	return contractx.ToolResult{
		Tool:   tool,
		Result: ListAccountsOutput{Accounts: accounts},
	}, nil
}

func (e *executor) executeGetAccountBalance(tool string, args map[string]any) (contractx.ToolResult, error) {
	customerID, ok := stringArg(args, "customerId")
	if !ok {
		return errorResult(tool, "customerId is required"), nil
	}
	accountID, ok := stringArg(args, "accountId")
	if !ok {
		return errorResult(tool, "accountId is required"), nil
	}

	account, err := e.store.Account(customerID, accountID)
	if err != nil {
		if errors.Is(err, ledgerx.ErrAccountNotFound) {
			return errorResult(tool, "Account %s not found for customer %s", accountID, customerID), nil
		}
		return contractx.ToolResult{}, err
	}

	return contractx.ToolResult{
		Tool: tool,
		Result: AccountBalanceOutput{
			Balance:  account.Balance,
			Currency: account.Currency,
		},
	}, nil
}

func (e *executor) executeListTransactions(tool string, args map[string]any) (contractx.ToolResult, error) {
	customerID, ok := stringArg(args, "customerId")
	if !ok {
		return errorResult(tool, "customerId is required"), nil
	}
	accountID, ok := stringArg(args, "accountId")
	if !ok {
		return errorResult(tool, "accountId is required"), nil
	}

	limit := defaultTransactionLimit
	if raw, ok := numberArg(args, "limit"); ok && raw > 0 {
		limit = int(raw)
	}

	txs, err := e.store.Transactions(customerID, accountID, limit)
	if err != nil {
		if errors.Is(err, ledgerx.ErrAccountNotFound) {
			return errorResult(tool, "Account %s not found for customer %s", accountID, customerID), nil
		}
		return contractx.ToolResult{}, err
	}

	out := make([]TransactionSummary, 0, len(txs))
	for _, tx := range txs {
		out = append(out, TransactionSummary{
			ID:          tx.ID,
			Date:        tx.Date,
			Amount:      tx.Amount,
			Description: tx.Description,
			Merchant:    tx.Merchant,
		})
	}

	return contractx.ToolResult{
		Tool:   tool,
		Result: ListTransactionsOutput{Transactions: out},
	}, nil
}

func (e *executor) executeTransferFunds(tool string, args map[string]any) (contractx.ToolResult, error) {
	customerID, ok := stringArg(args, "customerId")
	if !ok {
		return errorResult(tool, "customerId is required"), nil
	}
	fromAccountID, ok := stringArg(args, "fromAccountId")
	if !ok {
		return errorResult(tool, "fromAccountId is required"), nil
	}
	toAccountID, ok := stringArg(args, "toAccountId")
	if !ok {
		return errorResult(tool, "toAccountId is required"), nil
	}
	amount, ok := numberArg(args, "amount")
	if !ok {
		return errorResult(tool, "amount is required"), nil
	}

	result, err := e.store.Transfer(customerID, fromAccountID, toAccountID, amount)
	if err != nil {
		switch {
		case errors.Is(err, ledgerx.ErrInvalidAmount):
			return errorResult(tool, "amount must be positive"), nil
		case errors.Is(err, ledgerx.ErrAccountNotFound):
			return errorResult(tool, "One or both accounts not found."), nil
		default:
			return contractx.ToolResult{}, err
		}
	}

	return contractx.ToolResult{
		Tool:   tool,
		Result: result,
	}, nil
}
