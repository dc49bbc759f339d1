package tool

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	flagsx "github.com/tanpawarit/banking-support-agent/agent/flags"
	ledgerx "github.com/tanpawarit/banking-support-agent/agent/ledger"
)

type fakeFlagSource struct {
	enabled bool
	err     error
}

func (f *fakeFlagSource) State(ctx context.Context, flag string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.enabled, nil
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func newTestExecutor(t *testing.T, src flagsx.Source) Executor {
	t.Helper()
	store := ledgerx.NewStore(ledgerx.SeedCustomers())
	return NewExecutor(store, flagsx.NewOracle(src), WithClock(fixedClock))
}

func TestInfosDeclaresFullCatalog(t *testing.T) {
	t.Parallel()

	infos := Infos()
	if len(infos) != 7 {
		t.Fatalf("Infos() len = %d, want 7", len(infos))
	}
	want := []string{
		ToolListAccounts,
		ToolGetAccountBalance,
		ToolListTransactions,
		ToolTransferFunds,
		ToolDeepResearch,
		ToolTransactionDispute,
		ToolCommonSupport,
	}
	for i, info := range infos {
		if info.Name != want[i] {
			t.Fatalf("Infos()[%d].Name = %q, want %q", i, info.Name, want[i])
		}
		if info.Desc == "" {
			t.Fatalf("Infos()[%d] has no description", i)
		}
	}
}

func TestExecutorUnknownTool(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(t, &fakeFlagSource{})
	out, err := exec(context.Background(), "time-travel", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error == "" {
		t.Fatal("expected unavailable-tool error")
	}
}

func TestListAccounts(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(t, &fakeFlagSource{})
	out, err := exec(context.Background(), ToolListAccounts, map[string]any{"customerId": "cust_123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error != "" {
		t.Fatalf("unexpected tool error: %s", out.Error)
	}
	result, ok := out.Result.(ListAccountsOutput)
	if !ok {
		t.Fatalf("unexpected result type: %T", out.Result)
	}
	if len(result.Accounts) != 2 {
		t.Fatalf("accounts = %d, want 2", len(result.Accounts))
	}
	if result.Accounts[0].ID != "acc_checking_1" || result.Accounts[0].Type != "checking" {
		t.Fatalf("unexpected first account: %+v", result.Accounts[0])
	}
}

func TestListAccountsUnknownCustomer(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(t, &fakeFlagSource{})
	out, err := exec(context.Background(), ToolListAccounts, map[string]any{"customerId": "cust_999"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error != "Customer cust_999 not found" {
		t.Fatalf("tool error = %q", out.Error)
	}
}

func TestGetAccountBalanceMatchesLedger(t *testing.T) {
	t.Parallel()

	store := ledgerx.NewStore(ledgerx.SeedCustomers())
	exec := NewExecutor(store, flagsx.NewOracle(&fakeFlagSource{}))

	for _, accountID := range []string{"acc_checking_1", "acc_savings_1"} {
		out, err := exec(context.Background(), ToolGetAccountBalance, map[string]any{
			"customerId": "cust_123",
			"accountId":  accountID,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		result, ok := out.Result.(AccountBalanceOutput)
		if !ok {
			t.Fatalf("unexpected result type: %T", out.Result)
		}
		account, err := store.Account("cust_123", accountID)
		if err != nil {
			t.Fatalf("Account() error = %v", err)
		}
		if result.Balance != account.Balance {
			t.Fatalf("balance = %v, ledger has %v", result.Balance, account.Balance)
		}
		if result.Currency != "USD" {
			t.Fatalf("currency = %q", result.Currency)
		}
	}
}

func TestGetAccountBalanceUnknownAccount(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(t, &fakeFlagSource{})
	out, err := exec(context.Background(), ToolGetAccountBalance, map[string]any{
		"customerId": "cust_123",
		"accountId":  "acc_missing",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error != "Account acc_missing not found for customer cust_123" {
		t.Fatalf("tool error = %q", out.Error)
	}
}

func TestListTransactionsDefaultLimit(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(t, &fakeFlagSource{})
	out, err := exec(context.Background(), ToolListTransactions, map[string]any{
		"customerId": "cust_123",
		"accountId":  "acc_checking_1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, ok := out.Result.(ListTransactionsOutput)
	if !ok {
		t.Fatalf("unexpected result type: %T", out.Result)
	}
	// Seed has four transactions, below the default limit of five.
	if len(result.Transactions) != 4 {
		t.Fatalf("transactions = %d, want 4", len(result.Transactions))
	}
	if result.Transactions[0].ID != "tx_1" {
		t.Fatalf("first transaction = %q, want tx_1", result.Transactions[0].ID)
	}
}

func TestListTransactionsExplicitLimit(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(t, &fakeFlagSource{})
	out, err := exec(context.Background(), ToolListTransactions, map[string]any{
		"customerId": "cust_123",
		"accountId":  "acc_checking_1",
		"limit":      float64(2),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := out.Result.(ListTransactionsOutput)
	if len(result.Transactions) != 2 {
		t.Fatalf("transactions = %d, want 2", len(result.Transactions))
	}
	if result.Transactions[0].ID != "tx_1" || result.Transactions[1].ID != "tx_2" {
		t.Fatalf("unexpected order: %s, %s", result.Transactions[0].ID, result.Transactions[1].ID)
	}
}

func TestTransferFundsScenario(t *testing.T) {
	t.Parallel()

	store := ledgerx.NewStore(ledgerx.SeedCustomers())
	exec := NewExecutor(store, flagsx.NewOracle(&fakeFlagSource{}))

	out, err := exec(context.Background(), ToolTransferFunds, map[string]any{
		"customerId":    "cust_123",
		"fromAccountId": "acc_checking_1",
		"toAccountId":   "acc_savings_1",
		"amount":        float64(500),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, ok := out.Result.(ledgerx.TransferResult)
	if !ok {
		t.Fatalf("unexpected result type: %T", out.Result)
	}
	if !result.Success {
		t.Fatalf("transfer failed: %s", result.Message)
	}
	if result.TransactionID == "" {
		t.Fatal("transaction id is empty")
	}

	from, _ := store.Account("cust_123", "acc_checking_1")
	to, _ := store.Account("cust_123", "acc_savings_1")
	if from.Balance != 49500.00 || to.Balance != 120500.00 {
		t.Fatalf("balances = %v, %v", from.Balance, to.Balance)
	}
}

func TestTransferFundsInsufficient(t *testing.T) {
	t.Parallel()

	store := ledgerx.NewStore(ledgerx.SeedCustomers())
	exec := NewExecutor(store, flagsx.NewOracle(&fakeFlagSource{}))

	out, err := exec(context.Background(), ToolTransferFunds, map[string]any{
		"customerId":    "cust_123",
		"fromAccountId": "acc_checking_1",
		"toAccountId":   "acc_savings_1",
		"amount":        float64(60000),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := out.Result.(ledgerx.TransferResult)
	if result.Success {
		t.Fatal("expected soft failure")
	}
	if result.Message != "Insufficient funds." {
		t.Fatalf("message = %q", result.Message)
	}

	from, _ := store.Account("cust_123", "acc_checking_1")
	if from.Balance != 50000.00 {
		t.Fatalf("source balance mutated: %v", from.Balance)
	}
}

func TestTransferFundsUnknownAccount(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(t, &fakeFlagSource{})
	out, err := exec(context.Background(), ToolTransferFunds, map[string]any{
		"customerId":    "cust_123",
		"fromAccountId": "acc_checking_1",
		"toAccountId":   "acc_missing",
		"amount":        float64(100),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error != "One or both accounts not found." {
		t.Fatalf("tool error = %q", out.Error)
	}
}

func TestTransferFundsMissingAmount(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(t, &fakeFlagSource{})
	out, err := exec(context.Background(), ToolTransferFunds, map[string]any{
		"customerId":    "cust_123",
		"fromAccountId": "acc_checking_1",
		"toAccountId":   "acc_savings_1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error != "amount is required" {
		t.Fatalf("tool error = %q", out.Error)
	}
}

func TestDeepResearchKeywordRouting(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(t, &fakeFlagSource{})

	cases := []struct {
		query string
		want  string
	}{
		{"spending trends", "Spending has increased by 15%"},
		{"quarterly results", "Q3 results show a net positive cash flow"},
		{"overall outlook", "Customer financial health is stable"},
	}
	for _, tc := range cases {
		out, err := exec(context.Background(), ToolDeepResearch, map[string]any{
			"customerId": "cust_123",
			"query":      tc.query,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		result := out.Result.(DeepResearchOutput)
		if !strings.Contains(result.Analysis, "Acme Corp") {
			t.Fatalf("analysis missing customer name: %q", result.Analysis)
		}
		if !strings.Contains(result.Analysis, tc.want) {
			t.Fatalf("query %q: analysis = %q, want substring %q", tc.query, result.Analysis, tc.want)
		}
	}
}

func TestDeepResearchUnknownCustomer(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(t, &fakeFlagSource{})
	out, err := exec(context.Background(), ToolDeepResearch, map[string]any{
		"customerId": "cust_999",
		"query":      "spending",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error != "Customer not found" {
		t.Fatalf("tool error = %q", out.Error)
	}
}

func TestTransactionDisputeEnabled(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(t, &fakeFlagSource{enabled: true})
	out, err := exec(context.Background(), ToolTransactionDispute, map[string]any{
		"customerId":    "cust_123",
		"transactionId": "tx_1",
		"reason":        "Double charge",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := out.Result.(DisputeOutput)
	if result.Status != DisputeStatusInitiated {
		t.Fatalf("status = %q", result.Status)
	}
	if !strings.HasPrefix(result.TicketID, "ticket_tx_1_") {
		t.Fatalf("ticket id = %q", result.TicketID)
	}
}

func TestTransactionDisputeDisabled(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(t, &fakeFlagSource{enabled: false})
	out, err := exec(context.Background(), ToolTransactionDispute, map[string]any{
		"customerId":    "cust_123",
		"transactionId": "tx_1",
		"reason":        "Double charge",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := out.Result.(DisputeOutput)
	if result.Status != DisputeStatusFailed {
		t.Fatalf("status = %q", result.Status)
	}
	if result.TicketID != "" {
		t.Fatalf("ticket id = %q, want empty", result.TicketID)
	}
	if result.Message == "" {
		t.Fatal("expected explanatory message")
	}
}

func TestTransactionDisputeFlagServiceDown(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(t, &fakeFlagSource{enabled: true, err: errors.New("connection refused")})
	out, err := exec(context.Background(), ToolTransactionDispute, map[string]any{
		"customerId":    "cust_123",
		"transactionId": "tx_1",
		"reason":        "Double charge",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Oracle fails closed, so an outage reads as the feature being disabled.
	result := out.Result.(DisputeOutput)
	if result.Status != DisputeStatusFailed {
		t.Fatalf("status = %q", result.Status)
	}
}

func TestCommonSupportTopics(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(t, &fakeFlagSource{})

	cases := []struct {
		topic string
		want  string
	}{
		{"What are your fees?", "Monthly maintenance fee"},
		{"Branch HOURS please", "9am-5pm"},
		{"lost my cards", "1-800-LOST-CARD"},
		{"something else entirely", "support hotline"},
	}
	for _, tc := range cases {
		out, err := exec(context.Background(), ToolCommonSupport, map[string]any{"topic": tc.topic})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		result := out.Result.(SupportOutput)
		if !strings.Contains(result.Info, tc.want) {
			t.Fatalf("topic %q: info = %q, want substring %q", tc.topic, result.Info, tc.want)
		}
	}
}

func TestMissingRequiredArguments(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(t, &fakeFlagSource{})
	for _, tool := range []string{ToolListAccounts, ToolGetAccountBalance, ToolDeepResearch, ToolCommonSupport} {
		out, err := exec(context.Background(), tool, map[string]any{})
		if err != nil {
			t.Fatalf("tool %s: unexpected error: %v", tool, err)
		}
		if out.Error == "" {
			t.Fatalf("tool %s: expected argument error", tool)
		}
	}
}
