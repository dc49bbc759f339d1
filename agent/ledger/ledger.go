package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrAccountNotFound  = errors.New("account not found")
	ErrInvalidAmount    = errors.New("amount must be positive")
)

type AccountType string

const (
	AccountChecking AccountType = "checking"
	AccountSavings  AccountType = "savings"
	AccountCredit   AccountType = "credit"
)

// Transaction is an immutable, append-only record scoped to one account.
type Transaction struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Merchant    string  `json:"merchant"`
	Category    string  `json:"category"`
}

type Account struct {
	ID           string        `json:"id"`
	Type         AccountType   `json:"type"`
	Balance      float64       `json:"balance"`
	Currency     string        `json:"currency"`
	Transactions []Transaction `json:"transactions,omitempty"`
}

type Customer struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Accounts []Account `json:"accounts"`
}

// TransferResult is a business-level outcome, not a system error. Success is
// false on insufficient funds; hard failures come back as Go errors instead.
type TransferResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	TransactionID string `json:"transactionId"`
}

// Store owns all customer, account, and transaction state for the process.
// Every mutation and read runs under one mutex, so a transfer's
// read-balance/apply-delta sequence is atomic with respect to concurrent
// requests. Callers only ever see copies of the stored records.
type Store struct {
	mu        sync.Mutex
	customers map[string]*Customer

	now   func() time.Time
	newID func() string
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithClock overrides the transaction timestamp source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDSource overrides transfer transaction id generation.
func WithIDSource(newID func() string) StoreOption {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewStore builds a Store from the given customers. The input is copied so
// the caller cannot alias internal state.
func NewStore(customers []Customer, opts ...StoreOption) *Store {
	s := &Store{
		customers: make(map[string]*Customer, len(customers)),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for i := range customers {
		c := copyCustomer(&customers[i])
		s.customers[c.ID] = c
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Customer returns a snapshot of the customer, accounts and transactions
// included.
func (s *Store) Customer(id string) (Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[id]
	if !ok {
		return Customer{}, fmt.Errorf("%w: %s", ErrCustomerNotFound, id)
	}
	return *copyCustomer(c), nil
}

// Account returns a snapshot of one account under the given customer. An
// unknown customer also reads as an unknown account.
func (s *Store) Account(customerID, accountID string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.findAccount(customerID, accountID)
	if a == nil {
		return Account{}, fmt.Errorf("%w: %s/%s", ErrAccountNotFound, customerID, accountID)
	}
	return *copyAccount(a), nil
}

// Transactions returns up to limit transactions for the account in stored
// order. limit <= 0 returns all of them.
func (s *Store) Transactions(customerID, accountID string, limit int) ([]Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.findAccount(customerID, accountID)
	if a == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrAccountNotFound, customerID, accountID)
	}

	n := len(a.Transactions)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Transaction, n)
	copy(out, a.Transactions[:n])
	return out, nil
}

// Transfer moves amount between two accounts of the same customer. The
// double-entry update and the mirrored transaction records are applied in a
// single critical section; on any failure nothing is mutated.
func (s *Store) Transfer(customerID, fromAccountID, toAccountID string, amount float64) (TransferResult, error) {
	if amount <= 0 {
		return TransferResult{}, fmt.Errorf("%w: got %v", ErrInvalidAmount, amount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.findAccount(customerID, fromAccountID)
	to := s.findAccount(customerID, toAccountID)
	if from == nil || to == nil {
		return TransferResult{}, fmt.Errorf("%w: one or both of %s, %s", ErrAccountNotFound, fromAccountID, toAccountID)
	}

	if from.Balance < amount {
		return TransferResult{
			Success: false,
			Message: "Insufficient funds.",
		}, nil
	}

	from.Balance -= amount
	to.Balance += amount

	txID := "tx_transfer_" + s.newID()
	date := s.now().UTC().Format("2006-01-02")
	from.Transactions = append(from.Transactions, Transaction{
		ID:          txID,
		Date:        date,
		Amount:      -amount,
		Description: fmt.Sprintf("Transfer to %s", toAccountID),
		Merchant:    "Internal Transfer",
		Category:    "transfer",
	})
	to.Transactions = append(to.Transactions, Transaction{
		ID:          txID,
		Date:        date,
		Amount:      amount,
		Description: fmt.Sprintf("Transfer from %s", fromAccountID),
		Merchant:    "Internal Transfer",
		Category:    "transfer",
	})

	return TransferResult{
		Success:       true,
		Message:       fmt.Sprintf("Successfully transferred %v from %s to %s", amount, fromAccountID, toAccountID),
		TransactionID: txID,
	}, nil
}

// findAccount must be called with s.mu held.
func (s *Store) findAccount(customerID, accountID string) *Account {
	c, ok := s.customers[customerID]
	if !ok {
		return nil
	}
	for i := range c.Accounts {
		if c.Accounts[i].ID == accountID {
			return &c.Accounts[i]
		}
	}
	return nil
}

func copyCustomer(c *Customer) *Customer {
	cp := *c
	cp.Accounts = make([]Account, len(c.Accounts))
	for i := range c.Accounts {
		cp.Accounts[i] = *copyAccount(&c.Accounts[i])
	}
	return &cp
}

func copyAccount(a *Account) *Account {
	cp := *a
	if a.Transactions != nil {
		cp.Transactions = make([]Transaction, len(a.Transactions))
		copy(cp.Transactions, a.Transactions)
	}
	return &cp
}
