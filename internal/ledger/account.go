package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType distinguishes the two monetary events an account records.
type TransactionType string

const (
	Deposit  TransactionType = "DEPOSIT"
	Withdraw TransactionType = "WITHDRAW"
)

// Transaction is a single immutable entry in an account's history.
// It carries the balance that resulted from applying it, and deliberately
// no reference back to its owning account.
type Transaction struct {
	ID               uuid.UUID       `json:"id"`
	AccountNumber    uuid.UUID       `json:"account_number"`
	Type             TransactionType `json:"type"`
	Amount           decimal.Decimal `json:"amount"`
	OccurredAt       time.Time       `json:"occurred_at"`
	ResultingBalance decimal.Decimal `json:"resulting_balance"`
}

// Profile holds the customer details attached to an account.
type Profile struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
}

// Validate checks that all required profile fields are present.
func (p Profile) Validate() error {
	if p.Name == "" || p.Address == "" || p.Email == "" {
		return ErrInvalidProfile
	}
	return nil
}

// Account is the ledger's aggregate: identity, customer profile, overdraft
// limit, current balance and the chronological transaction history it owns.
// Version is the repository's optimistic-concurrency counter and is never
// serialized to clients.
type Account struct {
	AccountNumber  uuid.UUID       `json:"account_number"`
	Profile        Profile         `json:"profile"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit"`
	Balance        decimal.Decimal `json:"balance"`
	Transactions   []Transaction   `json:"transactions"`
	Version        int64           `json:"-"`
}

// NewAccount creates an active account with a fresh account number, zero
// balance and an empty history. The caller validates profile and limit.
func NewAccount(profile Profile, overdraftLimit decimal.Decimal) *Account {
	return &Account{
		AccountNumber:  uuid.New(),
		Profile:        profile,
		OverdraftLimit: overdraftLimit,
		Balance:        decimal.Zero,
		Transactions:   []Transaction{},
	}
}

// CanWithdraw reports whether withdrawing amount keeps the balance at or
// above -overdraftLimit.
func (a *Account) CanWithdraw(amount decimal.Decimal) bool {
	return a.Balance.Sub(amount).Cmp(a.OverdraftLimit.Neg()) >= 0
}

// apply updates the balance and appends the matching transaction in one
// step, so history and balance can never drift apart.
func (a *Account) apply(t TransactionType, amount decimal.Decimal, at time.Time) Transaction {
	switch t {
	case Deposit:
		a.Balance = a.Balance.Add(amount)
	case Withdraw:
		a.Balance = a.Balance.Sub(amount)
	}
	tx := Transaction{
		ID:               uuid.New(),
		AccountNumber:    a.AccountNumber,
		Type:             t,
		Amount:           amount,
		OccurredAt:       at,
		ResultingBalance: a.Balance,
	}
	a.Transactions = append(a.Transactions, tx)
	return tx
}

// Copy returns a deep snapshot of the account, safe to hand to callers.
func (a *Account) Copy() *Account {
	cp := *a
	cp.Transactions = make([]Transaction, len(a.Transactions))
	copy(cp.Transactions, a.Transactions)
	return &cp
}
