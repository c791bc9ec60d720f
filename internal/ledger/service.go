// Package ledger holds the account ledger domain: money validation, the
// Account/Transaction model and the Service that orchestrates all
// operations against an AccountStore.
package ledger

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/accountsys/ledger/internal/events"
)

// AccountStore is the persistence contract the service writes through.
// Save is versioned: it persists the account only if the stored version
// still matches account.Version, bumps the version on success and returns
// ErrConflict on a stale write. An account with Version 0 is a new record.
// Load and LoadAll return deep copies; LoadAll is a consistent snapshot
// across all accounts.
type AccountStore interface {
	Load(ctx context.Context, accountNumber uuid.UUID) (*Account, error)
	Save(ctx context.Context, account *Account) error
	Delete(ctx context.Context, accountNumber uuid.UUID) error
	LoadAll(ctx context.Context) ([]*Account, error)
}

// saveAttempts bounds the internal retry loop on optimistic-save conflicts.
const saveAttempts = 3

// TopicTransactions is the event topic for recorded transactions.
const TopicTransactions = "ledger.transactions"

// Service enforces the ledger invariants. Mutations on the same account are
// serialized through a per-account mutex; the versioned Save underneath
// catches writers the locks cannot see (another process on the same
// database) and is retried a bounded number of times.
type Service struct {
	store  AccountStore
	events events.Publisher

	mapMu sync.Mutex
	locks map[uuid.UUID]*sync.Mutex

	now func() time.Time
}

func NewService(store AccountStore, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		store:  store,
		events: publisher,
		locks:  make(map[uuid.UUID]*sync.Mutex),
		now:    time.Now,
	}
}

func (s *Service) accountLock(accountNumber uuid.UUID) *sync.Mutex {
	s.mapMu.Lock()
	defer s.mapMu.Unlock()

	if _, ok := s.locks[accountNumber]; !ok {
		s.locks[accountNumber] = &sync.Mutex{}
	}
	return s.locks[accountNumber]
}

// CreateAccount validates the profile and overdraft limit, assigns a fresh
// account number and persists the account with a zero balance.
func (s *Service) CreateAccount(ctx context.Context, profile Profile, overdraftLimit decimal.Decimal) (*Account, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateLimit(overdraftLimit); err != nil {
		return nil, err
	}

	a := NewAccount(profile, overdraftLimit)
	if err := s.store.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteAccount removes the account and its transaction history. It takes
// the same per-account lock as the mutations, so a delete can never race an
// in-flight deposit or withdrawal on the same account.
func (s *Service) DeleteAccount(ctx context.Context, accountNumber uuid.UUID) error {
	lock := s.accountLock(accountNumber)
	lock.Lock()
	defer lock.Unlock()

	return s.store.Delete(ctx, accountNumber)
}

// Deposit adds amount to the account balance and appends a DEPOSIT
// transaction. Returns the updated account snapshot with full history.
func (s *Service) Deposit(ctx context.Context, accountNumber uuid.UUID, amount decimal.Decimal) (*Account, error) {
	return s.mutate(ctx, accountNumber, amount, Deposit)
}

// Withdraw deducts amount from the account balance, provided the result
// stays at or above -overdraftLimit, and appends a WITHDRAW transaction.
func (s *Service) Withdraw(ctx context.Context, accountNumber uuid.UUID, amount decimal.Decimal) (*Account, error) {
	return s.mutate(ctx, accountNumber, amount, Withdraw)
}

// mutate runs the load-validate-apply-append-save sequence as one atomic
// unit under the account's lock. Validation happens before any state
// change; a failed save leaves no trace because the loaded copy is
// discarded.
func (s *Service) mutate(ctx context.Context, accountNumber uuid.UUID, amount decimal.Decimal, t TransactionType) (*Account, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}

	lock := s.accountLock(accountNumber)
	lock.Lock()
	defer lock.Unlock()

	for attempt := 0; attempt < saveAttempts; attempt++ {
		a, err := s.store.Load(ctx, accountNumber)
		if err != nil {
			return nil, err
		}
		if t == Withdraw && !a.CanWithdraw(amount) {
			return nil, ErrOverdraftLimitExceeded
		}

		tx := a.apply(t, amount, s.now())
		err = s.store.Save(ctx, a)
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.publish(tx)
		return a, nil
	}
	return nil, ErrConflict
}

func (s *Service) publish(tx Transaction) {
	err := s.events.Publish(TopicTransactions, events.TransactionRecorded{
		TransactionID:    tx.ID,
		AccountNumber:    tx.AccountNumber,
		Type:             string(tx.Type),
		Amount:           tx.Amount,
		ResultingBalance: tx.ResultingBalance,
		OccurredAt:       tx.OccurredAt,
	})
	if err != nil {
		log.Printf("ledger: failed to publish transaction %s: %v", tx.ID, err)
	}
}

// ChangeDetails replaces the customer profile on the account.
func (s *Service) ChangeDetails(ctx context.Context, accountNumber uuid.UUID, profile Profile) (*Account, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return s.update(ctx, accountNumber, func(a *Account) error {
		a.Profile = profile
		return nil
	})
}

// ChangeLimit adjusts the overdraft limit. Lowering the limit below the
// current debt is rejected, so the balance invariant keeps holding.
func (s *Service) ChangeLimit(ctx context.Context, accountNumber uuid.UUID, newLimit decimal.Decimal) (*Account, error) {
	if err := ValidateLimit(newLimit); err != nil {
		return nil, err
	}
	return s.update(ctx, accountNumber, func(a *Account) error {
		if a.Balance.Add(newLimit).Cmp(decimal.Zero) < 0 {
			return ErrInvalidLimit
		}
		a.OverdraftLimit = newLimit
		return nil
	})
}

func (s *Service) update(ctx context.Context, accountNumber uuid.UUID, change func(*Account) error) (*Account, error) {
	lock := s.accountLock(accountNumber)
	lock.Lock()
	defer lock.Unlock()

	for attempt := 0; attempt < saveAttempts; attempt++ {
		a, err := s.store.Load(ctx, accountNumber)
		if err != nil {
			return nil, err
		}
		if err := change(a); err != nil {
			return nil, err
		}

		err = s.store.Save(ctx, a)
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return a, nil
	}
	return nil, ErrConflict
}

// GetAccount returns the account snapshot with its chronological history.
func (s *Service) GetAccount(ctx context.Context, accountNumber uuid.UUID) (*Account, error) {
	return s.store.Load(ctx, accountNumber)
}

// GetBalance returns only the current balance of the account.
func (s *Service) GetBalance(ctx context.Context, accountNumber uuid.UUID) (decimal.Decimal, error) {
	a, err := s.store.Load(ctx, accountNumber)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return a.Balance, nil
}

// GetTransactions returns the account's history, oldest first.
func (s *Service) GetTransactions(ctx context.Context, accountNumber uuid.UUID) ([]Transaction, error) {
	a, err := s.store.Load(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	return a.Transactions, nil
}

// ListAccounts returns all live accounts. The order is unspecified but
// stable within a single call.
func (s *Service) ListAccounts(ctx context.Context) ([]*Account, error) {
	return s.store.LoadAll(ctx)
}

// SystemTotal sums the balances of all live accounts over one consistent
// store snapshot.
func (s *Service) SystemTotal(ctx context.Context) (decimal.Decimal, error) {
	accounts, err := s.store.LoadAll(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}

	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	return total, nil
}
