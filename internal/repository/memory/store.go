package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/accountsys/ledger/internal/ledger"
)

// Store is an in-memory implementation of ledger.AccountStore.
// A single mutex guards the map; every account crossing the boundary is
// deep-copied, so callers can never alias internal state. Holding the mutex
// for the whole of LoadAll is what makes it a consistent snapshot.
type Store struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*ledger.Account
}

func NewStore() *Store {
	return &Store{accounts: make(map[uuid.UUID]*ledger.Account)}
}

func (s *Store) Load(ctx context.Context, accountNumber uuid.UUID) (*ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountNumber]
	if !ok {
		return nil, ledger.ErrAccountNotFound
	}
	return a.Copy(), nil
}

func (s *Store) Save(ctx context.Context, account *ledger.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.accounts[account.AccountNumber]
	if !ok {
		if account.Version != 0 {
			// The row vanished under the writer, e.g. a concurrent delete.
			return ledger.ErrConflict
		}
	} else if existing.Version != account.Version {
		return ledger.ErrConflict
	}

	account.Version++
	s.accounts[account.AccountNumber] = account.Copy()
	return nil
}

func (s *Store) Delete(ctx context.Context, accountNumber uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[accountNumber]; !ok {
		return ledger.ErrAccountNotFound
	}
	delete(s.accounts, accountNumber)
	return nil
}

func (s *Store) LoadAll(ctx context.Context) ([]*ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*ledger.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a.Copy())
	}
	return out, nil
}

var _ ledger.AccountStore = (*Store)(nil)
