package transactionmock

import (
	"context"
	"sync"

	"lendpeer/internal/domain/transaction"
)

// Repo is a function-backed mock satisfying transaction.Repository.
type Repo struct {
	AppendFn             func(ctx context.Context, tx *transaction.Transaction) error
	GetByTransactionIDFn func(ctx context.Context, transactionID string) (*transaction.Transaction, error)
	ListByAgreementIDFn  func(ctx context.Context, agreementID string) ([]*transaction.Transaction, error)
	MarkStatusFn         func(ctx context.Context, transactionID string, to transaction.Status) (bool, error)
}

func (m *Repo) Append(ctx context.Context, tx *transaction.Transaction) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, tx)
	}
	return nil
}

func (m *Repo) GetByTransactionID(ctx context.Context, transactionID string) (*transaction.Transaction, error) {
	if m.GetByTransactionIDFn != nil {
		return m.GetByTransactionIDFn(ctx, transactionID)
	}
	return nil, transaction.ErrNotFound
}

func (m *Repo) ListByAgreementID(ctx context.Context, agreementID string) ([]*transaction.Transaction, error) {
	if m.ListByAgreementIDFn != nil {
		return m.ListByAgreementIDFn(ctx, agreementID)
	}
	return nil, nil
}

func (m *Repo) MarkStatus(ctx context.Context, transactionID string, to transaction.Status) (bool, error) {
	if m.MarkStatusFn != nil {
		return m.MarkStatusFn(ctx, transactionID, to)
	}
	return true, nil
}

// Store is a mutex-guarded in-memory transaction.Repository for scenario
// tests that drive the full lifecycle.
type Store struct {
	mu   sync.Mutex
	rows []*transaction.Transaction
}

func NewStore() *Store { return &Store{} }

func (s *Store) Append(_ context.Context, tx *transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *tx
	s.rows = append(s.rows, &cp)
	return nil
}

func (s *Store) GetByTransactionID(_ context.Context, transactionID string) (*transaction.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.rows {
		if tx.TransactionID == transactionID {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, transaction.ErrNotFound
}

func (s *Store) ListByAgreementID(_ context.Context, agreementID string) ([]*transaction.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*transaction.Transaction{}
	for _, tx := range s.rows {
		if tx.AgreementID == agreementID {
			cp := *tx
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) MarkStatus(_ context.Context, transactionID string, to transaction.Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.rows {
		if tx.TransactionID == transactionID {
			if tx.Status != transaction.StatusPending || !to.Final() {
				return false, nil
			}
			tx.Status = to
			return true, nil
		}
	}
	return false, transaction.ErrNotFound
}
