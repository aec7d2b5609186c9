package agreementmock

import (
	"context"
	"sync"
	"time"

	domain "lendpeer/internal/domain/agreement"
)

// Repo is a function-backed mock satisfying agreement.Repository. Only the
// hooks a test sets are live; the rest return ErrNotFound or succeed.
type Repo struct {
	CreateFn           func(ctx context.Context, a *domain.LoanAgreement) error
	GetByAgreementIDFn func(ctx context.Context, agreementID string) (*domain.LoanAgreement, error)
	ListOpenRequestsFn func(ctx context.Context, limit int) ([]*domain.LoanAgreement, error)
	UpdateIfStatusFn   func(ctx context.Context, agreementID string, expected domain.Status, fields map[string]any) (bool, error)
	SoftDeleteFn       func(ctx context.Context, agreementID string) error
}

func (m *Repo) Create(ctx context.Context, a *domain.LoanAgreement) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByAgreementID(ctx context.Context, agreementID string) (*domain.LoanAgreement, error) {
	if m.GetByAgreementIDFn != nil {
		return m.GetByAgreementIDFn(ctx, agreementID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListOpenRequests(ctx context.Context, limit int) ([]*domain.LoanAgreement, error) {
	if m.ListOpenRequestsFn != nil {
		return m.ListOpenRequestsFn(ctx, limit)
	}
	return nil, nil
}

func (m *Repo) UpdateIfStatus(ctx context.Context, agreementID string, expected domain.Status, fields map[string]any) (bool, error) {
	if m.UpdateIfStatusFn != nil {
		return m.UpdateIfStatusFn(ctx, agreementID, expected, fields)
	}
	return true, nil
}

func (m *Repo) SoftDelete(ctx context.Context, agreementID string) error {
	if m.SoftDeleteFn != nil {
		return m.SoftDeleteFn(ctx, agreementID)
	}
	return nil
}

// Store is a mutex-guarded in-memory agreement.Repository with real
// compare-and-swap semantics, for tests that race concurrent callers.
type Store struct {
	mu   sync.Mutex
	rows map[string]*domain.LoanAgreement
}

func NewStore(seed ...*domain.LoanAgreement) *Store {
	s := &Store{rows: make(map[string]*domain.LoanAgreement)}
	for _, a := range seed {
		cp := *a
		s.rows[a.AgreementID] = &cp
	}
	return s
}

func (s *Store) Create(_ context.Context, a *domain.LoanAgreement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.rows[a.AgreementID] = &cp
	return nil
}

func (s *Store) GetByAgreementID(_ context.Context, agreementID string) (*domain.LoanAgreement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[agreementID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *Store) ListOpenRequests(_ context.Context, limit int) ([]*domain.LoanAgreement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.LoanAgreement{}
	for _, a := range s.rows {
		if a.Kind == domain.KindRequest && a.Status == domain.StatusPending {
			cp := *a
			out = append(out, &cp)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *Store) UpdateIfStatus(_ context.Context, agreementID string, expected domain.Status, fields map[string]any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[agreementID]
	if !ok || a.Status != expected {
		return false, nil
	}
	applyFields(a, fields)
	return true, nil
}

func (s *Store) SoftDelete(_ context.Context, agreementID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, agreementID)
	return nil
}

func applyFields(a *domain.LoanAgreement, fields map[string]any) {
	for k, v := range fields {
		switch k {
		case "status":
			a.Status = v.(domain.Status)
		case "lender_id":
			a.LenderID = v.(string)
		case "borrower_id":
			a.BorrowerID = v.(string)
		case "accepted_at":
			if t, ok := v.(time.Time); ok {
				a.AcceptedAt = &t
			}
		case "funded_at":
			if t, ok := v.(time.Time); ok {
				a.FundedAt = &t
			}
		}
	}
}
