package uowmock

import (
	"context"
	"errors"

	"lendpeer/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork. Fill in
// WithinTxFn, or set Repos to have fn run against them directly — the usual
// setup for tests that do not care about transaction boundaries.
type UoW struct {
	WithinTxFn func(ctx context.Context, fn func(r uow.Repos) error) error
	Repos      *uow.Repos
}

func New() *UoW { return &UoW{} }

// Passthrough binds the mock to fixed repositories; every WithinTx call
// simply runs fn against them.
func Passthrough(r uow.Repos) *UoW {
	return &UoW{Repos: &r}
}

func (m *UoW) Reset() { *m = UoW{} }

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	if m.Repos != nil {
		return fn(*m.Repos)
	}
	return errUnimplemented
}
