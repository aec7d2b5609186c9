package uow

import (
	"context"

	"lendpeer/internal/domain/agreement"
	"lendpeer/internal/domain/transaction"
)

type Repos struct {
	Agreements   agreement.Repository
	Transactions transaction.Repository
}

// UnitOfWork runs fn with repositories bound to one database transaction.
// Funding needs it: the status compare-and-swap and the disbursement row
// must land together or not at all.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
