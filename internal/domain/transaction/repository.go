package transaction

import "context"

type Repository interface {
	Append(ctx context.Context, tx *Transaction) error
	GetByTransactionID(ctx context.Context, transactionID string) (*Transaction, error)
	ListByAgreementID(ctx context.Context, agreementID string) ([]*Transaction, error)
	// MarkStatus flips a pending row to a final status. It reports false when
	// the row was no longer pending, so a late gateway callback cannot
	// overwrite an earlier outcome.
	MarkStatus(ctx context.Context, transactionID string, to Status) (bool, error)
}
