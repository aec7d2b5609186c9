package agreement

import "context"

// Repository is the persistence port for loan agreements. UpdateIfStatus is
// the compare-and-swap primitive every status mutation must go through: it
// applies fields only when the stored status still equals expected and
// reports whether the write won. A read-modify-write sequence around Save
// would reintroduce the claim race, so no Save method exists.
type Repository interface {
	Create(ctx context.Context, a *LoanAgreement) error
	GetByAgreementID(ctx context.Context, agreementID string) (*LoanAgreement, error)
	ListOpenRequests(ctx context.Context, limit int) ([]*LoanAgreement, error)
	UpdateIfStatus(ctx context.Context, agreementID string, expected Status, fields map[string]any) (bool, error)
	// SoftDelete hides a withdrawn request from every listing. Callers must
	// have already moved the row to withdrawn via UpdateIfStatus.
	SoftDelete(ctx context.Context, agreementID string) error
}
