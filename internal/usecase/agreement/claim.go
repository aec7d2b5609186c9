package agreement

import (
	"context"

	domain "lendpeer/internal/domain/agreement"
	"lendpeer/internal/domain/event"
)

// Claim and Accept are the two symmetric first-writer-wins operations. The
// guard read only screens out requests that are plainly not claimable; the
// decision of who wins belongs to the store's conditional update alone.
// Losing the swap is the expected outcome under contention and surfaces as
// ErrAlreadyClaimed, which callers treat as "refresh the listing", not as a
// failure.

// Claim binds a lender to an open borrower request.
func (u *Usecase) Claim(ctx context.Context, agreementID, lenderID string) (*AgreementDTO, error) {
	return u.bind(ctx, agreementID, lenderID, domain.ActionClaim, "lender_id", event.Claimed)
}

// Accept binds a borrower to the lender offer addressed to them.
func (u *Usecase) Accept(ctx context.Context, agreementID, borrowerID string) (*AgreementDTO, error) {
	return u.bind(ctx, agreementID, borrowerID, domain.ActionAccept, "borrower_id", event.Accepted)
}

func (u *Usecase) bind(ctx context.Context, agreementID, actorID string, act domain.Action, idColumn string, ev event.Name) (*AgreementDTO, error) {
	a, err := u.agreements.GetByAgreementID(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	next, err := domain.Decide(a, act, actorID)
	if err != nil {
		return nil, err
	}

	now := u.now()
	ok, err := u.agreements.UpdateIfStatus(ctx, agreementID, domain.StatusPending, map[string]any{
		"status":      next,
		idColumn:      actorID,
		"accepted_at": now,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		// Someone else won the swap between our read and our write.
		return nil, domain.ErrAlreadyClaimed
	}

	u.events.Dispatch(ctx, event.New(ev, agreementID, actorID, now))

	a.Status = next
	a.AcceptedAt = &now
	if act == domain.ActionClaim {
		a.LenderID = actorID
	} else {
		a.BorrowerID = actorID
	}
	return toDTO(a), nil
}
