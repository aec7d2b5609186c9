package agreement

// Action names a caller-requested lifecycle step.
type Action string

const (
	ActionClaim         Action = "claim"
	ActionAccept        Action = "accept"
	ActionReject        Action = "reject"
	ActionWithdraw      Action = "withdraw"
	ActionFund          Action = "fund"
	ActionRecordPayment Action = "record_payment"
)

// Decide is the pure transition function. Given the agreement as last
// observed and a requested action by actorID, it returns the status the
// agreement should move to, or ErrIllegalTransition when the (status, kind,
// actor) combination is not in the transition table. It never mutates the
// agreement; applying the result is the caller's job and must go through the
// store's conditional update so a concurrent writer cannot be overwritten.
func Decide(a *LoanAgreement, act Action, actorID string) (Status, error) {
	if a == nil || actorID == "" {
		return "", ErrIllegalTransition
	}

	switch act {
	case ActionClaim:
		// Any lender may claim an open request.
		if a.Status == StatusPending && a.Kind == KindRequest && a.LenderID == "" {
			return StatusAccepted, nil
		}
	case ActionAccept:
		// The addressed borrower accepts a lender's offer.
		if a.Status == StatusPending && a.Kind == KindOffer && a.BorrowerID == "" {
			return StatusAccepted, nil
		}
	case ActionReject:
		if a.Status == StatusPending && a.Kind == KindOffer {
			return StatusRejected, nil
		}
	case ActionWithdraw:
		// Only the borrower who opened the request may take it down.
		if a.Status == StatusPending && a.Kind == KindRequest && actorID == a.BorrowerID {
			return StatusWithdrawn, nil
		}
	case ActionFund:
		if a.Status == StatusAccepted && actorID == a.LenderID {
			return StatusFunded, nil
		}
	case ActionRecordPayment:
		// Recording a repayment keeps the agreement funded; the ledger's
		// completion check is what moves it to completed.
		if a.Status == StatusFunded && actorID == a.BorrowerID {
			return StatusFunded, nil
		}
	}
	return "", ErrIllegalTransition
}
