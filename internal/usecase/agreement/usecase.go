package agreement

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	domain "lendpeer/internal/domain/agreement"
	"lendpeer/internal/domain/event"
	"lendpeer/internal/domain/ledger"
	"lendpeer/internal/domain/schedule"
	"lendpeer/internal/domain/transaction"
	"lendpeer/internal/domain/uow"
	"lendpeer/pkg/amortize"
	"lendpeer/pkg/id"
)

// Config carries the lifecycle tuning knobs. Passed in explicitly, never
// read from the environment here.
type Config struct {
	// GraceDays is how long past a due date an installment may sit before
	// the overdue signal escalates.
	GraceDays int
	// OverpayTolerance is how far cumulative repayments may exceed the
	// computed total before a payment is rejected outright.
	OverpayTolerance decimal.Decimal
}

type Usecase struct {
	agreements domain.Repository
	txs        transaction.Repository
	uow        uow.UnitOfWork
	events     event.Dispatcher
	cfg        Config
	now        func() time.Time
}

func NewUsecase(agreements domain.Repository, txs transaction.Repository, u uow.UnitOfWork, events event.Dispatcher, cfg Config) *Usecase {
	return &Usecase{
		agreements: agreements,
		txs:        txs,
		uow:        u,
		events:     events,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func validateTerms(t Terms) error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return amortize.ErrNonPositivePrincipal
	}
	if t.InterestRate.IsNegative() {
		return amortize.ErrNegativeRate
	}
	if t.DurationMonths < 1 {
		return amortize.ErrNonPositiveTerm
	}
	if !domain.ValidPaymentMethod(t.PaymentMethod) {
		return domain.ErrUnknownPaymentMethod
	}
	// Terms must amortize; this also rejects combinations the calculator
	// cannot represent.
	_, err := amortize.Compute(t.Amount, t.InterestRate, t.DurationMonths)
	return err
}

// CreateOffer opens a lender-initiated agreement waiting on the named
// borrower's acceptance.
func (u *Usecase) CreateOffer(ctx context.Context, in CreateOfferInput) (*AgreementDTO, error) {
	if in.LenderID == "" {
		return nil, domain.ErrIllegalTransition
	}
	if err := validateTerms(in.Terms); err != nil {
		return nil, err
	}

	a := &domain.LoanAgreement{
		AgreementID:    id.NewID32(),
		Kind:           domain.KindOffer,
		LenderID:       in.LenderID,
		LenderName:     in.LenderName,
		LenderEmail:    in.LenderEmail,
		BorrowerName:   in.BorrowerName,
		BorrowerEmail:  in.BorrowerEmail,
		Amount:         in.Amount,
		InterestRate:   in.InterestRate,
		DurationMonths: in.DurationMonths,
		Purpose:        in.Purpose,
		Conditions:     in.Conditions,
		PaymentMethod:  in.PaymentMethod,
		SmartContract:  in.SmartContract,
		Status:         domain.StatusPending,
	}
	if err := u.agreements.Create(ctx, a); err != nil {
		return nil, err
	}
	u.events.Dispatch(ctx, event.New(event.AgreementCreated, a.AgreementID, in.LenderID, u.now()))
	return toDTO(a), nil
}

// CreateRequest opens a borrower-initiated agreement any lender can claim.
func (u *Usecase) CreateRequest(ctx context.Context, in CreateRequestInput) (*AgreementDTO, error) {
	if in.BorrowerID == "" {
		return nil, domain.ErrIllegalTransition
	}
	if err := validateTerms(in.Terms); err != nil {
		return nil, err
	}

	a := &domain.LoanAgreement{
		AgreementID:    id.NewID32(),
		Kind:           domain.KindRequest,
		BorrowerID:     in.BorrowerID,
		BorrowerName:   in.BorrowerName,
		BorrowerEmail:  in.BorrowerEmail,
		Amount:         in.Amount,
		InterestRate:   in.InterestRate,
		DurationMonths: in.DurationMonths,
		Purpose:        in.Purpose,
		Conditions:     in.Conditions,
		PaymentMethod:  in.PaymentMethod,
		SmartContract:  in.SmartContract,
		Status:         domain.StatusPending,
	}
	if err := u.agreements.Create(ctx, a); err != nil {
		return nil, err
	}
	u.events.Dispatch(ctx, event.New(event.AgreementCreated, a.AgreementID, in.BorrowerID, u.now()))
	return toDTO(a), nil
}

func (u *Usecase) Get(ctx context.Context, agreementID string) (*AgreementDTO, error) {
	a, err := u.agreements.GetByAgreementID(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	return toDTO(a), nil
}

// ListOpenRequests is the marketplace listing lenders claim from. Withdrawn
// rows are soft-deleted and never resurface here.
func (u *Usecase) ListOpenRequests(ctx context.Context, limit int) ([]*AgreementDTO, error) {
	list, err := u.agreements.ListOpenRequests(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*AgreementDTO, 0, len(list))
	for _, a := range list {
		out = append(out, toDTO(a))
	}
	return out, nil
}

// Reject declines a pending offer.
func (u *Usecase) Reject(ctx context.Context, agreementID, actorID string) (*AgreementDTO, error) {
	return u.transition(ctx, agreementID, actorID, domain.ActionReject, event.Rejected, nil)
}

// Withdraw takes a borrower's own pending request off the marketplace. The
// row is soft-deleted after the status flip so listings never see it again.
func (u *Usecase) Withdraw(ctx context.Context, agreementID, actorID string) (*AgreementDTO, error) {
	a, err := u.agreements.GetByAgreementID(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	next, err := domain.Decide(a, domain.ActionWithdraw, actorID)
	if err != nil {
		return nil, err
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		ok, err := r.Agreements.UpdateIfStatus(ctx, agreementID, domain.StatusPending, map[string]any{
			"status": next,
		})
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrIllegalTransition
		}
		return r.Agreements.SoftDelete(ctx, agreementID)
	})
	if err != nil {
		return nil, err
	}

	u.events.Dispatch(ctx, event.New(event.Withdrawn, agreementID, actorID, u.now()))
	a.Status = next
	return toDTO(a), nil
}

// Fund disburses an accepted agreement. The status swap and the completed
// disbursement row are applied in one transaction so no reader can observe
// a funded agreement without its disbursement.
func (u *Usecase) Fund(ctx context.Context, agreementID, lenderID string) (*AgreementDTO, error) {
	a, err := u.agreements.GetByAgreementID(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	if _, err := domain.Decide(a, domain.ActionFund, lenderID); err != nil {
		return nil, err
	}

	now := u.now()
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		ok, err := r.Agreements.UpdateIfStatus(ctx, agreementID, domain.StatusAccepted, map[string]any{
			"status":    domain.StatusFunded,
			"funded_at": now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrIllegalTransition
		}
		return r.Transactions.Append(ctx, &transaction.Transaction{
			TransactionID: id.NewID32(),
			AgreementID:   agreementID,
			Kind:          transaction.KindDisbursement,
			Amount:        a.Amount,
			PaymentMethod: string(a.PaymentMethod),
			Status:        transaction.StatusCompleted,
		})
	})
	if err != nil {
		return nil, err
	}

	u.events.Dispatch(ctx, event.NewWithAmount(event.Funded, agreementID, lenderID, a.Amount, now))
	a.Status = domain.StatusFunded
	a.FundedAt = &now
	return toDTO(a), nil
}

// RecordPayment appends a pending repayment. The row stays pending until the
// payment collaborator confirms it through ConfirmPayment; a payment that
// would overshoot the repayment target past the configured tolerance is
// rejected at write time.
func (u *Usecase) RecordPayment(ctx context.Context, in RecordPaymentInput) (*PaymentDTO, error) {
	a, err := u.agreements.GetByAgreementID(ctx, in.AgreementID)
	if err != nil {
		return nil, err
	}
	if _, err := domain.Decide(a, domain.ActionRecordPayment, in.BorrowerID); err != nil {
		return nil, err
	}
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	txs, err := u.txs.ListByAgreementID(ctx, in.AgreementID)
	if err != nil {
		return nil, err
	}

	// A funded agreement whose target is already met flips to completed on
	// the next attempt instead of taking more money.
	sum, err := ledger.Build(a, txs)
	if err != nil {
		return nil, err
	}
	if sum.EligibleForCompletion {
		if err := u.complete(ctx, a); err != nil {
			return nil, err
		}
		return nil, domain.ErrIllegalTransition
	}

	over, err := ledger.WouldOverpay(a, txs, in.Amount, u.cfg.OverpayTolerance)
	if err != nil {
		return nil, err
	}
	if over {
		return nil, domain.ErrInvalidAmount
	}

	tx := &transaction.Transaction{
		TransactionID: id.NewID32(),
		AgreementID:   in.AgreementID,
		Kind:          transaction.KindRepayment,
		Amount:        in.Amount.Round(2),
		PaymentMethod: in.PaymentMethod,
		Reference:     in.Reference,
		Status:        transaction.StatusPending,
	}
	if err := u.txs.Append(ctx, tx); err != nil {
		return nil, err
	}

	u.events.Dispatch(ctx, event.NewWithAmount(event.PaymentRecorded, in.AgreementID, in.BorrowerID, tx.Amount, u.now()))
	return &PaymentDTO{
		TransactionID:   tx.TransactionID,
		AgreementID:     in.AgreementID,
		Amount:          tx.Amount,
		Status:          string(tx.Status),
		AgreementStatus: string(a.Status),
	}, nil
}

// ConfirmPayment consumes the payment collaborator's final verdict on a
// pending repayment. A completed repayment triggers the ledger's completion
// check; reaching the target moves the agreement to completed.
func (u *Usecase) ConfirmPayment(ctx context.Context, transactionID string, succeeded bool) (*PaymentDTO, error) {
	tx, err := u.txs.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	a, err := u.agreements.GetByAgreementID(ctx, tx.AgreementID)
	if err != nil {
		return nil, err
	}

	to := transaction.StatusCompleted
	if !succeeded {
		to = transaction.StatusFailed
	} else {
		// The write-time guard in RecordPayment projects over pending rows,
		// but the invariant holds on completed rows, so it is re-checked
		// here: a row whose confirmation would push the completed total
		// past the target is cancelled, never completed.
		txs, err := u.txs.ListByAgreementID(ctx, tx.AgreementID)
		if err != nil {
			return nil, err
		}
		sum, err := ledger.Build(a, txs)
		if err != nil {
			return nil, err
		}
		if sum.AmountPaid.Add(tx.Amount).GreaterThan(sum.TotalRepayment.Add(u.cfg.OverpayTolerance)) {
			to = transaction.StatusCancelled
		}
	}

	ok, err := u.txs.MarkStatus(ctx, transactionID, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, transaction.ErrNotPending
	}
	tx.Status = to

	if to == transaction.StatusCancelled {
		return &PaymentDTO{
			TransactionID:   tx.TransactionID,
			AgreementID:     tx.AgreementID,
			Amount:          tx.Amount,
			Status:          string(tx.Status),
			AgreementStatus: string(a.Status),
		}, nil
	}

	u.events.Dispatch(ctx, event.NewWithAmount(event.PaymentConfirmed, tx.AgreementID, a.BorrowerID, tx.Amount, u.now()))

	if to == transaction.StatusCompleted {
		txs, err := u.txs.ListByAgreementID(ctx, tx.AgreementID)
		if err != nil {
			return nil, err
		}
		sum, err := ledger.Build(a, txs)
		if err != nil {
			return nil, err
		}
		if sum.EligibleForCompletion {
			if err := u.complete(ctx, a); err != nil {
				return nil, err
			}
			a.Status = domain.StatusCompleted
		}
	}

	return &PaymentDTO{
		TransactionID:   tx.TransactionID,
		AgreementID:     tx.AgreementID,
		Amount:          tx.Amount,
		Status:          string(tx.Status),
		AgreementStatus: string(a.Status),
	}, nil
}

// RepaymentSummary is the canonical read model: one call, one set of
// numbers. Recomputation doubles as a completion sweep for agreements whose
// target was met but whose status flip has not run yet, and surfaces the
// overdue escalation to the notification fan-out.
func (u *Usecase) RepaymentSummary(ctx context.Context, agreementID string) (*SummaryDTO, error) {
	a, err := u.agreements.GetByAgreementID(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	txs, err := u.txs.ListByAgreementID(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	sum, err := ledger.Build(a, txs)
	if err != nil {
		return nil, err
	}

	if sum.EligibleForCompletion {
		if err := u.complete(ctx, a); err != nil {
			return nil, err
		}
		a.Status = domain.StatusCompleted
	}

	dto := &SummaryDTO{
		AgreementID:      a.AgreementID,
		Status:           string(a.Status),
		MonthlyPayment:   sum.MonthlyPayment.Round(2),
		TotalRepayment:   sum.TotalRepayment.Round(2),
		AmountPaid:       sum.AmountPaid.Round(2),
		RemainingBalance: sum.RemainingBalance.Round(2),
		ProgressPercent:  sum.ProgressPercent.Round(2),
	}

	if a.FundedAt != nil {
		// Installments met by the money paid, not by row count: a lump sum
		// covering three monthly payments advances the cursor three periods.
		covered := sum.InstallmentsCovered(a.DurationMonths)
		ds := schedule.Status(*a.FundedAt, a.DurationMonths, covered, u.now(), u.cfg.GraceDays)
		if !ds.AllMet {
			next := ds.NextDueDate
			days := ds.DaysUntilDue
			dto.NextDueDate = &next
			dto.DaysUntilDue = &days
			dto.Overdue = ds.Overdue
			dto.GraceExceeded = ds.GraceExceeded
			if ds.GraceExceeded && a.Status == domain.StatusFunded {
				u.events.Dispatch(ctx, event.New(event.Overdue, agreementID, a.BorrowerID, u.now()))
			}
		}
	}
	return dto, nil
}

// complete flips funded → completed through the conditional update. Losing
// the swap means another caller completed it first, which is fine.
func (u *Usecase) complete(ctx context.Context, a *domain.LoanAgreement) error {
	ok, err := u.agreements.UpdateIfStatus(ctx, a.AgreementID, domain.StatusFunded, map[string]any{
		"status": domain.StatusCompleted,
	})
	if err != nil {
		return err
	}
	if ok {
		u.events.Dispatch(ctx, event.New(event.Completed, a.AgreementID, a.BorrowerID, u.now()))
	}
	return nil
}

// transition is the shared single-guard path for simple status flips.
func (u *Usecase) transition(ctx context.Context, agreementID, actorID string, act domain.Action, ev event.Name, extra map[string]any) (*AgreementDTO, error) {
	a, err := u.agreements.GetByAgreementID(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	next, err := domain.Decide(a, act, actorID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{"status": next}
	for k, v := range extra {
		fields[k] = v
	}
	ok, err := u.agreements.UpdateIfStatus(ctx, agreementID, a.Status, fields)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrIllegalTransition
	}

	u.events.Dispatch(ctx, event.New(ev, agreementID, actorID, u.now()))
	a.Status = next
	return toDTO(a), nil
}
