package agreement

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domain "lendpeer/internal/domain/agreement"
	"lendpeer/internal/domain/event"
	"lendpeer/internal/domain/transaction"
	"lendpeer/internal/domain/uow"
	"lendpeer/internal/testutil/agreementmock"
	"lendpeer/internal/testutil/eventmock"
	"lendpeer/internal/testutil/transactionmock"
	"lendpeer/internal/testutil/uowmock"
)

func requestInput() CreateRequestInput {
	return CreateRequestInput{
		BorrowerID:    borrowerID,
		BorrowerName:  "Asha",
		BorrowerEmail: "asha@example.com",
		Terms: Terms{
			Amount:         dec("50000"),
			InterestRate:   dec("10"),
			DurationMonths: 6,
			Purpose:        "working capital",
			PaymentMethod:  domain.MethodUPI,
		},
	}
}

func TestCreateRequest_Succeeds(t *testing.T) {
	u, store, _, events := newTestUsecase()

	dto, err := u.CreateRequest(context.Background(), requestInput())
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if len(dto.AgreementID) != 32 {
		t.Fatalf("agreement id %q", dto.AgreementID)
	}
	if dto.Kind != string(domain.KindRequest) || dto.Status != string(domain.StatusPending) {
		t.Fatalf("dto = %+v", dto)
	}
	if dto.LenderID != "" {
		t.Fatal("request must start with no lender bound")
	}
	if _, err := store.GetByAgreementID(context.Background(), dto.AgreementID); err != nil {
		t.Fatalf("not persisted: %v", err)
	}
	if events.Count(event.AgreementCreated) != 1 {
		t.Fatal("missing created event")
	}
}

func TestCreateOffer_Succeeds(t *testing.T) {
	u, _, _, _ := newTestUsecase()

	dto, err := u.CreateOffer(context.Background(), CreateOfferInput{
		LenderID:      lenderID,
		LenderName:    "Ravi",
		LenderEmail:   "ravi@example.com",
		BorrowerName:  "Asha",
		BorrowerEmail: "asha@example.com",
		Terms: Terms{
			Amount:         dec("20000"),
			InterestRate:   dec("8"),
			DurationMonths: 12,
			PaymentMethod:  domain.MethodBank,
			Conditions:     domain.Conditions{Collateral: "two-wheeler"},
		},
	})
	if err != nil {
		t.Fatalf("CreateOffer: %v", err)
	}
	if dto.Kind != string(domain.KindOffer) || dto.BorrowerID != "" {
		t.Fatalf("dto = %+v", dto)
	}
	if dto.Conditions.Collateral != "two-wheeler" {
		t.Fatalf("conditions = %+v", dto.Conditions)
	}
}

func TestCreate_RejectsBadTerms(t *testing.T) {
	u, _, _, _ := newTestUsecase()
	cases := []struct {
		name   string
		mutate func(*CreateRequestInput)
	}{
		{"zero amount", func(in *CreateRequestInput) { in.Amount = decimal.Zero }},
		{"negative rate", func(in *CreateRequestInput) { in.InterestRate = dec("-1") }},
		{"zero months", func(in *CreateRequestInput) { in.DurationMonths = 0 }},
		{"bogus payment method", func(in *CreateRequestInput) { in.PaymentMethod = "cheque" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := requestInput()
			tc.mutate(&in)
			if _, err := u.CreateRequest(context.Background(), in); err == nil {
				t.Fatal("want error")
			}
		})
	}
}

func TestWithdraw_RemovesRequestFromMarketplace(t *testing.T) {
	const aid = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	u, store, _, events := newTestUsecase(pendingRequest(aid))

	dto, err := u.Withdraw(context.Background(), aid, borrowerID)
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if dto.Status != string(domain.StatusWithdrawn) {
		t.Fatalf("status = %s", dto.Status)
	}
	open, _ := store.ListOpenRequests(context.Background(), 0)
	if len(open) != 0 {
		t.Fatalf("open requests = %d, want 0 after withdrawal", len(open))
	}
	if events.Count(event.Withdrawn) != 1 {
		t.Fatal("missing withdrawn event")
	}
}

func TestWithdraw_OnlyOwner(t *testing.T) {
	const aid = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	u, _, _, _ := newTestUsecase(pendingRequest(aid))
	if _, err := u.Withdraw(context.Background(), aid, lenderID); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("err = %v", err)
	}
}

func TestReject_PendingOfferOnly(t *testing.T) {
	const offer = "dddddddddddddddddddddddddddddddd"
	const request = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	u, _, _, _ := newTestUsecase(pendingOffer(offer), pendingRequest(request))

	dto, err := u.Reject(context.Background(), offer, borrowerID)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if dto.Status != string(domain.StatusRejected) {
		t.Fatalf("status = %s", dto.Status)
	}

	if _, err := u.Reject(context.Background(), request, borrowerID); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("rejecting a request: %v", err)
	}
}

func fundedAgreement(t *testing.T, u *Usecase, aid string) {
	t.Helper()
	if _, err := u.Claim(context.Background(), aid, lenderID); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := u.Fund(context.Background(), aid, lenderID); err != nil {
		t.Fatalf("fund: %v", err)
	}
}

func TestFund_RecordsDisbursementAtomically(t *testing.T) {
	const aid = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	u, store, txs, events := newTestUsecase(pendingRequest(aid))
	fundedAgreement(t, u, aid)

	got, _ := store.GetByAgreementID(context.Background(), aid)
	if got.Status != domain.StatusFunded {
		t.Fatalf("status = %s", got.Status)
	}
	if got.FundedAt == nil {
		t.Fatal("fundedAt not set")
	}

	list, _ := txs.ListByAgreementID(context.Background(), aid)
	if len(list) != 1 {
		t.Fatalf("transactions = %d, want the disbursement", len(list))
	}
	d := list[0]
	if d.Kind != transaction.KindDisbursement || d.Status != transaction.StatusCompleted {
		t.Fatalf("disbursement = %+v", d)
	}
	if !d.Amount.Equal(dec("50000")) {
		t.Fatalf("disbursement amount = %s", d.Amount)
	}
	if events.Count(event.Funded) != 1 {
		t.Fatal("missing funded event")
	}
}

func TestFund_OnlyBoundLenderAndOnlyOnce(t *testing.T) {
	const aid = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	u, _, _, _ := newTestUsecase(pendingRequest(aid))
	if _, err := u.Claim(context.Background(), aid, lenderID); err != nil {
		t.Fatalf("claim: %v", err)
	}

	if _, err := u.Fund(context.Background(), aid, borrowerID); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("fund by borrower: %v", err)
	}
	if _, err := u.Fund(context.Background(), aid, lenderID); err != nil {
		t.Fatalf("fund: %v", err)
	}
	if _, err := u.Fund(context.Background(), aid, lenderID); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("second fund: %v", err)
	}
}

func recordAndConfirm(t *testing.T, u *Usecase, aid, amount string) *PaymentDTO {
	t.Helper()
	p, err := u.RecordPayment(context.Background(), RecordPaymentInput{
		AgreementID:   aid,
		BorrowerID:    borrowerID,
		Amount:        dec(amount),
		PaymentMethod: "upi",
	})
	if err != nil {
		t.Fatalf("RecordPayment(%s): %v", amount, err)
	}
	out, err := u.ConfirmPayment(context.Background(), p.TransactionID, true)
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	return out
}

func TestRecordPayment_Validation(t *testing.T) {
	const aid = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	u, _, _, _ := newTestUsecase(pendingRequest(aid))

	// Not funded yet.
	_, err := u.RecordPayment(context.Background(), RecordPaymentInput{AgreementID: aid, BorrowerID: borrowerID, Amount: dec("100")})
	if !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("payment before funding: %v", err)
	}

	fundedAgreement(t, u, aid)

	_, err = u.RecordPayment(context.Background(), RecordPaymentInput{AgreementID: aid, BorrowerID: borrowerID, Amount: decimal.Zero})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("zero amount: %v", err)
	}
	_, err = u.RecordPayment(context.Background(), RecordPaymentInput{AgreementID: aid, BorrowerID: lenderID, Amount: dec("100")})
	if !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("payment by lender: %v", err)
	}
	// Grossly past the total repayment target.
	_, err = u.RecordPayment(context.Background(), RecordPaymentInput{AgreementID: aid, BorrowerID: borrowerID, Amount: dec("99999999")})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("overpayment: %v", err)
	}
}

func TestRecordPayment_StaysPendingUntilConfirmed(t *testing.T) {
	const aid = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	u, _, txs, _ := newTestUsecase(pendingRequest(aid))
	fundedAgreement(t, u, aid)

	p, err := u.RecordPayment(context.Background(), RecordPaymentInput{
		AgreementID: aid, BorrowerID: borrowerID, Amount: dec("5000"), PaymentMethod: "upi",
	})
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if p.Status != string(transaction.StatusPending) {
		t.Fatalf("payment status = %s", p.Status)
	}

	// Pending rows do not move the ledger.
	s, err := u.RepaymentSummary(context.Background(), aid)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !s.AmountPaid.IsZero() {
		t.Fatalf("amountPaid = %s before confirmation", s.AmountPaid)
	}

	out, err := u.ConfirmPayment(context.Background(), p.TransactionID, true)
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if out.Status != string(transaction.StatusCompleted) {
		t.Fatalf("confirmed status = %s", out.Status)
	}

	list, _ := txs.ListByAgreementID(context.Background(), aid)
	var repayments int
	for _, tx := range list {
		if tx.Kind == transaction.KindRepayment {
			repayments++
		}
	}
	if repayments != 1 {
		t.Fatalf("repayment rows = %d", repayments)
	}
}

func TestConfirmPayment_FailedOutcomeDoesNotCount(t *testing.T) {
	const aid = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	u, _, _, _ := newTestUsecase(pendingRequest(aid))
	fundedAgreement(t, u, aid)

	p, err := u.RecordPayment(context.Background(), RecordPaymentInput{
		AgreementID: aid, BorrowerID: borrowerID, Amount: dec("5000"),
	})
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	out, err := u.ConfirmPayment(context.Background(), p.TransactionID, false)
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if out.Status != string(transaction.StatusFailed) {
		t.Fatalf("status = %s", out.Status)
	}

	// A second confirmation of the same row is rejected.
	if _, err := u.ConfirmPayment(context.Background(), p.TransactionID, true); !errors.Is(err, transaction.ErrNotPending) {
		t.Fatalf("double confirm: %v", err)
	}

	s, _ := u.RepaymentSummary(context.Background(), aid)
	if !s.AmountPaid.IsZero() {
		t.Fatalf("failed payment counted: %s", s.AmountPaid)
	}
}

// Paying the full repayment target completes the agreement, and no further
// payment is accepted.
func TestCompletionLaw(t *testing.T) {
	const aid = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	u, store, _, events := newTestUsecase(pendingRequest(aid))
	fundedAgreement(t, u, aid)

	s, err := u.RepaymentSummary(context.Background(), aid)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	out := recordAndConfirm(t, u, aid, s.TotalRepayment.String())
	if out.AgreementStatus != string(domain.StatusCompleted) {
		t.Fatalf("agreement status after full payment = %s", out.AgreementStatus)
	}

	got, _ := store.GetByAgreementID(context.Background(), aid)
	if got.Status != domain.StatusCompleted {
		t.Fatalf("stored status = %s", got.Status)
	}
	if events.Count(event.Completed) != 1 {
		t.Fatalf("completed events = %d", events.Count(event.Completed))
	}

	_, err = u.RecordPayment(context.Background(), RecordPaymentInput{
		AgreementID: aid, BorrowerID: borrowerID, Amount: dec("1"),
	})
	if !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("payment after completion: %v", err)
	}
}

// A pending payment still counts against the target at record time, so a
// second full-amount payment cannot sit in flight alongside the first.
func TestRecordPayment_PendingRowsCountTowardTarget(t *testing.T) {
	const aid = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	u, _, _, _ := newTestUsecase(pendingRequest(aid))
	fundedAgreement(t, u, aid)

	s, err := u.RepaymentSummary(context.Background(), aid)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	full := s.TotalRepayment.String()

	if _, err := u.RecordPayment(context.Background(), RecordPaymentInput{
		AgreementID: aid, BorrowerID: borrowerID, Amount: dec(full), PaymentMethod: "upi",
	}); err != nil {
		t.Fatalf("first RecordPayment: %v", err)
	}
	_, err = u.RecordPayment(context.Background(), RecordPaymentInput{
		AgreementID: aid, BorrowerID: borrowerID, Amount: dec(full), PaymentMethod: "upi",
	})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("second full payment while first pending: %v", err)
	}
}

// Confirming a row whose amount would push the completed total past the
// target cancels it instead. Two full-amount pending rows can only ever
// produce one completed payment.
func TestConfirmPayment_CancelsRowPastTarget(t *testing.T) {
	const aid = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	u, store, txs, events := newTestUsecase(pendingRequest(aid))
	fundedAgreement(t, u, aid)

	s, err := u.RepaymentSummary(context.Background(), aid)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	target := s.TotalRepayment

	// Two full-amount rows already in flight, as an older write path could
	// have left them.
	rowIDs := []string{
		"f1f1f1f1f1f1f1f1f1f1f1f1f1f1f1f1",
		"f2f2f2f2f2f2f2f2f2f2f2f2f2f2f2f2",
	}
	for _, id := range rowIDs {
		if err := txs.Append(context.Background(), &transaction.Transaction{
			TransactionID: id,
			AgreementID:   aid,
			Kind:          transaction.KindRepayment,
			Amount:        target,
			PaymentMethod: "upi",
			Status:        transaction.StatusPending,
		}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	first, err := u.ConfirmPayment(context.Background(), rowIDs[0], true)
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if first.Status != string(transaction.StatusCompleted) {
		t.Fatalf("first status = %s", first.Status)
	}
	if first.AgreementStatus != string(domain.StatusCompleted) {
		t.Fatalf("agreement after first confirm = %s", first.AgreementStatus)
	}

	second, err := u.ConfirmPayment(context.Background(), rowIDs[1], true)
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if second.Status != string(transaction.StatusCancelled) {
		t.Fatalf("second status = %s", second.Status)
	}

	s2, err := u.RepaymentSummary(context.Background(), aid)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !s2.AmountPaid.Equal(target) {
		t.Fatalf("completed total = %s, want %s", s2.AmountPaid, target)
	}
	got, _ := store.GetByAgreementID(context.Background(), aid)
	if got.Status != domain.StatusCompleted {
		t.Fatalf("stored status = %s", got.Status)
	}
	if events.Count(event.PaymentConfirmed) != 1 {
		t.Fatalf("confirmed events = %d, cancelled row must not announce", events.Count(event.PaymentConfirmed))
	}
}

func TestCreate_UnknownPaymentMethodSentinel(t *testing.T) {
	u, _, _, _ := newTestUsecase()
	in := requestInput()
	in.PaymentMethod = "cheque"
	_, err := u.CreateRequest(context.Background(), in)
	if !errors.Is(err, domain.ErrUnknownPaymentMethod) {
		t.Fatalf("err = %v, want ErrUnknownPaymentMethod", err)
	}
}

func TestRepaymentSummary_Figures(t *testing.T) {
	const aid = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	u, _, _, _ := newTestUsecase(pendingRequest(aid))
	fundedAgreement(t, u, aid)

	s, err := u.RepaymentSummary(context.Background(), aid)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	// 50000 at 10% over 6 months.
	if s.MonthlyPayment.IsZero() || s.TotalRepayment.LessThan(dec("50000")) {
		t.Fatalf("summary = %+v", s)
	}
	if s.NextDueDate == nil || s.DaysUntilDue == nil {
		t.Fatal("due date fields missing for funded agreement")
	}
	if s.Overdue {
		t.Fatal("freshly funded agreement cannot be overdue")
	}

	recordAndConfirm(t, u, aid, s.MonthlyPayment.String())
	s2, err := u.RepaymentSummary(context.Background(), aid)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !s2.AmountPaid.Equal(s.MonthlyPayment) {
		t.Fatalf("amountPaid = %s, want %s", s2.AmountPaid, s.MonthlyPayment)
	}
	if s2.ProgressPercent.LessThanOrEqual(decimal.Zero) {
		t.Fatalf("progress = %s", s2.ProgressPercent)
	}
	if !s2.NextDueDate.After(*s.NextDueDate) {
		t.Fatalf("next due did not advance: %v then %v", s.NextDueDate, s2.NextDueDate)
	}
}

func TestRepaymentSummary_OverdueEscalation(t *testing.T) {
	const aid = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	u, _, _, events := newTestUsecase(pendingRequest(aid))
	fundedAgreement(t, u, aid)

	// Jump well past the first due date and its grace window.
	u.now = func() time.Time {
		return time.Now().UTC().AddDate(0, 2, 0)
	}
	s, err := u.RepaymentSummary(context.Background(), aid)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !s.Overdue || !s.GraceExceeded {
		t.Fatalf("summary flags = %+v", s)
	}
	if events.Count(event.Overdue) != 1 {
		t.Fatalf("overdue events = %d", events.Count(event.Overdue))
	}
}

// A lump sum worth several installments keeps the borrower current: the
// schedule cursor follows the money paid, not the number of payment rows.
func TestRepaymentSummary_LumpSumPrepaymentIsNotOverdue(t *testing.T) {
	const aid = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	u, _, _, events := newTestUsecase(pendingRequest(aid))
	fundedAgreement(t, u, aid)

	s, err := u.RepaymentSummary(context.Background(), aid)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	threeMonths := s.MonthlyPayment.Mul(decimal.NewFromInt(3))
	recordAndConfirm(t, u, aid, threeMonths.String())

	// Two and a half months in: installments 1-3 are covered by the lump
	// sum, the fourth is not due yet.
	u.now = func() time.Time {
		return time.Now().UTC().AddDate(0, 2, 15)
	}
	s2, err := u.RepaymentSummary(context.Background(), aid)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if s2.Overdue || s2.GraceExceeded {
		t.Fatalf("prepaid borrower flagged: %+v", s2)
	}
	if events.Count(event.Overdue) != 0 {
		t.Fatalf("overdue events = %d", events.Count(event.Overdue))
	}
	if s2.NextDueDate == nil || !s2.NextDueDate.After(u.now()) {
		t.Fatalf("next due = %v", s2.NextDueDate)
	}
}

// The §-scenario from the product brief: request, two racing lenders, the
// winner funds, one full payment completes the agreement.
func TestScenario_RequestClaimFundRepay(t *testing.T) {
	u, store, _, _ := newTestUsecase()

	dto, err := u.CreateRequest(context.Background(), requestInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	aid := dto.AgreementID

	const lenderA = "aaaa1111aaaa1111aaaa1111aaaa1111"
	const lenderB = "bbbb2222bbbb2222bbbb2222bbbb2222"
	var wg sync.WaitGroup
	results := make(map[string]error, 2)
	var mu sync.Mutex
	for _, l := range []string{lenderA, lenderB} {
		wg.Add(1)
		go func(l string) {
			defer wg.Done()
			_, err := u.Claim(context.Background(), aid, l)
			mu.Lock()
			results[l] = err
			mu.Unlock()
		}(l)
	}
	wg.Wait()

	var winner, loser string
	switch {
	case results[lenderA] == nil && errors.Is(results[lenderB], domain.ErrAlreadyClaimed):
		winner, loser = lenderA, lenderB
	case results[lenderB] == nil && errors.Is(results[lenderA], domain.ErrAlreadyClaimed):
		winner, loser = lenderB, lenderA
	default:
		t.Fatalf("claim results = %v", results)
	}

	if _, err := u.Fund(context.Background(), aid, loser); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("loser fund: %v", err)
	}
	if _, err := u.Fund(context.Background(), aid, winner); err != nil {
		t.Fatalf("winner fund: %v", err)
	}

	s, err := u.RepaymentSummary(context.Background(), aid)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	out := recordAndConfirm(t, u, aid, s.TotalRepayment.String())
	if out.AgreementStatus != string(domain.StatusCompleted) {
		t.Fatalf("final status = %s", out.AgreementStatus)
	}
	got, _ := store.GetByAgreementID(context.Background(), aid)
	if got.LenderID != winner || got.Status != domain.StatusCompleted {
		t.Fatalf("final row = status %s lender %s", got.Status, got.LenderID)
	}
}

// Forcing UpdateIfStatus to fail must not leave partial effects behind.
func TestFund_CASFailureLeavesNoDisbursement(t *testing.T) {
	const aid = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	a := pendingRequest(aid)
	a.Status = domain.StatusAccepted
	a.LenderID = lenderID

	txs := transactionmock.NewStore()
	repo := &agreementmock.Repo{
		GetByAgreementIDFn: func(context.Context, string) (*domain.LoanAgreement, error) {
			cp := *a
			return &cp, nil
		},
		UpdateIfStatusFn: func(context.Context, string, domain.Status, map[string]any) (bool, error) {
			return false, nil
		},
	}
	u := NewUsecase(repo, txs, uowmock.Passthrough(uow.Repos{Agreements: repo, Transactions: txs}), eventmock.New(), Config{OverpayTolerance: dec("1")})

	if _, err := u.Fund(context.Background(), aid, lenderID); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("err = %v", err)
	}
	list, _ := txs.ListByAgreementID(context.Background(), aid)
	if len(list) != 0 {
		t.Fatalf("disbursement written despite failed swap: %d rows", len(list))
	}
}
