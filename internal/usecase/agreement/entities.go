package agreement

import (
	"time"

	"github.com/shopspring/decimal"

	domain "lendpeer/internal/domain/agreement"
)

// Terms are the fields both creation paths share.
type Terms struct {
	Amount         decimal.Decimal      `json:"amount"`
	InterestRate   decimal.Decimal      `json:"interest_rate"`
	DurationMonths int                  `json:"duration_months"`
	Purpose        string               `json:"purpose"`
	Conditions     domain.Conditions    `json:"conditions"`
	PaymentMethod  domain.PaymentMethod `json:"payment_method"`
	SmartContract  bool                 `json:"smart_contract"`
}

// CreateOfferInput opens a lender-initiated agreement addressed to a
// borrower who may not be registered yet, hence the contact fields.
type CreateOfferInput struct {
	LenderID      string `json:"lender_id"`
	LenderName    string `json:"lender_name"`
	LenderEmail   string `json:"lender_email"`
	BorrowerName  string `json:"borrower_name"`
	BorrowerEmail string `json:"borrower_email"`
	Terms
}

// CreateRequestInput opens a borrower-initiated agreement any lender can claim.
type CreateRequestInput struct {
	BorrowerID    string `json:"borrower_id"`
	BorrowerName  string `json:"borrower_name"`
	BorrowerEmail string `json:"borrower_email"`
	Terms
}

type RecordPaymentInput struct {
	AgreementID   string          `json:"agreement_id"`
	BorrowerID    string          `json:"borrower_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Reference     string          `json:"reference"`
}

type AgreementDTO struct {
	AgreementID    string            `json:"agreement_id"`
	Kind           string            `json:"kind"`
	LenderID       string            `json:"lender_id,omitempty"`
	BorrowerID     string            `json:"borrower_id,omitempty"`
	LenderName     string            `json:"lender_name,omitempty"`
	LenderEmail    string            `json:"lender_email,omitempty"`
	BorrowerName   string            `json:"borrower_name,omitempty"`
	BorrowerEmail  string            `json:"borrower_email,omitempty"`
	Amount         decimal.Decimal   `json:"amount"`
	InterestRate   decimal.Decimal   `json:"interest_rate"`
	DurationMonths int               `json:"duration_months"`
	Purpose        string            `json:"purpose,omitempty"`
	Conditions     domain.Conditions `json:"conditions"`
	PaymentMethod  string            `json:"payment_method"`
	SmartContract  bool              `json:"smart_contract"`
	Status         string            `json:"status"`
	AcceptedAt     *time.Time        `json:"accepted_at,omitempty"`
	FundedAt       *time.Time        `json:"funded_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

type PaymentDTO struct {
	TransactionID string          `json:"transaction_id"`
	AgreementID   string          `json:"agreement_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	// AgreementStatus reflects the agreement after the payment was applied.
	AgreementStatus string `json:"agreement_status"`
}

// SummaryDTO is the one set of numbers every surface shows. Money figures
// are rounded to two decimals at this boundary only.
type SummaryDTO struct {
	AgreementID      string          `json:"agreement_id"`
	Status           string          `json:"status"`
	MonthlyPayment   decimal.Decimal `json:"monthly_payment"`
	TotalRepayment   decimal.Decimal `json:"total_repayment"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	ProgressPercent  decimal.Decimal `json:"progress_percent"`
	NextDueDate      *time.Time      `json:"next_due_date,omitempty"`
	DaysUntilDue     *int            `json:"days_until_due,omitempty"`
	Overdue          bool            `json:"overdue"`
	GraceExceeded    bool            `json:"grace_exceeded"`
}

func toDTO(a *domain.LoanAgreement) *AgreementDTO {
	return &AgreementDTO{
		AgreementID:    a.AgreementID,
		Kind:           string(a.Kind),
		LenderID:       a.LenderID,
		BorrowerID:     a.BorrowerID,
		LenderName:     a.LenderName,
		LenderEmail:    a.LenderEmail,
		BorrowerName:   a.BorrowerName,
		BorrowerEmail:  a.BorrowerEmail,
		Amount:         a.Amount,
		InterestRate:   a.InterestRate,
		DurationMonths: a.DurationMonths,
		Purpose:        a.Purpose,
		Conditions:     a.Conditions,
		PaymentMethod:  string(a.PaymentMethod),
		SmartContract:  a.SmartContract,
		Status:         string(a.Status),
		AcceptedAt:     a.AcceptedAt,
		FundedAt:       a.FundedAt,
		CreatedAt:      a.CreatedAt,
	}
}
