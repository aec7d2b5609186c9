package agreement

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusFunded    Status = "funded"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
	StatusWithdrawn Status = "withdrawn"
)

// Kind records which party opened the agreement. An offer waits for a
// specific borrower's acceptance, a request waits for any lender's claim.
type Kind string

const (
	KindOffer   Kind = "offer"
	KindRequest Kind = "request"
)

type PaymentMethod string

const (
	MethodUPI    PaymentMethod = "upi"
	MethodBank   PaymentMethod = "bank"
	MethodWallet PaymentMethod = "wallet"
	MethodCrypto PaymentMethod = "crypto"
	MethodCash   PaymentMethod = "cash"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case MethodUPI, MethodBank, MethodWallet, MethodCrypto, MethodCash:
		return true
	}
	return false
}

var (
	ErrNotFound             = errors.New("agreement not found")
	ErrIllegalTransition    = errors.New("illegal transition for agreement state")
	ErrAlreadyClaimed       = errors.New("agreement already claimed")
	ErrInvalidAmount        = errors.New("invalid payment amount")
	ErrUnknownPaymentMethod = errors.New("unsupported payment method")
)

// Conditions carries the structured lending terms that ride along with the
// free-text conditions field. Stored as a JSON column.
type Conditions struct {
	Text             string           `json:"text,omitempty"`
	Collateral       string           `json:"collateral,omitempty"`
	MinMonthlyIncome *decimal.Decimal `json:"min_monthly_income,omitempty"`
}

type LoanAgreement struct {
	ID          uint64 `gorm:"primaryKey;column:id" json:"-"`
	AgreementID string `gorm:"size:32;uniqueIndex:ux_agreements_agreement_id_active" json:"agreement_id"`
	Kind        Kind   `gorm:"type:enum('offer','request')" json:"kind"`

	// Party ids; empty string means not yet bound. Exactly one is empty at
	// creation time, both are set once the agreement reaches accepted.
	LenderID   string `gorm:"size:32;index:idx_agreements_lender" json:"lender_id"`
	BorrowerID string `gorm:"size:32;index:idx_agreements_borrower" json:"borrower_id"`

	// Denormalized contact details for the not-yet-registered counterparty.
	LenderName    string `gorm:"size:120" json:"lender_name"`
	LenderEmail   string `gorm:"size:200" json:"lender_email"`
	BorrowerName  string `gorm:"size:120" json:"borrower_name"`
	BorrowerEmail string `gorm:"size:200" json:"borrower_email"`

	Amount         decimal.Decimal `gorm:"type:decimal(18,2)" json:"amount"`
	InterestRate   decimal.Decimal `gorm:"type:decimal(6,2)" json:"interest_rate"`
	DurationMonths int             `gorm:"column:duration_months" json:"duration_months"`
	Purpose        string          `gorm:"type:text" json:"purpose"`
	Conditions     Conditions      `gorm:"type:json;serializer:json" json:"conditions"`
	PaymentMethod  PaymentMethod   `gorm:"type:enum('upi','bank','wallet','crypto','cash')" json:"payment_method"`
	SmartContract  bool            `json:"smart_contract"`

	Status     Status     `gorm:"type:enum('pending','accepted','funded','completed','rejected','withdrawn');default:'pending'" json:"status"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	FundedAt   *time.Time `json:"funded_at,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (LoanAgreement) TableName() string { return "loan_agreements" }

// Terminal reports whether no further transition can leave the status.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}
