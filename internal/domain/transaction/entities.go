package transaction

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindDisbursement Kind = "disbursement"
	KindRepayment    Kind = "repayment"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

var (
	ErrNotFound      = errors.New("transaction not found")
	ErrNotPending    = errors.New("transaction is not pending")
	ErrInvalidStatus = errors.New("invalid transaction status")
)

// Final reports whether a status may no longer change. Rows are append-only;
// the single legal mutation is pending to one of the final statuses.
func (s Status) Final() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

type Transaction struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	TransactionID string          `gorm:"size:32;uniqueIndex:ux_transactions_transaction_id" json:"transaction_id"`
	AgreementID   string          `gorm:"size:32;index:idx_transactions_agreement" json:"agreement_id"`
	Kind          Kind            `gorm:"type:enum('disbursement','repayment')" json:"kind"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2)" json:"amount"`
	PaymentMethod string          `gorm:"size:40" json:"payment_method"`
	Reference     string          `gorm:"size:200" json:"reference"`
	Status        Status          `gorm:"type:enum('pending','completed','failed','cancelled');default:'pending'" json:"status"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Transaction) TableName() string { return "loan_transactions" }
