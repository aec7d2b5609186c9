package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"lendpeer/internal/domain/transaction"
)

type TransactionRepository struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Append(ctx context.Context, tx *transaction.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *TransactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*transaction.Transaction, error) {
	var out transaction.Transaction
	res := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, transaction.ErrNotFound
	}
	return &out, res.Error
}

func (r *TransactionRepository) ListByAgreementID(ctx context.Context, agreementID string) ([]*transaction.Transaction, error) {
	var out []*transaction.Transaction
	err := r.db.WithContext(ctx).
		Where("agreement_id = ?", agreementID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// MarkStatus moves a pending row to a final status with the same guarded
// UPDATE shape the agreement side uses, so a late gateway callback can
// never overwrite an outcome that already landed.
func (r *TransactionRepository) MarkStatus(ctx context.Context, transactionID string, to transaction.Status) (bool, error) {
	if !to.Final() {
		return false, transaction.ErrInvalidStatus
	}
	res := r.db.WithContext(ctx).
		Model(&transaction.Transaction{}).
		Where("transaction_id = ? AND status = ?", transactionID, transaction.StatusPending).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
