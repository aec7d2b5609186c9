package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "lendpeer/internal/domain/agreement"
)

type AgreementRepository struct{ db *gorm.DB }

func NewAgreementRepository(db *gorm.DB) *AgreementRepository { return &AgreementRepository{db: db} }

func (r *AgreementRepository) Create(ctx context.Context, a *domain.LoanAgreement) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AgreementRepository) GetByAgreementID(ctx context.Context, agreementID string) (*domain.LoanAgreement, error) {
	var out domain.LoanAgreement
	res := r.db.WithContext(ctx).Where("agreement_id = ?", agreementID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	return &out, res.Error
}

func (r *AgreementRepository) ListOpenRequests(ctx context.Context, limit int) ([]*domain.LoanAgreement, error) {
	q := r.db.WithContext(ctx).
		Where("kind = ? AND status = ?", domain.KindRequest, domain.StatusPending).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*domain.LoanAgreement
	return out, q.Find(&out).Error
}

// UpdateIfStatus is the conditional write the whole lifecycle hangs off:
// one UPDATE guarded by the previously observed status, won or lost by
// RowsAffected. Claim races, double funding and double completion all
// collapse to losing this swap.
func (r *AgreementRepository) UpdateIfStatus(ctx context.Context, agreementID string, expected domain.Status, fields map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.LoanAgreement{}).
		Where("agreement_id = ? AND status = ?", agreementID, expected).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *AgreementRepository) SoftDelete(ctx context.Context, agreementID string) error {
	return r.db.WithContext(ctx).
		Where("agreement_id = ?", agreementID).
		Delete(&domain.LoanAgreement{}).Error
}
