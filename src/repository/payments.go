package repository

import (
	"context"
	"fmt"

	"lodging/src/models"
	"lodging/src/types"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) WithTx(tx *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: tx}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *PaymentRepository) FindCompleted(ctx context.Context, reservationID uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("reservation_id = ? AND state = ?", reservationID, types.PAYMENT_COMPLETED).
		First(&payment).Error
	if err != nil {
		return nil, translate(err)
	}
	return &payment, nil
}

func (r *PaymentRepository) HasCompleted(ctx context.Context, reservationID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("reservation_id = ? AND state = ?", reservationID, types.PAYMENT_COMPLETED).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("payment lookup: %w", err)
	}
	return count > 0, nil
}
