package repository

import (
	"errors"
	"time"

	"order_trade_core/internal/domain/payment/model"
	"order_trade_core/pkg/errs"

	"gorm.io/gorm"
)

// PaymentRepository 支付尝试持久层，按订单追加
type PaymentRepository interface {
	Create(db *gorm.DB, payment *model.Payment) error
	GetByPaymentKey(db *gorm.DB, paymentKey string) (*model.Payment, error)
	HasApproved(tx *gorm.DB, orderID string) (bool, error)
	GetApprovedByOrderID(db *gorm.DB, orderID string) (*model.Payment, error)
	MarkApproved(tx *gorm.DB, paymentID, method string, paidAt time.Time) error
	MarkFailed(tx *gorm.DB, paymentID, reason string) error
	UpdateStatus(tx *gorm.DB, paymentID, status string) error
}

type paymentRepository struct{}

func NewPaymentRepository() PaymentRepository {
	return &paymentRepository{}
}

func (r *paymentRepository) Create(db *gorm.DB, payment *model.Payment) error {
	return db.Create(payment).Error
}

func (r *paymentRepository) GetByPaymentKey(db *gorm.DB, paymentKey string) (*model.Payment, error) {
	var payment model.Payment
	err := db.Order("created_at DESC").First(&payment, "payment_key = ?", paymentKey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// HasApproved 提交时复查聚合不变式：一个订单至多一条 APPROVED
// 迁移里的唯一部分索引是最后一道防线，这里先给出可读的错误
func (r *paymentRepository) HasApproved(tx *gorm.DB, orderID string) (bool, error) {
	var count int64
	err := tx.Model(&model.Payment{}).
		Where("order_id = ? AND status = ?", orderID, model.PaymentStatusApproved).
		Count(&count).Error
	return count > 0, err
}

func (r *paymentRepository) GetApprovedByOrderID(db *gorm.DB, orderID string) (*model.Payment, error) {
	var payment model.Payment
	err := db.First(&payment, "order_id = ? AND status = ?", orderID, model.PaymentStatusApproved).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// MarkApproved PENDING 之外的迁移被 WHERE 条件挡住，终态单向
func (r *paymentRepository) MarkApproved(tx *gorm.DB, paymentID, method string, paidAt time.Time) error {
	return tx.Model(&model.Payment{}).
		Where("id = ? AND status = ?", paymentID, model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":  model.PaymentStatusApproved,
			"method":  method,
			"paid_at": paidAt,
		}).Error
}

func (r *paymentRepository) MarkFailed(tx *gorm.DB, paymentID, reason string) error {
	return tx.Model(&model.Payment{}).
		Where("id = ? AND status = ?", paymentID, model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":         model.PaymentStatusFailed,
			"failure_reason": reason,
		}).Error
}

func (r *paymentRepository) UpdateStatus(tx *gorm.DB, paymentID, status string) error {
	return tx.Model(&model.Payment{}).
		Where("id = ?", paymentID).
		UpdateColumn("status", status).Error
}
