package repository

import (
	"errors"

	"order_trade_core/internal/domain/delivery/model"
	"order_trade_core/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeliveryRepository 配送持久层
type DeliveryRepository interface {
	Create(tx *gorm.DB, delivery *model.Delivery) error
	GetByOrderID(db *gorm.DB, orderID string) (*model.Delivery, error)
	LockByOrderID(tx *gorm.DB, orderID string) (*model.Delivery, error)
	UpdateStatus(tx *gorm.DB, deliveryID, status string) error
}

type deliveryRepository struct{}

func NewDeliveryRepository() DeliveryRepository {
	return &deliveryRepository{}
}

func (r *deliveryRepository) Create(tx *gorm.DB, delivery *model.Delivery) error {
	return tx.Create(delivery).Error
}

func (r *deliveryRepository) GetByOrderID(db *gorm.DB, orderID string) (*model.Delivery, error) {
	var delivery model.Delivery
	err := db.First(&delivery, "order_id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &delivery, nil
}

// LockByOrderID 行锁取配送单，重试的到货回调在这里串行化
func (r *deliveryRepository) LockByOrderID(tx *gorm.DB, orderID string) (*model.Delivery, error) {
	var delivery model.Delivery
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&delivery, "order_id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &delivery, nil
}

func (r *deliveryRepository) UpdateStatus(tx *gorm.DB, deliveryID, status string) error {
	result := tx.Model(&model.Delivery{}).
		Where("id = ?", deliveryID).
		UpdateColumn("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.New(errs.KindNotFound, errors.New("delivery not found"))
	}
	return nil
}
