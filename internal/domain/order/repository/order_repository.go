package repository

import (
	"errors"
	"time"

	"order_trade_core/internal/domain/order/model"
	"order_trade_core/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository 订单持久层
type OrderRepository interface {
	Create(tx *gorm.DB, order *model.Order) error
	GetByID(db *gorm.DB, orderID string) (*model.Order, error)
	GetByTradeNo(db *gorm.DB, tradeNo string) (*model.Order, error)
	LockByID(tx *gorm.DB, orderID string) (*model.Order, error)
	UpdateStatus(tx *gorm.DB, orderID, status string) error
	UpdateCancelStatus(tx *gorm.DB, orderID, cancelStatus string) error
	// StampPointSave 只在 point_save 为空时落值，保证奖励只记一次
	StampPointSave(tx *gorm.DB, orderID string, reward int64) (stamped bool, err error)
	ListExpiredPending(db *gorm.DB, now time.Time, limit int) ([]model.Order, error)
}

type orderRepository struct{}

func NewOrderRepository() OrderRepository {
	return &orderRepository{}
}

func (r *orderRepository) Create(tx *gorm.DB, order *model.Order) error {
	return tx.Create(order).Error
}

func (r *orderRepository) GetByID(db *gorm.DB, orderID string) (*model.Order, error) {
	var order model.Order
	err := db.Preload("Items").First(&order, "id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByTradeNo(db *gorm.DB, tradeNo string) (*model.Order, error) {
	var order model.Order
	err := db.Preload("Items").First(&order, "trade_no = ?", tradeNo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// LockByID 行锁取订单，状态迁移前先锁住，并发的确认/取消在这里串行化
func (r *orderRepository) LockByID(tx *gorm.DB, orderID string) (*model.Order, error) {
	var order model.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&order, "id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) UpdateStatus(tx *gorm.DB, orderID, status string) error {
	return tx.Model(&model.Order{}).
		Where("id = ?", orderID).
		UpdateColumn("status", status).Error
}

func (r *orderRepository) UpdateCancelStatus(tx *gorm.DB, orderID, cancelStatus string) error {
	return tx.Model(&model.Order{}).
		Where("id = ?", orderID).
		UpdateColumn("cancel_status", cancelStatus).Error
}

func (r *orderRepository) StampPointSave(tx *gorm.DB, orderID string, reward int64) (bool, error) {
	result := tx.Model(&model.Order{}).
		Where("id = ? AND point_save IS NULL", orderID).
		UpdateColumn("point_save", reward)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *orderRepository) ListExpiredPending(db *gorm.DB, now time.Time, limit int) ([]model.Order, error) {
	var orders []model.Order
	err := db.Preload("Items").
		Where("status = ? AND expires_at < ?", model.OrderStatusPending, now).
		Limit(limit).
		Find(&orders).Error
	return orders, err
}
