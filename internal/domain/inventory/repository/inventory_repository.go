package repository

import (
	"errors"

	"order_trade_core/internal/domain/inventory/model"
	"order_trade_core/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryRepository 库存账本持久层
// 所有方法显式接收 *gorm.DB，由调用方决定事务边界，保证预占和订单落库在同一事务
type InventoryRepository interface {
	GetByID(db *gorm.DB, itemID string) (*model.ProductItem, error)
	LockByID(tx *gorm.DB, itemID string) (*model.ProductItem, error)
	AddQuantity(tx *gorm.DB, itemID string, delta int) error
}

type inventoryRepository struct{}

func NewInventoryRepository() InventoryRepository {
	return &inventoryRepository{}
}

func (r *inventoryRepository) GetByID(db *gorm.DB, itemID string) (*model.ProductItem, error) {
	var item model.ProductItem
	if err := db.First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// LockByID 以 SELECT ... FOR UPDATE 锁定库存行
// 同一 SKU 的并发预占在这里串行化，不同 SKU 互不阻塞
func (r *inventoryRepository) LockByID(tx *gorm.DB, itemID string) (*model.ProductItem, error) {
	var item model.ProductItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, "id = ?", itemID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// AddQuantity 增减库存，调用前必须已持有行锁
func (r *inventoryRepository) AddQuantity(tx *gorm.DB, itemID string, delta int) error {
	result := tx.Model(&model.ProductItem{}).
		Where("id = ?", itemID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.ErrItemNotFound
	}
	return nil
}
