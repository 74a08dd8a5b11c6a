package service

import (
	"errors"

	"order_trade_core/internal/domain/inventory/model"
	"order_trade_core/internal/domain/inventory/repository"
	"order_trade_core/pkg/errs"

	"gorm.io/gorm"
)

// InventoryService 库存账本
// Reserve/Release 必须在调用方事务内执行，下单失败时回滚即撤销预占
type InventoryService interface {
	// Reserve 返回行锁下的商品快照，Quantity 为扣减后的剩余量
	// 调用方必须用这份快照定价，锁外读出的价格可能已过期
	Reserve(tx *gorm.DB, itemID string, qty int) (*model.ProductItem, error)
	Release(tx *gorm.DB, itemID string, qty int) error
	GetItem(db *gorm.DB, itemID string) (*model.ProductItem, error)
}

type inventoryService struct {
	repo repository.InventoryRepository
}

func NewInventoryService(repo repository.InventoryRepository) InventoryService {
	return &inventoryService{repo: repo}
}

// Reserve 行锁预占库存，返回锁定行的商品快照
func (s *inventoryService) Reserve(tx *gorm.DB, itemID string, qty int) (*model.ProductItem, error) {
	if qty <= 0 {
		return nil, errs.New(errs.KindValidation, errors.New("reserve qty must be positive"))
	}

	item, err := s.repo.LockByID(tx, itemID)
	if err != nil {
		if errors.Is(err, errs.ErrItemNotFound) {
			return nil, errs.New(errs.KindNotFound, err)
		}
		return nil, err
	}

	if item.Quantity < qty {
		return nil, errs.New(errs.KindConflict, errs.ErrOutOfStock)
	}

	if err := s.repo.AddQuantity(tx, itemID, -qty); err != nil {
		return nil, err
	}
	item.Quantity -= qty
	return item, nil
}

// Release 归还库存，补偿路径使用，只会因商品不存在失败
func (s *inventoryService) Release(tx *gorm.DB, itemID string, qty int) error {
	if qty <= 0 {
		return errs.New(errs.KindValidation, errors.New("release qty must be positive"))
	}

	// 归还同样先取行锁，与并发的预占串行化
	if _, err := s.repo.LockByID(tx, itemID); err != nil {
		if errors.Is(err, errs.ErrItemNotFound) {
			return errs.New(errs.KindNotFound, err)
		}
		return err
	}
	return s.repo.AddQuantity(tx, itemID, qty)
}

func (s *inventoryService) GetItem(db *gorm.DB, itemID string) (*model.ProductItem, error) {
	item, err := s.repo.GetByID(db, itemID)
	if err != nil {
		if errors.Is(err, errs.ErrItemNotFound) {
			return nil, errs.New(errs.KindNotFound, err)
		}
		return nil, err
	}
	return item, nil
}
