package repository

import (
	"errors"

	"order_trade_core/internal/domain/point/model"
	"order_trade_core/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PointRepository 积分账本持久层
type PointRepository interface {
	GetAccount(db *gorm.DB, userID string) (*model.UserAccount, error)
	LockAccount(tx *gorm.DB, userID string) (*model.UserAccount, error)
	AddPoint(tx *gorm.DB, userID string, delta int64) error
	HasLog(tx *gorm.DB, orderID, kind string) (bool, error)
	GetLog(tx *gorm.DB, orderID, kind string) (*model.PointLog, error)
	CreateLog(tx *gorm.DB, log *model.PointLog) error
	SupersedeLog(tx *gorm.DB, log *model.PointLog) error
}

type pointRepository struct{}

func NewPointRepository() PointRepository {
	return &pointRepository{}
}

func (r *pointRepository) GetAccount(db *gorm.DB, userID string) (*model.UserAccount, error) {
	var account model.UserAccount
	if err := db.First(&account, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, err
	}
	return &account, nil
}

// LockAccount 行锁锁定账户，同一用户的积分变动串行化
func (r *pointRepository) LockAccount(tx *gorm.DB, userID string) (*model.UserAccount, error) {
	var account model.UserAccount
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, err
	}
	return &account, nil
}

// AddPoint 增减余额，调用前必须已持有账户行锁
func (r *pointRepository) AddPoint(tx *gorm.DB, userID string, delta int64) error {
	result := tx.Model(&model.UserAccount{}).
		Where("id = ?", userID).
		UpdateColumn("point", gorm.Expr("point + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.ErrUserNotFound
	}
	return nil
}

func (r *pointRepository) HasLog(tx *gorm.DB, orderID, kind string) (bool, error) {
	var count int64
	err := tx.Model(&model.PointLog{}).
		Where("order_id = ? AND kind = ?", orderID, kind).
		Count(&count).Error
	return count > 0, err
}

// GetLog 取订单指定类型的流水，不存在时返回 nil
func (r *pointRepository) GetLog(tx *gorm.DB, orderID, kind string) (*model.PointLog, error) {
	var log model.PointLog
	err := tx.First(&log, "order_id = ? AND kind = ?", orderID, kind).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

func (r *pointRepository) CreateLog(tx *gorm.DB, log *model.PointLog) error {
	return tx.Create(log).Error
}

// SupersedeLog 覆盖同 (order_id, kind) 的既有流水
// 退款后的再次扣减等合法重记走这里，绕开唯一索引冲突
func (r *pointRepository) SupersedeLog(tx *gorm.DB, log *model.PointLog) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}, {Name: "kind"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "amount", "updated_at"}),
	}).Create(log).Error
}
