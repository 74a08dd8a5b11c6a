package service

import (
	"errors"

	"order_trade_core/internal/domain/point/model"
	"order_trade_core/internal/domain/point/repository"
	"order_trade_core/pkg/errs"
	"order_trade_core/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PointService 积分账本
// 所有变动都挂到一个订单上，幂等键 = (orderID, 流水类型)
type PointService interface {
	GetAccount(db *gorm.DB, userID string) (*model.UserAccount, error)
	// Debit 下单抵扣，无中间退款的重复扣减返回 ErrAlreadyApplied
	Debit(tx *gorm.DB, userID, orderID string, amount int64) error
	// Refund 取消/退货退还，无中间扣减的重复退还返回 ErrAlreadyApplied
	Refund(tx *gorm.DB, userID, orderID string, amount int64) error
	// CreditReward 配送完成奖励，重复触发静默跳过（applied=false）
	CreditReward(tx *gorm.DB, userID, orderID string, paymentAmount int64) (reward int64, applied bool, err error)
}

type pointService struct {
	repo repository.PointRepository
}

func NewPointService(repo repository.PointRepository) PointService {
	return &pointService{repo: repo}
}

func (s *pointService) GetAccount(db *gorm.DB, userID string) (*model.UserAccount, error) {
	account, err := s.repo.GetAccount(db, userID)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			return nil, errs.New(errs.KindNotFound, err)
		}
		return nil, err
	}
	return account, nil
}

// RewardFor 奖励 = floor(支付金额 * 0.10)，只舍不入
func RewardFor(paymentAmount int64) int64 {
	return paymentAmount / 10
}

func (s *pointService) Debit(tx *gorm.DB, userID, orderID string, amount int64) error {
	if amount < 0 {
		return errs.New(errs.KindValidation, errors.New("debit amount must not be negative"))
	}
	if amount == 0 {
		return nil
	}

	account, err := s.repo.LockAccount(tx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			return errs.New(errs.KindNotFound, err)
		}
		return err
	}

	// 无中间退款的重复扣减才是冲突；退款之后的再次扣减覆盖旧流水
	useLog, err := s.repo.GetLog(tx, orderID, model.PointKindUse)
	if err != nil {
		return err
	}
	if useLog != nil {
		refundLog, err := s.repo.GetLog(tx, orderID, model.PointKindRefund)
		if err != nil {
			return err
		}
		if refundLog == nil || refundLog.UpdatedAt.Before(useLog.UpdatedAt) {
			return errs.New(errs.KindConflict, errs.ErrAlreadyApplied).WithOrder(orderID)
		}
	}

	if account.Point < amount {
		return errs.New(errs.KindConflict, errs.ErrInsufficientPoints).WithOrder(orderID)
	}

	if err := s.repo.AddPoint(tx, userID, -amount); err != nil {
		return err
	}
	log := &model.PointLog{
		UserID:  userID,
		OrderID: orderID,
		Kind:    model.PointKindUse,
		Amount:  amount,
	}
	if useLog != nil {
		return s.repo.SupersedeLog(tx, log)
	}
	return s.repo.CreateLog(tx, log)
}

func (s *pointService) Refund(tx *gorm.DB, userID, orderID string, amount int64) error {
	if amount < 0 {
		return errs.New(errs.KindValidation, errors.New("refund amount must not be negative"))
	}
	if amount == 0 {
		return nil
	}

	if _, err := s.repo.LockAccount(tx, userID); err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			return errs.New(errs.KindNotFound, err)
		}
		return err
	}

	// 与 Debit 对称：仅当退款之后又发生过扣减，才允许再次退还
	refundLog, err := s.repo.GetLog(tx, orderID, model.PointKindRefund)
	if err != nil {
		return err
	}
	if refundLog != nil {
		useLog, err := s.repo.GetLog(tx, orderID, model.PointKindUse)
		if err != nil {
			return err
		}
		if useLog == nil || useLog.UpdatedAt.Before(refundLog.UpdatedAt) {
			return errs.New(errs.KindConflict, errs.ErrAlreadyApplied).WithOrder(orderID)
		}
	}

	if err := s.repo.AddPoint(tx, userID, amount); err != nil {
		return err
	}
	log := &model.PointLog{
		UserID:  userID,
		OrderID: orderID,
		Kind:    model.PointKindRefund,
		Amount:  amount,
	}
	if refundLog != nil {
		return s.repo.SupersedeLog(tx, log)
	}
	return s.repo.CreateLog(tx, log)
}

func (s *pointService) CreditReward(tx *gorm.DB, userID, orderID string, paymentAmount int64) (int64, bool, error) {
	reward := RewardFor(paymentAmount)
	if reward == 0 {
		return 0, false, nil
	}

	if _, err := s.repo.LockAccount(tx, userID); err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			return 0, false, errs.New(errs.KindNotFound, err)
		}
		return 0, false, err
	}

	applied, err := s.repo.HasLog(tx, orderID, model.PointKindReward)
	if err != nil {
		return 0, false, err
	}
	if applied {
		// 重试的到货回调会走到这里，压掉重复发放，不算错误
		if logger.Log != nil {
			logger.Log.Info("duplicate reward credit suppressed",
				zap.String("order_id", orderID),
				zap.String("user_id", userID),
			)
		}
		return 0, false, nil
	}

	if err := s.repo.AddPoint(tx, userID, reward); err != nil {
		return 0, false, err
	}
	if err := s.repo.CreateLog(tx, &model.PointLog{
		UserID:  userID,
		OrderID: orderID,
		Kind:    model.PointKindReward,
		Amount:  reward,
	}); err != nil {
		return 0, false, err
	}
	return reward, true, nil
}
