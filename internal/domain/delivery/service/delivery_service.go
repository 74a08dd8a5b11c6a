package service

import (
	"errors"
	"fmt"

	"order_trade_core/internal/domain/delivery/model"
	"order_trade_core/internal/domain/delivery/repository"
	orderRepo "order_trade_core/internal/domain/order/repository"
	pointService "order_trade_core/internal/domain/point/service"
	"order_trade_core/internal/pkg/worker"
	"order_trade_core/pkg/errs"
	"order_trade_core/pkg/logger"
	"order_trade_core/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DeliveryService 配送状态机
// 允许表外的迁移一律拒绝；到货是奖励积分的唯一触发点
type DeliveryService interface {
	Transition(orderID, target string) (*model.Delivery, error)
	Get(orderID string) (*model.Delivery, error)
}

type deliveryService struct {
	db     *gorm.DB
	repo   repository.DeliveryRepository
	orders orderRepo.OrderRepository
	points pointService.PointService
}

func NewDeliveryService(
	db *gorm.DB,
	repo repository.DeliveryRepository,
	orders orderRepo.OrderRepository,
	points pointService.PointService,
) DeliveryService {
	return &deliveryService{db: db, repo: repo, orders: orders, points: points}
}

func (s *deliveryService) Get(orderID string) (*model.Delivery, error) {
	delivery, err := s.repo.GetByOrderID(s.db, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.KindNotFound, errors.New("delivery not found")).WithOrder(orderID)
		}
		return nil, err
	}
	return delivery, nil
}

func (s *deliveryService) Transition(orderID, target string) (*model.Delivery, error) {
	var result *model.Delivery
	err := s.db.Transaction(func(tx *gorm.DB) error {
		delivery, err := s.repo.LockByOrderID(tx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.New(errs.KindNotFound, errors.New("delivery not found")).WithOrder(orderID)
			}
			return err
		}

		if delivery.Status == model.StatusArrived && target == model.StatusArrived {
			// 重试的到货回调：状态不动，奖励由幂等守卫压掉，按成功返回
			result = delivery
			return nil
		}

		if !model.CanTransition(delivery.Status, target) {
			return errs.New(errs.KindInvalidTransition, errs.ErrInvalidTransition).
				WithOrder(orderID).
				WithTransition(delivery.Status, target)
		}

		if target == model.StatusArrived {
			if err := s.creditArrivalReward(tx, orderID); err != nil {
				return err
			}
		}

		if err := s.repo.UpdateStatus(tx, delivery.ID, target); err != nil {
			return err
		}
		delivery.Status = target
		result = delivery
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// creditArrivalReward 到货奖励：floor(支付金额 * 10%)，同订单只发一次
// 发放成功后把金额盖到 Order.PointSave，盖章本身也带 point_save IS NULL 守卫
func (s *deliveryService) creditArrivalReward(tx *gorm.DB, orderID string) error {
	order, err := s.orders.LockByID(tx, orderID)
	if err != nil {
		if errors.Is(err, errs.ErrOrderNotFound) {
			return errs.New(errs.KindNotFound, err).WithOrder(orderID)
		}
		return err
	}

	reward, applied, err := s.points.CreditReward(tx, order.UserID, orderID, order.Amount)
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	stamped, err := s.orders.StampPointSave(tx, orderID, reward)
	if err != nil {
		return err
	}
	if !stamped {
		// 流水守卫和盖章守卫不一致，说明有绕过账本的写入
		logger.Log.Warn("point_save already stamped but reward log was absent",
			zap.String("order_id", orderID),
		)
	}

	metrics.Get().DeliveryArrivedTotal.Inc()
	worker.Notify(order.UserID, "delivery.arrived",
		fmt.Sprintf("order %s delivered, %d points rewarded", order.TradeNo, reward))
	return nil
}
