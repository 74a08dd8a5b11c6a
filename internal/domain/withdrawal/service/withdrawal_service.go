package service

import (
	"errors"
	"fmt"

	deliveryModel "order_trade_core/internal/domain/delivery/model"
	deliveryRepo "order_trade_core/internal/domain/delivery/repository"
	inventoryService "order_trade_core/internal/domain/inventory/service"
	orderModel "order_trade_core/internal/domain/order/model"
	orderRepo "order_trade_core/internal/domain/order/repository"
	pointService "order_trade_core/internal/domain/point/service"
	"order_trade_core/internal/pkg/worker"
	"order_trade_core/pkg/errs"
	"order_trade_core/pkg/logger"
	"order_trade_core/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Result 撤回结果
type Result struct {
	OrderID        string `json:"orderId"`
	Phase          string `json:"phase"`          // pre_fulfillment | return
	RefundedPoints int64  `json:"refundedPoints"` // 退回用户积分账户的总额
	DeliveryStatus string `json:"deliveryStatus"`
}

const (
	phasePreFulfillment = "pre_fulfillment"
	phaseReturn         = "return"
)

// WithdrawalService 撤回已成交订单的补偿事务
// 库存归还、积分退款、配送/订单终态在同一个数据库事务内提交，不存在半截状态
type WithdrawalService interface {
	Withdraw(orderID, reason string) (*Result, error)
}

type withdrawalService struct {
	db        *gorm.DB
	orders    orderRepo.OrderRepository
	delivery  deliveryRepo.DeliveryRepository
	inventory inventoryService.InventoryService
	points    pointService.PointService
}

func NewWithdrawalService(
	db *gorm.DB,
	orders orderRepo.OrderRepository,
	delivery deliveryRepo.DeliveryRepository,
	inventory inventoryService.InventoryService,
	points pointService.PointService,
) WithdrawalService {
	return &withdrawalService{
		db:        db,
		orders:    orders,
		delivery:  delivery,
		inventory: inventory,
		points:    points,
	}
}

func (s *withdrawalService) Withdraw(orderID, reason string) (*Result, error) {
	var result *Result
	var userID string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.orders.LockByID(tx, orderID)
		if err != nil {
			if errors.Is(err, errs.ErrOrderNotFound) {
				return errs.New(errs.KindNotFound, err).WithOrder(orderID)
			}
			return err
		}

		if order.Status == orderModel.OrderStatusWithdraw ||
			order.CancelStatus == orderModel.CancelStatusCompleted {
			return errs.New(errs.KindConflict, errs.ErrAlreadyWithdrawn).WithOrder(orderID)
		}
		if order.Status != orderModel.OrderStatusSucceeded {
			// 未成交的订单走订单取消路径，不在补偿范围内
			return errs.New(errs.KindConflict, errs.ErrOrderAlreadyProcessed).WithOrder(orderID)
		}

		delivery, err := s.delivery.LockByOrderID(tx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.New(errs.KindNotFound, errors.New("delivery not found")).WithOrder(orderID)
			}
			return err
		}

		var phase, deliveryTarget string
		var refund int64

		switch delivery.Status {
		case deliveryModel.StatusReady, deliveryModel.StatusShipping:
			// 履约前撤回：归还库存，退 积分抵扣 + 支付金额
			phase = phasePreFulfillment
			deliveryTarget = deliveryModel.StatusCanceled
			refund = order.PointUsage + order.Amount

			for _, item := range order.Items {
				if err := s.inventory.Release(tx, item.ItemID, item.Qty); err != nil {
					return err
				}
			}

		case deliveryModel.StatusArrived:
			// 履约后退货：已发的奖励要扣回，缺失字段按 0 处理
			phase = phaseReturn
			deliveryTarget = deliveryModel.StatusReturned
			refund = order.PointUsage + order.Amount - order.PointSaveOrZero()
			if refund < 0 {
				refund = 0
			}

		default:
			// 已在取消/退货流程中的配送单拒绝再次撤回
			return errs.New(errs.KindConflict, errs.ErrAlreadyWithdrawn).
				WithOrder(orderID).
				WithTransition(delivery.Status, "WITHDRAW")
		}

		if err := s.points.Refund(tx, order.UserID, orderID, refund); err != nil {
			return err
		}
		if err := s.delivery.UpdateStatus(tx, delivery.ID, deliveryTarget); err != nil {
			return err
		}
		if err := s.orders.UpdateStatus(tx, orderID, orderModel.OrderStatusWithdraw); err != nil {
			return err
		}
		if err := s.orders.UpdateCancelStatus(tx, orderID, orderModel.CancelStatusCompleted); err != nil {
			return err
		}

		userID = order.UserID
		result = &Result{
			OrderID:        orderID,
			Phase:          phase,
			RefundedPoints: refund,
			DeliveryStatus: deliveryTarget,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("order withdrawn",
		zap.String("order_id", orderID),
		zap.String("phase", result.Phase),
		zap.Int64("refunded", result.RefundedPoints),
		zap.String("reason", reason),
	)
	metrics.Get().WithdrawalsTotal.WithLabelValues(result.Phase).Inc()
	worker.Notify(userID, "order.withdrawn",
		fmt.Sprintf("order %s withdrawn (%s), refunded %d", orderID, result.Phase, result.RefundedPoints))
	return result, nil
}
