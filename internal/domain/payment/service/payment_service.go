package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	deliveryModel "order_trade_core/internal/domain/delivery/model"
	deliveryRepo "order_trade_core/internal/domain/delivery/repository"
	orderModel "order_trade_core/internal/domain/order/model"
	orderRepo "order_trade_core/internal/domain/order/repository"
	orderService "order_trade_core/internal/domain/order/service"
	"order_trade_core/internal/domain/payment/gateway"
	"order_trade_core/internal/domain/payment/model"
	"order_trade_core/internal/domain/payment/repository"
	pointService "order_trade_core/internal/domain/point/service"
	"order_trade_core/internal/pkg/config"
	"order_trade_core/internal/pkg/worker"
	"order_trade_core/pkg/errs"
	"order_trade_core/pkg/logger"
	"order_trade_core/pkg/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentService 支付编排
// 单次尝试的状态机：PENDING → APPROVED | FAILED，均为终态
type PaymentService interface {
	// Confirm 确认支付：校验订单与金额 → 落 PENDING 尝试 → 调网关 → 提交终态
	Confirm(ctx context.Context, paymentKey, tradeNo string, amount int64) (*model.Payment, error)
	// Cancel 取消已批准的支付；对已 CANCELED/REFUNDED 的支付是幂等空操作
	Cancel(ctx context.Context, paymentKey, cancelReason string, cancelAmount int64) (*model.Payment, error)
}

type paymentService struct {
	db       *gorm.DB
	rdb      *redis.Client
	repo     repository.PaymentRepository
	orders   orderRepo.OrderRepository
	orderSvc orderService.OrderService
	points   pointService.PointService
	delivery deliveryRepo.DeliveryRepository
	gw       gateway.PaymentGateway
}

func NewPaymentService(
	db *gorm.DB,
	rdb *redis.Client,
	repo repository.PaymentRepository,
	orders orderRepo.OrderRepository,
	orderSvc orderService.OrderService,
	points pointService.PointService,
	delivery deliveryRepo.DeliveryRepository,
	gw gateway.PaymentGateway,
) PaymentService {
	return &paymentService{
		db:       db,
		rdb:      rdb,
		repo:     repo,
		orders:   orders,
		orderSvc: orderSvc,
		points:   points,
		delivery: delivery,
		gw:       gw,
	}
}

func (s *paymentService) Confirm(ctx context.Context, paymentKey, tradeNo string, amount int64) (*model.Payment, error) {
	m := metrics.Get()

	// 0. 同一 paymentKey 的并发确认用 redis 门闩先挡掉，避免都打到行锁上
	if s.rdb != nil {
		key := "trade:confirm:inflight:" + paymentKey
		ok, err := s.rdb.SetNX(ctx, key, "1", config.GlobalConfig.Gateway.Timeout()*2).Result()
		if err == nil && !ok {
			return nil, errs.New(errs.KindConflict, errs.ErrConfirmInFlight)
		}
		defer s.rdb.Del(context.Background(), key)
	}

	// 1. 按对外订单号定位订单
	order, err := s.orders.GetByTradeNo(s.db, tradeNo)
	if err != nil {
		if errors.Is(err, errs.ErrOrderNotFound) {
			return nil, errs.New(errs.KindNotFound, err)
		}
		return nil, err
	}
	if order.IsTerminal() {
		// 重复确认按硬错误处理：重提的请求可能带着不同的 paymentKey
		return nil, errs.New(errs.KindConflict, errs.ErrOrderAlreadyProcessed).WithOrder(order.ID)
	}

	// 2. 金额校验，不匹配直接失败，不触发网关调用
	if amount != order.Amount {
		m.PaymentConfirmTotal.WithLabelValues("rejected").Inc()
		return nil, errs.New(errs.KindValidation, errs.ErrAmountMismatch).WithOrder(order.ID)
	}

	// 3. 先在独立事务里落 PENDING 尝试记录
	// 之后进程崩溃也能留下已发往网关的审计痕迹，外层失败不得回滚它
	payment := &model.Payment{
		OrderID:    order.ID,
		UserID:     order.UserID,
		TradeNo:    tradeNo,
		PaymentKey: paymentKey,
		Amount:     amount,
		Status:     model.PaymentStatusPending,
	}
	if err := s.repo.Create(s.db, payment); err != nil {
		return nil, err
	}

	// 4. 调网关，超时有界
	callCtx, cancel := context.WithTimeout(ctx, config.GlobalConfig.Gateway.Timeout())
	defer cancel()
	resp, err := s.gw.Confirm(callCtx, gateway.ConfirmRequest{
		PaymentKey: paymentKey,
		OrderID:    tradeNo,
		Amount:     amount,
	})
	if err != nil {
		return s.handleGatewayFailure(order, payment, err)
	}
	if resp.TotalAmount != amount {
		// 网关确认金额与请求不一致，按硬失败收尾
		err := errs.New(errs.KindInternal, errs.ErrAmountMismatch).WithOrder(order.ID)
		return s.handleGatewayFailure(order, payment, err)
	}

	// 5. 提交终态：订单 SUCCEEDED + 支付 APPROVED + 积分抵扣 + 配送 READY
	err = s.db.Transaction(func(tx *gorm.DB) error {
		locked, err := s.orders.LockByID(tx, order.ID)
		if err != nil {
			return err
		}
		if locked.Status != orderModel.OrderStatusPending {
			return errs.New(errs.KindConflict, errs.ErrOrderAlreadyProcessed).WithOrder(order.ID)
		}

		approved, err := s.repo.HasApproved(tx, order.ID)
		if err != nil {
			return err
		}
		if approved {
			return errs.New(errs.KindConflict, errs.ErrOrderAlreadyProcessed).WithOrder(order.ID)
		}

		if err := s.repo.MarkApproved(tx, payment.ID, resp.Method, time.Now()); err != nil {
			return err
		}
		if err := s.orders.UpdateStatus(tx, order.ID, orderModel.OrderStatusSucceeded); err != nil {
			return err
		}

		// 下单时声明的积分抵扣在支付成功时才真正记账
		if err := s.points.Debit(tx, order.UserID, order.ID, order.PointUsage); err != nil {
			return err
		}

		// 支付成功不发奖励积分，奖励在配送到货时发
		return s.delivery.Create(tx, &deliveryModel.Delivery{
			OrderID:          order.ID,
			Status:           deliveryModel.StatusReady,
			RecipientName:    order.RecipientName,
			RecipientPhone:   order.RecipientPhone,
			RecipientAddress: order.RecipientAddress,
		})
	})
	if err != nil {
		// 网关已扣款但本地提交失败：标记尝试失败并让订单走失败归还路径，
		// 资金侧靠幂等的 Cancel 流程对账
		logger.Log.Error("local commit failed after gateway approval",
			zap.String("order_id", order.ID),
			zap.String("payment_key", paymentKey),
			zap.Error(err),
		)
		return s.handleGatewayFailure(order, payment, err)
	}

	payment.Status = model.PaymentStatusApproved
	payment.Method = resp.Method
	m.PaymentConfirmTotal.WithLabelValues("approved").Inc()
	worker.Notify(order.UserID, "payment.approved",
		fmt.Sprintf("order %s paid, amount %d", order.TradeNo, amount))
	return payment, nil
}

// handleGatewayFailure 网关失败收尾
// 可重试错误（5xx/429/超时）只终结本次尝试，订单留在 PENDING 等调用方重试；
// 硬失败连同订单一起置 FAILED 并归还库存，不留下孤儿预占
func (s *paymentService) handleGatewayFailure(order *orderModel.Order, payment *model.Payment, cause error) (*model.Payment, error) {
	m := metrics.Get()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.MarkFailed(tx, payment.ID, cause.Error()); err != nil {
			return err
		}
		if errs.IsRetryable(cause) {
			return nil
		}
		return s.orderSvc.FailAndRelease(tx, order.ID)
	})
	if err != nil {
		logger.Log.Error("failed to finalize payment failure",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
		return nil, err
	}

	if errs.IsRetryable(cause) {
		m.PaymentConfirmTotal.WithLabelValues("retryable").Inc()
	} else {
		m.PaymentConfirmTotal.WithLabelValues("failed").Inc()
	}
	return nil, cause
}

func (s *paymentService) Cancel(ctx context.Context, paymentKey, cancelReason string, cancelAmount int64) (*model.Payment, error) {
	payment, err := s.repo.GetByPaymentKey(s.db, paymentKey)
	if err != nil {
		if errors.Is(err, errs.ErrPaymentNotFound) {
			return nil, errs.New(errs.KindNotFound, err)
		}
		return nil, err
	}

	switch payment.Status {
	case model.PaymentStatusCanceled, model.PaymentStatusRefunded:
		// 幂等空操作：重复取消返回成功
		logger.Log.Info("duplicate payment cancel suppressed",
			zap.String("payment_key", paymentKey),
			zap.String("status", payment.Status),
		)
		return payment, nil
	case model.PaymentStatusApproved:
		// 仅 APPROVED 可取消
	default:
		return nil, errs.New(errs.KindConflict,
			fmt.Errorf("payment in status %s cannot be canceled", payment.Status)).
			WithOrder(payment.OrderID)
	}

	callCtx, cancel := context.WithTimeout(ctx, config.GlobalConfig.Gateway.Timeout())
	defer cancel()
	if _, err := s.gw.Cancel(callCtx, gateway.CancelRequest{
		PaymentKey:   paymentKey,
		CancelReason: cancelReason,
		CancelAmount: cancelAmount,
	}); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(s.db, payment.ID, model.PaymentStatusCanceled); err != nil {
		return nil, err
	}
	payment.Status = model.PaymentStatusCanceled
	return payment, nil
}
