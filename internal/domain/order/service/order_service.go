package service

import (
	"errors"
	"fmt"
	"time"

	inventoryService "order_trade_core/internal/domain/inventory/service"
	"order_trade_core/internal/domain/order/model"
	"order_trade_core/internal/domain/order/repository"
	pointService "order_trade_core/internal/domain/point/service"
	"order_trade_core/internal/pkg/config"
	"order_trade_core/pkg/errs"
	"order_trade_core/pkg/logger"
	"order_trade_core/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LineInput 下单行项
type LineInput struct {
	ItemID string
	Size   string
	Qty    int
}

// Recipient 收件信息
type Recipient struct {
	Name    string
	Phone   string
	Address string
}

// OrderService 订单聚合
type OrderService interface {
	// Create 预占库存并落单，任一行预占失败则整体回滚
	Create(userID string, lines []LineInput, pointUsage int64, recipient Recipient) (*model.Order, error)
	Get(orderID string) (*model.Order, error)
	// FailAndRelease 在调用方事务内将 PENDING 订单置为 FAILED 并归还库存
	FailAndRelease(tx *gorm.DB, orderID string) error
	// Cancel 用户主动取消未支付订单，走与失败相同的归还路径
	Cancel(orderID string) error
	// ReclaimExpired 回收过期 PENDING 订单，返回处理数量
	ReclaimExpired(limit int) (int, error)
}

type orderService struct {
	db        *gorm.DB
	repo      repository.OrderRepository
	inventory inventoryService.InventoryService
	points    pointService.PointService
}

func NewOrderService(
	db *gorm.DB,
	repo repository.OrderRepository,
	inventory inventoryService.InventoryService,
	points pointService.PointService,
) OrderService {
	return &orderService{db: db, repo: repo, inventory: inventory, points: points}
}

func (s *orderService) Create(userID string, lines []LineInput, pointUsage int64, recipient Recipient) (*model.Order, error) {
	if len(lines) == 0 {
		return nil, errs.New(errs.KindValidation, errors.New("order must contain at least one line item"))
	}
	if pointUsage < 0 {
		return nil, errs.New(errs.KindValidation, errors.New("point usage must not be negative"))
	}

	account, err := s.points.GetAccount(s.db, userID)
	if err != nil {
		return nil, err
	}
	if account.Point < pointUsage {
		// 实际扣减发生在支付成功时，这里提前拦截明显超额的抵扣
		return nil, errs.New(errs.KindConflict, errs.ErrInsufficientPoints)
	}

	order := &model.Order{
		TradeNo:          newTradeNo(),
		UserID:           userID,
		PointUsage:       pointUsage,
		Status:           model.OrderStatusPending,
		CancelStatus:     model.CancelStatusNone,
		OrderedAt:        time.Now(),
		RecipientName:    recipient.Name,
		RecipientPhone:   recipient.Phone,
		RecipientAddress: recipient.Address,
	}
	order.ExpiresAt = order.OrderedAt.Add(config.GlobalConfig.Trade.OrderTTL())

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var itemTotal int64
		for _, line := range lines {
			// 行锁预占；失败即返回，本事务内已预占的行随回滚一并归还
			// 单价取自锁定行快照，避免锁外读到并发改价前的旧价
			item, err := s.inventory.Reserve(tx, line.ItemID, line.Qty)
			if err != nil {
				return err
			}
			itemTotal += item.Price * int64(line.Qty)
			order.Items = append(order.Items, model.OrderItem{
				ItemID:    line.ItemID,
				Size:      line.Size,
				UnitPrice: item.Price,
				Qty:       line.Qty,
			})
		}

		if pointUsage > itemTotal {
			return errs.New(errs.KindValidation, errors.New("point usage exceeds order total"))
		}
		order.ItemTotal = itemTotal
		order.Amount = itemTotal - pointUsage

		return s.repo.Create(tx, order)
	})
	if err != nil {
		return nil, err
	}

	metrics.Get().OrdersCreatedTotal.Inc()
	return order, nil
}

func (s *orderService) Get(orderID string) (*model.Order, error) {
	order, err := s.repo.GetByID(s.db, orderID)
	if err != nil {
		if errors.Is(err, errs.ErrOrderNotFound) {
			return nil, errs.New(errs.KindNotFound, err).WithOrder(orderID)
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) FailAndRelease(tx *gorm.DB, orderID string) error {
	order, err := s.repo.LockByID(tx, orderID)
	if err != nil {
		if errors.Is(err, errs.ErrOrderNotFound) {
			return errs.New(errs.KindNotFound, err).WithOrder(orderID)
		}
		return err
	}
	if order.Status != model.OrderStatusPending {
		// 并发的确认已经把订单带离 PENDING，预占归属已转移，不再归还
		return errs.New(errs.KindConflict, errs.ErrOrderAlreadyProcessed).WithOrder(orderID)
	}

	for _, item := range order.Items {
		if err := s.inventory.Release(tx, item.ItemID, item.Qty); err != nil {
			return err
		}
	}
	return s.repo.UpdateStatus(tx, orderID, model.OrderStatusFailed)
}

func (s *orderService) Cancel(orderID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.LockByID(tx, orderID)
		if err != nil {
			if errors.Is(err, errs.ErrOrderNotFound) {
				return errs.New(errs.KindNotFound, err).WithOrder(orderID)
			}
			return err
		}
		if order.Status != model.OrderStatusPending {
			return errs.New(errs.KindConflict, errs.ErrOrderAlreadyProcessed).WithOrder(orderID)
		}

		for _, item := range order.Items {
			if err := s.inventory.Release(tx, item.ItemID, item.Qty); err != nil {
				return err
			}
		}
		if err := s.repo.UpdateStatus(tx, orderID, model.OrderStatusCanceled); err != nil {
			return err
		}
		return s.repo.UpdateCancelStatus(tx, orderID, model.CancelStatusRequested)
	})
}

func (s *orderService) ReclaimExpired(limit int) (int, error) {
	// 同一条失败路径：归还库存 + 置 FAILED，与显式取消一致
	expired, err := s.repo.ListExpiredPending(s.db, time.Now(), limit)
	if err != nil {
		return 0, err
	}

	reclaimed := 0
	for _, order := range expired {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			return s.FailAndRelease(tx, order.ID)
		})
		if err != nil {
			// 单个失败不阻塞批次，下一轮扫描还会看到它
			if logger.Log != nil {
				logger.Log.Warn("failed to reclaim expired order",
					zap.String("order_id", order.ID),
					zap.Error(err),
				)
			}
			continue
		}
		reclaimed++
		metrics.Get().ExpiredOrdersReclaimed.Inc()
	}
	return reclaimed, nil
}

// newTradeNo 对外订单号：时间戳前缀 + UUID 片段
func newTradeNo() string {
	return fmt.Sprintf("%s%s", time.Now().Format("20060102150405"), uuid.New().String()[:8])
}
