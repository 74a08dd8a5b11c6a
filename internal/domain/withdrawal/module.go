package withdrawal

import (
	deliveryRepo "order_trade_core/internal/domain/delivery/repository"
	inventoryRepo "order_trade_core/internal/domain/inventory/repository"
	inventoryService "order_trade_core/internal/domain/inventory/service"
	orderRepo "order_trade_core/internal/domain/order/repository"
	pointRepo "order_trade_core/internal/domain/point/repository"
	pointService "order_trade_core/internal/domain/point/service"
	"order_trade_core/internal/domain/withdrawal/handler"
	"order_trade_core/internal/domain/withdrawal/service"
	"order_trade_core/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// WithdrawalModule 撤回模块
type WithdrawalModule struct{}

func init() {
	registry.Register(&WithdrawalModule{})
}

func (m *WithdrawalModule) Name() string {
	return "withdrawal"
}

func (m *WithdrawalModule) Priority() int {
	// 补偿事务横跨全部账本，最后装配
	return 30
}

func (m *WithdrawalModule) Init(ctx *registry.ModuleContext) error {
	wService := service.NewWithdrawalService(
		ctx.DB,
		orderRepo.NewOrderRepository(),
		deliveryRepo.NewDeliveryRepository(),
		inventoryService.NewInventoryService(inventoryRepo.NewInventoryRepository()),
		pointService.NewPointService(pointRepo.NewPointRepository()),
	)
	wHandler := handler.NewWithdrawalHandler(wService)

	setupRoutes(ctx.Router, wHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.WithdrawalHandler) {
	r.POST("/orders/:id/withdraw", h.Withdraw)
}
