package payment

import (
	deliveryRepo "order_trade_core/internal/domain/delivery/repository"
	inventoryRepo "order_trade_core/internal/domain/inventory/repository"
	inventoryService "order_trade_core/internal/domain/inventory/service"
	orderRepo "order_trade_core/internal/domain/order/repository"
	orderService "order_trade_core/internal/domain/order/service"
	"order_trade_core/internal/domain/payment/gateway"
	"order_trade_core/internal/domain/payment/handler"
	"order_trade_core/internal/domain/payment/repository"
	"order_trade_core/internal/domain/payment/service"
	pointRepo "order_trade_core/internal/domain/point/repository"
	pointService "order_trade_core/internal/domain/point/service"
	"order_trade_core/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// PaymentModule 支付模块
type PaymentModule struct{}

func init() {
	registry.Register(&PaymentModule{})
}

func (m *PaymentModule) Name() string {
	return "payment"
}

func (m *PaymentModule) Priority() int {
	// 支付编排依赖订单模块的服务，优先级靠后
	return 20
}

func (m *PaymentModule) Init(ctx *registry.ModuleContext) error {
	inventory := inventoryService.NewInventoryService(inventoryRepo.NewInventoryRepository())
	points := pointService.NewPointService(pointRepo.NewPointRepository())
	orders := orderRepo.NewOrderRepository()
	orderSvc := orderService.NewOrderService(ctx.DB, orders, inventory, points)

	pService := service.NewPaymentService(
		ctx.DB,
		ctx.Redis,
		repository.NewPaymentRepository(),
		orders,
		orderSvc,
		points,
		deliveryRepo.NewDeliveryRepository(),
		gateway.NewHTTPGateway(),
	)
	pHandler := handler.NewPaymentHandler(pService)

	setupRoutes(ctx.Router, pHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.PaymentHandler) {
	g := r.Group("/payment")
	{
		g.POST("/confirm", h.Confirm)
		g.POST("/cancel", h.Cancel)
	}
}
