package order

import (
	inventoryRepo "order_trade_core/internal/domain/inventory/repository"
	inventoryService "order_trade_core/internal/domain/inventory/service"
	"order_trade_core/internal/domain/order/handler"
	"order_trade_core/internal/domain/order/repository"
	"order_trade_core/internal/domain/order/service"
	pointRepo "order_trade_core/internal/domain/point/repository"
	pointService "order_trade_core/internal/domain/point/service"
	"order_trade_core/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// OrderModule 订单模块
type OrderModule struct{}

func init() {
	registry.Register(&OrderModule{})
}

func (m *OrderModule) Name() string {
	return "order"
}

func (m *OrderModule) Priority() int {
	// 订单依赖库存/积分两本账，但账本无路由，这里一并装配
	return 10
}

func (m *OrderModule) Init(ctx *registry.ModuleContext) error {
	inventory := inventoryService.NewInventoryService(inventoryRepo.NewInventoryRepository())
	points := pointService.NewPointService(pointRepo.NewPointRepository())

	oService := service.NewOrderService(ctx.DB, repository.NewOrderRepository(), inventory, points)
	oHandler := handler.NewOrderHandler(oService)

	setupRoutes(ctx.Router, oHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.OrderHandler) {
	g := r.Group("/orders")
	{
		g.POST("/create", h.CreateOrder)
		g.GET("/:id", h.GetOrder)
		g.POST("/:id/cancel", h.CancelOrder)
	}
}
