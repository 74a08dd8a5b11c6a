package delivery

import (
	"order_trade_core/internal/domain/delivery/handler"
	"order_trade_core/internal/domain/delivery/repository"
	"order_trade_core/internal/domain/delivery/service"
	orderRepo "order_trade_core/internal/domain/order/repository"
	pointRepo "order_trade_core/internal/domain/point/repository"
	pointService "order_trade_core/internal/domain/point/service"
	"order_trade_core/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// DeliveryModule 配送模块
type DeliveryModule struct{}

func init() {
	registry.Register(&DeliveryModule{})
}

func (m *DeliveryModule) Name() string {
	return "delivery"
}

func (m *DeliveryModule) Priority() int {
	return 20
}

func (m *DeliveryModule) Init(ctx *registry.ModuleContext) error {
	points := pointService.NewPointService(pointRepo.NewPointRepository())

	dService := service.NewDeliveryService(
		ctx.DB,
		repository.NewDeliveryRepository(),
		orderRepo.NewOrderRepository(),
		points,
	)
	dHandler := handler.NewDeliveryHandler(dService)

	setupRoutes(ctx.Router, dHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.DeliveryHandler) {
	g := r.Group("/delivery")
	{
		g.GET("/:orderId", h.GetDelivery)
		g.POST("/:orderId/ship", h.Ship())
		g.POST("/:orderId/arrive", h.Arrive())
		g.POST("/:orderId/cancel-request", h.RequestCancel())
		g.POST("/:orderId/cancel-complete", h.CompleteCancel())
		g.POST("/:orderId/return-request", h.RequestReturn())
		g.POST("/:orderId/return-arrive", h.ReturnArrive())
		g.POST("/:orderId/return-complete", h.CompleteReturn())
	}
}
