package handler

import (
	"order_trade_core/internal/domain/delivery/model"
	"order_trade_core/internal/domain/delivery/service"
	"order_trade_core/pkg/response"

	"github.com/gin-gonic/gin"
)

type DeliveryHandler struct {
	service service.DeliveryService
}

func NewDeliveryHandler(s service.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{service: s}
}

// GetDelivery 查询配送状态
// @Summary 查询配送状态
// @Tags Delivery
// @Produce json
// @Param orderId path string true "Order ID"
// @Success 200 {object} response.Response
// @Router /delivery/{orderId} [get]
func (h *DeliveryHandler) GetDelivery(c *gin.Context) {
	delivery, err := h.service.Get(c.Param("orderId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, delivery)
}

// transitionHandler 状态迁移的薄封装，目标状态由路由决定
// 非法迁移返回 4xx，重试的到货回调是唯一的幂等例外
func (h *DeliveryHandler) transitionHandler(target string) gin.HandlerFunc {
	return func(c *gin.Context) {
		delivery, err := h.service.Transition(c.Param("orderId"), target)
		if err != nil {
			response.FromError(c, err)
			return
		}
		response.Success(c, delivery)
	}
}

// Ship 发货
// @Summary 发货 READY→SHIPPING
// @Tags Delivery
// @Router /delivery/{orderId}/ship [post]
func (h *DeliveryHandler) Ship() gin.HandlerFunc { return h.transitionHandler(model.StatusShipping) }

// Arrive 到货，触发积分奖励
// @Summary 到货 SHIPPING→ARRIVED
// @Tags Delivery
// @Router /delivery/{orderId}/arrive [post]
func (h *DeliveryHandler) Arrive() gin.HandlerFunc { return h.transitionHandler(model.StatusArrived) }

// RequestCancel 申请取消配送
func (h *DeliveryHandler) RequestCancel() gin.HandlerFunc {
	return h.transitionHandler(model.StatusCancelRequested)
}

// CompleteCancel 配送取消完成
func (h *DeliveryHandler) CompleteCancel() gin.HandlerFunc {
	return h.transitionHandler(model.StatusCanceled)
}

// RequestReturn 申请退货
func (h *DeliveryHandler) RequestReturn() gin.HandlerFunc {
	return h.transitionHandler(model.StatusReturnRequested)
}

// ReturnArrive 退货到仓
func (h *DeliveryHandler) ReturnArrive() gin.HandlerFunc {
	return h.transitionHandler(model.StatusReturnArrived)
}

// CompleteReturn 退货完成
func (h *DeliveryHandler) CompleteReturn() gin.HandlerFunc {
	return h.transitionHandler(model.StatusReturned)
}
