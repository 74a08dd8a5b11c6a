package handler

import (
	"net/http"

	"order_trade_core/internal/domain/order/service"
	"order_trade_core/pkg/response"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

type LineItemInput struct {
	ItemID string `json:"itemId" binding:"required,uuid"`
	Size   string `json:"size"`
	Qty    int    `json:"qty" binding:"required,gt=0"`
}

type CreateOrderInput struct {
	UserID           string          `json:"userId" binding:"required,uuid"`
	Items            []LineItemInput `json:"items" binding:"required,min=1,dive"`
	PointUsage       int64           `json:"pointUsage" binding:"gte=0"`
	RecipientName    string          `json:"recipientName" binding:"required"`
	RecipientPhone   string          `json:"recipientPhone" binding:"required"`
	RecipientAddress string          `json:"recipientAddress" binding:"required"`
}

// CreateOrder 创建订单
// @Summary 创建订单（预占库存）
// @Tags Order
// @Accept json
// @Produce json
// @Param input body CreateOrderInput true "Order Info"
// @Success 200 {object} response.Response
// @Router /orders/create [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	lines := make([]service.LineInput, 0, len(input.Items))
	for _, item := range input.Items {
		lines = append(lines, service.LineInput{
			ItemID: item.ItemID,
			Size:   item.Size,
			Qty:    item.Qty,
		})
	}

	order, err := h.service.Create(input.UserID, lines, input.PointUsage, service.Recipient{
		Name:    input.RecipientName,
		Phone:   input.RecipientPhone,
		Address: input.RecipientAddress,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, order)
}

// GetOrder 查询订单
// @Summary 查询订单
// @Tags Order
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} response.Response
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.service.Get(c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, order)
}

// CancelOrder 取消未支付订单
// @Summary 取消未支付订单
// @Tags Order
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} response.Response
// @Router /orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	if err := h.service.Cancel(c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}
