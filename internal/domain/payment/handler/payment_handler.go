package handler

import (
	"net/http"

	"order_trade_core/internal/domain/payment/service"
	"order_trade_core/pkg/response"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	service service.PaymentService
}

func NewPaymentHandler(s service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: s}
}

type ConfirmInput struct {
	PaymentKey string `json:"paymentKey" binding:"required"`
	OrderID    string `json:"orderId" binding:"required"` // 对外订单号
	Amount     int64  `json:"amount" binding:"required,gt=0"`
}

// Confirm 确认支付
// @Summary 确认支付
// @Tags Payment
// @Accept json
// @Produce json
// @Param input body ConfirmInput true "Confirm Info"
// @Success 200 {object} response.Response
// @Router /payment/confirm [post]
func (h *PaymentHandler) Confirm(c *gin.Context) {
	var input ConfirmInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	payment, err := h.service.Confirm(c.Request.Context(), input.PaymentKey, input.OrderID, input.Amount)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, payment)
}

type CancelInput struct {
	PaymentKey   string `json:"paymentKey" binding:"required"`
	CancelReason string `json:"cancelReason" binding:"required"`
	CancelAmount int64  `json:"cancelAmount" binding:"gte=0"`
}

// Cancel 取消支付
// @Summary 取消已批准的支付（幂等）
// @Tags Payment
// @Accept json
// @Produce json
// @Param input body CancelInput true "Cancel Info"
// @Success 200 {object} response.Response
// @Router /payment/cancel [post]
func (h *PaymentHandler) Cancel(c *gin.Context) {
	var input CancelInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	payment, err := h.service.Cancel(c.Request.Context(), input.PaymentKey, input.CancelReason, input.CancelAmount)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, payment)
}
