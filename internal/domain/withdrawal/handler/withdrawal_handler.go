package handler

import (
	"net/http"

	"order_trade_core/internal/domain/withdrawal/service"
	"order_trade_core/pkg/response"

	"github.com/gin-gonic/gin"
)

type WithdrawalHandler struct {
	service service.WithdrawalService
}

func NewWithdrawalHandler(s service.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{service: s}
}

type WithdrawInput struct {
	Reason string `json:"reason" binding:"required"`
}

// Withdraw 撤回订单
// @Summary 撤回已成交订单（取消/退货补偿）
// @Tags Withdrawal
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param input body WithdrawInput true "Withdraw Info"
// @Success 200 {object} response.Response
// @Router /orders/{id}/withdraw [post]
func (h *WithdrawalHandler) Withdraw(c *gin.Context) {
	var input WithdrawInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.Withdraw(c.Param("id"), input.Reason)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, result)
}
