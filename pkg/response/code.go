package response

import (
	"errors"
	"order_trade_core/pkg/errs"
)

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 订单模块错误 100xx
	ErrOrderNotFound    = 10001
	ErrOrderProcessed   = 10002
	ErrOrderExpired     = 10003
	ErrAlreadyWithdrawn = 10004

	// 库存模块错误 200xx
	ErrItemNotFound = 20001
	ErrOutOfStock   = 20002

	// 积分模块错误 300xx
	ErrInsufficientPoints = 30001
	ErrPointDuplicate     = 30002

	// 支付模块错误 400xx
	ErrAmountMismatch   = 40001
	ErrPaymentNotFound  = 40002
	ErrGatewayRejected  = 40003
	ErrGatewayRetryable = 40004
	ErrConfirmInFlight  = 40005

	// 配送模块错误 450xx
	ErrDeliveryTransition = 45001

	// 通用错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrNotFound        = 50003
	ErrConflict        = 50004
	ErrTooManyRequests = 50005
)

// codeFor 哨兵错误到业务码的映射，未命中时退回分类默认码
func codeFor(err error, fallback int) int {
	switch {
	case errors.Is(err, errs.ErrOrderNotFound):
		return ErrOrderNotFound
	case errors.Is(err, errs.ErrOrderAlreadyProcessed):
		return ErrOrderProcessed
	case errors.Is(err, errs.ErrAlreadyWithdrawn):
		return ErrAlreadyWithdrawn
	case errors.Is(err, errs.ErrItemNotFound):
		return ErrItemNotFound
	case errors.Is(err, errs.ErrOutOfStock):
		return ErrOutOfStock
	case errors.Is(err, errs.ErrInsufficientPoints):
		return ErrInsufficientPoints
	case errors.Is(err, errs.ErrAlreadyApplied):
		return ErrPointDuplicate
	case errors.Is(err, errs.ErrAmountMismatch):
		return ErrAmountMismatch
	case errors.Is(err, errs.ErrPaymentNotFound):
		return ErrPaymentNotFound
	case errors.Is(err, errs.ErrConfirmInFlight):
		return ErrConfirmInFlight
	case errors.Is(err, errs.ErrUserNotFound):
		return ErrNotFound
	default:
		return fallback
	}
}
