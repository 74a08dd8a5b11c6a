package errs

import (
	"errors"
	"fmt"
)

// Kind 错误分类，决定对外的 HTTP 状态和业务码
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindRetryableGateway
	KindInvalidTransition
)

// 交易核心的哨兵错误，调用方用 errors.Is 判断
var (
	ErrOutOfStock            = errors.New("out of stock")
	ErrItemNotFound          = errors.New("item not found")
	ErrInsufficientPoints    = errors.New("insufficient points")
	ErrAlreadyApplied        = errors.New("point operation already applied for this order")
	ErrUserNotFound          = errors.New("user not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderAlreadyProcessed = errors.New("order already processed")
	ErrAmountMismatch        = errors.New("payment amount does not match order total")
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrInvalidTransition     = errors.New("invalid delivery transition")
	ErrAlreadyWithdrawn      = errors.New("order already withdrawn")
	ErrConfirmInFlight       = errors.New("payment confirm already in flight")
)

// Error 携带上下文的交易错误
// OrderID / Transition / GatewayStatus 用于支撑排障，允许为零值
type Error struct {
	Kind          Kind
	OrderID       string
	Transition    string
	GatewayStatus int
	Err           error
}

func (e *Error) Error() string {
	msg := e.Err.Error()
	if e.OrderID != "" {
		msg = fmt.Sprintf("%s (order=%s)", msg, e.OrderID)
	}
	if e.Transition != "" {
		msg = fmt.Sprintf("%s (transition=%s)", msg, e.Transition)
	}
	if e.GatewayStatus != 0 {
		msg = fmt.Sprintf("%s (gateway_status=%d)", msg, e.GatewayStatus)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// New 包装底层错误并标注分类
func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// WithOrder 附加订单上下文
func (e *Error) WithOrder(orderID string) *Error {
	e.OrderID = orderID
	return e
}

// WithTransition 附加状态迁移上下文
func (e *Error) WithTransition(from, to string) *Error {
	e.Transition = from + "->" + to
	return e
}

// WithGatewayStatus 附加网关 HTTP 状态码
func (e *Error) WithGatewayStatus(status int) *Error {
	e.GatewayStatus = status
	return e
}

// KindOf 提取错误分类，非 *Error 一律视为内部错误
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsRetryable 网关错误是否可由调用方重试
func IsRetryable(err error) bool {
	return KindOf(err) == KindRetryableGateway
}
