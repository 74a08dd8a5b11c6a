package gateway

import "context"

// ConfirmRequest 网关确认请求
type ConfirmRequest struct {
	PaymentKey string `json:"paymentKey"`
	OrderID    string `json:"orderId"` // 对外订单号 (tradeNo)
	Amount     int64  `json:"amount"`
}

// ConfirmResponse 网关确认响应
type ConfirmResponse struct {
	Status      string `json:"status"`
	Method      string `json:"method"`
	TotalAmount int64  `json:"totalAmount"`
	ApprovedAt  string `json:"approvedAt"`
}

// CancelRequest 网关取消请求
type CancelRequest struct {
	PaymentKey   string `json:"paymentKey"`
	CancelReason string `json:"cancelReason"`
	CancelAmount int64  `json:"cancelAmount,omitempty"`
}

// CancelResponse 网关取消响应
type CancelResponse struct {
	Status string `json:"status"`
}

// PaymentGateway 外部支付网关
// Confirm/Cancel 都是幂等接口，网关侧按 paymentKey 去重
type PaymentGateway interface {
	Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResponse, error)
	Cancel(ctx context.Context, req CancelRequest) (*CancelResponse, error)
}
