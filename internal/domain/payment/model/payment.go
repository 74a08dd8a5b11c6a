package model

import (
	"time"

	baseModel "order_trade_core/pkg/model"
)

// 支付状态，PENDING 之后的迁移单向不可逆
// APPROVED/FAILED 是单次尝试的终态，CANCELED/REFUNDED 只能从 APPROVED 进入
const (
	PaymentStatusPending  = "PENDING"
	PaymentStatusApproved = "APPROVED"
	PaymentStatusFailed   = "FAILED"
	PaymentStatusCanceled = "CANCELED"
	PaymentStatusRefunded = "REFUNDED"
)

// Payment 一次支付尝试，按订单追加，仅作审计不删除
// 一个订单可有多条尝试，但 APPROVED 至多一条（迁移里有唯一部分索引兜底）
type Payment struct {
	baseModel.BaseModel
	OrderID       string     `gorm:"type:uuid;index;not null" json:"orderId"`
	UserID        string     `gorm:"type:uuid;index;not null" json:"userId"`
	TradeNo       string     `gorm:"type:varchar(64);index;not null" json:"tradeNo"`   // 网关侧订单号
	PaymentKey    string     `gorm:"type:varchar(200);index" json:"paymentKey"`        // 网关支付键
	Amount        int64      `gorm:"not null" json:"amount"`
	Method        string     `gorm:"type:varchar(30)" json:"method"` // 网关返回的支付方式
	Status        string     `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	FailureReason string     `gorm:"type:varchar(500)" json:"failureReason,omitempty"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}
