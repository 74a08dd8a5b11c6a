package model

import (
	"time"

	baseModel "order_trade_core/pkg/model"
)

// 订单状态
const (
	OrderStatusPending   = "PENDING"
	OrderStatusSucceeded = "SUCCEEDED"
	OrderStatusFailed    = "FAILED"
	OrderStatusCanceled  = "CANCELED"
	OrderStatusWithdraw  = "WITHDRAW"
)

// 取消进度
const (
	CancelStatusNone      = "NONE"
	CancelStatusRequested = "REQUESTED"
	CancelStatusCompleted = "COMPLETED"
)

// Order 一次购买尝试
// 不变式: Amount = Σ(单价×数量) - PointUsage；PointSave 至多被设置一次
// 订单只追加不删除，终态后仅 WithdrawalService 能再改 CancelStatus
type Order struct {
	baseModel.BaseModel
	TradeNo      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"tradeNo"` // 对外订单号，网关 confirm 用它定位订单
	UserID       string    `gorm:"type:uuid;index;not null" json:"userId"`
	ItemTotal    int64     `gorm:"not null" json:"itemTotal"`            // 商品金额合计
	PointUsage   int64     `gorm:"not null;default:0" json:"pointUsage"` // 下单抵扣的积分
	Amount       int64     `gorm:"not null" json:"amount"`               // 实际应付 = ItemTotal - PointUsage
	PointSave    *int64    `json:"pointSave,omitempty"`                  // 配送完成奖励，只落一次
	Status       string    `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	CancelStatus string    `gorm:"type:varchar(20);not null;default:'NONE'" json:"cancelStatus"`
	OrderedAt    time.Time `gorm:"not null" json:"orderedAt"`
	// 收件信息快照，支付成功时复制到 Delivery
	RecipientName    string      `gorm:"type:varchar(50)" json:"recipientName"`
	RecipientPhone   string      `gorm:"type:varchar(20)" json:"recipientPhone"`
	RecipientAddress string      `gorm:"type:varchar(200)" json:"recipientAddress"`
	ExpiresAt        time.Time   `gorm:"index;not null" json:"expiresAt"` // OrderedAt + TTL，超时未支付由回收任务作废
	Items            []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// IsTerminal 是否处于终态
func (o *Order) IsTerminal() bool {
	return o.Status != OrderStatusPending
}

// PointSaveOrZero 缺失的奖励字段按 0 处理
func (o *Order) PointSaveOrZero() int64 {
	if o.PointSave == nil {
		return 0
	}
	return *o.PointSave
}

// OrderItem 订单行，记录下单时的单价快照
type OrderItem struct {
	baseModel.BaseModel
	OrderID   string `gorm:"type:uuid;index;not null" json:"orderId"`
	ItemID    string `gorm:"type:uuid;index;not null" json:"itemId"`
	Size      string `gorm:"type:varchar(20)" json:"size"`
	UnitPrice int64  `gorm:"not null" json:"unitPrice"`
	Qty       int    `gorm:"not null" json:"qty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
