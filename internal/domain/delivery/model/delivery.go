package model

import (
	baseModel "order_trade_core/pkg/model"
)

// 配送状态
const (
	StatusReady           = "READY"
	StatusShipping        = "SHIPPING"
	StatusCancelRequested = "CANCEL_REQUESTED"
	StatusArrived         = "ARRIVED"
	StatusCanceled        = "CANCELED"
	StatusReturnRequested = "RETURN_REQUESTED"
	StatusReturnArrived   = "RETURN_ARRIVED"
	StatusReturned        = "RETURNED"
)

// validNext 配送状态迁移允许表，表外迁移一律拒绝
var validNext = map[string]map[string]bool{
	StatusReady:           {StatusShipping: true, StatusCancelRequested: true},
	StatusShipping:        {StatusArrived: true, StatusCancelRequested: true},
	StatusCancelRequested: {StatusCanceled: true},
	StatusArrived:         {StatusReturnRequested: true},
	StatusReturnRequested: {StatusReturnArrived: true},
	StatusReturnArrived:   {StatusReturned: true},
	StatusCanceled:        {},
	StatusReturned:        {},
}

// CanTransition 校验状态迁移是否合法
func CanTransition(from, to string) bool {
	return validNext[from][to]
}

// Delivery 物理履约状态，与 Order 一对一
// 只随订单级联销毁，不独立删除；Order 持有方向为 Delivery.OrderID 反查
type Delivery struct {
	baseModel.BaseModel
	OrderID          string `gorm:"type:uuid;uniqueIndex;not null" json:"orderId"`
	Status           string `gorm:"type:varchar(20);not null;default:'READY'" json:"status"`
	RecipientName    string `gorm:"type:varchar(50)" json:"recipientName"`
	RecipientPhone   string `gorm:"type:varchar(20)" json:"recipientPhone"`
	RecipientAddress string `gorm:"type:varchar(200)" json:"recipientAddress"`
}

func (Delivery) TableName() string {
	return "deliveries"
}
