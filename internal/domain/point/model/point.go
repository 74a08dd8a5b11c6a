package model

import (
	baseModel "order_trade_core/pkg/model"
)

// UserAccount 用户账户，交易核心只关心积分余额
// Point 只允许 PointService 修改，其他模块一律只读
type UserAccount struct {
	baseModel.BaseModel
	Nickname string `gorm:"type:varchar(50)" json:"nickname"`
	Point    int64  `gorm:"not null;default:0" json:"point"` // 积分余额，非负
}

func (UserAccount) TableName() string {
	return "user_accounts"
}

// 积分流水类型
const (
	PointKindUse    = "USE"    // 下单抵扣
	PointKindReward = "REWARD" // 配送完成奖励
	PointKindRefund = "REFUND" // 取消/退货退还
)

// PointLog 积分流水，幂等键为 (order_id, kind)
// 同一订单同一类型的流水至多一条，重复申请按类型决定拒绝或静默跳过
type PointLog struct {
	baseModel.BaseModel
	UserID  string `gorm:"type:uuid;index;not null" json:"userId"`
	OrderID string `gorm:"type:uuid;not null;uniqueIndex:idx_point_order_kind" json:"orderId"`
	Kind    string `gorm:"type:varchar(10);not null;uniqueIndex:idx_point_order_kind" json:"kind"`
	Amount  int64  `gorm:"not null" json:"amount"` // 正数，方向由 Kind 决定
}

func (PointLog) TableName() string {
	return "point_logs"
}
