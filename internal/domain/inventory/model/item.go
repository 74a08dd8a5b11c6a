package model

import (
	baseModel "order_trade_core/pkg/model"
)

// ProductItem 商品库存项（SKU 粒度）
// Quantity 是全局共享的可变资源，所有增减必须经过 InventoryService 的行锁路径
type ProductItem struct {
	baseModel.BaseModel
	ProductName string `gorm:"type:varchar(100);not null" json:"productName"`
	Size        string `gorm:"type:varchar(20)" json:"size"`
	Color       string `gorm:"type:varchar(20)" json:"color"`
	Price       int64  `gorm:"not null" json:"price"`              // 单价，整数韩元
	Quantity    int    `gorm:"not null;default:0" json:"quantity"` // 剩余库存，非负
}

func (ProductItem) TableName() string {
	return "product_items"
}
