package model

import (
	baseModel "gas_marketplace/pkg/model"
)

// Review 顾客对商家的评价。每个顾客对一个商家只评一次，
// 数据库唯一索引兜底并发重复提交
type Review struct {
	baseModel.BaseModel
	UserID   string `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_vendor" json:"userId"`
	VendorID string `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_vendor;index" json:"vendorId"`
	OrderID  string `gorm:"type:uuid;not null" json:"orderId"`

	Rating  int    `gorm:"not null" json:"rating"` // 1..5
	Comment string `gorm:"type:text" json:"comment"`
}
