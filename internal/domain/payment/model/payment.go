package model

import (
	"time"

	baseModel "gas_marketplace/pkg/model"
)

// 支付单状态
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// 支付渠道
const (
	ChannelCard   = "card"
	ChannelAlipay = "alipay"
	ChannelWechat = "wechat"
)

// Payment 支付单。金额 = 订单商品金额 + 运费，
// reference 是回调与主动查询的唯一关联键
type Payment struct {
	baseModel.BaseModel
	OrderID   string  `gorm:"type:uuid;not null;index" json:"orderId"`
	UserID    string  `gorm:"type:uuid;not null;index" json:"userId"`
	Reference string  `gorm:"uniqueIndex;not null" json:"reference"`
	Amount    float64 `gorm:"not null" json:"amount"`
	Currency  string  `gorm:"not null" json:"currency"`
	Channel   string  `gorm:"not null" json:"channel"`

	Status string     `gorm:"default:'pending';index" json:"status"`
	PaidAt *time.Time `json:"paidAt,omitempty"`

	// 渠道回传的原始凭据，排查对账用
	ProviderPayload string `gorm:"type:text" json:"-"`
}
