package model

import (
	baseModel "gas_marketplace/pkg/model"
)

// 钱包归属
const (
	OwnerVendor = "vendor"
	OwnerRider  = "rider"
)

// 流水类型
const (
	TypeCredit = "credit"
	TypeDebit  = "debit"
)

// Wallet 钱包，商家/骑手各一个。余额只通过带守卫条件的原子增减变化
type Wallet struct {
	baseModel.BaseModel
	OwnerID   string  `gorm:"type:uuid;uniqueIndex;not null" json:"ownerId"`
	OwnerType string  `gorm:"not null" json:"ownerType"` // vendor / rider
	Balance   float64 `gorm:"default:0" json:"balance"`
}

// Transaction 只追加的流水账。每次余额变化都要有对应的一条，
// reference 对结算流水取订单号，保证每单每钱包至多一条入账
type Transaction struct {
	baseModel.BaseModel
	WalletID    string  `gorm:"type:uuid;not null;index" json:"walletId"`
	Type        string  `gorm:"not null" json:"type"` // credit / debit
	Amount      float64 `gorm:"not null" json:"amount"`
	Reference   string  `gorm:"index" json:"reference"`
	Description string  `json:"description"`
}
