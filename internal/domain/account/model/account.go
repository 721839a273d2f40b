package model

import (
	baseModel "gas_marketplace/pkg/model"
)

// 账号角色
const (
	ActorUser   = "user"
	ActorVendor = "vendor"
	ActorRider  = "rider"
)

// ValidActor 判断角色是否合法
func ValidActor(actor string) bool {
	return actor == ActorUser || actor == ActorVendor || actor == ActorRider
}

// Account 统一账号模型。顾客/商家/骑手共用一套注册、验证、登录逻辑，
// 角色差异放在各自的 profile 表里
type Account struct {
	baseModel.BaseModel
	ActorType   string `gorm:"not null;index" json:"actorType"`
	FullName    string `gorm:"not null" json:"fullName"`
	Email       string `gorm:"uniqueIndex;not null" json:"email"`
	PhoneNumber string `gorm:"uniqueIndex;not null" json:"phoneNumber"`
	Password    string `json:"-"` // bcrypt 哈希，不返回给前端
	IsVerified  bool   `gorm:"default:false" json:"isVerified"`
	AvatarURL   string `json:"avatarUrl"`

	VendorProfile *VendorProfile `gorm:"foreignKey:AccountID" json:"vendorProfile,omitempty"`
	RiderProfile  *RiderProfile  `gorm:"foreignKey:AccountID" json:"riderProfile,omitempty"`
}

// VendorProfile 商家资料与挂牌价
type VendorProfile struct {
	baseModel.BaseModel
	AccountID     string  `gorm:"type:uuid;uniqueIndex;not null" json:"accountId"`
	BusinessName  string  `json:"businessName"`
	Address       string  `json:"address"`
	UnitPrice     float64 `json:"unitPrice"` // 每公斤气价
	IsAvailable   bool    `gorm:"default:false" json:"isAvailable"`
	AverageRating float64 `gorm:"default:0" json:"averageRating"`
}

// RiderProfile 骑手资料
type RiderProfile struct {
	baseModel.BaseModel
	AccountID     string `gorm:"type:uuid;uniqueIndex;not null" json:"accountId"`
	VehicleNumber string `json:"vehicleNumber"`
	IsAvailable   bool   `gorm:"default:false" json:"isAvailable"`
}
