package model

import (
	"time"

	baseModel "gas_marketplace/pkg/model"
)

// 订单状态。pending 为初始态，active/cancelled 是 pending 的唯二后继，
// completed 由派送骑手确认送达后进入
const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// 支付状态
const (
	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
	PaymentFailed = "failed"
)

// 商家决策
const (
	DecisionAccept = "accept"
	DecisionReject = "reject"
)

// Order 订单模型。金额与分成在下单时一次性算好并落库，
// 结算阶段只搬数字，不再推导
type Order struct {
	baseModel.BaseModel
	OrderNumber string  `gorm:"uniqueIndex;not null" json:"orderNumber"`
	UserID      string  `gorm:"type:uuid;not null;index" json:"userId"`
	VendorID    *string `gorm:"type:uuid;index" json:"vendorId"` // 接单前为空，首个接单商家绑定
	RiderID     *string `gorm:"type:uuid;index" json:"riderId"`  // 骑手抢单后绑定

	GasType  string `gorm:"not null" json:"gasType"`
	Quantity int    `gorm:"not null" json:"quantity"` // 公斤数

	UnitPrice     float64 `json:"unitPrice"` // 下单时商家挂牌价快照
	TotalPrice    float64 `json:"totalPrice"`
	DeliveryFee   float64 `json:"deliveryFee"`
	VendorEarning float64 `json:"vendorEarning"`
	RiderEarning  float64 `json:"riderEarning"`

	PickupAddress   string     `json:"pickupAddress"`
	DeliveryAddress string     `gorm:"not null" json:"deliveryAddress"`
	ScheduledTime   *time.Time `json:"scheduledTime,omitempty"`

	Status           string     `gorm:"default:'pending';index" json:"status"`
	PaymentStatus    string     `gorm:"default:'unpaid';index" json:"paymentStatus"`
	RejectionMessage string     `json:"rejectionMessage,omitempty"`
	SettledAt        *time.Time `json:"settledAt,omitempty"` // 钱包结算只执行一次的标记
}

// ComputeEarnings 分成策略：骑手拿商品金额的 riderShare 加全部运费，
// 商家拿剩下的商品金额
func ComputeEarnings(totalPrice, deliveryFee, riderShare float64) (vendorEarning, riderEarning float64) {
	riderEarning = totalPrice*riderShare + deliveryFee
	vendorEarning = totalPrice * (1 - riderShare)
	return vendorEarning, riderEarning
}
