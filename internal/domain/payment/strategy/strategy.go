package strategy

import "gas_marketplace/internal/domain/payment/model"

// Customer 渠道侧需要的付款人信息
type Customer struct {
	Email string
	Name  string
}

// PaymentStrategy 支付渠道抽象
type PaymentStrategy interface {
	// Initialize 发起支付，返回渠道支付参数（跳转 URL 或客户端拉起串）
	Initialize(payment *model.Payment, customer Customer) (string, error)

	// Notify 解析回调通知，返回支付单号、金额、是否成功
	Notify(params interface{}) (string, float64, bool, error)
}
