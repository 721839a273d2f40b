package strategy

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"gas_marketplace/internal/domain/payment/model"
	"gas_marketplace/internal/pkg/config"

	"github.com/smartwalle/alipay/v3"
)

// AlipayStrategy 支付宝 App 支付渠道
type AlipayStrategy struct {
	client *alipay.Client
	config config.AlipayConfig
}

// NewAlipayStrategy 创建支付宝渠道
func NewAlipayStrategy() (*AlipayStrategy, error) {
	cfg := config.GlobalConfig.Alipay
	if cfg.AppID == "" {
		return nil, errors.New("alipay config missing")
	}

	client, err := alipay.New(cfg.AppID, cfg.PrivateKey, cfg.IsProduction)
	if err != nil {
		return nil, err
	}

	// 加载支付宝公钥 (用于验证签名)
	if err = client.LoadAliPayPublicKey(cfg.PublicKey); err != nil {
		return nil, err
	}

	return &AlipayStrategy{client: client, config: cfg}, nil
}

func (s *AlipayStrategy) Initialize(payment *model.Payment, _ Customer) (string, error) {
	p := alipay.TradeAppPay{}
	p.NotifyURL = s.config.NotifyURL
	p.Subject = "gas order " + payment.OrderID
	p.OutTradeNo = payment.Reference
	p.TotalAmount = fmt.Sprintf("%.2f", payment.Amount)
	p.ProductCode = "QUICK_MSECURITY_PAY" // App支付产品码

	return s.client.TradeAppPay(p)
}

// Notify 处理回调
func (s *AlipayStrategy) Notify(params interface{}) (string, float64, bool, error) {
	values, ok := params.(url.Values)
	if !ok {
		return "", 0, false, errors.New("invalid params type, expected url.Values")
	}

	// 验签
	noti, err := s.client.DecodeNotification(values)
	if err != nil {
		return "", 0, false, err
	}

	success := noti.TradeStatus == alipay.TradeStatusSuccess ||
		noti.TradeStatus == alipay.TradeStatusFinished

	amount, _ := strconv.ParseFloat(noti.TotalAmount, 64)
	return noti.OutTradeNo, amount, success, nil
}

var _ PaymentStrategy = (*AlipayStrategy)(nil)
