package strategy

import (
	"context"
	"errors"
	"net/http"

	"gas_marketplace/internal/domain/payment/model"
	"gas_marketplace/internal/pkg/config"

	"github.com/wechatpay-apiv3/wechatpay-go/core"
	"github.com/wechatpay-apiv3/wechatpay-go/core/auth/verifiers"
	"github.com/wechatpay-apiv3/wechatpay-go/core/downloader"
	"github.com/wechatpay-apiv3/wechatpay-go/core/notify"
	"github.com/wechatpay-apiv3/wechatpay-go/core/option"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments/app"
	"github.com/wechatpay-apiv3/wechatpay-go/utils"
)

// WechatStrategy 微信 App 支付渠道
type WechatStrategy struct {
	client  *core.Client
	config  config.WechatPayConfig
	handler *notify.Handler
}

// NewWechatStrategy 创建微信支付渠道
func NewWechatStrategy() (*WechatStrategy, error) {
	cfg := config.GlobalConfig.Wechat
	if cfg.MchID == "" {
		return nil, errors.New("wechat pay config missing")
	}

	mchPrivateKey, err := utils.LoadPrivateKey(cfg.MchPrivateKey)
	if err != nil {
		return nil, err
	}

	client, err := core.NewClient(context.Background(),
		option.WithWechatPayAutoAuthCipher(cfg.MchID, cfg.MchCertificateSerial, mchPrivateKey, cfg.APIv3Key))
	if err != nil {
		return nil, err
	}

	// 回调验签
	certVisitor := downloader.MgrInstance().GetCertificateVisitor(cfg.MchID)
	handler := notify.NewNotifyHandler(cfg.APIv3Key, verifiers.NewSHA256WithRSAVerifier(certVisitor))

	return &WechatStrategy{client: client, config: cfg, handler: handler}, nil
}

func (s *WechatStrategy) Initialize(payment *model.Payment, _ Customer) (string, error) {
	// 转换为分
	amountFen := int64(payment.Amount * 100)

	req := app.PrepayRequest{
		Appid:       core.String(s.config.AppID),
		Mchid:       core.String(s.config.MchID),
		Description: core.String("gas order " + payment.OrderID),
		OutTradeNo:  core.String(payment.Reference),
		NotifyUrl:   core.String(s.config.NotifyURL),
		Amount: &app.Amount{
			Total: core.Int64(amountFen),
		},
	}

	svc := app.AppApiService{Client: s.client}
	resp, _, err := svc.Prepay(context.Background(), req)
	if err != nil {
		return "", err
	}
	return *resp.PrepayId, nil
}

func (s *WechatStrategy) Notify(params interface{}) (string, float64, bool, error) {
	req, ok := params.(*http.Request)
	if !ok {
		return "", 0, false, errors.New("invalid params type, expected *http.Request")
	}

	transaction := new(payments.Transaction)
	if _, err := s.handler.ParseNotifyRequest(context.Background(), req, transaction); err != nil {
		return "", 0, false, err
	}

	success := *transaction.TradeState == "SUCCESS"
	amount := float64(*transaction.Amount.Total) / 100.0
	return *transaction.OutTradeNo, amount, success, nil
}

var _ PaymentStrategy = (*WechatStrategy)(nil)
