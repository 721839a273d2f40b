package strategy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"gas_marketplace/internal/domain/payment/model"
	"gas_marketplace/internal/pkg/config"
	"gas_marketplace/pkg/apperr"
	"gas_marketplace/pkg/response"
)

// GatewayStrategy 银行卡收单走自建收银网关的 HTTP API。
// 鉴权是请求头里的 Bearer 密钥，金额按最小货币单位上送
type GatewayStrategy struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

// NewGatewayStrategy 创建网关渠道
func NewGatewayStrategy() (*GatewayStrategy, error) {
	cfg := config.GlobalConfig.Gateway
	if cfg.BaseURL == "" || cfg.SecretKey == "" {
		return nil, errors.New("gateway config missing")
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &GatewayStrategy{
		baseURL:   cfg.BaseURL,
		secretKey: cfg.SecretKey,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

type gatewayInitRequest struct {
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"` // 最小货币单位
	Currency  string `json:"currency"`
	Email     string `json:"email"`
	Name      string `json:"name"`
}

type gatewayInitResponse struct {
	Status bool `json:"status"`
	Data   struct {
		AuthorizationURL string `json:"authorization_url"`
	} `json:"data"`
	Message string `json:"message"`
}

func (s *GatewayStrategy) Initialize(payment *model.Payment, customer Customer) (string, error) {
	body, _ := json.Marshal(gatewayInitRequest{
		Reference: payment.Reference,
		Amount:    int64(payment.Amount * 100),
		Currency:  payment.Currency,
		Email:     customer.Email,
		Name:      customer.Name,
	})

	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", apperr.Upstream("payment gateway unreachable", err).WithCode(response.ErrGateway)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return "", apperr.Upstream(
			fmt.Sprintf("payment gateway returned %d", resp.StatusCode), nil).
			WithCode(response.ErrGateway)
	}

	var out gatewayInitResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", apperr.Upstream("invalid gateway response", err).WithCode(response.ErrGateway)
	}
	if !out.Status || out.Data.AuthorizationURL == "" {
		return "", apperr.Upstream("gateway rejected transaction: "+out.Message, nil).
			WithCode(response.ErrGateway)
	}

	return out.Data.AuthorizationURL, nil
}

type gatewayVerifyResponse struct {
	Status bool `json:"status"`
	Data   struct {
		Reference string  `json:"reference"`
		Status    string  `json:"status"`
		Amount    float64 `json:"amount"` // 最小货币单位
	} `json:"data"`
}

// Notify 网关回调只带 reference，金额与终态以主动查询为准
func (s *GatewayStrategy) Notify(params interface{}) (string, float64, bool, error) {
	values, ok := params.(url.Values)
	if !ok {
		return "", 0, false, errors.New("invalid params type, expected url.Values")
	}
	reference := values.Get("reference")
	if reference == "" {
		return "", 0, false, errors.New("missing reference in gateway callback")
	}

	req, err := http.NewRequest(http.MethodGet, s.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return "", 0, false, err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", 0, false, apperr.Upstream("payment gateway unreachable", err).WithCode(response.ErrGateway)
	}
	defer resp.Body.Close()

	var out gatewayVerifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", 0, false, apperr.Upstream("invalid gateway response", err).WithCode(response.ErrGateway)
	}

	success := out.Status && out.Data.Status == "success"
	return out.Data.Reference, out.Data.Amount / 100, success, nil
}

var _ PaymentStrategy = (*GatewayStrategy)(nil)
