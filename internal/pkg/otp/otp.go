package otp

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"gas_marketplace/pkg/apperr"
	"gas_marketplace/pkg/metrics"
	"gas_marketplace/pkg/response"

	"github.com/redis/go-redis/v9"
)

// 验证码用途
const (
	PurposeVerify = "verify"
	PurposeReset  = "reset"
)

const (
	codeTTL = 5 * time.Minute
	// Redis 条目保留得比逻辑有效期久，用来区分“过期”和“从未发送”
	storeTTL       = 30 * time.Minute
	resendInterval = time.Minute
	// 同一个码连续错这么多次后作废，防爆破
	maxVerifyAttempts = 5
)

// Service 一次性验证码服务
type Service interface {
	// Issue 生成 6 位验证码并存入 Redis，返回明文码交给邮件渠道
	Issue(purpose, actor, email string) (string, error)
	// Verify 校验验证码。校验通过才消费，单次输错不作废当前码，
	// 连续错满 maxVerifyAttempts 次才作废
	Verify(purpose, actor, email, code string) error
}

// store otp 用到的 Redis 命令子集
type store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type service struct {
	rdb store
}

func NewService(rdb *redis.Client) Service {
	return &service{rdb: rdb}
}

type entry struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

func key(purpose, actor, email string) string {
	return fmt.Sprintf("otp:%s:%s:%s", purpose, actor, email)
}

func attemptsKey(purpose, actor, email string) string {
	return key(purpose, actor, email) + ":attempts"
}

func (s *service) Issue(purpose, actor, email string) (string, error) {
	ctx := context.Background()
	k := key(purpose, actor, email)

	// 频率限制：上一个码发出不足一分钟时拒绝重发
	if raw, err := s.rdb.Get(ctx, k).Result(); err == nil {
		var e entry
		if json.Unmarshal([]byte(raw), &e) == nil &&
			time.Until(e.ExpiresAt) > codeTTL-resendInterval {
			return "", apperr.Conflict("a code was sent recently, please wait before requesting another")
		}
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}

	payload, _ := json.Marshal(entry{Code: code, ExpiresAt: time.Now().Add(codeTTL)})
	if err := s.rdb.Set(ctx, k, payload, storeTTL).Err(); err != nil {
		return "", err
	}
	// 新码重置错误计数
	s.rdb.Del(ctx, attemptsKey(purpose, actor, email))

	metrics.Default.OTPIssuedTotal.WithLabelValues(purpose).Inc()
	return code, nil
}

// Verify 先比对再用 GETDEL 消费：比对失败不动当前码，只累加错误计数；
// 比对通过后 GETDEL 保证并发的两次正确提交只有一次成立
func (s *service) Verify(purpose, actor, email, code string) error {
	ctx := context.Background()
	k := key(purpose, actor, email)

	raw, err := s.rdb.Get(ctx, k).Result()
	if err == redis.Nil {
		return otpExpired()
	}
	if err != nil {
		return err
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return otpExpired()
	}
	if time.Now().After(e.ExpiresAt) {
		return otpExpired()
	}

	if e.Code != code {
		ak := attemptsKey(purpose, actor, email)
		if n, err := s.rdb.Incr(ctx, ak).Result(); err == nil {
			s.rdb.Expire(ctx, ak, storeTTL)
			if n >= maxVerifyAttempts {
				s.rdb.Del(ctx, k)
			}
		}
		return apperr.Validation("invalid verification code").WithCode(response.ErrOTPInvalid)
	}

	if _, err := s.rdb.GetDel(ctx, k).Result(); err != nil {
		if err == redis.Nil {
			// 并发的另一个请求抢先消费了
			return otpExpired()
		}
		return err
	}
	s.rdb.Del(ctx, attemptsKey(purpose, actor, email))
	return nil
}

func otpExpired() error {
	return apperr.New(apperr.KindInvalidState, "verification code has expired, request a new one").
		WithCode(response.ErrOTPExpired)
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
