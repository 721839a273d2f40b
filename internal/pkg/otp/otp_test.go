package otp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"gas_marketplace/pkg/apperr"
	"gas_marketplace/pkg/response"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// mockStore Redis 命令 mock
type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(key)
	return args.Get(0).(*redis.StringCmd)
}

func (m *mockStore) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(key, value, expiration)
	return args.Get(0).(*redis.StatusCmd)
}

func (m *mockStore) GetDel(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(key)
	return args.Get(0).(*redis.StringCmd)
}

func (m *mockStore) Incr(ctx context.Context, key string) *redis.IntCmd {
	args := m.Called(key)
	return args.Get(0).(*redis.IntCmd)
}

func (m *mockStore) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	args := m.Called(key, expiration)
	return args.Get(0).(*redis.BoolCmd)
}

func (m *mockStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(keys)
	return args.Get(0).(*redis.IntCmd)
}

const (
	testKey         = "otp:verify:user:ada@example.com"
	testAttemptsKey = testKey + ":attempts"
)

func storedCode(code string, expiresAt time.Time) string {
	payload, _ := json.Marshal(entry{Code: code, ExpiresAt: expiresAt})
	return string(payload)
}

func TestVerify(t *testing.T) {
	t.Run("matching code verifies and is consumed", func(t *testing.T) {
		rdb := new(mockStore)
		svc := &service{rdb: rdb}

		payload := storedCode("246810", time.Now().Add(2*time.Minute))
		rdb.On("Get", testKey).Return(redis.NewStringResult(payload, nil))
		rdb.On("GetDel", testKey).Return(redis.NewStringResult(payload, nil))
		rdb.On("Del", []string{testAttemptsKey}).Return(redis.NewIntResult(1, nil))

		assert.NoError(t, svc.Verify(PurposeVerify, "user", "ada@example.com", "246810"))
		rdb.AssertCalled(t, "GetDel", testKey)
	})

	t.Run("wrong code leaves the stored code in place", func(t *testing.T) {
		rdb := new(mockStore)
		svc := &service{rdb: rdb}

		payload := storedCode("246810", time.Now().Add(2*time.Minute))
		rdb.On("Get", testKey).Return(redis.NewStringResult(payload, nil))
		rdb.On("Incr", testAttemptsKey).Return(redis.NewIntResult(1, nil))
		rdb.On("Expire", testAttemptsKey, storeTTL).Return(redis.NewBoolResult(true, nil))

		err := svc.Verify(PurposeVerify, "user", "ada@example.com", "000000")

		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		var appErr *apperr.Error
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, response.ErrOTPInvalid, appErr.Code)
		rdb.AssertNotCalled(t, "GetDel", mock.Anything)
		rdb.AssertNotCalled(t, "Del", mock.Anything)
	})

	t.Run("a typo followed by the right code still verifies", func(t *testing.T) {
		rdb := new(mockStore)
		svc := &service{rdb: rdb}

		payload := storedCode("246810", time.Now().Add(2*time.Minute))
		rdb.On("Get", testKey).Return(redis.NewStringResult(payload, nil))
		rdb.On("Incr", testAttemptsKey).Return(redis.NewIntResult(1, nil))
		rdb.On("Expire", testAttemptsKey, storeTTL).Return(redis.NewBoolResult(true, nil))
		rdb.On("GetDel", testKey).Return(redis.NewStringResult(payload, nil))
		rdb.On("Del", []string{testAttemptsKey}).Return(redis.NewIntResult(1, nil))

		wrong := svc.Verify(PurposeVerify, "user", "ada@example.com", "246811")
		right := svc.Verify(PurposeVerify, "user", "ada@example.com", "246810")

		assert.Equal(t, apperr.KindValidation, apperr.KindOf(wrong))
		assert.NoError(t, right)
	})

	t.Run("too many wrong attempts void the code", func(t *testing.T) {
		rdb := new(mockStore)
		svc := &service{rdb: rdb}

		payload := storedCode("246810", time.Now().Add(2*time.Minute))
		rdb.On("Get", testKey).Return(redis.NewStringResult(payload, nil))
		rdb.On("Incr", testAttemptsKey).Return(redis.NewIntResult(int64(maxVerifyAttempts), nil))
		rdb.On("Expire", testAttemptsKey, storeTTL).Return(redis.NewBoolResult(true, nil))
		rdb.On("Del", []string{testKey}).Return(redis.NewIntResult(1, nil))

		err := svc.Verify(PurposeVerify, "user", "ada@example.com", "000000")

		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		rdb.AssertCalled(t, "Del", []string{testKey})
	})

	t.Run("logically expired code reports expiry", func(t *testing.T) {
		rdb := new(mockStore)
		svc := &service{rdb: rdb}

		payload := storedCode("246810", time.Now().Add(-time.Minute))
		rdb.On("Get", testKey).Return(redis.NewStringResult(payload, nil))

		err := svc.Verify(PurposeVerify, "user", "ada@example.com", "246810")

		var appErr *apperr.Error
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, response.ErrOTPExpired, appErr.Code)
	})

	t.Run("missing code reports expiry", func(t *testing.T) {
		rdb := new(mockStore)
		svc := &service{rdb: rdb}

		rdb.On("Get", testKey).Return(redis.NewStringResult("", redis.Nil))

		err := svc.Verify(PurposeVerify, "user", "ada@example.com", "246810")

		var appErr *apperr.Error
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, response.ErrOTPExpired, appErr.Code)
	})

	t.Run("concurrent correct submissions succeed once", func(t *testing.T) {
		rdb := new(mockStore)
		svc := &service{rdb: rdb}

		payload := storedCode("246810", time.Now().Add(2*time.Minute))
		rdb.On("Get", testKey).Return(redis.NewStringResult(payload, nil))
		// 比对通过后另一个请求抢先 GETDEL
		rdb.On("GetDel", testKey).Return(redis.NewStringResult("", redis.Nil))

		err := svc.Verify(PurposeVerify, "user", "ada@example.com", "246810")

		var appErr *apperr.Error
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, response.ErrOTPExpired, appErr.Code)
	})
}

func TestIssue(t *testing.T) {
	t.Run("issues a six digit code and resets the attempt counter", func(t *testing.T) {
		rdb := new(mockStore)
		svc := &service{rdb: rdb}

		rdb.On("Get", testKey).Return(redis.NewStringResult("", redis.Nil))
		rdb.On("Set", testKey, mock.Anything, storeTTL).Return(redis.NewStatusResult("OK", nil))
		rdb.On("Del", []string{testAttemptsKey}).Return(redis.NewIntResult(0, nil))

		code, err := svc.Issue(PurposeVerify, "user", "ada@example.com")

		assert.NoError(t, err)
		assert.Len(t, code, 6)
		rdb.AssertCalled(t, "Del", []string{testAttemptsKey})
	})

	t.Run("a freshly issued code throttles the next request", func(t *testing.T) {
		rdb := new(mockStore)
		svc := &service{rdb: rdb}

		payload := storedCode("246810", time.Now().Add(codeTTL))
		rdb.On("Get", testKey).Return(redis.NewStringResult(payload, nil))

		_, err := svc.Issue(PurposeVerify, "user", "ada@example.com")

		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
		rdb.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})
}
