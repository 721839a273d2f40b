package utils

import (
	"time"

	"gas_marketplace/internal/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 自定义JWT Claims，携带账号ID和角色
type Claims struct {
	AccountID string `json:"account_id"`
	Actor     string `json:"actor"` // user / vendor / rider
	jwt.RegisteredClaims
}

// tokenTTL 各角色 token 有效期
func tokenTTL(actor string) time.Duration {
	cfg := config.GlobalConfig.JWT
	switch actor {
	case "vendor":
		return time.Duration(cfg.VendorExpireHours) * time.Hour
	case "rider":
		return time.Duration(cfg.RiderExpireHours) * time.Hour
	default:
		return time.Duration(cfg.UserExpireHours) * time.Hour
	}
}

// GenerateToken 生成JWT Token
func GenerateToken(accountID, actor string) (string, *time.Time, error) {
	now := time.Now()
	expireTime := now.Add(tokenTTL(actor))

	claims := Claims{
		AccountID: accountID,
		Actor:     actor,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expireTime),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "gas-marketplace",
		},
	}

	tokenClaims := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err := tokenClaims.SignedString([]byte(config.GlobalConfig.JWT.Secret))
	if err != nil {
		return "", nil, err
	}
	return token, &expireTime, nil
}

// ParseToken 验证JWT Token
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(config.GlobalConfig.JWT.Secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrTokenInvalidClaims
}
