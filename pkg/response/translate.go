package response

import (
	"errors"
	"net/http"

	"gas_marketplace/pkg/apperr"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// kindHTTP 错误分类到 HTTP 状态码的映射
var kindHTTP = map[apperr.Kind]int{
	apperr.KindNotFound:     http.StatusNotFound,
	apperr.KindUnauthorized: http.StatusUnauthorized,
	apperr.KindForbidden:    http.StatusForbidden,
	apperr.KindValidation:   http.StatusBadRequest,
	apperr.KindConflict:     http.StatusConflict,
	apperr.KindInvalidState: http.StatusUnprocessableEntity,
	apperr.KindUpstream:     http.StatusBadGateway,
}

// kindCode 错误分类到默认业务码的映射，apperr.Error.Code 优先
var kindCode = map[apperr.Kind]int{
	apperr.KindNotFound:     ErrOrderNotFound,
	apperr.KindUnauthorized: ErrTokenInvalid,
	apperr.KindForbidden:    ErrNoPermission,
	apperr.KindValidation:   ErrInvalidParam,
	apperr.KindConflict:     ErrAccountExists,
	apperr.KindInvalidState: ErrOrderState,
	apperr.KindUpstream:     ErrGateway,
}

// HandleError 集中式错误翻译：业务错误、ORM 错误、JWT 错误统一映射
func HandleError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		httpCode, ok := kindHTTP[appErr.Kind]
		if !ok {
			httpCode = http.StatusInternalServerError
		}
		code := appErr.Code
		if code == 0 {
			code = kindCode[appErr.Kind]
		}
		Error(c, httpCode, code, appErr.Message)
		return
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		Error(c, http.StatusNotFound, ErrOrderNotFound, "record not found")
		return
	}

	if errors.Is(err, jwt.ErrTokenExpired) || errors.Is(err, jwt.ErrTokenMalformed) ||
		errors.Is(err, jwt.ErrSignatureInvalid) {
		Error(c, http.StatusUnauthorized, ErrTokenInvalid, "invalid or expired token")
		return
	}

	Error(c, http.StatusInternalServerError, ErrServerInternal, err.Error())
}
