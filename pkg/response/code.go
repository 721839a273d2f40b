package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 账号模块错误 100xx
	ErrAccountExists   = 10001
	ErrAccountNotFound = 10002
	ErrAuthFailed      = 10003
	ErrTokenInvalid    = 10004
	ErrNoPermission    = 10005
	ErrNotVerified     = 10006
	ErrOTPInvalid      = 10007
	ErrOTPExpired      = 10008

	// 订单模块错误 200xx
	ErrOrderNotFound = 20001
	ErrNoVendor      = 20002
	ErrOrderState    = 20003
	ErrOrderTaken    = 20004

	// 支付/钱包模块错误 300xx
	ErrPaymentNotFound  = 30001
	ErrAlreadyPaid      = 30002
	ErrNotPaid          = 30003
	ErrWalletNotFound   = 30004
	ErrAlreadySettled   = 30005
	ErrInsufficientFund = 30006
	ErrGateway          = 30007

	// 评价模块错误 400xx
	ErrReviewExists    = 40001
	ErrReviewForbidden = 40002

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
