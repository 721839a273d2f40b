package model

// allowTransition 订单状态机的允许流转关系
var allowTransition = map[string][]string{
	StatusPending: {StatusActive, StatusCancelled},
	StatusActive:  {StatusCompleted, StatusCancelled},
	// 终态：completed / cancelled 不再流转
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition 判断 from -> to 是否是允许的状态流转
func CanTransition(from, to string) bool {
	allowed, ok := allowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
