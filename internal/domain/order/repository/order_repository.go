package repository

import (
	"gas_marketplace/internal/domain/order/model"

	"gorm.io/gorm"
)

// OrderRepository 接口定义。所有状态写入都是带守卫条件的 UPDATE，
// 返回影响行数交给 service 层判定冲突原因
type OrderRepository interface {
	Create(order *model.Order) error
	GetByID(id string) (*model.Order, error)
	ListByUser(userID string, offset, limit int) ([]model.Order, int64, error)
	ListPending(offset, limit int) ([]model.Order, int64, error)
	ListActiveByRider(riderID string) ([]model.Order, error)

	Accept(orderID, vendorID string) (int64, error)
	Reject(orderID, vendorID, message string) (int64, error)
	AssignRider(orderID, riderID string) (int64, error)
	Complete(orderID, riderID string) (int64, error)
	CancelByUser(orderID, userID string) (int64, error)

	// MarkPaid 支付回调确认后把订单翻成已支付，只生效一次
	MarkPaid(orderID string) (int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建新的仓库实例
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *model.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepository) GetByID(id string) (*model.Order, error) {
	var order model.Order
	if err := r.db.Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByUser(userID string, offset, limit int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	q := r.db.Model(&model.Order{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListPending 商家接单池：未绑定商家的待接订单
func (r *orderRepository) ListPending(offset, limit int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	q := r.db.Model(&model.Order{}).
		Where("status = ? AND vendor_id IS NULL", model.StatusPending)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("created_at").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) ListActiveByRider(riderID string) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.
		Where("rider_id = ? AND status = ?", riderID, model.StatusActive).
		Order("created_at").Find(&orders).Error
	return orders, err
}

// Accept 条件更新：仅当订单还是 pending 且未被其他商家绑定时生效。
// 两个商家并发接同一单，数据库只让第一个赢
func (r *orderRepository) Accept(orderID, vendorID string) (int64, error) {
	result := r.db.Model(&model.Order{}).
		Where("id = ? AND status = ? AND (vendor_id IS NULL OR vendor_id = ?)",
			orderID, model.StatusPending, vendorID).
		Updates(map[string]interface{}{
			"vendor_id": vendorID,
			"status":    model.StatusActive,
		})
	return result.RowsAffected, result.Error
}

func (r *orderRepository) Reject(orderID, vendorID, message string) (int64, error) {
	result := r.db.Model(&model.Order{}).
		Where("id = ? AND status = ? AND (vendor_id IS NULL OR vendor_id = ?)",
			orderID, model.StatusPending, vendorID).
		Updates(map[string]interface{}{
			"status":            model.StatusCancelled,
			"rejection_message": message,
		})
	return result.RowsAffected, result.Error
}

// AssignRider 骑手抢单：首个骑手赢
func (r *orderRepository) AssignRider(orderID, riderID string) (int64, error) {
	result := r.db.Model(&model.Order{}).
		Where("id = ? AND status = ? AND rider_id IS NULL", orderID, model.StatusActive).
		Update("rider_id", riderID)
	return result.RowsAffected, result.Error
}

// Complete 只有被指派的骑手能确认送达
func (r *orderRepository) Complete(orderID, riderID string) (int64, error) {
	result := r.db.Model(&model.Order{}).
		Where("id = ? AND status = ? AND rider_id = ?", orderID, model.StatusActive, riderID).
		Update("status", model.StatusCompleted)
	return result.RowsAffected, result.Error
}

func (r *orderRepository) CancelByUser(orderID, userID string) (int64, error) {
	result := r.db.Model(&model.Order{}).
		Where("id = ? AND user_id = ? AND status = ?", orderID, userID, model.StatusPending).
		Update("status", model.StatusCancelled)
	return result.RowsAffected, result.Error
}

// MarkPaid 回调可能重复投递，条件更新保证只翻一次
func (r *orderRepository) MarkPaid(orderID string) (int64, error) {
	result := r.db.Model(&model.Order{}).
		Where("id = ? AND payment_status = ?", orderID, model.PaymentUnpaid).
		Update("payment_status", model.PaymentPaid)
	return result.RowsAffected, result.Error
}
