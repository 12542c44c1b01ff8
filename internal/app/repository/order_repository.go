package repository

import (
	"gorm.io/gorm"

	"github.com/stmiyata/seibi-backend/internal/app/model"
	"github.com/stmiyata/seibi-backend/internal/authz"
	"github.com/stmiyata/seibi-backend/pkg/logger"
)

// MonthlyCount is one month's order count for the dashboard
type MonthlyCount struct {
	Month string `json:"month"` // YYYY-MM
	Count int64  `json:"count"`
}

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindAll(scope authz.Scope) ([]model.Order, error)
	FindRecent(scope authz.Scope, limit int) ([]model.Order, error)
	FindByStatusAndLocation(status model.OrderStatus, locationID string) ([]model.Order, error)
	CountAll(scope authz.Scope) (int64, error)
	CountByMonth(scope authz.Scope, fromDate string) ([]MonthlyCount, error)
	Update(order *model.Order) error
	Delete(id uint) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("Vehicle").
		Preload("Customer").
		Preload("CreatedByUser").
		Preload("UpdatedByUser").
		Preload("Location")
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"order_date":  order.OrderDate,
		"vehicle_id":  order.VehicleID,
		"customer_id": order.CustomerID,
		"location_id": order.LocationID,
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"order_date":  order.OrderDate,
			"vehicle_id":  order.VehicleID,
			"customer_id": order.CustomerID,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	})
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	if err := r.preloadOrder().First(&order, id).Error; err != nil {
		logger.Debug("Order not found by ID", map[string]interface{}{
			"order_id": id,
		})
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindAll(scope authz.Scope) ([]model.Order, error) {
	var orders []model.Order
	query := scope.ApplyOrders(r.preloadOrder())
	if err := query.Order("order_date DESC, id DESC").Find(&orders).Error; err != nil {
		logger.Error("Failed to list orders", err, nil)
		return nil, err
	}

	logger.Debug("Orders listed", map[string]interface{}{
		"count": len(orders),
	})
	return orders, nil
}

func (r *orderRepository) FindRecent(scope authz.Scope, limit int) ([]model.Order, error) {
	var orders []model.Order
	query := scope.ApplyOrders(r.preloadOrder())
	if err := query.Order("order_date DESC, id DESC").Limit(limit).Find(&orders).Error; err != nil {
		logger.Error("Failed to list recent orders", err, nil)
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindByStatusAndLocation(status model.OrderStatus, locationID string) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Preload("Customer").
		Where("status = ? AND location_id = ?", status, locationID).
		Order("order_date ASC, id ASC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to list orders by status", err, map[string]interface{}{
			"status":      status,
			"location_id": locationID,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) CountAll(scope authz.Scope) (int64, error) {
	var count int64
	query := scope.ApplyOrders(r.db.Model(&model.Order{}))
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByMonth groups orders on the YYYY-MM prefix of order_date.
// substr works on both postgres and the sqlite test database.
func (r *orderRepository) CountByMonth(scope authz.Scope, fromDate string) ([]MonthlyCount, error) {
	var counts []MonthlyCount
	query := scope.ApplyOrders(r.db.Model(&model.Order{}))
	err := query.Where("order_date >= ?", fromDate).
		Select("substr(order_date, 1, 7) AS month, count(*) AS count").
		Group("substr(order_date, 1, 7)").
		Order("month ASC").
		Scan(&counts).Error
	if err != nil {
		logger.Error("Failed to count orders by month", err, nil)
		return nil, err
	}
	return counts, nil
}

func (r *orderRepository) Update(order *model.Order) error {
	logger.Debug("Updating order in database", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})

	if err := r.db.Save(order).Error; err != nil {
		logger.Error("Failed to update order in database", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) Delete(id uint) error {
	logger.Debug("Deleting order from database", map[string]interface{}{
		"order_id": id,
	})

	if err := r.db.Delete(&model.Order{}, id).Error; err != nil {
		logger.Error("Failed to delete order from database", err, map[string]interface{}{
			"order_id": id,
		})
		return err
	}
	return nil
}
