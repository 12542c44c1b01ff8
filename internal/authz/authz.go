// Package authz holds the role capability table and the row-scope
// resolver that narrows every list query to the rows the caller may see.
package authz

import (
	"gorm.io/gorm"

	"github.com/stmiyata/seibi-backend/internal/app/model"
)

// Action names a permission-checked operation
type Action string

const (
	ActionOrderCreate      Action = "order.create"
	ActionOrderConfirm     Action = "order.confirm"
	ActionOrderUpdate      Action = "order.update"
	ActionOrderDelete      Action = "order.delete"
	ActionVehicleUpdate    Action = "vehicle.update"
	ActionVehicleDelete    Action = "vehicle.delete"
	ActionUserManage       Action = "user.manage"
	ActionLocationManage   Action = "location.manage"
	ActionNotificationTest Action = "notification.test"
)

// capabilities is the single source of truth for which role may
// perform which action
var capabilities = map[Action]map[model.UserRole]bool{
	ActionOrderCreate: {
		model.RoleAdmin:    true,
		model.RolePA:       true,
		model.RoleManager:  true,
		model.RoleCustomer: true,
	},
	ActionOrderConfirm: {
		model.RoleAdmin:   true,
		model.RoleFrontPA: true,
		model.RoleManager: true,
	},
	ActionOrderUpdate: {
		model.RoleAdmin: true,
		model.RolePA:    true,
	},
	ActionOrderDelete: {
		model.RoleAdmin: true,
	},
	ActionVehicleUpdate: {
		model.RoleAdmin:   true,
		model.RolePA:      true,
		model.RoleFrontPA: true,
		model.RoleManager: true,
	},
	ActionVehicleDelete: {
		model.RoleAdmin: true,
	},
	ActionUserManage: {
		model.RoleAdmin:   true,
		model.RolePA:      true,
		model.RoleFrontPA: true,
		model.RoleManager: true,
	},
	ActionLocationManage: {
		model.RoleAdmin: true,
	},
	ActionNotificationTest: {
		model.RoleAdmin: true,
	},
}

// Can reports whether the role is allowed to perform the action
func Can(role model.UserRole, action Action) bool {
	return capabilities[action][role]
}

// Scope describes the row filter derived from the caller's identity.
// Exactly one of the three forms is active: everything (admin), one
// location (staff), or one customer (customer).
type Scope struct {
	all        bool
	locationID string
	customerID uint
}

// ResolveScope derives the row scope from the authenticated user.
// Staff with no location resolve to an empty location scope, which
// matches no rows.
func ResolveScope(user *model.User) Scope {
	switch {
	case user.Role == model.RoleAdmin:
		return Scope{all: true}
	case user.Role.IsStaff():
		locationID := ""
		if user.LocationID != nil {
			locationID = *user.LocationID
		}
		return Scope{locationID: locationID}
	default:
		return Scope{customerID: user.ID}
	}
}

// All reports whether the scope covers every row
func (s Scope) All() bool {
	return s.all
}

// LocationID returns the location filter, or "" when not location scoped
func (s Scope) LocationID() string {
	return s.locationID
}

// ApplyOrders narrows an order query to the scope
func (s Scope) ApplyOrders(query *gorm.DB) *gorm.DB {
	switch {
	case s.all:
		return query
	case s.locationID != "" || s.customerID == 0:
		return query.Where("location_id = ?", s.locationID)
	default:
		return query.Where("customer_id = ?", s.customerID)
	}
}

// ApplyVehicles narrows a vehicle query to the scope
func (s Scope) ApplyVehicles(query *gorm.DB) *gorm.DB {
	switch {
	case s.all:
		return query
	case s.locationID != "" || s.customerID == 0:
		return query.Where("location_id = ?", s.locationID)
	default:
		return query.Where("customer_id = ?", s.customerID)
	}
}

// ApplyUsers narrows a user query to the scope. Customers only ever
// see themselves.
func (s Scope) ApplyUsers(query *gorm.DB) *gorm.DB {
	switch {
	case s.all:
		return query
	case s.locationID != "" || s.customerID == 0:
		return query.Where("location_id = ?", s.locationID)
	default:
		return query.Where("id = ?", s.customerID)
	}
}

// AllowsOrder checks a single fetched order against the scope
func (s Scope) AllowsOrder(order *model.Order) bool {
	switch {
	case s.all:
		return true
	case s.customerID != 0:
		return order.CustomerID == s.customerID
	default:
		return s.locationID != "" && order.LocationID == s.locationID
	}
}

// AllowsVehicle checks a single fetched vehicle against the scope
func (s Scope) AllowsVehicle(vehicle *model.Vehicle) bool {
	switch {
	case s.all:
		return true
	case s.customerID != 0:
		return vehicle.CustomerID != nil && *vehicle.CustomerID == s.customerID
	default:
		return s.locationID != "" && vehicle.LocationID == s.locationID
	}
}

// AllowsUser checks a single fetched user against the scope
func (s Scope) AllowsUser(target *model.User) bool {
	switch {
	case s.all:
		return true
	case s.customerID != 0:
		return target.ID == s.customerID
	default:
		return s.locationID != "" && target.LocationID != nil && *target.LocationID == s.locationID
	}
}
