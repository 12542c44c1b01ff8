package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stmiyata/seibi-backend/internal/app/model"
)

func strPtr(s string) *string { return &s }
func uintPtr(u uint) *uint    { return &u }

func TestCan(t *testing.T) {
	tests := []struct {
		name   string
		role   model.UserRole
		action Action
		want   bool
	}{
		{"admin creates orders", model.RoleAdmin, ActionOrderCreate, true},
		{"customer creates orders", model.RoleCustomer, ActionOrderCreate, true},
		{"front PA cannot create orders", model.RoleFrontPA, ActionOrderCreate, false},
		{"front PA confirms orders", model.RoleFrontPA, ActionOrderConfirm, true},
		{"manager confirms orders", model.RoleManager, ActionOrderConfirm, true},
		{"PA cannot confirm orders", model.RolePA, ActionOrderConfirm, false},
		{"customer cannot confirm orders", model.RoleCustomer, ActionOrderConfirm, false},
		{"PA updates orders", model.RolePA, ActionOrderUpdate, true},
		{"manager cannot update orders", model.RoleManager, ActionOrderUpdate, false},
		{"only admin deletes orders", model.RolePA, ActionOrderDelete, false},
		{"admin deletes orders", model.RoleAdmin, ActionOrderDelete, true},
		{"staff updates vehicles", model.RoleFrontPA, ActionVehicleUpdate, true},
		{"customer cannot update vehicles", model.RoleCustomer, ActionVehicleUpdate, false},
		{"only admin deletes vehicles", model.RoleManager, ActionVehicleDelete, false},
		{"staff manages users", model.RoleManager, ActionUserManage, true},
		{"customer cannot manage users", model.RoleCustomer, ActionUserManage, false},
		{"only admin manages locations", model.RolePA, ActionLocationManage, false},
		{"admin manages locations", model.RoleAdmin, ActionLocationManage, true},
		{"only admin sends test notifications", model.RoleManager, ActionNotificationTest, false},
		{"unknown action denied", model.RoleAdmin, Action("order.unknown"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Can(tt.role, tt.action))
		})
	}
}

func TestResolveScope(t *testing.T) {
	admin := &model.User{ID: 1, Role: model.RoleAdmin}
	staff := &model.User{ID: 2, Role: model.RolePA, LocationID: strPtr("tokyo-01")}
	customer := &model.User{ID: 3, Role: model.RoleCustomer, LocationID: strPtr("tokyo-01")}

	assert.True(t, ResolveScope(admin).All())
	assert.False(t, ResolveScope(staff).All())
	assert.Equal(t, "tokyo-01", ResolveScope(staff).LocationID())
	assert.False(t, ResolveScope(customer).All())
	assert.Equal(t, "", ResolveScope(customer).LocationID())
}

func TestResolveScopeStaffWithoutLocation(t *testing.T) {
	// Staff missing a location must not widen to everything
	staff := &model.User{ID: 2, Role: model.RoleManager}
	scope := ResolveScope(staff)

	assert.False(t, scope.All())
	assert.False(t, scope.AllowsOrder(&model.Order{LocationID: "tokyo-01"}))
	assert.False(t, scope.AllowsOrder(&model.Order{LocationID: ""}))
}

func TestAllowsOrder(t *testing.T) {
	order := &model.Order{ID: 10, CustomerID: 3, LocationID: "tokyo-01"}

	admin := ResolveScope(&model.User{ID: 1, Role: model.RoleAdmin})
	sameLocation := ResolveScope(&model.User{ID: 2, Role: model.RoleFrontPA, LocationID: strPtr("tokyo-01")})
	otherLocation := ResolveScope(&model.User{ID: 4, Role: model.RoleFrontPA, LocationID: strPtr("osaka-01")})
	owner := ResolveScope(&model.User{ID: 3, Role: model.RoleCustomer})
	otherCustomer := ResolveScope(&model.User{ID: 9, Role: model.RoleCustomer})

	assert.True(t, admin.AllowsOrder(order))
	assert.True(t, sameLocation.AllowsOrder(order))
	assert.False(t, otherLocation.AllowsOrder(order))
	assert.True(t, owner.AllowsOrder(order))
	assert.False(t, otherCustomer.AllowsOrder(order))
}

func TestAllowsVehicle(t *testing.T) {
	vehicle := &model.Vehicle{ID: 5, CustomerID: uintPtr(3), LocationID: "tokyo-01"}
	unowned := &model.Vehicle{ID: 6, LocationID: "tokyo-01"}

	owner := ResolveScope(&model.User{ID: 3, Role: model.RoleCustomer})
	staff := ResolveScope(&model.User{ID: 2, Role: model.RolePA, LocationID: strPtr("tokyo-01")})

	assert.True(t, owner.AllowsVehicle(vehicle))
	assert.False(t, owner.AllowsVehicle(unowned))
	assert.True(t, staff.AllowsVehicle(vehicle))
	assert.True(t, staff.AllowsVehicle(unowned))
	assert.False(t, staff.AllowsVehicle(&model.Vehicle{ID: 7, LocationID: "osaka-01"}))
}

func TestAllowsUser(t *testing.T) {
	target := &model.User{ID: 3, Role: model.RoleCustomer, LocationID: strPtr("tokyo-01")}
	noLocation := &model.User{ID: 8, Role: model.RoleCustomer}

	admin := ResolveScope(&model.User{ID: 1, Role: model.RoleAdmin})
	staff := ResolveScope(&model.User{ID: 2, Role: model.RoleManager, LocationID: strPtr("tokyo-01")})
	self := ResolveScope(&model.User{ID: 3, Role: model.RoleCustomer})

	assert.True(t, admin.AllowsUser(target))
	assert.True(t, staff.AllowsUser(target))
	assert.False(t, staff.AllowsUser(noLocation))
	assert.True(t, self.AllowsUser(target))
	assert.False(t, self.AllowsUser(noLocation))
}
