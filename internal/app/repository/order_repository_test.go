package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stmiyata/seibi-backend/internal/app/model"
	"github.com/stmiyata/seibi-backend/internal/authz"
	"github.com/stmiyata/seibi-backend/internal/db"
)

func setupOrderTest(t *testing.T) (*gorm.DB, OrderRepository, *model.User, *model.Vehicle) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewOrderRepository(testDB)

	location := &model.Location{ID: "tokyo-01", Name: "東京第一店", IsActive: true}
	testDB.Create(location)

	locID := location.ID
	customer := &model.User{
		Username:    "customer1",
		Password:    "hash",
		Role:        model.RoleCustomer,
		DisplayName: "株式会社A",
		LocationID:  &locID,
	}
	testDB.Create(customer)

	vehicle := &model.Vehicle{
		FrameNumber: "ZD8-020600",
		CustomerID:  &customer.ID,
		LocationID:  location.ID,
	}
	testDB.Create(vehicle)

	return testDB, repo, customer, vehicle
}

func newTestOrder(customer *model.User, vehicle *model.Vehicle, orderDate string) *model.Order {
	return &model.Order{
		OrderDate:  orderDate,
		VehicleID:  vehicle.ID,
		CustomerID: customer.ID,
		LocationID: vehicle.LocationID,
		Status:     model.OrderStatusReceived,
		DiskPad:    "フロント",
		CreatedBy:  customer.ID,
		UpdatedBy:  customer.ID,
	}
}

func adminScope() authz.Scope {
	return authz.ResolveScope(&model.User{ID: 1, Role: model.RoleAdmin})
}

func TestOrderRepository_Create(t *testing.T) {
	testDB, repo, customer, vehicle := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	order := newTestOrder(customer, vehicle, "2025-03-20")
	err := repo.Create(order)
	assert.NoError(t, err)
	assert.NotZero(t, order.ID)
	assert.Equal(t, "ORD-20250320-0001", order.OrderNumber)
}

func TestOrderRepository_OrderNumberSequence(t *testing.T) {
	testDB, repo, customer, vehicle := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	first := newTestOrder(customer, vehicle, "2025-03-20")
	second := newTestOrder(customer, vehicle, "2025-03-20")
	otherDay := newTestOrder(customer, vehicle, "2025-03-21")

	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Create(second))
	require.NoError(t, repo.Create(otherDay))

	assert.Equal(t, "ORD-20250320-0001", first.OrderNumber)
	assert.Equal(t, "ORD-20250320-0002", second.OrderNumber)
	// The sequence restarts for each order date
	assert.Equal(t, "ORD-20250321-0001", otherDay.OrderNumber)
}

func TestOrderRepository_OrderNumberContinuesAfterDelete(t *testing.T) {
	testDB, repo, customer, vehicle := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	first := newTestOrder(customer, vehicle, "2025-03-20")
	second := newTestOrder(customer, vehicle, "2025-03-20")
	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Create(second))

	// Deleting the newest order frees its number for reuse
	require.NoError(t, repo.Delete(second.ID))
	third := newTestOrder(customer, vehicle, "2025-03-20")
	require.NoError(t, repo.Create(third))
	assert.Equal(t, "ORD-20250320-0002", third.OrderNumber)

	// Deleting an earlier order must not reissue a number still in use
	require.NoError(t, repo.Delete(first.ID))
	fourth := newTestOrder(customer, vehicle, "2025-03-20")
	require.NoError(t, repo.Create(fourth))
	assert.Equal(t, "ORD-20250320-0003", fourth.OrderNumber)
}

func TestOrderRepository_CreateKeepsSuppliedNumber(t *testing.T) {
	testDB, repo, customer, vehicle := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	order := newTestOrder(customer, vehicle, "2025-03-20")
	order.OrderNumber = "ORD-20250320-9999"

	require.NoError(t, repo.Create(order))
	assert.Equal(t, "ORD-20250320-9999", order.OrderNumber)
}

func TestOrderRepository_CreateInvalidDate(t *testing.T) {
	testDB, repo, customer, vehicle := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	order := newTestOrder(customer, vehicle, "20/03/2025")
	err := repo.Create(order)
	assert.Error(t, err)
}

func TestOrderRepository_FindByID(t *testing.T) {
	testDB, repo, customer, vehicle := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	order := newTestOrder(customer, vehicle, "2025-03-20")
	require.NoError(t, repo.Create(order))

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	require.NotNil(t, found.Vehicle)
	assert.Equal(t, vehicle.FrameNumber, found.Vehicle.FrameNumber)
	require.NotNil(t, found.Customer)
	assert.Equal(t, customer.DisplayName, found.Customer.DisplayName)
	require.NotNil(t, found.Location)
	assert.Equal(t, "東京第一店", found.Location.Name)
}

func TestOrderRepository_FindByIDNotFound(t *testing.T) {
	testDB, repo, _, _ := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	_, err := repo.FindByID(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository_FindAllScoped(t *testing.T) {
	testDB, repo, customer, vehicle := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	osaka := &model.Location{ID: "osaka-01", Name: "大阪店", IsActive: true}
	testDB.Create(osaka)
	osakaID := osaka.ID
	otherCustomer := &model.User{
		Username:    "customer2",
		Password:    "hash",
		Role:        model.RoleCustomer,
		DisplayName: "株式会社B",
		LocationID:  &osakaID,
	}
	testDB.Create(otherCustomer)
	otherVehicle := &model.Vehicle{FrameNumber: "NZE161-0001", CustomerID: &otherCustomer.ID, LocationID: osaka.ID}
	testDB.Create(otherVehicle)

	require.NoError(t, repo.Create(newTestOrder(customer, vehicle, "2025-03-20")))
	require.NoError(t, repo.Create(newTestOrder(otherCustomer, otherVehicle, "2025-03-20")))

	all, err := repo.FindAll(adminScope())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	tokyoID := "tokyo-01"
	staffScope := authz.ResolveScope(&model.User{ID: 99, Role: model.RolePA, LocationID: &tokyoID})
	scoped, err := repo.FindAll(staffScope)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "tokyo-01", scoped[0].LocationID)

	customerScope := authz.ResolveScope(&model.User{ID: otherCustomer.ID, Role: model.RoleCustomer})
	mine, err := repo.FindAll(customerScope)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, otherCustomer.ID, mine[0].CustomerID)
}

func TestOrderRepository_FindRecent(t *testing.T) {
	testDB, repo, customer, vehicle := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	for _, date := range []string{"2025-03-18", "2025-03-19", "2025-03-20"} {
		require.NoError(t, repo.Create(newTestOrder(customer, vehicle, date)))
	}

	recent, err := repo.FindRecent(adminScope(), 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "2025-03-20", recent[0].OrderDate)
	assert.Equal(t, "2025-03-19", recent[1].OrderDate)
}

func TestOrderRepository_FindByStatusAndLocation(t *testing.T) {
	testDB, repo, customer, vehicle := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	pending := newTestOrder(customer, vehicle, "2025-03-20")
	require.NoError(t, repo.Create(pending))

	confirmed := newTestOrder(customer, vehicle, "2025-03-20")
	confirmed.Status = model.OrderStatusConfirmed
	require.NoError(t, repo.Create(confirmed))

	orders, err := repo.FindByStatusAndLocation(model.OrderStatusReceived, "tokyo-01")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, pending.ID, orders[0].ID)
	// The digest message names the customer
	require.NotNil(t, orders[0].Customer)
	assert.Equal(t, "株式会社A", orders[0].Customer.DisplayName)

	none, err := repo.FindByStatusAndLocation(model.OrderStatusReceived, "osaka-01")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOrderRepository_CountByMonth(t *testing.T) {
	testDB, repo, customer, vehicle := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	for _, date := range []string{"2025-01-10", "2025-01-20", "2025-02-05", "2024-06-01"} {
		require.NoError(t, repo.Create(newTestOrder(customer, vehicle, date)))
	}

	counts, err := repo.CountByMonth(adminScope(), "2024-12-01")
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "2025-01", counts[0].Month)
	assert.EqualValues(t, 2, counts[0].Count)
	assert.Equal(t, "2025-02", counts[1].Month)
	assert.EqualValues(t, 1, counts[1].Count)
}

func TestOrderRepository_UpdateAndDelete(t *testing.T) {
	testDB, repo, customer, vehicle := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	order := newTestOrder(customer, vehicle, "2025-03-20")
	require.NoError(t, repo.Create(order))

	order.Status = model.OrderStatusConfirmed
	order.AttachedPhotos = model.StringArray{"1700000000000-123456789.jpg"}
	require.NoError(t, repo.Update(order))

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, found.Status)
	assert.Equal(t, model.StringArray{"1700000000000-123456789.jpg"}, found.AttachedPhotos)

	require.NoError(t, repo.Delete(order.ID))
	_, err = repo.FindByID(order.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// The row is physically removed, not soft-deleted
	var count int64
	testDB.Unscoped().Model(&model.Order{}).Where("id = ?", order.ID).Count(&count)
	assert.Zero(t, count)
}
