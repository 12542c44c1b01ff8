package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stmiyata/seibi-backend/internal/app/model"
	"github.com/stmiyata/seibi-backend/internal/app/repository"
	"github.com/stmiyata/seibi-backend/internal/db"
	"github.com/stmiyata/seibi-backend/internal/storage"
)

func setupOrderServiceTest(t *testing.T) (OrderService, *gorm.DB, *model.User, *model.User, *model.Vehicle) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	orderRepo := repository.NewOrderRepository(testDB)
	orderService := NewOrderService(orderRepo, store, nil, nil)

	location := &model.Location{ID: "tokyo-01", Name: "東京第一"}
	testDB.Create(location)

	locationID := location.ID
	staff := &model.User{
		Username:    "pa1",
		Password:    "password123",
		Role:        model.RolePA,
		DisplayName: "整備担当",
		LocationID:  &locationID,
	}
	testDB.Create(staff)

	customer := &model.User{
		Username:    "customer1",
		Password:    "password123",
		Role:        model.RoleCustomer,
		DisplayName: "顧客一郎",
		LocationID:  &locationID,
	}
	testDB.Create(customer)

	vehicle := &model.Vehicle{
		FrameNumber: "ZD8-020600",
		CustomerID:  &customer.ID,
		LocationID:  location.ID,
	}
	testDB.Create(vehicle)

	return orderService, testDB, staff, customer, vehicle
}

func TestOrderService_Create_StaffLocationForced(t *testing.T) {
	orderService, _, staff, customer, vehicle := setupOrderServiceTest(t)

	order, err := orderService.Create(staff, CreateOrderInput{
		OrderDate:  "2025-03-20",
		VehicleID:  vehicle.ID,
		CustomerID: customer.ID,
		LocationID: "osaka-02", // ignored for staff
		DiskPad:    "フロント交換",
	})
	require.NoError(t, err)
	assert.Equal(t, "tokyo-01", order.LocationID)
	assert.Equal(t, "ORD-20250320-0001", order.OrderNumber)
	assert.Equal(t, model.OrderStatusReceived, order.Status)
	assert.Equal(t, staff.ID, order.CreatedBy)
}

func TestOrderService_Create_CustomerOwnsOrder(t *testing.T) {
	orderService, _, _, customer, vehicle := setupOrderServiceTest(t)

	order, err := orderService.Create(customer, CreateOrderInput{
		OrderDate:  "2025-03-20",
		VehicleID:  vehicle.ID,
		CustomerID: 9999, // ignored for customers
		Wiper:      "左右交換",
	})
	require.NoError(t, err)
	assert.Equal(t, customer.ID, order.CustomerID)
	assert.Equal(t, "tokyo-01", order.LocationID)
}

func TestOrderService_Create_DefaultsOrderDate(t *testing.T) {
	orderService, _, staff, customer, vehicle := setupOrderServiceTest(t)

	order, err := orderService.Create(staff, CreateOrderInput{
		VehicleID:  vehicle.ID,
		CustomerID: customer.ID,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, order.OrderDate)
	assert.NotEmpty(t, order.OrderNumber)
}

func TestOrderService_Confirm_Success(t *testing.T) {
	orderService, testDB, staff, customer, vehicle := setupOrderServiceTest(t)

	order := &model.Order{
		OrderDate:  "2025-03-20",
		VehicleID:  vehicle.ID,
		CustomerID: customer.ID,
		LocationID: "tokyo-01",
		Status:     model.OrderStatusReceived,
	}
	testDB.Create(order)

	confirmed, err := orderService.Confirm(staff, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, confirmed.Status)
	assert.Equal(t, staff.ID, confirmed.UpdatedBy)
}

func TestOrderService_Confirm_AlreadyConfirmed(t *testing.T) {
	orderService, testDB, staff, customer, vehicle := setupOrderServiceTest(t)

	order := &model.Order{
		OrderDate:  "2025-03-20",
		VehicleID:  vehicle.ID,
		CustomerID: customer.ID,
		LocationID: "tokyo-01",
		Status:     model.OrderStatusConfirmed,
	}
	testDB.Create(order)

	confirmed, err := orderService.Confirm(staff, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotTransitionable)
	assert.Nil(t, confirmed)
}

func TestOrderService_Confirm_OtherLocation(t *testing.T) {
	orderService, testDB, staff, customer, vehicle := setupOrderServiceTest(t)

	order := &model.Order{
		OrderDate:  "2025-03-20",
		VehicleID:  vehicle.ID,
		CustomerID: customer.ID,
		LocationID: "osaka-02",
		Status:     model.OrderStatusReceived,
	}
	testDB.Create(order)

	confirmed, err := orderService.Confirm(staff, order.ID)
	assert.ErrorIs(t, err, ErrOrderForbidden)
	assert.Nil(t, confirmed)
}

func TestOrderService_Confirm_NotFound(t *testing.T) {
	orderService, _, staff, _, _ := setupOrderServiceTest(t)

	confirmed, err := orderService.Confirm(staff, 9999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Nil(t, confirmed)
}

func TestOrderService_Update_StatusLocked(t *testing.T) {
	orderService, testDB, staff, customer, vehicle := setupOrderServiceTest(t)

	order := &model.Order{
		OrderDate:  "2025-03-20",
		VehicleID:  vehicle.ID,
		CustomerID: customer.ID,
		LocationID: "tokyo-01",
		Status:     model.OrderStatusCancelled,
	}
	testDB.Create(order)

	status := model.OrderStatusReceived
	updated, err := orderService.Update(staff, order.ID, UpdateOrderInput{Status: &status})
	assert.ErrorIs(t, err, ErrOrderNotTransitionable)
	assert.Nil(t, updated)
}

func TestOrderService_Update_Fields(t *testing.T) {
	orderService, testDB, staff, customer, vehicle := setupOrderServiceTest(t)

	order := &model.Order{
		OrderDate:  "2025-03-20",
		VehicleID:  vehicle.ID,
		CustomerID: customer.ID,
		LocationID: "tokyo-01",
		Status:     model.OrderStatusReceived,
	}
	testDB.Create(order)

	remarks := "次回点検時に交換"
	status := model.OrderStatusCancelled
	updated, err := orderService.Update(staff, order.ID, UpdateOrderInput{
		Remarks: &remarks,
		Status:  &status,
	})
	require.NoError(t, err)
	assert.Equal(t, remarks, updated.Remarks)
	assert.Equal(t, model.OrderStatusCancelled, updated.Status)
}

func TestOrderService_Get_LegacyPhotosFromRemarks(t *testing.T) {
	orderService, testDB, staff, customer, vehicle := setupOrderServiceTest(t)

	order := &model.Order{
		OrderDate:  "2025-03-20",
		VehicleID:  vehicle.ID,
		CustomerID: customer.ID,
		LocationID: "tokyo-01",
		Status:     model.OrderStatusReceived,
		Remarks:    "エンジン異音あり [添付写真:camera_a.jpg, b.jpg]",
	}
	testDB.Create(order)

	found, err := orderService.Get(staff, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StringArray{"/uploads/a.jpg", "/uploads/b.jpg"}, found.AttachedPhotos)
}

func TestOrderService_Get_PhotosMappedToURLs(t *testing.T) {
	orderService, testDB, staff, customer, vehicle := setupOrderServiceTest(t)

	order := &model.Order{
		OrderDate:      "2025-03-20",
		VehicleID:      vehicle.ID,
		CustomerID:     customer.ID,
		LocationID:     "tokyo-01",
		Status:         model.OrderStatusReceived,
		AttachedPhotos: model.StringArray{"123-456.jpg"},
	}
	testDB.Create(order)

	found, err := orderService.Get(staff, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StringArray{"/uploads/123-456.jpg"}, found.AttachedPhotos)
}

func TestOrderService_Get_CustomerCannotSeeOthers(t *testing.T) {
	orderService, testDB, _, customer, vehicle := setupOrderServiceTest(t)

	other := &model.User{
		Username:    "customer2",
		Password:    "password123",
		Role:        model.RoleCustomer,
		DisplayName: "顧客二郎",
	}
	testDB.Create(other)

	order := &model.Order{
		OrderDate:  "2025-03-20",
		VehicleID:  vehicle.ID,
		CustomerID: customer.ID,
		LocationID: "tokyo-01",
		Status:     model.OrderStatusReceived,
	}
	testDB.Create(order)

	found, err := orderService.Get(other, order.ID)
	assert.ErrorIs(t, err, ErrOrderForbidden)
	assert.Nil(t, found)
}

func TestOrderService_AttachPhotos_Appends(t *testing.T) {
	orderService, testDB, staff, customer, vehicle := setupOrderServiceTest(t)

	order := &model.Order{
		OrderDate:      "2025-03-20",
		VehicleID:      vehicle.ID,
		CustomerID:     customer.ID,
		LocationID:     "tokyo-01",
		Status:         model.OrderStatusReceived,
		AttachedPhotos: model.StringArray{"existing.jpg"},
	}
	testDB.Create(order)

	uploaded, err := orderService.AttachPhotos(staff, order.ID, []UploadFile{
		{Name: "front.jpg", ContentType: "image/jpeg", Size: 1024, Data: []byte("jpegdata")},
	})
	require.NoError(t, err)
	require.Len(t, uploaded, 1)
	assert.Equal(t, "front.jpg", uploaded[0].OriginalName)

	orderRepo := repository.NewOrderRepository(testDB)
	stored, err := orderRepo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.AttachedPhotos, 2)
	assert.Equal(t, "existing.jpg", stored.AttachedPhotos[0])
}

func TestOrderService_AttachPhotos_RejectsNonImage(t *testing.T) {
	orderService, testDB, staff, customer, vehicle := setupOrderServiceTest(t)

	order := &model.Order{
		OrderDate:  "2025-03-20",
		VehicleID:  vehicle.ID,
		CustomerID: customer.ID,
		LocationID: "tokyo-01",
		Status:     model.OrderStatusReceived,
	}
	testDB.Create(order)

	uploaded, err := orderService.AttachPhotos(staff, order.ID, []UploadFile{
		{Name: "report.pdf", ContentType: "application/pdf", Size: 1024, Data: []byte("pdf")},
	})
	assert.ErrorIs(t, err, ErrPhotoNotImage)
	assert.Nil(t, uploaded)
}

func TestOrderService_AttachPhotos_RejectsTooMany(t *testing.T) {
	orderService, testDB, staff, customer, vehicle := setupOrderServiceTest(t)

	order := &model.Order{
		OrderDate:  "2025-03-20",
		VehicleID:  vehicle.ID,
		CustomerID: customer.ID,
		LocationID: "tokyo-01",
		Status:     model.OrderStatusReceived,
	}
	testDB.Create(order)

	files := make([]UploadFile, 11)
	for i := range files {
		files[i] = UploadFile{Name: "p.jpg", ContentType: "image/jpeg", Size: 10, Data: []byte("x")}
	}
	uploaded, err := orderService.AttachPhotos(staff, order.ID, files)
	assert.ErrorIs(t, err, ErrTooManyPhotos)
	assert.Nil(t, uploaded)
}

func TestOrderService_AttachPhotos_RejectsOversize(t *testing.T) {
	orderService, testDB, staff, customer, vehicle := setupOrderServiceTest(t)

	order := &model.Order{
		OrderDate:  "2025-03-20",
		VehicleID:  vehicle.ID,
		CustomerID: customer.ID,
		LocationID: "tokyo-01",
		Status:     model.OrderStatusReceived,
	}
	testDB.Create(order)

	uploaded, err := orderService.AttachPhotos(staff, order.ID, []UploadFile{
		{Name: "huge.jpg", ContentType: "image/jpeg", Size: 6 * 1024 * 1024, Data: []byte("x")},
	})
	assert.ErrorIs(t, err, ErrPhotoTooLarge)
	assert.Nil(t, uploaded)
}

func TestOrderService_Delete(t *testing.T) {
	orderService, testDB, _, customer, vehicle := setupOrderServiceTest(t)

	order := &model.Order{
		OrderDate:  "2025-03-20",
		VehicleID:  vehicle.ID,
		CustomerID: customer.ID,
		LocationID: "tokyo-01",
		Status:     model.OrderStatusReceived,
	}
	testDB.Create(order)

	err := orderService.Delete(order.ID)
	require.NoError(t, err)

	orderRepo := repository.NewOrderRepository(testDB)
	_, err = orderRepo.FindByID(order.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
