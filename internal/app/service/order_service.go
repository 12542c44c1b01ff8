package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/stmiyata/seibi-backend/internal/app/model"
	"github.com/stmiyata/seibi-backend/internal/app/repository"
	"github.com/stmiyata/seibi-backend/internal/authz"
	"github.com/stmiyata/seibi-backend/internal/storage"
	"github.com/stmiyata/seibi-backend/internal/ws"
	"github.com/stmiyata/seibi-backend/pkg/logger"
)

var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrOrderForbidden         = errors.New("order access denied")
	ErrOrderNotTransitionable = errors.New("order status cannot be changed")
	ErrNoPhotos               = errors.New("no photos to upload")
	ErrTooManyPhotos          = errors.New("too many photos")
	ErrPhotoTooLarge          = errors.New("photo exceeds size limit")
	ErrPhotoNotImage          = errors.New("only image files are allowed")
)

const (
	maxPhotosPerUpload = 10
	maxPhotoSize       = 5 * 1024 * 1024
)

// legacyPhotoPattern matches the marker older clients wrote into the
// remarks field before attached_photos existed: [添付写真:a.jpg,b.jpg]
var legacyPhotoPattern = regexp.MustCompile(`\[添付写真:([^\[\]]+)\]`)

// CreateOrderInput carries the order fields a client may submit
type CreateOrderInput struct {
	OrderDate   string
	VehicleID   uint
	CustomerID  uint
	LocationID  string
	DiskPad     string
	BrakeShoe   string
	Wiper       string
	Belt        string
	CleanFilter string
	AirElement  string
	OilElement  string
	Remarks     string
}

// UpdateOrderInput carries the mutable order fields. Nil pointers leave
// the current value in place.
type UpdateOrderInput struct {
	OrderDate   *string
	Status      *model.OrderStatus
	DiskPad     *string
	BrakeShoe   *string
	Wiper       *string
	Belt        *string
	CleanFilter *string
	AirElement  *string
	OilElement  *string
	Remarks     *string
}

// UploadFile is one photo received from a multipart request
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// UploadedPhoto describes one stored photo in the upload response
type UploadedPhoto struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
}

type OrderService interface {
	List(actor *model.User) ([]model.Order, error)
	Get(actor *model.User, orderID uint) (*model.Order, error)
	Create(actor *model.User, input CreateOrderInput) (*model.Order, error)
	Update(actor *model.User, orderID uint, input UpdateOrderInput) (*model.Order, error)
	Confirm(actor *model.User, orderID uint) (*model.Order, error)
	Delete(orderID uint) error
	AttachPhotos(actor *model.User, orderID uint, files []UploadFile) ([]UploadedPhoto, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	store     storage.Storage
	notifier  Notifier
	hub       *ws.Hub
}

// NewOrderService wires the order flow. notifier and hub may be nil,
// in which case the corresponding side effects are skipped.
func NewOrderService(orderRepo repository.OrderRepository, store storage.Storage, notifier Notifier, hub *ws.Hub) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		store:     store,
		notifier:  notifier,
		hub:       hub,
	}
}

func (s *orderService) List(actor *model.User) ([]model.Order, error) {
	orders, err := s.orderRepo.FindAll(authz.ResolveScope(actor))
	if err != nil {
		return nil, err
	}
	for i := range orders {
		s.normalizePhotos(&orders[i])
	}
	return orders, nil
}

func (s *orderService) Get(actor *model.User, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if !authz.ResolveScope(actor).AllowsOrder(order) {
		logger.Warn("Order access denied", map[string]interface{}{
			"actor_id": actor.ID,
			"order_id": orderID,
		})
		return nil, ErrOrderForbidden
	}

	s.normalizePhotos(order)
	return order, nil
}

// normalizePhotos maps stored filenames to public URLs. Orders written
// by older clients carry the photo list inside remarks instead; those
// names are recovered on read and the camera_ prefix is dropped.
func (s *orderService) normalizePhotos(order *model.Order) {
	names := order.AttachedPhotos
	if len(names) == 0 && order.Remarks != "" {
		if match := legacyPhotoPattern.FindStringSubmatch(order.Remarks); match != nil {
			for _, name := range strings.Split(match[1], ",") {
				name = strings.TrimSpace(name)
				name = strings.TrimPrefix(name, "camera_")
				if name != "" {
					names = append(names, name)
				}
			}
		}
	}

	urls := make(model.StringArray, 0, len(names))
	for _, name := range names {
		urls = append(urls, s.store.PublicURL(name))
	}
	order.AttachedPhotos = urls
}

func (s *orderService) Create(actor *model.User, input CreateOrderInput) (*model.Order, error) {
	order := &model.Order{
		OrderDate:   input.OrderDate,
		VehicleID:   input.VehicleID,
		CustomerID:  input.CustomerID,
		LocationID:  input.LocationID,
		Status:      model.OrderStatusReceived,
		DiskPad:     input.DiskPad,
		BrakeShoe:   input.BrakeShoe,
		Wiper:       input.Wiper,
		Belt:        input.Belt,
		CleanFilter: input.CleanFilter,
		AirElement:  input.AirElement,
		OilElement:  input.OilElement,
		Remarks:     input.Remarks,
		CreatedBy:   actor.ID,
		UpdatedBy:   actor.ID,
	}

	// 拠点と顧客はリクエストではなく操作者から決める（adminを除く）
	if actor.Role == model.RoleCustomer {
		order.CustomerID = actor.ID
	}
	if actor.Role != model.RoleAdmin {
		if actor.LocationID == nil {
			return nil, ErrOrderForbidden
		}
		order.LocationID = *actor.LocationID
	}

	if order.OrderDate == "" {
		order.OrderDate = time.Now().Format("2006-01-02")
	}

	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	created, err := s.orderRepo.FindByID(order.ID)
	if err != nil {
		// The row exists; return what we have
		created = order
	}

	s.dispatchOrderCreated(created)
	return created, nil
}

// dispatchOrderCreated fires the notification and the dashboard event.
// Neither outcome is surfaced to the client; failures are only logged.
func (s *orderService) dispatchOrderCreated(order *model.Order) {
	if s.notifier != nil {
		go func(o model.Order) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.notifier.NotifyOrderCreated(ctx, &o); err != nil {
				logger.Warn("Order notification not delivered", map[string]interface{}{
					"order_id": o.ID,
					"reason":   err.Error(),
				})
			}
		}(*order)
	}

	if s.hub != nil {
		s.hub.BroadcastOrder("order_created", order)
	}
}

func (s *orderService) Update(actor *model.User, orderID uint, input UpdateOrderInput) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	// PAは自分の拠点の注文のみ更新可能
	if actor.Role.IsStaff() {
		if actor.LocationID == nil || order.LocationID != *actor.LocationID {
			return nil, ErrOrderForbidden
		}
	}

	if input.Status != nil && *input.Status != order.Status {
		if !input.Status.IsValid() {
			return nil, ErrOrderNotTransitionable
		}
		// 受注以外の注文は状態を変更できない
		if order.Status != model.OrderStatusReceived {
			return nil, ErrOrderNotTransitionable
		}
		order.Status = *input.Status
	}

	if input.OrderDate != nil {
		order.OrderDate = *input.OrderDate
	}
	if input.DiskPad != nil {
		order.DiskPad = *input.DiskPad
	}
	if input.BrakeShoe != nil {
		order.BrakeShoe = *input.BrakeShoe
	}
	if input.Wiper != nil {
		order.Wiper = *input.Wiper
	}
	if input.Belt != nil {
		order.Belt = *input.Belt
	}
	if input.CleanFilter != nil {
		order.CleanFilter = *input.CleanFilter
	}
	if input.AirElement != nil {
		order.AirElement = *input.AirElement
	}
	if input.Remarks != nil {
		order.Remarks = *input.Remarks
	}
	if input.OilElement != nil {
		order.OilElement = *input.OilElement
	}
	order.UpdatedBy = actor.ID

	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.BroadcastOrder("order_updated", order)
	}
	return order, nil
}

// Confirm moves a received order to 注文済み. Orders already confirmed
// or cancelled stay where they are.
func (s *orderService) Confirm(actor *model.User, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	// 店頭PA・店長は自分の拠点の注文のみ確定可能
	if actor.Role.IsStaff() {
		if actor.LocationID == nil || order.LocationID != *actor.LocationID {
			return nil, ErrOrderForbidden
		}
	}

	if order.Status != model.OrderStatusReceived {
		logger.Warn("Order confirm rejected, not in received state", map[string]interface{}{
			"order_id": order.ID,
			"status":   order.Status,
		})
		return nil, ErrOrderNotTransitionable
	}

	order.Status = model.OrderStatusConfirmed
	order.UpdatedBy = actor.ID
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}

	logger.Info("Order confirmed", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"actor_id":     actor.ID,
	})

	if s.hub != nil {
		s.hub.BroadcastOrder("order_confirmed", order)
	}
	return order, nil
}

func (s *orderService) Delete(orderID uint) error {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	if err := s.orderRepo.Delete(order.ID); err != nil {
		return err
	}

	if s.hub != nil {
		s.hub.BroadcastOrder("order_deleted", order)
	}
	return nil
}

// AttachPhotos stores the uploaded images and appends their filenames
// to the order. Existing photos are never replaced. Two concurrent
// uploads can drop one another's append; last writer wins.
func (s *orderService) AttachPhotos(actor *model.User, orderID uint, files []UploadFile) ([]UploadedPhoto, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if !authz.ResolveScope(actor).AllowsOrder(order) {
		return nil, ErrOrderForbidden
	}

	if len(files) == 0 {
		return nil, ErrNoPhotos
	}
	if len(files) > maxPhotosPerUpload {
		return nil, ErrTooManyPhotos
	}
	for _, f := range files {
		if !strings.HasPrefix(f.ContentType, "image/") {
			return nil, ErrPhotoNotImage
		}
		if f.Size > maxPhotoSize {
			return nil, ErrPhotoTooLarge
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	uploaded := make([]UploadedPhoto, 0, len(files))
	for _, f := range files {
		filename, err := s.store.Save(ctx, f.Name, f.ContentType, f.Data)
		if err != nil {
			return nil, err
		}
		uploaded = append(uploaded, UploadedPhoto{
			Filename:     filename,
			OriginalName: f.Name,
			Size:         f.Size,
		})
		order.AttachedPhotos = append(order.AttachedPhotos, filename)
	}

	order.UpdatedBy = actor.ID
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}

	logger.Info("Photos attached to order", map[string]interface{}{
		"order_id":     order.ID,
		"uploaded":     len(uploaded),
		"total_photos": len(order.AttachedPhotos),
	})
	return uploaded, nil
}
