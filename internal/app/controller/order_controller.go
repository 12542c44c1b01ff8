package controller

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stmiyata/seibi-backend/internal/app/model"
	"github.com/stmiyata/seibi-backend/internal/app/service"
	apperrors "github.com/stmiyata/seibi-backend/internal/errors"
	"github.com/stmiyata/seibi-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

type CreateOrderRequest struct {
	OrderDate   string `json:"order_date"`
	VehicleID   uint   `json:"vehicle_id" binding:"required"`
	CustomerID  uint   `json:"customer_id"`
	LocationID  string `json:"location_id"`
	DiskPad     string `json:"disk_pad"`
	BrakeShoe   string `json:"brake_shoe"`
	Wiper       string `json:"wiper"`
	Belt        string `json:"belt"`
	CleanFilter string `json:"clean_filter"`
	AirElement  string `json:"air_element"`
	OilElement  string `json:"oil_element"`
	Remarks     string `json:"remarks"`
}

type UpdateOrderRequest struct {
	OrderDate   *string `json:"order_date"`
	Status      *string `json:"status"`
	DiskPad     *string `json:"disk_pad"`
	BrakeShoe   *string `json:"brake_shoe"`
	Wiper       *string `json:"wiper"`
	Belt        *string `json:"belt"`
	CleanFilter *string `json:"clean_filter"`
	AirElement  *string `json:"air_element"`
	OilElement  *string `json:"oil_element"`
	Remarks     *string `json:"remarks"`
}

// List returns the orders visible to the actor
// GET /api/orders
func (ctrl *OrderController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "ログインが必要です")
		return
	}

	orders, err := ctrl.orderService.List(actor)
	if err != nil {
		log.Error("Failed to list orders", err, map[string]interface{}{
			"actor_id": actor.ID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// Get returns one order with its related rows
// GET /api/orders/:id
func (ctrl *OrderController) Get(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "ログインが必要です")
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "注文IDが正しくありません")
		return
	}

	order, err := ctrl.orderService.Get(actor, uint(orderID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "注文が見つかりません")
		case errors.Is(err, service.ErrOrderForbidden):
			apperrors.Forbidden(c, "この注文を閲覧する権限がありません")
		default:
			log.Error("Failed to get order", err, map[string]interface{}{
				"order_id": orderID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get order")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// Create registers an order
// POST /api/orders
func (ctrl *OrderController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "ログインが必要です")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid order request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "入力内容が正しくありません")
		return
	}

	order, err := ctrl.orderService.Create(actor, service.CreateOrderInput{
		OrderDate:   req.OrderDate,
		VehicleID:   req.VehicleID,
		CustomerID:  req.CustomerID,
		LocationID:  req.LocationID,
		DiskPad:     req.DiskPad,
		BrakeShoe:   req.BrakeShoe,
		Wiper:       req.Wiper,
		Belt:        req.Belt,
		CleanFilter: req.CleanFilter,
		AirElement:  req.AirElement,
		OilElement:  req.OilElement,
		Remarks:     req.Remarks,
	})
	if err != nil {
		if errors.Is(err, service.ErrOrderForbidden) {
			apperrors.Forbidden(c, "注文を登録する権限がありません")
			return
		}
		log.Error("Failed to create order", err, map[string]interface{}{
			"actor_id":   actor.ID,
			"vehicle_id": req.VehicleID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create order")
		return
	}

	log.Info("Order created", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"actor_id":     actor.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "注文を登録しました",
		"order":   order,
	})
}

// Update modifies an order
// PUT /api/orders/:id
func (ctrl *OrderController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "ログインが必要です")
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "注文IDが正しくありません")
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "入力内容が正しくありません")
		return
	}

	input := service.UpdateOrderInput{
		OrderDate:   req.OrderDate,
		DiskPad:     req.DiskPad,
		BrakeShoe:   req.BrakeShoe,
		Wiper:       req.Wiper,
		Belt:        req.Belt,
		CleanFilter: req.CleanFilter,
		AirElement:  req.AirElement,
		OilElement:  req.OilElement,
		Remarks:     req.Remarks,
	}
	if req.Status != nil {
		status := model.OrderStatus(*req.Status)
		input.Status = &status
	}

	order, err := ctrl.orderService.Update(actor, uint(orderID), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "注文が見つかりません")
		case errors.Is(err, service.ErrOrderForbidden):
			apperrors.Forbidden(c, "他拠点の注文は更新できません")
		case errors.Is(err, service.ErrOrderNotTransitionable):
			apperrors.Conflict(c, apperrors.OrderInvalidTransition, "この注文の状態は変更できません")
		default:
			log.Error("Failed to update order", err, map[string]interface{}{
				"order_id": orderID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update order")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "注文を更新しました",
		"order":   order,
	})
}

// Confirm moves a received order to 注文済み
// PUT /api/orders/:id/confirm
func (ctrl *OrderController) Confirm(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "ログインが必要です")
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "注文IDが正しくありません")
		return
	}

	order, err := ctrl.orderService.Confirm(actor, uint(orderID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "注文が見つかりません")
		case errors.Is(err, service.ErrOrderForbidden):
			apperrors.Forbidden(c, "他拠点の注文は確定できません")
		case errors.Is(err, service.ErrOrderNotTransitionable):
			apperrors.Conflict(c, apperrors.OrderInvalidTransition, "受注状態の注文のみ確定できます")
		default:
			log.Error("Failed to confirm order", err, map[string]interface{}{
				"order_id": orderID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update order")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "注文を確定しました",
		"order":   order,
	})
}

// Delete removes an order
// DELETE /api/orders/:id
func (ctrl *OrderController) Delete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "注文IDが正しくありません")
		return
	}

	if err := ctrl.orderService.Delete(uint(orderID)); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "注文が見つかりません")
			return
		}
		log.Error("Failed to delete order", err, map[string]interface{}{
			"order_id": orderID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "注文を削除しました",
	})
}

// UploadPhotos attaches photos to an order
// POST /api/orders/:id/photos
func (ctrl *OrderController) UploadPhotos(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "ログインが必要です")
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "注文IDが正しくありません")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "ファイルの受信に失敗しました")
		return
	}

	var files []service.UploadFile
	for _, fh := range form.File["photos"] {
		f, err := fh.Open()
		if err != nil {
			apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "ファイルの読み込みに失敗しました")
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "ファイルの読み込みに失敗しました")
			return
		}
		files = append(files, service.UploadFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Data:        data,
		})
	}

	uploaded, err := ctrl.orderService.AttachPhotos(actor, uint(orderID), files)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "注文が見つかりません")
		case errors.Is(err, service.ErrOrderForbidden):
			apperrors.Forbidden(c, "この注文に写真を追加する権限がありません")
		case errors.Is(err, service.ErrNoPhotos):
			apperrors.BadRequest(c, apperrors.ValidationRequired, "アップロードする写真がありません")
		case errors.Is(err, service.ErrTooManyPhotos):
			apperrors.BadRequest(c, apperrors.UploadTooManyFiles, "写真は一度に10枚までアップロードできます")
		case errors.Is(err, service.ErrPhotoTooLarge):
			apperrors.BadRequest(c, apperrors.UploadFileTooLarge, "写真のサイズは5MB以下にしてください")
		case errors.Is(err, service.ErrPhotoNotImage):
			apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "画像ファイルのみアップロードできます")
		default:
			log.Error("Failed to upload photos", err, map[string]interface{}{
				"order_id": orderID,
			})
			apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "写真のアップロードに失敗しました")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "写真をアップロードしました",
		"photos":  uploaded,
	})
}

// GetPhotos returns the photo URLs of an order
// GET /api/orders/:id/photos
func (ctrl *OrderController) GetPhotos(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "ログインが必要です")
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "注文IDが正しくありません")
		return
	}

	order, err := ctrl.orderService.Get(actor, uint(orderID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "注文が見つかりません")
		case errors.Is(err, service.ErrOrderForbidden):
			apperrors.Forbidden(c, "この注文を閲覧する権限がありません")
		default:
			log.Error("Failed to get order photos", err, map[string]interface{}{
				"order_id": orderID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get order")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"photos": order.AttachedPhotos})
}
