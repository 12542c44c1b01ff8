package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/stmiyata/seibi-backend/internal/app/model"
	"github.com/stmiyata/seibi-backend/internal/app/repository"
	"github.com/stmiyata/seibi-backend/pkg/lineworks"
	"github.com/stmiyata/seibi-backend/pkg/logger"
)

var (
	ErrNotifyNotConfigured = errors.New("notification is not configured")
	ErrNotifyNoRecipient   = errors.New("no notification recipient for location")
)

// Notifier dispatches order notifications to the store responsible for
// a location. Implementations must never surface delivery failures to
// the caller of the order flow; failures are logged and swallowed there.
type Notifier interface {
	NotifyOrderCreated(ctx context.Context, order *model.Order) error
	NotifyPendingOrders(ctx context.Context, locationID string, orders []model.Order) error
	SendTest(ctx context.Context, locationID string) error
}

type notificationService struct {
	client       *lineworks.Client
	locationRepo repository.LocationRepository
}

func NewNotificationService(client *lineworks.Client, locationRepo repository.LocationRepository) Notifier {
	return &notificationService{
		client:       client,
		locationRepo: locationRepo,
	}
}

// recipientFor resolves the LINE WORKS user that receives notifications
// for a location: the location row first, then the per-location env var.
func (s *notificationService) recipientFor(locationID string) (string, error) {
	location, err := s.locationRepo.FindByID(locationID)
	if err == nil && location.NotifyUserID != "" {
		return location.NotifyUserID, nil
	}

	envKey := fmt.Sprintf("LW_ADMIN_USER_ID_%s", locationID)
	if userID := os.Getenv(envKey); userID != "" {
		return userID, nil
	}

	logger.Warn("No notification recipient configured for location", map[string]interface{}{
		"location_id": locationID,
		"env_key":     envKey,
	})
	return "", ErrNotifyNoRecipient
}

func (s *notificationService) NotifyOrderCreated(ctx context.Context, order *model.Order) error {
	if !s.client.Enabled() {
		logger.Debug("LINE WORKS not configured, skipping order notification", map[string]interface{}{
			"order_id": order.ID,
		})
		return ErrNotifyNotConfigured
	}

	recipient, err := s.recipientFor(order.LocationID)
	if err != nil {
		return err
	}

	message := BuildOrderMessage(order)
	if err := s.client.SendTextMessage(ctx, recipient, message); err != nil {
		logger.Error("Failed to send order notification", err, map[string]interface{}{
			"order_id":    order.ID,
			"location_id": order.LocationID,
		})
		return err
	}

	logger.Info("Order notification sent", map[string]interface{}{
		"order_id":    order.ID,
		"location_id": order.LocationID,
	})
	return nil
}

// NotifyPendingOrders sends the daily reminder listing orders still in
// 受注 at a location. Nothing is sent when the list is empty.
func (s *notificationService) NotifyPendingOrders(ctx context.Context, locationID string, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	if !s.client.Enabled() {
		return ErrNotifyNotConfigured
	}

	recipient, err := s.recipientFor(locationID)
	if err != nil {
		return err
	}

	locationName := locationID
	if location, err := s.locationRepo.FindByID(locationID); err == nil {
		locationName = location.Name
	}

	lines := make([]string, 0, len(orders))
	for _, order := range orders {
		customerName := "不明"
		if order.Customer != nil && order.Customer.DisplayName != "" {
			customerName = order.Customer.DisplayName
		}
		lines = append(lines, fmt.Sprintf("• %s（%s / %s）", order.OrderNumber, customerName, order.OrderDate))
	}

	message := fmt.Sprintf(
		"⏰ 未確定注文のお知らせ\n\n🏢 拠点: %s\n📦 受注状態の注文が%d件あります\n\n%s",
		locationName, len(orders), strings.Join(lines, "\n"),
	)
	return s.client.SendTextMessage(ctx, recipient, message)
}

func (s *notificationService) SendTest(ctx context.Context, locationID string) error {
	if !s.client.Enabled() {
		return ErrNotifyNotConfigured
	}

	recipient, err := s.recipientFor(locationID)
	if err != nil {
		return err
	}

	locationName := locationID
	if location, err := s.locationRepo.FindByID(locationID); err == nil {
		locationName = location.Name
	}

	message := fmt.Sprintf(
		"🧪 通知テスト\n\n🏢 拠点: %s\n📅 送信日時: %s\n\nこのメッセージは通知機能のテストです。",
		locationName,
		time.Now().Format("2006/01/02 15:04:05"),
	)
	return s.client.SendTextMessage(ctx, recipient, message)
}

// BuildOrderMessage renders the order notification text. The order is
// expected to carry its preloaded Customer, Vehicle and Location rows.
func BuildOrderMessage(order *model.Order) string {
	customerName := "不明"
	if order.Customer != nil && order.Customer.DisplayName != "" {
		customerName = order.Customer.DisplayName
	}

	// 車両欄は必ず車台番号を表示する
	vehicleInfo := "不明"
	if order.Vehicle != nil && order.Vehicle.FrameNumber != "" {
		vehicleInfo = order.Vehicle.FrameNumber
	}

	locationName := order.LocationID
	if order.Location != nil && order.Location.Name != "" {
		locationName = order.Location.Name
	}

	orderDate := order.OrderDate
	if parsed, err := time.Parse("2006-01-02", order.OrderDate); err == nil {
		orderDate = parsed.Format("2006/1/2")
	}

	items := make([]string, 0, 7)
	appendItem := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			items = append(items, fmt.Sprintf("• %s: %s", label, value))
		}
	}
	appendItem("ディスクパッド", order.DiskPad)
	appendItem("ブレーキシュー", order.BrakeShoe)
	appendItem("ワイパー", order.Wiper)
	appendItem("ベルト", order.Belt)
	appendItem("クリンフィルター", order.CleanFilter)
	appendItem("エアエレメント", order.AirElement)
	appendItem("オイルエレメント", order.OilElement)

	itemsText := ""
	if len(items) > 0 {
		itemsText = "\n📦 注文内容:\n" + strings.Join(items, "\n") + "\n"
	}

	remarks := "（なし）"
	if order.Remarks != "" {
		remarks = order.Remarks
	}

	return fmt.Sprintf(
		"📋 新規注文が登録されました\n\n🏢 拠点: %s\n👤 顧客: %s\n🚗 車両: %s\n📅 注文日: %s\n🆔 注文ID: %d%s\n📝 備考: %s",
		locationName, customerName, vehicleInfo, orderDate, order.ID, itemsText, remarks,
	)
}
