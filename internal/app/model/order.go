package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
)

type OrderStatus string // 注文状態コード

const (
	OrderStatusReceived  OrderStatus = "受注"       // 受注（初期状態）
	OrderStatusConfirmed OrderStatus = "注文済み"   // 発注確定
	OrderStatusCancelled OrderStatus = "キャンセル" // キャンセル
)

// IsValid reports whether the status is one of the known states
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusReceived, OrderStatusConfirmed, OrderStatusCancelled:
		return true
	}
	return false
}

// StringArray stores a JSON array in a single column so the same value
// round-trips through both postgres and the sqlite test database
type StringArray []string

// Value implements database/sql/driver.Valuer
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements database/sql.Scanner
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan StringArray")
	}

	return json.Unmarshal(bytes, s)
}

type Order struct {
	ID          uint           `gorm:"primarykey" json:"id"`                         // 注文ID
	OrderNumber string         `gorm:"uniqueIndex;not null" json:"order_number"`     // 注文番号（ORD-YYYYMMDD-0001形式、自動採番）
	OrderDate   string         `gorm:"type:varchar(10);not null;index" json:"order_date"` // 注文日（YYYY-MM-DD）
	VehicleID   uint           `gorm:"not null;index" json:"vehicle_id"`             // 車両ID
	CustomerID  uint           `gorm:"not null;index" json:"customer_id"`            // 顧客ID
	LocationID  string         `gorm:"not null;index" json:"location_id"`            // 拠点ID
	Status      OrderStatus    `gorm:"type:varchar(20);default:'受注'" json:"status"` // 注文状態

	DiskPad     string `json:"disk_pad"`     // ディスクパッド
	BrakeShoe   string `json:"brake_shoe"`   // ブレーキシュー
	Wiper       string `json:"wiper"`        // ワイパー
	Belt        string `json:"belt"`         // ベルト
	CleanFilter string `json:"clean_filter"` // クリーンフィルター
	AirElement  string `json:"air_element"`  // エアエレメント
	OilElement  string `json:"oil_element"`  // オイルエレメント

	Remarks        string      `gorm:"type:text" json:"remarks"`                  // 備考
	AttachedPhotos StringArray `gorm:"type:text" json:"attached_photos"`          // 添付写真ファイル名の配列
	CreatedBy      uint        `gorm:"not null" json:"created_by"`                // 作成者ID
	UpdatedBy      uint        `gorm:"not null" json:"updated_by"`                // 更新者ID
	CreatedAt      time.Time   `json:"created_at"`                                // 作成日時
	UpdatedAt      time.Time   `json:"updated_at"`                                // 更新日時

	Vehicle       *Vehicle  `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`               // 車両
	Customer      *User     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`             // 顧客
	CreatedByUser *User     `gorm:"foreignKey:CreatedBy" json:"created_by_user,omitempty"`       // 作成者
	UpdatedByUser *User     `gorm:"foreignKey:UpdatedBy" json:"updated_by_user,omitempty"`       // 更新者
	Location      *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`             // 拠点
}

func (Order) TableName() string {
	return "orders"
}

// BeforeCreate assigns the order number when one was not supplied.
// The sequence restarts at 0001 for each order date and continues from
// the highest number present that day, so removing an order never
// reissues a number that is still taken.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.OrderNumber != "" {
		return nil
	}

	date, err := time.Parse("2006-01-02", o.OrderDate)
	if err != nil {
		return fmt.Errorf("invalid order date %q: %w", o.OrderDate, err)
	}

	var lastNumbers []string
	err = tx.Model(&Order{}).
		Where("order_date = ?", o.OrderDate).
		Order("order_number DESC").
		Limit(1).
		Pluck("order_number", &lastNumbers).Error
	if err != nil {
		return err
	}

	seq := 0
	if len(lastNumbers) > 0 {
		last := lastNumbers[0]
		if len(last) >= 4 {
			if n, err := strconv.Atoi(last[len(last)-4:]); err == nil {
				seq = n
			}
		}
	}

	o.OrderNumber = fmt.Sprintf("ORD-%s-%04d", date.Format("20060102"), seq+1)
	return nil
}
