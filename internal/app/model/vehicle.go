package model

import (
	"time"
)

// Vehicle holds the 25 raw fields read from a vehicle inspection
// certificate QR code (Parts0..Parts24) plus named columns for the
// handful of fields the application searches and displays directly.
type Vehicle struct {
	ID                    uint           `gorm:"primarykey" json:"id"`          // 車両ID
	TypeNumber            string         `json:"type_number"`                   // 型式
	CategoryNumber        string         `json:"category_number"`               // 類別区分番号
	FirstRegistrationDate string         `json:"first_registration_date"`       // 初年度登録年月
	FrameNumber           string         `gorm:"index" json:"frame_number"`     // 車台番号
	LicensePlate          string         `gorm:"index" json:"license_plate"`    // 自動車登録番号
	VehicleType           string         `json:"vehicle_type"`                  // 車種
	EngineType            string         `json:"engine_type"`                   // 原動機型式
	CustomerID            *uint          `gorm:"index" json:"customer_id"`      // 顧客ID
	LocationID            string         `gorm:"index" json:"location_id"`      // 拠点ID
	CreatedAt             time.Time      `json:"created_at"`                    // 作成日時
	UpdatedAt             time.Time      `json:"updated_at"`                    // 更新日時

	// 車検証QRコードの生データ（25項目）
	Parts0  string `json:"parts0"`
	Parts1  string `json:"parts1"`
	Parts2  string `json:"parts2"`
	Parts3  string `json:"parts3"`
	Parts4  string `json:"parts4"`
	Parts5  string `json:"parts5"`
	Parts6  string `json:"parts6"`
	Parts7  string `json:"parts7"`
	Parts8  string `json:"parts8"`
	Parts9  string `json:"parts9"`
	Parts10 string `json:"parts10"`
	Parts11 string `json:"parts11"`
	Parts12 string `json:"parts12"`
	Parts13 string `json:"parts13"`
	Parts14 string `json:"parts14"`
	Parts15 string `json:"parts15"`
	Parts16 string `json:"parts16"`
	Parts17 string `json:"parts17"`
	Parts18 string `json:"parts18"`
	Parts19 string `json:"parts19"`
	Parts20 string `json:"parts20"`
	Parts21 string `json:"parts21"`
	Parts22 string `json:"parts22"`
	Parts23 string `json:"parts23"`
	Parts24 string `json:"parts24"`

	Customer *User   `gorm:"foreignKey:CustomerID" json:"customer,omitempty"` // 顧客
	Orders   []Order `gorm:"foreignKey:VehicleID" json:"orders,omitempty"`    // 注文履歴
}

func (Vehicle) TableName() string {
	return "vehicles"
}
