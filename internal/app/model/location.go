package model

import (
	"time"
)

type Location struct {
	ID           string    `gorm:"primarykey;type:varchar(50)" json:"id"` // 拠点ID（呼び出し側が指定する文字列キー）
	Name         string    `gorm:"not null" json:"name"`                  // 拠点名
	Address      string    `json:"address"`                               // 住所
	Phone        string    `json:"phone"`                                 // 電話番号
	Email        string    `json:"email"`                                 // メールアドレス
	NotifyUserID string    `json:"notify_user_id"`                        // LINE WORKS通知先ユーザーID
	IsActive     bool      `gorm:"default:true" json:"is_active"`         // 有効フラグ
	CreatedAt    time.Time `json:"created_at"`                            // 作成日時
	UpdatedAt    time.Time `json:"updated_at"`                            // 更新日時

	Users []User `gorm:"foreignKey:LocationID" json:"users,omitempty"` // 所属ユーザー
}

func (Location) TableName() string {
	return "locations"
}
