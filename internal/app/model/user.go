package model

import (
	"time"

	"gorm.io/gorm"

	"github.com/stmiyata/seibi-backend/pkg/util"
)

type UserRole string // ユーザー権限タイプ

const (
	RoleAdmin    UserRole = "admin"    // 本部管理者
	RolePA       UserRole = "PA"       // パーツアドバイザー
	RoleFrontPA  UserRole = "店頭PA"   // 店頭パーツアドバイザー
	RoleManager  UserRole = "店長"     // 店長
	RoleCustomer UserRole = "customer" // 顧客
)

// StaffRoles are the roles tied to a location
var StaffRoles = []UserRole{RolePA, RoleFrontPA, RoleManager}

// IsStaff reports whether the role is location staff (not admin, not customer)
func (r UserRole) IsStaff() bool {
	return r == RolePA || r == RoleFrontPA || r == RoleManager
}

// IsValid reports whether the role is one of the known roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RolePA, RoleFrontPA, RoleManager, RoleCustomer:
		return true
	}
	return false
}

type User struct {
	ID          uint           `gorm:"primarykey" json:"id"`                            // ユーザーID
	Username    string         `gorm:"uniqueIndex;not null" json:"username"`            // ログインID
	Password    string         `gorm:"not null" json:"-"`                               // パスワードハッシュ
	Role        UserRole       `gorm:"type:varchar(20);default:'customer'" json:"role"` // 権限
	DisplayName string         `gorm:"not null" json:"display_name"`                    // 表示名
	LocationID  *string        `gorm:"index" json:"location_id"`                        // 所属拠点ID（adminはnull可）
	CreatedAt   time.Time      `json:"created_at"`                                      // 作成日時
	UpdatedAt   time.Time      `json:"updated_at"`                                      // 更新日時

	Location *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"` // 所属拠点
	Vehicles []Vehicle `gorm:"foreignKey:CustomerID" json:"vehicles,omitempty"` // 保有車両
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate hashes the password before the row is written
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Password != "" && !util.IsHashed(u.Password) {
		hashed, err := util.HashPassword(u.Password)
		if err != nil {
			return err
		}
		u.Password = hashed
	}
	return nil
}

// BeforeUpdate re-hashes the password only when a new plaintext value was set
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	if u.Password != "" && !util.IsHashed(u.Password) {
		hashed, err := util.HashPassword(u.Password)
		if err != nil {
			return err
		}
		u.Password = hashed
	}
	return nil
}
