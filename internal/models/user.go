package models

import "time"

// AdminRoleID is the sentinel role that implicitly holds every permission.
const AdminRoleID = 1

// AdminRoleName is the role name granted the same implicit bypass.
const AdminRoleName = "Administrator"

// RoleModel is a lookup table; IDs are small integers so that the
// Administrator sentinel (id 1) stays stable across deployments.
type RoleModel struct {
	ID        uint      `json:"id"   gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"modified"`
}

func (RoleModel) TableName() string { return "roles" }

// UserModel represents a staff account.
type UserModel struct {
	Base
	Username      string     `json:"username"  gorm:"uniqueIndex;not null"`
	Name          string     `json:"name"`
	Email         string     `json:"email"     gorm:"index"`
	Password      string     `json:"-"         gorm:"not null"`
	RoleID        uint       `json:"role_id"   gorm:"index;not null"`
	Role          RoleModel  `json:"role,omitempty" gorm:"foreignKey:RoleID"`
	IsActive      bool       `json:"is_active" gorm:"default:true"`
	LastLoginTime *time.Time `json:"last_login_time"`
	LastLoginIP   string     `json:"last_login_ip"`
}

func (UserModel) TableName() string { return "users" }

func (u *UserModel) IsAdmin() bool {
	return u.RoleID == AdminRoleID || u.Role.Name == AdminRoleName
}
