package models

import "time"

// PermissionModel names an action a role may be granted, e.g. "employee.edit".
type PermissionModel struct {
	ID          uint      `json:"id"          gorm:"primaryKey"`
	Action      string    `json:"action"      gorm:"uniqueIndex;not null"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created"`
	UpdatedAt   time.Time `json:"modified"`
}

func (PermissionModel) TableName() string { return "permissions" }

// RolePermission is the grant table joining roles to permissions.
type RolePermission struct {
	RoleID       uint `json:"role_id"       gorm:"primaryKey;autoIncrement:false"`
	PermissionID uint `json:"permission_id" gorm:"primaryKey;autoIncrement:false"`
}

func (RolePermission) TableName() string { return "role_permissions" }
