package model

import "time"

// DefaultRole is given to every newly registered user.
const DefaultRole = "UsuarioBasico"

// Roles
type Role struct {
	ID               string  `gorm:"type:varchar(450);primaryKey"`
	Name             string  `gorm:"type:varchar(256)"`
	NormalizedName   *string `gorm:"type:varchar(256);uniqueIndex:RoleNameIndex"`
	ConcurrencyStamp string  `gorm:"type:text"`
}

func (Role) TableName() string { return "Roles" }

// UserRoles — links users and roles (composite PK).
type UserRole struct {
	UserID string `gorm:"type:varchar(450);primaryKey"`
	RoleID string `gorm:"type:varchar(450);primaryKey;index"`

	// Assignment time; GetRoles returns roles in this order.
	CreatedAt time.Time

	User *ApplicationUser `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Role *Role            `gorm:"foreignKey:RoleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (UserRole) TableName() string { return "UserRoles" }

// RoleClaims
type RoleClaim struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	RoleID     string `gorm:"type:varchar(450);not null;index"`
	ClaimType  string `gorm:"type:text"`
	ClaimValue string `gorm:"type:text"`

	Role *Role `gorm:"foreignKey:RoleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (RoleClaim) TableName() string { return "RoleClaims" }
