package model

import "time"

// Usuarios
type ApplicationUser struct {
	ID string `gorm:"type:varchar(450);primaryKey"`

	UserName           string  `gorm:"type:varchar(256)"`
	NormalizedUserName *string `gorm:"type:varchar(256);uniqueIndex:UserNameIndex"`
	Email              string  `gorm:"type:varchar(256)"`
	NormalizedEmail    string  `gorm:"type:varchar(256);index:EmailIndex"`
	EmailConfirmed     bool    `gorm:"not null;default:false"`

	PasswordHash     string `gorm:"type:text"`
	SecurityStamp    string `gorm:"type:text"`
	ConcurrencyStamp string `gorm:"type:text"`

	PhoneNumber          string `gorm:"type:text"`
	PhoneNumberConfirmed bool   `gorm:"not null;default:false"`
	TwoFactorEnabled     bool   `gorm:"not null;default:false"`

	LockoutEnd        *time.Time
	LockoutEnabled    bool `gorm:"not null;default:false"`
	AccessFailedCount int  `gorm:"not null;default:0"`

	// Rut — national id, unique across users.
	Rut      string `gorm:"type:varchar(450);not null;uniqueIndex"`
	Nombre   string `gorm:"type:text;not null"`
	Apellido string `gorm:"type:text;not null"`
}

func (ApplicationUser) TableName() string { return "Usuarios" }

// IsLockedOut reports whether the user is locked at instant now.
func (u *ApplicationUser) IsLockedOut(now time.Time) bool {
	return u.LockoutEnabled && u.LockoutEnd != nil && u.LockoutEnd.After(now)
}

// UserClaims
type UserClaim struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	UserID     string `gorm:"type:varchar(450);not null;index"`
	ClaimType  string `gorm:"type:text"`
	ClaimValue string `gorm:"type:text"`

	User *ApplicationUser `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (UserClaim) TableName() string { return "UserClaims" }

// UserLogins — external login providers linked to a user.
type UserLogin struct {
	LoginProvider       string `gorm:"type:varchar(128);primaryKey"`
	ProviderKey         string `gorm:"type:varchar(128);primaryKey"`
	ProviderDisplayName string `gorm:"type:text"`
	UserID              string `gorm:"type:varchar(450);not null;index"`

	User *ApplicationUser `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (UserLogin) TableName() string { return "UserLogins" }

// UserTokens
type UserToken struct {
	UserID        string `gorm:"type:varchar(450);primaryKey"`
	LoginProvider string `gorm:"type:varchar(128);primaryKey"`
	Name          string `gorm:"type:varchar(128);primaryKey"`
	Value         string `gorm:"type:text"`

	User *ApplicationUser `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (UserToken) TableName() string { return "UserTokens" }
