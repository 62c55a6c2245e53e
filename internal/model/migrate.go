package model

import "gorm.io/gorm"

// AutoMigrate migrates the business schema and the identity tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Client{},
		&Contact{},
		&Product{},
		&Staff{},
		&Quotation{},
		&ProductQuotation{},
		&StaffQuotation{},

		&ApplicationUser{},
		&Role{},
		&UserRole{},
		&UserClaim{},
		&UserLogin{},
		&RoleClaim{},
		&UserToken{},
	)
}
