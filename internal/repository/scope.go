package repository

import "gorm.io/gorm"

// CompanyScope is the explicit tenancy predicate. Every consumer-facing query
// must apply it at the call site; there is no implicit ORM hook. Super-admin
// callers see every row.
func CompanyScope(companyID uint, superAdmin bool) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if superAdmin {
			return db
		}
		return db.Where("company_id = ?", companyID)
	}
}
