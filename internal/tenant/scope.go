package tenant

import "gorm.io/gorm"

// ForTenant returns a GORM scope that filters by forum_id.
func ForTenant(forumID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("forum_id = ?", forumID)
	}
}
