package service

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// toggleMembership deletes the join row if it exists and inserts it
// otherwise. row must have its whole composite primary key set. It reports
// whether the row exists afterwards.
func toggleMembership(db *gorm.DB, row interface{}) (bool, error) {
	var present bool
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where(row).Delete(row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			present = false
			return nil
		}
		present = true
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error
	})
	return present, err
}
