package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// softDelete records who deleted the row and then soft deletes it.
func softDelete(db *gorm.DB, value interface{}, id uuid.UUID, deletedBy string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(value).Where("id = ?", id).Update("deleted_by", deletedBy)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Delete(value, "id = ?", id).Error
	})
}

func exists(query *gorm.DB) (bool, error) {
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
