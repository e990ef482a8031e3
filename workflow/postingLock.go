package workflow

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const dayBookLockName = "daybook:posting"

// AcquireDayBookLock serializes daybook appends across instances using a MySQL
// advisory lock. The FOR UPDATE read on the book's tail row already serializes
// appenders, but it cannot cover the empty-book case where there is no row to
// lock. GET_LOCK is connection-scoped, so this must run on the same *gorm.DB
// that performs the append.
func AcquireDayBookLock(tx *gorm.DB) error {
	var ok int
	if err := tx.Raw("SELECT GET_LOCK(?, 30)", dayBookLockName).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return fmt.Errorf("could not acquire daybook posting lock")
	}
	return nil
}

func ReleaseDayBookLock(tx *gorm.DB) {
	var ok int
	_ = tx.Raw("SELECT RELEASE_LOCK(?)", dayBookLockName).Scan(&ok).Error
}

func clauseForUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}
