package models

import (
	"time"

	"gorm.io/gorm"
)

type Warehouse struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name" binding:"required"`
	Address   string    `gorm:"type:text" json:"address"`
	Phone     string    `gorm:"size:15" json:"phone"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// GetOrCreateDefaultWarehouse returns the first warehouse, creating "Main
// Warehouse" on a fresh install. Runs on the caller's transaction.
func GetOrCreateDefaultWarehouse(tx *gorm.DB) (*Warehouse, error) {
	var warehouse Warehouse
	err := tx.Order("id").First(&warehouse).Error
	if err == nil {
		return &warehouse, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	warehouse = Warehouse{
		Name:    "Main Warehouse",
		Address: "Default Location",
	}
	if err := tx.Create(&warehouse).Error; err != nil {
		return nil, err
	}
	return &warehouse, nil
}
