package models

import (
	"time"
)

// DocumentNumberSequence holds one counter per (kind, date_key). Allocation
// locks the row FOR UPDATE, so numbers issued within a committed transaction
// are gap-free and strictly increasing per day.
type DocumentNumberSequence struct {
	ID        int          `gorm:"primary_key" json:"id"`
	Kind      DocumentKind `gorm:"size:20;not null;uniqueIndex:uix_docseq_kind_date,priority:1" json:"kind"`
	DateKey   string       `gorm:"size:8;not null;uniqueIndex:uix_docseq_kind_date,priority:2" json:"date_key"`
	Prefix    string       `gorm:"size:10;not null" json:"prefix"`
	LastValue int          `gorm:"not null;default:0" json:"last_value"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}
