package models

import (
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/config"
)

func AutoMigrate() error {
	db := config.GetDB()
	return db.AutoMigrate(
		&User{},
		&Customer{},
		&Product{},
		&Warehouse{},
		&Invoice{},
		&InvoiceItem{},
		&DayBookEntry{},
		&CustomerCredit{},
		&CreditTransaction{},
		&Stock{},
		&InventoryTransaction{},
		&DocumentNumberSequence{},
		&Return{},
		&ReturnItem{},
	)
}
