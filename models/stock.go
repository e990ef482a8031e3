package models

import (
	"context"
	"time"

	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/config"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Stock is the on-hand quantity of a product in one warehouse. Quantity never
// goes below zero; oversell deducts down to zero and the shortfall is visible
// in the inventory transaction trail.
type Stock struct {
	ID          int        `gorm:"primary_key" json:"id"`
	ProductID   int        `gorm:"not null;uniqueIndex:uix_stock_product_warehouse,priority:1" json:"product_id"`
	Product     *Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	WarehouseID int        `gorm:"not null;uniqueIndex:uix_stock_product_warehouse,priority:2" json:"warehouse_id"`
	Warehouse   *Warehouse `gorm:"foreignKey:WarehouseID" json:"warehouse,omitempty"`
	Quantity    int        `gorm:"not null;default:0" json:"quantity"`

	// ReservedQuantity is held for open orders and never deducted by sales.
	ReservedQuantity int `gorm:"not null;default:0" json:"reserved_quantity"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// InventoryTransaction records every stock movement. QuantityChange is signed:
// negative for outbound, positive for inbound.
type InventoryTransaction struct {
	ID              int                      `gorm:"primary_key" json:"id"`
	ProductID       int                      `gorm:"index;not null" json:"product_id"`
	WarehouseID     int                      `gorm:"index;not null" json:"warehouse_id"`
	TransactionType InventoryTransactionType `gorm:"type:enum('purchase','sale','return','adjustment','transfer','damage','expired');not null" json:"transaction_type"`
	QuantityChange  int                      `gorm:"not null" json:"quantity_change"`
	QuantityAfter   int                      `gorm:"not null" json:"quantity_after"`
	UnitCost        decimal.Decimal          `gorm:"type:decimal(20,4);default:0" json:"unit_cost"`
	ReferenceType   string                   `gorm:"size:50" json:"reference_type"`
	ReferenceID     *int                     `gorm:"index" json:"reference_id"`
	Notes           string                   `gorm:"size:255" json:"notes"`
	CreatedByID     *int                     `json:"created_by_id"`
	CreatedAt       time.Time                `gorm:"autoCreateTime" json:"created_at"`
}

// LockStock fetches the stock row under FOR UPDATE, creating a zero-quantity
// row on first movement of a product in a warehouse.
func LockStock(tx *gorm.DB, productID, warehouseID int) (*Stock, error) {
	var stock Stock
	err := tx.Clauses(forUpdateClause()).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&stock).Error
	if err == nil {
		return &stock, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	stock = Stock{ProductID: productID, WarehouseID: warehouseID}
	if err := tx.Create(&stock).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			err = tx.Clauses(forUpdateClause()).
				Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
				First(&stock).Error
			if err != nil {
				return nil, err
			}
			return &stock, nil
		}
		return nil, err
	}
	return &stock, nil
}

func GetStocks(ctx context.Context, warehouseID *int) ([]*Stock, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Product").Preload("Warehouse")
	if warehouseID != nil {
		dbCtx = dbCtx.Where("warehouse_id = ?", *warehouseID)
	}
	var stocks []*Stock
	if err := dbCtx.Order("product_id").Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

func GetInventoryTransactions(ctx context.Context, productID int, limit int) ([]*InventoryTransaction, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("product_id = ?", productID).Order("id DESC")
	if limit > 0 {
		dbCtx = dbCtx.Limit(limit)
	}
	var txns []*InventoryTransaction
	if err := dbCtx.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}
