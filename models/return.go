package models

import (
	"context"
	"time"

	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/config"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Return struct {
	ID           int             `gorm:"primary_key" json:"id"`
	ReturnNumber string          `gorm:"size:50;uniqueIndex;not null" json:"return_number"`
	InvoiceID    int             `gorm:"index;not null" json:"invoice_id"`
	Invoice      *Invoice        `gorm:"foreignKey:InvoiceID" json:"invoice,omitempty"`
	UserID       int             `gorm:"not null" json:"user_id"`
	Status       ReturnStatus    `gorm:"type:enum('pending','approved','rejected','completed');default:pending;index" json:"status"`
	Reason       ReturnReason    `gorm:"type:enum('defective','wrong_item','damaged','not_satisfied','other');not null" json:"reason"`
	RefundMethod RefundMethod    `gorm:"type:enum('cash','card','credit');not null" json:"refund_method"`
	RefundAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"refund_amount"`
	Notes        string          `gorm:"type:text" json:"notes"`
	Items        []ReturnItem    `gorm:"foreignKey:ReturnID" json:"items"`
	CompletedAt  *time.Time      `json:"completed_at"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type ReturnItem struct {
	ID            int             `gorm:"primary_key" json:"id"`
	ReturnID      int             `gorm:"index;not null" json:"return_id"`
	InvoiceItemID int             `gorm:"not null" json:"invoice_item_id"`
	ProductID     int             `gorm:"not null" json:"product_id"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	RefundAmount  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"refund_amount"`
	Restock       *bool           `gorm:"not null;default:true" json:"restock"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewReturnItem struct {
	InvoiceItemID int   `json:"invoice_item_id" binding:"required"`
	Quantity      int   `json:"quantity" binding:"required,gt=0"`
	Restock       *bool `json:"restock"`
}

type NewReturn struct {
	InvoiceID    int             `json:"invoice_id" binding:"required"`
	Reason       ReturnReason    `json:"reason" binding:"required"`
	RefundMethod RefundMethod    `json:"refund_method" binding:"required"`
	Notes        string          `json:"notes"`
	Items        []NewReturnItem `json:"items" binding:"required,min=1,dive"`
}

func (input *NewReturn) Validate() error {
	switch input.Reason {
	case ReturnReasonDefective, ReturnReasonWrongItem, ReturnReasonDamaged,
		ReturnReasonNotSatisfied, ReturnReasonOther:
	default:
		return utils.NewValidationError("reason %q is not recognized", input.Reason)
	}
	switch input.RefundMethod {
	case RefundMethodCash, RefundMethodCard, RefundMethodCredit:
	default:
		return utils.NewValidationError("refund_method %q is not recognized", input.RefundMethod)
	}
	for i, item := range input.Items {
		if item.Quantity <= 0 {
			return utils.NewValidationError("items[%d].quantity must be positive", i)
		}
	}
	return nil
}

func GetReturn(ctx context.Context, id int) (*Return, error) {
	db := config.GetDB()
	var ret Return
	err := db.WithContext(ctx).Preload("Items").First(&ret, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewNotFoundError("return")
		}
		return nil, err
	}
	return &ret, nil
}

func GetReturns(ctx context.Context, invoiceID *int) ([]*Return, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Items")
	if invoiceID != nil {
		dbCtx = dbCtx.Where("invoice_id = ?", *invoiceID)
	}
	var returns []*Return
	if err := dbCtx.Order("id DESC").Find(&returns).Error; err != nil {
		return nil, err
	}
	return returns, nil
}

// LockReturn reloads the row under FOR UPDATE for status transitions.
func LockReturn(tx *gorm.DB, id int) (*Return, error) {
	var ret Return
	err := tx.Clauses(forUpdateClause()).Preload("Items").First(&ret, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewNotFoundError("return")
		}
		return nil, err
	}
	return &ret, nil
}
