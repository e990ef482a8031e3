package models

import (
	"context"
	"time"

	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/config"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Invoice struct {
	ID             int             `gorm:"primary_key" json:"id"`
	InvoiceNumber  string          `gorm:"size:50;uniqueIndex;not null" json:"invoice_number"`
	CustomerID     *int            `gorm:"index" json:"customer_id"`
	Customer       *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	CustomerName   string          `gorm:"size:200" json:"customer_name"`
	CustomerPhone  string          `gorm:"size:20" json:"customer_phone"`
	CustomerEmail  string          `gorm:"size:100" json:"customer_email"`
	UserID         int             `gorm:"index;not null" json:"user_id"`
	Status         InvoiceStatus   `gorm:"type:enum('draft','pending','paid','partial','cancelled');default:pending;index" json:"status"`
	PaymentMethod  PaymentMethod   `gorm:"type:enum('cash','card','upi','credit','mixed');default:cash" json:"payment_method"`
	SubTotal       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sub_total"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"paid_amount"`
	BalanceAmount  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"balance_amount"`
	Notes          string          `gorm:"type:text" json:"notes"`
	InvoiceDate    time.Time       `gorm:"index;not null" json:"invoice_date"`
	Items          []InvoiceItem   `gorm:"foreignKey:InvoiceID" json:"items"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type InvoiceItem struct {
	ID             int             `gorm:"primary_key" json:"id"`
	InvoiceID      int             `gorm:"index;not null" json:"invoice_id"`
	ProductID      int             `gorm:"index;not null" json:"product_id"`
	Product        *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	ProductName    string          `gorm:"size:200;not null" json:"product_name"`
	Quantity       int             `gorm:"not null" json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	TaxRate        decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"tax_rate"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewInvoiceItem struct {
	ProductID      int              `json:"product_id" binding:"required"`
	Quantity       int              `json:"quantity" binding:"required,gt=0"`
	UnitPrice      *decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal  `json:"discount_amount"`
}

type NewInvoice struct {
	CustomerID    *int             `json:"customer_id"`
	CustomerName  string           `json:"customer_name"`
	CustomerPhone string           `json:"customer_phone"`
	CustomerEmail string           `json:"customer_email"`
	PaymentMethod PaymentMethod    `json:"payment_method" binding:"required"`
	PaidAmount    decimal.Decimal  `json:"paid_amount"`
	Discount      decimal.Decimal  `json:"discount"`
	DiscountType  string           `json:"discount_type"`
	Notes         string           `json:"notes"`
	Items         []NewInvoiceItem `json:"items" binding:"required,min=1,dive"`
}

func (input *NewInvoice) Validate() error {
	if !input.PaymentMethod.Valid() {
		return utils.NewValidationError("payment_method %q is not recognized", input.PaymentMethod)
	}
	if input.PaidAmount.IsNegative() {
		return utils.NewValidationError("paid_amount cannot be negative")
	}
	if input.Discount.IsNegative() {
		return utils.NewValidationError("discount cannot be negative")
	}
	if input.DiscountType != "" && input.DiscountType != "P" && input.DiscountType != "A" {
		return utils.NewValidationError("discount_type must be P or A")
	}
	if input.PaymentMethod == PaymentMethodCredit && input.CustomerID == nil {
		return utils.NewValidationError("credit sales require a customer")
	}
	if input.CustomerEmail != "" && !utils.IsValidEmail(input.CustomerEmail) {
		return utils.NewValidationError("customer_email is not valid")
	}
	if input.CustomerPhone != "" {
		if err := utils.ValidatePhoneNumber(input.CustomerPhone, utils.CountryCode); err != nil {
			return err
		}
	}
	for i, item := range input.Items {
		if item.Quantity <= 0 {
			return utils.NewValidationError("items[%d].quantity must be positive", i)
		}
		if item.DiscountAmount.IsNegative() {
			return utils.NewValidationError("items[%d].discount_amount cannot be negative", i)
		}
		if item.UnitPrice != nil && item.UnitPrice.IsNegative() {
			return utils.NewValidationError("items[%d].unit_price cannot be negative", i)
		}
	}
	return nil
}

// DeriveStatus maps the paid and total amounts to the invoice status.
// Cancelled is terminal and never derived here.
func DeriveStatus(totalAmount, paidAmount decimal.Decimal) InvoiceStatus {
	if paidAmount.GreaterThanOrEqual(totalAmount) {
		return InvoiceStatusPaid
	}
	if paidAmount.IsPositive() {
		return InvoiceStatusPartial
	}
	return InvoiceStatusPending
}

func GetInvoice(ctx context.Context, id int) (*Invoice, error) {
	db := config.GetDB()
	var invoice Invoice
	err := db.WithContext(ctx).Preload("Items").Preload("Customer").First(&invoice, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewNotFoundError("invoice")
		}
		return nil, err
	}
	return &invoice, nil
}

func GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error) {
	db := config.GetDB()
	var invoice Invoice
	err := db.WithContext(ctx).Preload("Items").Preload("Customer").
		Where("invoice_number = ?", number).First(&invoice).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewNotFoundError("invoice")
		}
		return nil, err
	}
	return &invoice, nil
}

type InvoiceFilter struct {
	CustomerID *int
	Status     InvoiceStatus
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}

func GetInvoices(ctx context.Context, filter *InvoiceFilter) ([]*Invoice, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Items")
	if filter != nil {
		if filter.CustomerID != nil {
			dbCtx = dbCtx.Where("customer_id = ?", *filter.CustomerID)
		}
		if filter.Status != "" {
			dbCtx = dbCtx.Where("status = ?", filter.Status)
		}
		if filter.FromDate != nil {
			dbCtx = dbCtx.Where("invoice_date >= ?", *filter.FromDate)
		}
		if filter.ToDate != nil {
			dbCtx = dbCtx.Where("invoice_date < ?", *filter.ToDate)
		}
		if filter.Limit > 0 {
			dbCtx = dbCtx.Limit(filter.Limit).Offset(filter.Offset)
		}
	}
	var invoices []*Invoice
	if err := dbCtx.Order("id DESC").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// LockInvoice reloads the row under FOR UPDATE so a concurrent payment or
// cancellation cannot interleave with this transaction.
func LockInvoice(tx *gorm.DB, id int) (*Invoice, error) {
	var invoice Invoice
	err := tx.Clauses(forUpdateClause()).First(&invoice, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewNotFoundError("invoice")
		}
		return nil, err
	}
	return &invoice, nil
}
