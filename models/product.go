package models

import (
	"context"
	"time"

	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/config"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID            int             `gorm:"primary_key" json:"id"`
	Sku           string          `gorm:"size:100;uniqueIndex;not null" json:"sku" binding:"required"`
	Name          string          `gorm:"size:200;not null" json:"name" binding:"required"`
	Description   string          `gorm:"type:text" json:"description"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"selling_price"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"purchase_price"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"tax_rate"`
	// IsTrackable decides whether the stock ledger follows this product at all.
	IsTrackable   *bool     `gorm:"not null;default:true" json:"is_trackable"`
	CurrentStock  int       `gorm:"default:0" json:"current_stock"`
	MinStockLevel int       `gorm:"default:0" json:"min_stock_level"`
	MaxStockLevel int       `gorm:"default:0" json:"max_stock_level"`
	IsActive      *bool     `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Product) Trackable() bool {
	return p.IsTrackable == nil || *p.IsTrackable
}

type NewProduct struct {
	Sku           string          `json:"sku" binding:"required"`
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	IsTrackable   *bool           `json:"is_trackable"`
	CurrentStock  int             `json:"current_stock"`
	MinStockLevel int             `json:"min_stock_level"`
	MaxStockLevel int             `json:"max_stock_level"`
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	if input.SellingPrice.IsNegative() {
		return nil, utils.NewValidationError("selling_price cannot be negative")
	}
	if input.TaxRate.IsNegative() {
		return nil, utils.NewValidationError("tax_rate cannot be negative")
	}

	product := Product{
		Sku:           input.Sku,
		Name:          input.Name,
		Description:   input.Description,
		SellingPrice:  input.SellingPrice,
		PurchasePrice: input.PurchasePrice,
		TaxRate:       input.TaxRate,
		IsTrackable:   input.IsTrackable,
		CurrentStock:  input.CurrentStock,
		MinStockLevel: input.MinStockLevel,
		MaxStockLevel: input.MaxStockLevel,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	db := config.GetDB()
	var product Product
	if err := db.WithContext(ctx).First(&product, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewNotFoundError("product")
		}
		return nil, err
	}
	return &product, nil
}

func GetProducts(ctx context.Context, search string, activeOnly bool) ([]*Product, error) {
	db := config.GetDB()
	var products []*Product
	dbCtx := db.WithContext(ctx)
	if search != "" {
		dbCtx = dbCtx.Where("(name LIKE ? OR sku LIKE ?)", "%"+search+"%", "%"+search+"%")
	}
	if activeOnly {
		dbCtx = dbCtx.Where("is_active = ?", true)
	}
	if err := dbCtx.Order("name").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// DeactivateProduct soft-deactivates instead of deleting: historical invoices
// and returns keep a valid product reference.
func DeactivateProduct(ctx context.Context, id int) (*Product, error) {
	product, err := GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(product).Update("is_active", false).Error; err != nil {
		return nil, err
	}
	return product, nil
}
