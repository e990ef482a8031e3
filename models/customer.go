package models

import (
	"context"
	"time"

	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/config"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Customer struct {
	ID             int             `gorm:"primary_key" json:"id"`
	Name           string          `gorm:"size:200;not null" json:"name" binding:"required"`
	Email          string          `gorm:"size:255" json:"email"`
	Phone          *string         `gorm:"size:15;uniqueIndex" json:"phone"`
	AlternatePhone string          `gorm:"size:15" json:"alternate_phone"`
	Address        string          `gorm:"type:text" json:"address"`
	City           string          `gorm:"size:100" json:"city"`
	State          string          `gorm:"size:100" json:"state"`
	Pincode        string          `gorm:"size:10" json:"pincode"`
	Gstin          string          `gorm:"size:15" json:"gstin"`
	Pan            string          `gorm:"size:10" json:"pan"`
	CustomerType   CustomerType    `gorm:"type:enum('regular','vip','wholesale','retail');default:regular;index" json:"customer_type"`
	CreditLimit    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"credit_limit"`
	LoyaltyPoints  int             `gorm:"default:0" json:"loyalty_points"`
	TotalPurchases decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_purchases"`
	TotalOrders    int             `gorm:"default:0" json:"total_orders"`
	LastPurchaseAt *time.Time      `json:"last_purchase_at"`
	Notes          string          `gorm:"type:text" json:"notes"`
	IsActive       *bool           `gorm:"not null;default:true;index" json:"is_active"`
	IsBlacklisted  *bool           `gorm:"not null;default:false" json:"is_blacklisted"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name           string          `json:"name" binding:"required"`
	Email          string          `json:"email"`
	Phone          *string         `json:"phone"`
	AlternatePhone string          `json:"alternate_phone"`
	Address        string          `json:"address"`
	City           string          `json:"city"`
	State          string          `json:"state"`
	Pincode        string          `json:"pincode"`
	Gstin          string          `json:"gstin"`
	Pan            string          `json:"pan"`
	CustomerType   CustomerType    `json:"customer_type"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
	Notes          string          `json:"notes"`
}

func (input *NewCustomer) validate() error {
	if input.Phone != nil && *input.Phone != "" {
		if err := utils.ValidatePhoneNumber(*input.Phone, utils.CountryCode); err != nil {
			return utils.NewValidationError("phone: %s", err.Error())
		}
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return utils.NewValidationError("email is not valid")
	}
	return nil
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	customerType := input.CustomerType
	if customerType == "" {
		customerType = CustomerTypeRegular
	}

	customer := Customer{
		Name:           input.Name,
		Email:          input.Email,
		Phone:          input.Phone,
		AlternatePhone: input.AlternatePhone,
		Address:        input.Address,
		City:           input.City,
		State:          input.State,
		Pincode:        input.Pincode,
		Gstin:          input.Gstin,
		Pan:            input.Pan,
		CustomerType:   customerType,
		CreditLimit:    input.CreditLimit,
		Notes:          input.Notes,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	db := config.GetDB()
	var customer Customer
	if err := db.WithContext(ctx).First(&customer, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewNotFoundError("customer")
		}
		return nil, err
	}
	return &customer, nil
}

func GetCustomers(ctx context.Context, search string) ([]*Customer, error) {
	db := config.GetDB()
	var customers []*Customer
	dbCtx := db.WithContext(ctx)
	if search != "" {
		dbCtx = dbCtx.Where("(name LIKE ? OR phone LIKE ? OR email LIKE ?)",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}
	if err := dbCtx.Order("created_at DESC").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// RecordPurchase rolls the lifetime counters forward inside the settlement
// transaction.
func (c *Customer) RecordPurchase(tx *gorm.DB, amount decimal.Decimal, at time.Time) error {
	return tx.Model(c).Updates(map[string]interface{}{
		"total_purchases":  c.TotalPurchases.Add(amount),
		"total_orders":     c.TotalOrders + 1,
		"last_purchase_at": at,
	}).Error
}
