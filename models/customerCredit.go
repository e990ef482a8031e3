package models

import (
	"context"
	"time"

	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/config"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CustomerCredit is the per-customer credit account. The invariant
// balance = total_credit - total_paid holds after every posting, and every
// posting stamps last_transaction_at.
type CustomerCredit struct {
	ID                int             `gorm:"primary_key" json:"id"`
	CustomerID        int             `gorm:"uniqueIndex;not null" json:"customer_id"`
	Customer          *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	TotalCredit       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_credit"`
	TotalPaid         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_paid"`
	Balance           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"balance"`
	LastTransactionAt *time.Time      `json:"last_transaction_at"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type CreditTransaction struct {
	ID               int                   `gorm:"primary_key" json:"id"`
	CustomerCreditID int                   `gorm:"index;not null" json:"customer_credit_id"`
	InvoiceID        *int                  `gorm:"index" json:"invoice_id"`
	TransactionType  CreditTransactionType `gorm:"type:enum('credit','payment','adjustment');not null" json:"transaction_type"`
	Amount           decimal.Decimal       `gorm:"type:decimal(20,4);not null" json:"amount"`
	BalanceAfter     decimal.Decimal       `gorm:"type:decimal(20,4);not null" json:"balance_after"`
	PaymentMethod    PaymentMethod         `gorm:"type:enum('cash','card','upi','credit','mixed')" json:"payment_method"`
	Notes            string                `gorm:"size:255" json:"notes"`
	CreatedByID      *int                  `json:"created_by_id"`
	CreatedAt        time.Time             `gorm:"autoCreateTime" json:"created_at"`
}

// LockCustomerCredit fetches the account row under FOR UPDATE, creating it on
// first use. Every credit posting goes through this lock so concurrent
// postings against one customer serialize.
func LockCustomerCredit(tx *gorm.DB, customerID int) (*CustomerCredit, error) {
	var credit CustomerCredit
	err := tx.Clauses(forUpdateClause()).
		Where("customer_id = ?", customerID).First(&credit).Error
	if err == nil {
		return &credit, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	credit = CustomerCredit{CustomerID: customerID}
	if err := tx.Create(&credit).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			// Another transaction created the row between our read and
			// insert. Retake the lock on the winner's row.
			err = tx.Clauses(forUpdateClause()).
				Where("customer_id = ?", customerID).First(&credit).Error
			if err != nil {
				return nil, err
			}
			return &credit, nil
		}
		return nil, err
	}
	return &credit, nil
}

func GetCustomerCredit(ctx context.Context, customerID int) (*CustomerCredit, error) {
	db := config.GetDB()
	var credit CustomerCredit
	err := db.WithContext(ctx).Where("customer_id = ?", customerID).First(&credit).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewNotFoundError("customer credit account")
		}
		return nil, err
	}
	return &credit, nil
}

func GetCreditTransactions(ctx context.Context, customerID int) ([]*CreditTransaction, error) {
	credit, err := GetCustomerCredit(ctx, customerID)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	var txns []*CreditTransaction
	err = db.WithContext(ctx).
		Where("customer_credit_id = ?", credit.ID).
		Order("id DESC").Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}
