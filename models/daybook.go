package models

import (
	"context"
	"time"

	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DayBookEntry is one row of the daily cash book. The running balance chain
// must satisfy balance = previous balance + debit - credit for every row in
// (entry_date, id) order. The unique index on (invoice_id, entry_type) is
// what makes invoice projection idempotent at the database level.
type DayBookEntry struct {
	ID            int              `gorm:"primary_key" json:"id"`
	EntryDate     time.Time        `gorm:"type:date;index;not null" json:"entry_date"`
	EntryType     DayBookEntryType `gorm:"type:enum('sale','payment','return','credit','expense');not null;uniqueIndex:uix_daybook_invoice_type,priority:2" json:"entry_type"`
	InvoiceID     *int             `gorm:"uniqueIndex:uix_daybook_invoice_type,priority:1" json:"invoice_id"`
	ReturnID      *int             `gorm:"index" json:"return_id"`
	ReferenceNo   string           `gorm:"size:50" json:"reference_no"`
	Description   string           `gorm:"size:255" json:"description"`
	DebitAmount   decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"debit_amount"`
	CreditAmount  decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"credit_amount"`
	BalanceAmount decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"balance_amount"`
	CreatedAt     time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// LastDayBookBalance reads the latest running balance under FOR UPDATE so
// concurrent projections serialize on the tail of the book.
func LastDayBookBalance(tx *gorm.DB) (decimal.Decimal, error) {
	var entry DayBookEntry
	err := tx.Clauses(forUpdateClause()).Order("id DESC").First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return entry.BalanceAmount, nil
}

// InvoiceDayBookEntries returns the projected rows for one invoice, keyed by
// entry type.
func InvoiceDayBookEntries(tx *gorm.DB, invoiceID int) (map[DayBookEntryType]*DayBookEntry, error) {
	var entries []*DayBookEntry
	err := tx.Clauses(forUpdateClause()).
		Where("invoice_id = ?", invoiceID).
		Order("id").Find(&entries).Error
	if err != nil {
		return nil, err
	}
	byType := make(map[DayBookEntryType]*DayBookEntry, len(entries))
	for _, e := range entries {
		byType[e.EntryType] = e
	}
	return byType, nil
}

type DayBookSummary struct {
	EntryDate      time.Time       `json:"entry_date"`
	TotalDebit     decimal.Decimal `json:"total_debit"`
	TotalCredit    decimal.Decimal `json:"total_credit"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	EntryCount     int             `json:"entry_count"`
}

func GetDayBookEntries(ctx context.Context, date time.Time) ([]*DayBookEntry, error) {
	db := config.GetDB()
	var entries []*DayBookEntry
	err := db.WithContext(ctx).
		Where("entry_date = ?", date.Format("2006-01-02")).
		Order("id").Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func GetDayBookSummary(ctx context.Context, date time.Time) (*DayBookSummary, error) {
	entries, err := GetDayBookEntries(ctx, date)
	if err != nil {
		return nil, err
	}
	summary := DayBookSummary{EntryDate: date, EntryCount: len(entries)}
	for _, e := range entries {
		summary.TotalDebit = summary.TotalDebit.Add(e.DebitAmount)
		summary.TotalCredit = summary.TotalCredit.Add(e.CreditAmount)
		summary.ClosingBalance = e.BalanceAmount
	}
	return &summary, nil
}
