package workflow

import (
	"context"

	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/config"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// rebalanceForward recomputes the running balance chain from the given row to
// the tail of the book. Called after an in-place edit left later rows stale.
// Caller must hold the daybook lock.
func rebalanceForward(tx *gorm.DB, fromID int) error {
	balance := decimal.Zero
	var prev models.DayBookEntry
	err := tx.Where("id < ?", fromID).Order("id DESC").First(&prev).Error
	if err == nil {
		balance = prev.BalanceAmount
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	var rows []*models.DayBookEntry
	if err := tx.Where("id >= ?", fromID).Order("id").Find(&rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		balance = balance.Add(row.DebitAmount).Sub(row.CreditAmount)
		if row.BalanceAmount.Equal(balance) {
			continue
		}
		if err := tx.Model(row).Update("balance_amount", balance).Error; err != nil {
			return err
		}
	}
	return nil
}

// RebalanceDayBook walks the whole book in id order and rewrites every row
// whose running balance disagrees with prev + debit - credit. Returns the
// number of rows corrected. Meant for the reconciliation job; the posting
// paths keep the chain consistent on their own.
func RebalanceDayBook(ctx context.Context, logger *logrus.Logger) (int, error) {
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return 0, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := AcquireDayBookLock(tx); err != nil {
		tx.Rollback()
		return 0, err
	}
	defer ReleaseDayBookLock(tx)

	fixed := 0
	balance := decimal.Zero
	var rows []*models.DayBookEntry
	if err := tx.Clauses(clauseForUpdate()).Order("id").Find(&rows).Error; err != nil {
		tx.Rollback()
		return 0, err
	}
	for _, row := range rows {
		balance = balance.Add(row.DebitAmount).Sub(row.CreditAmount)
		if row.BalanceAmount.Equal(balance) {
			continue
		}
		logger.WithFields(logrus.Fields{
			"entry_id": row.ID,
			"stored":   row.BalanceAmount.String(),
			"computed": balance.String(),
		}).Warn("daybook balance drift, correcting")
		if err := tx.Model(row).Update("balance_amount", balance).Error; err != nil {
			tx.Rollback()
			return 0, err
		}
		fixed++
	}

	if err := tx.Commit().Error; err != nil {
		return 0, err
	}
	return fixed, nil
}

// VerifyInvoiceProjection checks one invoice's rows against the projection
// contract. Read-only; used by the reconciliation job to report drift the
// rebalance pass cannot explain.
func VerifyInvoiceProjection(ctx context.Context, invoiceID int) (bool, error) {
	invoice, err := models.GetInvoice(ctx, invoiceID)
	if err != nil {
		return false, err
	}
	if invoice.Status == models.InvoiceStatusCancelled || invoice.TotalAmount.IsZero() {
		return true, nil
	}
	db := config.GetDB()
	var rows []*models.DayBookEntry
	err = db.WithContext(ctx).Where("invoice_id = ?", invoiceID).Find(&rows).Error
	if err != nil {
		return false, err
	}
	byType := make(map[models.DayBookEntryType]*models.DayBookEntry, len(rows))
	for _, row := range rows {
		byType[row.EntryType] = row
	}

	built := BuildInvoiceEntries(invoice)
	wanted := make(map[models.DayBookEntryType]bool, len(built))
	for _, entry := range built {
		wanted[entry.EntryType] = true
		row, ok := byType[entry.EntryType]
		if !ok {
			return false, nil
		}
		if !row.DebitAmount.Equal(entry.Debit) || !row.CreditAmount.Equal(entry.Credit) {
			return false, nil
		}
	}
	for entryType, row := range byType {
		if wanted[entryType] {
			continue
		}
		if !row.DebitAmount.IsZero() || !row.CreditAmount.IsZero() {
			return false, nil
		}
	}
	return true, nil
}
