package workflow

import (
	"fmt"

	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/config"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/models"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ProjectedEntry is what one invoice should look like in the daybook. The
// builder is pure so the projection contract can be checked without a
// database.
type ProjectedEntry struct {
	EntryType   models.DayBookEntryType
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// BuildInvoiceEntries derives the daybook rows an invoice must project to.
//
// An invoice settled in full at the counter with an immediate method (cash,
// card, upi) collapses to a single net-zero sale row: the sale and its
// payment cancel out, so the running balance of outstanding receivables does
// not move. Any other invoice projects a sale row carrying the full amount as
// debit, plus a payment row crediting whatever has been collected so far.
//
// A cancelled invoice projects nothing.
func BuildInvoiceEntries(invoice *models.Invoice) []ProjectedEntry {
	if invoice.Status == models.InvoiceStatusCancelled {
		return nil
	}

	settledAtCounter := invoice.PaymentMethod.IsImmediate() &&
		invoice.PaidAmount.GreaterThanOrEqual(invoice.TotalAmount)
	if settledAtCounter {
		return []ProjectedEntry{{
			EntryType:   models.DayBookEntryTypeSale,
			Description: fmt.Sprintf("Sale %s (settled %s)", invoice.InvoiceNumber, invoice.PaymentMethod),
			Debit:       invoice.TotalAmount,
			Credit:      invoice.TotalAmount,
		}}
	}

	entries := []ProjectedEntry{{
		EntryType:   models.DayBookEntryTypeSale,
		Description: fmt.Sprintf("Sale %s", invoice.InvoiceNumber),
		Debit:       invoice.TotalAmount,
		Credit:      decimal.Zero,
	}}
	if invoice.PaidAmount.IsPositive() {
		entries = append(entries, ProjectedEntry{
			EntryType:   models.DayBookEntryTypePayment,
			Description: fmt.Sprintf("Payment against %s", invoice.InvoiceNumber),
			Debit:       decimal.Zero,
			Credit:      invoice.PaidAmount,
		})
	}
	return entries
}

// ProjectInvoice upserts the invoice's daybook rows inside the caller's
// transaction. Re-running it for the same invoice state is a no-op; the
// unique index on (invoice_id, entry_type) backs that up at the database
// level. Rows are append-only: a projection that no longer needs a row zeroes
// it in place rather than deleting it, and the balance chain after any edited
// row is recomputed forward under the daybook lock.
//
// Cancelled and zero-total invoices are skipped outright. Cancellation is
// terminal and carries no compensation; whatever the invoice projected before
// stays in the book.
func ProjectInvoice(tx *gorm.DB, logger *logrus.Logger, invoice *models.Invoice) error {
	if invoice.Status == models.InvoiceStatusCancelled || invoice.TotalAmount.IsZero() {
		return nil
	}
	if err := AcquireDayBookLock(tx); err != nil {
		config.LogError(logger, "daybookProjector.go", "ProjectInvoice", "AcquireDayBookLock", invoice.ID, err)
		return err
	}
	defer ReleaseDayBookLock(tx)

	built := BuildInvoiceEntries(invoice)
	existing, err := models.InvoiceDayBookEntries(tx, invoice.ID)
	if err != nil {
		config.LogError(logger, "daybookProjector.go", "ProjectInvoice", "InvoiceDayBookEntries", invoice.ID, err)
		return err
	}

	rebalanceFrom := 0
	wanted := make(map[models.DayBookEntryType]bool, len(built))

	for _, entry := range built {
		wanted[entry.EntryType] = true
		row, ok := existing[entry.EntryType]
		if ok {
			if row.DebitAmount.Equal(entry.Debit) && row.CreditAmount.Equal(entry.Credit) {
				continue
			}
			err = tx.Model(row).Updates(map[string]interface{}{
				"debit_amount":  entry.Debit,
				"credit_amount": entry.Credit,
				"description":   entry.Description,
			}).Error
			if err != nil {
				config.LogError(logger, "daybookProjector.go", "ProjectInvoice", "update row", row.ID, err)
				return err
			}
			if rebalanceFrom == 0 || row.ID < rebalanceFrom {
				rebalanceFrom = row.ID
			}
			continue
		}

		lastBalance, err := models.LastDayBookBalance(tx)
		if err != nil {
			config.LogError(logger, "daybookProjector.go", "ProjectInvoice", "LastDayBookBalance", invoice.ID, err)
			return err
		}
		invoiceID := invoice.ID
		row = &models.DayBookEntry{
			EntryDate:     utils.TruncateToDate(invoice.InvoiceDate),
			EntryType:     entry.EntryType,
			InvoiceID:     &invoiceID,
			ReferenceNo:   invoice.InvoiceNumber,
			Description:   entry.Description,
			DebitAmount:   entry.Debit,
			CreditAmount:  entry.Credit,
			BalanceAmount: lastBalance.Add(entry.Debit).Sub(entry.Credit),
		}
		if err := tx.Create(row).Error; err != nil {
			config.LogError(logger, "daybookProjector.go", "ProjectInvoice", "insert row", invoice.ID, err)
			return err
		}
	}

	// Rows the current state no longer calls for, e.g. a payment row left
	// behind when an invoice collapses to the settled-at-counter shape.
	for entryType, row := range existing {
		if wanted[entryType] {
			continue
		}
		if row.DebitAmount.IsZero() && row.CreditAmount.IsZero() {
			continue
		}
		err = tx.Model(row).Updates(map[string]interface{}{
			"debit_amount":  decimal.Zero,
			"credit_amount": decimal.Zero,
			"description":   row.Description + " (superseded)",
		}).Error
		if err != nil {
			config.LogError(logger, "daybookProjector.go", "ProjectInvoice", "zero stale row", row.ID, err)
			return err
		}
		if rebalanceFrom == 0 || row.ID < rebalanceFrom {
			rebalanceFrom = row.ID
		}
	}

	if rebalanceFrom > 0 {
		if err := rebalanceForward(tx, rebalanceFrom); err != nil {
			config.LogError(logger, "daybookProjector.go", "ProjectInvoice", "rebalanceForward", rebalanceFrom, err)
			return err
		}
	}
	return nil
}

// appendDayBookEntry appends a standalone row (returns, expenses) at the tail
// of the book. Caller must hold the daybook lock.
func appendDayBookEntry(tx *gorm.DB, entry *models.DayBookEntry) error {
	lastBalance, err := models.LastDayBookBalance(tx)
	if err != nil {
		return err
	}
	entry.BalanceAmount = lastBalance.Add(entry.DebitAmount).Sub(entry.CreditAmount)
	return tx.Create(entry).Error
}
