package workflow

import (
	"context"
	"time"

	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/config"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/models"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CreateReturn opens a return against a settled or part-settled invoice. The
// refund per line is the line's tax-inclusive per-unit total times the
// returned quantity, so tax comes back in the same proportion it was charged.
// Quantities are capped by what the invoice sold minus what earlier returns
// already took back. Stock and money do not move until completion.
func CreateReturn(ctx context.Context, logger *logrus.Logger, userID int, input *models.NewReturn) (*models.Return, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	invoice, err := models.LockInvoice(tx, input.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == models.InvoiceStatusCancelled {
		return nil, utils.NewConsistencyError("cannot return against cancelled invoice %s", invoice.InvoiceNumber)
	}
	if invoice.Status != models.InvoiceStatusPaid && invoice.Status != models.InvoiceStatusPartial {
		return nil, utils.NewConsistencyError("invoice %s has no collected payment to refund", invoice.InvoiceNumber)
	}
	if err := tx.Preload("Items").First(invoice, invoice.ID).Error; err != nil {
		return nil, err
	}
	if input.RefundMethod == models.RefundMethodCredit && invoice.CustomerID == nil {
		return nil, utils.NewValidationError("store credit refund requires a customer on the invoice")
	}

	invoiceItems := make(map[int]*models.InvoiceItem, len(invoice.Items))
	for i := range invoice.Items {
		invoiceItems[invoice.Items[i].ID] = &invoice.Items[i]
	}
	returnedSoFar, err := quantitiesAlreadyReturned(tx, invoice.ID)
	if err != nil {
		config.LogError(logger, "returnWorkflow.go", "CreateReturn", "quantitiesAlreadyReturned", invoice.ID, err)
		return nil, err
	}

	now := time.Now()
	number, err := NextDocumentNumber(tx, logger, models.DocumentKindReturn, now)
	if err != nil {
		config.LogError(logger, "returnWorkflow.go", "CreateReturn", "NextDocumentNumber", nil, err)
		return nil, err
	}

	items := make([]models.ReturnItem, 0, len(input.Items))
	refundTotal := decimal.Zero
	for i, in := range input.Items {
		invItem, ok := invoiceItems[in.InvoiceItemID]
		if !ok {
			return nil, utils.NewValidationError("items[%d] does not belong to invoice %s", i, invoice.InvoiceNumber)
		}
		available := invItem.Quantity - returnedSoFar[invItem.ID]
		if in.Quantity > available {
			return nil, utils.NewValidationError(
				"items[%d] returns %d but only %d remain returnable", i, in.Quantity, available)
		}
		perUnit := invItem.TotalAmount.DivRound(decimal.NewFromInt(int64(invItem.Quantity)), 4)
		refund := perUnit.Mul(decimal.NewFromInt(int64(in.Quantity)))
		items = append(items, models.ReturnItem{
			InvoiceItemID: invItem.ID,
			ProductID:     invItem.ProductID,
			Quantity:      in.Quantity,
			UnitPrice:     invItem.UnitPrice,
			RefundAmount:  refund,
			Restock:       in.Restock,
		})
		refundTotal = refundTotal.Add(refund)
	}
	if refundTotal.GreaterThan(invoice.PaidAmount) {
		return nil, utils.NewConsistencyError(
			"refund %s exceeds amount collected %s", refundTotal.String(), invoice.PaidAmount.String())
	}

	ret := models.Return{
		ReturnNumber: number,
		InvoiceID:    invoice.ID,
		UserID:       userID,
		Status:       models.ReturnStatusPending,
		Reason:       input.Reason,
		RefundMethod: input.RefundMethod,
		RefundAmount: refundTotal,
		Notes:        input.Notes,
		Items:        items,
	}
	if err := tx.Create(&ret).Error; err != nil {
		config.LogError(logger, "returnWorkflow.go", "CreateReturn", "create return", number, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "returnWorkflow.go", "CreateReturn", "commit", number, err)
		return nil, err
	}
	committed = true
	return &ret, nil
}

func quantitiesAlreadyReturned(tx *gorm.DB, invoiceID int) (map[int]int, error) {
	type row struct {
		InvoiceItemID int
		Total         int
	}
	var rows []row
	err := tx.Model(&models.ReturnItem{}).
		Select("return_items.invoice_item_id AS invoice_item_id, SUM(return_items.quantity) AS total").
		Joins("JOIN returns ON returns.id = return_items.return_id").
		Where("returns.invoice_id = ? AND returns.status IN ?", invoiceID,
			[]models.ReturnStatus{models.ReturnStatusPending, models.ReturnStatusApproved, models.ReturnStatusCompleted}).
		Group("return_items.invoice_item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[int]int, len(rows))
	for _, r := range rows {
		out[r.InvoiceItemID] = r.Total
	}
	return out, nil
}

// CompleteReturn executes an open return: restockable quantities go back to
// the warehouse, the refund hits the daybook as cash out, and a store credit
// refund lands on the customer's account as an adjustment. One transaction.
func CompleteReturn(ctx context.Context, logger *logrus.Logger, returnID int, userID int) (*models.Return, error) {
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	ret, err := models.LockReturn(tx, returnID)
	if err != nil {
		return nil, err
	}
	if ret.Status != models.ReturnStatusPending && ret.Status != models.ReturnStatusApproved {
		return nil, utils.NewConsistencyError("return %s is %s and cannot be completed", ret.ReturnNumber, ret.Status)
	}

	invoice, err := models.LockInvoice(tx, ret.InvoiceID)
	if err != nil {
		return nil, err
	}

	for _, item := range ret.Items {
		if item.Restock != nil && !*item.Restock {
			continue
		}
		err = RestoreStock(tx, logger, item.ProductID, item.Quantity,
			models.InventoryTransactionTypeReturn, "return", ret.ID, userID)
		if err != nil {
			return nil, err
		}
	}

	if ret.RefundMethod == models.RefundMethodCredit && invoice.CustomerID != nil {
		// Store credit: the customer's owed balance drops, going negative
		// when the refund outruns what they owe.
		err = PostCreditAdjustment(tx, logger, *invoice.CustomerID, &invoice.ID,
			ret.RefundAmount.Neg(), "refund for return "+ret.ReturnNumber, userID)
		if err != nil {
			return nil, err
		}
	}

	if err := AcquireDayBookLock(tx); err != nil {
		config.LogError(logger, "returnWorkflow.go", "CompleteReturn", "AcquireDayBookLock", ret.ID, err)
		return nil, err
	}
	retID := ret.ID
	entry := models.DayBookEntry{
		EntryDate:    utils.TruncateToDate(time.Now()),
		EntryType:    models.DayBookEntryTypeReturn,
		ReturnID:     &retID,
		ReferenceNo:  ret.ReturnNumber,
		Description:  "Refund for return " + ret.ReturnNumber + " against " + invoice.InvoiceNumber,
		DebitAmount:  decimal.Zero,
		CreditAmount: ret.RefundAmount,
	}
	err = appendDayBookEntry(tx, &entry)
	ReleaseDayBookLock(tx)
	if err != nil {
		config.LogError(logger, "returnWorkflow.go", "CompleteReturn", "appendDayBookEntry", ret.ID, err)
		return nil, err
	}

	now := time.Now()
	err = tx.Model(ret).Updates(map[string]interface{}{
		"status":       models.ReturnStatusCompleted,
		"completed_at": now,
	}).Error
	if err != nil {
		config.LogError(logger, "returnWorkflow.go", "CompleteReturn", "update return", ret.ID, err)
		return nil, err
	}
	ret.Status = models.ReturnStatusCompleted
	ret.CompletedAt = &now

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "returnWorkflow.go", "CompleteReturn", "commit", ret.ID, err)
		return nil, err
	}
	committed = true
	return ret, nil
}

// RejectReturn closes a pending return without moving stock or money.
func RejectReturn(ctx context.Context, logger *logrus.Logger, returnID int, notes string) (*models.Return, error) {
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	ret, err := models.LockReturn(tx, returnID)
	if err != nil {
		return nil, err
	}
	if ret.Status != models.ReturnStatusPending {
		return nil, utils.NewConsistencyError("return %s is %s and cannot be rejected", ret.ReturnNumber, ret.Status)
	}

	updates := map[string]interface{}{"status": models.ReturnStatusRejected}
	if notes != "" {
		updates["notes"] = notes
	}
	if err := tx.Model(ret).Updates(updates).Error; err != nil {
		config.LogError(logger, "returnWorkflow.go", "RejectReturn", "update return", ret.ID, err)
		return nil, err
	}
	ret.Status = models.ReturnStatusRejected

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	committed = true
	return ret, nil
}
