package workflow

import (
	"time"

	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/config"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/models"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// creditTotalsAfterSale applies a signed credit movement to the account
// totals. balance = total_credit - total_paid after every posting.
func creditTotalsAfterSale(totalCredit, totalPaid, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	newCredit := totalCredit.Add(amount)
	return newCredit, newCredit.Sub(totalPaid)
}

// creditTotalsAfterPayment applies a payment against the account totals. A
// payment exceeding the outstanding balance is rejected.
func creditTotalsAfterPayment(totalCredit, totalPaid, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	balance := totalCredit.Sub(totalPaid)
	if amount.GreaterThan(balance) {
		return decimal.Zero, decimal.Zero, utils.NewConsistencyError(
			"payment %s exceeds outstanding credit balance %s", amount.String(), balance.String())
	}
	newPaid := totalPaid.Add(amount)
	return newPaid, totalCredit.Sub(newPaid), nil
}

// PostCredit books the unpaid portion of a credit sale onto the customer's
// account. Runs inside the settlement transaction; the account row is locked
// FOR UPDATE so concurrent postings for one customer serialize.
func PostCredit(tx *gorm.DB, logger *logrus.Logger, customerID int, invoiceID int, amount decimal.Decimal, userID int) error {
	if !amount.IsPositive() {
		return utils.NewValidationError("credit amount must be positive")
	}
	credit, err := models.LockCustomerCredit(tx, customerID)
	if err != nil {
		config.LogError(logger, "creditWorkflow.go", "PostCredit", "LockCustomerCredit", customerID, err)
		return err
	}

	totalCredit, balance := creditTotalsAfterSale(credit.TotalCredit, credit.TotalPaid, amount)
	err = tx.Model(credit).Updates(map[string]interface{}{
		"total_credit":        totalCredit,
		"balance":             balance,
		"last_transaction_at": time.Now(),
	}).Error
	if err != nil {
		config.LogError(logger, "creditWorkflow.go", "PostCredit", "update account", customerID, err)
		return err
	}

	txn := models.CreditTransaction{
		CustomerCreditID: credit.ID,
		InvoiceID:        &invoiceID,
		TransactionType:  models.CreditTransactionTypeCredit,
		Amount:           amount,
		BalanceAfter:     balance,
		PaymentMethod:    models.PaymentMethodCredit,
		CreatedByID:      &userID,
	}
	if err := tx.Create(&txn).Error; err != nil {
		config.LogError(logger, "creditWorkflow.go", "PostCredit", "create transaction", customerID, err)
		return err
	}
	return nil
}

// PostCreditPayment settles part of a customer's outstanding credit. A payment
// exceeding the balance is rejected before any write, so a failed posting
// leaves no transaction row behind.
func PostCreditPayment(tx *gorm.DB, logger *logrus.Logger, customerID int, invoiceID *int,
	amount decimal.Decimal, method models.PaymentMethod, notes string, userID int) (*models.CreditTransaction, error) {

	if !amount.IsPositive() {
		return nil, utils.NewValidationError("payment amount must be positive")
	}
	credit, err := models.LockCustomerCredit(tx, customerID)
	if err != nil {
		config.LogError(logger, "creditWorkflow.go", "PostCreditPayment", "LockCustomerCredit", customerID, err)
		return nil, err
	}
	totalPaid, balance, err := creditTotalsAfterPayment(credit.TotalCredit, credit.TotalPaid, amount)
	if err != nil {
		return nil, err
	}
	err = tx.Model(credit).Updates(map[string]interface{}{
		"total_paid":          totalPaid,
		"balance":             balance,
		"last_transaction_at": time.Now(),
	}).Error
	if err != nil {
		config.LogError(logger, "creditWorkflow.go", "PostCreditPayment", "update account", customerID, err)
		return nil, err
	}

	txn := models.CreditTransaction{
		CustomerCreditID: credit.ID,
		InvoiceID:        invoiceID,
		TransactionType:  models.CreditTransactionTypePayment,
		Amount:           amount,
		BalanceAfter:     balance,
		PaymentMethod:    method,
		Notes:            notes,
		CreatedByID:      &userID,
	}
	if err := tx.Create(&txn).Error; err != nil {
		config.LogError(logger, "creditWorkflow.go", "PostCreditPayment", "create transaction", customerID, err)
		return nil, err
	}
	return &txn, nil
}

// PostCreditAdjustment moves the account by a signed amount outside the normal
// sale/payment flow: cancelling an unpaid credit sale, or refunding a return
// as store credit. Negative amounts reduce total_credit; positive amounts
// raise it. The balance may go negative, meaning the store owes the customer.
func PostCreditAdjustment(tx *gorm.DB, logger *logrus.Logger, customerID int, invoiceID *int,
	amount decimal.Decimal, notes string, userID int) error {

	if amount.IsZero() {
		return nil
	}
	credit, err := models.LockCustomerCredit(tx, customerID)
	if err != nil {
		config.LogError(logger, "creditWorkflow.go", "PostCreditAdjustment", "LockCustomerCredit", customerID, err)
		return err
	}

	totalCredit, balance := creditTotalsAfterSale(credit.TotalCredit, credit.TotalPaid, amount)
	err = tx.Model(credit).Updates(map[string]interface{}{
		"total_credit":        totalCredit,
		"balance":             balance,
		"last_transaction_at": time.Now(),
	}).Error
	if err != nil {
		config.LogError(logger, "creditWorkflow.go", "PostCreditAdjustment", "update account", customerID, err)
		return err
	}

	txn := models.CreditTransaction{
		CustomerCreditID: credit.ID,
		InvoiceID:        invoiceID,
		TransactionType:  models.CreditTransactionTypeAdjustment,
		Amount:           amount,
		BalanceAfter:     balance,
		Notes:            notes,
		CreatedByID:      &userID,
	}
	if err := tx.Create(&txn).Error; err != nil {
		config.LogError(logger, "creditWorkflow.go", "PostCreditAdjustment", "create transaction", customerID, err)
		return err
	}
	return nil
}
