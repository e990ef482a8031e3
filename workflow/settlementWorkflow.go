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

// BuildInvoiceItems prices the requested lines. For each line: the subtotal
// is unit price times quantity, the line discount comes off the subtotal, tax
// applies once to the discounted amount at the product's rate, and the line
// total is the discounted amount plus tax. Returns the lines plus the invoice
// subtotal, tax and pre-discount total.
func BuildInvoiceItems(products map[int]*models.Product, inputs []models.NewInvoiceItem) ([]models.InvoiceItem, decimal.Decimal, decimal.Decimal, decimal.Decimal, error) {
	items := make([]models.InvoiceItem, 0, len(inputs))
	subTotal := decimal.Zero
	taxTotal := decimal.Zero
	grandTotal := decimal.Zero

	for i, input := range inputs {
		product, ok := products[input.ProductID]
		if !ok {
			return nil, decimal.Zero, decimal.Zero, decimal.Zero, utils.NewNotFoundError("product")
		}
		unitPrice := product.SellingPrice
		if input.UnitPrice != nil {
			unitPrice = *input.UnitPrice
		}

		lineSubTotal := unitPrice.Mul(decimal.NewFromInt(int64(input.Quantity)))
		if input.DiscountAmount.GreaterThan(lineSubTotal) {
			return nil, decimal.Zero, decimal.Zero, decimal.Zero,
				utils.NewValidationError("items[%d].discount_amount exceeds line subtotal", i)
		}
		afterDiscount := lineSubTotal.Sub(input.DiscountAmount)
		lineTax := utils.CalculateItemTax(afterDiscount, product.TaxRate)
		lineTotal := afterDiscount.Add(lineTax)

		items = append(items, models.InvoiceItem{
			ProductID:      product.ID,
			ProductName:    product.Name,
			Quantity:       input.Quantity,
			UnitPrice:      unitPrice,
			DiscountAmount: input.DiscountAmount,
			TaxRate:        product.TaxRate,
			TaxAmount:      lineTax,
			TotalAmount:    lineTotal,
		})
		subTotal = subTotal.Add(lineSubTotal)
		taxTotal = taxTotal.Add(lineTax)
		grandTotal = grandTotal.Add(lineTotal)
	}
	return items, subTotal, taxTotal, grandTotal, nil
}

func loadProductsForSale(tx *gorm.DB, inputs []models.NewInvoiceItem) (map[int]*models.Product, error) {
	ids := make([]int, 0, len(inputs))
	for _, input := range inputs {
		ids = append(ids, input.ProductID)
	}
	var products []*models.Product
	if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	byID := make(map[int]*models.Product, len(products))
	for _, p := range products {
		if p.IsActive != nil && !*p.IsActive {
			return nil, utils.NewValidationError("product %q is inactive", p.Sku)
		}
		byID[p.ID] = p
	}
	for _, input := range inputs {
		if _, ok := byID[input.ProductID]; !ok {
			return nil, utils.NewNotFoundError("product")
		}
	}
	return byID, nil
}

// CreateInvoice runs the whole settlement in one transaction: number
// allocation, pricing, the invoice and its items, stock deduction, the credit
// posting for an unpaid credit sale, the customer's lifetime counters, and
// the daybook projection. Either all of it commits or none of it does. The
// allocated number is the first write so a rollback releases it cleanly.
func CreateInvoice(ctx context.Context, logger *logrus.Logger, userID int, input *models.NewInvoice) (*models.Invoice, error) {
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

	now := time.Now()
	number, err := NextDocumentNumber(tx, logger, models.DocumentKindInvoice, now)
	if err != nil {
		config.LogError(logger, "settlementWorkflow.go", "CreateInvoice", "NextDocumentNumber", nil, err)
		return nil, err
	}

	var customer *models.Customer
	if input.CustomerID != nil {
		var c models.Customer
		if err := tx.First(&c, *input.CustomerID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, utils.NewNotFoundError("customer")
			}
			return nil, err
		}
		if c.IsBlacklisted != nil && *c.IsBlacklisted && input.PaymentMethod == models.PaymentMethodCredit {
			return nil, utils.NewValidationError("customer is blacklisted for credit sales")
		}
		customer = &c
	}

	products, err := loadProductsForSale(tx, input.Items)
	if err != nil {
		return nil, err
	}
	items, subTotal, taxAmount, itemsTotal, err := BuildInvoiceItems(products, input.Items)
	if err != nil {
		return nil, err
	}

	discountAmount := utils.CalculateDiscountAmount(subTotal, input.Discount, input.DiscountType)
	totalAmount := itemsTotal.Sub(discountAmount)
	if totalAmount.IsNegative() {
		return nil, utils.NewValidationError("discount exceeds invoice total")
	}

	paidAmount := input.PaidAmount
	if input.PaymentMethod.IsImmediate() && paidAmount.IsZero() {
		// Counter sales settle in full unless the operator says otherwise.
		paidAmount = totalAmount
	}
	if paidAmount.GreaterThan(totalAmount) {
		return nil, utils.NewValidationError("paid_amount %s exceeds total %s", paidAmount.String(), totalAmount.String())
	}

	customerName := input.CustomerName
	customerPhone := input.CustomerPhone
	customerEmail := input.CustomerEmail
	if customer != nil {
		// Snapshot the registered customer's contact details onto the invoice.
		if customerName == "" {
			customerName = customer.Name
		}
		if customerPhone == "" && customer.Phone != nil {
			customerPhone = *customer.Phone
		}
		if customerEmail == "" {
			customerEmail = customer.Email
		}
	}

	invoice := models.Invoice{
		InvoiceNumber:  number,
		CustomerID:     input.CustomerID,
		CustomerName:   customerName,
		CustomerPhone:  customerPhone,
		CustomerEmail:  customerEmail,
		UserID:         userID,
		Status:         models.DeriveStatus(totalAmount, paidAmount),
		PaymentMethod:  input.PaymentMethod,
		SubTotal:       subTotal,
		DiscountAmount: discountAmount,
		TaxAmount:      taxAmount,
		TotalAmount:    totalAmount,
		PaidAmount:     paidAmount,
		BalanceAmount:  totalAmount.Sub(paidAmount),
		Notes:          input.Notes,
		InvoiceDate:    now,
		Items:          items,
	}
	if err := tx.Create(&invoice).Error; err != nil {
		config.LogError(logger, "settlementWorkflow.go", "CreateInvoice", "create invoice", number, err)
		return nil, err
	}

	if err := DeductStockForSale(tx, logger, &invoice, userID); err != nil {
		return nil, err
	}

	if invoice.PaymentMethod == models.PaymentMethodCredit && invoice.BalanceAmount.IsPositive() {
		if err := PostCredit(tx, logger, *invoice.CustomerID, invoice.ID, invoice.BalanceAmount, userID); err != nil {
			return nil, err
		}
	}

	if customer != nil {
		if err := customer.RecordPurchase(tx, invoice.TotalAmount, now); err != nil {
			config.LogError(logger, "settlementWorkflow.go", "CreateInvoice", "RecordPurchase", customer.ID, err)
			return nil, err
		}
	}

	if err := ProjectInvoice(tx, logger, &invoice); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "settlementWorkflow.go", "CreateInvoice", "commit", number, err)
		return nil, err
	}
	committed = true

	notifyInvoiceSettled(ctx, logger, &invoice)
	return &invoice, nil
}

type PaymentInput struct {
	Amount decimal.Decimal      `json:"amount" binding:"required"`
	Method models.PaymentMethod `json:"method" binding:"required"`
	Notes  string               `json:"notes"`
}

// ProcessPayment records a payment against an open invoice, moving its paid
// amount, balance and status together, settling the credit account when the
// invoice was a credit sale, and re-projecting the daybook rows. All in one
// transaction under a FOR UPDATE lock on the invoice.
func ProcessPayment(ctx context.Context, logger *logrus.Logger, invoiceID int, userID int, input *PaymentInput) (*models.Invoice, error) {
	if !input.Amount.IsPositive() {
		return nil, utils.NewValidationError("amount must be positive")
	}
	if !input.Method.Valid() || input.Method == models.PaymentMethodCredit {
		return nil, utils.NewValidationError("method %q cannot settle an invoice", input.Method)
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

	invoice, err := models.LockInvoice(tx, invoiceID)
	if err != nil {
		return nil, err
	}
	switch invoice.Status {
	case models.InvoiceStatusCancelled:
		return nil, utils.NewConsistencyError("invoice %s is cancelled", invoice.InvoiceNumber)
	case models.InvoiceStatusPaid:
		return nil, utils.NewConsistencyError("invoice %s is already settled", invoice.InvoiceNumber)
	}
	if input.Amount.GreaterThan(invoice.BalanceAmount) {
		return nil, utils.NewConsistencyError(
			"payment %s exceeds invoice balance %s", input.Amount.String(), invoice.BalanceAmount.String())
	}

	paidAmount := invoice.PaidAmount.Add(input.Amount)
	balanceAmount := invoice.TotalAmount.Sub(paidAmount)
	status := models.DeriveStatus(invoice.TotalAmount, paidAmount)
	err = tx.Model(invoice).Updates(map[string]interface{}{
		"paid_amount":    paidAmount,
		"balance_amount": balanceAmount,
		"status":         status,
	}).Error
	if err != nil {
		config.LogError(logger, "settlementWorkflow.go", "ProcessPayment", "update invoice", invoiceID, err)
		return nil, err
	}
	invoice.PaidAmount = paidAmount
	invoice.BalanceAmount = balanceAmount
	invoice.Status = status

	if invoice.PaymentMethod == models.PaymentMethodCredit && invoice.CustomerID != nil {
		_, err = PostCreditPayment(tx, logger, *invoice.CustomerID, &invoice.ID,
			input.Amount, input.Method, input.Notes, userID)
		if err != nil {
			return nil, err
		}
	}

	if err := ProjectInvoice(tx, logger, invoice); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "settlementWorkflow.go", "ProcessPayment", "commit", invoiceID, err)
		return nil, err
	}
	committed = true

	notifyInvoiceSettled(ctx, logger, invoice)
	return invoice, nil
}

// CancelInvoice marks the invoice cancelled. Terminal and deliberately
// non-compensating: stock, credit postings and daybook rows stay exactly as
// the invoice left them. Undoing a sale's effects goes through an explicit
// return.
func CancelInvoice(ctx context.Context, logger *logrus.Logger, invoiceID int, userID int) (*models.Invoice, error) {
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

	invoice, err := models.LockInvoice(tx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == models.InvoiceStatusCancelled {
		return nil, utils.NewConsistencyError("invoice %s is already cancelled", invoice.InvoiceNumber)
	}

	if err := tx.Model(invoice).Update("status", models.InvoiceStatusCancelled).Error; err != nil {
		config.LogError(logger, "settlementWorkflow.go", "CancelInvoice", "update invoice", invoiceID, err)
		return nil, err
	}
	invoice.Status = models.InvoiceStatusCancelled

	logger.WithFields(logrus.Fields{
		"invoice_number": invoice.InvoiceNumber,
		"user_id":        userID,
	}).Info("invoice cancelled")

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "settlementWorkflow.go", "CancelInvoice", "commit", invoiceID, err)
		return nil, err
	}
	committed = true
	return invoice, nil
}
