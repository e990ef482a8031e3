package workflow_test

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/config"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/models"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/utils"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/workflow"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// These tests run the real posting paths against MySQL. Point DB_HOST/DB_PORT/
// DB_USER/DB_PASSWORD/DB_NAME at a disposable database first.

var setupOnce sync.Once

func requireIntegration(t *testing.T) {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires mysql)")
	}
	setupOnce.Do(func() {
		config.ConnectDatabaseWithRetry()
		if err := models.AutoMigrate(); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	})
}

func testSku(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return v
}

func seedProduct(t *testing.T, sku, price, taxRate string, stock int) *models.Product {
	t.Helper()
	ctx := context.Background()
	product, err := models.CreateProduct(ctx, &models.NewProduct{
		Sku:          sku,
		Name:         "Test " + sku,
		SellingPrice: dec(t, price),
		TaxRate:      dec(t, taxRate),
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if stock > 0 {
		db := config.GetDB()
		tx := db.Begin()
		warehouse, err := models.GetOrCreateDefaultWarehouse(tx)
		if err != nil {
			tx.Rollback()
			t.Fatalf("warehouse: %v", err)
		}
		row, err := models.LockStock(tx, product.ID, warehouse.ID)
		if err != nil {
			tx.Rollback()
			t.Fatalf("LockStock: %v", err)
		}
		if err := tx.Model(row).Update("quantity", stock).Error; err != nil {
			tx.Rollback()
			t.Fatalf("seed stock: %v", err)
		}
		if err := tx.Model(product).Update("current_stock", stock).Error; err != nil {
			tx.Rollback()
			t.Fatalf("seed product stock: %v", err)
		}
		if err := tx.Commit().Error; err != nil {
			t.Fatalf("commit: %v", err)
		}
	}
	return product
}

func seedCustomer(t *testing.T, name string) *models.Customer {
	t.Helper()
	customer, err := models.CreateCustomer(context.Background(), &models.NewCustomer{Name: name})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	return customer
}

func invoiceDayBookRows(t *testing.T, invoiceID int) []*models.DayBookEntry {
	t.Helper()
	var rows []*models.DayBookEntry
	err := config.GetDB().Where("invoice_id = ?", invoiceID).Order("id").Find(&rows).Error
	if err != nil {
		t.Fatalf("load daybook rows: %v", err)
	}
	return rows
}

func TestCounterSale_SettlesAtomically(t *testing.T) {
	requireIntegration(t)
	logger := logrus.New()
	ctx := context.Background()

	product := seedProduct(t, testSku("counter"), "100", "18", 10)

	invoice, err := workflow.CreateInvoice(ctx, logger, 1, &models.NewInvoice{
		PaymentMethod: models.PaymentMethodCash,
		Items:         []models.NewInvoiceItem{{ProductID: product.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}

	if invoice.Status != models.InvoiceStatusPaid {
		t.Fatalf("status = %s, want paid", invoice.Status)
	}
	if !invoice.TotalAmount.Equal(dec(t, "236")) {
		t.Fatalf("total = %s, want 236", invoice.TotalAmount)
	}
	if !invoice.BalanceAmount.IsZero() {
		t.Fatalf("balance = %s, want 0", invoice.BalanceAmount)
	}

	rows := invoiceDayBookRows(t, invoice.ID)
	if len(rows) != 1 {
		t.Fatalf("daybook rows = %d, want 1", len(rows))
	}
	if !rows[0].DebitAmount.Equal(rows[0].CreditAmount) {
		t.Fatalf("counter sale row not net-zero: %s/%s", rows[0].DebitAmount, rows[0].CreditAmount)
	}

	// Re-projecting the same state changes nothing.
	db := config.GetDB()
	tx := db.Begin()
	reloaded, err := models.LockInvoice(tx, invoice.ID)
	if err != nil {
		tx.Rollback()
		t.Fatalf("LockInvoice: %v", err)
	}
	if err := workflow.ProjectInvoice(tx, logger, reloaded); err != nil {
		tx.Rollback()
		t.Fatalf("re-project: %v", err)
	}
	if err := tx.Commit().Error; err != nil {
		t.Fatalf("commit: %v", err)
	}
	again := invoiceDayBookRows(t, invoice.ID)
	if len(again) != 1 {
		t.Fatalf("re-projection added rows: %d", len(again))
	}

	// Stock moved out inside the same commit.
	refreshed, err := models.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if refreshed.CurrentStock != 8 {
		t.Fatalf("current_stock = %d, want 8", refreshed.CurrentStock)
	}
}

func TestCreditSale_PostsAndSettles(t *testing.T) {
	requireIntegration(t)
	logger := logrus.New()
	ctx := context.Background()

	product := seedProduct(t, testSku("credit"), "500", "0", 20)
	customer := seedCustomer(t, "Credit Customer")

	invoice, err := workflow.CreateInvoice(ctx, logger, 1, &models.NewInvoice{
		CustomerID:    &customer.ID,
		PaymentMethod: models.PaymentMethodCredit,
		Items:         []models.NewInvoiceItem{{ProductID: product.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if invoice.Status != models.InvoiceStatusPending {
		t.Fatalf("status = %s, want pending", invoice.Status)
	}

	credit, err := models.GetCustomerCredit(ctx, customer.ID)
	if err != nil {
		t.Fatalf("GetCustomerCredit: %v", err)
	}
	if !credit.Balance.Equal(dec(t, "1000")) {
		t.Fatalf("credit balance = %s, want 1000", credit.Balance)
	}
	if !credit.Balance.Equal(credit.TotalCredit.Sub(credit.TotalPaid)) {
		t.Fatal("credit balance invariant broken")
	}
	if credit.LastTransactionAt == nil {
		t.Fatal("credit posting did not stamp last_transaction_at")
	}
	stampedAt := *credit.LastTransactionAt

	// Partial payment moves invoice and subledger together.
	invoice, err = workflow.ProcessPayment(ctx, logger, invoice.ID, 1, &workflow.PaymentInput{
		Amount: dec(t, "400"),
		Method: models.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("ProcessPayment: %v", err)
	}
	if invoice.Status != models.InvoiceStatusPartial {
		t.Fatalf("status = %s, want partial", invoice.Status)
	}
	if !invoice.BalanceAmount.Equal(dec(t, "600")) {
		t.Fatalf("balance = %s, want 600", invoice.BalanceAmount)
	}

	credit, err = models.GetCustomerCredit(ctx, customer.ID)
	if err != nil {
		t.Fatalf("GetCustomerCredit: %v", err)
	}
	if !credit.Balance.Equal(dec(t, "600")) {
		t.Fatalf("credit balance = %s, want 600", credit.Balance)
	}
	if credit.LastTransactionAt == nil || credit.LastTransactionAt.Before(stampedAt) {
		t.Fatalf("payment did not advance last_transaction_at: %v", credit.LastTransactionAt)
	}

	rows := invoiceDayBookRows(t, invoice.ID)
	if len(rows) != 2 {
		t.Fatalf("daybook rows = %d, want 2", len(rows))
	}

	// Overpaying the remainder is rejected before any write.
	_, err = workflow.ProcessPayment(ctx, logger, invoice.ID, 1, &workflow.PaymentInput{
		Amount: dec(t, "600.0001"),
		Method: models.PaymentMethodCash,
	})
	if !utils.IsConsistencyError(err) {
		t.Fatalf("want consistency error, got %v", err)
	}
	after, err := models.GetInvoice(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	if !after.PaidAmount.Equal(dec(t, "400")) {
		t.Fatalf("rejected payment changed paid amount: %s", after.PaidAmount)
	}
}

func TestCreditPayment_OverBalanceLeavesNoRow(t *testing.T) {
	requireIntegration(t)
	logger := logrus.New()
	ctx := context.Background()
	customer := seedCustomer(t, "No Row Customer")

	db := config.GetDB()
	tx := db.Begin()
	_, err := workflow.PostCreditPayment(tx, logger, customer.ID, nil,
		dec(t, "50"), models.PaymentMethodCash, "", 1)
	tx.Rollback()
	if !utils.IsConsistencyError(err) {
		t.Fatalf("want consistency error, got %v", err)
	}

	txns, err := models.GetCreditTransactions(ctx, customer.ID)
	if err != nil && !utils.IsNotFoundError(err) {
		t.Fatalf("GetCreditTransactions: %v", err)
	}
	if len(txns) != 0 {
		t.Fatalf("rejected payment left %d transaction rows", len(txns))
	}
}

func TestOversell_ClampsAtZero(t *testing.T) {
	requireIntegration(t)
	logger := logrus.New()
	ctx := context.Background()

	product := seedProduct(t, testSku("clamp"), "10", "0", 3)

	_, err := workflow.CreateInvoice(ctx, logger, 1, &models.NewInvoice{
		PaymentMethod: models.PaymentMethodCash,
		Items:         []models.NewInvoiceItem{{ProductID: product.ID, Quantity: 5}},
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}

	refreshed, err := models.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if refreshed.CurrentStock != 0 {
		t.Fatalf("current_stock = %d, want 0", refreshed.CurrentStock)
	}

	movements, err := models.GetInventoryTransactions(ctx, product.ID, 10)
	if err != nil {
		t.Fatalf("GetInventoryTransactions: %v", err)
	}
	if len(movements) == 0 {
		t.Fatal("no inventory movement recorded")
	}
	if movements[0].QuantityChange != -3 {
		t.Fatalf("quantity_change = %d, want -3 (clamped)", movements[0].QuantityChange)
	}
	if movements[0].QuantityAfter != 0 {
		t.Fatalf("quantity_after = %d, want 0", movements[0].QuantityAfter)
	}
}

func TestCancelInvoice_TerminalWithoutCompensation(t *testing.T) {
	requireIntegration(t)
	logger := logrus.New()
	ctx := context.Background()

	product := seedProduct(t, testSku("cancel"), "50", "0", 10)
	customer := seedCustomer(t, "Cancel Customer")

	invoice, err := workflow.CreateInvoice(ctx, logger, 1, &models.NewInvoice{
		CustomerID:    &customer.ID,
		PaymentMethod: models.PaymentMethodCredit,
		Items:         []models.NewInvoiceItem{{ProductID: product.ID, Quantity: 4}},
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	rowsBefore := invoiceDayBookRows(t, invoice.ID)

	invoice, err = workflow.CancelInvoice(ctx, logger, invoice.ID, 1)
	if err != nil {
		t.Fatalf("CancelInvoice: %v", err)
	}
	if invoice.Status != models.InvoiceStatusCancelled {
		t.Fatalf("status = %s, want cancelled", invoice.Status)
	}

	// No compensation: stock, credit and daybook stay exactly as the sale
	// left them. Reversal goes through an explicit return.
	refreshed, err := models.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if refreshed.CurrentStock != 6 {
		t.Fatalf("current_stock = %d, want 6 (no restore on cancel)", refreshed.CurrentStock)
	}

	credit, err := models.GetCustomerCredit(ctx, customer.ID)
	if err != nil {
		t.Fatalf("GetCustomerCredit: %v", err)
	}
	if !credit.Balance.Equal(dec(t, "200")) {
		t.Fatalf("credit balance = %s, want 200 (no adjustment on cancel)", credit.Balance)
	}

	rowsAfter := invoiceDayBookRows(t, invoice.ID)
	if len(rowsAfter) != len(rowsBefore) {
		t.Fatalf("cancel changed daybook row count: %d -> %d", len(rowsBefore), len(rowsAfter))
	}
	for i := range rowsAfter {
		if !rowsAfter[i].DebitAmount.Equal(rowsBefore[i].DebitAmount) ||
			!rowsAfter[i].CreditAmount.Equal(rowsBefore[i].CreditAmount) {
			t.Fatalf("cancel changed daybook row %d", rowsAfter[i].ID)
		}
	}

	// Payments on a cancelled invoice are refused.
	_, err = workflow.ProcessPayment(ctx, logger, invoice.ID, 1, &workflow.PaymentInput{
		Amount: dec(t, "10"),
		Method: models.PaymentMethodCash,
	})
	if !utils.IsConsistencyError(err) {
		t.Fatalf("want consistency error paying cancelled invoice, got %v", err)
	}

	// Cancelling twice is rejected.
	_, err = workflow.CancelInvoice(ctx, logger, invoice.ID, 1)
	if !utils.IsConsistencyError(err) {
		t.Fatalf("want consistency error on double cancel, got %v", err)
	}
}

func TestRebalanceDayBook_RepairsDrift(t *testing.T) {
	requireIntegration(t)
	logger := logrus.New()
	ctx := context.Background()

	product := seedProduct(t, testSku("drift"), "25", "0", 10)
	invoice, err := workflow.CreateInvoice(ctx, logger, 1, &models.NewInvoice{
		PaymentMethod: models.PaymentMethodCash,
		Items:         []models.NewInvoiceItem{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}

	// Corrupt the stored balance out of band.
	rows := invoiceDayBookRows(t, invoice.ID)
	err = config.GetDB().Model(rows[0]).Update("balance_amount", dec(t, "999999")).Error
	if err != nil {
		t.Fatalf("corrupt row: %v", err)
	}

	fixed, err := workflow.RebalanceDayBook(ctx, logger)
	if err != nil {
		t.Fatalf("RebalanceDayBook: %v", err)
	}
	if fixed < 1 {
		t.Fatalf("fixed = %d, want at least 1", fixed)
	}

	ok, err := workflow.VerifyInvoiceProjection(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("VerifyInvoiceProjection: %v", err)
	}
	if !ok {
		t.Fatal("projection still inconsistent after rebalance")
	}
}

func TestConcurrentInvoices_DistinctNumbersAndConsistentBook(t *testing.T) {
	requireIntegration(t)
	logger := logrus.New()
	ctx := context.Background()

	product := seedProduct(t, testSku("race"), "10", "0", 1000)

	const n = 8
	var wg sync.WaitGroup
	invoices := make([]*models.Invoice, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			invoices[i], errs[i] = workflow.CreateInvoice(ctx, logger, 1, &models.NewInvoice{
				PaymentMethod: models.PaymentMethodCash,
				Items:         []models.NewInvoiceItem{{ProductID: product.ID, Quantity: 1}},
			})
		}(i)
	}
	wg.Wait()

	// Every settlement succeeds with its own number; the allocator retries
	// transient collisions internally.
	numbers := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("CreateInvoice[%d]: %v", i, errs[i])
		}
		if numbers[invoices[i].InvoiceNumber] {
			t.Fatalf("duplicate invoice number %s", invoices[i].InvoiceNumber)
		}
		numbers[invoices[i].InvoiceNumber] = true
	}

	// The whole balance chain still holds: every row's balance is the
	// previous balance plus debit minus credit.
	var rows []*models.DayBookEntry
	if err := config.GetDB().Order("id").Find(&rows).Error; err != nil {
		t.Fatalf("load daybook: %v", err)
	}
	balance := decimal.Zero
	for _, row := range rows {
		balance = balance.Add(row.DebitAmount).Sub(row.CreditAmount)
		if !row.BalanceAmount.Equal(balance) {
			t.Fatalf("balance chain broken at row %d: stored %s, computed %s",
				row.ID, row.BalanceAmount, balance)
		}
	}

	for _, inv := range invoices {
		ok, err := workflow.VerifyInvoiceProjection(ctx, inv.ID)
		if err != nil {
			t.Fatalf("VerifyInvoiceProjection: %v", err)
		}
		if !ok {
			t.Fatalf("invoice %s projected inconsistently", inv.InvoiceNumber)
		}
	}
}
