package workflow

import (
	"testing"

	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/models"
	"github.com/shopspring/decimal"
)

// NOTE: These tests are intentionally DB-free. They validate the projection
// contract itself: what rows an invoice state maps to, and that re-deriving
// from the same state is stable. The transactional upsert on top of this is
// covered by the integration tests.

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func invoiceFixture(method models.PaymentMethod, total, paid string) *models.Invoice {
	totalAmount := d(total)
	paidAmount := d(paid)
	return &models.Invoice{
		ID:            1,
		InvoiceNumber: "INV-20250307-0001",
		PaymentMethod: method,
		Status:        models.DeriveStatus(totalAmount, paidAmount),
		TotalAmount:   totalAmount,
		PaidAmount:    paidAmount,
		BalanceAmount: totalAmount.Sub(paidAmount),
	}
}

func TestBuildInvoiceEntries_CounterSaleCollapsesToNetZero(t *testing.T) {
	for _, method := range []models.PaymentMethod{models.PaymentMethodCash, models.PaymentMethodCard, models.PaymentMethodUpi} {
		entries := BuildInvoiceEntries(invoiceFixture(method, "590", "590"))
		if len(entries) != 1 {
			t.Fatalf("%s: want 1 entry, got %d", method, len(entries))
		}
		e := entries[0]
		if e.EntryType != models.DayBookEntryTypeSale {
			t.Fatalf("%s: want sale entry, got %s", method, e.EntryType)
		}
		if !e.Debit.Equal(d("590")) || !e.Credit.Equal(d("590")) {
			t.Fatalf("%s: want net-zero 590/590, got %s/%s", method, e.Debit, e.Credit)
		}
	}
}

func TestBuildInvoiceEntries_CreditSaleProjectsSaleOnly(t *testing.T) {
	entries := BuildInvoiceEntries(invoiceFixture(models.PaymentMethodCredit, "1000", "0"))
	if len(entries) != 1 {
		t.Fatalf("want 1 entry, got %d", len(entries))
	}
	if entries[0].EntryType != models.DayBookEntryTypeSale {
		t.Fatalf("want sale, got %s", entries[0].EntryType)
	}
	if !entries[0].Debit.Equal(d("1000")) || !entries[0].Credit.IsZero() {
		t.Fatalf("want 1000/0, got %s/%s", entries[0].Debit, entries[0].Credit)
	}
}

func TestBuildInvoiceEntries_PartialPaymentAddsPaymentRow(t *testing.T) {
	entries := BuildInvoiceEntries(invoiceFixture(models.PaymentMethodCredit, "1000", "400"))
	if len(entries) != 2 {
		t.Fatalf("want 2 entries, got %d", len(entries))
	}
	sale, payment := entries[0], entries[1]
	if sale.EntryType != models.DayBookEntryTypeSale || payment.EntryType != models.DayBookEntryTypePayment {
		t.Fatalf("want sale+payment, got %s+%s", sale.EntryType, payment.EntryType)
	}
	if !sale.Debit.Equal(d("1000")) || !sale.Credit.IsZero() {
		t.Fatalf("sale row: want 1000/0, got %s/%s", sale.Debit, sale.Credit)
	}
	if !payment.Debit.IsZero() || !payment.Credit.Equal(d("400")) {
		t.Fatalf("payment row: want 0/400, got %s/%s", payment.Debit, payment.Credit)
	}
	// Net across the rows must equal the outstanding balance.
	net := sale.Debit.Sub(sale.Credit).Add(payment.Debit).Sub(payment.Credit)
	if !net.Equal(d("600")) {
		t.Fatalf("net = %s, want 600", net)
	}
}

func TestBuildInvoiceEntries_ImmediateMethodPartiallyPaid(t *testing.T) {
	// A cash invoice not settled in full does not collapse; it behaves like
	// any other open invoice.
	entries := BuildInvoiceEntries(invoiceFixture(models.PaymentMethodCash, "1000", "999.9999"))
	if len(entries) != 2 {
		t.Fatalf("want 2 entries, got %d", len(entries))
	}
}

func TestBuildInvoiceEntries_CreditSaleFullyPaidKeepsPaymentRow(t *testing.T) {
	// Full settlement of a credit sale never collapses: the sale and the
	// later payment are distinct daybook events.
	entries := BuildInvoiceEntries(invoiceFixture(models.PaymentMethodCredit, "1000", "1000"))
	if len(entries) != 2 {
		t.Fatalf("want 2 entries, got %d", len(entries))
	}
	if !entries[1].Credit.Equal(d("1000")) {
		t.Fatalf("payment row credit = %s, want 1000", entries[1].Credit)
	}
}

func TestBuildInvoiceEntries_CancelledProjectsNothing(t *testing.T) {
	invoice := invoiceFixture(models.PaymentMethodCash, "1000", "0")
	invoice.Status = models.InvoiceStatusCancelled
	if entries := BuildInvoiceEntries(invoice); len(entries) != 0 {
		t.Fatalf("cancelled invoice projected %d entries", len(entries))
	}
}

func TestBuildInvoiceEntries_Deterministic(t *testing.T) {
	invoice := invoiceFixture(models.PaymentMethodCredit, "750.5000", "250")
	first := BuildInvoiceEntries(invoice)
	second := BuildInvoiceEntries(invoice)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].EntryType != second[i].EntryType ||
			!first[i].Debit.Equal(second[i].Debit) ||
			!first[i].Credit.Equal(second[i].Credit) {
			t.Fatalf("entry %d differs between runs", i)
		}
	}
}

func TestRunningBalanceChain(t *testing.T) {
	// Simulate the append path: every appended row must satisfy
	// balance = prev + debit - credit.
	type movement struct{ debit, credit string }
	movements := []movement{
		{"590", "590"},
		{"1000", "0"},
		{"0", "400"},
		{"0", "235.5"},
		{"120.75", "0"},
	}
	balance := decimal.Zero
	var balances []decimal.Decimal
	for _, m := range movements {
		balance = balance.Add(d(m.debit)).Sub(d(m.credit))
		balances = append(balances, balance)
	}
	want := []string{"0", "1000", "600", "364.5", "485.25"}
	for i, w := range want {
		if !balances[i].Equal(d(w)) {
			t.Fatalf("row %d balance = %s, want %s", i, balances[i], w)
		}
	}
}
