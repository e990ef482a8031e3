package models

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusPartial   InvoiceStatus = "partial"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodUpi    PaymentMethod = "upi"
	PaymentMethodCredit PaymentMethod = "credit"
	PaymentMethodMixed  PaymentMethod = "mixed"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodUpi, PaymentMethodCredit, PaymentMethodMixed:
		return true
	}
	return false
}

// IsImmediate reports whether the method settles at the counter; such invoices
// collapse to a single net-zero daybook row when fully paid on creation.
func (m PaymentMethod) IsImmediate() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodUpi:
		return true
	}
	return false
}

type DayBookEntryType string

const (
	DayBookEntryTypeSale    DayBookEntryType = "sale"
	DayBookEntryTypePayment DayBookEntryType = "payment"
	DayBookEntryTypeReturn  DayBookEntryType = "return"
	DayBookEntryTypeCredit  DayBookEntryType = "credit"
	DayBookEntryTypeExpense DayBookEntryType = "expense"
)

type CreditTransactionType string

const (
	CreditTransactionTypeCredit     CreditTransactionType = "credit"
	CreditTransactionTypePayment    CreditTransactionType = "payment"
	CreditTransactionTypeAdjustment CreditTransactionType = "adjustment"
)

type InventoryTransactionType string

const (
	InventoryTransactionTypePurchase   InventoryTransactionType = "purchase"
	InventoryTransactionTypeSale       InventoryTransactionType = "sale"
	InventoryTransactionTypeReturn     InventoryTransactionType = "return"
	InventoryTransactionTypeAdjustment InventoryTransactionType = "adjustment"
	InventoryTransactionTypeTransfer   InventoryTransactionType = "transfer"
	InventoryTransactionTypeDamage     InventoryTransactionType = "damage"
	InventoryTransactionTypeExpired    InventoryTransactionType = "expired"
)

type CustomerType string

const (
	CustomerTypeRegular   CustomerType = "regular"
	CustomerTypeVip       CustomerType = "vip"
	CustomerTypeWholesale CustomerType = "wholesale"
	CustomerTypeRetail    CustomerType = "retail"
)

type ReturnStatus string

const (
	ReturnStatusPending   ReturnStatus = "pending"
	ReturnStatusApproved  ReturnStatus = "approved"
	ReturnStatusRejected  ReturnStatus = "rejected"
	ReturnStatusCompleted ReturnStatus = "completed"
)

type ReturnReason string

const (
	ReturnReasonDefective    ReturnReason = "defective"
	ReturnReasonWrongItem    ReturnReason = "wrong_item"
	ReturnReasonDamaged      ReturnReason = "damaged"
	ReturnReasonNotSatisfied ReturnReason = "not_satisfied"
	ReturnReasonOther        ReturnReason = "other"
)

type RefundMethod string

const (
	RefundMethodCash   RefundMethod = "cash"
	RefundMethodCard   RefundMethod = "card"
	RefundMethodCredit RefundMethod = "credit"
)

// DocumentKind scopes number sequences per document family.
type DocumentKind string

const (
	DocumentKindInvoice DocumentKind = "invoice"
	DocumentKindReturn  DocumentKind = "return"
)

func (k DocumentKind) DefaultPrefix() string {
	switch k {
	case DocumentKindInvoice:
		return "INV"
	case DocumentKindReturn:
		return "RET"
	}
	return "DOC"
}
