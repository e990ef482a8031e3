package workflow

import (
	"context"

	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/config"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/models"
	"github.com/sirupsen/logrus"
)

// Notifier receives settlement events after the transaction has committed.
// Delivery is best effort; a failure is logged and never unwinds the
// settlement.
type Notifier interface {
	InvoiceSettled(ctx context.Context, invoice *models.Invoice) error
}

var notifier Notifier = logNotifier{}

func SetNotifier(n Notifier) {
	if n != nil {
		notifier = n
	}
}

type logNotifier struct{}

func (logNotifier) InvoiceSettled(_ context.Context, invoice *models.Invoice) error {
	config.GetLogger().WithFields(logrus.Fields{
		"invoice_number": invoice.InvoiceNumber,
		"status":         invoice.Status,
		"total":          invoice.TotalAmount.String(),
		"paid":           invoice.PaidAmount.String(),
	}).Info("invoice settled")
	return nil
}

func notifyInvoiceSettled(ctx context.Context, logger *logrus.Logger, invoice *models.Invoice) {
	if err := notifier.InvoiceSettled(ctx, invoice); err != nil {
		config.LogError(logger, "notifier.go", "notifyInvoiceSettled", "deliver", invoice.InvoiceNumber, err)
	}
}
