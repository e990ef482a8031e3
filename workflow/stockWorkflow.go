package workflow

import (
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/config"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// saleDeduction clamps a requested deduction to what is on hand, so the
// stored quantity never goes negative.
func saleDeduction(onHand, requested int) int {
	if requested > onHand {
		return onHand
	}
	return requested
}

// DeductStockForSale walks the invoice items and moves stock out of the
// default warehouse. Quantity clamps at zero: an oversell deducts what is on
// hand and the shortfall shows up as a smaller quantity_change on the
// inventory transaction than the quantity sold. Untracked products are
// skipped entirely.
func DeductStockForSale(tx *gorm.DB, logger *logrus.Logger, invoice *models.Invoice, userID int) error {
	warehouse, err := models.GetOrCreateDefaultWarehouse(tx)
	if err != nil {
		config.LogError(logger, "stockWorkflow.go", "DeductStockForSale", "GetOrCreateDefaultWarehouse", invoice.ID, err)
		return err
	}

	for _, item := range invoice.Items {
		var product models.Product
		if err := tx.First(&product, item.ProductID).Error; err != nil {
			config.LogError(logger, "stockWorkflow.go", "DeductStockForSale", "load product", item.ProductID, err)
			return err
		}
		if !product.Trackable() {
			continue
		}

		stock, err := models.LockStock(tx, item.ProductID, warehouse.ID)
		if err != nil {
			config.LogError(logger, "stockWorkflow.go", "DeductStockForSale", "LockStock", item.ProductID, err)
			return err
		}

		deducted := saleDeduction(stock.Quantity, item.Quantity)
		if deducted < item.Quantity {
			logger.WithFields(logrus.Fields{
				"product_id": item.ProductID,
				"on_hand":    stock.Quantity,
				"sold":       item.Quantity,
			}).Warn("oversell clamped to on-hand quantity")
		}
		newQuantity := stock.Quantity - deducted

		if err := tx.Model(stock).Update("quantity", newQuantity).Error; err != nil {
			config.LogError(logger, "stockWorkflow.go", "DeductStockForSale", "update stock", stock.ID, err)
			return err
		}
		err = tx.Model(&models.Product{}).Where("id = ?", item.ProductID).
			Update("current_stock", gorm.Expr("GREATEST(current_stock - ?, 0)", item.Quantity)).Error
		if err != nil {
			config.LogError(logger, "stockWorkflow.go", "DeductStockForSale", "update product stock", item.ProductID, err)
			return err
		}

		invoiceID := invoice.ID
		movement := models.InventoryTransaction{
			ProductID:       item.ProductID,
			WarehouseID:     warehouse.ID,
			TransactionType: models.InventoryTransactionTypeSale,
			QuantityChange:  -deducted,
			QuantityAfter:   newQuantity,
			UnitCost:        product.PurchasePrice,
			ReferenceType:   "invoice",
			ReferenceID:     &invoiceID,
			CreatedByID:     &userID,
		}
		if err := tx.Create(&movement).Error; err != nil {
			config.LogError(logger, "stockWorkflow.go", "DeductStockForSale", "create movement", item.ProductID, err)
			return err
		}
	}
	return nil
}

// RestoreStock puts quantity back for one product, recording the movement
// against the given reference. Used by return completion and invoice
// cancellation.
func RestoreStock(tx *gorm.DB, logger *logrus.Logger, productID, quantity int,
	movementType models.InventoryTransactionType, referenceType string, referenceID int, userID int) error {

	if quantity <= 0 {
		return nil
	}
	warehouse, err := models.GetOrCreateDefaultWarehouse(tx)
	if err != nil {
		config.LogError(logger, "stockWorkflow.go", "RestoreStock", "GetOrCreateDefaultWarehouse", productID, err)
		return err
	}
	stock, err := models.LockStock(tx, productID, warehouse.ID)
	if err != nil {
		config.LogError(logger, "stockWorkflow.go", "RestoreStock", "LockStock", productID, err)
		return err
	}

	newQuantity := stock.Quantity + quantity
	if err := tx.Model(stock).Update("quantity", newQuantity).Error; err != nil {
		config.LogError(logger, "stockWorkflow.go", "RestoreStock", "update stock", stock.ID, err)
		return err
	}
	err = tx.Model(&models.Product{}).Where("id = ?", productID).
		Update("current_stock", gorm.Expr("current_stock + ?", quantity)).Error
	if err != nil {
		config.LogError(logger, "stockWorkflow.go", "RestoreStock", "update product stock", productID, err)
		return err
	}

	movement := models.InventoryTransaction{
		ProductID:       productID,
		WarehouseID:     warehouse.ID,
		TransactionType: movementType,
		QuantityChange:  quantity,
		QuantityAfter:   newQuantity,
		ReferenceType:   referenceType,
		ReferenceID:     &referenceID,
		CreatedByID:     &userID,
	}
	if err := tx.Create(&movement).Error; err != nil {
		config.LogError(logger, "stockWorkflow.go", "RestoreStock", "create movement", productID, err)
		return err
	}
	return nil
}
