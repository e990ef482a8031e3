package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/config"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/middlewares"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/models"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/workflow"
	"github.com/gin-gonic/gin"
)

func CreateInvoice(c *gin.Context) {
	var input models.NewInvoice
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	claim := middlewares.CtxValue(c.Request.Context())
	invoice, err := workflow.CreateInvoice(c.Request.Context(), config.GetLogger(), claim.ID, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func GetInvoice(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice id"})
		return
	}
	invoice, err := models.GetInvoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func GetInvoices(c *gin.Context) {
	filter := models.InvoiceFilter{Limit: 50}
	if v := c.Query("customer_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer_id"})
			return
		}
		filter.CustomerID = &id
	}
	if v := c.Query("status"); v != "" {
		filter.Status = models.InvoiceStatus(v)
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
			return
		}
		filter.FromDate = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
			return
		}
		end := t.AddDate(0, 0, 1)
		filter.ToDate = &end
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filter.Offset = n
		}
	}
	invoices, err := models.GetInvoices(c.Request.Context(), &filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func PayInvoice(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice id"})
		return
	}
	var input workflow.PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	claim := middlewares.CtxValue(c.Request.Context())
	invoice, err := workflow.ProcessPayment(c.Request.Context(), config.GetLogger(), id, claim.ID, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func CancelInvoice(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice id"})
		return
	}
	claim := middlewares.CtxValue(c.Request.Context())
	invoice, err := workflow.CancelInvoice(c.Request.Context(), config.GetLogger(), id, claim.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}
