package handlers

import (
	"net/http"
	"strconv"

	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/config"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/middlewares"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/models"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/workflow"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func CreateCustomer(c *gin.Context) {
	var input models.NewCustomer
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	customer, err := models.CreateCustomer(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func GetCustomer(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer id"})
		return
	}
	customer, err := models.GetCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func GetCustomers(c *gin.Context) {
	customers, err := models.GetCustomers(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func GetCustomerCredit(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer id"})
		return
	}
	credit, err := models.GetCustomerCredit(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, credit)
}

func GetCreditTransactions(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer id"})
		return
	}
	txns, err := models.GetCreditTransactions(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txns)
}

type creditPaymentInput struct {
	Amount decimal.Decimal      `json:"amount" binding:"required"`
	Method models.PaymentMethod `json:"method" binding:"required"`
	Notes  string               `json:"notes"`
}

// PayCustomerCredit settles outstanding credit directly, outside any single
// invoice. Runs on its own transaction so the rejection path leaves nothing
// behind.
func PayCustomerCredit(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer id"})
		return
	}
	var input creditPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	claim := middlewares.CtxValue(c.Request.Context())

	db := config.GetDB()
	tx := db.WithContext(c.Request.Context()).Begin()
	if tx.Error != nil {
		respondError(c, tx.Error)
		return
	}
	txn, err := workflow.PostCreditPayment(tx, config.GetLogger(), id, nil,
		input.Amount, input.Method, input.Notes, claim.ID)
	if err != nil {
		tx.Rollback()
		respondError(c, err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}
