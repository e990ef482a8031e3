package handlers

import (
	"net/http"
	"strconv"

	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/config"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/middlewares"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/models"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/workflow"
	"github.com/gin-gonic/gin"
)

func CreateReturn(c *gin.Context) {
	var input models.NewReturn
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	claim := middlewares.CtxValue(c.Request.Context())
	ret, err := workflow.CreateReturn(c.Request.Context(), config.GetLogger(), claim.ID, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ret)
}

func GetReturn(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid return id"})
		return
	}
	ret, err := models.GetReturn(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ret)
}

func GetReturns(c *gin.Context) {
	var invoiceID *int
	if v := c.Query("invoice_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice_id"})
			return
		}
		invoiceID = &id
	}
	returns, err := models.GetReturns(c.Request.Context(), invoiceID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, returns)
}

func CompleteReturn(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid return id"})
		return
	}
	claim := middlewares.CtxValue(c.Request.Context())
	ret, err := workflow.CompleteReturn(c.Request.Context(), config.GetLogger(), id, claim.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ret)
}

type rejectReturnInput struct {
	Notes string `json:"notes"`
}

func RejectReturn(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid return id"})
		return
	}
	var input rejectReturnInput
	_ = c.ShouldBindJSON(&input)
	ret, err := workflow.RejectReturn(c.Request.Context(), config.GetLogger(), id, input.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ret)
}
