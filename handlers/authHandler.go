package handlers

import (
	"net/http"

	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/models"
	"github.com/gin-gonic/gin"
)

func Login(c *gin.Context) {
	var input models.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	user, token, err := models.Authenticate(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}
