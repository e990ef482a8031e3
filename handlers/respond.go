package handlers

import (
	"net/http"

	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/config"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondError maps the posting engine's failure classes onto transport codes:
// validation 400, not found 404, consistency 422, exhausted retries 409.
// Anything else is a 500 with the detail kept out of the response body.
func respondError(c *gin.Context, err error) {
	switch {
	case utils.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case utils.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case utils.IsConsistencyError(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case utils.IsConflictError(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "retryable": true})
	default:
		config.GetLogger().WithField("path", c.FullPath()).WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func respondBindError(c *gin.Context, err error) {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": utils.ProcessValidationErrors(verrs)})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
