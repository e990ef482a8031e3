package handlers

import (
	"net/http"
	"time"

	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/models"
	"github.com/gin-gonic/gin"
)

func daybookDate(c *gin.Context) (time.Time, bool) {
	v := c.Query("date")
	if v == "" {
		return time.Now(), true
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, want YYYY-MM-DD"})
		return time.Time{}, false
	}
	return t, true
}

func GetDayBook(c *gin.Context) {
	date, ok := daybookDate(c)
	if !ok {
		return
	}
	entries, err := models.GetDayBookEntries(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func GetDayBookSummary(c *gin.Context) {
	date, ok := daybookDate(c)
	if !ok {
		return
	}
	summary, err := models.GetDayBookSummary(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
