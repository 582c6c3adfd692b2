package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type triggerUtilityInvoicesRequest struct {
	// Month is "YYYY-MM"; empty defaults to the previous calendar month.
	Month string `json:"month"`
}

// TriggerOverdueScan runs one overdue sweep on demand.
func (s *Server) TriggerOverdueScan(c *gin.Context) {
	if s.scanner == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	batchSize := s.cfg.SchedulerBatchSize
	if batchSize <= 0 {
		batchSize = 50
	}

	result, err := s.scanner.Scan(c.Request.Context(), batchSize)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// TriggerUtilityInvoices bills one month on demand. Re-billing an
// already billed month only fills gaps.
func (s *Server) TriggerUtilityInvoices(c *gin.Context) {
	var req triggerUtilityInvoicesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	month := strings.TrimSpace(req.Month)
	if month == "" {
		now := time.Now().UTC()
		firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		month = firstOfMonth.AddDate(0, 0, -1).Format("2006-01")
	}

	result, err := s.utilitySvc.BillMonth(c.Request.Context(), month)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
