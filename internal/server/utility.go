package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	utilitydomain "github.com/atriumhq/atrium/internal/utility/domain"
)

type listExpensesQuery struct {
	PageToken string `form:"page_token"`
	PageSize  int32  `form:"page_size"`
	Type      string `form:"type"`
	From      string `form:"from"`
	To        string `form:"to"`
}

type createExpenseRequest struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	ExpenseDate time.Time `json:"expense_date"`
	InvoicePath string    `json:"invoice_path"`
}

type updateExpenseRequest struct {
	Description *string    `json:"description"`
	Amount      *int64     `json:"amount"`
	ExpenseDate *time.Time `json:"expense_date"`
	InvoicePath *string    `json:"invoice_path"`
}

type listChargesQuery struct {
	PageToken string `form:"page_token"`
	PageSize  int32  `form:"page_size"`
	Type      string `form:"type"`
	Month     string `form:"month"`
}

type createChargeRequest struct {
	Type        string `json:"type"`
	Month       string `json:"month"`
	TotalCost   int64  `json:"total_cost"`
	Description string `json:"description"`
}

type listUtilityInvoicesQuery struct {
	PageToken string `form:"page_token"`
	PageSize  int32  `form:"page_size"`
	ChargeID  string `form:"charge_id"`
	RentalID  string `form:"rental_id"`
	TenantID  string `form:"tenant_id"`
	Status    string `form:"status"`
}

func (s *Server) ListUtilityExpenses(c *gin.Context) {
	var query listExpensesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	from, err := parseOptionalTime(query.From, false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
		return
	}
	to, err := parseOptionalTime(query.To, true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
		return
	}

	resp, err := s.utilitySvc.ListExpenses(c.Request.Context(), utilitydomain.ListExpenseRequest{
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  query.PageSize,
		Type:      strings.TrimSpace(query.Type),
		From:      from,
		To:        to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Expenses, "page_info": resp.PageInfo})
}

func (s *Server) CreateUtilityExpense(c *gin.Context) {
	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	createdBy := ""
	if user, ok := currentUser(c); ok {
		createdBy = user.ID.String()
	}

	expense, err := s.utilitySvc.CreateExpense(c.Request.Context(), utilitydomain.CreateExpenseRequest{
		Type:        strings.TrimSpace(req.Type),
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		ExpenseDate: req.ExpenseDate,
		InvoicePath: strings.TrimSpace(req.InvoicePath),
		CreatedBy:   createdBy,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": expense})
}

func (s *Server) UpdateUtilityExpense(c *gin.Context) {
	var req updateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	expense, err := s.utilitySvc.UpdateExpense(c.Request.Context(), utilitydomain.UpdateExpenseRequest{
		ID:          strings.TrimSpace(c.Param("id")),
		Description: req.Description,
		Amount:      req.Amount,
		ExpenseDate: req.ExpenseDate,
		InvoicePath: req.InvoicePath,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": expense})
}

func (s *Server) DeleteUtilityExpense(c *gin.Context) {
	if err := s.utilitySvc.DeleteExpense(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) ListUtilityCharges(c *gin.Context) {
	var query listChargesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.utilitySvc.ListCharges(c.Request.Context(), utilitydomain.ListChargeRequest{
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  query.PageSize,
		Type:      strings.TrimSpace(query.Type),
		Month:     strings.TrimSpace(query.Month),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Charges, "page_info": resp.PageInfo})
}

func (s *Server) CreateUtilityCharge(c *gin.Context) {
	var req createChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	charge, err := s.utilitySvc.CreateCharge(c.Request.Context(), utilitydomain.CreateChargeRequest{
		Type:        strings.TrimSpace(req.Type),
		Month:       strings.TrimSpace(req.Month),
		TotalCost:   req.TotalCost,
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": charge})
}

func (s *Server) ListUtilityInvoices(c *gin.Context) {
	var query listUtilityInvoicesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenantID, ok := enforceTenantScope(c, query.TenantID)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	resp, err := s.utilitySvc.ListInvoices(c.Request.Context(), utilitydomain.ListUtilityInvoiceRequest{
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  query.PageSize,
		ChargeID:  strings.TrimSpace(query.ChargeID),
		RentalID:  strings.TrimSpace(query.RentalID),
		TenantID:  tenantID,
		Status:    strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Invoices, "page_info": resp.PageInfo})
}
