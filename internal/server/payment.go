package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/atriumhq/atrium/internal/payment/domain"
)

type listPaymentsQuery struct {
	PageToken        string `form:"page_token"`
	PageSize         int32  `form:"page_size"`
	TenantID         string `form:"tenant_id"`
	InvoiceID        string `form:"invoice_id"`
	UtilityInvoiceID string `form:"utility_invoice_id"`
	Status           string `form:"status"`
	Method           string `form:"method"`
}

type createPaymentRequest struct {
	InvoiceID        string `json:"invoice_id"`
	UtilityInvoiceID string `json:"utility_invoice_id"`
	TenantID         string `json:"tenant_id"`
	Amount           int64  `json:"amount"`
	Method           string `json:"method"`
	Reference        string `json:"reference"`
	ReceiptPath      string `json:"receipt_path"`
}

type rejectPaymentRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) ListPayments(c *gin.Context) {
	var query listPaymentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenantID, ok := enforceTenantScope(c, query.TenantID)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	resp, err := s.paymentSvc.List(c.Request.Context(), paymentdomain.ListPaymentRequest{
		PageToken:        strings.TrimSpace(query.PageToken),
		PageSize:         query.PageSize,
		TenantID:         tenantID,
		InvoiceID:        strings.TrimSpace(query.InvoiceID),
		UtilityInvoiceID: strings.TrimSpace(query.UtilityInvoiceID),
		Status:           strings.TrimSpace(query.Status),
		Method:           strings.TrimSpace(query.Method),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Payments, "page_info": resp.PageInfo})
}

func (s *Server) CreatePayment(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	// TENANT users may only record payments against their own tenant.
	tenantID, ok := enforceTenantScope(c, req.TenantID)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	payment, err := s.paymentSvc.Create(c.Request.Context(), paymentdomain.CreatePaymentRequest{
		InvoiceID:        strings.TrimSpace(req.InvoiceID),
		UtilityInvoiceID: strings.TrimSpace(req.UtilityInvoiceID),
		TenantID:         tenantID,
		Amount:           req.Amount,
		Method:           strings.TrimSpace(req.Method),
		Reference:        strings.TrimSpace(req.Reference),
		ReceiptPath:      strings.TrimSpace(req.ReceiptPath),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": payment})
}

func (s *Server) GetPaymentByID(c *gin.Context) {
	payment, err := s.paymentSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !tenantOwnsRow(c, payment.TenantID) {
		AbortWithError(c, ErrForbidden)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payment})
}

func (s *Server) ConfirmPayment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	payment, err := s.paymentSvc.Confirm(c.Request.Context(), paymentdomain.ConfirmPaymentRequest{
		ID:          strings.TrimSpace(c.Param("id")),
		ConfirmedBy: user.ID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payment})
}

func (s *Server) RejectPayment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req rejectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	payment, err := s.paymentSvc.Reject(c.Request.Context(), paymentdomain.RejectPaymentRequest{
		ID:         strings.TrimSpace(c.Param("id")),
		RejectedBy: user.ID,
		Reason:     strings.TrimSpace(req.Reason),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payment})
}
