package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	bankdomain "github.com/atriumhq/atrium/internal/bank/domain"
	invoicedomain "github.com/atriumhq/atrium/internal/invoice/domain"
	"github.com/atriumhq/atrium/internal/providers/pdf"
	tenantdomain "github.com/atriumhq/atrium/internal/tenant/domain"
)

type listInvoicesQuery struct {
	PageToken string `form:"page_token"`
	PageSize  int32  `form:"page_size"`
	RentalID  string `form:"rental_id"`
	TenantID  string `form:"tenant_id"`
	Status    string `form:"status"`
	DueFrom   string `form:"due_from"`
	DueTo     string `form:"due_to"`
}

type generateInvoiceRequest struct {
	RentalID           string    `json:"rental_id"`
	PeriodStart        time.Time `json:"period_start"`
	PaperInvoiceNumber string    `json:"paper_invoice_number"`
	DueInDays          int       `json:"due_in_days"`
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query listInvoicesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenantID, ok := enforceTenantScope(c, query.TenantID)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	dueFrom, err := parseOptionalTime(query.DueFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("due_from", "invalid_due_from", "invalid due_from"))
		return
	}
	dueTo, err := parseOptionalTime(query.DueTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("due_to", "invalid_due_to", "invalid due_to"))
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  query.PageSize,
		RentalID:  strings.TrimSpace(query.RentalID),
		TenantID:  tenantID,
		Status:    strings.TrimSpace(query.Status),
		DueFrom:   dueFrom,
		DueTo:     dueTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Invoices, "page_info": resp.PageInfo})
}

func (s *Server) GenerateInvoice(c *gin.Context) {
	var req generateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	invoice, err := s.invoiceSvc.Generate(c.Request.Context(), invoicedomain.GenerateInvoiceRequest{
		RentalID:           strings.TrimSpace(req.RentalID),
		PeriodStart:        req.PeriodStart,
		PaperInvoiceNumber: strings.TrimSpace(req.PaperInvoiceNumber),
		DueInDays:          req.DueInDays,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": invoice})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	invoice, err := s.invoiceSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !tenantOwnsRow(c, invoice.TenantID) {
		AbortWithError(c, ErrForbidden)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

func (s *Server) RenderInvoicePDF(c *gin.Context) {
	if s.pdfProvider == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	invoice, err := s.invoiceSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !tenantOwnsRow(c, invoice.TenantID) {
		AbortWithError(c, ErrForbidden)
		return
	}

	data, err := s.buildInvoicePDFData(c, invoice)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	reader, err := s.pdfProvider.GenerateInvoice(c.Request.Context(), data)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filename := fmt.Sprintf("invoice-%s.pdf", invoice.ID.String())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.DataFromReader(http.StatusOK, -1, "application/pdf", reader, nil)
}

func (s *Server) buildInvoicePDFData(c *gin.Context, invoice invoicedomain.Invoice) (pdf.InvoiceData, error) {
	ctx := c.Request.Context()

	tenant, err := s.tenantSvc.GetByID(ctx, tenantdomain.GetTenantRequest{ID: invoice.TenantID.String()})
	if err != nil {
		return pdf.InvoiceData{}, err
	}

	roomLabel := ""
	if rental, err := s.rentalSvc.GetByID(ctx, invoice.RentalID.String()); err == nil {
		if room, err := s.roomSvc.GetByID(ctx, rental.RoomID.String()); err == nil {
			roomLabel = fmt.Sprintf("Room %s, floor %d", room.Number, room.Floor)
		}
	}

	number := strings.TrimSpace(invoice.PaperInvoiceNumber)
	if number == "" {
		number = invoice.ID.String()
	}

	data := pdf.InvoiceData{
		PropertyName:  s.cfg.AppName,
		InvoiceNumber: number,
		IssueDate:     invoice.InvoiceDate.Format("2006-01-02"),
		DueDate:       invoice.DueDate.Format("2006-01-02"),
		Period: fmt.Sprintf("%s to %s",
			invoice.PeriodStart.Format("2006-01-02"),
			invoice.PeriodEnd.Format("2006-01-02")),
		Status:      string(invoice.Status),
		TenantName:  tenant.Name,
		TenantEmail: tenant.Email,
		RoomLabel:   roomLabel,
		Items: []pdf.InvoiceItem{
			{Description: "Base rent", Amount: formatCents(invoice.BaseRent)},
		},
		BaseAmount:  formatCents(invoice.BaseRent),
		TaxAmount:   formatCents(invoice.TaxAmount),
		Withholding: formatCents(invoice.WithholdingAmount),
		Total:       formatCents(invoice.TotalAmount),
		AmountDue:   formatCents(invoice.TotalAmount),
		BankDetails: s.bankDetailsLine(c),
	}
	if invoice.TaxAmount != 0 {
		data.Items = append(data.Items, pdf.InvoiceItem{
			Description: fmt.Sprintf("Tax (%.1f%%)", invoice.TaxPercent),
			Amount:      formatCents(invoice.TaxAmount),
		})
	}
	if invoice.WithholdingAmount != 0 {
		data.Items = append(data.Items, pdf.InvoiceItem{
			Description: fmt.Sprintf("Withholding (%.1f%%)", invoice.WithholdingRate),
			Amount:      "-" + formatCents(invoice.WithholdingAmount),
		})
	}

	return data, nil
}

// bankDetailsLine picks the first active payout account for the invoice
// footer. A missing account just leaves the line empty.
func (s *Server) bankDetailsLine(c *gin.Context) string {
	resp, err := s.bankSvc.ListAccounts(c.Request.Context(), bankdomain.ListAccountRequest{
		PageSize: 1,
		Status:   string(bankdomain.AccountActive),
	})
	if err != nil || len(resp.Accounts) == 0 {
		return ""
	}
	account := resp.Accounts[0]
	return fmt.Sprintf("%s %s (%s)", account.BankName, account.AccountNumber, account.Name)
}

func formatCents(amount int64) string {
	return fmt.Sprintf("%.2f", float64(amount)/100)
}
