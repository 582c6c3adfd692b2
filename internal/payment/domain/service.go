package domain

import (
	"context"
	"errors"

	"github.com/atriumhq/atrium/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
)

// CreatePaymentRequest records a tenant payment. Exactly one of
// InvoiceID / UtilityInvoiceID must be set.
type CreatePaymentRequest struct {
	InvoiceID        string
	UtilityInvoiceID string
	TenantID         string
	Amount           int64
	Method           string
	Reference        string
	ReceiptPath      string
}

type ConfirmPaymentRequest struct {
	ID          string
	ConfirmedBy snowflake.ID
}

type RejectPaymentRequest struct {
	ID         string
	RejectedBy snowflake.ID
	Reason     string
}

type ListPaymentRequest struct {
	PageToken        string
	PageSize         int32
	TenantID         string
	InvoiceID        string
	UtilityInvoiceID string
	Status           string
	Method           string
}

type ListPaymentResponse struct {
	pagination.PageInfo
	Payments []Payment `json:"payments"`
}

type Service interface {
	Create(context.Context, CreatePaymentRequest) (Payment, error)
	// Confirm flips a pending payment to CONFIRMED and, in the same
	// transaction, marks the target invoice PAID once the confirmed
	// total covers it.
	Confirm(context.Context, ConfirmPaymentRequest) (Payment, error)
	Reject(context.Context, RejectPaymentRequest) (Payment, error)
	List(context.Context, ListPaymentRequest) (ListPaymentResponse, error)
	GetByID(context.Context, string) (Payment, error)
}

var (
	ErrInvalidTarget  = errors.New("invalid_payment_target")
	ErrInvalidAmount  = errors.New("invalid_amount")
	ErrInvalidMethod  = errors.New("invalid_method")
	ErrInvalidTenant  = errors.New("invalid_tenant")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("not_found")
	ErrInvoiceUnknown = errors.New("invoice_not_found")
	ErrNotPending     = errors.New("payment_not_pending")
)
