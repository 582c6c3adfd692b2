package domain

import (
	"context"
	"errors"
	"time"

	"github.com/atriumhq/atrium/pkg/db/pagination"
)

type ListInvoiceRequest struct {
	PageToken string
	PageSize  int32
	RentalID  string
	TenantID  string
	Status    string
	DueFrom   *time.Time
	DueTo     *time.Time
}

type ListInvoiceFilter struct {
	RentalID string
	TenantID string
	Status   string
	DueFrom  *time.Time
	DueTo    *time.Time
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type GenerateInvoiceRequest struct {
	RentalID           string
	PeriodStart        time.Time
	PaperInvoiceNumber string
	// DueInDays defaults to 14 when zero.
	DueInDays int
}

type Service interface {
	// Generate creates the rent invoice for one billing period of a
	// rental. Regenerating the same period returns ErrDuplicatePeriod.
	Generate(context.Context, GenerateInvoiceRequest) (Invoice, error)
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
	GetByID(context.Context, string) (Invoice, error)
}

var (
	ErrInvalidRental    = errors.New("invalid_rental")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidPeriod    = errors.New("invalid_period")
	ErrNotFound         = errors.New("not_found")
	ErrDuplicatePeriod  = errors.New("duplicate_period")
	ErrRentalNotActive  = errors.New("rental_not_active")
	ErrInvalidPageToken = errors.New("invalid_page_token")
)
