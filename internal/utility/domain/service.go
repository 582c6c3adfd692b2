package domain

import (
	"context"
	"errors"
	"time"

	"github.com/atriumhq/atrium/pkg/db/pagination"
)

type CreateExpenseRequest struct {
	Type        string
	Description string
	Amount      int64
	ExpenseDate time.Time
	InvoicePath string
	CreatedBy   string
}

type UpdateExpenseRequest struct {
	ID          string
	Description *string
	Amount      *int64
	ExpenseDate *time.Time
	InvoicePath *string
}

type ListExpenseRequest struct {
	PageToken string
	PageSize  int32
	Type      string
	From      *time.Time
	To        *time.Time
}

type ListExpenseResponse struct {
	pagination.PageInfo
	Expenses []UtilityExpense `json:"expenses"`
}

type CreateChargeRequest struct {
	Type        string
	Month       string
	TotalCost   int64
	Description string
}

type ListChargeRequest struct {
	PageToken string
	PageSize  int32
	Type      string
	Month     string
}

type ListChargeResponse struct {
	pagination.PageInfo
	Charges []UtilityCharge `json:"charges"`
}

type ListUtilityInvoiceRequest struct {
	PageToken string
	PageSize  int32
	ChargeID  string
	RentalID  string
	TenantID  string
	Status    string
}

type ListUtilityInvoiceResponse struct {
	pagination.PageInfo
	Invoices []UtilityInvoice `json:"invoices"`
}

// BillingResult reports what one monthly billing pass produced.
type BillingResult struct {
	Month           string         `json:"month"`
	ChargesCreated  int            `json:"charges_created"`
	InvoicesCreated int            `json:"invoices_created"`
	SkippedTypes    []UtilityType  `json:"skipped_types,omitempty"`
	Totals          map[UtilityType]int64 `json:"totals,omitempty"`
}

type Service interface {
	CreateExpense(context.Context, CreateExpenseRequest) (UtilityExpense, error)
	UpdateExpense(context.Context, UpdateExpenseRequest) (UtilityExpense, error)
	DeleteExpense(ctx context.Context, id string) error
	ListExpenses(context.Context, ListExpenseRequest) (ListExpenseResponse, error)

	// CreateCharge records a manual monthly charge. A charge already
	// recorded for the same type and month returns ErrDuplicateCharge.
	CreateCharge(context.Context, CreateChargeRequest) (UtilityCharge, error)
	ListCharges(context.Context, ListChargeRequest) (ListChargeResponse, error)

	ListInvoices(context.Context, ListUtilityInvoiceRequest) (ListUtilityInvoiceResponse, error)

	// BillMonth aggregates expenses for the month ("YYYY-MM"), upserts
	// per-type charges and prorates them across eligible rentals.
	// Re-running the same month only fills gaps.
	BillMonth(ctx context.Context, month string) (BillingResult, error)
}

var (
	ErrInvalidType     = errors.New("invalid_utility_type")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidMonth    = errors.New("invalid_month")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
	ErrDuplicateCharge = errors.New("duplicate_charge")
	ErrExpenseLocked   = errors.New("expense_locked")
)
