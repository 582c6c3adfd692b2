package domain

import (
	"context"
	"time"

	"github.com/atriumhq/atrium/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListExpenseFilter struct {
	Type string
	From *time.Time
	To   *time.Time
}

type ListChargeFilter struct {
	Type  string
	Month string
}

type ListUtilityInvoiceFilter struct {
	ChargeID string
	RentalID string
	TenantID string
	Status   string
}

type Repository interface {
	InsertExpense(ctx context.Context, db *gorm.DB, expense *UtilityExpense) error
	FindExpenseByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*UtilityExpense, error)
	UpdateExpenseFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	DeleteExpense(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	ListExpenses(ctx context.Context, db *gorm.DB, filter ListExpenseFilter, page pagination.Pagination) ([]*UtilityExpense, error)
	// SumExpenses totals one utility's expenses over [from, to).
	SumExpenses(ctx context.Context, db *gorm.DB, utilityType UtilityType, from, to time.Time) (int64, error)

	InsertCharge(ctx context.Context, db *gorm.DB, charge *UtilityCharge) error
	FindChargeByTypeMonth(ctx context.Context, db *gorm.DB, utilityType UtilityType, month string) (*UtilityCharge, error)
	ListCharges(ctx context.Context, db *gorm.DB, filter ListChargeFilter, page pagination.Pagination) ([]*UtilityCharge, error)

	InsertInvoice(ctx context.Context, db *gorm.DB, invoice *UtilityInvoice) error
	FindInvoiceByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*UtilityInvoice, error)
	UpdateInvoiceFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	ListInvoices(ctx context.Context, db *gorm.DB, filter ListUtilityInvoiceFilter, page pagination.Pagination) ([]*UtilityInvoice, error)
	// ConfirmedPaymentTotal sums confirmed payments against a utility invoice.
	ConfirmedPaymentTotal(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) (int64, error)
}
