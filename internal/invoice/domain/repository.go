package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/atriumhq/atrium/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, filter ListInvoiceFilter, page pagination.Pagination) ([]*Invoice, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error

	// ClaimUnpaidBatch locks and returns a batch of not-yet-paid invoices
	// past their due date, skipping rows claimed by a concurrent scan.
	// Rows already checked at or after now are excluded, so repeated
	// calls within one scan drain rather than respin the set.
	ClaimUnpaidBatch(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]*Invoice, error)
	// DueWithin returns unpaid invoices whose due date falls in [now, now+window).
	DueWithin(ctx context.Context, db *gorm.DB, now time.Time, window time.Duration) ([]*Invoice, error)
	// OverdueByTenant returns the currently overdue, not fully paid
	// invoices for one tenant.
	OverdueByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]*Invoice, error)
	// ConfirmedPaymentTotal sums confirmed payments against a rent invoice.
	ConfirmedPaymentTotal(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) (int64, error)
}
