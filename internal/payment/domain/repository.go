package domain

import (
	"context"

	"github.com/atriumhq/atrium/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListPaymentFilter struct {
	TenantID         string
	InvoiceID        string
	UtilityInvoiceID string
	Status           string
	Method           string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	List(ctx context.Context, db *gorm.DB, filter ListPaymentFilter, page pagination.Pagination) ([]*Payment, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	// TransitionStatus updates the payment only while it still holds
	// the expected status; gorm.ErrRecordNotFound means it was already
	// moved by a concurrent request.
	TransitionStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from Status, fields map[string]any) error
}
