package repository

import (
	"context"
	"time"

	"github.com/atriumhq/atrium/internal/invoice/domain"
	"github.com/atriumhq/atrium/pkg/db/option"
	"github.com/atriumhq/atrium/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, inv *domain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO invoices (
			id, rental_id, tenant_id, paper_invoice_number, invoice_date,
			period_start, period_end, due_date,
			base_rent, tax_percent, tax_amount,
			withholding_rate, withholding_amount, total_amount,
			status, is_overdue, overdue_days, warning_sent,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID,
		inv.RentalID,
		inv.TenantID,
		inv.PaperInvoiceNumber,
		inv.InvoiceDate,
		inv.PeriodStart,
		inv.PeriodEnd,
		inv.DueDate,
		inv.BaseRent,
		inv.TaxPercent,
		inv.TaxAmount,
		inv.WithholdingRate,
		inv.WithholdingAmount,
		inv.TotalAmount,
		inv.Status,
		inv.IsOverdue,
		inv.OverdueDays,
		inv.WarningSent,
		inv.CreatedAt,
		inv.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := db.WithContext(ctx).Where("id = ?", id).First(&inv).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListInvoiceFilter, page pagination.Pagination) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	stmt := db.WithContext(ctx).Model(&domain.Invoice{})
	if filter.RentalID != "" {
		stmt = stmt.Where("rental_id = ?", filter.RentalID)
	}
	if filter.TenantID != "" {
		stmt = stmt.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.DueFrom != nil {
		stmt = stmt.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		stmt = stmt.Where("due_date <= ?", *filter.DueTo)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	tx := db.WithContext(ctx).Model(&domain.Invoice{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repo) ClaimUnpaidBatch(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM invoices
		 WHERE status IN ('UNPAID', 'OVERDUE')
		   AND due_date < ?
		   AND (last_checked_at IS NULL OR last_checked_at < ?)
		 ORDER BY due_date ASC
		 LIMIT ?
		 FOR UPDATE SKIP LOCKED`,
		now, now, limit,
	).Scan(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) DueWithin(ctx context.Context, db *gorm.DB, now time.Time, window time.Duration) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	err := db.WithContext(ctx).
		Where("status = ?", domain.InvoiceStatusUnpaid).
		Where("due_date >= ? AND due_date < ?", now, now.Add(window)).
		Order("due_date asc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) OverdueByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("status = ?", domain.InvoiceStatusOverdue).
		Order("due_date asc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) ConfirmedPaymentTotal(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) FROM payments
		 WHERE invoice_id = ? AND status = 'CONFIRMED'`,
		invoiceID,
	).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
