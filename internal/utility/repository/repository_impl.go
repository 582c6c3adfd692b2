package repository

import (
	"context"
	"time"

	"github.com/atriumhq/atrium/internal/utility/domain"
	"github.com/atriumhq/atrium/pkg/db/option"
	"github.com/atriumhq/atrium/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertExpense(ctx context.Context, db *gorm.DB, expense *domain.UtilityExpense) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO utility_expenses (id, type, description, amount, expense_date, invoice_path, bank_transaction_id, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID,
		expense.Type,
		expense.Description,
		expense.Amount,
		expense.ExpenseDate,
		expense.InvoicePath,
		expense.BankTransactionID,
		expense.CreatedBy,
		expense.CreatedAt,
		expense.UpdatedAt,
	).Error
}

func (r *repo) FindExpenseByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.UtilityExpense, error) {
	var expense domain.UtilityExpense
	err := db.WithContext(ctx).Where("id = ?", id).First(&expense).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *repo) UpdateExpenseFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	tx := db.WithContext(ctx).Model(&domain.UtilityExpense{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repo) DeleteExpense(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	tx := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.UtilityExpense{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repo) ListExpenses(ctx context.Context, db *gorm.DB, filter domain.ListExpenseFilter, page pagination.Pagination) ([]*domain.UtilityExpense, error) {
	var expenses []*domain.UtilityExpense
	stmt := db.WithContext(ctx).Model(&domain.UtilityExpense{})
	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	if filter.From != nil {
		stmt = stmt.Where("expense_date >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("expense_date < ?", *filter.To)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&expenses).Error
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *repo) SumExpenses(ctx context.Context, db *gorm.DB, utilityType domain.UtilityType, from, to time.Time) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) FROM utility_expenses
		 WHERE type = ? AND expense_date >= ? AND expense_date < ?`,
		utilityType, from, to,
	).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repo) InsertCharge(ctx context.Context, db *gorm.DB, charge *domain.UtilityCharge) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO utility_charges (id, type, month, total_cost, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		charge.ID,
		charge.Type,
		charge.Month,
		charge.TotalCost,
		charge.Description,
		charge.CreatedAt,
		charge.UpdatedAt,
	).Error
}

func (r *repo) FindChargeByTypeMonth(ctx context.Context, db *gorm.DB, utilityType domain.UtilityType, month string) (*domain.UtilityCharge, error) {
	var charge domain.UtilityCharge
	err := db.WithContext(ctx).Where("type = ? AND month = ?", utilityType, month).First(&charge).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &charge, nil
}

func (r *repo) ListCharges(ctx context.Context, db *gorm.DB, filter domain.ListChargeFilter, page pagination.Pagination) ([]*domain.UtilityCharge, error) {
	var charges []*domain.UtilityCharge
	stmt := db.WithContext(ctx).Model(&domain.UtilityCharge{})
	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	if filter.Month != "" {
		stmt = stmt.Where("month = ?", filter.Month)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&charges).Error
	if err != nil {
		return nil, err
	}
	return charges, nil
}

func (r *repo) InsertInvoice(ctx context.Context, db *gorm.DB, invoice *domain.UtilityInvoice) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO utility_invoices (id, charge_id, rental_id, tenant_id, amount, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID,
		invoice.ChargeID,
		invoice.RentalID,
		invoice.TenantID,
		invoice.Amount,
		invoice.Status,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	).Error
}

func (r *repo) FindInvoiceByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.UtilityInvoice, error) {
	var invoice domain.UtilityInvoice
	err := db.WithContext(ctx).Where("id = ?", id).First(&invoice).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) UpdateInvoiceFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	tx := db.WithContext(ctx).Model(&domain.UtilityInvoice{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repo) ListInvoices(ctx context.Context, db *gorm.DB, filter domain.ListUtilityInvoiceFilter, page pagination.Pagination) ([]*domain.UtilityInvoice, error) {
	var invoices []*domain.UtilityInvoice
	stmt := db.WithContext(ctx).Model(&domain.UtilityInvoice{})
	if filter.ChargeID != "" {
		stmt = stmt.Where("charge_id = ?", filter.ChargeID)
	}
	if filter.RentalID != "" {
		stmt = stmt.Where("rental_id = ?", filter.RentalID)
	}
	if filter.TenantID != "" {
		stmt = stmt.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
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

func (r *repo) ConfirmedPaymentTotal(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) FROM payments
		 WHERE utility_invoice_id = ? AND status = 'CONFIRMED'`,
		invoiceID,
	).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
