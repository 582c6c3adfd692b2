package repository

import (
	"context"

	"github.com/atriumhq/atrium/internal/bank/domain"
	"github.com/atriumhq/atrium/pkg/db/option"
	"github.com/atriumhq/atrium/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertAccount(ctx context.Context, db *gorm.DB, account *domain.BankAccount) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO bank_accounts (id, name, account_number, bank_name, balance, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID,
		account.Name,
		account.AccountNumber,
		account.BankName,
		account.Balance,
		account.Status,
		account.CreatedAt,
		account.UpdatedAt,
	).Error
}

func (r *repo) FindAccountByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.BankAccount, error) {
	var account domain.BankAccount
	err := db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repo) ListAccounts(ctx context.Context, db *gorm.DB, filter domain.ListAccountFilter, page pagination.Pagination) ([]*domain.BankAccount, error) {
	var accounts []*domain.BankAccount
	stmt := db.WithContext(ctx).Model(&domain.BankAccount{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repo) UpdateAccountFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	tx := db.WithContext(ctx).Model(&domain.BankAccount{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repo) AdjustBalance(ctx context.Context, db *gorm.DB, id snowflake.ID, delta int64) error {
	tx := db.WithContext(ctx).Exec(
		`UPDATE bank_accounts
		 SET balance = balance + ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND balance + ? >= 0`,
		delta, id, delta,
	)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repo) InsertTransaction(ctx context.Context, db *gorm.DB, transaction *domain.BankTransaction) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO bank_transactions (id, account_id, direction, amount, purpose, utility_expense_id, recorded_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		transaction.ID,
		transaction.AccountID,
		transaction.Direction,
		transaction.Amount,
		transaction.Purpose,
		transaction.UtilityExpenseID,
		transaction.RecordedBy,
		transaction.CreatedAt,
	).Error
}

func (r *repo) ListTransactions(ctx context.Context, db *gorm.DB, filter domain.ListTransactionFilter, page pagination.Pagination) ([]*domain.BankTransaction, error) {
	var transactions []*domain.BankTransaction
	stmt := db.WithContext(ctx).Model(&domain.BankTransaction{})
	if filter.AccountID != "" {
		stmt = stmt.Where("account_id = ?", filter.AccountID)
	}
	if filter.Direction != "" {
		stmt = stmt.Where("direction = ?", filter.Direction)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}
	return transactions, nil
}
