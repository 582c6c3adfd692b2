package domain

import (
	"context"

	"github.com/atriumhq/atrium/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListAccountFilter struct {
	Status string
}

type ListTransactionFilter struct {
	AccountID string
	Direction string
}

type Repository interface {
	InsertAccount(ctx context.Context, db *gorm.DB, account *BankAccount) error
	FindAccountByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*BankAccount, error)
	ListAccounts(ctx context.Context, db *gorm.DB, filter ListAccountFilter, page pagination.Pagination) ([]*BankAccount, error)
	UpdateAccountFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	// AdjustBalance applies a signed delta guarded against overdraw;
	// gorm.ErrRecordNotFound means the guard rejected the update.
	AdjustBalance(ctx context.Context, db *gorm.DB, id snowflake.ID, delta int64) error

	InsertTransaction(ctx context.Context, db *gorm.DB, transaction *BankTransaction) error
	ListTransactions(ctx context.Context, db *gorm.DB, filter ListTransactionFilter, page pagination.Pagination) ([]*BankTransaction, error)
}
