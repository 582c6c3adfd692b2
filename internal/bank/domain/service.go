package domain

import (
	"context"
	"errors"

	"github.com/atriumhq/atrium/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
)

type CreateAccountRequest struct {
	Name          string
	AccountNumber string
	BankName      string
	// OpeningBalance seeds the balance without a transaction row.
	OpeningBalance int64
}

type UpdateAccountRequest struct {
	ID       string
	Name     *string
	BankName *string
	Status   *string
}

type ListAccountRequest struct {
	PageToken string
	PageSize  int32
	Status    string
}

type ListAccountResponse struct {
	pagination.PageInfo
	Accounts []BankAccount `json:"accounts"`
}

type RecordTransactionRequest struct {
	AccountID        string
	Direction        string
	Amount           int64
	Purpose          string
	UtilityExpenseID string
	RecordedBy       snowflake.ID
}

type ListTransactionRequest struct {
	PageToken string
	PageSize  int32
	AccountID string
	Direction string
}

type ListTransactionResponse struct {
	pagination.PageInfo
	Transactions []BankTransaction `json:"transactions"`
}

type Service interface {
	CreateAccount(context.Context, CreateAccountRequest) (BankAccount, error)
	UpdateAccount(context.Context, UpdateAccountRequest) (BankAccount, error)
	ListAccounts(context.Context, ListAccountRequest) (ListAccountResponse, error)
	GetAccount(context.Context, string) (BankAccount, error)

	// RecordTransaction adjusts the account balance in the same
	// database transaction. Withdrawals must not overdraw the account.
	RecordTransaction(context.Context, RecordTransactionRequest) (BankTransaction, error)
	ListTransactions(context.Context, ListTransactionRequest) (ListTransactionResponse, error)
}

var (
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidAccount    = errors.New("invalid_account_number")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidDirection  = errors.New("invalid_direction")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("not_found")
	ErrDuplicateAccount  = errors.New("duplicate_account")
	ErrAccountInactive   = errors.New("account_inactive")
	ErrInsufficientFunds = errors.New("insufficient_funds")
	ErrNonzeroBalance    = errors.New("nonzero_balance")
	ErrExpenseUnknown    = errors.New("expense_not_found")
)
