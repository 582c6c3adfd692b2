package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type AccountStatus string

const (
	AccountActive   AccountStatus = "ACTIVE"
	AccountInactive AccountStatus = "INACTIVE"
)

// BankAccount tracks one of the property's bank accounts. Balance is in
// cents and only moves through recorded transactions.
type BankAccount struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	Name          string        `gorm:"type:text;not null" json:"name"`
	AccountNumber string        `gorm:"column:account_number;type:text;not null;uniqueIndex" json:"account_number"`
	BankName      string        `gorm:"column:bank_name;type:text;not null" json:"bank_name"`
	Balance       int64         `gorm:"not null;default:0" json:"balance"`
	Status        AccountStatus `gorm:"type:text;not null;default:'ACTIVE';index" json:"status"`
	CreatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (BankAccount) TableName() string { return "bank_accounts" }

type Direction string

const (
	DirectionDeposit    Direction = "DEPOSIT"
	DirectionWithdrawal Direction = "WITHDRAWAL"
)

func (d Direction) Valid() bool {
	return d == DirectionDeposit || d == DirectionWithdrawal
}

// BankTransaction is one balance movement. An optional utility expense
// link marks the expense as paid from this account.
type BankTransaction struct {
	ID               snowflake.ID  `gorm:"primaryKey" json:"id"`
	AccountID        snowflake.ID  `gorm:"column:account_id;not null;index" json:"account_id"`
	Direction        Direction     `gorm:"type:text;not null" json:"direction"`
	Amount           int64         `gorm:"not null" json:"amount"`
	Purpose          string        `gorm:"type:text" json:"purpose,omitempty"`
	UtilityExpenseID *snowflake.ID `gorm:"column:utility_expense_id;index" json:"utility_expense_id,omitempty"`
	RecordedBy       *snowflake.ID `gorm:"column:recorded_by" json:"recorded_by,omitempty"`
	CreatedAt        time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (BankTransaction) TableName() string { return "bank_transactions" }
