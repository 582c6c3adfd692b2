package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Method string

const (
	MethodCash     Method = "CASH"
	MethodTransfer Method = "TRANSFER"
	MethodCheque   Method = "CHEQUE"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodTransfer, MethodCheque:
		return true
	}
	return false
}

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusRejected  Status = "REJECTED"
)

// Payment records money received against exactly one of a rent invoice
// or a utility invoice. Amount is in cents. Payments start PENDING and
// only count toward an invoice once an admin confirms them.
type Payment struct {
	ID               snowflake.ID  `gorm:"primaryKey" json:"id"`
	InvoiceID        *snowflake.ID `gorm:"column:invoice_id;index" json:"invoice_id,omitempty"`
	UtilityInvoiceID *snowflake.ID `gorm:"column:utility_invoice_id;index" json:"utility_invoice_id,omitempty"`
	TenantID         snowflake.ID  `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	Amount           int64         `gorm:"not null" json:"amount"`
	Method           Method        `gorm:"type:text;not null" json:"method"`
	Reference        string        `gorm:"type:text" json:"reference,omitempty"`
	Status           Status        `gorm:"type:text;not null;default:'PENDING';index" json:"status"`
	ReceiptPath      string        `gorm:"column:receipt_path" json:"receipt_path,omitempty"`
	RejectReason     string        `gorm:"column:reject_reason" json:"reject_reason,omitempty"`
	ConfirmedBy      *snowflake.ID `gorm:"column:confirmed_by" json:"confirmed_by,omitempty"`
	ConfirmedAt      *time.Time    `gorm:"column:confirmed_at" json:"confirmed_at,omitempty"`
	CreatedAt        time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }
