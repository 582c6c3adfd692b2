package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type InvoiceStatus string

const (
	InvoiceStatusUnpaid  InvoiceStatus = "UNPAID"
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
)

// Invoice is a rent invoice for one billing period of a rental. All
// amounts are in cents. The overdue fields are maintained by the overdue
// scanner; WarningSent gates duplicate escalation messages.
type Invoice struct {
	ID                 snowflake.ID  `gorm:"primaryKey" json:"id"`
	RentalID           snowflake.ID  `gorm:"not null;index;uniqueIndex:ux_invoice_rental_period" json:"rental_id"`
	TenantID           snowflake.ID  `gorm:"not null;index" json:"tenant_id"`
	PaperInvoiceNumber string        `gorm:"column:paper_invoice_number" json:"paper_invoice_number,omitempty"`
	InvoiceDate        time.Time     `gorm:"column:invoice_date;not null" json:"invoice_date"`
	PeriodStart        time.Time     `gorm:"column:period_start;not null;uniqueIndex:ux_invoice_rental_period" json:"period_start"`
	PeriodEnd          time.Time     `gorm:"column:period_end;not null" json:"period_end"`
	DueDate            time.Time     `gorm:"column:due_date;not null;index" json:"due_date"`
	BaseRent           int64         `gorm:"column:base_rent;not null" json:"base_rent"`
	TaxPercent         float64       `gorm:"column:tax_percent;not null" json:"tax_percent"`
	TaxAmount          int64         `gorm:"column:tax_amount;not null" json:"tax_amount"`
	WithholdingRate    float64       `gorm:"column:withholding_rate;not null" json:"withholding_rate"`
	WithholdingAmount  int64         `gorm:"column:withholding_amount;not null" json:"withholding_amount"`
	TotalAmount        int64         `gorm:"column:total_amount;not null" json:"total_amount"`
	Status             InvoiceStatus `gorm:"type:text;not null;default:'UNPAID';index" json:"status"`
	IsOverdue          bool          `gorm:"column:is_overdue;not null;default:false" json:"is_overdue"`
	OverdueDays        int           `gorm:"column:overdue_days;not null;default:0" json:"overdue_days"`
	OverdueSince       *time.Time    `gorm:"column:overdue_since" json:"overdue_since,omitempty"`
	WarningSent        bool          `gorm:"column:warning_sent;not null;default:false" json:"warning_sent"`
	LastCheckedAt      *time.Time    `gorm:"column:last_checked_at" json:"last_checked_at,omitempty"`
	PaidAt             *time.Time    `gorm:"column:paid_at" json:"paid_at,omitempty"`
	CreatedAt          time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Invoice) TableName() string { return "invoices" }
