package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type UtilityType string

const (
	UtilityWater       UtilityType = "WATER"
	UtilityElectricity UtilityType = "ELECTRICITY"
	UtilityGenerator   UtilityType = "GENERATOR"
	UtilityService     UtilityType = "SERVICE"
)

// AllUtilityTypes lists every prorated utility in billing order.
var AllUtilityTypes = []UtilityType{
	UtilityWater,
	UtilityElectricity,
	UtilityGenerator,
	UtilityService,
}

func (t UtilityType) Valid() bool {
	switch t {
	case UtilityWater, UtilityElectricity, UtilityGenerator, UtilityService:
		return true
	}
	return false
}

// IncludeColumn maps the utility to the rental column that opts a rental
// into its proration.
func (t UtilityType) IncludeColumn() string {
	switch t {
	case UtilityWater:
		return "include_water"
	case UtilityElectricity:
		return "include_electricity"
	case UtilityGenerator:
		return "include_generator"
	case UtilityService:
		return "include_service"
	}
	return ""
}

// UtilityExpense is a single recorded utility bill. Amount is in cents.
// Once a bank transaction references the expense it may no longer be
// edited or deleted.
type UtilityExpense struct {
	ID                snowflake.ID  `gorm:"primaryKey" json:"id"`
	Type              UtilityType   `gorm:"type:text;not null;index" json:"type"`
	Description       string        `gorm:"type:text" json:"description,omitempty"`
	Amount            int64         `gorm:"not null" json:"amount"`
	ExpenseDate       time.Time     `gorm:"column:expense_date;not null;index" json:"expense_date"`
	InvoicePath       string        `gorm:"column:invoice_path" json:"invoice_path,omitempty"`
	BankTransactionID *snowflake.ID `gorm:"column:bank_transaction_id;index" json:"bank_transaction_id,omitempty"`
	CreatedBy         string        `gorm:"column:created_by" json:"created_by,omitempty"`
	CreatedAt         time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (UtilityExpense) TableName() string { return "utility_expenses" }

// UtilityCharge aggregates one utility's expenses for one calendar month
// ("YYYY-MM"). The unique (type, month) pair keeps the monthly billing
// job idempotent.
type UtilityCharge struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Type        UtilityType  `gorm:"type:text;not null;uniqueIndex:ux_charge_type_month" json:"type"`
	Month       string       `gorm:"type:text;not null;uniqueIndex:ux_charge_type_month" json:"month"`
	TotalCost   int64        `gorm:"column:total_cost;not null" json:"total_cost"`
	Description string       `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (UtilityCharge) TableName() string { return "utility_charges" }

type UtilityInvoiceStatus string

const (
	UtilityInvoiceUnpaid UtilityInvoiceStatus = "UNPAID"
	UtilityInvoicePaid   UtilityInvoiceStatus = "PAID"
)

// UtilityInvoice is one rental's prorated share of a monthly charge. The
// unique (charge_id, rental_id) pair means a share is never recreated for
// the same period.
type UtilityInvoice struct {
	ID        snowflake.ID         `gorm:"primaryKey" json:"id"`
	ChargeID  snowflake.ID         `gorm:"column:charge_id;not null;uniqueIndex:ux_utility_invoice_charge_rental" json:"charge_id"`
	RentalID  snowflake.ID         `gorm:"column:rental_id;not null;uniqueIndex:ux_utility_invoice_charge_rental;index" json:"rental_id"`
	TenantID  snowflake.ID         `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	Amount    int64                `gorm:"not null" json:"amount"`
	Status    UtilityInvoiceStatus `gorm:"type:text;not null;default:'UNPAID';index" json:"status"`
	PaidAt    *time.Time           `gorm:"column:paid_at" json:"paid_at,omitempty"`
	CreatedAt time.Time            `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time            `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (UtilityInvoice) TableName() string { return "utility_invoices" }
