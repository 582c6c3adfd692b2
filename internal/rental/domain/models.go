package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type RentalStatus string

const (
	RentalStatusActive     RentalStatus = "ACTIVE"
	RentalStatusEnded      RentalStatus = "ENDED"
	RentalStatusTerminated RentalStatus = "TERMINATED"
)

type PaymentInterval string

const (
	IntervalMonthly   PaymentInterval = "MONTHLY"
	IntervalQuarterly PaymentInterval = "QUARTERLY"
	IntervalYearly    PaymentInterval = "YEARLY"
)

// Months returns the number of billed months per invoice period.
func (p PaymentInterval) Months() int {
	switch p {
	case IntervalQuarterly:
		return 3
	case IntervalYearly:
		return 12
	default:
		return 1
	}
}

func (p PaymentInterval) Valid() bool {
	switch p {
	case IntervalMonthly, IntervalQuarterly, IntervalYearly:
		return true
	}
	return false
}

// Rental binds a tenant to a room for a period. RentAmount is the monthly
// rent in cents. A self-managed electricity meter excludes the rental from
// electricity proration.
type Rental struct {
	ID                     snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID               snowflake.ID    `gorm:"not null;index" json:"tenant_id"`
	RoomID                 snowflake.ID    `gorm:"not null;index" json:"room_id"`
	RentAmount             int64           `gorm:"column:rent_amount;not null" json:"rent_amount"`
	PaymentInterval        PaymentInterval `gorm:"column:payment_interval;type:text;not null" json:"payment_interval"`
	IncludeTax             bool            `gorm:"column:include_tax;not null;default:true" json:"include_tax"`
	TaxPercent             float64         `gorm:"column:tax_percent;not null;default:15" json:"tax_percent"`
	IncludeWater           bool            `gorm:"column:include_water;not null;default:false" json:"include_water"`
	IncludeElectricity     bool            `gorm:"column:include_electricity;not null;default:false" json:"include_electricity"`
	IncludeGenerator       bool            `gorm:"column:include_generator;not null;default:false" json:"include_generator"`
	IncludeService         bool            `gorm:"column:include_service;not null;default:false" json:"include_service"`
	SelfManagedElectricity bool            `gorm:"column:self_managed_electricity;not null;default:false" json:"self_managed_electricity"`
	StartDate              time.Time       `gorm:"column:start_date;not null" json:"start_date"`
	EndDate                time.Time       `gorm:"column:end_date;not null;index" json:"end_date"`
	Status                 RentalStatus    `gorm:"type:text;not null;default:'ACTIVE';index" json:"status"`
	TerminatedAt           *time.Time      `gorm:"column:terminated_at" json:"terminated_at,omitempty"`
	CreatedAt              time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt              time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Rental) TableName() string { return "rentals" }
