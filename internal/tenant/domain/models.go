package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type TenantStatus string

const (
	TenantStatusActive   TenantStatus = "ACTIVE"
	TenantStatusInactive TenantStatus = "INACTIVE"
)

// Tenant is a mall tenant. The overdue fields are a cache recomputed by the
// overdue scanner; the source of truth is the set of overdue invoices.
type Tenant struct {
	ID              snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name            string            `gorm:"not null" json:"name"`
	Email           string            `gorm:"not null;index" json:"email"`
	Phone           string            `gorm:"column:phone" json:"phone,omitempty"`
	IDDocumentPath  string            `gorm:"column:id_document_path" json:"id_document_path,omitempty"`
	Status          TenantStatus      `gorm:"type:text;not null;default:'ACTIVE'" json:"status"`
	HasOverdueRent  bool              `gorm:"column:has_overdue_rent;not null;default:false" json:"has_overdue_rent"`
	TotalOverdue    int64             `gorm:"column:total_overdue_amount;not null;default:0" json:"total_overdue_amount"`
	OverdueCount    int               `gorm:"column:overdue_count;not null;default:0" json:"overdue_count"`
	LastOverdueDate *time.Time        `gorm:"column:last_overdue_date" json:"last_overdue_date,omitempty"`
	Metadata        datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Tenant) TableName() string { return "tenants" }

// OverdueAggregate is the scanner's recomputed cache snapshot for one tenant.
type OverdueAggregate struct {
	HasOverdueRent  bool
	TotalOverdue    int64
	OverdueCount    int
	LastOverdueDate *time.Time
}
