package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type RequestStatus string

const (
	StatusOpen       RequestStatus = "OPEN"
	StatusInProgress RequestStatus = "IN_PROGRESS"
	StatusResolved   RequestStatus = "RESOLVED"
	StatusCancelled  RequestStatus = "CANCELLED"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo enforces the request lifecycle. RESOLVED is terminal;
// CANCELLED can only come from OPEN or IN_PROGRESS.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	switch s {
	case StatusOpen:
		return next == StatusInProgress || next == StatusResolved || next == StatusCancelled
	case StatusInProgress:
		return next == StatusResolved || next == StatusCancelled
	}
	return false
}

// MaintenanceRequest tracks repair work against a room. TenantID is set
// when a tenant filed the request themselves.
type MaintenanceRequest struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	RoomID      snowflake.ID  `gorm:"column:room_id;not null;index" json:"room_id"`
	TenantID    *snowflake.ID `gorm:"column:tenant_id;index" json:"tenant_id,omitempty"`
	Category    string        `gorm:"type:text;not null" json:"category"`
	Description string        `gorm:"type:text" json:"description,omitempty"`
	Priority    Priority      `gorm:"type:text;not null;default:'MEDIUM'" json:"priority"`
	Status      RequestStatus `gorm:"type:text;not null;default:'OPEN';index" json:"status"`
	AssignedTo  *snowflake.ID `gorm:"column:assigned_to" json:"assigned_to,omitempty"`
	ResolvedAt  *time.Time    `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (MaintenanceRequest) TableName() string { return "maintenance_requests" }
