package domain

import (
	"context"
	"errors"

	"github.com/atriumhq/atrium/pkg/db/pagination"
)

type CreateRequestRequest struct {
	RoomID      string
	TenantID    string
	Category    string
	Description string
	Priority    string
}

type UpdateRequestRequest struct {
	ID          string
	Category    *string
	Description *string
	Priority    *string
	Status      *string
	AssignedTo  *string
}

type ListRequestRequest struct {
	PageToken string
	PageSize  int32
	RoomID    string
	TenantID  string
	Status    string
	Priority  string
}

type ListRequestResponse struct {
	pagination.PageInfo
	Requests []MaintenanceRequest `json:"requests"`
}

type Service interface {
	Create(context.Context, CreateRequestRequest) (MaintenanceRequest, error)
	Update(context.Context, UpdateRequestRequest) (MaintenanceRequest, error)
	List(context.Context, ListRequestRequest) (ListRequestResponse, error)
	GetByID(context.Context, string) (MaintenanceRequest, error)
}

var (
	ErrInvalidRoom       = errors.New("invalid_room")
	ErrInvalidCategory   = errors.New("invalid_category")
	ErrInvalidPriority   = errors.New("invalid_priority")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("not_found")
	ErrInvalidTransition = errors.New("invalid_status_transition")
)
