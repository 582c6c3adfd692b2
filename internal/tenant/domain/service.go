package domain

import (
	"context"
	"errors"
	"time"

	"github.com/atriumhq/atrium/pkg/db/pagination"
)

type ListTenantRequest struct {
	PageToken   string
	PageSize    int32
	Name        string
	Email       string
	Status      string
	Overdue     *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListTenantFilter struct {
	Name        string
	Email       string
	Status      string
	Overdue     *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListTenantResponse struct {
	pagination.PageInfo
	Tenants []Tenant `json:"tenants"`
}

type CreateTenantRequest struct {
	Name           string
	Email          string
	Phone          string
	IDDocumentPath string
}

type UpdateTenantRequest struct {
	ID             string
	Name           *string
	Email          *string
	Phone          *string
	IDDocumentPath *string
	Status         *string
}

type GetTenantRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateTenantRequest) (Tenant, error)
	Update(context.Context, UpdateTenantRequest) (Tenant, error)
	List(context.Context, ListTenantRequest) (ListTenantResponse, error)
	GetByID(context.Context, GetTenantRequest) (Tenant, error)
	Delete(context.Context, string) error
}

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
	ErrTenantHasActiveRent = errors.New("tenant_has_active_rental")
)
