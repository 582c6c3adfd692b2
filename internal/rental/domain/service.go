package domain

import (
	"context"
	"errors"
	"time"

	"github.com/atriumhq/atrium/pkg/db/pagination"
)

const MinRentalDays = 30

type ListRentalRequest struct {
	PageToken    string
	PageSize     int32
	TenantID     string
	RoomID       string
	Status       string
	EndingBefore *time.Time
}

type ListRentalFilter struct {
	TenantID     string
	RoomID       string
	Status       string
	EndingBefore *time.Time
}

type ListRentalResponse struct {
	pagination.PageInfo
	Rentals []Rental `json:"rentals"`
}

type CreateRentalRequest struct {
	TenantID               string
	RoomID                 string
	RentAmount             int64
	PaymentInterval        string
	IncludeTax             *bool
	TaxPercent             *float64
	IncludeWater           bool
	IncludeElectricity     bool
	IncludeGenerator       bool
	IncludeService         bool
	SelfManagedElectricity bool
	StartDate              time.Time
	EndDate                time.Time
}

type UpdateRentalRequest struct {
	ID                     string
	RentAmount             *int64
	PaymentInterval        *string
	IncludeTax             *bool
	TaxPercent             *float64
	IncludeWater           *bool
	IncludeElectricity     *bool
	IncludeGenerator       *bool
	IncludeService         *bool
	SelfManagedElectricity *bool
	EndDate                *time.Time
}

type Service interface {
	Create(context.Context, CreateRentalRequest) (Rental, error)
	Update(context.Context, UpdateRentalRequest) (Rental, error)
	List(context.Context, ListRentalRequest) (ListRentalResponse, error)
	GetByID(context.Context, string) (Rental, error)
	// Terminate ends a rental early and releases its room.
	Terminate(context.Context, string) (Rental, error)
}

var (
	ErrInvalidTenant     = errors.New("invalid_tenant")
	ErrInvalidRoom       = errors.New("invalid_room")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidInterval   = errors.New("invalid_interval")
	ErrInvalidPeriod     = errors.New("invalid_period")
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("not_found")
	ErrNotActive         = errors.New("rental_not_active")
	ErrRoomNotAvailable  = errors.New("room_not_available")
	ErrElectricityOptIn  = errors.New("self_managed_electricity_conflict")
)
