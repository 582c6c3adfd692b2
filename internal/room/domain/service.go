package domain

import (
	"context"
	"errors"

	"github.com/atriumhq/atrium/pkg/db/pagination"
)

type ListRoomRequest struct {
	PageToken string
	PageSize  int32
	Status    string
	Floor     *int
	Number    string
}

type ListRoomFilter struct {
	Status string
	Floor  *int
	Number string
}

type ListRoomResponse struct {
	pagination.PageInfo
	Rooms []Room `json:"rooms"`
}

type CreateRoomRequest struct {
	Number      string
	Floor       int
	AreaSqm     float64
	MonthlyRate int64
	Description string
}

type UpdateRoomRequest struct {
	ID          string
	Floor       *int
	AreaSqm     *float64
	MonthlyRate *int64
	Description *string
	Status      *string
}

type Service interface {
	Create(context.Context, CreateRoomRequest) (Room, error)
	Update(context.Context, UpdateRoomRequest) (Room, error)
	List(context.Context, ListRoomRequest) (ListRoomResponse, error)
	GetByID(context.Context, string) (Room, error)
	Delete(context.Context, string) error
}

var (
	ErrInvalidNumber  = errors.New("invalid_number")
	ErrInvalidRate    = errors.New("invalid_rate")
	ErrInvalidStatus  = errors.New("invalid_status")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("not_found")
	ErrDuplicateRoom  = errors.New("duplicate_room")
	ErrRoomOccupied   = errors.New("room_occupied")
	ErrRoomNotVacant  = errors.New("room_not_vacant")
	ErrRoomHasRentals = errors.New("room_has_rentals")
)
