package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	rentaldomain "github.com/atriumhq/atrium/internal/rental/domain"
)

type listRentalsQuery struct {
	PageToken    string `form:"page_token"`
	PageSize     int32  `form:"page_size"`
	TenantID     string `form:"tenant_id"`
	RoomID       string `form:"room_id"`
	Status       string `form:"status"`
	EndingBefore string `form:"ending_before"`
}

type createRentalRequest struct {
	TenantID               string    `json:"tenant_id"`
	RoomID                 string    `json:"room_id"`
	RentAmount             int64     `json:"rent_amount"`
	PaymentInterval        string    `json:"payment_interval"`
	IncludeTax             *bool     `json:"include_tax"`
	TaxPercent             *float64  `json:"tax_percent"`
	IncludeWater           bool      `json:"include_water"`
	IncludeElectricity     bool      `json:"include_electricity"`
	IncludeGenerator       bool      `json:"include_generator"`
	IncludeService         bool      `json:"include_service"`
	SelfManagedElectricity bool      `json:"self_managed_electricity"`
	StartDate              time.Time `json:"start_date"`
	EndDate                time.Time `json:"end_date"`
}

type updateRentalRequest struct {
	RentAmount             *int64     `json:"rent_amount"`
	PaymentInterval        *string    `json:"payment_interval"`
	IncludeTax             *bool      `json:"include_tax"`
	TaxPercent             *float64   `json:"tax_percent"`
	IncludeWater           *bool      `json:"include_water"`
	IncludeElectricity     *bool      `json:"include_electricity"`
	IncludeGenerator       *bool      `json:"include_generator"`
	IncludeService         *bool      `json:"include_service"`
	SelfManagedElectricity *bool      `json:"self_managed_electricity"`
	EndDate                *time.Time `json:"end_date"`
}

func (s *Server) ListRentals(c *gin.Context) {
	var query listRentalsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenantID, ok := enforceTenantScope(c, query.TenantID)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	endingBefore, err := parseOptionalTime(query.EndingBefore, true)
	if err != nil {
		AbortWithError(c, newValidationError("ending_before", "invalid_ending_before", "invalid ending_before"))
		return
	}

	resp, err := s.rentalSvc.List(c.Request.Context(), rentaldomain.ListRentalRequest{
		PageToken:    strings.TrimSpace(query.PageToken),
		PageSize:     query.PageSize,
		TenantID:     tenantID,
		RoomID:       strings.TrimSpace(query.RoomID),
		Status:       strings.TrimSpace(query.Status),
		EndingBefore: endingBefore,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Rentals, "page_info": resp.PageInfo})
}

func (s *Server) CreateRental(c *gin.Context) {
	var req createRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rental, err := s.rentalSvc.Create(c.Request.Context(), rentaldomain.CreateRentalRequest{
		TenantID:               strings.TrimSpace(req.TenantID),
		RoomID:                 strings.TrimSpace(req.RoomID),
		RentAmount:             req.RentAmount,
		PaymentInterval:        strings.TrimSpace(req.PaymentInterval),
		IncludeTax:             req.IncludeTax,
		TaxPercent:             req.TaxPercent,
		IncludeWater:           req.IncludeWater,
		IncludeElectricity:     req.IncludeElectricity,
		IncludeGenerator:       req.IncludeGenerator,
		IncludeService:         req.IncludeService,
		SelfManagedElectricity: req.SelfManagedElectricity,
		StartDate:              req.StartDate,
		EndDate:                req.EndDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": rental})
}

func (s *Server) GetRentalByID(c *gin.Context) {
	rental, err := s.rentalSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !tenantOwnsRow(c, rental.TenantID) {
		AbortWithError(c, ErrForbidden)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rental})
}

func (s *Server) UpdateRental(c *gin.Context) {
	var req updateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rental, err := s.rentalSvc.Update(c.Request.Context(), rentaldomain.UpdateRentalRequest{
		ID:                     strings.TrimSpace(c.Param("id")),
		RentAmount:             req.RentAmount,
		PaymentInterval:        req.PaymentInterval,
		IncludeTax:             req.IncludeTax,
		TaxPercent:             req.TaxPercent,
		IncludeWater:           req.IncludeWater,
		IncludeElectricity:     req.IncludeElectricity,
		IncludeGenerator:       req.IncludeGenerator,
		IncludeService:         req.IncludeService,
		SelfManagedElectricity: req.SelfManagedElectricity,
		EndDate:                req.EndDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rental})
}

func (s *Server) TerminateRental(c *gin.Context) {
	rental, err := s.rentalSvc.Terminate(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rental})
}
