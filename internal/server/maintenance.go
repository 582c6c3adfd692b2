package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	maintenancedomain "github.com/atriumhq/atrium/internal/maintenance/domain"
)

type listMaintenanceQuery struct {
	PageToken string `form:"page_token"`
	PageSize  int32  `form:"page_size"`
	RoomID    string `form:"room_id"`
	TenantID  string `form:"tenant_id"`
	Status    string `form:"status"`
	Priority  string `form:"priority"`
}

type createMaintenanceRequest struct {
	RoomID      string `json:"room_id"`
	TenantID    string `json:"tenant_id"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

type updateMaintenanceRequest struct {
	Category    *string `json:"category"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
	AssignedTo  *string `json:"assigned_to"`
}

func (s *Server) ListMaintenanceRequests(c *gin.Context) {
	var query listMaintenanceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenantID, ok := enforceTenantScope(c, query.TenantID)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	resp, err := s.maintenanceSvc.List(c.Request.Context(), maintenancedomain.ListRequestRequest{
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  query.PageSize,
		RoomID:    strings.TrimSpace(query.RoomID),
		TenantID:  tenantID,
		Status:    strings.TrimSpace(query.Status),
		Priority:  strings.TrimSpace(query.Priority),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Requests, "page_info": resp.PageInfo})
}

func (s *Server) CreateMaintenanceRequest(c *gin.Context) {
	var req createMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenantID, ok := enforceTenantScope(c, req.TenantID)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	request, err := s.maintenanceSvc.Create(c.Request.Context(), maintenancedomain.CreateRequestRequest{
		RoomID:      strings.TrimSpace(req.RoomID),
		TenantID:    tenantID,
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		Priority:    strings.TrimSpace(req.Priority),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": request})
}

func (s *Server) GetMaintenanceRequestByID(c *gin.Context) {
	request, err := s.maintenanceSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if request.TenantID != nil && !tenantOwnsRow(c, *request.TenantID) {
		AbortWithError(c, ErrForbidden)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": request})
}

func (s *Server) UpdateMaintenanceRequest(c *gin.Context) {
	var req updateMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	request, err := s.maintenanceSvc.Update(c.Request.Context(), maintenancedomain.UpdateRequestRequest{
		ID:          strings.TrimSpace(c.Param("id")),
		Category:    req.Category,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": request})
}
