package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	tenantdomain "github.com/atriumhq/atrium/internal/tenant/domain"
)

type listTenantsQuery struct {
	PageToken   string `form:"page_token"`
	PageSize    int32  `form:"page_size"`
	Name        string `form:"name"`
	Email       string `form:"email"`
	Status      string `form:"status"`
	Overdue     string `form:"overdue"`
	CreatedFrom string `form:"created_from"`
	CreatedTo   string `form:"created_to"`
}

type createTenantRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	IDDocumentPath string `json:"id_document_path"`
}

type updateTenantRequest struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	IDDocumentPath *string `json:"id_document_path"`
	Status         *string `json:"status"`
}

func (s *Server) ListTenants(c *gin.Context) {
	var query listTenantsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	overdue, err := parseOptionalBool(query.Overdue)
	if err != nil {
		AbortWithError(c, newValidationError("overdue", "invalid_overdue", "invalid overdue"))
		return
	}
	createdFrom, err := parseOptionalTime(query.CreatedFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("created_from", "invalid_created_from", "invalid created_from"))
		return
	}
	createdTo, err := parseOptionalTime(query.CreatedTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("created_to", "invalid_created_to", "invalid created_to"))
		return
	}

	resp, err := s.tenantSvc.List(c.Request.Context(), tenantdomain.ListTenantRequest{
		PageToken:   strings.TrimSpace(query.PageToken),
		PageSize:    query.PageSize,
		Name:        strings.TrimSpace(query.Name),
		Email:       strings.TrimSpace(query.Email),
		Status:      strings.TrimSpace(query.Status),
		Overdue:     overdue,
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Tenants, "page_info": resp.PageInfo})
}

func (s *Server) CreateTenant(c *gin.Context) {
	var req createTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenant, err := s.tenantSvc.Create(c.Request.Context(), tenantdomain.CreateTenantRequest{
		Name:           strings.TrimSpace(req.Name),
		Email:          strings.TrimSpace(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
		IDDocumentPath: strings.TrimSpace(req.IDDocumentPath),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": tenant})
}

func (s *Server) GetTenantByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	tenant, err := s.tenantSvc.GetByID(c.Request.Context(), tenantdomain.GetTenantRequest{ID: id})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !tenantOwnsRow(c, tenant.ID) {
		AbortWithError(c, ErrForbidden)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tenant})
}

func (s *Server) UpdateTenant(c *gin.Context) {
	var req updateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenant, err := s.tenantSvc.Update(c.Request.Context(), tenantdomain.UpdateTenantRequest{
		ID:             strings.TrimSpace(c.Param("id")),
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		IDDocumentPath: req.IDDocumentPath,
		Status:         req.Status,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tenant})
}

func (s *Server) DeleteTenant(c *gin.Context) {
	if err := s.tenantSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
