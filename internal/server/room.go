package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	roomdomain "github.com/atriumhq/atrium/internal/room/domain"
)

type listRoomsQuery struct {
	PageToken string `form:"page_token"`
	PageSize  int32  `form:"page_size"`
	Status    string `form:"status"`
	Floor     string `form:"floor"`
	Number    string `form:"number"`
}

type createRoomRequest struct {
	Number      string  `json:"number"`
	Floor       int     `json:"floor"`
	AreaSqm     float64 `json:"area_sqm"`
	MonthlyRate int64   `json:"monthly_rate"`
	Description string  `json:"description"`
}

type updateRoomRequest struct {
	Floor       *int     `json:"floor"`
	AreaSqm     *float64 `json:"area_sqm"`
	MonthlyRate *int64   `json:"monthly_rate"`
	Description *string  `json:"description"`
	Status      *string  `json:"status"`
}

func (s *Server) ListRooms(c *gin.Context) {
	var query listRoomsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var floor *int
	if parsed, err := parseOptionalInt64(query.Floor); err != nil {
		AbortWithError(c, newValidationError("floor", "invalid_floor", "invalid floor"))
		return
	} else if parsed != nil {
		value := int(*parsed)
		floor = &value
	}

	resp, err := s.roomSvc.List(c.Request.Context(), roomdomain.ListRoomRequest{
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  query.PageSize,
		Status:    strings.TrimSpace(query.Status),
		Floor:     floor,
		Number:    strings.TrimSpace(query.Number),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Rooms, "page_info": resp.PageInfo})
}

func (s *Server) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	room, err := s.roomSvc.Create(c.Request.Context(), roomdomain.CreateRoomRequest{
		Number:      strings.TrimSpace(req.Number),
		Floor:       req.Floor,
		AreaSqm:     req.AreaSqm,
		MonthlyRate: req.MonthlyRate,
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": room})
}

func (s *Server) GetRoomByID(c *gin.Context) {
	room, err := s.roomSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": room})
}

func (s *Server) UpdateRoom(c *gin.Context) {
	var req updateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	room, err := s.roomSvc.Update(c.Request.Context(), roomdomain.UpdateRoomRequest{
		ID:          strings.TrimSpace(c.Param("id")),
		Floor:       req.Floor,
		AreaSqm:     req.AreaSqm,
		MonthlyRate: req.MonthlyRate,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": room})
}

func (s *Server) DeleteRoom(c *gin.Context) {
	if err := s.roomSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
