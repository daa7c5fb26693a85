package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/wardboard/internal/auth/domain"
	facilitydomain "github.com/smallbiznis/wardboard/internal/facility/domain"
	statusdomain "github.com/smallbiznis/wardboard/internal/status/domain"
)

func (s *Server) ListAreas(c *gin.Context) {
	areas, err := s.facilitySvc.ListAreas(c.Request.Context(), false)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": areas})
}

func (s *Server) CreateArea(c *gin.Context) {
	var req facilitydomain.AreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	area, err := s.facilitySvc.CreateArea(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": area})
}

func (s *Server) UpdateArea(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req facilitydomain.AreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	area, err := s.facilitySvc.UpdateArea(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": area})
}

func (s *Server) ToggleArea(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	area, err := s.facilitySvc.ToggleArea(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": area})
}

func (s *Server) ListRooms(c *gin.Context) {
	areaID, err := parseOptionalSnowflakeID(c.Query("area_id"))
	if err != nil {
		AbortWithError(c, ErrInvalidID)
		return
	}

	rooms, err := s.facilitySvc.ListRooms(c.Request.Context(), facilitydomain.RoomFilter{AreaID: areaID})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rooms})
}

func (s *Server) CreateRoom(c *gin.Context) {
	var req facilitydomain.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	room, err := s.facilitySvc.CreateRoom(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": room})
}

func (s *Server) UpdateRoom(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req facilitydomain.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	room, err := s.facilitySvc.UpdateRoom(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": room})
}

func (s *Server) ToggleRoom(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	room, err := s.facilitySvc.ToggleRoom(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": room})
}

func (s *Server) ListBeds(c *gin.Context) {
	roomID, err := parseOptionalSnowflakeID(c.Query("room_id"))
	if err != nil {
		AbortWithError(c, ErrInvalidID)
		return
	}
	areaID, err := parseOptionalSnowflakeID(c.Query("area_id"))
	if err != nil {
		AbortWithError(c, ErrInvalidID)
		return
	}

	beds, err := s.facilitySvc.ListBeds(c.Request.Context(), facilitydomain.BedFilter{RoomID: roomID, AreaID: areaID})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": beds})
}

func (s *Server) CreateBed(c *gin.Context) {
	var req facilitydomain.BedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	bed, err := s.facilitySvc.CreateBed(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": bed})
}

func (s *Server) UpdateBed(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req facilitydomain.BedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	bed, err := s.facilitySvc.UpdateBed(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bed})
}

func (s *Server) ToggleBed(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	bed, err := s.facilitySvc.ToggleBed(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bed})
}

func (s *Server) ListStatuses(c *gin.Context) {
	statuses, err := s.statusSvc.List(c.Request.Context(), false)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": statuses})
}

func (s *Server) CreateStatus(c *gin.Context) {
	var req statusdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	status, err := s.statusSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": status})
}

func (s *Server) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req statusdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	status, err := s.statusSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": status})
}

func (s *Server) ToggleStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	status, err := s.statusSvc.ToggleActive(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": status})
}

func (s *Server) ListUsers(c *gin.Context) {
	users, err := s.authsvc.ListUsers(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

func (s *Server) CreateUser(c *gin.Context) {
	var req authdomain.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	user, err := s.authsvc.CreateUser(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": user})
}

func (s *Server) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req authdomain.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	user, err := s.authsvc.UpdateUser(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}

func (s *Server) ToggleUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	actor, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	user, err := s.authsvc.ToggleActive(c.Request.Context(), actor.ID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}
