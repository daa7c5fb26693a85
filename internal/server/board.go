package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/wardboard/internal/audit/domain"
	"github.com/smallbiznis/wardboard/internal/config"
	occupancydomain "github.com/smallbiznis/wardboard/internal/occupancy/domain"
)

var themes = map[string]bool{"light": true, "dark": true}

type StateChangeRequest struct {
	StatusID string `json:"status_id"`
	Note     string `json:"note"`
}

type boardResponse struct {
	*occupancydomain.Board
	ConfirmStateChange bool                 `json:"confirm_state_change"`
	Display            config.DisplayConfig `json:"display"`
	Theme              string               `json:"theme"`
}

// ListBoardAreas returns the active areas a board can be opened for.
func (s *Server) ListBoardAreas(c *gin.Context) {
	areas, err := s.facilitySvc.ListAreas(c.Request.Context(), true)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": areas})
}

func (s *Server) GetBoard(c *gin.Context) {
	areaID, ok := pathID(c, "area_id")
	if !ok {
		return
	}

	board, err := s.occupancySvc.GetBoardData(c.Request.Context(), areaID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	cfg := s.boards.Get()
	c.JSON(http.StatusOK, boardResponse{
		Board:              board,
		ConfirmStateChange: cfg.ConfirmStateChange,
		Display:            cfg.Display,
		Theme:              s.sessions.Theme(c, cfg.Theme.Default),
	})
}

// GetDisplayBoard serves the read-only wall display. It needs no login, so
// notes and actor ids are stripped.
func (s *Server) GetDisplayBoard(c *gin.Context) {
	areaID, ok := pathID(c, "area_id")
	if !ok {
		return
	}

	board, err := s.occupancySvc.GetBoardData(c.Request.Context(), areaID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	cfg := s.boards.Get()
	c.JSON(http.StatusOK, boardResponse{
		Board:   displayBoard(board, cfg.Display),
		Display: cfg.Display,
		Theme:   s.sessions.Theme(c, cfg.Theme.Default),
	})
}

func displayBoard(board *occupancydomain.Board, display config.DisplayConfig) *occupancydomain.Board {
	out := *board
	out.Rooms = make([]occupancydomain.BoardRoom, 0, len(board.Rooms))
	for _, room := range board.Rooms {
		if display.HideEmptyRooms && len(room.Beds) == 0 {
			continue
		}
		room.RoomState = publicState(room.RoomState)
		beds := make([]occupancydomain.BoardBed, len(room.Beds))
		for i, bed := range room.Beds {
			bed.State = publicState(bed.State)
			beds[i] = bed
		}
		room.Beds = beds
		out.Rooms = append(out.Rooms, room)
	}
	return &out
}

func publicState(state *occupancydomain.StateView) *occupancydomain.StateView {
	if state == nil {
		return nil
	}
	return &occupancydomain.StateView{Status: state.Status, UpdatedAt: state.UpdatedAt}
}

func (s *Server) ApplyRoomState(c *gin.Context) {
	s.applyState(c, auditdomain.TargetRoom)
}

func (s *Server) ApplyBedState(c *gin.Context) {
	s.applyState(c, auditdomain.TargetBed)
}

func (s *Server) applyState(c *gin.Context, target auditdomain.TargetType) {
	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req StateChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	statusID, err := parseSnowflakeID(req.StatusID)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	actorID := user.ID

	result, err := s.occupancySvc.ApplyTransition(c.Request.Context(), occupancydomain.ApplyTransitionRequest{
		TargetType: target,
		TargetID:   targetID,
		StatusID:   statusID,
		ActorID:    &actorID,
		Note:       strings.TrimSpace(req.Note),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// SwitchTheme stores the UI theme in the session cookie.
func (s *Server) SwitchTheme(c *gin.Context) {
	name := strings.ToLower(strings.TrimSpace(c.Param("name")))
	if !themes[name] {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if !s.boards.Get().Theme.AllowSwitch {
		AbortWithError(c, ErrThemeLocked)
		return
	}
	if err := s.sessions.SetTheme(c, name); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": name})
}
