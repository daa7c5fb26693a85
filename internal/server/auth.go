package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/wardboard/internal/auth/domain"
	"github.com/smallbiznis/wardboard/internal/domainerr"
	"go.uber.org/zap"
)

var errInvalidCredentials = domainerr.Unauthorized("invalid_credentials")

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type InstallRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type meResponse struct {
	User  *authdomain.User `json:"user"`
	Theme string           `json:"theme"`
}

func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	user, err := s.authsvc.Authenticate(c.Request.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		if errors.Is(err, authdomain.ErrInvalidCredentials) {
			s.log.Info("login rejected", zap.String("username", strings.TrimSpace(req.Username)))
			AbortWithError(c, errInvalidCredentials)
			return
		}
		AbortWithError(c, err)
		return
	}

	if err := s.sessions.Login(c, user); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, meResponse{
		User:  user,
		Theme: s.sessions.Theme(c, s.boards.Get().Theme.Default),
	})
}

func (s *Server) Logout(c *gin.Context) {
	if err := s.sessions.Logout(c); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, meResponse{
		User:  user,
		Theme: s.sessions.Theme(c, s.boards.Get().Theme.Default),
	})
}

// Install creates the first administrator and signs them in.
func (s *Server) Install(c *gin.Context) {
	var req InstallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	user, err := s.authsvc.Install(c.Request.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.sessions.Login(c, user); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": user})
}
