package server

import (
	"context"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/wardboard/internal/auth/domain"
	"github.com/smallbiznis/wardboard/internal/scheduler"
	"github.com/smallbiznis/wardboard/internal/scheduler/guard"
	"go.uber.org/zap"
)

const contextUserKey = "wardboard.user"

// AuthRequired resolves the session to an active user. The user is reloaded
// on every request so deactivation and role changes apply immediately.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := s.sessions.Current(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := s.authsvc.GetUser(c.Request.Context(), identity.UserID)
		if err != nil || user == nil || !user.IsActive {
			_ = s.sessions.Logout(c)
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

func (s *Server) authorize(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), user.Role, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) (*authdomain.User, bool) {
	raw, ok := c.Get(contextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := raw.(*authdomain.User)
	return user, ok && user != nil
}

// autoResetGate remembers the last day the reset was settled so most
// requests skip the database round trip.
type autoResetGate struct {
	settled atomic.Value
}

func (g *autoResetGate) done(date string) bool {
	v, _ := g.settled.Load().(string)
	return v == date
}

func (g *autoResetGate) mark(date string) {
	g.settled.Store(date)
}

// AutoResetOnRequest gives the daily reset a chance to run before the request
// is handled. Failures are logged and never fail the request.
func (s *Server) AutoResetOnRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.scheduler == nil {
			c.Next()
			return
		}

		cfg := s.boards.Get().AutoReset
		if !cfg.Enabled {
			c.Next()
			return
		}
		date, due, err := guard.Due(s.clock.Now(), cfg)
		if err != nil || !due || s.resetGate.done(date) {
			c.Next()
			return
		}

		result, err := s.scheduler.MaybeRunNow(context.WithoutCancel(c.Request.Context()))
		if err != nil {
			s.log.Warn("auto reset on request failed", zap.Error(err))
			c.Next()
			return
		}
		switch {
		case result.Executed, result.Reason == scheduler.ReasonAlreadyRan, result.Reason == scheduler.ReasonConflict:
			s.resetGate.mark(date)
		}
		c.Next()
	}
}
