package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/wardboard/internal/audit"
	auditdomain "github.com/smallbiznis/wardboard/internal/audit/domain"
	"github.com/smallbiznis/wardboard/internal/auth"
	authdomain "github.com/smallbiznis/wardboard/internal/auth/domain"
	"github.com/smallbiznis/wardboard/internal/auth/session"
	"github.com/smallbiznis/wardboard/internal/authorization"
	"github.com/smallbiznis/wardboard/internal/census"
	censusdomain "github.com/smallbiznis/wardboard/internal/census/domain"
	"github.com/smallbiznis/wardboard/internal/clock"
	"github.com/smallbiznis/wardboard/internal/config"
	"github.com/smallbiznis/wardboard/internal/facility"
	facilitydomain "github.com/smallbiznis/wardboard/internal/facility/domain"
	"github.com/smallbiznis/wardboard/internal/observability"
	obslogger "github.com/smallbiznis/wardboard/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/wardboard/internal/observability/metrics"
	obstracing "github.com/smallbiznis/wardboard/internal/observability/tracing"
	"github.com/smallbiznis/wardboard/internal/occupancy"
	occupancydomain "github.com/smallbiznis/wardboard/internal/occupancy/domain"
	"github.com/smallbiznis/wardboard/internal/scheduler"
	"github.com/smallbiznis/wardboard/internal/seed"
	"github.com/smallbiznis/wardboard/internal/status"
	statusdomain "github.com/smallbiznis/wardboard/internal/status/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	appVersion = "1.4"
	systemName = "WardBoard-OSS"
)

// Domains groups the service modules shared by the HTTP server and the CLI
// maintenance commands.
var Domains = fx.Options(
	authorization.Module,
	audit.Module,
	auth.Module,
	census.Module,
	facility.Module,
	occupancy.Module,
	status.Module,
	scheduler.Module,
	seed.Module,
)

var Module = fx.Module("http.server",
	Domains,
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(bootstrap),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware())
	}
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(obsmetrics.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func bootstrap(lc fx.Lifecycle, seeder *seed.Seeder) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return seeder.Bootstrap(ctx)
		},
	})
}

func run(lc fx.Lifecycle, cfg config.Config, srv *Server, log *zap.Logger) {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	log          *zap.Logger
	clock        clock.Clock
	boards       *config.BoardConfigHolder
	sessions     *session.Manager
	authsvc      authdomain.Service
	authzSvc     authorization.Service
	auditSvc     auditdomain.Service
	censusSvc    censusdomain.Service
	facilitySvc  facilitydomain.Service
	occupancySvc occupancydomain.Service
	statusSvc    statusdomain.Service
	scheduler    *scheduler.Scheduler
	resetGate    *autoResetGate
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Log          *zap.Logger
	Clock        clock.Clock
	Boards       *config.BoardConfigHolder
	Sessions     *session.Manager
	Authsvc      authdomain.Service
	AuthzSvc     authorization.Service
	AuditSvc     auditdomain.Service
	CensusSvc    censusdomain.Service
	FacilitySvc  facilitydomain.Service
	OccupancySvc occupancydomain.Service
	StatusSvc    statusdomain.Service
	Scheduler    *scheduler.Scheduler `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		log:          p.Log.Named("http.server"),
		clock:        p.Clock,
		boards:       p.Boards,
		sessions:     p.Sessions,
		authsvc:      p.Authsvc,
		authzSvc:     p.AuthzSvc,
		auditSvc:     p.AuditSvc,
		censusSvc:    p.CensusSvc,
		facilitySvc:  p.FacilitySvc,
		occupancySvc: p.OccupancySvc,
		statusSvc:    p.StatusSvc,
		scheduler:    p.Scheduler,
		resetGate:    &autoResetGate{},
	}

	svc.engine.Use(svc.sessions.Middleware())
	svc.engine.Use(svc.AutoResetOnRequest())

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	s.engine.POST("/install", s.Install)

	group := s.engine.Group("/auth")
	group.POST("/login", s.Login)
	group.POST("/logout", s.Logout)
	group.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.GET("/version", s.Version)
	api.GET("/display/board/:area_id", s.GetDisplayBoard)
	api.POST("/theme/:name", s.SwitchTheme)

	user := api.Group("", s.AuthRequired())
	user.GET("/areas", s.authorize(authorization.ObjectBoard, authorization.ActionView), s.ListBoardAreas)
	user.GET("/board/:area_id", s.authorize(authorization.ObjectBoard, authorization.ActionView), s.GetBoard)
	user.POST("/state/room/:id", s.authorize(authorization.ObjectState, authorization.ActionApply), s.ApplyRoomState)
	user.POST("/state/bed/:id", s.authorize(authorization.ObjectState, authorization.ActionApply), s.ApplyBedState)

	user.GET("/summary", s.authorize(authorization.ObjectSummary, authorization.ActionView), s.GetSummary)
	user.GET("/summary.pdf", s.authorize(authorization.ObjectSummary, authorization.ActionExport), s.GetSummaryPDF)
	user.GET("/summary/:area_id", s.authorize(authorization.ObjectSummary, authorization.ActionView), s.GetSummary)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/api/admin", s.AuthRequired())

	manageFacility := s.authorize(authorization.ObjectFacility, authorization.ActionManage)
	admin.GET("/areas", manageFacility, s.ListAreas)
	admin.POST("/areas", manageFacility, s.CreateArea)
	admin.PATCH("/areas/:id", manageFacility, s.UpdateArea)
	admin.POST("/areas/:id/toggle", manageFacility, s.ToggleArea)

	admin.GET("/rooms", manageFacility, s.ListRooms)
	admin.POST("/rooms", manageFacility, s.CreateRoom)
	admin.PATCH("/rooms/:id", manageFacility, s.UpdateRoom)
	admin.POST("/rooms/:id/toggle", manageFacility, s.ToggleRoom)

	admin.GET("/beds", manageFacility, s.ListBeds)
	admin.POST("/beds", manageFacility, s.CreateBed)
	admin.PATCH("/beds/:id", manageFacility, s.UpdateBed)
	admin.POST("/beds/:id/toggle", manageFacility, s.ToggleBed)

	statuses := s.authorize(authorization.ObjectStatus, authorization.ActionManage)
	admin.GET("/statuses", statuses, s.ListStatuses)
	admin.POST("/statuses", statuses, s.CreateStatus)
	admin.PATCH("/statuses/:id", statuses, s.UpdateStatus)
	admin.POST("/statuses/:id/toggle", statuses, s.ToggleStatus)

	users := s.authorize(authorization.ObjectUser, authorization.ActionManage)
	admin.GET("/users", users, s.ListUsers)
	admin.POST("/users", users, s.CreateUser)
	admin.PATCH("/users/:id", users, s.UpdateUser)
	admin.POST("/users/:id/toggle", users, s.ToggleUser)

	admin.GET("/logs", s.authorize(authorization.ObjectAuditLog, authorization.ActionView), s.ListAuditLogs)
	admin.GET("/logs.xlsx", s.authorize(authorization.ObjectAuditLog, authorization.ActionExport), s.ExportAuditLogs)
	admin.POST("/logs/purge", s.authorize(authorization.ObjectAuditLog, authorization.ActionPurge), s.PurgeAuditLogs)
	admin.POST("/auto-reset/run", s.authorize(authorization.ObjectAutoReset, authorization.ActionRun), s.RunAutoReset)
	admin.GET("/auto-reset", s.authorize(authorization.ObjectAutoReset, authorization.ActionRun), s.GetAutoResetStatus)
}

func (s *Server) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": appVersion,
		"system":  systemName,
		"status":  "OK",
	})
}
