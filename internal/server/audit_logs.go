package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/wardboard/internal/audit/domain"
	"github.com/smallbiznis/wardboard/pkg/db/pagination"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type listAuditLogsQuery struct {
	PageToken  string `form:"page_token"`
	PageSize   int    `form:"page_size"`
	AreaID     string `form:"area_id"`
	TargetType string `form:"target_type"`
	UserID     string `form:"user_id"`
}

func (q listAuditLogsQuery) request() auditdomain.ListRequest {
	return auditdomain.ListRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(q.PageToken),
			PageSize:  q.PageSize,
		},
		AreaID:     strings.TrimSpace(q.AreaID),
		TargetType: strings.TrimSpace(q.TargetType),
		UserID:     strings.TrimSpace(q.UserID),
	}
}

func (s *Server) ListAuditLogs(c *gin.Context) {
	var query listAuditLogsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.auditSvc.List(c.Request.Context(), query.request())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      resp.Entries,
		"page_info": resp.PageInfo,
	})
}

func (s *Server) ExportAuditLogs(c *gin.Context) {
	var query listAuditLogsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var buf bytes.Buffer
	if err := s.auditSvc.ExportXLSX(c.Request.Context(), query.request(), &buf); err != nil {
		AbortWithError(c, err)
		return
	}

	filename := fmt.Sprintf("audit-log-%s.xlsx", s.clock.Now().Format("20060102-1504"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// PurgeAuditLogs applies the configured retention window.
func (s *Server) PurgeAuditLogs(c *gin.Context) {
	days := s.boards.Get().LogRetentionDays
	deleted, err := s.auditSvc.Purge(c.Request.Context(), s.clock.Now(), days)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"deleted":        deleted,
		"retention_days": days,
	})
}

// RunAutoReset evaluates the daily reset immediately. The once-per-day and
// cutoff rules still apply, the result reports why nothing ran.
func (s *Server) RunAutoReset(c *gin.Context) {
	if s.scheduler == nil {
		AbortWithError(c, ErrNotFound)
		return
	}
	result, err := s.scheduler.MaybeRunNow(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) GetAutoResetStatus(c *gin.Context) {
	if s.scheduler == nil {
		AbortWithError(c, ErrNotFound)
		return
	}
	last, err := s.scheduler.LastRun(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	cfg := s.boards.Get().AutoReset
	resp := gin.H{
		"enabled":  cfg.Enabled,
		"at":       cfg.At,
		"timezone": cfg.Timezone,
		"rules":    cfg.Rules,
		"scope":    cfg.Scope,
		"log_mode": cfg.LogMode,
	}
	if last != nil {
		resp["last_run_date"] = last.LastRunDate
		resp["last_run_at"] = last.LastRunAt
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
