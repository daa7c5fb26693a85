package server

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	censusdomain "github.com/smallbiznis/wardboard/internal/census/domain"
)

func (s *Server) countConfig() censusdomain.CountConfig {
	cfg := s.boards.Get()
	return censusdomain.CountConfig{
		OccupiedKeys: cfg.OccupiedStatusKeys,
		VacantKeys:   cfg.VacantStatusKeys,
	}
}

// GetSummary serves both the hospital-wide and the per-area census.
func (s *Server) GetSummary(c *gin.Context) {
	var areaID *snowflake.ID
	if c.Param("area_id") != "" {
		id, ok := pathID(c, "area_id")
		if !ok {
			return
		}
		areaID = &id
	}

	summary, err := s.censusSvc.Summary(c.Request.Context(), areaID, s.countConfig())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) GetSummaryPDF(c *gin.Context) {
	ctx := c.Request.Context()

	summary, err := s.censusSvc.Summary(ctx, nil, s.countConfig())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := s.censusSvc.RenderPDF(ctx, summary, &buf); err != nil {
		AbortWithError(c, err)
		return
	}

	filename := fmt.Sprintf("summary-%s.pdf", summary.GeneratedAt.Format("20060102-1504"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
