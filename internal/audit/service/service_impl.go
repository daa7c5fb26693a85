package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/wardboard/internal/audit/domain"
	"github.com/smallbiznis/wardboard/internal/clock"
	obscontext "github.com/smallbiznis/wardboard/internal/observability/context"
	"github.com/smallbiznis/wardboard/internal/observability/metrics"
	statusdomain "github.com/smallbiznis/wardboard/internal/status/domain"
	"github.com/smallbiznis/wardboard/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       auditdomain.Repository
	StatusRepo statusdomain.Repository
	Metrics    *metrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       auditdomain.Repository
	statusRepo statusdomain.Repository
	metrics    *metrics.Metrics
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("audit.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		statusRepo: p.StatusRepo,
		metrics:    p.Metrics,
	}
}

func (s *Service) Record(ctx context.Context, tx *gorm.DB, req auditdomain.RecordRequest) (*auditdomain.AuditEntry, error) {
	if !req.TargetType.Valid() {
		return nil, auditdomain.ErrInvalidTargetType
	}
	if tx == nil {
		tx = s.db
	}

	changedAt := req.ChangedAt
	if changedAt.IsZero() {
		changedAt = s.clock.Now()
	}

	payload := map[string]any{}
	for key, value := range req.Meta {
		if key == "" {
			continue
		}
		payload[key] = value
	}
	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		payload["request_id"] = requestID
	}

	entry := &auditdomain.AuditEntry{
		ID:           s.genID.Generate(),
		TargetType:   req.TargetType,
		RoomID:       req.RoomID,
		BedID:        req.BedID,
		AreaID:       req.AreaID,
		FromStatusID: req.FromStatusID,
		ToStatusID:   req.ToStatusID,
		ChangedBy:    req.ChangedBy,
		ChangedAt:    changedAt.UTC(),
	}
	if note := strings.TrimSpace(req.Note); note != "" {
		entry.Note = &note
	}
	if len(payload) > 0 {
		entry.Meta = datatypes.JSONMap(payload)
	}

	if err := s.repo.Insert(ctx, tx, entry); err != nil {
		s.log.Warn("failed to write audit entry", zap.String("target_type", string(req.TargetType)), zap.Error(err))
		return nil, err
	}
	return entry, nil
}

func (s *Service) List(ctx context.Context, req auditdomain.ListRequest) (auditdomain.ListResponse, error) {
	filter, err := buildFilter(req)
	if err != nil {
		return auditdomain.ListResponse{}, err
	}
	limit := req.Limit()
	filter.Limit = limit

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return auditdomain.ListResponse{}, err
	}

	items, pageInfo := pagination.Page(items, limit, func(item auditdomain.AuditEntry) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: item.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})
	if items == nil {
		items = []auditdomain.AuditEntry{}
	}
	return auditdomain.ListResponse{PageInfo: pageInfo, Entries: items}, nil
}

// Purge deletes entries older than retentionDays. Zero keeps everything.
func (s *Service) Purge(ctx context.Context, now time.Time, retentionDays int) (int64, error) {
	if retentionDays < 0 {
		return 0, auditdomain.ErrInvalidRetention
	}
	if retentionDays == 0 {
		return 0, nil
	}

	threshold := now.UTC().Add(-time.Duration(retentionDays) * 24 * time.Hour)
	deleted, err := s.repo.DeleteBefore(ctx, s.db, threshold)
	if err != nil {
		return 0, err
	}
	s.metrics.RecordAuditPurged(ctx, deleted)
	s.log.Info("audit entries purged",
		zap.Int("retention_days", retentionDays),
		zap.Time("threshold", threshold),
		zap.Int64("deleted", deleted),
	)
	return deleted, nil
}

func buildFilter(req auditdomain.ListRequest) (auditdomain.ListFilter, error) {
	var filter auditdomain.ListFilter

	if raw := strings.TrimSpace(req.AreaID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return filter, auditdomain.ErrInvalidFilter
		}
		filter.AreaID = &id
	}
	if raw := strings.TrimSpace(req.UserID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return filter, auditdomain.ErrInvalidFilter
		}
		filter.ChangedBy = &id
	}
	if raw := strings.TrimSpace(req.TargetType); raw != "" {
		targetType := auditdomain.TargetType(strings.ToLower(raw))
		if !targetType.Valid() {
			return filter, auditdomain.ErrInvalidTargetType
		}
		filter.TargetType = targetType
	}
	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return filter, auditdomain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(strings.TrimSpace(cursor.ID))
		if err != nil || id == 0 {
			return filter, auditdomain.ErrInvalidPageToken
		}
		filter.BeforeID = &id
	}
	return filter, nil
}
