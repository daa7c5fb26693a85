package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/wardboard/internal/audit/domain"
	"github.com/smallbiznis/wardboard/internal/clock"
	facilitydomain "github.com/smallbiznis/wardboard/internal/facility/domain"
	"github.com/smallbiznis/wardboard/internal/observability/metrics"
	"github.com/smallbiznis/wardboard/internal/observability/tracing"
	"github.com/smallbiznis/wardboard/internal/occupancy/domain"
	statusdomain "github.com/smallbiznis/wardboard/internal/status/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const tracerName = "wardboard/occupancy"

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	Repo         domain.Repository
	FacilityRepo facilitydomain.Repository
	StatusRepo   statusdomain.Repository
	AuditSvc     auditdomain.Service
	Metrics      *metrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	repo         domain.Repository
	facilityRepo facilitydomain.Repository
	statusRepo   statusdomain.Repository
	auditSvc     auditdomain.Service
	metrics      *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("occupancy.service"),
		clock:        p.Clock,
		repo:         p.Repo,
		facilityRepo: p.FacilityRepo,
		statusRepo:   p.StatusRepo,
		auditSvc:     p.AuditSvc,
		metrics:      p.Metrics,
	}
}

// ApplyTransition sets the current status of one room or bed and appends the
// matching audit entry in the same transaction.
func (s *Service) ApplyTransition(ctx context.Context, req domain.ApplyTransitionRequest) (*domain.TransitionResult, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "occupancy.ApplyTransition",
		attribute.String("target_type", string(req.TargetType)),
	)
	defer span.End()

	if req.TargetType != auditdomain.TargetRoom && req.TargetType != auditdomain.TargetBed {
		return nil, domain.ErrInvalidTargetType
	}

	var result *domain.TransitionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, bedID, err := s.resolveTarget(ctx, tx, req.TargetType, req.TargetID)
		if err != nil {
			return err
		}
		roomID := room.ID

		status, err := s.statusRepo.FindByID(ctx, tx, req.StatusID)
		if err != nil {
			return err
		}
		if status == nil {
			return statusdomain.ErrStatusNotFound
		}
		if !status.IsActive {
			return domain.ErrStatusInactive
		}
		if (req.TargetType == auditdomain.TargetRoom && !status.AppliesToRoom) ||
			(req.TargetType == auditdomain.TargetBed && !status.AppliesToBed) {
			return domain.ErrStatusNotApplicable
		}

		now := s.clock.Now()
		trimmedNote := strings.TrimSpace(req.Note)
		var note *string
		if trimmedNote != "" {
			note = &trimmedNote
		}

		var previous *snowflake.ID
		if req.TargetType == auditdomain.TargetRoom {
			previous, err = s.repo.ApplyRoomState(ctx, tx, domain.RoomState{
				RoomID:    roomID,
				StatusID:  status.ID,
				UpdatedBy: req.ActorID,
				UpdatedAt: now,
				Note:      note,
			})
		} else {
			previous, err = s.repo.ApplyBedState(ctx, tx, domain.BedState{
				BedID:     *bedID,
				StatusID:  status.ID,
				UpdatedBy: req.ActorID,
				UpdatedAt: now,
				Note:      note,
			})
		}
		if err != nil {
			return err
		}

		toStatusID := status.ID
		areaID := room.AreaID
		entry, err := s.auditSvc.Record(ctx, tx, auditdomain.RecordRequest{
			TargetType:   req.TargetType,
			RoomID:       &roomID,
			BedID:        bedID,
			AreaID:       &areaID,
			FromStatusID: previous,
			ToStatusID:   &toStatusID,
			ChangedBy:    req.ActorID,
			ChangedAt:    now,
			Note:         trimmedNote,
		})
		if err != nil {
			return err
		}

		result = &domain.TransitionResult{
			TargetType:   req.TargetType,
			TargetID:     req.TargetID,
			AreaID:       areaID,
			FromStatusID: previous,
			Status:       *status,
			UpdatedAt:    now,
			AuditEntryID: entry.ID,
		}
		return nil
	})
	if err != nil {
		span.RecordError(tracing.SafeError(err))
		return nil, err
	}

	s.metrics.RecordTransition(ctx, string(req.TargetType), result.Status.Key)
	s.log.Info("state changed",
		zap.String("target_type", string(req.TargetType)),
		zap.String("target_id", req.TargetID.String()),
		zap.String("status", result.Status.Key),
	)
	return result, nil
}

// resolveTarget returns the owning room and, for beds, the bed id. Inactive
// targets, and beds in inactive rooms, are reported as not found.
func (s *Service) resolveTarget(ctx context.Context, tx *gorm.DB, targetType auditdomain.TargetType, targetID snowflake.ID) (*facilitydomain.Room, *snowflake.ID, error) {
	if targetType == auditdomain.TargetRoom {
		room, err := s.facilityRepo.FindRoomByID(ctx, tx, targetID)
		if err != nil {
			return nil, nil, err
		}
		if room == nil || !room.IsActive {
			return nil, nil, facilitydomain.ErrRoomNotFound
		}
		return room, nil, nil
	}

	bed, err := s.facilityRepo.FindBedByID(ctx, tx, targetID)
	if err != nil {
		return nil, nil, err
	}
	if bed == nil || !bed.IsActive {
		return nil, nil, facilitydomain.ErrBedNotFound
	}
	room, err := s.facilityRepo.FindRoomByID(ctx, tx, bed.RoomID)
	if err != nil {
		return nil, nil, err
	}
	if room == nil || !room.IsActive {
		return nil, nil, facilitydomain.ErrBedNotFound
	}
	bedID := bed.ID
	return room, &bedID, nil
}
