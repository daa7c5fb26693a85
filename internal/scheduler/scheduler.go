package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/wardboard/internal/audit/domain"
	"github.com/smallbiznis/wardboard/internal/clock"
	"github.com/smallbiznis/wardboard/internal/config"
	obsmetrics "github.com/smallbiznis/wardboard/internal/observability/metrics"
	"github.com/smallbiznis/wardboard/internal/observability/tracing"
	occupancydomain "github.com/smallbiznis/wardboard/internal/occupancy/domain"
	"github.com/smallbiznis/wardboard/internal/scheduler/guard"
	schedulerdomain "github.com/smallbiznis/wardboard/internal/scheduler/domain"
	statusdomain "github.com/smallbiznis/wardboard/internal/status/domain"
	pkgdb "github.com/smallbiznis/wardboard/pkg/db"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const lockKey = "wardboard:scheduler:" + schedulerdomain.JobAutoReset

// Skip reasons reported in RunResult.Reason.
const (
	ReasonDisabled     = "disabled"
	ReasonBeforeCutoff = "before_cutoff"
	ReasonAlreadyRan   = "already_ran"
	ReasonLocked       = "locked"
	ReasonConflict     = "conflict"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Boards     *config.BoardConfigHolder
	StatusRepo statusdomain.Repository
	StateRepo  occupancydomain.Repository
	AuditSvc   auditdomain.Service
	Config     Config                      `optional:"true"`
	Locker     *Locker                     `optional:"true"`
	Metrics    *obsmetrics.Metrics          `optional:"true"`
	SchedStats *obsmetrics.SchedulerMetrics `optional:"true"`
}

type Scheduler struct {
	db         *gorm.DB
	log        *zap.Logger
	cfg        Config
	genID      *snowflake.Node
	clock      clock.Clock
	boards     *config.BoardConfigHolder
	statusRepo statusdomain.Repository
	stateRepo  occupancydomain.Repository
	auditSvc   auditdomain.Service
	locker     *Locker
	metrics    *obsmetrics.Metrics
	schedStats *obsmetrics.SchedulerMetrics
}

// RunResult describes one MaybeRun call. Executed is true only for the call
// that claimed the day.
type RunResult struct {
	Executed bool               `json:"executed"`
	Reason   string             `json:"reason,omitempty"`
	RunDate  string             `json:"run_date,omitempty"`
	Rooms    int64              `json:"rooms"`
	Beds     int64              `json:"beds"`
	Rules    []config.ResetRule `json:"rules,omitempty"`
}

func (r RunResult) Updated() int64 { return r.Rooms + r.Beds }

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.GenID == nil || p.Clock == nil || p.StatusRepo == nil || p.StateRepo == nil || p.AuditSvc == nil {
		return nil, ErrInvalidConfig
	}
	boards := p.Boards
	if boards == nil {
		boards = config.NewStaticBoardConfigHolder(config.DefaultBoardConfig())
	}
	return &Scheduler{
		db:         p.DB,
		log:        p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:        p.Config.withDefaults(),
		genID:      p.GenID,
		clock:      p.Clock,
		boards:     boards,
		statusRepo: p.StatusRepo,
		stateRepo:  p.StateRepo,
		auditSvc:   p.AuditSvc,
		locker:     p.Locker,
		metrics:    p.Metrics,
		schedStats: p.SchedStats,
	}, nil
}

// MaybeRunNow evaluates the job against the clock and the current board
// configuration snapshot.
func (s *Scheduler) MaybeRunNow(ctx context.Context) (RunResult, error) {
	return s.MaybeRun(ctx, s.clock.Now(), s.boards.Get().AutoReset)
}

// MaybeRun executes the daily reset at most once per calendar day, on the
// first call at or after the configured cutoff.
func (s *Scheduler) MaybeRun(ctx context.Context, now time.Time, cfg config.AutoResetConfig) (RunResult, error) {
	job := schedulerdomain.JobAutoReset
	if !cfg.Enabled {
		return RunResult{Reason: ReasonDisabled}, nil
	}
	// A malformed scope must never widen into an unscoped bulk update.
	if err := cfg.Validate(); err != nil {
		return RunResult{}, err
	}
	date, due, err := guard.Due(now, cfg)
	if err != nil {
		return RunResult{}, err
	}
	if !due {
		return RunResult{Reason: ReasonBeforeCutoff, RunDate: date}, nil
	}

	if s.locker != nil {
		token, ok, err := s.locker.TryLock(ctx, lockKey, s.cfg.LockTTL)
		switch {
		case err != nil:
			s.log.Warn("scheduler lock unavailable, relying on database claim", zap.Error(err))
		case !ok:
			s.schedStats.IncJobRun(job, obsmetrics.SchedulerOutcomeSkipped)
			return RunResult{Reason: ReasonLocked, RunDate: date}, nil
		default:
			defer func() {
				if err := s.locker.Release(context.WithoutCancel(ctx), lockKey, token); err != nil {
					s.log.Warn("failed to release scheduler lock", zap.Error(err))
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	ctx, span := tracing.StartSpan(ctx, "wardboard/scheduler", "scheduler.auto_reset",
		attribute.String("job", job),
	)
	defer span.End()

	ctx, run := s.startJobRun(ctx, job)
	start := time.Now()

	result := RunResult{RunDate: date}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureRunRow(ctx, tx, job); err != nil {
			return fmt.Errorf("ensure run row: %w", err)
		}
		claimed, err := claimDay(ctx, tx, job, date, now)
		if err != nil {
			return fmt.Errorf("claim run: %w", err)
		}
		if !claimed {
			result.Reason = ReasonAlreadyRan
			return nil
		}

		s.logJobStart(ctx, date)
		result.Executed = true
		return s.execute(ctx, tx, now, cfg, run, &result)
	})
	s.schedStats.ObserveJobDuration(job, time.Since(start))

	if err != nil {
		if pkgdb.IsConflictErr(err) {
			s.logger(ctx).Info("auto reset lost a concurrent claim", zap.Error(err))
			s.schedStats.IncJobRun(job, obsmetrics.SchedulerOutcomeSkipped)
			return RunResult{Reason: ReasonConflict, RunDate: date}, nil
		}
		run.err = err
		s.logJobFinish(ctx, run, RunResult{RunDate: date})
		s.schedStats.IncJobRun(job, obsmetrics.SchedulerOutcomeFailed)
		s.schedStats.IncJobError(job, err)
		span.RecordError(tracing.SafeError(err))
		return RunResult{}, err
	}

	if !result.Executed {
		s.schedStats.IncJobRun(job, obsmetrics.SchedulerOutcomeSkipped)
		return result, nil
	}

	s.schedStats.IncJobRun(job, obsmetrics.SchedulerOutcomeExecuted)
	s.schedStats.AddItemsReset(job, string(auditdomain.TargetRoom), result.Rooms)
	s.schedStats.AddItemsReset(job, string(auditdomain.TargetBed), result.Beds)
	s.schedStats.SetLastSuccess(job, now)
	s.metrics.RecordResetItems(ctx, string(auditdomain.TargetRoom), result.Rooms)
	s.metrics.RecordResetItems(ctx, string(auditdomain.TargetBed), result.Beds)
	s.logJobFinish(ctx, run, result)
	return result, nil
}

// LastRun returns the job watermark, nil before the first run.
func (s *Scheduler) LastRun(ctx context.Context) (*schedulerdomain.SchedulerRun, error) {
	return lastRun(ctx, s.db, schedulerdomain.JobAutoReset)
}
