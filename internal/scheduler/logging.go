package scheduler

import (
	"context"
	"time"

	obscontext "github.com/smallbiznis/wardboard/internal/observability/context"
	obslogger "github.com/smallbiznis/wardboard/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/wardboard/internal/observability/metrics"
	"go.uber.org/zap"
)

type jobRun struct {
	job       string
	runID     string
	startedAt time.Time
	updated   int64
	err       error
}

type jobRunKey struct{}

func (s *Scheduler) startJobRun(ctx context.Context, job string) (context.Context, *jobRun) {
	if ctx == nil {
		ctx = context.Background()
	}
	run := &jobRun{
		job:       job,
		runID:     s.genID.Generate().String(),
		startedAt: time.Now(),
	}
	ctx = context.WithValue(ctx, jobRunKey{}, run)
	ctx = obscontext.WithActor(ctx, "system", "scheduler")
	return ctx, run
}

func jobRunFromContext(ctx context.Context) *jobRun {
	if ctx == nil {
		return nil
	}
	if run, ok := ctx.Value(jobRunKey{}).(*jobRun); ok {
		return run
	}
	return nil
}

func (s *Scheduler) logger(ctx context.Context) *zap.Logger {
	log := obslogger.WithContext(ctx, s.log)
	if run := jobRunFromContext(ctx); run != nil {
		log = log.With(zap.String("job", run.job), zap.String("run_id", run.runID))
	}
	return log
}

func (s *Scheduler) logJobStart(ctx context.Context, date string) {
	s.logger(ctx).Info("scheduler.job.start", zap.String("run_date", date))
}

func (s *Scheduler) logJobFinish(ctx context.Context, run *jobRun, result RunResult) {
	if run == nil {
		return
	}
	fields := []zap.Field{
		zap.Int64("duration_ms", time.Since(run.startedAt).Milliseconds()),
		zap.Bool("executed", result.Executed),
		zap.String("reason", result.Reason),
		zap.Int64("rooms", result.Rooms),
		zap.Int64("beds", result.Beds),
	}
	log := s.logger(ctx)
	if run.err != nil {
		log.Warn("scheduler.job.finish", append(fields,
			zap.String("error_type", obsmetrics.ClassifySchedulerJobReason(run.err)),
			zap.Error(run.err),
		)...)
		return
	}
	log.Info("scheduler.job.finish", fields...)
}
