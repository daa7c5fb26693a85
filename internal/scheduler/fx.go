package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/wardboard/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the auto-reset Scheduler without starting a timer.
var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(ProvideLocker),
	fx.Provide(New),
)

// TimerModule polls MaybeRunNow on a gocron duration job for the app lifetime.
var TimerModule = fx.Module("scheduler.timer",
	fx.Invoke(StartTimer),
)

// ProvideLocker returns nil when no Redis address is configured.
func ProvideLocker(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) *Locker {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	log.Named("scheduler").Info("redis lock enabled", zap.String("addr", cfg.RedisAddr))
	return NewLocker(client)
}

func StartTimer(lc fx.Lifecycle, cfg Config, sched *Scheduler, log *zap.Logger) error {
	cron, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = cron.NewJob(
		gocron.DurationJob(cfg.PollInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout+5*time.Second)
			defer cancel()
			if _, err := sched.MaybeRunNow(ctx); err != nil {
				log.Warn("auto reset tick failed", zap.Error(err))
			}
		}),
		gocron.WithName("auto_reset"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			cron.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			return cron.Shutdown()
		},
	})
	return nil
}
