package main

import (
	"context"
	"math/rand/v2"
	"time"

	auditdomain "github.com/smallbiznis/wardboard/internal/audit/domain"
	authdomain "github.com/smallbiznis/wardboard/internal/auth/domain"
	"github.com/smallbiznis/wardboard/internal/clock"
	"github.com/smallbiznis/wardboard/internal/config"
	"github.com/smallbiznis/wardboard/internal/scheduler"
	"github.com/smallbiznis/wardboard/internal/seed"
	"github.com/smallbiznis/wardboard/internal/server"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServeCmd struct{}

func (c *ServeCmd) Run() error {
	app := fx.New(
		core(),
		server.Module,
		scheduler.TimerModule,
	)
	if err := app.Err(); err != nil {
		return err
	}
	app.Run()
	return nil
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run() error {
	var log *zap.Logger
	return runOnce(func(context.Context) error {
		log.Info("migrations applied")
		return nil
	}, fx.Populate(&log))
}

type SeedCmd struct {
	Demo     bool  `help:"Also create demo areas, rooms and beds with random states"`
	RandSeed int64 `name:"rand-seed" help:"Seed for the demo data generator; 0 uses the current time"`
}

func (c *SeedCmd) Run() error {
	var (
		seeder *seed.Seeder
		log    *zap.Logger
	)
	return runOnce(func(ctx context.Context) error {
		if err := seeder.Bootstrap(ctx); err != nil {
			return err
		}
		if !c.Demo {
			log.Info("bootstrap complete")
			return nil
		}

		n := c.RandSeed
		if n == 0 {
			n = time.Now().UnixNano()
		}
		result, err := seeder.Demo(ctx, rand.New(rand.NewPCG(uint64(n), uint64(n>>1))))
		if err != nil {
			return err
		}
		log.Info("demo data created",
			zap.Int("areas", result.Areas),
			zap.Int("rooms", result.Rooms),
			zap.Int("beds", result.Beds),
		)
		return nil
	}, server.Domains, fx.Populate(&seeder, &log))
}

type CreateUserCmd struct {
	Username string `required:"" help:"Login name"`
	Password string `required:"" help:"Initial password"`
	Role     string `default:"viewer" enum:"viewer,operator,admin" help:"Role (${enum})"`
}

func (c *CreateUserCmd) Run() error {
	var (
		authSvc authdomain.Service
		log     *zap.Logger
	)
	return runOnce(func(ctx context.Context) error {
		user, err := authSvc.CreateUser(ctx, authdomain.CreateUserRequest{
			Username: c.Username,
			Password: c.Password,
			Role:     authdomain.Role(c.Role),
		})
		if err != nil {
			return err
		}
		log.Info("user created", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
		return nil
	}, server.Domains, fx.Populate(&authSvc, &log))
}

type PurgeLogsCmd struct {
	Days int `default:"-1" help:"Retention in days, overriding log_retention_days when not negative; 0 keeps everything"`
}

func (c *PurgeLogsCmd) Run() error {
	var (
		auditSvc auditdomain.Service
		boards   *config.BoardConfigHolder
		clk      clock.Clock
		log      *zap.Logger
	)
	return runOnce(func(ctx context.Context) error {
		days := boards.Get().LogRetentionDays
		if c.Days >= 0 {
			days = c.Days
		}
		deleted, err := auditSvc.Purge(ctx, clk.Now(), days)
		if err != nil {
			return err
		}
		log.Info("audit log purged", zap.Int("retention_days", days), zap.Int64("deleted", deleted))
		return nil
	}, server.Domains, fx.Populate(&auditSvc, &boards, &clk, &log))
}

type AutoResetCmd struct{}

func (c *AutoResetCmd) Run() error {
	var (
		sched *scheduler.Scheduler
		log   *zap.Logger
	)
	return runOnce(func(ctx context.Context) error {
		result, err := sched.MaybeRunNow(ctx)
		if err != nil {
			return err
		}
		log.Info("auto reset evaluated",
			zap.Bool("executed", result.Executed),
			zap.String("reason", result.Reason),
			zap.String("run_date", result.RunDate),
			zap.Int64("updated", result.Updated()),
		)
		return nil
	}, server.Domains, fx.Populate(&sched, &log))
}
