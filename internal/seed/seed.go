// Package seed installs the baseline catalog and, on request, demo wards.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/wardboard/internal/auth/domain"
	"github.com/smallbiznis/wardboard/internal/clock"
	facilitydomain "github.com/smallbiznis/wardboard/internal/facility/domain"
	occupancydomain "github.com/smallbiznis/wardboard/internal/occupancy/domain"
	statusdomain "github.com/smallbiznis/wardboard/internal/status/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrDataPresent = errors.New("seed: areas already exist")

var demoAreas = []string{"一般病棟", "ICU", "産科病棟"}

const (
	demoRoomsPerArea = 4
	demoNote         = "初期データ"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	StatusSvc   statusdomain.Service
	FacilitySvc facilitydomain.Service
	AuthSvc     authdomain.Service
	StateRepo   occupancydomain.Repository
}

type Seeder struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	statusSvc   statusdomain.Service
	facilitySvc facilitydomain.Service
	authSvc     authdomain.Service
	stateRepo   occupancydomain.Repository
}

func New(p Params) *Seeder {
	return &Seeder{
		db:          p.DB,
		log:         p.Log.Named("seed"),
		clock:       p.Clock,
		statusSvc:   p.StatusSvc,
		facilitySvc: p.FacilitySvc,
		authSvc:     p.AuthSvc,
		stateRepo:   p.StateRepo,
	}
}

// Bootstrap installs the default statuses and the configured admin on an
// empty database. It is safe to run on every start.
func (s *Seeder) Bootstrap(ctx context.Context) error {
	created, err := s.statusSvc.EnsureDefaults(ctx)
	if err != nil {
		return fmt.Errorf("seed statuses: %w", err)
	}
	admin, err := s.authSvc.EnsureDefaultAdmin(ctx)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	s.log.Info("bootstrap complete",
		zap.Int("statuses_created", created),
		zap.Bool("admin_created", admin != nil),
	)
	return nil
}

type DemoResult struct {
	Areas int
	Rooms int
	Beds  int
}

// Demo creates three wards of four rooms with two to four beds each and
// random initial states. It refuses to run when any area exists.
func (s *Seeder) Demo(ctx context.Context, rng *rand.Rand) (DemoResult, error) {
	var result DemoResult
	if err := s.Bootstrap(ctx); err != nil {
		return result, err
	}

	areas, err := s.facilitySvc.ListAreas(ctx, false)
	if err != nil {
		return result, err
	}
	if len(areas) > 0 {
		return result, ErrDataPresent
	}
	statuses, err := s.statusSvc.List(ctx, true)
	if err != nil {
		return result, err
	}
	if len(statuses) == 0 {
		return result, errors.New("seed: no active statuses")
	}

	for i, name := range demoAreas {
		area, err := s.facilitySvc.CreateArea(ctx, facilitydomain.AreaRequest{Name: name, SortOrder: i + 1})
		if err != nil {
			return result, err
		}
		result.Areas++

		for r := 1; r <= demoRoomsPerArea; r++ {
			code := fmt.Sprintf("%d", 100+i*10+r)
			room, err := s.facilitySvc.CreateRoom(ctx, facilitydomain.RoomRequest{
				AreaID:    area.ID.String(),
				Code:      code,
				Name:      code + "号室",
				SortOrder: r,
			})
			if err != nil {
				return result, err
			}
			result.Rooms++
			if err := s.initialRoomState(ctx, room.ID, pick(rng, statuses, true)); err != nil {
				return result, err
			}

			beds := 2 + rng.IntN(3)
			for b := 1; b <= beds; b++ {
				bed, err := s.facilitySvc.CreateBed(ctx, facilitydomain.BedRequest{
					RoomID:    room.ID.String(),
					Code:      fmt.Sprintf("%s-%d", code, b),
					Name:      fmt.Sprintf("%d番ベッド", b),
					SortOrder: b,
				})
				if err != nil {
					return result, err
				}
				result.Beds++
				if err := s.initialBedState(ctx, bed.ID, pick(rng, statuses, false)); err != nil {
					return result, err
				}
			}
		}
	}

	s.log.Info("demo data created",
		zap.Int("areas", result.Areas),
		zap.Int("rooms", result.Rooms),
		zap.Int("beds", result.Beds),
	)
	return result, nil
}

func (s *Seeder) initialRoomState(ctx context.Context, roomID, statusID snowflake.ID) error {
	note := demoNote
	_, err := s.stateRepo.ApplyRoomState(ctx, s.db, occupancydomain.RoomState{
		RoomID:    roomID,
		StatusID:  statusID,
		UpdatedAt: s.clock.Now(),
		Note:      &note,
	})
	return err
}

func (s *Seeder) initialBedState(ctx context.Context, bedID, statusID snowflake.ID) error {
	note := demoNote
	_, err := s.stateRepo.ApplyBedState(ctx, s.db, occupancydomain.BedState{
		BedID:     bedID,
		StatusID:  statusID,
		UpdatedAt: s.clock.Now(),
		Note:      &note,
	})
	return err
}

// pick returns a random status applicable to the target kind.
func pick(rng *rand.Rand, statuses []statusdomain.Status, room bool) snowflake.ID {
	candidates := make([]statusdomain.Status, 0, len(statuses))
	for _, st := range statuses {
		if (room && st.AppliesToRoom) || (!room && st.AppliesToBed) {
			candidates = append(candidates, st)
		}
	}
	if len(candidates) == 0 {
		candidates = statuses
	}
	return candidates[rng.IntN(len(candidates))].ID
}
