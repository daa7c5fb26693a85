package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/wardboard/internal/census/domain"
	"github.com/smallbiznis/wardboard/internal/clock"
	facilitydomain "github.com/smallbiznis/wardboard/internal/facility/domain"
	"github.com/smallbiznis/wardboard/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	Repo         domain.Repository
	FacilityRepo facilitydomain.Repository
	Metrics      *metrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	repo         domain.Repository
	facilityRepo facilitydomain.Repository
	metrics      *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("census.service"),
		clock:        p.Clock,
		repo:         p.Repo,
		facilityRepo: p.FacilityRepo,
		metrics:      p.Metrics,
	}
}

// ComputeBedCounts returns one AreaCount per active area in scope, ordered by
// area sort order. Areas without beds are reported with zeros.
func (s *Service) ComputeBedCounts(ctx context.Context, areaID *snowflake.ID, cfg domain.CountConfig) ([]domain.AreaCount, error) {
	areas, err := s.areasInScope(ctx, areaID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.CountBeds(ctx, s.db, areaID)
	if err != nil {
		return nil, err
	}

	occupied := keySet(cfg.OccupiedKeys)
	vacant := keySet(cfg.VacantKeys)

	counts := make([]domain.AreaCount, 0, len(areas))
	index := make(map[snowflake.ID]int, len(areas))
	for _, area := range areas {
		index[area.ID] = len(counts)
		counts = append(counts, domain.AreaCount{
			AreaID:    area.ID,
			AreaName:  area.Name,
			SortOrder: area.SortOrder,
		})
	}

	for _, row := range rows {
		i, ok := index[row.AreaID]
		if !ok {
			// room points at an inactive area
			continue
		}
		c := &counts[i]
		if !row.IsAvailable {
			c.UnavailableBeds += row.Beds
			continue
		}
		c.TotalAvailableBeds += row.Beds

		key := ""
		if row.StatusKey != nil {
			key = *row.StatusKey
		}
		switch {
		case occupied[key]:
			c.OccupiedBeds += row.Beds
		case vacant[key]:
		default:
			c.UnclassifiedBeds += row.Beds
		}
	}

	for i := range counts {
		counts[i].VacantBeds = counts[i].TotalAvailableBeds - counts[i].OccupiedBeds
	}

	s.metrics.RecordBoardQuery(ctx, "summary")
	return counts, nil
}

// Summary wraps ComputeBedCounts with cross-area totals.
func (s *Service) Summary(ctx context.Context, areaID *snowflake.ID, cfg domain.CountConfig) (*domain.Summary, error) {
	counts, err := s.ComputeBedCounts(ctx, areaID, cfg)
	if err != nil {
		return nil, err
	}
	return &domain.Summary{
		Areas:       counts,
		Totals:      Totals(counts),
		GeneratedAt: s.clock.Now(),
	}, nil
}

func Totals(counts []domain.AreaCount) domain.Totals {
	var t domain.Totals
	for _, c := range counts {
		t.TotalAvailableBeds += c.TotalAvailableBeds
		t.UnavailableBeds += c.UnavailableBeds
		t.OccupiedBeds += c.OccupiedBeds
		t.VacantBeds += c.VacantBeds
		t.UnclassifiedBeds += c.UnclassifiedBeds
	}
	return t
}

func (s *Service) areasInScope(ctx context.Context, areaID *snowflake.ID) ([]facilitydomain.Area, error) {
	if areaID == nil {
		return s.facilityRepo.ListAreas(ctx, s.db, true)
	}
	area, err := s.facilityRepo.FindAreaByID(ctx, s.db, *areaID)
	if err != nil {
		return nil, err
	}
	if area == nil || !area.IsActive {
		return nil, facilitydomain.ErrAreaNotFound
	}
	return []facilitydomain.Area{*area}, nil
}

func keySet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key != "" {
			set[key] = true
		}
	}
	return set
}
