package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/wardboard/internal/clock"
	"github.com/smallbiznis/wardboard/internal/status/domain"
	"github.com/smallbiznis/wardboard/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var keyPattern = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("status.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]domain.Status, error) {
	return s.repo.List(ctx, s.db, activeOnly)
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Status, error) {
	status, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return nil, domain.ErrStatusNotFound
	}
	return status, nil
}

func (s *Service) GetByKey(ctx context.Context, key string) (*domain.Status, error) {
	status, err := s.repo.FindByKey(ctx, s.db, key)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return nil, domain.ErrStatusNotFound
	}
	return status, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Status, error) {
	key := strings.TrimSpace(req.Key)
	if !keyPattern.MatchString(key) {
		return nil, domain.ErrInvalidKey
	}
	label := strings.TrimSpace(req.Label)
	if label == "" {
		return nil, domain.ErrInvalidLabel
	}

	now := s.clock.Now()
	status := &domain.Status{
		ID:            s.genID.Generate(),
		Key:           key,
		Label:         label,
		ColorTag:      strings.TrimSpace(req.ColorTag),
		IconTag:       strings.TrimSpace(req.IconTag),
		SortOrder:     req.SortOrder,
		IsActive:      true,
		AppliesToRoom: boolOr(req.AppliesToRoom, true),
		AppliesToBed:  boolOr(req.AppliesToBed, true),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if status.ColorTag == "" {
		status.ColorTag = "bg-secondary"
	}
	if !status.AppliesToRoom && !status.AppliesToBed {
		return nil, domain.ErrNoTarget
	}

	if err := s.repo.Insert(ctx, s.db, status); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateKey
		}
		return nil, err
	}
	s.log.Info("status created", zap.String("key", key), zap.String("status_id", status.ID.String()))
	return status, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateRequest) (*domain.Status, error) {
	status, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Label != nil {
		label := strings.TrimSpace(*req.Label)
		if label == "" {
			return nil, domain.ErrInvalidLabel
		}
		status.Label = label
	}
	if req.ColorTag != nil {
		status.ColorTag = strings.TrimSpace(*req.ColorTag)
	}
	if req.IconTag != nil {
		status.IconTag = strings.TrimSpace(*req.IconTag)
	}
	if req.SortOrder != nil {
		status.SortOrder = *req.SortOrder
	}
	status.AppliesToRoom = boolOr(req.AppliesToRoom, status.AppliesToRoom)
	status.AppliesToBed = boolOr(req.AppliesToBed, status.AppliesToBed)
	if !status.AppliesToRoom && !status.AppliesToBed {
		return nil, domain.ErrNoTarget
	}
	status.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, status); err != nil {
		return nil, err
	}
	return status, nil
}

// ToggleActive flips is_active. Existing state rows keep pointing at a
// deactivated status; it only stops being selectable.
func (s *Service) ToggleActive(ctx context.Context, id snowflake.ID) (*domain.Status, error) {
	status, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	status.IsActive = !status.IsActive
	status.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, status); err != nil {
		return nil, err
	}
	s.log.Info("status toggled", zap.String("key", status.Key), zap.Bool("is_active", status.IsActive))
	return status, nil
}

// EnsureDefaults installs the default catalog when no status exists yet.
func (s *Service) EnsureDefaults(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx, s.db)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	created := 0
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.clock.Now()
		for _, seed := range domain.DefaultSeeds() {
			status := &domain.Status{
				ID:            s.genID.Generate(),
				Key:           seed.Key,
				Label:         seed.Label,
				ColorTag:      seed.ColorTag,
				IconTag:       seed.IconTag,
				SortOrder:     seed.SortOrder,
				IsActive:      true,
				AppliesToRoom: true,
				AppliesToBed:  true,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := s.repo.Insert(ctx, tx, status); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("default statuses installed", zap.Int("count", created))
	return created, nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
