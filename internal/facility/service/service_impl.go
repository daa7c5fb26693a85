package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/wardboard/internal/clock"
	"github.com/smallbiznis/wardboard/internal/facility/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

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
		log:   p.Log.Named("facility.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) ListAreas(ctx context.Context, activeOnly bool) ([]domain.Area, error) {
	return s.repo.ListAreas(ctx, s.db, activeOnly)
}

func (s *Service) GetArea(ctx context.Context, id snowflake.ID) (*domain.Area, error) {
	area, err := s.repo.FindAreaByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if area == nil {
		return nil, domain.ErrAreaNotFound
	}
	return area, nil
}

func (s *Service) CreateArea(ctx context.Context, req domain.AreaRequest) (*domain.Area, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now()
	area := &domain.Area{
		ID:        s.genID.Generate(),
		Name:      name,
		Slug:      slug.Make(name),
		SortOrder: req.SortOrder,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertArea(ctx, s.db, area); err != nil {
		return nil, err
	}
	s.log.Info("area created", zap.String("area_id", area.ID.String()))
	return area, nil
}

func (s *Service) UpdateArea(ctx context.Context, id snowflake.ID, req domain.AreaRequest) (*domain.Area, error) {
	area, err := s.GetArea(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	area.Name = name
	area.Slug = slug.Make(name)
	area.SortOrder = req.SortOrder
	area.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateArea(ctx, s.db, area); err != nil {
		return nil, err
	}
	return area, nil
}

func (s *Service) ToggleArea(ctx context.Context, id snowflake.ID) (*domain.Area, error) {
	area, err := s.GetArea(ctx, id)
	if err != nil {
		return nil, err
	}
	area.IsActive = !area.IsActive
	area.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateArea(ctx, s.db, area); err != nil {
		return nil, err
	}
	s.log.Info("area toggled", zap.String("area_id", area.ID.String()), zap.Bool("is_active", area.IsActive))
	return area, nil
}

func (s *Service) ListRooms(ctx context.Context, filter domain.RoomFilter) ([]domain.Room, error) {
	return s.repo.ListRooms(ctx, s.db, filter)
}

func (s *Service) CreateRoom(ctx context.Context, req domain.RoomRequest) (*domain.Room, error) {
	room := &domain.Room{ID: s.genID.Generate(), IsActive: true}
	if err := s.applyRoomRequest(ctx, room, req); err != nil {
		return nil, err
	}
	room.CreatedAt = room.UpdatedAt
	if err := s.repo.InsertRoom(ctx, s.db, room); err != nil {
		return nil, err
	}
	s.log.Info("room created", zap.String("room_id", room.ID.String()), zap.String("area_id", room.AreaID.String()))
	return room, nil
}

func (s *Service) UpdateRoom(ctx context.Context, id snowflake.ID, req domain.RoomRequest) (*domain.Room, error) {
	room, err := s.getRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyRoomRequest(ctx, room, req); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRoom(ctx, s.db, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *Service) ToggleRoom(ctx context.Context, id snowflake.ID) (*domain.Room, error) {
	room, err := s.getRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	room.IsActive = !room.IsActive
	room.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateRoom(ctx, s.db, room); err != nil {
		return nil, err
	}
	s.log.Info("room toggled", zap.String("room_id", room.ID.String()), zap.Bool("is_active", room.IsActive))
	return room, nil
}

func (s *Service) ListBeds(ctx context.Context, filter domain.BedFilter) ([]domain.Bed, error) {
	return s.repo.ListBeds(ctx, s.db, filter)
}

func (s *Service) CreateBed(ctx context.Context, req domain.BedRequest) (*domain.Bed, error) {
	bed := &domain.Bed{ID: s.genID.Generate(), IsActive: true, IsAvailable: true}
	if err := s.applyBedRequest(ctx, bed, req); err != nil {
		return nil, err
	}
	bed.CreatedAt = bed.UpdatedAt
	if err := s.repo.InsertBed(ctx, s.db, bed); err != nil {
		return nil, err
	}
	s.log.Info("bed created", zap.String("bed_id", bed.ID.String()), zap.String("room_id", bed.RoomID.String()))
	return bed, nil
}

func (s *Service) UpdateBed(ctx context.Context, id snowflake.ID, req domain.BedRequest) (*domain.Bed, error) {
	bed, err := s.getBed(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyBedRequest(ctx, bed, req); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateBed(ctx, s.db, bed); err != nil {
		return nil, err
	}
	return bed, nil
}

func (s *Service) ToggleBed(ctx context.Context, id snowflake.ID) (*domain.Bed, error) {
	bed, err := s.getBed(ctx, id)
	if err != nil {
		return nil, err
	}
	bed.IsActive = !bed.IsActive
	bed.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateBed(ctx, s.db, bed); err != nil {
		return nil, err
	}
	s.log.Info("bed toggled", zap.String("bed_id", bed.ID.String()), zap.Bool("is_active", bed.IsActive))
	return bed, nil
}

func (s *Service) applyRoomRequest(ctx context.Context, room *domain.Room, req domain.RoomRequest) error {
	areaID, err := snowflake.ParseString(strings.TrimSpace(req.AreaID))
	if err != nil || areaID == 0 {
		return domain.ErrInvalidArea
	}
	area, err := s.repo.FindAreaByID(ctx, s.db, areaID)
	if err != nil {
		return err
	}
	if area == nil {
		return domain.ErrInvalidArea
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return domain.ErrInvalidCode
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = code
	}

	room.AreaID = areaID
	room.Code = code
	room.Name = name
	room.SortOrder = req.SortOrder
	room.UpdatedAt = s.clock.Now()
	return nil
}

func (s *Service) applyBedRequest(ctx context.Context, bed *domain.Bed, req domain.BedRequest) error {
	roomID, err := snowflake.ParseString(strings.TrimSpace(req.RoomID))
	if err != nil || roomID == 0 {
		return domain.ErrInvalidRoom
	}
	room, err := s.repo.FindRoomByID(ctx, s.db, roomID)
	if err != nil {
		return err
	}
	if room == nil {
		return domain.ErrInvalidRoom
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return domain.ErrInvalidCode
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = code
	}

	bed.RoomID = roomID
	bed.Code = code
	bed.Name = name
	bed.SortOrder = req.SortOrder
	if req.IsAvailable != nil {
		bed.IsAvailable = *req.IsAvailable
	}
	bed.UpdatedAt = s.clock.Now()
	return nil
}

func (s *Service) getRoom(ctx context.Context, id snowflake.ID) (*domain.Room, error) {
	room, err := s.repo.FindRoomByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

func (s *Service) getBed(ctx context.Context, id snowflake.ID) (*domain.Bed, error) {
	bed, err := s.repo.FindBedByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if bed == nil {
		return nil, domain.ErrBedNotFound
	}
	return bed, nil
}
