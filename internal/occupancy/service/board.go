package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	facilitydomain "github.com/smallbiznis/wardboard/internal/facility/domain"
	"github.com/smallbiznis/wardboard/internal/occupancy/domain"
	statusdomain "github.com/smallbiznis/wardboard/internal/status/domain"
)

// GetBoardData assembles the active rooms and beds of one area with their
// current states. Targets that never transitioned carry a nil state.
func (s *Service) GetBoardData(ctx context.Context, areaID snowflake.ID) (*domain.Board, error) {
	area, err := s.facilityRepo.FindAreaByID(ctx, s.db, areaID)
	if err != nil {
		return nil, err
	}
	if area == nil || !area.IsActive {
		return nil, facilitydomain.ErrAreaNotFound
	}

	rooms, err := s.facilityRepo.ListRooms(ctx, s.db, facilitydomain.RoomFilter{AreaID: &areaID, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	beds, err := s.facilityRepo.ListBeds(ctx, s.db, facilitydomain.BedFilter{AreaID: &areaID, ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	roomIDs := make([]snowflake.ID, 0, len(rooms))
	for _, room := range rooms {
		roomIDs = append(roomIDs, room.ID)
	}
	bedIDs := make([]snowflake.ID, 0, len(beds))
	for _, bed := range beds {
		bedIDs = append(bedIDs, bed.ID)
	}

	roomStates, err := s.repo.ListRoomStates(ctx, s.db, roomIDs)
	if err != nil {
		return nil, err
	}
	bedStates, err := s.repo.ListBedStates(ctx, s.db, bedIDs)
	if err != nil {
		return nil, err
	}

	statuses, err := s.statusRepo.List(ctx, s.db, false)
	if err != nil {
		return nil, err
	}
	statusByID := make(map[snowflake.ID]statusdomain.Status, len(statuses))
	selectable := make([]statusdomain.Status, 0, len(statuses))
	for _, status := range statuses {
		statusByID[status.ID] = status
		if status.IsActive {
			selectable = append(selectable, status)
		}
	}

	roomStateByID := make(map[snowflake.ID]*domain.StateView, len(roomStates))
	for _, state := range roomStates {
		roomStateByID[state.RoomID] = stateView(statusByID, state.StatusID, state.UpdatedAt, state.UpdatedBy, state.Note)
	}
	bedsByRoom := make(map[snowflake.ID][]domain.BoardBed, len(rooms))
	bedStateByID := make(map[snowflake.ID]*domain.StateView, len(bedStates))
	for _, state := range bedStates {
		bedStateByID[state.BedID] = stateView(statusByID, state.StatusID, state.UpdatedAt, state.UpdatedBy, state.Note)
	}
	for _, bed := range beds {
		bedsByRoom[bed.RoomID] = append(bedsByRoom[bed.RoomID], domain.BoardBed{
			Bed:   bed,
			State: bedStateByID[bed.ID],
		})
	}

	board := &domain.Board{
		Area:     *area,
		Rooms:    make([]domain.BoardRoom, 0, len(rooms)),
		Statuses: selectable,
	}
	for _, room := range rooms {
		entry := domain.BoardRoom{Room: room, Beds: bedsByRoom[room.ID]}
		if entry.Beds == nil {
			entry.Beds = []domain.BoardBed{}
		}
		// Bed states take precedence; a room's own state only shows when it has no beds.
		if len(entry.Beds) == 0 {
			entry.RoomState = roomStateByID[room.ID]
		}
		board.Rooms = append(board.Rooms, entry)
	}

	s.metrics.RecordBoardQuery(ctx, "board")
	return board, nil
}

func stateView(statuses map[snowflake.ID]statusdomain.Status, statusID snowflake.ID, updatedAt time.Time, updatedBy *snowflake.ID, note *string) *domain.StateView {
	status, ok := statuses[statusID]
	if !ok {
		return nil
	}
	return &domain.StateView{
		Status:    status,
		UpdatedAt: updatedAt,
		UpdatedBy: updatedBy,
		Note:      note,
	}
}
