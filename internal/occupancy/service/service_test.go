package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/wardboard/internal/audit/domain"
	auditrepository "github.com/smallbiznis/wardboard/internal/audit/repository"
	auditservice "github.com/smallbiznis/wardboard/internal/audit/service"
	"github.com/smallbiznis/wardboard/internal/clock"
	"github.com/smallbiznis/wardboard/internal/domainerr"
	facilitydomain "github.com/smallbiznis/wardboard/internal/facility/domain"
	facilityrepository "github.com/smallbiznis/wardboard/internal/facility/repository"
	"github.com/smallbiznis/wardboard/internal/occupancy/domain"
	"github.com/smallbiznis/wardboard/internal/occupancy/repository"
	"github.com/smallbiznis/wardboard/internal/occupancy/service"
	statusdomain "github.com/smallbiznis/wardboard/internal/status/domain"
	statusrepository "github.com/smallbiznis/wardboard/internal/status/repository"
	"github.com/smallbiznis/wardboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type harness struct {
	db    *gorm.DB
	clock *clock.FakeClock
	fx    *testutil.Fixture
	svc   domain.Service
	audit auditdomain.Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.OpenDB(t)
	log := zaptest.NewLogger(t)
	clk := clock.NewFakeClock(testutil.Epoch)
	node := testutil.NewNode(t)

	audit := auditservice.NewService(auditservice.Params{
		DB:         db,
		Log:        log,
		GenID:      node,
		Clock:      clk,
		Repo:       auditrepository.Provide(),
		StatusRepo: statusrepository.Provide(),
	})
	svc := service.NewService(service.Params{
		DB:           db,
		Log:          log,
		Clock:        clk,
		Repo:         repository.Provide(),
		FacilityRepo: facilityrepository.Provide(),
		StatusRepo:   statusrepository.Provide(),
		AuditSvc:     audit,
	})
	return &harness{db: db, clock: clk, fx: testutil.NewFixture(t, db), svc: svc, audit: audit}
}

func (h *harness) entries(t *testing.T) []auditdomain.AuditEntry {
	t.Helper()
	resp, err := h.audit.List(context.Background(), auditdomain.ListRequest{})
	require.NoError(t, err)
	return resp.Entries
}

func TestApplyTransition_FirstChangeHasNoPreviousStatus(t *testing.T) {
	h := newHarness(t)
	statuses := h.fx.DefaultStatuses()
	area := h.fx.Area("east", 1)
	room := h.fx.Room(area.ID, "101")
	bed := h.fx.Bed(room.ID, "101-A")
	actor := snowflake.ID(42)

	res, err := h.svc.ApplyTransition(context.Background(), domain.ApplyTransitionRequest{
		TargetType: auditdomain.TargetBed,
		TargetID:   bed.ID,
		StatusID:   statuses["occupied"].ID,
		ActorID:    &actor,
		Note:       "  admitted ",
	})
	require.NoError(t, err)
	assert.Nil(t, res.FromStatusID)
	assert.Equal(t, "occupied", res.Status.Key)
	assert.Equal(t, area.ID, res.AreaID)

	var state domain.BedState
	require.NoError(t, h.db.Where("bed_id = ?", bed.ID).Take(&state).Error)
	assert.Equal(t, statuses["occupied"].ID, state.StatusID)
	require.NotNil(t, state.Note)
	assert.Equal(t, "admitted", *state.Note)
	require.NotNil(t, state.UpdatedBy)
	assert.Equal(t, actor, *state.UpdatedBy)
	assert.True(t, state.UpdatedAt.Equal(testutil.Epoch))

	entries := h.entries(t)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, res.AuditEntryID, entry.ID)
	assert.Equal(t, auditdomain.TargetBed, entry.TargetType)
	assert.Nil(t, entry.FromStatusID)
	require.NotNil(t, entry.ToStatusID)
	assert.Equal(t, statuses["occupied"].ID, *entry.ToStatusID)
	require.NotNil(t, entry.BedID)
	assert.Equal(t, bed.ID, *entry.BedID)
	require.NotNil(t, entry.RoomID)
	assert.Equal(t, room.ID, *entry.RoomID)
	require.NotNil(t, entry.AreaID)
	assert.Equal(t, area.ID, *entry.AreaID)
	require.NotNil(t, entry.Note)
	assert.Equal(t, *state.Note, *entry.Note)
}

func TestApplyTransition_BlankNoteStoredAsNull(t *testing.T) {
	h := newHarness(t)
	statuses := h.fx.DefaultStatuses()
	area := h.fx.Area("east", 1)
	room := h.fx.Room(area.ID, "101")

	_, err := h.svc.ApplyTransition(context.Background(), domain.ApplyTransitionRequest{
		TargetType: auditdomain.TargetRoom,
		TargetID:   room.ID,
		StatusID:   statuses["cleaning"].ID,
		Note:       " \t ",
	})
	require.NoError(t, err)

	var state domain.RoomState
	require.NoError(t, h.db.Where("room_id = ?", room.ID).Take(&state).Error)
	assert.Nil(t, state.Note)

	entries := h.entries(t)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].Note)
}

func TestApplyTransition_ChainsAuditHistory(t *testing.T) {
	h := newHarness(t)
	statuses := h.fx.DefaultStatuses()
	area := h.fx.Area("east", 1)
	room := h.fx.Room(area.ID, "102")

	sequence := []string{"occupied", "cleaning", "vacant", "occupied"}
	for _, key := range sequence {
		h.clock.Advance(time.Minute)
		_, err := h.svc.ApplyTransition(context.Background(), domain.ApplyTransitionRequest{
			TargetType: auditdomain.TargetRoom,
			TargetID:   room.ID,
			StatusID:   statuses[key].ID,
		})
		require.NoError(t, err)
	}

	entries := h.entries(t)
	require.Len(t, entries, len(sequence))

	// newest first; each entry's from equals the previous entry's to
	for i := len(entries) - 1; i >= 0; i-- {
		want := statuses[sequence[len(entries)-1-i]].ID
		require.NotNil(t, entries[i].ToStatusID)
		assert.Equal(t, want, *entries[i].ToStatusID)
		if i == len(entries)-1 {
			assert.Nil(t, entries[i].FromStatusID)
			continue
		}
		require.NotNil(t, entries[i].FromStatusID)
		assert.Equal(t, *entries[i+1].ToStatusID, *entries[i].FromStatusID)
	}

	var count int64
	require.NoError(t, h.db.Model(&domain.RoomState{}).Where("room_id = ?", room.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestApplyTransition_StatusNotApplicable(t *testing.T) {
	h := newHarness(t)
	roomOnly := h.fx.Status("closed", func(s *statusdomain.Status) { s.AppliesToBed = false })
	area := h.fx.Area("east", 1)
	room := h.fx.Room(area.ID, "103")
	bed := h.fx.Bed(room.ID, "103-A")

	_, err := h.svc.ApplyTransition(context.Background(), domain.ApplyTransitionRequest{
		TargetType: auditdomain.TargetBed,
		TargetID:   bed.ID,
		StatusID:   roomOnly.ID,
	})
	require.ErrorIs(t, err, domain.ErrStatusNotApplicable)
	assert.ErrorIs(t, err, domainerr.ErrValidation)

	var count int64
	require.NoError(t, h.db.Model(&domain.BedState{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, h.entries(t))
}

func TestApplyTransition_Errors(t *testing.T) {
	h := newHarness(t)
	statuses := h.fx.DefaultStatuses()
	inactiveStatus := h.fx.Status("retired", func(s *statusdomain.Status) { s.IsActive = false })
	area := h.fx.Area("east", 1)
	room := h.fx.Room(area.ID, "104")
	closedRoom := h.fx.Room(area.ID, "105", testutil.InactiveRoom)
	bedInClosedRoom := h.fx.Bed(closedRoom.ID, "105-A")
	retiredBed := h.fx.Bed(room.ID, "104-B", testutil.InactiveBed)

	tests := []struct {
		name string
		req  domain.ApplyTransitionRequest
		want error
	}{
		{
			name: "unknown target type",
			req:  domain.ApplyTransitionRequest{TargetType: auditdomain.TargetSystem, TargetID: room.ID, StatusID: statuses["vacant"].ID},
			want: domain.ErrInvalidTargetType,
		},
		{
			name: "missing room",
			req:  domain.ApplyTransitionRequest{TargetType: auditdomain.TargetRoom, TargetID: 999, StatusID: statuses["vacant"].ID},
			want: facilitydomain.ErrRoomNotFound,
		},
		{
			name: "inactive room",
			req:  domain.ApplyTransitionRequest{TargetType: auditdomain.TargetRoom, TargetID: closedRoom.ID, StatusID: statuses["vacant"].ID},
			want: facilitydomain.ErrRoomNotFound,
		},
		{
			name: "bed in inactive room",
			req:  domain.ApplyTransitionRequest{TargetType: auditdomain.TargetBed, TargetID: bedInClosedRoom.ID, StatusID: statuses["vacant"].ID},
			want: facilitydomain.ErrBedNotFound,
		},
		{
			name: "inactive bed",
			req:  domain.ApplyTransitionRequest{TargetType: auditdomain.TargetBed, TargetID: retiredBed.ID, StatusID: statuses["vacant"].ID},
			want: facilitydomain.ErrBedNotFound,
		},
		{
			name: "missing status",
			req:  domain.ApplyTransitionRequest{TargetType: auditdomain.TargetRoom, TargetID: room.ID, StatusID: 12345},
			want: statusdomain.ErrStatusNotFound,
		},
		{
			name: "inactive status",
			req:  domain.ApplyTransitionRequest{TargetType: auditdomain.TargetRoom, TargetID: room.ID, StatusID: inactiveStatus.ID},
			want: domain.ErrStatusInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.ApplyTransition(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, h.entries(t))
}

func TestApplyTransition_AuditFailureRollsBackState(t *testing.T) {
	h := newHarness(t)
	statuses := h.fx.DefaultStatuses()
	area := h.fx.Area("east", 1)
	room := h.fx.Room(area.ID, "106")
	bed := h.fx.Bed(room.ID, "106-A")
	h.fx.BedState(bed.ID, statuses["vacant"].ID)

	testutil.FailOn(t, h.db, "INSERT INTO audit_entries", assert.AnError)

	_, err := h.svc.ApplyTransition(context.Background(), domain.ApplyTransitionRequest{
		TargetType: auditdomain.TargetBed,
		TargetID:   bed.ID,
		StatusID:   statuses["occupied"].ID,
	})
	require.ErrorIs(t, err, assert.AnError)

	var state domain.BedState
	require.NoError(t, h.db.Where("bed_id = ?", bed.ID).Take(&state).Error)
	assert.Equal(t, statuses["vacant"].ID, state.StatusID)
}

func TestGetBoardData(t *testing.T) {
	h := newHarness(t)
	statuses := h.fx.DefaultStatuses()
	h.fx.Status("retired", func(s *statusdomain.Status) { s.IsActive = false })
	area := h.fx.Area("east", 1)
	other := h.fx.Area("west", 2)

	second := h.fx.Room(area.ID, "202", func(r *facilitydomain.Room) { r.SortOrder = 2 })
	first := h.fx.Room(area.ID, "201", func(r *facilitydomain.Room) { r.SortOrder = 1 })
	h.fx.Room(area.ID, "203", testutil.InactiveRoom)
	h.fx.Room(other.ID, "301")

	bedA := h.fx.Bed(first.ID, "201-A")
	bedB := h.fx.Bed(first.ID, "201-B", testutil.Unavailable)
	h.fx.Bed(first.ID, "201-C", testutil.InactiveBed)
	h.fx.BedState(bedA.ID, statuses["occupied"].ID)
	h.fx.RoomState(second.ID, statuses["cleaning"].ID)

	board, err := h.svc.GetBoardData(context.Background(), area.ID)
	require.NoError(t, err)

	assert.Equal(t, area.ID, board.Area.ID)
	require.Len(t, board.Rooms, 2)
	assert.Equal(t, first.ID, board.Rooms[0].ID)
	assert.Equal(t, second.ID, board.Rooms[1].ID)

	beds := board.Rooms[0].Beds
	require.Len(t, beds, 2)
	assert.Equal(t, bedA.ID, beds[0].ID)
	require.NotNil(t, beds[0].State)
	assert.Equal(t, "occupied", beds[0].State.Status.Key)
	assert.Equal(t, bedB.ID, beds[1].ID)
	assert.False(t, beds[1].IsAvailable)
	assert.Nil(t, beds[1].State)

	assert.Empty(t, board.Rooms[1].Beds)
	require.NotNil(t, board.Rooms[1].RoomState)
	assert.Equal(t, "cleaning", board.Rooms[1].RoomState.Status.Key)

	assert.Len(t, board.Statuses, 4)
}

func TestGetBoardData_BedStatesHideRoomState(t *testing.T) {
	h := newHarness(t)
	statuses := h.fx.DefaultStatuses()
	area := h.fx.Area("W", 1)
	room := h.fx.Room(area.ID, "101")
	bed := h.fx.Bed(room.ID, "101-A")
	h.fx.RoomState(room.ID, statuses["cleaning"].ID)
	h.fx.BedState(bed.ID, statuses["occupied"].ID)

	board, err := h.svc.GetBoardData(context.Background(), area.ID)
	require.NoError(t, err)

	require.Len(t, board.Rooms, 1)
	require.Len(t, board.Rooms[0].Beds, 1)
	assert.Nil(t, board.Rooms[0].RoomState)
	require.NotNil(t, board.Rooms[0].Beds[0].State)
	assert.Equal(t, "occupied", board.Rooms[0].Beds[0].State.Status.Key)
}

func TestGetBoardData_UnknownOrInactiveArea(t *testing.T) {
	h := newHarness(t)
	closed := h.fx.Area("closed", 1, testutil.InactiveArea)

	_, err := h.svc.GetBoardData(context.Background(), closed.ID)
	require.ErrorIs(t, err, facilitydomain.ErrAreaNotFound)

	_, err = h.svc.GetBoardData(context.Background(), 777)
	require.ErrorIs(t, err, domainerr.ErrNotFound)
}
