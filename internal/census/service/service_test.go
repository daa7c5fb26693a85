package service_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/wardboard/internal/census/domain"
	"github.com/smallbiznis/wardboard/internal/census/repository"
	"github.com/smallbiznis/wardboard/internal/census/service"
	"github.com/smallbiznis/wardboard/internal/clock"
	facilitydomain "github.com/smallbiznis/wardboard/internal/facility/domain"
	facilityrepository "github.com/smallbiznis/wardboard/internal/facility/repository"
	"github.com/smallbiznis/wardboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

var countConfig = domain.CountConfig{
	OccupiedKeys: []string{"occupied"},
	VacantKeys:   []string{"vacant"},
}

func newService(t *testing.T, db *gorm.DB) domain.Service {
	t.Helper()
	return service.NewService(service.Params{
		DB:           db,
		Log:          zaptest.NewLogger(t),
		Clock:        clock.NewFakeClock(testutil.Epoch),
		Repo:         repository.Provide(),
		FacilityRepo: facilityrepository.Provide(),
	})
}

func TestComputeBedCounts_ExcludesInactiveBedsAndRooms(t *testing.T) {
	db := testutil.OpenDB(t)
	fx := testutil.NewFixture(t, db)
	statuses := fx.DefaultStatuses()

	area := fx.Area("W", 1)
	room := fx.Room(area.ID, "201")
	closedRoom := fx.Room(area.ID, "202", testutil.InactiveRoom)

	occupiedBed := fx.Bed(room.ID, "201-A")
	fx.Bed(room.ID, "201-B")
	fx.Bed(room.ID, "201-C")
	inactive := fx.Bed(room.ID, "201-D", testutil.InactiveBed)
	hidden := fx.Bed(closedRoom.ID, "202-A")

	fx.BedState(occupiedBed.ID, statuses["occupied"].ID)
	fx.BedState(inactive.ID, statuses["occupied"].ID)
	fx.BedState(hidden.ID, statuses["occupied"].ID)

	counts, err := newService(t, db).ComputeBedCounts(context.Background(), &area.ID, countConfig)
	require.NoError(t, err)
	require.Len(t, counts, 1)

	got := counts[0]
	assert.Equal(t, area.ID, got.AreaID)
	assert.EqualValues(t, 3, got.TotalAvailableBeds)
	assert.EqualValues(t, 1, got.OccupiedBeds)
	assert.EqualValues(t, 2, got.VacantBeds)
	assert.EqualValues(t, 0, got.UnavailableBeds)
	assert.EqualValues(t, 2, got.UnclassifiedBeds)
}

func TestComputeBedCounts_AllAreas(t *testing.T) {
	db := testutil.OpenDB(t)
	fx := testutil.NewFixture(t, db)
	statuses := fx.DefaultStatuses()

	north := fx.Area("north", 2)
	south := fx.Area("south", 1)
	empty := fx.Area("empty", 3)
	fx.Area("closed", 0, testutil.InactiveArea)

	northRoom := fx.Room(north.ID, "N1")
	southRoom := fx.Room(south.ID, "S1")

	n1 := fx.Bed(northRoom.ID, "N1-A")
	n2 := fx.Bed(northRoom.ID, "N1-B")
	fx.Bed(northRoom.ID, "N1-C", testutil.Unavailable)
	s1 := fx.Bed(southRoom.ID, "S1-A")
	s2 := fx.Bed(southRoom.ID, "S1-B")

	fx.BedState(n1.ID, statuses["occupied"].ID)
	fx.BedState(n2.ID, statuses["vacant"].ID)
	fx.BedState(s1.ID, statuses["cleaning"].ID)
	fx.BedState(s2.ID, statuses["occupied"].ID)

	svc := newService(t, db)
	counts, err := svc.ComputeBedCounts(context.Background(), nil, countConfig)
	require.NoError(t, err)
	require.Len(t, counts, 3)

	assert.Equal(t, []snowflake.ID{south.ID, north.ID, empty.ID},
		[]snowflake.ID{counts[0].AreaID, counts[1].AreaID, counts[2].AreaID})

	assert.Equal(t, domain.AreaCount{
		AreaID: south.ID, AreaName: "south", SortOrder: 1,
		TotalAvailableBeds: 2, OccupiedBeds: 1, VacantBeds: 1, UnclassifiedBeds: 1,
	}, counts[0])
	assert.Equal(t, domain.AreaCount{
		AreaID: north.ID, AreaName: "north", SortOrder: 2,
		TotalAvailableBeds: 2, UnavailableBeds: 1, OccupiedBeds: 1, VacantBeds: 1,
	}, counts[1])
	assert.Equal(t, domain.AreaCount{AreaID: empty.ID, AreaName: "empty", SortOrder: 3}, counts[2])

	summary, err := svc.Summary(context.Background(), nil, countConfig)
	require.NoError(t, err)
	assert.Equal(t, domain.Totals{
		TotalAvailableBeds: 4,
		UnavailableBeds:    1,
		OccupiedBeds:       2,
		VacantBeds:         2,
		UnclassifiedBeds:   1,
	}, summary.Totals)
	assert.True(t, summary.GeneratedAt.Equal(testutil.Epoch))
}

func TestComputeBedCounts_UnknownArea(t *testing.T) {
	db := testutil.OpenDB(t)
	fx := testutil.NewFixture(t, db)
	closed := fx.Area("closed", 1, testutil.InactiveArea)
	svc := newService(t, db)

	_, err := svc.ComputeBedCounts(context.Background(), &closed.ID, countConfig)
	require.ErrorIs(t, err, facilitydomain.ErrAreaNotFound)

	missing := snowflake.ID(404)
	_, err = svc.ComputeBedCounts(context.Background(), &missing, countConfig)
	require.ErrorIs(t, err, facilitydomain.ErrAreaNotFound)
}

func TestRenderPDF(t *testing.T) {
	db := testutil.OpenDB(t)
	fx := testutil.NewFixture(t, db)
	fx.DefaultStatuses()
	area := fx.Area("east", 1)
	fx.Bed(fx.Room(area.ID, "101").ID, "101-A")

	svc := newService(t, db)
	summary, err := svc.Summary(context.Background(), nil, countConfig)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.RenderPDF(context.Background(), summary, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))

	assert.Error(t, svc.RenderPDF(context.Background(), nil, &buf))
}
