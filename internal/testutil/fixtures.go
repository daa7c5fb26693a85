package testutil

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	facilitydomain "github.com/smallbiznis/wardboard/internal/facility/domain"
	occupancydomain "github.com/smallbiznis/wardboard/internal/occupancy/domain"
	statusdomain "github.com/smallbiznis/wardboard/internal/status/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Fixture inserts catalog and facility rows directly, bypassing services.
type Fixture struct {
	t    *testing.T
	db   *gorm.DB
	node *snowflake.Node
}

func NewFixture(t *testing.T, db *gorm.DB) *Fixture {
	return &Fixture{t: t, db: db, node: NewNode(t)}
}

func (f *Fixture) Status(key string, opts ...func(*statusdomain.Status)) statusdomain.Status {
	f.t.Helper()
	status := statusdomain.Status{
		ID:            f.node.Generate(),
		Key:           key,
		Label:         key,
		ColorTag:      "bg-secondary",
		IconTag:       "",
		IsActive:      true,
		AppliesToRoom: true,
		AppliesToBed:  true,
		CreatedAt:     Epoch,
		UpdatedAt:     Epoch,
	}
	for _, opt := range opts {
		opt(&status)
	}
	require.NoError(f.t, f.db.Create(&status).Error)
	return status
}

// DefaultStatuses installs vacant, occupied, cleaning and hold keyed by key.
func (f *Fixture) DefaultStatuses() map[string]statusdomain.Status {
	f.t.Helper()
	out := make(map[string]statusdomain.Status)
	for _, seed := range statusdomain.DefaultSeeds() {
		out[seed.Key] = f.Status(seed.Key, func(s *statusdomain.Status) {
			s.Label = seed.Label
			s.SortOrder = seed.SortOrder
		})
	}
	return out
}

func (f *Fixture) Area(name string, sortOrder int, opts ...func(*facilitydomain.Area)) facilitydomain.Area {
	f.t.Helper()
	area := facilitydomain.Area{
		ID:        f.node.Generate(),
		Name:      name,
		Slug:      name,
		SortOrder: sortOrder,
		IsActive:  true,
		CreatedAt: Epoch,
		UpdatedAt: Epoch,
	}
	for _, opt := range opts {
		opt(&area)
	}
	require.NoError(f.t, f.db.Create(&area).Error)
	return area
}

func (f *Fixture) Room(areaID snowflake.ID, code string, opts ...func(*facilitydomain.Room)) facilitydomain.Room {
	f.t.Helper()
	room := facilitydomain.Room{
		ID:        f.node.Generate(),
		AreaID:    areaID,
		Code:      code,
		Name:      code,
		IsActive:  true,
		CreatedAt: Epoch,
		UpdatedAt: Epoch,
	}
	for _, opt := range opts {
		opt(&room)
	}
	require.NoError(f.t, f.db.Create(&room).Error)
	return room
}

func (f *Fixture) Bed(roomID snowflake.ID, code string, opts ...func(*facilitydomain.Bed)) facilitydomain.Bed {
	f.t.Helper()
	bed := facilitydomain.Bed{
		ID:          f.node.Generate(),
		RoomID:      roomID,
		Code:        code,
		Name:        code,
		IsActive:    true,
		IsAvailable: true,
		CreatedAt:   Epoch,
		UpdatedAt:   Epoch,
	}
	for _, opt := range opts {
		opt(&bed)
	}
	require.NoError(f.t, f.db.Create(&bed).Error)
	return bed
}

func (f *Fixture) BedState(bedID, statusID snowflake.ID) {
	f.t.Helper()
	require.NoError(f.t, f.db.Create(&occupancydomain.BedState{
		BedID:     bedID,
		StatusID:  statusID,
		UpdatedAt: Epoch,
	}).Error)
}

func (f *Fixture) RoomState(roomID, statusID snowflake.ID) {
	f.t.Helper()
	require.NoError(f.t, f.db.Create(&occupancydomain.RoomState{
		RoomID:    roomID,
		StatusID:  statusID,
		UpdatedAt: Epoch,
	}).Error)
}

func Unavailable(b *facilitydomain.Bed) { b.IsAvailable = false }
func InactiveBed(b *facilitydomain.Bed) { b.IsActive = false }
func InactiveRoom(r *facilitydomain.Room) { r.IsActive = false }
func InactiveArea(a *facilitydomain.Area) { a.IsActive = false }
