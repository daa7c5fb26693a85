package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	auditrepository "github.com/smallbiznis/wardboard/internal/audit/repository"
	auditservice "github.com/smallbiznis/wardboard/internal/audit/service"
	authdomain "github.com/smallbiznis/wardboard/internal/auth/domain"
	"github.com/smallbiznis/wardboard/internal/auth/password"
	authrepository "github.com/smallbiznis/wardboard/internal/auth/repository"
	authservice "github.com/smallbiznis/wardboard/internal/auth/service"
	"github.com/smallbiznis/wardboard/internal/auth/session"
	"github.com/smallbiznis/wardboard/internal/authorization"
	censusrepository "github.com/smallbiznis/wardboard/internal/census/repository"
	censusservice "github.com/smallbiznis/wardboard/internal/census/service"
	"github.com/smallbiznis/wardboard/internal/clock"
	"github.com/smallbiznis/wardboard/internal/config"
	facilityrepository "github.com/smallbiznis/wardboard/internal/facility/repository"
	facilityservice "github.com/smallbiznis/wardboard/internal/facility/service"
	"github.com/smallbiznis/wardboard/internal/observability"
	occupancyrepository "github.com/smallbiznis/wardboard/internal/occupancy/repository"
	occupancyservice "github.com/smallbiznis/wardboard/internal/occupancy/service"
	"github.com/smallbiznis/wardboard/internal/scheduler"
	statusdomain "github.com/smallbiznis/wardboard/internal/status/domain"
	statusrepository "github.com/smallbiznis/wardboard/internal/status/repository"
	statusservice "github.com/smallbiznis/wardboard/internal/status/service"
	"github.com/smallbiznis/wardboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type testServer struct {
	srv      *Server
	db       *gorm.DB
	clock    *clock.FakeClock
	fixture  *testutil.Fixture
	auth     authdomain.Service
	statuses map[string]statusdomain.Status
}

func newTestServer(t *testing.T, board config.BoardConfig) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.OpenDB(t)
	log := zaptest.NewLogger(t)
	clk := clock.NewFakeClock(testutil.Epoch)
	node := testutil.NewNode(t)
	boards := config.NewStaticBoardConfigHolder(board)
	cfg := config.Config{SessionSecret: "test-session-secret-0123456789abcdef"}

	authSvc, err := authservice.NewService(authservice.Params{
		DB:     db,
		Log:    log,
		GenID:  node,
		Clock:  clk,
		Config: cfg,
		Repo:   authrepository.Provide(),
		Hasher: password.NewHasher(password.Params{Memory: 1024, Time: 1, Threads: 1, KeyLen: 16, SaltLen: 8}),
	})
	require.NoError(t, err)

	enforcer, err := authorization.NewEnforcer(db)
	require.NoError(t, err)

	auditSvc := auditservice.NewService(auditservice.Params{
		DB:         db,
		Log:        log,
		GenID:      node,
		Clock:      clk,
		Repo:       auditrepository.Provide(),
		StatusRepo: statusrepository.Provide(),
	})
	sched, err := scheduler.New(scheduler.Params{
		DB:         db,
		Log:        log,
		GenID:      node,
		Clock:      clk,
		Boards:     boards,
		StatusRepo: statusrepository.Provide(),
		StateRepo:  occupancyrepository.Provide(),
		AuditSvc:   auditSvc,
	})
	require.NoError(t, err)

	srv := NewServer(ServerParams{
		Gin:      NewEngine(observability.Config{Environment: "test"}, nil),
		Log:      log,
		Clock:    clk,
		Boards:   boards,
		Sessions: session.NewManager(cfg),
		Authsvc:  authSvc,
		AuthzSvc: authorization.NewService(authorization.Params{Log: log, Enforcer: enforcer}),
		AuditSvc: auditSvc,
		CensusSvc: censusservice.NewService(censusservice.Params{
			DB:           db,
			Log:          log,
			Clock:        clk,
			Repo:         censusrepository.Provide(),
			FacilityRepo: facilityrepository.Provide(),
		}),
		FacilitySvc: facilityservice.NewService(facilityservice.Params{
			DB:    db,
			Log:   log,
			GenID: node,
			Clock: clk,
			Repo:  facilityrepository.Provide(),
		}),
		OccupancySvc: occupancyservice.NewService(occupancyservice.Params{
			DB:           db,
			Log:          log,
			Clock:        clk,
			Repo:         occupancyrepository.Provide(),
			FacilityRepo: facilityrepository.Provide(),
			StatusRepo:   statusrepository.Provide(),
			AuditSvc:     auditSvc,
		}),
		StatusSvc: statusservice.NewService(statusservice.Params{
			DB:    db,
			Log:   log,
			GenID: node,
			Clock: clk,
			Repo:  statusrepository.Provide(),
		}),
		Scheduler: sched,
	})

	fixture := testutil.NewFixture(t, db)
	return &testServer{
		srv:      srv,
		db:       db,
		clock:    clk,
		fixture:  fixture,
		auth:     authSvc,
		statuses: fixture.DefaultStatuses(),
	}
}

func (ts *testServer) user(t *testing.T, username string, role authdomain.Role) *authdomain.User {
	t.Helper()
	user, err := ts.auth.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Username: username,
		Password: username + "-pw",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func (ts *testServer) do(t *testing.T, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	ts.srv.Engine().ServeHTTP(w, req)
	return w
}

// login signs username in and returns the session cookies.
func (ts *testServer) login(t *testing.T, username string) []*http.Cookie {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/auth/login", LoginRequest{Username: username, Password: username + "-pw"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestVersion(t *testing.T) {
	ts := newTestServer(t, config.DefaultBoardConfig())

	w := ts.do(t, http.MethodGet, "/api/version", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"version": "1.4", "system": "WardBoard-OSS", "status": "OK"}, body)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ts := newTestServer(t, config.DefaultBoardConfig())
	ts.user(t, "nurse", authdomain.RoleOperator)

	w := ts.do(t, http.MethodPost, "/auth/login", LoginRequest{Username: "nurse", Password: "wrong"}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	payload := decodeError(t, w)
	assert.Equal(t, "unauthorized", payload.Type)
	assert.Equal(t, "invalid_credentials", payload.Message)
}

func TestMe_RoundTrip(t *testing.T) {
	ts := newTestServer(t, config.DefaultBoardConfig())
	ts.user(t, "nurse", authdomain.RoleViewer)

	w := ts.do(t, http.MethodGet, "/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	cookies := ts.login(t, "nurse")
	w = ts.do(t, http.MethodGet, "/auth/me", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"nurse"`)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestDeactivatedUserLosesSession(t *testing.T) {
	ts := newTestServer(t, config.DefaultBoardConfig())
	admin := ts.user(t, "chief", authdomain.RoleAdmin)
	nurse := ts.user(t, "nurse", authdomain.RoleViewer)
	cookies := ts.login(t, "nurse")

	_, err := ts.auth.ToggleActive(context.Background(), admin.ID, nurse.ID)
	require.NoError(t, err)

	w := ts.do(t, http.MethodGet, "/auth/me", nil, cookies)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestApplyState_ViewerForbidden(t *testing.T) {
	ts := newTestServer(t, config.DefaultBoardConfig())
	area := ts.fixture.Area("east", 1)
	room := ts.fixture.Room(area.ID, "101")
	bed := ts.fixture.Bed(room.ID, "101-A")
	ts.user(t, "viewer", authdomain.RoleViewer)
	cookies := ts.login(t, "viewer")

	w := ts.do(t, http.MethodPost, "/api/state/bed/"+bed.ID.String(), StateChangeRequest{
		StatusID: ts.statuses["occupied"].ID.String(),
	}, cookies)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", decodeError(t, w).Type)

	var count int64
	require.NoError(t, ts.db.Table("bed_states").Count(&count).Error)
	assert.Zero(t, count)
}

func TestApplyState_OperatorUpdatesBoard(t *testing.T) {
	ts := newTestServer(t, config.DefaultBoardConfig())
	area := ts.fixture.Area("east", 1)
	room := ts.fixture.Room(area.ID, "101")
	bed := ts.fixture.Bed(room.ID, "101-A")
	ts.user(t, "op", authdomain.RoleOperator)
	cookies := ts.login(t, "op")

	w := ts.do(t, http.MethodPost, "/api/state/bed/"+bed.ID.String(), StateChangeRequest{
		StatusID: ts.statuses["occupied"].ID.String(),
		Note:     "admitted",
	}, cookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/board/"+area.ID.String(), nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var board struct {
		Rooms []struct {
			Beds []struct {
				State *struct {
					Status struct {
						Key string `json:"key"`
					} `json:"status"`
					Note *string `json:"note"`
				} `json:"state"`
			} `json:"beds"`
		} `json:"rooms"`
		ConfirmStateChange bool `json:"confirm_state_change"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	require.Len(t, board.Rooms, 1)
	require.Len(t, board.Rooms[0].Beds, 1)
	state := board.Rooms[0].Beds[0].State
	require.NotNil(t, state)
	assert.Equal(t, "occupied", state.Status.Key)
	require.NotNil(t, state.Note)
	assert.Equal(t, "admitted", *state.Note)
	assert.True(t, board.ConfirmStateChange)
}

func TestApplyState_InvalidInput(t *testing.T) {
	ts := newTestServer(t, config.DefaultBoardConfig())
	area := ts.fixture.Area("east", 1)
	room := ts.fixture.Room(area.ID, "101")
	ts.user(t, "op", authdomain.RoleOperator)
	cookies := ts.login(t, "op")

	w := ts.do(t, http.MethodPost, "/api/state/room/not-an-id", StateChangeRequest{StatusID: "1"}, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/state/room/"+room.ID.String(), StateChangeRequest{StatusID: ""}, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/state/room/424242", StateChangeRequest{
		StatusID: ts.statuses["vacant"].ID.String(),
	}, cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeError(t, w).Type)
}

func TestDisplayBoard_PublicAndTrimmed(t *testing.T) {
	board := config.DefaultBoardConfig()
	board.Display.HideEmptyRooms = true
	ts := newTestServer(t, board)
	area := ts.fixture.Area("east", 1)
	room := ts.fixture.Room(area.ID, "101")
	ts.fixture.Room(area.ID, "102")
	bed := ts.fixture.Bed(room.ID, "101-A")
	ts.user(t, "op", authdomain.RoleOperator)
	cookies := ts.login(t, "op")

	w := ts.do(t, http.MethodPost, "/api/state/bed/"+bed.ID.String(), StateChangeRequest{
		StatusID: ts.statuses["occupied"].ID.String(),
		Note:     "private note",
	}, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/display/board/"+area.ID.String(), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "private note")
	assert.NotContains(t, w.Body.String(), "updated_by")

	var resp struct {
		Rooms []struct {
			Code string `json:"code"`
		} `json:"rooms"`
		Display struct {
			HideEmptyRooms bool `json:"hide_empty_rooms"`
		} `json:"display"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Rooms, 1)
	assert.Equal(t, "101", resp.Rooms[0].Code)
	assert.True(t, resp.Display.HideEmptyRooms)
}

func TestBoard_RequiresLogin(t *testing.T) {
	ts := newTestServer(t, config.DefaultBoardConfig())
	area := ts.fixture.Area("east", 1)

	w := ts.do(t, http.MethodGet, "/api/board/"+area.ID.String(), nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/api/display/board/"+area.ID.String(), nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSummary(t *testing.T) {
	ts := newTestServer(t, config.DefaultBoardConfig())
	area := ts.fixture.Area("east", 1)
	room := ts.fixture.Room(area.ID, "101")
	occupied := ts.fixture.Bed(room.ID, "101-A")
	ts.fixture.Bed(room.ID, "101-B")
	ts.fixture.Bed(room.ID, "101-C", testutil.Unavailable)
	ts.fixture.BedState(occupied.ID, ts.statuses["occupied"].ID)
	ts.user(t, "viewer", authdomain.RoleViewer)
	cookies := ts.login(t, "viewer")

	w := ts.do(t, http.MethodGet, "/api/summary/"+area.ID.String(), nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var summary struct {
		Totals struct {
			TotalAvailableBeds int64 `json:"total_available_beds"`
			OccupiedBeds       int64 `json:"occupied_beds"`
			VacantBeds         int64 `json:"vacant_beds"`
			UnavailableBeds    int64 `json:"unavailable_beds"`
		} `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.EqualValues(t, 2, summary.Totals.TotalAvailableBeds)
	assert.EqualValues(t, 1, summary.Totals.OccupiedBeds)
	assert.EqualValues(t, 1, summary.Totals.VacantBeds)
	assert.EqualValues(t, 1, summary.Totals.UnavailableBeds)

	w = ts.do(t, http.MethodGet, "/api/summary.pdf", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdmin_CreateAreaAndValidation(t *testing.T) {
	ts := newTestServer(t, config.DefaultBoardConfig())
	ts.user(t, "chief", authdomain.RoleAdmin)
	ts.user(t, "op", authdomain.RoleOperator)

	opCookies := ts.login(t, "op")
	w := ts.do(t, http.MethodPost, "/api/admin/areas", gin.H{"name": "ICU"}, opCookies)
	assert.Equal(t, http.StatusForbidden, w.Code)

	cookies := ts.login(t, "chief")
	w = ts.do(t, http.MethodPost, "/api/admin/areas", gin.H{"name": "ICU", "sort_order": 2}, cookies)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"name":"ICU"`)

	w = ts.do(t, http.MethodPost, "/api/admin/areas", gin.H{"name": "  "}, cookies)
	require.Equal(t, http.StatusBadRequest, w.Code)
	payload := decodeError(t, w)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "invalid_name", payload.Errors[0].Code)
	assert.Equal(t, "name", payload.Errors[0].Field)
}

func TestAdmin_CannotDeactivateSelf(t *testing.T) {
	ts := newTestServer(t, config.DefaultBoardConfig())
	admin := ts.user(t, "chief", authdomain.RoleAdmin)
	cookies := ts.login(t, "chief")

	w := ts.do(t, http.MethodPost, "/api/admin/users/"+admin.ID.String()+"/toggle", nil, cookies)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "cannot_deactivate_self", decodeError(t, w).Errors[0].Code)
}

func TestInstall_OnlyOnce(t *testing.T) {
	ts := newTestServer(t, config.DefaultBoardConfig())

	w := ts.do(t, http.MethodPost, "/install", InstallRequest{Username: "root", Password: "secret"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NotEmpty(t, w.Result().Cookies())

	w = ts.do(t, http.MethodPost, "/install", InstallRequest{Username: "other", Password: "secret"}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", decodeError(t, w).Type)
}

func TestSwitchTheme(t *testing.T) {
	t.Run("allowed", func(t *testing.T) {
		ts := newTestServer(t, config.DefaultBoardConfig())

		w := ts.do(t, http.MethodPost, "/api/theme/purple", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = ts.do(t, http.MethodPost, "/api/theme/dark", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Result().Cookies())
	})

	t.Run("locked", func(t *testing.T) {
		board := config.DefaultBoardConfig()
		board.Theme.AllowSwitch = false
		ts := newTestServer(t, board)

		w := ts.do(t, http.MethodPost, "/api/theme/dark", nil, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "theme_switch_disabled", decodeError(t, w).Message)
	})
}

func TestAuditLogs_AdminOnly(t *testing.T) {
	ts := newTestServer(t, config.DefaultBoardConfig())
	area := ts.fixture.Area("east", 1)
	room := ts.fixture.Room(area.ID, "101")
	ts.user(t, "chief", authdomain.RoleAdmin)
	ts.user(t, "op", authdomain.RoleOperator)

	cookies := ts.login(t, "chief")
	w := ts.do(t, http.MethodPost, "/api/state/room/"+room.ID.String(), StateChangeRequest{
		StatusID: ts.statuses["cleaning"].ID.String(),
	}, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/admin/logs?target_type=room", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []struct {
			TargetType string `json:"target_type"`
		} `json:"data"`
		PageInfo struct {
			HasMore bool `json:"has_more"`
		} `json:"page_info"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, "room", list.Data[0].TargetType)
	assert.False(t, list.PageInfo.HasMore)

	w = ts.do(t, http.MethodGet, "/api/admin/logs.xlsx", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.NotZero(t, w.Body.Len())

	opCookies := ts.login(t, "op")
	w = ts.do(t, http.MethodGet, "/api/admin/logs", nil, opCookies)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAutoReset_RunsOnRequestAfterCutoff(t *testing.T) {
	board := config.DefaultBoardConfig()
	board.AutoReset.Enabled = true
	board.AutoReset.At = "04:00"
	board.AutoReset.Timezone = "UTC"
	ts := newTestServer(t, board)
	area := ts.fixture.Area("east", 1)
	room := ts.fixture.Room(area.ID, "101")
	bed := ts.fixture.Bed(room.ID, "101-A")
	ts.fixture.BedState(bed.ID, ts.statuses["cleaning"].ID)

	// testutil.Epoch is 09:00 UTC, past the cutoff.
	w := ts.do(t, http.MethodGet, "/api/version", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var statusID int64
	require.NoError(t, ts.db.Table("bed_states").Select("status_id").Where("bed_id = ?", bed.ID).Scan(&statusID).Error)
	assert.EqualValues(t, ts.statuses["vacant"].ID, statusID)
	assert.True(t, ts.srv.resetGate.done("2024-05-01"))
}
