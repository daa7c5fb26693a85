package migration

import (
	auditdomain "github.com/smallbiznis/wardboard/internal/audit/domain"
	authdomain "github.com/smallbiznis/wardboard/internal/auth/domain"
	facilitydomain "github.com/smallbiznis/wardboard/internal/facility/domain"
	occupancydomain "github.com/smallbiznis/wardboard/internal/occupancy/domain"
	schedulerdomain "github.com/smallbiznis/wardboard/internal/scheduler/domain"
	statusdomain "github.com/smallbiznis/wardboard/internal/status/domain"
)

// Models lists every table owned by the application, in dependency order.
func Models() []any {
	return []any{
		&statusdomain.Status{},
		&facilitydomain.Area{},
		&facilitydomain.Room{},
		&facilitydomain.Bed{},
		&occupancydomain.RoomState{},
		&occupancydomain.BedState{},
		&auditdomain.AuditEntry{},
		&authdomain.User{},
		&schedulerdomain.SchedulerRun{},
	}
}
