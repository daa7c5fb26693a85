package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/wardboard/internal/audit/domain"
	"github.com/smallbiznis/wardboard/internal/config"
	occupancydomain "github.com/smallbiznis/wardboard/internal/occupancy/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// resolvedRule is a reset rule whose keys exist in the catalog.
type resolvedRule struct {
	rule   config.ResetRule
	filter occupancydomain.ResetFilter
}

// execute applies every rule to room states, then every rule to bed states,
// and records the audit trail. It runs inside the claiming transaction.
func (s *Scheduler) execute(ctx context.Context, tx *gorm.DB, now time.Time, cfg config.AutoResetConfig, run *jobRun, result *RunResult) error {
	rules, err := s.resolveRules(ctx, tx, now, cfg)
	if err != nil {
		return err
	}
	for _, r := range rules {
		result.Rules = append(result.Rules, r.rule)
	}

	perItem := cfg.LogMode == config.ResetLogPerItem
	for _, r := range rules {
		var n int64
		if perItem {
			n, err = s.resetRoomsPerItem(ctx, tx, r)
		} else {
			n, err = s.stateRepo.ResetRoomStates(ctx, tx, r.filter)
		}
		if err != nil {
			return fmt.Errorf("reset rooms %s->%s: %w", r.rule.From, r.rule.To, err)
		}
		result.Rooms += n
	}
	for _, r := range rules {
		var n int64
		if perItem {
			n, err = s.resetBedsPerItem(ctx, tx, r)
		} else {
			n, err = s.stateRepo.ResetBedStates(ctx, tx, r.filter)
		}
		if err != nil {
			return fmt.Errorf("reset beds %s->%s: %w", r.rule.From, r.rule.To, err)
		}
		result.Beds += n
	}
	run.updated = result.Updated()

	if perItem || result.Updated() == 0 {
		return nil
	}

	rulesMeta := make([]map[string]any, 0, len(result.Rules))
	for _, rule := range result.Rules {
		rulesMeta = append(rulesMeta, map[string]any{"from": rule.From, "to": rule.To})
	}
	_, err = s.auditSvc.Record(ctx, tx, auditdomain.RecordRequest{
		TargetType: auditdomain.TargetSystem,
		ChangedAt:  now,
		Note:       fmt.Sprintf("auto reset executed: %d items updated", result.Updated()),
		Meta: map[string]any{
			"job":     run.job,
			"run_id":  run.runID,
			"updated": result.Updated(),
			"rooms":   result.Rooms,
			"beds":    result.Beds,
			"scope":   cfg.Scope,
			"rules":   rulesMeta,
		},
	})
	if err != nil {
		return fmt.Errorf("record auto reset: %w", err)
	}
	return nil
}

// resolveRules drops rules whose keys are unknown or that map a status onto
// itself. Rule order is preserved.
func (s *Scheduler) resolveRules(ctx context.Context, tx *gorm.DB, now time.Time, cfg config.AutoResetConfig) ([]resolvedRule, error) {
	var areaIDs []snowflake.ID
	if cfg.Scope == config.ResetScopeArea {
		for _, id := range cfg.AreaIDs {
			areaIDs = append(areaIDs, snowflake.ID(id))
		}
	}

	out := make([]resolvedRule, 0, len(cfg.Rules))
	for _, rule := range cfg.Rules {
		if rule.From == "" || rule.To == "" || rule.From == rule.To {
			continue
		}
		from, err := s.statusRepo.FindByKey(ctx, tx, rule.From)
		if err != nil {
			return nil, err
		}
		to, err := s.statusRepo.FindByKey(ctx, tx, rule.To)
		if err != nil {
			return nil, err
		}
		if from == nil || to == nil {
			s.logger(ctx).Warn("auto reset rule skipped, unknown status key",
				zap.String("from", rule.From),
				zap.String("to", rule.To),
			)
			continue
		}
		out = append(out, resolvedRule{
			rule: rule,
			filter: occupancydomain.ResetFilter{
				FromStatusID: from.ID,
				ToStatusID:   to.ID,
				AreaIDs:      areaIDs,
				At:           now,
			},
		})
	}
	return out, nil
}

func (s *Scheduler) resetRoomsPerItem(ctx context.Context, tx *gorm.DB, r resolvedRule) (int64, error) {
	candidates, err := s.stateRepo.LockRoomResetCandidates(ctx, tx, r.filter)
	if err != nil {
		return 0, err
	}
	ids := make([]snowflake.ID, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.TargetID)
	}
	n, err := s.stateRepo.ResetRoomStatesByID(ctx, tx, r.filter, ids)
	if err != nil {
		return 0, err
	}
	for _, c := range candidates {
		if err := s.recordItem(ctx, tx, auditdomain.TargetRoom, c, nil, r); err != nil {
			return 0, err
		}
	}
	return n, nil
}

func (s *Scheduler) resetBedsPerItem(ctx context.Context, tx *gorm.DB, r resolvedRule) (int64, error) {
	candidates, err := s.stateRepo.LockBedResetCandidates(ctx, tx, r.filter)
	if err != nil {
		return 0, err
	}
	ids := make([]snowflake.ID, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.TargetID)
	}
	n, err := s.stateRepo.ResetBedStatesByID(ctx, tx, r.filter, ids)
	if err != nil {
		return 0, err
	}
	for _, c := range candidates {
		bedID := c.TargetID
		if err := s.recordItem(ctx, tx, auditdomain.TargetBed, c, &bedID, r); err != nil {
			return 0, err
		}
	}
	return n, nil
}

func (s *Scheduler) recordItem(ctx context.Context, tx *gorm.DB, target auditdomain.TargetType, c occupancydomain.ResetCandidate, bedID *snowflake.ID, r resolvedRule) error {
	roomID, areaID := c.RoomID, c.AreaID
	from, to := r.filter.FromStatusID, r.filter.ToStatusID
	meta := map[string]any{"job": "auto_reset"}
	if run := jobRunFromContext(ctx); run != nil {
		meta["run_id"] = run.runID
	}
	_, err := s.auditSvc.Record(ctx, tx, auditdomain.RecordRequest{
		TargetType:   target,
		RoomID:       &roomID,
		BedID:        bedID,
		AreaID:       &areaID,
		FromStatusID: &from,
		ToStatusID:   &to,
		ChangedAt:    r.filter.At,
		Note:         "auto reset",
		Meta:         meta,
	})
	return err
}
