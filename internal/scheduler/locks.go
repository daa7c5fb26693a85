package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	schedulerdomain "github.com/smallbiznis/wardboard/internal/scheduler/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ensureRunRow creates the job's watermark row if it does not exist yet.
func ensureRunRow(ctx context.Context, tx *gorm.DB, job string) error {
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&schedulerdomain.SchedulerRun{JobKey: job}).Error
}

// claimDay moves the watermark to date. Only one caller per day sees a row
// change; a concurrent claimer blocks on the row and then matches nothing.
func claimDay(ctx context.Context, tx *gorm.DB, job, date string, now time.Time) (bool, error) {
	result := tx.WithContext(ctx).Exec(
		`UPDATE scheduler_runs
		 SET last_run_date = ?, last_run_at = ?
		 WHERE job_key = ? AND (last_run_date IS NULL OR last_run_date <> ?)`,
		date,
		now,
		job,
		date,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func lastRun(ctx context.Context, db *gorm.DB, job string) (*schedulerdomain.SchedulerRun, error) {
	var run schedulerdomain.SchedulerRun
	err := db.WithContext(ctx).Where("job_key = ?", job).Take(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// Locker is a best-effort cross-process mutex in Redis. The database claim
// stays authoritative; the lock only keeps idle replicas off the database.
type Locker struct {
	client *redis.Client
	script *redis.Script
}

func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{
		client: client,
		script: redis.NewScript(lockReleaseScript),
	}
}

// TryLock returns a release token when the lock was acquired.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l == nil || l.client == nil {
		return "", false, errors.New("lock client not configured")
	}
	if key == "" {
		return "", false, errors.New("lock key is empty")
	}
	if ttl <= 0 {
		return "", false, errors.New("lock ttl must be positive")
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

// Release deletes key only while it still holds token.
func (l *Locker) Release(ctx context.Context, key, token string) error {
	if l == nil || l.client == nil || key == "" || token == "" {
		return nil
	}
	return l.script.Run(ctx, l.client, []string{key}, token).Err()
}
