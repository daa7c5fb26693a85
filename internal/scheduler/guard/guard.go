package guard

import (
	"time"

	"github.com/smallbiznis/wardboard/internal/config"
)

const dateLayout = "2006-01-02"

// Due reports whether the daily cutoff has passed for now, and returns the
// calendar day (in the configured zone) the run would be recorded under.
func Due(now time.Time, cfg config.AutoResetConfig) (string, bool, error) {
	hour, minute, err := cfg.Cutoff()
	if err != nil {
		return "", false, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return "", false, err
	}

	local := now.In(loc)
	cutoff := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	return local.Format(dateLayout), !local.Before(cutoff), nil
}
