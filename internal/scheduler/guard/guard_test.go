package guard

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/smallbiznis/wardboard/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDue(t *testing.T) {
	cfg := config.AutoResetConfig{At: "04:00", Timezone: "Asia/Tokyo"}

	tests := []struct {
		name     string
		now      time.Time
		wantDate string
		wantDue  bool
	}{
		{"one minute early", time.Date(2024, 5, 1, 18, 59, 0, 0, time.UTC), "2024-05-02", false},
		{"at cutoff", time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC), "2024-05-02", true},
		{"late evening", time.Date(2024, 5, 2, 14, 0, 0, 0, time.UTC), "2024-05-02", true},
		{"after local midnight", time.Date(2024, 5, 2, 15, 30, 0, 0, time.UTC), "2024-05-03", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, due, err := Due(tt.now, cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, date)
			assert.Equal(t, tt.wantDue, due)
		})
	}
}

func TestDue_InvalidCutoff(t *testing.T) {
	_, _, err := Due(time.Now(), config.AutoResetConfig{At: "25:00"})
	require.ErrorIs(t, err, config.ErrInvalidBoardConfig)
}
