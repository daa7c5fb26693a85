package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/smallbiznis/wardboard/internal/domainerr"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var ErrInvalidBoardConfig = domainerr.Validation("invalid_board_config")

const (
	ResetScopeAll  = "all"
	ResetScopeArea = "area"

	ResetLogSummary = "summary"
	ResetLogPerItem = "per_item"
)

var cutoffPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)

// BoardConfig is the operator-tunable behavior of the board. Services receive
// a snapshot of it per call rather than reading it from global state.
type BoardConfig struct {
	OccupiedStatusKeys []string        `mapstructure:"occupied_status_keys"`
	VacantStatusKeys   []string        `mapstructure:"vacant_status_keys"`
	LogRetentionDays   int             `mapstructure:"log_retention_days"`
	ConfirmStateChange bool            `mapstructure:"confirm_state_change"`
	AutoReset          AutoResetConfig `mapstructure:"auto_reset"`
	Display            DisplayConfig   `mapstructure:"display"`
	Theme              ThemeConfig     `mapstructure:"theme"`
}

type ResetRule struct {
	From string `mapstructure:"from" json:"from"`
	To   string `mapstructure:"to" json:"to"`
}

type AutoResetConfig struct {
	Enabled  bool        `mapstructure:"enabled"`
	At       string      `mapstructure:"at"`
	Timezone string      `mapstructure:"timezone"`
	Rules    []ResetRule `mapstructure:"rules"`
	Scope    string      `mapstructure:"scope"`
	AreaIDs  []int64     `mapstructure:"areas"`
	LogMode  string      `mapstructure:"log_mode"`
}

type DisplayConfig struct {
	RefreshInterval int  `mapstructure:"refresh_interval" json:"refresh_interval"`
	ShowUpdatedAt   bool `mapstructure:"show_updated_at" json:"show_updated_at"`
	Compact         bool `mapstructure:"compact" json:"compact"`
	HideEmptyRooms  bool `mapstructure:"hide_empty_rooms" json:"hide_empty_rooms"`
}

type ThemeConfig struct {
	Default     string `mapstructure:"default" json:"default"`
	AllowSwitch bool   `mapstructure:"allow_switch" json:"allow_switch"`
}

func DefaultBoardConfig() BoardConfig {
	return BoardConfig{
		OccupiedStatusKeys: []string{"occupied"},
		VacantStatusKeys:   []string{"vacant"},
		LogRetentionDays:   90,
		ConfirmStateChange: true,
		AutoReset: AutoResetConfig{
			Enabled:  false,
			At:       "04:00",
			Timezone: "Local",
			Rules: []ResetRule{
				{From: "cleaning", To: "vacant"},
				{From: "hold", To: "vacant"},
			},
			Scope:   ResetScopeAll,
			LogMode: ResetLogSummary,
		},
		Display: DisplayConfig{
			RefreshInterval: 30,
			ShowUpdatedAt:   true,
		},
		Theme: ThemeConfig{
			Default:     "light",
			AllowSwitch: true,
		},
	}
}

// Cutoff returns the configured wall-clock hour and minute.
func (a AutoResetConfig) Cutoff() (int, int, error) {
	m := cutoffPattern.FindStringSubmatch(strings.TrimSpace(a.At))
	if m == nil {
		return 0, 0, fmt.Errorf("%w: auto_reset.at %q is not HH:MM", ErrInvalidBoardConfig, a.At)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return hour, minute, nil
}

func (a AutoResetConfig) Location() (*time.Location, error) {
	tz := strings.TrimSpace(a.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: auto_reset.timezone %q: %v", ErrInvalidBoardConfig, tz, err)
	}
	return loc, nil
}

func (a AutoResetConfig) Validate() error {
	if _, _, err := a.Cutoff(); err != nil {
		return err
	}
	if _, err := a.Location(); err != nil {
		return err
	}
	switch a.Scope {
	case ResetScopeAll:
	case ResetScopeArea:
		if len(a.AreaIDs) == 0 {
			return fmt.Errorf("%w: auto_reset.scope %q requires at least one area", ErrInvalidBoardConfig, a.Scope)
		}
	default:
		return fmt.Errorf("%w: auto_reset.scope %q must be %q or %q", ErrInvalidBoardConfig, a.Scope, ResetScopeAll, ResetScopeArea)
	}
	switch a.LogMode {
	case ResetLogSummary, ResetLogPerItem:
	default:
		return fmt.Errorf("%w: auto_reset.log_mode %q", ErrInvalidBoardConfig, a.LogMode)
	}
	for i, rule := range a.Rules {
		if strings.TrimSpace(rule.From) == "" || strings.TrimSpace(rule.To) == "" {
			return fmt.Errorf("%w: auto_reset.rules[%d] needs from and to", ErrInvalidBoardConfig, i)
		}
	}
	return nil
}

func (c BoardConfig) Validate() error {
	if c.LogRetentionDays < 0 {
		return fmt.Errorf("%w: log_retention_days cannot be negative", ErrInvalidBoardConfig)
	}
	if c.Display.RefreshInterval < 0 {
		return fmt.Errorf("%w: display.refresh_interval cannot be negative", ErrInvalidBoardConfig)
	}
	switch c.Theme.Default {
	case "light", "dark":
	default:
		return fmt.Errorf("%w: theme.default %q", ErrInvalidBoardConfig, c.Theme.Default)
	}
	return c.AutoReset.Validate()
}

func normalizeBoardConfig(cfg BoardConfig) BoardConfig {
	cfg.OccupiedStatusKeys = normalizeKeys(cfg.OccupiedStatusKeys)
	cfg.VacantStatusKeys = normalizeKeys(cfg.VacantStatusKeys)
	cfg.AutoReset.Scope = strings.ToLower(strings.TrimSpace(cfg.AutoReset.Scope))
	if cfg.AutoReset.Scope == "" {
		cfg.AutoReset.Scope = ResetScopeAll
	}
	cfg.AutoReset.LogMode = strings.ToLower(strings.TrimSpace(cfg.AutoReset.LogMode))
	if cfg.AutoReset.LogMode == "" {
		cfg.AutoReset.LogMode = ResetLogSummary
	}
	if strings.TrimSpace(cfg.AutoReset.At) == "" {
		cfg.AutoReset.At = "04:00"
	}
	for i := range cfg.AutoReset.Rules {
		cfg.AutoReset.Rules[i].From = strings.TrimSpace(cfg.AutoReset.Rules[i].From)
		cfg.AutoReset.Rules[i].To = strings.TrimSpace(cfg.AutoReset.Rules[i].To)
	}
	cfg.Theme.Default = strings.ToLower(strings.TrimSpace(cfg.Theme.Default))
	if cfg.Theme.Default == "" {
		cfg.Theme.Default = "light"
	}
	return cfg
}

func normalizeKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out = append(out, k)
	}
	return out
}

type BoardConfigHolder struct {
	current atomic.Value // holds BoardConfig
}

// NewStaticBoardConfigHolder returns a holder that never reloads.
func NewStaticBoardConfigHolder(cfg BoardConfig) *BoardConfigHolder {
	holder := &BoardConfigHolder{}
	holder.current.Store(normalizeBoardConfig(cfg))
	return holder
}

// NewBoardConfigHolder reads board.yml (or BOARD_CONFIG_PATH) and keeps the
// snapshot current while the file changes on disk. Environment variables
// prefixed with WARDBOARD_ override individual keys.
func NewBoardConfigHolder(cfg Config, log *zap.Logger) (*BoardConfigHolder, error) {
	log = log.Named("config.board")
	v := viper.New()

	if cfg.BoardConfigPath != "" {
		v.SetConfigFile(cfg.BoardConfigPath)
	} else {
		v.SetConfigName("board")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/wardboard")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("WARDBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setBoardDefaults(v, DefaultBoardConfig())

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
		log.Info("board config file not found, using defaults")
	}

	current, err := decodeBoardConfig(v)
	if err != nil {
		return nil, err
	}

	holder := &BoardConfigHolder{}
	holder.current.Store(current)

	if fileLoaded {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			updated, err := decodeBoardConfig(v)
			if err != nil {
				log.Warn("board config reload ignored", zap.String("file", e.Name), zap.Error(err))
				return
			}
			holder.current.Store(updated)
			log.Info("board config reloaded", zap.String("file", e.Name))
		})
	}

	return holder, nil
}

func (h *BoardConfigHolder) Get() BoardConfig {
	return h.current.Load().(BoardConfig)
}

func decodeBoardConfig(v *viper.Viper) (BoardConfig, error) {
	var cfg BoardConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return BoardConfig{}, fmt.Errorf("%w: %v", ErrInvalidBoardConfig, err)
	}
	cfg = normalizeBoardConfig(cfg)
	if err := cfg.Validate(); err != nil {
		return BoardConfig{}, err
	}
	return cfg, nil
}

func setBoardDefaults(v *viper.Viper, d BoardConfig) {
	rules := make([]map[string]string, 0, len(d.AutoReset.Rules))
	for _, r := range d.AutoReset.Rules {
		rules = append(rules, map[string]string{"from": r.From, "to": r.To})
	}
	v.SetDefault("occupied_status_keys", d.OccupiedStatusKeys)
	v.SetDefault("vacant_status_keys", d.VacantStatusKeys)
	v.SetDefault("log_retention_days", d.LogRetentionDays)
	v.SetDefault("confirm_state_change", d.ConfirmStateChange)
	v.SetDefault("auto_reset.enabled", d.AutoReset.Enabled)
	v.SetDefault("auto_reset.at", d.AutoReset.At)
	v.SetDefault("auto_reset.timezone", d.AutoReset.Timezone)
	v.SetDefault("auto_reset.rules", rules)
	v.SetDefault("auto_reset.scope", d.AutoReset.Scope)
	v.SetDefault("auto_reset.areas", []int64{})
	v.SetDefault("auto_reset.log_mode", d.AutoReset.LogMode)
	v.SetDefault("display.refresh_interval", d.Display.RefreshInterval)
	v.SetDefault("display.show_updated_at", d.Display.ShowUpdatedAt)
	v.SetDefault("display.compact", d.Display.Compact)
	v.SetDefault("display.hide_empty_rooms", d.Display.HideEmptyRooms)
	v.SetDefault("theme.default", d.Theme.Default)
	v.SetDefault("theme.allow_switch", d.Theme.AllowSwitch)
}
