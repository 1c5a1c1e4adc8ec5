package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/arena/internal/model"
)

// SpawnPointEntry is the entry point of one team.
type SpawnPointEntry struct {
	Team model.Team `yaml:"team"`
	X    int32      `yaml:"x"`
	Y    int32      `yaml:"y"`
	Z    int32      `yaml:"z"`
}

// Location returns the entry as a world location.
func (e SpawnPointEntry) Location() model.Location {
	return model.NewLocation(e.X, e.Y, e.Z, 0)
}

// RosterEntry is an actor spawned at server start.
type RosterEntry struct {
	ID    uint32     `yaml:"id"`
	Name  string     `yaml:"name"`
	Class string     `yaml:"class"`
	Team  model.Team `yaml:"team"`
}

// Arena holds all configuration for the arena server.
type Arena struct {
	// Network
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Authority loop
	TickInterval        time.Duration `yaml:"tick_interval"`
	EffectSweepInterval time.Duration `yaml:"effect_sweep_interval"`

	// Combat rules
	GlobalCooldown     time.Duration `yaml:"global_cooldown"`
	RangeTolerance     int32         `yaml:"range_tolerance"`      // extra units accepted on the authority
	RangeWarnThreshold int32         `yaml:"range_warn_threshold"` // drift above this is logged
	StoppingDistance   float64       `yaml:"stopping_distance"`
	RespawnDelay       time.Duration `yaml:"respawn_delay"`
	CritMultiplier     float64       `yaml:"crit_multiplier"`

	// CatalogPath points to a YAML skill catalog; empty = built-in.
	CatalogPath string `yaml:"catalog_path"`

	SpawnPoints []SpawnPointEntry `yaml:"spawn_points"`
	Roster      []RosterEntry     `yaml:"roster"`

	// Monster AI
	AITickInterval time.Duration `yaml:"ai_tick_interval"`
	AggroRange     int32         `yaml:"aggro_range"` // monsters notice hostiles within this distance
	ChaseRange     int32         `yaml:"chase_range"` // and give up beyond this one

	// Database
	Database DatabaseConfig `yaml:"database"`

	// Observers
	SubscriberBuffer int           `yaml:"subscriber_buffer"` // per-subscription event queue
	WriteTimeout     time.Duration `yaml:"write_timeout"`     // per-write deadline (default: 5s)
	ReadTimeout      time.Duration `yaml:"read_timeout"`      // idle client disconnect (default: 60s)
}

// DefaultArena returns Arena config with sensible defaults.
func DefaultArena() Arena {
	return Arena{
		BindAddress:         "0.0.0.0",
		Port:                7780,
		LogLevel:            "info",
		TickInterval:        50 * time.Millisecond,
		EffectSweepInterval: 500 * time.Millisecond,
		GlobalCooldown:      time.Second,
		RangeTolerance:      50,
		RangeWarnThreshold:  20,
		StoppingDistance:    10,
		RespawnDelay:        5 * time.Second,
		CritMultiplier:      2.0,
		SpawnPoints: []SpawnPointEntry{
			{Team: model.TeamRed, X: -1000},
			{Team: model.TeamBlue, X: 1000},
			{Team: model.TeamMonsters, Y: 1000},
		},
		Roster: []RosterEntry{
			{ID: 1, Name: "Aldric", Class: "warrior", Team: model.TeamRed},
			{ID: 2, Name: "Ysolde", Class: "cleric", Team: model.TeamRed},
			{ID: 3, Name: "Morwen", Class: "mage", Team: model.TeamBlue},
			{ID: 4, Name: "Brannoc", Class: "warrior", Team: model.TeamBlue},
			{ID: 100, Name: "Cave Spider", Class: "monster", Team: model.TeamMonsters},
		},
		AITickInterval: 500 * time.Millisecond,
		AggroRange:     600,
		ChaseRange:     1500,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "arena",
			Password: "arena",
			DBName:   "arena",
			SSLMode:  "disable",
		},
		SubscriberBuffer: 256,
		WriteTimeout:     5 * time.Second,
		ReadTimeout:      60 * time.Second,
	}
}

// LoadArena loads arena config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadArena(path string) (Arena, error) {
	cfg := DefaultArena()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values the server cannot run with.
func (a Arena) Validate() error {
	var errs []error
	if a.TickInterval <= 0 {
		errs = append(errs, errors.New("tick_interval must be positive"))
	}
	if a.EffectSweepInterval <= 0 {
		errs = append(errs, errors.New("effect_sweep_interval must be positive"))
	}
	if a.GlobalCooldown < 0 {
		errs = append(errs, errors.New("global_cooldown is negative"))
	}
	if a.RangeTolerance < 0 || a.RangeWarnThreshold < 0 {
		errs = append(errs, errors.New("range tolerance values must not be negative"))
	}
	if a.CritMultiplier < 1 {
		errs = append(errs, errors.New("crit_multiplier must be at least 1"))
	}
	if a.AITickInterval <= 0 {
		errs = append(errs, errors.New("ai_tick_interval must be positive"))
	}
	if a.ChaseRange < a.AggroRange {
		errs = append(errs, errors.New("chase_range must not be below aggro_range"))
	}
	if a.SubscriberBuffer <= 0 {
		errs = append(errs, errors.New("subscriber_buffer must be positive"))
	}

	seen := make(map[uint32]bool, len(a.Roster))
	for _, r := range a.Roster {
		if r.ID == 0 {
			errs = append(errs, fmt.Errorf("roster %q: id must be positive", r.Name))
			continue
		}
		if seen[r.ID] {
			errs = append(errs, fmt.Errorf("roster: duplicate id %d", r.ID))
		}
		seen[r.ID] = true
	}
	return errors.Join(errs...)
}

// SpawnPointMap returns the spawn points keyed by team.
func (a Arena) SpawnPointMap() map[model.Team]model.Location {
	out := make(map[model.Team]model.Location, len(a.SpawnPoints))
	for _, e := range a.SpawnPoints {
		out[e.Team] = e.Location()
	}
	return out
}
