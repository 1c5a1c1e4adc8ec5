package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/udisondev/arena/internal/model"
)

func TestLoadArena_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadArena(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadArena() error = %v", err)
	}
	if cfg.TickInterval != DefaultArena().TickInterval {
		t.Errorf("TickInterval = %v, want default", cfg.TickInterval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadArena_Overrides(t *testing.T) {
	doc := `
port: 9000
log_level: debug
tick_interval: 100ms
range_tolerance: 80
spawn_points:
  - team: blue
    x: 500
    y: -20
roster:
  - id: 9
    name: Tess
    class: mage
    team: monsters
database:
  enabled: true
  host: db
`
	path := filepath.Join(t.TempDir(), "arena.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadArena(path)
	if err != nil {
		t.Fatalf("LoadArena() error = %v", err)
	}

	if cfg.Port != 9000 || cfg.LogLevel != "debug" {
		t.Errorf("Port/LogLevel = %d/%s", cfg.Port, cfg.LogLevel)
	}
	if cfg.TickInterval != 100*time.Millisecond {
		t.Errorf("TickInterval = %v, want 100ms", cfg.TickInterval)
	}
	if cfg.RangeTolerance != 80 {
		t.Errorf("RangeTolerance = %d, want 80", cfg.RangeTolerance)
	}
	// Untouched fields keep their defaults.
	if cfg.EffectSweepInterval != 500*time.Millisecond {
		t.Errorf("EffectSweepInterval = %v, want 500ms", cfg.EffectSweepInterval)
	}

	points := cfg.SpawnPointMap()
	if got := points[model.TeamBlue]; got.X != 500 || got.Y != -20 {
		t.Errorf("blue spawn = %+v", got)
	}
	if len(cfg.Roster) != 1 || cfg.Roster[0].Team != model.TeamMonsters {
		t.Errorf("Roster = %+v", cfg.Roster)
	}
	if !cfg.Database.Enabled || cfg.Database.Host != "db" || cfg.Database.Port != 5432 {
		t.Errorf("Database = %+v", cfg.Database)
	}
}

func TestLoadArena_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad team", "roster:\n  - id: 1\n    team: green\n"},
		{"zero tick", "tick_interval: 0s\n"},
		{"duplicate roster id", "roster:\n  - id: 1\n  - id: 1\n"},
		{"low crit multiplier", "crit_multiplier: 0.5\n"},
		{"chase below aggro", "aggro_range: 800\nchase_range: 400\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "arena.yaml")
			if err := os.WriteFile(path, []byte(tt.doc), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadArena(path); err == nil {
				t.Error("LoadArena() error = nil, want error")
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 5433, User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	want := "postgres://u:p@h:5433/n?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestPath(t *testing.T) {
	t.Setenv(EnvPath, "")
	if got := Path("config/arena.yaml"); got != "config/arena.yaml" {
		t.Errorf("Path() = %q", got)
	}
	t.Setenv(EnvPath, "/etc/arena.yaml")
	if got := Path("config/arena.yaml"); got != "/etc/arena.yaml" {
		t.Errorf("Path() with env = %q", got)
	}
}
