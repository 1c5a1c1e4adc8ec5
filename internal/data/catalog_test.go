package data

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	assert.Equal(t, []string{"cleric", "mage", "monster", "warrior"}, c.ClassNames())

	fireball, ok := c.Skill(11)
	require.True(t, ok)
	assert.Equal(t, "Fireball", fireball.Name)
	assert.False(t, fireball.IsInstant())
	assert.Equal(t, TargetSingleTarget, fireball.Targeting)

	// Every class kit only references known skills.
	for _, name := range c.ClassNames() {
		kit, ok := c.Class(name)
		require.True(t, ok)
		_, ok = c.Skill(kit.BasicAttack)
		assert.True(t, ok, "class %s basic attack", name)
		for _, id := range kit.Skills {
			_, ok := c.Skill(id)
			assert.True(t, ok, "class %s skill %d", name, id)
		}
	}
}

func TestValidateSkill(t *testing.T) {
	valid := func() SkillDefinition {
		return SkillDefinition{
			ID: 1, Name: "Test", Behavior: "Strike",
			Range: 50, Targeting: TargetSingleTarget,
		}
	}

	tests := []struct {
		name   string
		mutate func(*SkillDefinition)
		field  string
	}{
		{"missing name", func(d *SkillDefinition) { d.Name = "  " }, "name"},
		{"zero id", func(d *SkillDefinition) { d.ID = 0 }, "id"},
		{"missing behavior", func(d *SkillDefinition) { d.Behavior = "" }, "behavior"},
		{"negative cooldown", func(d *SkillDefinition) { d.Cooldown = -time.Second }, "cooldown"},
		{"no range", func(d *SkillDefinition) { d.Range = 0 }, "range"},
		{"area without radius", func(d *SkillDefinition) { d.Targeting = TargetAreaAtPoint }, "radius"},
		{"crit over 100", func(d *SkillDefinition) { d.CritChance = 120 }, "crit_chance"},
		{"unknown effect", func(d *SkillDefinition) {
			d.Effects = []EffectDef{{Type: "Fear", Duration: time.Second}}
		}, "effects[0].type"},
		{"slow over 1", func(d *SkillDefinition) {
			d.Effects = []EffectDef{{Type: EffectSlow, Duration: time.Second, Magnitude: 1.5}}
		}, "effects[0].magnitude"},
		{"zero duration", func(d *SkillDefinition) {
			d.Effects = []EffectDef{{Type: EffectStun}}
		}, "effects[0].duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := valid()
			tt.mutate(&def)

			err := ValidateSkill(&def)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}

	t.Run("self buff needs no range", func(t *testing.T) {
		def := valid()
		def.Targeting = TargetSelfBuff
		def.Range = 0
		assert.NoError(t, ValidateSkill(&def))
	})
}

func TestNewCatalog_ClassErrors(t *testing.T) {
	skills := []SkillDefinition{
		{ID: 1, Name: "Hit", Behavior: "Strike", Range: 40, Targeting: TargetSingleTarget},
		{ID: 2, Name: "Nova", Behavior: "Nova", Range: 40, Radius: 100, Targeting: TargetAreaAtPoint},
	}

	tests := []struct {
		name  string
		kit   ClassKit
		field string
	}{
		{"unknown basic", ClassKit{Name: "a", MaxHP: 10, Speed: 1, BasicAttack: 9}, "basic_attack"},
		{"area basic", ClassKit{Name: "a", MaxHP: 10, Speed: 1, BasicAttack: 2}, "basic_attack"},
		{"unknown skill", ClassKit{Name: "a", MaxHP: 10, Speed: 1, BasicAttack: 1, Skills: []int32{7}}, "skills"},
		{"no hp", ClassKit{Name: "a", Speed: 1, BasicAttack: 1}, "max_hp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(skills, []ClassKit{tt.kit})
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.Equal(t, "a", cfgErr.Class)
		})
	}
}

func TestNewCatalog_JoinsErrors(t *testing.T) {
	skills := []SkillDefinition{
		{ID: 1, Behavior: "Strike", Range: 40, Targeting: TargetSingleTarget},
		{ID: 2, Name: "Ok", Behavior: "Strike", Range: 40, Targeting: TargetSingleTarget},
		{ID: 2, Name: "Dup", Behavior: "Strike", Range: 40, Targeting: TargetSingleTarget},
	}

	_, err := NewCatalog(skills, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skill 1: name: required")
	assert.Contains(t, err.Error(), "duplicate skill id")
}

func TestLoadCatalog_YAML(t *testing.T) {
	doc := `
skills:
  - id: 5
    name: Pierce
    behavior: Strike
    range: 60
    cooldown: 2s
    cast_time: 500ms
    mana_cost: 10
    damage_type: physical
    targeting: SingleTarget
    power: 25
    scaling: 0.5
    effects:
      - type: Slow
        duration: 3s
        magnitude: 0.25
  - id: 6
    name: Quake
    behavior: Nova
    range: 100
    radius: 80
    targeting: AreaAtPoint
    hostility: AnyMonster
classes:
  - name: lancer
    max_hp: 500
    max_mp: 100
    speed: 110
    basic_attack: 5
    skills: [6]
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	c, err := LoadCatalog(path)
	require.NoError(t, err)

	pierce, ok := c.Skill(5)
	require.True(t, ok)
	assert.Equal(t, 2*time.Second, pierce.Cooldown)
	assert.Equal(t, 500*time.Millisecond, pierce.CastTime)
	assert.Equal(t, DamagePhysical, pierce.DamageType)
	require.Len(t, pierce.Effects, 1)
	assert.InDelta(t, 0.25, pierce.Effects[0].Magnitude, 1e-9)

	quake, _ := c.Skill(6)
	assert.Equal(t, HostileAnyMonster, quake.Hostility)

	kit, ok := c.Class("lancer")
	require.True(t, ok)
	assert.Equal(t, int32(5), kit.BasicAttack)
}

func TestLoadCatalog_Errors(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("skills:\n  - id: 1\n    targeting: Sideways\n"), 0o600))
	_, err = LoadCatalog(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown targeting")

	c, err := LoadCatalog("")
	require.NoError(t, err)
	assert.NotEmpty(t, c.Skills())
}

func TestConfigError_Message(t *testing.T) {
	err := error(&ConfigError{Class: "mage", SkillID: 11, Field: "name", Reason: "required"})
	assert.Equal(t, `catalog: class "mage": skill 11: name: required`, err.Error())

	var target *ConfigError
	assert.True(t, errors.As(err, &target))
}

func TestEffectWeight(t *testing.T) {
	def := SkillDefinition{Weight: 2}
	assert.Equal(t, int32(2), def.EffectWeight(EffectDef{}))
	assert.Equal(t, int32(5), def.EffectWeight(EffectDef{Weight: 5}))
}
