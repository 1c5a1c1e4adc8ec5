package data

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Targeting определяет, как скилл выбирает цель.
type Targeting int8

const (
	TargetSelfBuff     Targeting = iota // Self-cast, no range check
	TargetSingleTarget                  // One actor
	TargetGroundPoint                   // A point on the ground
	TargetAreaAtPoint                   // Everyone within Radius of a point
)

var targetingNames = map[Targeting]string{
	TargetSelfBuff:     "SelfBuff",
	TargetSingleTarget: "SingleTarget",
	TargetGroundPoint:  "GroundPoint",
	TargetAreaAtPoint:  "AreaAtPoint",
}

func (t Targeting) String() string {
	if s, ok := targetingNames[t]; ok {
		return s
	}
	return "Unknown"
}

// NeedsRange reports whether the skill has a target distance to check.
func (t Targeting) NeedsRange() bool {
	return t != TargetSelfBuff
}

// NeedsPoint reports whether the request must carry a target position.
func (t Targeting) NeedsPoint() bool {
	return t == TargetGroundPoint || t == TargetAreaAtPoint
}

// UnmarshalYAML parses targeting by name.
func (t *Targeting) UnmarshalYAML(value *yaml.Node) error {
	for k, name := range targetingNames {
		if strings.EqualFold(name, value.Value) {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown targeting %q", value.Line, value.Value)
}

// DamageType определяет тип урона скилла.
type DamageType int8

const (
	DamagePhysical DamageType = iota // scales with AttackPower
	DamageMagical                    // scales with SpellPower
	DamageTrue                       // no scaling stat
)

var damageTypeNames = map[DamageType]string{
	DamagePhysical: "Physical",
	DamageMagical:  "Magical",
	DamageTrue:     "True",
}

func (d DamageType) String() string {
	if s, ok := damageTypeNames[d]; ok {
		return s
	}
	return "Unknown"
}

// UnmarshalYAML parses damage type by name.
func (d *DamageType) UnmarshalYAML(value *yaml.Node) error {
	for k, name := range damageTypeNames {
		if strings.EqualFold(name, value.Value) {
			*d = k
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown damage type %q", value.Line, value.Value)
}

// Hostility is the filter a skill applies to its targets: the actors inside
// the radius of an area skill, or the single target of a SingleTarget skill.
type Hostility int8

const (
	HostileOpposingTeam Hostility = iota // actors hostile to the caster
	HostileAnyMonster                    // every monster, regardless of caster team
	HostileAllies                        // caster and its team mates
)

var hostilityNames = map[Hostility]string{
	HostileOpposingTeam: "OpposingTeam",
	HostileAnyMonster:   "AnyMonster",
	HostileAllies:       "Allies",
}

func (h Hostility) String() string {
	if s, ok := hostilityNames[h]; ok {
		return s
	}
	return "Unknown"
}

// UnmarshalYAML parses hostility by name.
func (h *Hostility) UnmarshalYAML(value *yaml.Node) error {
	for k, name := range hostilityNames {
		if strings.EqualFold(name, value.Value) {
			*h = k
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown hostility %q", value.Line, value.Value)
}

// Control effect type names accepted in EffectDef.Type.
const (
	EffectStun    = "Stun"
	EffectSilence = "Silence"
	EffectSlow    = "Slow"
	EffectPoison  = "Poison"
)

// EffectDef описывает один контроль-эффект, накладываемый скиллом при попадании.
type EffectDef struct {
	Type      string        `yaml:"type"`
	Duration  time.Duration `yaml:"duration"`
	Magnitude float64       `yaml:"magnitude"` // Slow: fraction 0..1, Poison: damage per sweep
	Weight    int32         `yaml:"weight"`    // 0 = inherit skill weight
}

// SkillDefinition: immutable конфиг скилла.
// Загружается один раз при инициализации кита; НЕ модифицировать после загрузки.
type SkillDefinition struct {
	ID       int32  `yaml:"id"`
	Name     string `yaml:"name"`
	Behavior string `yaml:"behavior"` // "Strike", "Nova", "Blessing", "Mend", "Blink", "Purify"

	Range    int32         `yaml:"range"`     // max distance to target/point
	Radius   int32         `yaml:"radius"`    // AreaAtPoint only
	Cooldown time.Duration `yaml:"cooldown"`  // per-skill reuse delay
	CastTime time.Duration `yaml:"cast_time"` // 0 = instant
	ManaCost int32         `yaml:"mana_cost"`

	DamageType DamageType `yaml:"damage_type"`
	Targeting  Targeting  `yaml:"targeting"`
	Hostility  Hostility  `yaml:"hostility"`

	// Weight is the override priority of the control effects this skill applies.
	Weight               int32 `yaml:"weight"`
	IgnoreGlobalCooldown bool  `yaml:"ignore_global_cooldown"`

	Power      int32   `yaml:"power"`       // flat damage/heal
	Scaling    float64 `yaml:"scaling"`     // multiplier of the damage-type stat
	CritChance float64 `yaml:"crit_chance"` // percent, 0..100

	Effects []EffectDef `yaml:"effects"`
}

// IsInstant returns true if skill resolves on the request tick (CastTime == 0).
func (s *SkillDefinition) IsInstant() bool {
	return s.CastTime <= 0
}

// EffectWeight returns the override weight for one of the skill's effects.
func (s *SkillDefinition) EffectWeight(e EffectDef) int32 {
	if e.Weight != 0 {
		return e.Weight
	}
	return s.Weight
}

// ClassKit описывает стартовые параметры и набор скиллов класса.
type ClassKit struct {
	Name        string  `yaml:"name"`
	MaxHP       int32   `yaml:"max_hp"`
	MaxMP       int32   `yaml:"max_mp"`
	Speed       float64 `yaml:"speed"`
	AttackPower int32   `yaml:"attack_power"`
	SpellPower  int32   `yaml:"spell_power"`
	BasicAttack int32   `yaml:"basic_attack"`
	Skills      []int32 `yaml:"skills"`
}
