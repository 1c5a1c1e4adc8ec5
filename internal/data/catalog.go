package data

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigError describes a broken catalog entry. It is fatal at load time:
// a kit that references a broken skill is never assigned to an actor.
type ConfigError struct {
	Class   string // empty for skill-level errors
	SkillID int32
	Field   string
	Reason  string
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("catalog")
	if e.Class != "" {
		fmt.Fprintf(&b, ": class %q", e.Class)
	}
	if e.SkillID != 0 {
		fmt.Fprintf(&b, ": skill %d", e.SkillID)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": %s", e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

// Catalog: неизменяемый набор определений скиллов и китов классов.
// Строится один раз при старте сессии и передаётся потребителям явно.
type Catalog struct {
	skills  map[int32]*SkillDefinition
	classes map[string]*ClassKit
}

// catalogFile is the YAML layout of an external catalog.
type catalogFile struct {
	Skills  []SkillDefinition `yaml:"skills"`
	Classes []ClassKit        `yaml:"classes"`
}

// DefaultCatalog returns the built-in catalog.
// The built-in definitions are validated by tests, so an error here is a programming bug.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultSkills, defaultClasses)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog: %v", err))
	}
	return c
}

// LoadCatalog reads a YAML catalog from path.
// Empty path returns the built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	c, err := ParseCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}

	slog.Info("loaded skill catalog", "path", path, "skills", len(c.skills), "classes", len(c.classes))
	return c, nil
}

// ParseCatalog decodes and validates a YAML catalog document.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	return NewCatalog(f.Skills, f.Classes)
}

// NewCatalog copies and validates the definitions.
// Every problem found is reported, joined into one error.
func NewCatalog(skills []SkillDefinition, classes []ClassKit) (*Catalog, error) {
	c := &Catalog{
		skills:  make(map[int32]*SkillDefinition, len(skills)),
		classes: make(map[string]*ClassKit, len(classes)),
	}

	var errs []error
	for i := range skills {
		def := skills[i]
		def.Effects = slices.Clone(def.Effects)
		if err := ValidateSkill(&def); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := c.skills[def.ID]; dup {
			errs = append(errs, &ConfigError{SkillID: def.ID, Field: "id", Reason: "duplicate skill id"})
			continue
		}
		c.skills[def.ID] = &def
	}

	for i := range classes {
		kit := classes[i]
		kit.Skills = slices.Clone(kit.Skills)
		if err := c.validateClass(&kit); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := c.classes[kit.Name]; dup {
			errs = append(errs, &ConfigError{Class: kit.Name, Field: "name", Reason: "duplicate class"})
			continue
		}
		c.classes[kit.Name] = &kit
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

// ValidateSkill checks that a definition has every field its targeting mode needs.
func ValidateSkill(def *SkillDefinition) error {
	fail := func(field, reason string) error {
		return &ConfigError{SkillID: def.ID, Field: field, Reason: reason}
	}

	switch {
	case def.ID <= 0:
		return fail("id", "must be positive")
	case strings.TrimSpace(def.Name) == "":
		return fail("name", "required")
	case def.Behavior == "":
		return fail("behavior", "required")
	case def.Cooldown < 0:
		return fail("cooldown", "negative")
	case def.CastTime < 0:
		return fail("cast_time", "negative")
	case def.ManaCost < 0:
		return fail("mana_cost", "negative")
	case def.Targeting.NeedsRange() && def.Range <= 0:
		return fail("range", "required for "+def.Targeting.String())
	case def.Targeting == TargetAreaAtPoint && def.Radius <= 0:
		return fail("radius", "required for AreaAtPoint")
	case def.CritChance < 0 || def.CritChance > 100:
		return fail("crit_chance", "must be within [0,100]")
	case def.Weight < 0:
		return fail("weight", "negative")
	}

	for i, e := range def.Effects {
		field := fmt.Sprintf("effects[%d]", i)
		switch e.Type {
		case EffectStun, EffectSilence, EffectPoison:
		case EffectSlow:
			if e.Magnitude <= 0 || e.Magnitude > 1 {
				return fail(field+".magnitude", "slow magnitude must be within (0,1]")
			}
		default:
			return fail(field+".type", fmt.Sprintf("unknown control effect %q", e.Type))
		}
		if e.Duration <= 0 {
			return fail(field+".duration", "must be positive")
		}
		if e.Type == EffectPoison && e.Magnitude <= 0 {
			return fail(field+".magnitude", "poison damage must be positive")
		}
	}
	return nil
}

func (c *Catalog) validateClass(kit *ClassKit) error {
	fail := func(skillID int32, field, reason string) error {
		return &ConfigError{Class: kit.Name, SkillID: skillID, Field: field, Reason: reason}
	}

	if strings.TrimSpace(kit.Name) == "" {
		return fail(0, "name", "required")
	}
	if kit.MaxHP <= 0 {
		return fail(0, "max_hp", "must be positive")
	}
	if kit.MaxMP < 0 {
		return fail(0, "max_mp", "negative")
	}
	if kit.Speed <= 0 {
		return fail(0, "speed", "must be positive")
	}

	basic, ok := c.skills[kit.BasicAttack]
	if !ok {
		return fail(kit.BasicAttack, "basic_attack", "unknown skill")
	}
	if basic.Targeting != TargetSingleTarget {
		return fail(kit.BasicAttack, "basic_attack", "must be SingleTarget")
	}
	for _, id := range kit.Skills {
		if _, ok := c.skills[id]; !ok {
			return fail(id, "skills", "unknown skill")
		}
	}
	return nil
}

// Skill returns a skill definition by ID.
func (c *Catalog) Skill(id int32) (*SkillDefinition, bool) {
	def, ok := c.skills[id]
	return def, ok
}

// Class returns a class kit by name.
func (c *Catalog) Class(name string) (*ClassKit, bool) {
	kit, ok := c.classes[name]
	return kit, ok
}

// Skills returns every skill definition ordered by ID.
func (c *Catalog) Skills() []*SkillDefinition {
	out := make([]*SkillDefinition, 0, len(c.skills))
	for _, def := range c.skills {
		out = append(out, def)
	}
	slices.SortFunc(out, func(a, b *SkillDefinition) int { return int(a.ID - b.ID) })
	return out
}

// ClassNames returns the class names ordered alphabetically.
func (c *Catalog) ClassNames() []string {
	out := make([]string, 0, len(c.classes))
	for name := range c.classes {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}
