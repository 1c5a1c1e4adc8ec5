package model

import "slices"

// Kit: набор скиллов актёра, назначенный при спавне из каталога класса.
// BasicAttack входит в кит, но хранится отдельно для Attack-цикла.
type Kit struct {
	BasicAttack int32
	Skills      []int32
}

// Has reports whether the skill belongs to the kit (basic attack included).
func (k Kit) Has(skillID int32) bool {
	if skillID == k.BasicAttack && skillID != 0 {
		return true
	}
	return slices.Contains(k.Skills, skillID)
}

// All returns every skill id of the kit, basic attack first.
func (k Kit) All() []int32 {
	out := make([]int32, 0, len(k.Skills)+1)
	if k.BasicAttack != 0 {
		out = append(out, k.BasicAttack)
	}
	for _, id := range k.Skills {
		if id != k.BasicAttack {
			out = append(out, id)
		}
	}
	return out
}

// Actor: боевая единица арены (игрок или монстр).
// Добавляет HP, MP, команду и кит скиллов к координатам.
//
// Actor принадлежит authority-горутине сессии: все мутации выполняются
// внутри тика, поэтому мьютексов нет. Наблюдатели получают ActorSnapshot.
type Actor struct {
	id    uint32
	name  string
	class string
	team  Team

	location Location

	alive     bool
	currentHP int32
	maxHP     int32
	currentMP int32
	maxMP     int32

	baseSpeed float64 // units per second, без учёта замедлений
	speed     float64 // effective speed

	attackPower int32
	spellPower  int32

	action ActionState
	kit    Kit
}

// NewActor создаёт живого актёра с полными HP/MP.
func NewActor(id uint32, name string, team Team, loc Location, maxHP, maxMP int32, speed float64) *Actor {
	if maxHP < 1 {
		maxHP = 1
	}
	if maxMP < 0 {
		maxMP = 0
	}
	return &Actor{
		id:        id,
		name:      name,
		team:      team,
		location:  loc,
		alive:     true,
		currentHP: maxHP,
		maxHP:     maxHP,
		currentMP: maxMP,
		maxMP:     maxMP,
		baseSpeed: speed,
		speed:     speed,
	}
}

// ID возвращает уникальный ID актёра (immutable после создания).
func (a *Actor) ID() uint32 { return a.id }

// Name возвращает имя актёра.
func (a *Actor) Name() string { return a.name }

// Class returns the catalog class the kit was built from.
func (a *Actor) Class() string { return a.class }

// SetClass sets the catalog class name.
func (a *Actor) SetClass(class string) { a.class = class }

// Team возвращает команду актёра.
func (a *Actor) Team() Team { return a.team }

// IsHostileTo reports whether other is an enemy of this actor.
// An actor is never hostile to itself.
func (a *Actor) IsHostileTo(other *Actor) bool {
	if other == nil || other.id == a.id {
		return false
	}
	return a.team.IsHostileTo(other.team)
}

// Location возвращает копию координат (value type).
func (a *Actor) Location() Location { return a.location }

// SetLocation устанавливает новые координаты.
// Use world.World.Relocate for actors registered in a world so the region grid stays in sync.
func (a *Actor) SetLocation(loc Location) { a.location = loc }

// IsAlive reports the alive flag. The flag is the source of truth for death,
// not HP: it flips exactly once per life in MarkDead.
func (a *Actor) IsAlive() bool { return a.alive }

// IsDead is the negation of IsAlive.
func (a *Actor) IsDead() bool { return !a.alive }

// MarkDead clears the alive flag. Returns true only on the first call per life.
func (a *Actor) MarkDead() bool {
	if !a.alive {
		return false
	}
	a.alive = false
	a.currentHP = 0
	a.action = ActionIdle
	return true
}

// Revive восстанавливает актёра в точке loc с полными HP/MP и базовой скоростью.
func (a *Actor) Revive(loc Location) {
	a.alive = true
	a.currentHP = a.maxHP
	a.currentMP = a.maxMP
	a.speed = a.baseSpeed
	a.location = loc
	a.action = ActionIdle
}

// CurrentHP возвращает текущее HP.
func (a *Actor) CurrentHP() int32 { return a.currentHP }

// MaxHP возвращает максимальное HP.
func (a *Actor) MaxHP() int32 { return a.maxHP }

// SetCurrentHP устанавливает текущее HP с валидацией (clamp 0..maxHP).
func (a *Actor) SetCurrentHP(hp int32) {
	a.currentHP = clamp(hp, 0, a.maxHP)
}

// CurrentMP возвращает текущее MP.
func (a *Actor) CurrentMP() int32 { return a.currentMP }

// MaxMP возвращает максимальное MP.
func (a *Actor) MaxMP() int32 { return a.maxMP }

// SetCurrentMP устанавливает текущее MP с валидацией (clamp 0..maxMP).
func (a *Actor) SetCurrentMP(mp int32) {
	a.currentMP = clamp(mp, 0, a.maxMP)
}

// BaseSpeed returns the movement baseline without control effects.
func (a *Actor) BaseSpeed() float64 { return a.baseSpeed }

// Speed returns the effective movement speed.
func (a *Actor) Speed() float64 { return a.speed }

// SetSpeed sets the effective movement speed (never negative).
func (a *Actor) SetSpeed(speed float64) {
	if speed < 0 {
		speed = 0
	}
	a.speed = speed
}

// AttackPower returns the physical scaling stat.
func (a *Actor) AttackPower() int32 { return a.attackPower }

// SpellPower returns the magical scaling stat.
func (a *Actor) SpellPower() int32 { return a.spellPower }

// SetPower sets both scaling stats.
func (a *Actor) SetPower(attack, spell int32) {
	a.attackPower = attack
	a.spellPower = spell
}

// Action returns the current action state.
func (a *Actor) Action() ActionState { return a.action }

// SetAction sets the current action state. Only the action machine calls this.
func (a *Actor) SetAction(s ActionState) { a.action = s }

// Kit returns the assigned skill kit.
func (a *Actor) Kit() Kit { return a.kit }

// SetKit assigns the skill kit.
func (a *Actor) SetKit(k Kit) { a.kit = k }

func clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
