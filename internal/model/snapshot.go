package model

import "time"

// ActorSnapshot is the immutable replicated projection of an actor.
// The authority builds one after every tick that mutated the actor;
// observers must treat it as read-only.
type ActorSnapshot struct {
	ID        uint32      `json:"id"`
	Name      string      `json:"name"`
	Class     string      `json:"class"`
	Team      Team        `json:"team"`
	Alive     bool        `json:"alive"`
	Stunned   bool        `json:"stunned"`
	Silenced  bool        `json:"silenced"`
	Health    int32       `json:"health"`
	MaxHealth int32       `json:"max_health"`
	Mana      int32       `json:"mana"`
	MaxMana   int32       `json:"max_mana"`
	Speed     float64     `json:"speed"`
	Position  Location    `json:"position"`
	Action    ActionState `json:"action"`
	Kit       Kit         `json:"kit"`

	SkillLastUse   map[int32]time.Time `json:"skill_last_use"`
	GlobalLastUse  time.Time           `json:"global_last_use"`
	GlobalCooldown time.Duration       `json:"global_cooldown"`
}

// Snapshot copies the actor's own fields. Cooldown and control-effect
// fields are filled by the owner of that state.
func (a *Actor) Snapshot() ActorSnapshot {
	kit := Kit{BasicAttack: a.kit.BasicAttack, Skills: append([]int32(nil), a.kit.Skills...)}
	return ActorSnapshot{
		ID:        a.id,
		Name:      a.name,
		Class:     a.class,
		Team:      a.team,
		Alive:     a.alive,
		Health:    a.currentHP,
		MaxHealth: a.maxHP,
		Mana:      a.currentMP,
		MaxMana:   a.maxMP,
		Speed:     a.speed,
		Position:  a.location,
		Action:    a.action,
		Kit:       kit,
	}
}
