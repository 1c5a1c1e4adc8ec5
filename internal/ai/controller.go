package ai

import "time"

// Intention represents the AI state of a monster.
type Intention int32

const (
	// IntentionIdle - monster is dead or not running
	IntentionIdle Intention = iota
	// IntentionActive - monster is scanning for hostiles
	IntentionActive
	// IntentionAttack - monster is fighting its target
	IntentionAttack
)

// String returns human-readable intention name
func (i Intention) String() string {
	switch i {
	case IntentionIdle:
		return "IDLE"
	case IntentionActive:
		return "ACTIVE"
	case IntentionAttack:
		return "ATTACK"
	default:
		return "UNKNOWN"
	}
}

// Controller represents AI controller interface for monsters
type Controller interface {
	// Start starts AI controller
	Start()

	// Stop stops AI controller
	Stop()

	// SetIntention sets AI intention
	SetIntention(intention Intention)

	// CurrentIntention returns current AI intention
	CurrentIntention() Intention

	// Tick performs AI tick (called every TickManager interval)
	Tick(now time.Time)
}

// DamageListener is implemented by controllers that react to being hit.
type DamageListener interface {
	NotifyDamage(now time.Time, attackerID uint32, damage int32)
}
