package skill

import "errors"

// Validation rejections. The authority drops the request on any of these;
// nothing is sent back to the client.
var (
	ErrDead           = errors.New("caster is dead")
	ErrStunned        = errors.New("caster is stunned")
	ErrSilenced       = errors.New("caster is silenced")
	ErrNotInKit       = errors.New("skill not in kit")
	ErrUnknownSkill   = errors.New("unknown skill")
	ErrOnCooldown     = errors.New("skill on cooldown")
	ErrGlobalCooldown = errors.New("global cooldown active")
	ErrNotEnoughMana  = errors.New("not enough mana")
	ErrOutOfRange     = errors.New("target out of range")
	ErrInvalidTarget  = errors.New("invalid target")
	ErrCastResolved   = errors.New("cast already resolved")
)
