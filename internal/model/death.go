package model

import "time"

// DeathRecord is one entry of the death log.
type DeathRecord struct {
	VictimID uint32
	KillerID uint32 // 0 = environment
	SkillID  int32
	At       time.Time
}
