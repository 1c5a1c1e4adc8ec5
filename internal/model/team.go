package model

import (
	"fmt"
	"strings"
)

// Team identifies the side an actor fights for.
type Team uint8

const (
	// TeamNone - unaffiliated, hostile to everyone
	TeamNone Team = iota
	// TeamRed - first player team
	TeamRed
	// TeamBlue - second player team
	TeamBlue
	// TeamMonsters - environment creatures
	TeamMonsters
)

// String returns human-readable team name
func (t Team) String() string {
	switch t {
	case TeamNone:
		return "none"
	case TeamRed:
		return "red"
	case TeamBlue:
		return "blue"
	case TeamMonsters:
		return "monsters"
	default:
		return "unknown"
	}
}

// ParseTeam converts a config string into a Team.
func ParseTeam(s string) (Team, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return TeamNone, nil
	case "red":
		return TeamRed, nil
	case "blue":
		return TeamBlue, nil
	case "monsters", "monster":
		return TeamMonsters, nil
	default:
		return TeamNone, fmt.Errorf("unknown team %q", s)
	}
}

// IsMonster reports whether the team is the environment creature side.
func (t Team) IsMonster() bool {
	return t == TeamMonsters
}

// IsHostileTo reports whether two teams fight each other.
// TeamNone is hostile to everyone, including other unaffiliated actors.
func (t Team) IsHostileTo(other Team) bool {
	if t == TeamNone || other == TeamNone {
		return true
	}
	return t != other
}

// MarshalText encodes the team as its name.
func (t Team) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a team name (config files, wire messages).
func (t *Team) UnmarshalText(text []byte) error {
	team, err := ParseTeam(string(text))
	if err != nil {
		return err
	}
	*t = team
	return nil
}
