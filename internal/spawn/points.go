package spawn

import "github.com/udisondev/arena/internal/model"

// Points is a fixed spawn point per team.
// Teams without an entry respawn at Fallback.
type Points struct {
	byTeam   map[model.Team]model.Location
	Fallback model.Location
}

// NewPoints creates a provider from a team → location table.
func NewPoints(byTeam map[model.Team]model.Location, fallback model.Location) *Points {
	m := make(map[model.Team]model.Location, len(byTeam))
	for team, loc := range byTeam {
		m[team] = loc
	}
	return &Points{byTeam: m, Fallback: fallback}
}

// SpawnPoint returns where actors of team enter the arena.
func (p *Points) SpawnPoint(team model.Team) model.Location {
	if loc, ok := p.byTeam[team]; ok {
		return loc
	}
	return p.Fallback
}
