package world

import (
	"fmt"
	"slices"

	"github.com/udisondev/arena/internal/model"
)

// World is the arena map: actors by ID plus a region grid for radius queries.
//
// One World per session. Not thread-safe: owned by the authority tick.
type World struct {
	regions [][]*Region // 2D array [RegionsX][RegionsY]
	actors  map[uint32]*model.Actor
}

// New creates an empty arena.
func New() *World {
	w := &World{
		regions: make([][]*Region, RegionsX),
		actors:  make(map[uint32]*model.Actor),
	}
	for rx := range RegionsX {
		w.regions[rx] = make([]*Region, RegionsY)
		for ry := range RegionsY {
			w.regions[rx][ry] = NewRegion(int32(rx), int32(ry))
		}
	}
	return w
}

// GetRegion returns region at world coordinates (x, y)
// Returns nil if coordinates are out of bounds
func (w *World) GetRegion(x, y int32) *Region {
	rx, ry := CoordToRegionIndex(x, y)
	if !IsValidRegionIndex(rx, ry) {
		return nil
	}
	return w.regions[rx][ry]
}

// Add registers an actor at its current location.
func (w *World) Add(a *model.Actor) error {
	loc := a.Location()
	region := w.GetRegion(loc.X, loc.Y)
	if region == nil {
		return fmt.Errorf("invalid coordinates for actor %d: (%d, %d)", a.ID(), loc.X, loc.Y)
	}
	if _, dup := w.actors[a.ID()]; dup {
		return fmt.Errorf("actor %d already in world", a.ID())
	}

	w.actors[a.ID()] = a
	region.add(a.ID())
	return nil
}

// Remove unregisters an actor. Unknown IDs are ignored.
func (w *World) Remove(id uint32) {
	a, ok := w.actors[id]
	if !ok {
		return
	}
	delete(w.actors, id)

	loc := a.Location()
	if region := w.GetRegion(loc.X, loc.Y); region != nil {
		region.remove(id)
	}
}

// Actor returns actor by ID.
func (w *World) Actor(id uint32) (*model.Actor, bool) {
	a, ok := w.actors[id]
	return a, ok
}

// Relocate moves an actor and keeps the region grid in sync.
// Destinations outside the arena are clamped to its border.
func (w *World) Relocate(a *model.Actor, loc model.Location) {
	loc.X = min(max(loc.X, WorldXMin), WorldXMax-1)
	loc.Y = min(max(loc.Y, WorldYMin), WorldYMax-1)

	old := a.Location()
	from := w.GetRegion(old.X, old.Y)
	to := w.GetRegion(loc.X, loc.Y)
	a.SetLocation(loc)

	if _, registered := w.actors[a.ID()]; !registered || from == to {
		return
	}
	if from != nil {
		from.remove(a.ID())
	}
	to.add(a.ID())
}

// ActorsInRadius returns actors whose distance to center is <= radius,
// dead ones included, ordered by ID.
func (w *World) ActorsInRadius(center model.Location, radius int32) []*model.Actor {
	if radius < 0 {
		return nil
	}

	rxLo, rxHi := regionSpan(center.X, radius, OffsetX, RegionsX)
	ryLo, ryHi := regionSpan(center.Y, radius, OffsetY, RegionsY)

	var out []*model.Actor
	for rx := rxLo; rx <= rxHi; rx++ {
		for ry := ryLo; ry <= ryHi; ry++ {
			for id := range w.regions[rx][ry].actors {
				a := w.actors[id]
				if a.Location().InRange(center, radius) {
					out = append(out, a)
				}
			}
		}
	}

	slices.SortFunc(out, func(a, b *model.Actor) int { return int(a.ID()) - int(b.ID()) })
	return out
}

// ForEach calls fn for every actor ordered by ID.
func (w *World) ForEach(fn func(*model.Actor)) {
	for _, id := range w.IDs() {
		fn(w.actors[id])
	}
}

// IDs returns all actor IDs in ascending order.
func (w *World) IDs() []uint32 {
	ids := make([]uint32, 0, len(w.actors))
	for id := range w.actors {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Count returns the number of registered actors.
func (w *World) Count() int {
	return len(w.actors)
}

// RegionCount returns total number of regions
func (w *World) RegionCount() int {
	return RegionsX * RegionsY
}
