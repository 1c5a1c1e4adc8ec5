package world

// Region: ячейка сетки арены, хранит ID актёров внутри неё.
type Region struct {
	rx, ry int32
	actors map[uint32]struct{}
}

// NewRegion creates an empty region at index (rx, ry).
func NewRegion(rx, ry int32) *Region {
	return &Region{rx: rx, ry: ry, actors: make(map[uint32]struct{})}
}

// RX returns region X index
func (r *Region) RX() int32 { return r.rx }

// RY returns region Y index
func (r *Region) RY() int32 { return r.ry }

func (r *Region) add(id uint32)    { r.actors[id] = struct{}{} }
func (r *Region) remove(id uint32) { delete(r.actors, id) }

// Len returns the number of actors in the region.
func (r *Region) Len() int { return len(r.actors) }
