package model

import "math"

// Location представляет координаты на арене.
// Value type, передаётся по значению (immutable).
type Location struct {
	X       int32  `json:"x" yaml:"x"`
	Y       int32  `json:"y" yaml:"y"`
	Z       int32  `json:"z" yaml:"z"`
	Heading uint16 `json:"heading" yaml:"heading"` // 0-65535
}

// NewLocation создаёт Location с указанными координатами.
func NewLocation(x, y, z int32, heading uint16) Location {
	return Location{X: x, Y: y, Z: z, Heading: heading}
}

// WithHeading возвращает новый Location с обновлённым направлением (immutable pattern).
func (l Location) WithHeading(heading uint16) Location {
	l.Heading = heading
	return l
}

// WithCoordinates возвращает новый Location с обновлёнными координатами (immutable pattern).
func (l Location) WithCoordinates(x, y, z int32) Location {
	l.X = x
	l.Y = y
	l.Z = z
	return l
}

// DistanceSquared возвращает квадрат расстояния до другой точки (без sqrt для производительности).
func (l Location) DistanceSquared(other Location) int64 {
	dx := int64(l.X - other.X)
	dy := int64(l.Y - other.Y)
	dz := int64(l.Z - other.Z)
	return dx*dx + dy*dy + dz*dz
}

// Distance возвращает евклидово расстояние до другой точки.
func (l Location) Distance(other Location) float64 {
	return math.Sqrt(float64(l.DistanceSquared(other)))
}

// InRange reports whether other is within r units (inclusive).
func (l Location) InRange(other Location, r int32) bool {
	rr := int64(r)
	return l.DistanceSquared(other) <= rr*rr
}

// HeadingTo returns the heading that faces other, mapped onto the uint16 circle.
func (l Location) HeadingTo(other Location) uint16 {
	dx := float64(other.X - l.X)
	dy := float64(other.Y - l.Y)
	if dx == 0 && dy == 0 {
		return l.Heading
	}
	angle := math.Atan2(dy, dx)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return uint16(angle * 65535.0 / (2.0 * math.Pi))
}

// StepToward returns the point reached after moving at most step units toward dest.
// Z is interpolated linearly.
func (l Location) StepToward(dest Location, step float64) Location {
	dist := l.Distance(dest)
	if dist <= step || dist == 0 {
		return dest.WithHeading(l.HeadingTo(dest))
	}
	ratio := step / dist
	next := Location{
		X: l.X + int32(math.Round(float64(dest.X-l.X)*ratio)),
		Y: l.Y + int32(math.Round(float64(dest.Y-l.Y)*ratio)),
		Z: l.Z + int32(math.Round(float64(dest.Z-l.Z)*ratio)),
	}
	next.Heading = l.HeadingTo(dest)
	return next
}
