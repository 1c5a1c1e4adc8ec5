package world

// Grid constants for the arena map.
const (
	// ShiftBy - shift by N bits for 2^N units per region (2^9 = 512)
	ShiftBy = 9

	// Arena boundaries (game coordinates)
	WorldXMin = -8192
	WorldYMin = -8192
	WorldXMax = 8192
	WorldYMax = 8192

	// Offsets for array indexing
	// OffsetX = abs(WorldXMin >> ShiftBy) = abs(-8192 >> 9) = 16
	OffsetX = 16
	OffsetY = 16

	// Grid size (regions count)
	// RegionsX = (WorldXMax >> ShiftBy) + OffsetX = 16 + 16 = 32
	RegionsX = 32
	RegionsY = 32

	// Region size in game units
	RegionSize = 1 << ShiftBy
)

// CoordToRegionIndex converts world coordinate to region index
// Formula: (worldCoord >> ShiftBy) + Offset
func CoordToRegionIndex(x, y int32) (rx, ry int32) {
	rx = (x >> ShiftBy) + OffsetX
	ry = (y >> ShiftBy) + OffsetY
	return rx, ry
}

// IsValidRegionIndex checks if region index is within valid bounds
func IsValidRegionIndex(rx, ry int32) bool {
	return rx >= 0 && rx < RegionsX && ry >= 0 && ry < RegionsY
}

// IsValidCoord reports whether (x, y) lies inside the arena.
func IsValidCoord(x, y int32) bool {
	return x >= WorldXMin && x < WorldXMax && y >= WorldYMin && y < WorldYMax
}

// RegionIndexToCoord converts region index to world coordinate (center of region)
func RegionIndexToCoord(rx, ry int32) (x, y int32) {
	x = ((rx - OffsetX) << ShiftBy) + (RegionSize / 2)
	y = ((ry - OffsetY) << ShiftBy) + (RegionSize / 2)
	return x, y
}

// regionSpan returns the inclusive index range covering [c-r, c+r] on one axis.
func regionSpan(c, r, offset, count int32) (lo, hi int32) {
	lo = max(((c-r)>>ShiftBy)+offset, 0)
	hi = min(((c+r)>>ShiftBy)+offset, count-1)
	return lo, hi
}
