package physics

import (
	"cmp"
	"slices"

	"github.com/chewxy/math32"
)

const (
	// DefaultCellSize is the broad-phase grid cell edge length in world units.
	DefaultCellSize float32 = 2

	// Bodies whose bounds cover more cells than this skip the grid and are tested against
	// every other body.
	maxCellsPerBody = 64

	maxCellCoord = 1 << 20
)

type gridCell struct {
	x, y, z int32
}

func (c gridCell) compare(o gridCell) int {
	if v := cmp.Compare(c.x, o.x); v != 0 {
		return v
	}
	if v := cmp.Compare(c.y, o.y); v != 0 {
		return v
	}
	return cmp.Compare(c.z, o.z)
}

type cellEntry struct {
	cell gridCell
	body int
}

func cellCoord(v, inv float32) int32 {
	c := math32.Floor(v * inv)
	if !(c > -maxCellCoord) {
		return -maxCellCoord
	}
	if c > maxCellCoord {
		return maxCellCoord
	}
	return int32(c)
}

func (s *simulation) cellOf(x, y, z float32) gridCell {
	inv := 1 / s.cellSize
	return gridCell{cellCoord(x, inv), cellCoord(y, inv), cellCoord(z, inv)}
}

// broadPhase computes world bounds and collects candidate pairs from a uniform grid.
// Pairs come out sorted by slot index, so their order depends only on the world state.
func (s *simulation) broadPhase() {
	if cap(s.bounds) < len(s.slots) {
		s.bounds = make([]aabb, len(s.slots))
	}
	s.bounds = s.bounds[:len(s.slots)]
	s.entries = s.entries[:0]
	s.large = s.large[:0]
	s.pairs = s.pairs[:0]

	for i := range s.slots {
		if !s.slots[i].alive {
			continue
		}
		b := worldBounds(&s.slots[i].body).expand(contactMargin * 0.5)
		s.bounds[i] = b

		lo := s.cellOf(b.min.X(), b.min.Y(), b.min.Z())
		hi := s.cellOf(b.max.X(), b.max.Y(), b.max.Z())
		span := int64(hi.x-lo.x+1) * int64(hi.y-lo.y+1) * int64(hi.z-lo.z+1)
		if span > maxCellsPerBody {
			s.large = append(s.large, i)
			continue
		}
		for x := lo.x; x <= hi.x; x++ {
			for y := lo.y; y <= hi.y; y++ {
				for z := lo.z; z <= hi.z; z++ {
					s.entries = append(s.entries, cellEntry{cell: gridCell{x, y, z}, body: i})
				}
			}
		}
	}

	slices.SortFunc(s.entries, func(a, b cellEntry) int {
		if v := a.cell.compare(b.cell); v != 0 {
			return v
		}
		return cmp.Compare(a.body, b.body)
	})

	for start := 0; start < len(s.entries); {
		cell := s.entries[start].cell
		end := start + 1
		for end < len(s.entries) && s.entries[end].cell == cell {
			end++
		}
		for p := start; p < end; p++ {
			i := s.entries[p].body
			for q := p + 1; q < end; q++ {
				j := s.entries[q].body
				// a pair sharing several cells is reported only from the lowest shared one
				bi, bj := s.bounds[i], s.bounds[j]
				if s.cellOf(max(bi.min.X(), bj.min.X()), max(bi.min.Y(), bj.min.Y()), max(bi.min.Z(), bj.min.Z())) != cell {
					continue
				}
				s.addPair(i, j)
			}
		}
		start = end
	}

	for _, i := range s.large {
		for j := range s.slots {
			if j == i || !s.slots[j].alive {
				continue
			}
			if _, isLarge := slices.BinarySearch(s.large, j); isLarge && j < i {
				continue
			}
			s.addPair(min(i, j), max(i, j))
		}
	}

	slices.SortFunc(s.pairs, func(x, y bodyPair) int {
		if v := cmp.Compare(x.a, y.a); v != 0 {
			return v
		}
		return cmp.Compare(x.b, y.b)
	})
}

// addPair records i and j as a candidate when their bounds overlap and one of them can move.
// Caller passes i < j.
func (s *simulation) addPair(i, j int) {
	bi, bj := &s.slots[i].body, &s.slots[j].body
	if bi.invMass == 0 && bj.invMass == 0 {
		return
	}
	if !s.activePair(bi, bj) {
		return
	}
	if !s.bounds[i].overlaps(s.bounds[j]) {
		return
	}
	s.pairs = append(s.pairs, bodyPair{a: uint32(i), b: uint32(j)})
}

// activePair reports whether at least one side of the pair can currently move.
func (s *simulation) activePair(a, b *rigidBody) bool {
	awakeA := a.movable() && !a.sleeping
	awakeB := b.movable() && !b.sleeping
	return awakeA || awakeB
}
