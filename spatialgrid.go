package duckpond

import (
	"math"
	"sort"

	"github.com/akmonengine/duckpond/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// ============================================================================
// Types
// ============================================================================

// CellKey is the integer coordinate of a grid cell
type CellKey struct {
	X, Y, Z int
}

// Cell holds the indices of the bodies overlapping it
type Cell struct {
	bodyIndices []int
}

// Pair is two bodies whose bounds might touch
type Pair struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

// SpatialGrid is a uniform hashed grid used by the broad phase.
// Bodies with unbounded shapes (planes) never go in the grid.
type SpatialGrid struct {
	cellSize float64
	cells    []Cell
	cellMask int
}

// ============================================================================
// Constructor
// ============================================================================

// NewSpatialGrid rounds numCells up to a power of two
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].bodyIndices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// Insert adds the body index to every cell its bounds cover
func (sg *SpatialGrid) Insert(bodyIndex int, body *actor.RigidBody) {
	sg.forEachCell(body.Shape.GetAABB(), func(cellIdx int) {
		sg.cells[cellIdx].bodyIndices = append(sg.cells[cellIdx].bodyIndices, bodyIndex)
	})
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].bodyIndices = sg.cells[i].bodyIndices[:0]
	}
}

func (sg *SpatialGrid) SortCells() {
	for i := range sg.cells {
		if len(sg.cells[i].bodyIndices) > 1 {
			sort.Ints(sg.cells[i].bodyIndices)
		}
	}
}

// FindPairs returns each overlapping pair once, lowest index first.
// Hash collisions and bodies spanning several cells are deduplicated.
func (sg *SpatialGrid) FindPairs(bodies []*actor.RigidBody) []Pair {
	pairs := make([]Pair, 0, len(bodies)/2)
	seen := make(map[int]struct{}, 8)

	for bodyIdx := 0; bodyIdx < len(bodies); bodyIdx++ {
		bodyA := bodies[bodyIdx]
		clear(seen)

		sg.forEachCell(bodyA.Shape.GetAABB(), func(cellIdx int) {
			for _, otherIdx := range sg.cells[cellIdx].bodyIndices {
				if otherIdx <= bodyIdx {
					continue
				}
				if _, ok := seen[otherIdx]; ok {
					continue
				}
				seen[otherIdx] = struct{}{}

				bodyB := bodies[otherIdx]
				if !needsContact(bodyA, bodyB) {
					continue
				}
				if bodyA.Shape.GetAABB().Overlaps(bodyB.Shape.GetAABB()) {
					pairs = append(pairs, Pair{BodyA: bodyA, BodyB: bodyB})
				}
			}
		})
	}

	return pairs
}

func (sg *SpatialGrid) forEachCell(aabb actor.AABB, fn func(cellIdx int)) {
	minCell := sg.worldToCell(aabb.Min)
	maxCell := sg.worldToCell(aabb.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				fn(sg.hashCell(CellKey{x, y, z}))
			}
		}
	}
}

func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}

// needsContact filters pairs that can never produce a response: at least one
// body must be dynamic and at least one must be moving.
func needsContact(a, b *actor.RigidBody) bool {
	if a.BodyType != actor.BodyTypeDynamic && b.BodyType != actor.BodyTypeDynamic {
		return false
	}

	return a.IsMoving() || b.IsMoving()
}
