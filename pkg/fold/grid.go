package fold

import (
	"jianzhi/internal/models"
)

const noPixel = -1

// Grid is the layered pixel map of a folded sheet. It partitions the N*N
// origin pixels of the flat sheet over the occupied current positions of the
// folded silhouette.
//
// Layers are stored as owner chains in one arena sized at construction:
// head[c] and tail[c] are the first and last origin pixel at current
// position c (noPixel when c is unoccupied) and next[o] links origin o to
// the next origin sharing its position. Folding only relinks chains, so the
// grid never allocates after NewGrid.
type Grid struct {
	size int

	head []int32
	tail []int32
	next []int32

	occupied int
	bounds   models.Bounds
}

// NewGrid creates a flat sheet of size x size pixels in which every origin
// pixel sits alone at its own position.
func NewGrid(size int) *Grid {
	n := size * size
	g := &Grid{
		size:     size,
		head:     make([]int32, n),
		tail:     make([]int32, n),
		next:     make([]int32, n),
		occupied: n,
	}
	for i := 0; i < n; i++ {
		g.head[i] = int32(i)
		g.tail[i] = int32(i)
		g.next[i] = noPixel
	}
	g.updateBounds()
	return g
}

// Size returns the sheet resolution
func (g *Grid) Size() int { return g.size }

// Bounds returns the bounding box of the occupied positions
func (g *Grid) Bounds() models.Bounds { return g.bounds }

// Occupied returns the number of occupied positions
func (g *Grid) Occupied() int { return g.occupied }

// IsOccupied reports whether any paper sits at (x, y)
func (g *Grid) IsOccupied(x, y int) bool {
	if x < 0 || y < 0 || x >= g.size || y >= g.size {
		return false
	}
	return g.head[y*g.size+x] != noPixel
}

// Layers returns the origin indices stacked at (x, y), in layer order.
func (g *Grid) Layers(x, y int) []int {
	if !g.IsOccupied(x, y) {
		return nil
	}
	var layers []int
	g.EachOrigin(y*g.size+x, func(o int) {
		layers = append(layers, o)
	})
	return layers
}

// EachSlot calls fn for every occupied position, row by row.
func (g *Grid) EachSlot(fn func(x, y, slot int)) {
	b := g.bounds
	for y := b.MinY; y < b.MaxY; y++ {
		row := y * g.size
		for x := b.MinX; x < b.MaxX; x++ {
			if g.head[row+x] != noPixel {
				fn(x, y, row+x)
			}
		}
	}
}

// EachOrigin calls fn for every origin index layered at slot.
func (g *Grid) EachOrigin(slot int, fn func(origin int)) {
	for o := g.head[slot]; o != noPixel; o = g.next[o] {
		fn(int(o))
	}
}

// merge appends the chain at slot from onto the chain at slot to and leaves
// from empty.
func (g *Grid) merge(to, from int) {
	g.next[g.tail[to]] = g.head[from]
	g.tail[to] = g.tail[from]
	g.head[from] = noPixel
	g.tail[from] = noPixel
	g.occupied--
}

func (g *Grid) updateBounds() {
	if g.occupied == 0 {
		g.bounds = models.Bounds{}
		return
	}
	minX, minY := g.size, g.size
	maxX, maxY := -1, -1
	for y := 0; y < g.size; y++ {
		row := y * g.size
		for x := 0; x < g.size; x++ {
			if g.head[row+x] == noPixel {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	g.bounds = models.Bounds{MinX: minX, MaxX: maxX + 1, MinY: minY, MaxY: maxY + 1}
}
