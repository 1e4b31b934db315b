// Package maze generates randomized arena layouts and converts them into
// rectangular wall geometry.
package maze

import (
	"math"
	"math/rand/v2"
)

// Orientation of a candidate wall between two neighbouring cells.
type orientation uint8

const (
	rightWall  orientation = iota // Separates (x, y) from (x+1, y).
	bottomWall                    // Separates (x, y) from (x, y+1).
)

// edge is a candidate wall in the cell graph.
type edge struct {
	orientation orientation
	x, y        int
	enabled     bool
}

// Grid is a width x height maze. Right[y][x] reports a wall between cell
// (x, y) and (x+1, y); Bottom[y][x] reports a wall between (x, y) and (x, y+1).
// The outer perimeter is implicit and always closed.
type Grid struct {
	Width  int
	Height int
	Right  [][]bool // [Height][Width-1]
	Bottom [][]bool // [Height-1][Width]
}

// Factory builds a maze grid. It matches the signature of Generate so the
// store can be given a deterministic or canned generator.
type Factory func(width, height int, density float64, rng *rand.Rand) Grid

// Generate builds a maze with randomized Kruskal over the cell graph and then
// knocks out extra walls to add loops. A density of 1 keeps the spanning tree;
// 0 removes every wall the tree did not need. A nil rng uses a freshly seeded
// source.
func Generate(width, height int, density float64, rng *rand.Rand) Grid {
	if width <= 0 || height <= 0 {
		return Grid{Width: max(width, 0), Height: max(height, 0)}
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	edges := make([]*edge, 0, height*(width-1)+(height-1)*width)
	for y := 0; y < height; y++ {
		for x := 0; x < width-1; x++ {
			edges = append(edges, &edge{orientation: rightWall, x: x, y: y, enabled: true})
		}
	}
	for y := 0; y < height-1; y++ {
		for x := 0; x < width; x++ {
			edges = append(edges, &edge{orientation: bottomWall, x: x, y: y, enabled: true})
		}
	}

	rng.Shuffle(len(edges), func(i, j int) { edges[i], edges[j] = edges[j], edges[i] })

	groups := newUnionFind(width * height)
	for _, e := range edges {
		a, b := e.cells(width)
		if groups.union(a, b) {
			e.enabled = false
		}
	}

	enabled := make([]*edge, 0, len(edges))
	for _, e := range edges {
		if e.enabled {
			enabled = append(enabled, e)
		}
	}
	rng.Shuffle(len(enabled), func(i, j int) { enabled[i], enabled[j] = enabled[j], enabled[i] })

	for _, e := range enabled[:extraOpenings(width, height, density, len(enabled))] {
		e.enabled = false
	}

	g := newGrid(width, height)
	for _, e := range edges {
		switch e.orientation {
		case rightWall:
			g.Right[e.y][e.x] = e.enabled
		case bottomWall:
			g.Bottom[e.y][e.x] = e.enabled
		}
	}
	return g
}

// extraOpenings is the number of non-tree walls to remove, clamped to what is
// actually left standing.
func extraOpenings(width, height int, density float64, available int) int {
	n := math.RoundToEven(float64((width-1)*(height-1)) * (1 - density))
	if math.IsNaN(n) || n < 0 {
		return 0
	}
	if n > float64(available) {
		return available
	}
	return int(n)
}

func (e *edge) cells(width int) (int, int) {
	a := e.x + e.y*width
	if e.orientation == rightWall {
		return a, a + 1
	}
	return a, a + width
}

func newGrid(width, height int) Grid {
	g := Grid{
		Width:  width,
		Height: height,
		Right:  make([][]bool, height),
		Bottom: make([][]bool, max(height-1, 0)),
	}
	for y := range g.Right {
		g.Right[y] = make([]bool, max(width-1, 0))
	}
	for y := range g.Bottom {
		g.Bottom[y] = make([]bool, width)
	}
	return g
}

// CellCentres returns the centre of every cell, row by row.
func (g Grid) CellCentres() [][2]float64 {
	centres := make([][2]float64, 0, g.Width*g.Height)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			centres = append(centres, [2]float64{float64(x) + 0.5, float64(y) + 0.5})
		}
	}
	return centres
}

// OpenWalls counts interior walls that are absent.
func (g Grid) OpenWalls() int {
	open := 0
	for _, row := range g.Right {
		for _, w := range row {
			if !w {
				open++
			}
		}
	}
	for _, row := range g.Bottom {
		for _, w := range row {
			if !w {
				open++
			}
		}
	}
	return open
}

// unionFind tracks connectivity groups with path halving and union by size.
type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	u := &unionFind{parent: make([]int, n), size: make([]int, n)}
	for i := range u.parent {
		u.parent[i] = i
		u.size[i] = 1
	}
	return u
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

// union merges the groups of a and b and reports whether they were distinct.
func (u *unionFind) union(a, b int) bool {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return false
	}
	if u.size[ra] < u.size[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	u.size[ra] += u.size[rb]
	return true
}
