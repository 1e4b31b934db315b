package maze

import "fmt"

// Wall thickness in cell units.
const (
	WallThickness = 0.1
	wallRadius    = WallThickness / 2
)

// Wall is an axis-aligned rectangle in cell units.
type Wall struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// HorizontalWall returns a standard-thickness wall running right from (x, y)
// for length cells, centred on the grid line.
func HorizontalWall(x, y, length float64) Wall {
	return Wall{X: x - wallRadius, Y: y - wallRadius, Width: length + WallThickness, Height: WallThickness}
}

// VerticalWall returns a standard-thickness wall running down from (x, y)
// for length cells, centred on the grid line.
func VerticalWall(x, y, length float64) Wall {
	return Wall{X: x - wallRadius, Y: y - wallRadius, Width: WallThickness, Height: length + WallThickness}
}

func (w Wall) String() string {
	return fmt.Sprintf("<%g, %g, %g, %g>", w.X, w.Y, w.Width, w.Height)
}

// Walls converts the grid into the minimal set of rectangles: the four
// perimeter walls followed by one rectangle per maximal run of enabled
// interior walls along each grid line.
func (g Grid) Walls() []Wall {
	if g.Width <= 0 || g.Height <= 0 {
		return nil
	}
	w, h := float64(g.Width), float64(g.Height)
	walls := []Wall{
		HorizontalWall(0, 0, w),
		HorizontalWall(0, h, w),
		VerticalWall(0, 0, h),
		VerticalWall(w, 0, h),
	}

	// Horizontal runs along the line below each row.
	for y, row := range g.Bottom {
		walls = appendRuns(walls, row, func(start, length int) Wall {
			return HorizontalWall(float64(start), float64(y+1), float64(length))
		})
	}

	// Vertical runs along the line right of each column.
	for x := 0; x < g.Width-1; x++ {
		column := make([]bool, g.Height)
		for y := range column {
			column[y] = g.Right[y][x]
		}
		walls = appendRuns(walls, column, func(start, length int) Wall {
			return VerticalWall(float64(x+1), float64(start), float64(length))
		})
	}
	return walls
}

// appendRuns scans line once, emitting a wall for every maximal run of true
// cells.
func appendRuns(walls []Wall, line []bool, build func(start, length int) Wall) []Wall {
	start := -1
	for i, on := range line {
		switch {
		case on && start < 0:
			start = i
		case !on && start >= 0:
			walls = append(walls, build(start, i-start))
			start = -1
		}
	}
	if start >= 0 {
		walls = append(walls, build(start, len(line)-start))
	}
	return walls
}
