package maze

import "strings"

// String draws the grid as ASCII art:
//
//	+---+---+
//	|       |
//	+   +---+
//	|   |   |
//	+---+---+
func (g Grid) String() string {
	if g.Width <= 0 || g.Height <= 0 {
		return ""
	}
	var b strings.Builder
	border := strings.Repeat("+---", g.Width) + "+\n"

	b.WriteString(border)
	for y := 0; y < g.Height; y++ {
		b.WriteString("|   ")
		for x := 0; x < g.Width-1; x++ {
			if g.Right[y][x] {
				b.WriteString("|   ")
			} else {
				b.WriteString("    ")
			}
		}
		b.WriteString("|\n")

		if y == g.Height-1 {
			continue
		}
		for x := 0; x < g.Width; x++ {
			if g.Bottom[y][x] {
				b.WriteString("+---")
			} else {
				b.WriteString("+   ")
			}
		}
		b.WriteString("+\n")
	}
	b.WriteString(border)
	return b.String()
}
