package draw

// Shade characters from faintest to strongest, used to fade particles.
var Shades = []rune{'·', '∙', '•', '●'}

// ShadeLevel returns a shade character for an intensity between 0 and 1.
func ShadeLevel(intensity float64) rune {
	if intensity <= 0 {
		return Shades[0]
	}
	if intensity >= 1 {
		return Shades[len(Shades)-1]
	}
	return Shades[int(intensity*float64(len(Shades)))]
}

// Viewport maps logical play-field coordinates onto a block of terminal
// cells. Row and column results are 1-based terminal positions.
type Viewport struct {
	Col, Row      int // Top-left cell
	Cols, Rows    int
	LogicalWidth  float64
	LogicalHeight float64
}

// Cell returns the terminal cell for a logical point. ok is false when the
// point lies outside the viewport.
func (v Viewport) Cell(x, y float64) (col, row int, ok bool) {
	if v.Cols <= 0 || v.Rows <= 0 || v.LogicalWidth <= 0 || v.LogicalHeight <= 0 {
		return 0, 0, false
	}
	if x < 0 || y < 0 || x >= v.LogicalWidth || y >= v.LogicalHeight {
		return 0, 0, false
	}
	c := int(x / v.LogicalWidth * float64(v.Cols))
	r := int(y / v.LogicalHeight * float64(v.Rows))
	return v.Col + c, v.Row + r, true
}

// ClampCol shifts a run of width cells starting at col so it stays inside
// the viewport.
func (v Viewport) ClampCol(col, width int) int {
	if right := v.Col + v.Cols - width; col > right {
		col = right
	}
	if col < v.Col {
		col = v.Col
	}
	return col
}
