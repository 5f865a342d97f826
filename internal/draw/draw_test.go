package draw

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkWriterFlush(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out)

	cw.Clear()
	cw.WriteAt(3, 2, "hi")
	cw.WriteAt(0, 1, "x")
	cw.WriteAt(5, 0, "offscreen")
	assert.Zero(t, out.Len(), "nothing is written before Flush")

	require.NoError(t, cw.Flush())
	assert.Equal(t, "\033[H\033[2J\033[2;3Hhi\033[1;1Hx", out.String())

	// The buffer is reset after a flush
	out.Reset()
	require.NoError(t, cw.Flush())
	assert.Zero(t, out.Len())
}

func TestChunkWriterLargeFrame(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out)
	big := strings.Repeat("#", 3*maxChunkSize+17)
	cw.WriteString(big)

	require.NoError(t, cw.Flush())
	assert.Equal(t, big, out.String())
}

func TestViewportCell(t *testing.T) {
	v := Viewport{Col: 1, Row: 3, Cols: 80, Rows: 20, LogicalWidth: 800, LogicalHeight: 600}

	col, row, ok := v.Cell(0, 0)
	require.True(t, ok)
	assert.Equal(t, 1, col)
	assert.Equal(t, 3, row)

	col, row, ok = v.Cell(405, 299)
	require.True(t, ok)
	assert.Equal(t, 41, col)
	assert.Equal(t, 12, row)

	_, _, ok = v.Cell(100, -30)
	assert.False(t, ok, "words above the field are not drawn")
	_, _, ok = v.Cell(100, 600)
	assert.False(t, ok)
}

func TestViewportClampCol(t *testing.T) {
	v := Viewport{Col: 1, Cols: 80}
	assert.Equal(t, 75, v.ClampCol(78, 6))
	assert.Equal(t, 1, v.ClampCol(-4, 6))
	assert.Equal(t, 10, v.ClampCol(10, 6))
}

func TestShadeLevel(t *testing.T) {
	assert.Equal(t, '·', ShadeLevel(0))
	assert.Equal(t, '●', ShadeLevel(1))
	assert.Equal(t, '∙', ShadeLevel(0.3))
	assert.Equal(t, '•', ShadeLevel(0.6))
}
