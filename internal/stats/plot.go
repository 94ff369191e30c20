// Package stats computes and renders decode-history reports.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series is one named curve in a plot.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight = 10
	minPlotWidth      = 10
	axisSeparator     = " │ "
	fallbackTermWidth = 80
)

var plotColors = []string{
	"\x1b[36m", // cyan
	"\x1b[35m", // magenta
	"\x1b[33m", // yellow
	"\x1b[32m", // green
}

const colorReset = "\x1b[0m"

// Plot renders the series as a braille-dot line chart. All series share
// one vertical scale; the axis is labeled with the global min and max.
func Plot(w io.Writer, title string, series []Series, width, height int, useColor bool) error {
	series = nonEmpty(series)
	if len(series) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = WidthFor(terminalWidth())
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	lo, hi := globalMinMax(series)
	if math.Abs(hi-lo) < 1e-9 {
		lo--
		hi++
	}

	canvas := newBrailleCanvas(width, height)
	for si, s := range series {
		values := resample(s.Values, width*2)
		prevX, prevY := -1, -1
		for x, v := range values {
			y := dotRow(v, lo, hi, height*4)
			if prevX >= 0 {
				bresenham(prevX, prevY, x, y, func(px, py int) {
					canvas.set(px, py, si)
				})
			} else {
				canvas.set(x, y, si)
			}
			prevX, prevY = x, y
		}
	}

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	labels := axisLabels(lo, hi, height)
	labelWidth := 0
	for _, l := range labels {
		if n := runewidth.StringWidth(l); n > labelWidth {
			labelWidth = n
		}
	}
	for y := 0; y < height; y++ {
		var row strings.Builder
		fmt.Fprintf(&row, "%*s%s", labelWidth, labels[y], axisSeparator)
		for x := 0; x < width; x++ {
			mask, owner := canvas.cell(x, y)
			ch := rune(0x2800 + int(mask))
			if useColor && owner >= 0 {
				row.WriteString(plotColors[owner%len(plotColors)])
				row.WriteRune(ch)
				row.WriteString(colorReset)
			} else {
				row.WriteRune(ch)
			}
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, legend(series, useColor)); err != nil {
		return err
	}
	return nil
}

// WidthFor computes the plot width that fits a terminal of totalWidth
// columns, leaving room for the axis labels.
func WidthFor(totalWidth int) int {
	width := totalWidth - 8 - runewidth.StringWidth(axisSeparator)
	if width < minPlotWidth {
		return minPlotWidth
	}
	return width
}

// UseColor reports whether to emit ANSI color to w.
func UseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackTermWidth
	}
	return width
}

// brailleCanvas is a dot grid of 2x4 dots per character cell. Each cell
// remembers the first series that touched it for coloring.
type brailleCanvas struct {
	width  int
	height int
	masks  []uint8
	owners []int
}

// Dot offsets within a braille cell, indexed [y][x].
var brailleMasks = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

func newBrailleCanvas(width, height int) *brailleCanvas {
	owners := make([]int, width*height)
	for i := range owners {
		owners[i] = -1
	}
	return &brailleCanvas{
		width:  width,
		height: height,
		masks:  make([]uint8, width*height),
		owners: owners,
	}
}

func (c *brailleCanvas) set(dotX, dotY, series int) {
	cellX, cellY := dotX/2, dotY/4
	if cellX < 0 || cellX >= c.width || cellY < 0 || cellY >= c.height {
		return
	}
	idx := cellY*c.width + cellX
	c.masks[idx] |= brailleMasks[dotY%4][dotX%2]
	if c.owners[idx] == -1 {
		c.owners[idx] = series
	}
}

func (c *brailleCanvas) cell(x, y int) (uint8, int) {
	idx := y*c.width + x
	return c.masks[idx], c.owners[idx]
}

func nonEmpty(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func globalMinMax(series []Series) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s.Values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return lo, hi
}

func axisLabels(lo, hi float64, height int) []string {
	labels := make([]string, height)
	if height == 0 {
		return labels
	}
	labels[0] = fmt.Sprintf("%.1f", hi)
	labels[height-1] = fmt.Sprintf("%.1f", lo)
	if height > 2 {
		labels[height/2] = fmt.Sprintf("%.1f", (lo+hi)/2)
	}
	return labels
}

func legend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series))
	for i, s := range series {
		label := fmt.Sprintf("%c %s", rune(0x2800+0x01), s.Name)
		if useColor {
			label = plotColors[i%len(plotColors)] + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func dotRow(v, lo, hi float64, dotHeight int) int {
	pos := (v - lo) / (hi - lo)
	row := int(math.Round((1 - pos) * float64(dotHeight-1)))
	if row < 0 {
		return 0
	}
	if row >= dotHeight {
		return dotHeight - 1
	}
	return row
}

// resample stretches or shrinks values to exactly n samples. Shrinking
// averages buckets; stretching interpolates linearly.
func resample(values []float64, n int) []float64 {
	if len(values) == 0 || n <= 0 {
		return nil
	}
	out := make([]float64, n)
	switch {
	case len(values) == n:
		copy(out, values)
	case len(values) > n:
		for i := 0; i < n; i++ {
			start := i * len(values) / n
			end := (i + 1) * len(values) / n
			if end <= start {
				end = start + 1
			}
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	case len(values) == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		for i := 0; i < n; i++ {
			pos := float64(i) * float64(len(values)-1) / float64(n-1)
			idx := int(pos)
			if idx >= len(values)-1 {
				out[i] = values[len(values)-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

func bresenham(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				return
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				return
			}
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
