package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series is a named data series for charting.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultChartHeight = 8
	minChartWidth      = 10
	axisLabelWidth     = 4
	axisSeparator      = " │ "
	fallbackTermWidth  = 80
)

var seriesColors = []lipgloss.Color{"6", "5", "3", "2"}

// Chart draws series as braille lines, each scaled to its own range.
func Chart(w io.Writer, title string, series []Series, width, height int, useColor bool) error {
	series = nonEmpty(series)
	if len(series) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultChartHeight
	}
	if width <= 0 {
		width = ChartWidthFor(terminalWidth())
	}
	if width < minChartWidth {
		width = minChartWidth
	}
	useColor = useColor && os.Getenv("NO_COLOR") == ""

	grids := make([][][]uint8, len(series))
	ranges := make([][2]float64, len(series))
	for si, s := range series {
		values := resample(s.Values, width)
		lo, hi := minMax(values)
		if math.Abs(hi-lo) < 1e-9 {
			lo--
			hi++
		}
		ranges[si] = [2]float64{lo, hi}
		grids[si] = newGrid(height, width)
		prevX, prevY := -1, -1
		for x, v := range values {
			px, py := x*2, dotRow(v, lo, hi, height*4)
			if prevX >= 0 {
				line(prevX, prevY, px, py, func(dx, dy int) {
					setDot(grids[si], dx, dy)
				})
			} else {
				setDot(grids[si], px, py)
			}
			prevX, prevY = px, py
		}
	}

	var b strings.Builder
	if title != "" {
		b.WriteString(title + "\n")
	}
	for si, s := range series {
		fmt.Fprintf(&b, "%s: %.1f .. %.1f\n", paint(s.Name, si, useColor), ranges[si][0], ranges[si][1])
	}
	for y := 0; y < height; y++ {
		b.WriteString(runewidth.FillLeft(axisLabel(y, height), axisLabelWidth))
		b.WriteString(axisSeparator)
		for x := 0; x < width; x++ {
			mask, owner := mergeCell(grids, x, y)
			ch := string(rune(0x2800 + int(mask)))
			if owner >= 0 {
				ch = paint(ch, owner, useColor)
			}
			b.WriteString(ch)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// ChartWidthFor returns the plot width that fits within totalWidth columns.
func ChartWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minChartWidth
	}
	width := totalWidth - axisLabelWidth - runewidth.StringWidth(axisSeparator)
	if width < minChartWidth {
		width = minChartWidth
	}
	return width
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackTermWidth
	}
	return width
}

func paint(s string, idx int, useColor bool) string {
	if !useColor {
		return s
	}
	return lipgloss.NewStyle().Foreground(seriesColors[idx%len(seriesColors)]).Render(s)
}

func axisLabel(y, height int) string {
	switch {
	case y == 0:
		return "max"
	case y == height-1:
		return "min"
	default:
		return ""
	}
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

func newGrid(height, width int) [][]uint8 {
	grid := make([][]uint8, height)
	for y := range grid {
		grid[y] = make([]uint8, width)
	}
	return grid
}

// mergeCell ORs the dot masks of every series; the first series drawing in
// the cell owns its color.
func mergeCell(grids [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	owner := -1
	for i, grid := range grids {
		m := grid[y][x]
		if m == 0 {
			continue
		}
		if owner < 0 {
			owner = i
		}
		mask |= m
	}
	return mask, owner
}

// resample stretches or averages values to exactly width points.
func resample(values []float64, width int) []float64 {
	out := make([]float64, width)
	n := len(values)
	switch {
	case n == width:
		copy(out, values)
	case n > width:
		for i := range out {
			start := i * n / width
			end := (i + 1) * n / width
			if end <= start {
				end = start + 1
			}
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	case n == 1 || width == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		for i := range out {
			pos := float64(i) * float64(n-1) / float64(width-1)
			idx := int(pos)
			if idx >= n-1 {
				out[i] = values[n-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

func dotRow(v, lo, hi float64, rows int) int {
	if rows <= 1 {
		return 0
	}
	row := int(math.Round((1 - (v-lo)/(hi-lo)) * float64(rows-1)))
	if row < 0 {
		return 0
	}
	if row >= rows {
		return rows - 1
	}
	return row
}

// line walks the Bresenham segment between two dots.
func line(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func setDot(grid [][]uint8, x, y int) {
	cy, cx := y/4, x/2
	if x < 0 || y < 0 || cy >= len(grid) || cx >= len(grid[cy]) {
		return
	}
	grid[cy][cx] |= brailleBit[x%2][y%4]
}

// brailleBit maps a dot position inside a 2x4 cell to its Unicode bit.
var brailleBit = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
