package render

import (
	"math"
	"sort"
)

// FillPolygon calls plot for every integer pixel whose centre lies inside pts,
// using the even-odd rule. Pixels outside [0,width)x[0,height) are skipped.
func FillPolygon(pts [][2]float64, width, height int, plot func(x, y int)) {
	if len(pts) < 3 {
		return
	}

	minY, maxY := pts[0][1], pts[0][1]
	for _, p := range pts[1:] {
		minY = math.Min(minY, p[1])
		maxY = math.Max(maxY, p[1])
	}
	y0 := max(0, int(math.Floor(minY)))
	y1 := min(height-1, int(math.Ceil(maxY)))

	var xs []float64
	for y := y0; y <= y1; y++ {
		cy := float64(y) + 0.5
		xs = xs[:0]
		for i := range pts {
			a, b := pts[i], pts[(i+1)%len(pts)]
			if (a[1] <= cy) == (b[1] <= cy) {
				continue
			}
			t := (cy - a[1]) / (b[1] - a[1])
			xs = append(xs, a[0]+t*(b[0]-a[0]))
		}
		sort.Float64s(xs)

		for i := 0; i+1 < len(xs); i += 2 {
			x0 := max(0, int(math.Ceil(xs[i]-0.5)))
			x1 := min(width-1, int(math.Floor(xs[i+1]-0.5)))
			for x := x0; x <= x1; x++ {
				plot(x, y)
			}
		}
	}
}
