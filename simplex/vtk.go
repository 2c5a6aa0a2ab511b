package simplex

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jrhy/phtrees"
)

// VTKDrawer collects drawn simplices and writes them as legacy ASCII VTK
// polydata: single points as VERTICES, edges as LINES, larger faces as
// POLYGONS, each with its color as cell data.
type VTKDrawer struct {
	points  [][3]float64
	pointID map[[3]float64]int
	verts   []vtkCell
	lines   []vtkCell
	polys   []vtkCell
}

type vtkCell struct {
	ids   []int
	color phtrees.Color
}

var _ phtrees.Drawer = (*VTKDrawer)(nil)

// NewVTKDrawer returns an empty drawer sized for about n simplices.
func NewVTKDrawer(n int) *VTKDrawer {
	return &VTKDrawer{pointID: make(map[[3]float64]int, n)}
}

func (d *VTKDrawer) DrawSimplex(vertices [][]float64, color phtrees.Color, opts phtrees.DrawOptions) error {
	if len(vertices) == 0 {
		return nil
	}
	c := vtkCell{ids: make([]int, len(vertices)), color: color}
	for i, v := range vertices {
		if len(v) == 0 || len(v) > 3 {
			return fmt.Errorf("vertex with %d coordinates", len(v))
		}
		var p [3]float64
		copy(p[:], v)
		id, ok := d.pointID[p]
		if !ok {
			id = len(d.points)
			d.points = append(d.points, p)
			d.pointID[p] = id
		}
		c.ids[i] = id
	}
	switch len(c.ids) {
	case 1:
		d.verts = append(d.verts, c)
	case 2:
		d.lines = append(d.lines, c)
	default:
		d.polys = append(d.polys, c)
	}
	return nil
}

// Len is the number of simplices drawn so far.
func (d *VTKDrawer) Len() int {
	return len(d.verts) + len(d.lines) + len(d.polys)
}

func (d *VTKDrawer) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)
	fmt.Fprintf(bw, "# vtk DataFile Version 3.0\nphtrees\nASCII\nDATASET POLYDATA\n")
	fmt.Fprintf(bw, "POINTS %d float\n", len(d.points))
	for _, p := range d.points {
		fmt.Fprintf(bw, "%s %s %s\n", fmtFloat(p[0]), fmtFloat(p[1]), fmtFloat(p[2]))
	}
	for _, section := range []struct {
		name  string
		cells []vtkCell
	}{{"VERTICES", d.verts}, {"LINES", d.lines}, {"POLYGONS", d.polys}} {
		if len(section.cells) == 0 {
			continue
		}
		size := 0
		for _, c := range section.cells {
			size += len(c.ids) + 1
		}
		fmt.Fprintf(bw, "%s %d %d\n", section.name, len(section.cells), size)
		for _, c := range section.cells {
			ids := make([]string, len(c.ids))
			for i, id := range c.ids {
				ids[i] = strconv.Itoa(id)
			}
			fmt.Fprintf(bw, "%d %s\n", len(c.ids), strings.Join(ids, " "))
		}
	}
	if n := d.Len(); n > 0 {
		fmt.Fprintf(bw, "CELL_DATA %d\nCOLOR_SCALARS color 3\n", n)
		for _, cells := range [][]vtkCell{d.verts, d.lines, d.polys} {
			for _, c := range cells {
				fmt.Fprintf(bw, "%s %s %s\n",
					fmtFloat(float64(c.color[0])/255), fmtFloat(float64(c.color[1])/255), fmtFloat(float64(c.color[2])/255))
			}
		}
	}
	err := bw.Flush()
	return cw.n, err
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
