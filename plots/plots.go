// Package plots draws what the walker planned and what it did, for looking at
// outside of a simulator.
package plots

import (
	"fmt"
	"sort"

	"github.com/golang/geo/r3"
	"github.com/samber/lo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/adammck/locomotion/bodyframe"
	"github.com/adammck/locomotion/footstep"
)

const (
	width  = 8 * vg.Inch
	height = 6 * vg.Inch
)

// Recorder samples the trunk and feet over time.
type Recorder struct {
	T     []float64
	Trunk []r3.Vector
	Feet  map[string][]r3.Vector
}

func NewRecorder() *Recorder {
	return &Recorder{Feet: map[string][]r3.Vector{}}
}

// Record adds a sample. Every sample should have the same feet.
func (r *Recorder) Record(t float64, trunk r3.Vector, feet map[string]r3.Vector) {
	r.T = append(r.T, t)
	r.Trunk = append(r.Trunk, trunk)
	for name, p := range feet {
		r.Feet[name] = append(r.Feet[name], p)
	}
}

func (r *Recorder) Len() int {
	return len(r.T)
}

func (r *Recorder) feet() []string {
	names := lo.Keys(r.Feet)
	sort.Strings(names)
	return names
}

// FootHeights plots the height of each foot against time.
func FootHeights(r *Recorder) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Foot height"
	p.X.Label.Text = "t (s)"
	p.Y.Label.Text = "y (m)"

	for i, name := range r.feet() {
		ps := r.Feet[name]
		xys := make(plotter.XYs, len(ps))
		for j, v := range ps {
			xys[j].X = r.T[j]
			xys[j].Y = v.Y
		}

		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}

		l.LineStyle.Color = plotutil.Color(i)
		l.LineStyle.Width = vg.Points(1.5)
		p.Add(l)
		p.Legend.Add(name, l)
	}

	p.Add(plotter.NewGrid())
	return p, nil
}

// Footsteps plots the body frame path and the planned contacts from above.
func Footsteps(bf *bodyframe.Trajectory, plan *footstep.Plan) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Footsteps [%.2f, %.2f)", bf.TStart, bf.TEnd)
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "z (m)"

	path := make(plotter.XYs, bf.Position.KnotCount())
	for i := range path {
		v := bf.Position.KnotValue(i)
		path[i].X = v.X
		path[i].Y = v.Z
	}

	l, err := plotter.NewLine(path)
	if err != nil {
		return nil, err
	}

	l.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(l)
	p.Legend.Add("body frame", l)

	for i, name := range plan.Limbs() {
		cs := plan.Contacts[name]
		if len(cs) == 0 {
			continue
		}

		xys := make(plotter.XYs, len(cs))
		for j, c := range cs {
			xys[j].X = c.Location.X
			xys[j].Y = c.Location.Z
		}

		s, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, err
		}

		s.GlyphStyle.Color = plotutil.Color(i + 1)
		s.GlyphStyle.Shape = plotutil.Shape(i)
		s.GlyphStyle.Radius = vg.Points(3)
		p.Add(s)
		p.Legend.Add(name, s)
	}

	p.Add(plotter.NewGrid())
	return p, nil
}

// Save writes the plot to path. The format follows the extension.
func Save(p *plot.Plot, path string) error {
	return p.Save(width, height, path)
}
