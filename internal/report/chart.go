package report

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"spicongress/internal/analysis"
	"spicongress/internal/dataprocessing"
	apperrors "spicongress/internal/errors"
)

var (
	defaultPointColor = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	otherPartyColor   = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	smoothColor       = color.RGBA{R: 51, G: 102, B: 255, A: 255}
)

// PartyColors maps party codes to their point and curve colors
var PartyColors = map[dataprocessing.Party]color.RGBA{
	dataprocessing.PartyRepublican:  {R: 255, G: 0, B: 0, A: 255},
	dataprocessing.PartyDemocrat:    {R: 0, G: 0, B: 139, A: 255},
	dataprocessing.PartyIndependent: {R: 0, G: 128, B: 0, A: 255},
}

// partyColor returns the mapped color, gray for unknown parties
func partyColor(party string) color.RGBA {
	if c, ok := PartyColors[dataprocessing.Party(party)]; ok {
		return c
	}
	return otherPartyColor
}

// series is one scatter group with its optional smooth
type series struct {
	label string
	color color.RGBA
	// curve colors the smooth; zero means color
	curve  color.RGBA
	points analysis.Points
	smooth *analysis.Smooth
}

func (s series) curveColor() color.RGBA {
	if s.curve == (color.RGBA{}) {
		return s.color
	}
	return s.curve
}

func newChart(xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	return p
}

// addSeries draws the band, the curve and then the points so points stay on top
func addSeries(p *plot.Plot, s series) error {
	var thumbs []plot.Thumbnailer

	if s.smooth != nil {
		if band := bandPolygon(s.smooth); band != nil {
			poly, err := plotter.NewPolygon(band)
			if err != nil {
				return fmt.Errorf("confidence band for %q: %w", s.label, err)
			}
			poly.Color = withAlpha(s.curveColor(), 40)
			poly.LineStyle.Width = 0
			p.Add(poly)
		}

		line, err := plotter.NewLine(xys(s.smooth.X, s.smooth.Y))
		if err != nil {
			return fmt.Errorf("smooth for %q: %w", s.label, err)
		}
		line.LineStyle.Color = s.curveColor()
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		thumbs = append(thumbs, line)
	}

	scatter, err := plotter.NewScatter(xys(s.points.X, s.points.Y))
	if err != nil {
		return fmt.Errorf("points for %q: %w", s.label, err)
	}
	scatter.GlyphStyle.Color = s.color
	scatter.GlyphStyle.Radius = vg.Points(2.5)
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(scatter)
	thumbs = append(thumbs, scatter)

	if s.label != "" {
		p.Legend.Add(s.label, thumbs...)
	}
	return nil
}

// bandPolygon traces the upper bound left to right and the lower bound back.
// It returns nil when any bound is not finite.
func bandPolygon(s *analysis.Smooth) plotter.XYs {
	band := make(plotter.XYs, 0, 2*len(s.X))
	for i := range s.X {
		if !finite(s.Lower[i]) || !finite(s.Upper[i]) {
			return nil
		}
		band = append(band, plotter.XY{X: s.X[i], Y: s.Upper[i]})
	}
	for i := len(s.X) - 1; i >= 0; i-- {
		band = append(band, plotter.XY{X: s.X[i], Y: s.Lower[i]})
	}
	return band
}

func xys(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}
	return pts
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func withAlpha(c color.RGBA, alpha uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: alpha}
}

// savePNG renders p at the given size in inches and replaces path with it
func savePNG(p *plot.Plot, path string, widthIn, heightIn float64) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to create directory for %s", path), err)
	}

	writer, err := p.WriterTo(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch, "png")
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to render %s", path), err)
	}

	tmp, err := os.CreateTemp(dir, ".chart-*.png")
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to create %s", path), err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := writer.WriteTo(tmp); err != nil {
		tmp.Close()
		return apperrors.NewStorageError(fmt.Sprintf("failed to write %s", path), err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to write %s", path), err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to write %s", path), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to replace %s", path), err)
	}
	return nil
}
