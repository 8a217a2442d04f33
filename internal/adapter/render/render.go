// Package render draws the stats dashboard as a PNG image.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"bodytrack/internal/app"
	"bodytrack/internal/domain"
)

const (
	width          = 900
	height         = 1200
	placeholderH   = 500
	gaugeRadius    = 120
	gaugeCenterY   = 280
	gaugeLineWidth = 26
)

// Gauge sweep, clockwise from bottom-left to bottom-right.
var (
	gaugeStart = gg.Radians(135)
	gaugeSweep = gg.Radians(270)
)

var (
	colBackground = color.White
	colText       = color.NRGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}
	colMuted      = color.NRGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
	colGrid       = color.NRGBA{R: 0xe3, G: 0xe3, B: 0xe3, A: 0xff}
	colTrack      = color.NRGBA{R: 0xea, G: 0xea, B: 0xea, A: 0xff}
	colGood       = color.NRGBA{R: 0x2e, G: 0x9e, B: 0x5b, A: 0xff}
	colCaution    = color.NRGBA{R: 0xf0, G: 0x9a, B: 0x2b, A: 0xff}
	colThreshold  = color.NRGBA{R: 0xd6, G: 0x3c, B: 0x3c, A: 0xff}
	colLine       = color.NRGBA{R: 0x2f, G: 0x6f, B: 0xd6, A: 0xff}
)

var _ app.ChartRenderer = (*Renderer)(nil)

// Renderer draws dashboards with gg. Faces are created per call because
// truetype faces are not safe for concurrent use.
type Renderer struct {
	font *truetype.Font
}

// New loads the TTF at fontPath, or the bundled Go Regular font when empty.
func New(fontPath string) (*Renderer, error) {
	data := goregular.TTF
	if strings.TrimSpace(fontPath) != "" {
		b, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
		data = b
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return &Renderer{font: f}, nil
}

func (r *Renderer) face(size float64) font.Face {
	return truetype.NewFace(r.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// RenderDashboard draws the rate gauges above the fat-weight plot.
func (r *Renderer) RenderDashboard(ctx context.Context, d app.Dashboard) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dc := gg.NewContext(width, height)
	dc.SetColor(colBackground)
	dc.Clear()

	dc.SetFontFace(r.face(34))
	dc.SetColor(colText)
	dc.DrawStringAnchored("Body composition", width/2, 50, 0.5, 0.5)

	for i, g := range d.Gauges {
		cx := float64(width) * float64(i+1) / float64(len(d.Gauges)+1)
		r.drawGauge(dc, cx, gaugeCenterY, g)
	}

	r.drawSeries(dc, plotArea{left: 100, top: 520, right: width - 40, bottom: height - 90}, d.Series, d.GoalFatKg)
	return encode(dc)
}

// RenderPlaceholder draws a small image carrying message.
func (r *Renderer) RenderPlaceholder(ctx context.Context, message string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dc := gg.NewContext(width, placeholderH)
	dc.SetColor(colBackground)
	dc.Clear()

	dc.SetColor(colGrid)
	dc.SetLineWidth(2)
	dc.DrawLine(100, placeholderH-80, width-40, placeholderH-80)
	dc.DrawLine(100, 60, 100, placeholderH-80)
	dc.Stroke()

	dc.SetFontFace(r.face(32))
	dc.SetColor(colMuted)
	dc.DrawStringWrapped(message, width/2, placeholderH/2, 0.5, 0.5, width-200, 1.4, gg.AlignCenter)
	return encode(dc)
}

func (r *Renderer) drawGauge(dc *gg.Context, cx, cy float64, g app.Gauge) {
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineWidth(gaugeLineWidth)
	dc.SetColor(colTrack)
	dc.NewSubPath()
	dc.DrawArc(cx, cy, gaugeRadius, gaugeStart, gaugeStart+gaugeSweep)
	dc.Stroke()

	value := "n/a"
	if g.Rate != nil {
		fill := clamp(*g.Rate, 0, 1)
		col := colGood
		if *g.Rate < g.Caution {
			col = colCaution
		}
		if fill > 0 {
			dc.SetColor(col)
			dc.NewSubPath()
			dc.DrawArc(cx, cy, gaugeRadius, gaugeStart, gaugeStart+gaugeSweep*fill)
			dc.Stroke()
		}
		value = fmt.Sprintf("%.0f%%", *g.Rate*100)
	}

	// Caution marker across the track.
	a := gaugeStart + gaugeSweep*clamp(g.Caution, 0, 1)
	inner, outer := float64(gaugeRadius-gaugeLineWidth), float64(gaugeRadius+gaugeLineWidth)
	dc.SetLineCap(gg.LineCapButt)
	dc.SetLineWidth(4)
	dc.SetColor(colThreshold)
	dc.DrawLine(cx+inner*math.Cos(a), cy+inner*math.Sin(a), cx+outer*math.Cos(a), cy+outer*math.Sin(a))
	dc.Stroke()

	dc.SetFontFace(r.face(40))
	dc.SetColor(colText)
	dc.DrawStringAnchored(value, cx, cy, 0.5, 0.5)

	dc.SetFontFace(r.face(22))
	dc.SetColor(colMuted)
	dc.DrawStringAnchored(g.Label, cx, cy+gaugeRadius+30, 0.5, 0.5)
}

type plotArea struct {
	left, top, right, bottom float64
}

func (r *Renderer) drawSeries(dc *gg.Context, area plotArea, series []domain.SeriesPoint, goal *float64) {
	dc.SetFontFace(r.face(26))
	dc.SetColor(colText)
	dc.DrawStringAnchored("Fat weight (kg)", (area.left+area.right)/2, area.top-40, 0.5, 0.5)
	if len(series) == 0 {
		return
	}

	lo, hi := series[0].FatWeightKg, series[0].FatWeightKg
	for _, p := range series {
		lo = math.Min(lo, p.FatWeightKg)
		hi = math.Max(hi, p.FatWeightKg)
	}
	if goal != nil {
		lo = math.Min(lo, *goal)
		hi = math.Max(hi, *goal)
	}
	if hi-lo < 1 {
		mid := (hi + lo) / 2
		lo, hi = mid-0.5, mid+0.5
	}
	pad := (hi - lo) * 0.08
	lo, hi = lo-pad, hi+pad

	first, last := series[0].RecordedAt, series[len(series)-1].RecordedAt
	span := last.Sub(first).Seconds()

	x := func(i int) float64 {
		if span <= 0 {
			return (area.left + area.right) / 2
		}
		return area.left + (area.right-area.left)*series[i].RecordedAt.Sub(first).Seconds()/span
	}
	y := func(v float64) float64 {
		return area.bottom - (area.bottom-area.top)*(v-lo)/(hi-lo)
	}

	dc.SetFontFace(r.face(18))
	const ticks = 5
	for i := 0; i <= ticks; i++ {
		v := lo + (hi-lo)*float64(i)/ticks
		dc.SetColor(colGrid)
		dc.SetLineWidth(1)
		dc.DrawLine(area.left, y(v), area.right, y(v))
		dc.Stroke()
		dc.SetColor(colMuted)
		dc.DrawStringAnchored(fmt.Sprintf("%.1f", v), area.left-12, y(v), 1, 0.5)
	}

	dc.SetColor(colMuted)
	dc.DrawStringAnchored(domain.DayString(first), area.left, area.bottom+28, 0, 0.5)
	if span > 0 {
		dc.DrawStringAnchored(domain.DayString(last), area.right, area.bottom+28, 1, 0.5)
	}

	if goal != nil {
		dc.SetColor(colGood)
		dc.SetLineWidth(2)
		dc.SetDash(10, 8)
		dc.DrawLine(area.left, y(*goal), area.right, y(*goal))
		dc.Stroke()
		dc.SetDash()
		dc.DrawStringAnchored(fmt.Sprintf("goal %.1f kg", *goal), area.right, y(*goal)-14, 1, 0.5)
	}

	dc.SetColor(colLine)
	dc.SetLineWidth(4)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	for i, p := range series {
		if i == 0 {
			dc.MoveTo(x(i), y(p.FatWeightKg))
			continue
		}
		dc.LineTo(x(i), y(p.FatWeightKg))
	}
	dc.Stroke()
	for i, p := range series {
		dc.DrawCircle(x(i), y(p.FatWeightKg), 6)
		dc.Fill()
	}
}

func encode(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
