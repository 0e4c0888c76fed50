package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/starford/corkboard/internal/board"
	"github.com/starford/corkboard/internal/geom"
)

// Options controls an export.
type Options struct {
	// Scale is output pixels per world unit.
	Scale float64
	// Padding is the margin around the items, in world units.
	Padding float64
}

// DefaultOptions are used for zero fields.
var DefaultOptions = Options{Scale: 1, Padding: 40}

func (o Options) withDefaults() Options {
	if o.Scale <= 0 {
		o.Scale = DefaultOptions.Scale
	}
	if o.Padding < 0 {
		o.Padding = 0
	}
	return o
}

var loadFont = sync.OnceValues(func() (*truetype.Font, error) {
	return truetype.Parse(gomono.TTF)
})

var (
	paper      = color.White
	ink        = color.RGBA{0x21, 0x21, 0x21, 0xff}
	muted      = color.RGBA{0x75, 0x75, 0x75, 0xff}
	border     = color.RGBA{0xbd, 0xbd, 0xbd, 0xff}
	headerFill = color.RGBA{0xee, 0xee, 0xee, 0xff}
	boardPaper = color.RGBA{0xff, 0xfd, 0xf5, 0xff}
)

var stickyFills = map[board.StickyColor]string{
	board.StickyYellow: "#fff59d",
	board.StickyBlue:   "#90caf9",
	board.StickyGreen:  "#a5d6a7",
	board.StickyPink:   "#f48fb1",
}

var namedColors = map[string]string{
	"blue":   "#1e88e5",
	"red":    "#e53935",
	"green":  "#43a047",
	"orange": "#fb8c00",
	"purple": "#8e24aa",
	"black":  "#212121",
	"gray":   "#757575",
	"grey":   "#757575",
}

// arrowHex resolves an arrow color name or "#rrggbb" value.
func arrowHex(c string) string {
	if hex, ok := namedColors[strings.ToLower(c)]; ok {
		return hex
	}
	if strings.HasPrefix(c, "#") && (len(c) == 4 || len(c) == 7) {
		return c
	}
	return namedColors["blue"]
}

// Bounds returns the world-space box covering every item, rotation included.
// ok is false for an empty board.
func Bounds(s *board.Snapshot) (lo, hi geom.Point, ok bool) {
	lo = geom.Point{X: math.Inf(1), Y: math.Inf(1)}
	hi = geom.Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, it := range s.Items.Items() {
		h := Measure(it)
		cx, cy := it.X+it.W/2, it.Y+h/2
		rad := it.Rotation * math.Pi / 180
		cos, sin := math.Cos(rad), math.Sin(rad)
		for _, c := range [4]geom.Point{{X: -it.W / 2, Y: -h / 2}, {X: it.W / 2, Y: -h / 2}, {X: it.W / 2, Y: h / 2}, {X: -it.W / 2, Y: h / 2}} {
			x := cx + c.X*cos - c.Y*sin
			y := cy + c.X*sin + c.Y*cos
			lo.X, lo.Y = math.Min(lo.X, x), math.Min(lo.Y, y)
			hi.X, hi.Y = math.Max(hi.X, x), math.Max(hi.Y, y)
		}
		ok = true
	}
	return lo, hi, ok
}

// Render draws every item in stacking order, rotated about its center.
func Render(s *board.Snapshot, opts Options) (image.Image, error) {
	dc, err := draw(s, opts)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// WritePNG renders s and encodes it as PNG.
func WritePNG(w io.Writer, s *board.Snapshot, opts Options) error {
	dc, err := draw(s, opts)
	if err != nil {
		return err
	}
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("render: encode png: %w", err)
	}
	return nil
}

func draw(s *board.Snapshot, opts Options) (*gg.Context, error) {
	opts = opts.withDefaults()

	lo, hi, ok := Bounds(s)
	if !ok {
		lo, hi = geom.Point{}, geom.Point{}
	}
	lo = lo.Sub(geom.Point{X: opts.Padding, Y: opts.Padding})
	hi = hi.Add(geom.Point{X: opts.Padding, Y: opts.Padding})

	width := max(1, int(math.Ceil((hi.X-lo.X)*opts.Scale)))
	height := max(1, int(math.Ceil((hi.Y-lo.Y)*opts.Scale)))

	ttf, err := loadFont()
	if err != nil {
		return nil, fmt.Errorf("render: parse font: %w", err)
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(paper)
	dc.Clear()
	dc.Scale(opts.Scale, opts.Scale)
	dc.Translate(-lo.X, -lo.Y)
	dc.SetFontFace(truetype.NewFace(ttf, &truetype.Options{
		Size:    fontSize * opts.Scale,
		DPI:     72,
		Hinting: font.HintingFull,
	}))
	// The face is sized in pixels; draw text through an inverse scale.
	textScale := 1 / opts.Scale

	for _, it := range s.Items.StackOrder() {
		drawItem(dc, it, textScale)
	}
	return dc, nil
}

func drawItem(dc *gg.Context, it *board.Item, textScale float64) {
	w, h := it.W, Measure(it)

	dc.Push()
	defer dc.Pop()
	dc.Translate(it.X+w/2, it.Y+h/2)
	dc.Rotate(gg.Radians(it.Rotation))
	dc.Translate(-w/2, -h/2)

	switch c := it.Content.(type) {
	case *board.TaskList:
		drawTaskList(dc, c, w, h, textScale)
	case *board.NoteBoard:
		drawNoteBoard(dc, c, w, h, textScale)
	case *board.StickyNote:
		drawSticky(dc, c, w, h, textScale)
	case *board.Arrow:
		drawArrow(dc, c)
	}
}

// text draws one line with its baseline at (x, y) in item space.
func text(dc *gg.Context, s string, x, y, textScale float64) {
	dc.Push()
	dc.Translate(x, y)
	dc.Scale(textScale, textScale)
	dc.DrawString(s, 0, 0)
	dc.Pop()
}

// wrap splits s into lines fitting width using the estimate from Measure.
func wrap(s string, width float64) []string {
	perLine := max(1, int(width/charWidth))
	var out []string
	for _, para := range strings.Split(s, "\n") {
		runes := []rune(para)
		if len(runes) == 0 {
			out = append(out, "")
			continue
		}
		for len(runes) > perLine {
			out = append(out, string(runes[:perLine]))
			runes = runes[perLine:]
		}
		out = append(out, string(runes))
	}
	return out
}

func card(dc *gg.Context, w, h float64, fill color.Color) {
	dc.DrawRoundedRectangle(0, 0, w, h, 6)
	dc.SetColor(fill)
	dc.FillPreserve()
	dc.SetColor(border)
	dc.SetLineWidth(1)
	dc.Stroke()
	dc.DrawRectangle(0, 0, w, h)
	dc.Clip()
}

func drawTaskList(dc *gg.Context, c *board.TaskList, w, h, ts float64) {
	card(dc, w, h, paper)
	dc.DrawRectangle(0, 0, w, headerHeight)
	dc.SetColor(headerFill)
	dc.Fill()
	dc.SetColor(ink)
	text(dc, c.Title, inset, headerHeight/2+fontSize/3, ts)

	y := headerHeight + inset/2
	for _, t := range c.Tasks {
		dc.DrawRectangle(inset, y+6, 12, 12)
		dc.SetColor(muted)
		dc.SetLineWidth(1)
		if t.Checked {
			dc.FillPreserve()
		}
		dc.Stroke()
		dc.SetColor(ink)
		if t.Checked {
			dc.SetColor(muted)
		}
		lines := wrap(t.Text, w-2*inset-24)
		for i, line := range lines {
			text(dc, line, inset+24, y+16+float64(i)*lineHeight, ts)
		}
		y += max(taskRow, float64(len(lines))*lineHeight+10)
	}
}

func drawNoteBoard(dc *gg.Context, c *board.NoteBoard, w, h, ts float64) {
	card(dc, w, h, boardPaper)
	dc.SetColor(ink)
	text(dc, c.Title, inset, headerHeight/2+fontSize/3, ts)
	dc.SetColor(muted)
	text(dc, strings.TrimSpace(string(c.NoteType)+" "+c.Date), inset, headerHeight+fontSize/2, ts)

	y := headerHeight + lineHeight + inset
	for _, s := range c.Sections {
		dc.SetColor(ink)
		text(dc, s.Title, inset, y, ts)
		dc.DrawLine(inset, y+4, w-inset, y+4)
		dc.SetColor(border)
		dc.Stroke()
		y += lineHeight
		dc.SetColor(ink)
		for _, line := range wrap(s.Content, w-2*inset) {
			text(dc, line, inset, y, ts)
			y += lineHeight
		}
		y += inset
	}
}

func drawSticky(dc *gg.Context, c *board.StickyNote, w, h, ts float64) {
	fill, ok := stickyFills[c.Color]
	if !ok {
		fill = stickyFills[board.StickyYellow]
	}
	dc.DrawRectangle(0, 0, w, h)
	dc.SetHexColor(fill)
	dc.Fill()
	dc.DrawRectangle(0, 0, w, h)
	dc.Clip()
	dc.SetColor(ink)
	y := stickyGrip + inset
	for _, line := range wrap(c.Text, w-2*inset) {
		text(dc, line, inset, y, ts)
		y += lineHeight
	}
}

func drawArrow(dc *gg.Context, c *board.Arrow) {
	path := c.Path()
	if len(path) == 0 {
		return
	}
	dc.MoveTo(path[0].X, path[0].Y)
	for _, p := range path[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.ClosePath()
	dc.SetHexColor(arrowHex(c.Color))
	dc.Fill()
}
