// Package export renders board snapshots to PNG and JSON.
package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"whiteboard/core"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// ErrNothingToExport is returned for a snapshot without elements.
var ErrNothingToExport = errors.New("nothing to export")

const (
	padding   = 20.0
	maxSide   = 4096.0
	fontSize  = 14.0
	lineStep  = 18.0
	textInset = 10.0

	// ThumbnailWidth is the maximum width of a thumbnail.
	ThumbnailWidth = 320
)

var cardTints = map[core.CardColor]color.RGBA{
	core.ColorOrange: {0xfd, 0xe6, 0xcf, 0xff},
	core.ColorBlue:   {0xd6, 0xe8, 0xfb, 0xff},
	core.ColorGreen:  {0xd9, 0xf2, 0xdc, 0xff},
	core.ColorPurple: {0xe8, 0xde, 0xf8, 0xff},
	core.ColorPink:   {0xfb, 0xdc, 0xe8, 0xff},
	core.ColorYellow: {0xfd, 0xf5, 0xc9, 0xff},
	core.ColorGray:   {0xe9, 0xea, 0xec, 0xff},
}

var namedColors = map[string]color.RGBA{
	"black":  {0x00, 0x00, 0x00, 0xff},
	"gray":   {0x6b, 0x72, 0x80, 0xff},
	"purple": {0x8b, 0x5c, 0xf6, 0xff},
	"blue":   {0x3b, 0x82, 0xf6, 0xff},
	"green":  {0x22, 0xc5, 0x5e, 0xff},
	"red":    {0xef, 0x44, 0x44, 0xff},
	"orange": {0xf9, 0x73, 0x16, 0xff},
	"pink":   {0xec, 0x48, 0x99, 0xff},
	"yellow": {0xea, 0xb3, 0x08, 0xff},
}

var (
	faceOnce sync.Once
	faceFont *truetype.Font
	faceErr  error
)

func newFace() (font.Face, error) {
	faceOnce.Do(func() {
		faceFont, faceErr = truetype.Parse(gomono.TTF)
	})
	if faceErr != nil {
		return nil, fmt.Errorf("failed to parse font: %w", faceErr)
	}
	return truetype.NewFace(faceFont, &truetype.Options{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// Render draws every element of s in z-order onto a white image covering the union of
// their bounds plus padding. Very large boards are scaled down to fit.
func Render(s core.Snapshot) (image.Image, error) {
	bounds, ok := s.Bounds()
	if !ok {
		return nil, ErrNothingToExport
	}

	w := bounds.Width() + 2*padding
	h := bounds.Height() + 2*padding
	scale := math.Min(1, maxSide/math.Max(w, h))

	dc := gg.NewContext(int(math.Ceil(w*scale)), int(math.Ceil(h*scale)))
	dc.SetColor(color.White)
	dc.Clear()

	face, err := newFace()
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(face)

	dc.Scale(scale, scale)
	dc.Translate(padding-bounds.Min.X, padding-bounds.Min.Y)

	for _, el := range s.Elements {
		drawElement(dc, el)
	}
	return dc.Image(), nil
}

// PNG writes the rendered snapshot to w.
func PNG(w io.Writer, s core.Snapshot) error {
	img, err := Render(s)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// Thumbnail renders s scaled to at most ThumbnailWidth pixels wide and returns it as
// a PNG data URL.
func Thumbnail(s core.Snapshot) (string, error) {
	img, err := Render(s)
	if err != nil {
		return "", err
	}

	b := img.Bounds()
	if b.Dx() > ThumbnailWidth {
		height := int(math.Max(1, math.Round(float64(b.Dy())*ThumbnailWidth/float64(b.Dx()))))
		dst := image.NewRGBA(image.Rect(0, 0, ThumbnailWidth, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func drawElement(dc *gg.Context, el core.Element) {
	r := el.Bounds()
	x, y, w, h := r.Min.X, r.Min.Y, r.Width(), r.Height()

	switch c := el.Content.(type) {
	case core.CardContent:
		drawCard(dc, c, x, y, w, h)
	case core.ShapeContent:
		dc.SetColor(strokeColor(c.Style.BorderColor))
		dc.SetLineWidth(math.Max(1, c.Style.BorderWidth))
		if c.Shape == core.ShapeCircle {
			dc.DrawEllipse(x+w/2, y+h/2, w/2, h/2)
		} else {
			dc.DrawRectangle(x, y, w, h)
		}
		dc.Stroke()
	case core.ArrowContent:
		drawArrow(dc, x, y, w, h)
	case core.TextContent:
		dc.SetColor(color.Black)
		drawLines(dc, wrap(dc, c.Text, w-2*textInset), x+textInset, y+textInset)
	case core.ImageContent:
		drawImagePlaceholder(dc, c, x, y, w, h)
	}
}

func drawCard(dc *gg.Context, c core.CardContent, x, y, w, h float64) {
	tint, ok := cardTints[c.Color]
	if !ok {
		tint = cardTints[core.ColorOrange]
	}
	dc.SetColor(tint)
	dc.DrawRoundedRectangle(x, y, w, h, 8)
	dc.Fill()
	dc.SetColor(namedColors["gray"])
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x, y, w, h, 8)
	dc.Stroke()

	dc.SetColor(color.Black)
	lines := wrap(dc, c.Title, w-2*textInset)
	for i, item := range c.Items {
		marker := "•"
		if c.Numbered {
			marker = fmt.Sprintf("%d.", i+1)
		}
		lines = append(lines, marker+" "+item)
	}
	drawLines(dc, lines, x+textInset, y+textInset)
}

func drawArrow(dc *gg.Context, x, y, w, h float64) {
	dc.SetColor(namedColors["gray"])
	dc.SetLineWidth(1)
	dc.DrawRectangle(x, y, w, h)
	dc.Stroke()

	mid := y + h/2
	head := math.Min(12, w/3)
	dc.SetColor(color.Black)
	dc.SetLineWidth(2)
	dc.DrawLine(x+textInset, mid, x+w-textInset-head, mid)
	dc.Stroke()

	tipX := x + w - textInset
	dc.MoveTo(tipX, mid)
	dc.LineTo(tipX-head, mid-head/2)
	dc.LineTo(tipX-head, mid+head/2)
	dc.ClosePath()
	dc.Fill()
}

func drawImagePlaceholder(dc *gg.Context, c core.ImageContent, x, y, w, h float64) {
	dc.SetColor(cardTints[core.ColorGray])
	dc.DrawRectangle(x, y, w, h)
	dc.Fill()
	dc.SetColor(namedColors["gray"])
	dc.SetLineWidth(1)
	dc.DrawRectangle(x, y, w, h)
	dc.Stroke()
	dc.DrawLine(x, y, x+w, y+h)
	dc.DrawLine(x+w, y, x, y+h)
	dc.Stroke()

	if c.Alt != "" {
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(c.Alt, x+w/2, y+h/2, 0.5, 0.5)
	}
}

func drawLines(dc *gg.Context, lines []string, x, y float64) {
	for i, line := range lines {
		dc.DrawStringAnchored(line, x, y+float64(i)*lineStep, 0, 1)
	}
}

// wrap splits text on newlines and then on word boundaries to fit width.
func wrap(dc *gg.Context, text string, width float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		if width <= 0 || para == "" {
			lines = append(lines, para)
			continue
		}
		lines = append(lines, dc.WordWrap(para, width)...)
	}
	return lines
}

func strokeColor(name string) color.Color {
	if strings.HasPrefix(name, "#") {
		if c, ok := parseHex(name[1:]); ok {
			return c
		}
	}
	if c, ok := namedColors[strings.ToLower(name)]; ok {
		return c
	}
	return namedColors["purple"]
}

func parseHex(s string) (color.RGBA, bool) {
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}
