// Package render draws share cards as PNG images using the bitmap face from
// golang.org/x/image. Text is rasterised small and scaled up onto the canvas.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/pkordes/stashport/internal/domain"
)

// Text scales, as multiples of the 7x13 bitmap face.
const (
	titleScale  = 6
	detailScale = 3
	footerScale = 2
)

type palette struct {
	top, bottom color.RGBA
	text        color.RGBA
	accent      color.RGBA
}

var palettes = map[domain.ShareStyle]palette{
	domain.StyleClassic: {
		top:    color.RGBA{0xFB, 0xF7, 0xEF, 0xFF},
		bottom: color.RGBA{0xE9, 0xE1, 0xD0, 0xFF},
		text:   color.RGBA{0x22, 0x22, 0x22, 0xFF},
		accent: color.RGBA{0x2A, 0x9D, 0x8F, 0xFF},
	},
	domain.StyleDark: {
		top:    color.RGBA{0x14, 0x16, 0x1F, 0xFF},
		bottom: color.RGBA{0x29, 0x33, 0x5C, 0xFF},
		text:   color.RGBA{0xF4, 0xF4, 0xF6, 0xFF},
		accent: color.RGBA{0xF3, 0xA7, 0x12, 0xFF},
	},
	domain.StyleSunset: {
		top:    color.RGBA{0xF8, 0x9B, 0x29, 0xFF},
		bottom: color.RGBA{0xB5, 0x38, 0x6D, 0xFF},
		text:   color.RGBA{0xFF, 0xFF, 0xFF, 0xFF},
		accent: color.RGBA{0xFF, 0xE6, 0xA7, 0xFF},
	},
}

// Cards renders domain.ShareCard values as PNG images.
type Cards struct {
	face *basicfont.Face
}

// NewCards returns a renderer using the 7x13 bitmap face.
func NewCards() *Cards {
	return &Cards{face: basicfont.Face7x13}
}

// Render draws card at the pixel size of its format. Lines that do not fit
// above the footer are left out.
func (c *Cards) Render(ctx context.Context, card domain.ShareCard) ([]byte, error) {
	w, h := card.Format.Size()
	pal, ok := palettes[card.Style]
	if !ok {
		pal = palettes[domain.StyleClassic]
	}

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	fillGradient(canvas, pal.top, pal.bottom)

	margin := w / 12
	footerTop := h - margin - c.lineHeight(footerScale)
	y := margin

	for _, line := range wrap(ascii(card.Title), c.columns(w-2*margin, titleScale)) {
		y = c.drawText(canvas, line, margin, y, titleScale, pal.text)
	}
	if dest := ascii(card.Destination); dest != "" {
		y = c.drawText(canvas, dest, margin, y+c.lineHeight(1), detailScale, pal.accent)
	}
	if len(card.Tags) > 0 {
		tags := "#" + strings.Join(card.Tags, "  #")
		y = c.drawText(canvas, ascii(tags), margin, y+c.lineHeight(1), detailScale, pal.accent)
	}

	y += c.lineHeight(detailScale)
	cols := c.columns(w-2*margin, detailScale)
	for _, line := range card.Lines {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("render.Cards.Render: %w", err)
		}
		if y+c.lineHeight(detailScale) > footerTop {
			break
		}
		y = c.drawText(canvas, truncate(ascii(line), cols), margin, y, detailScale, pal.text)
	}

	footer := "stashport"
	if author := ascii(card.Author); author != "" {
		footer = "by " + author + "  |  " + footer
	}
	c.drawText(canvas, truncate(footer, c.columns(w-2*margin, footerScale)), margin, footerTop, footerScale, pal.accent)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("render.Cards.Render: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *Cards) lineHeight(scale int) int {
	return c.face.Height * scale
}

func (c *Cards) columns(width, scale int) int {
	return max(1, width/(c.face.Advance*scale))
}

// drawText rasterises s at 1x and scales it onto dst with its top-left corner
// at (x, y). It returns the y coordinate below the drawn line.
func (c *Cards) drawText(dst draw.Image, s string, x, y, scale int, col color.Color) int {
	next := y + c.lineHeight(scale)
	if s == "" {
		return next
	}
	d := font.Drawer{Face: c.face}
	width := d.MeasureString(s).Ceil()
	layer := image.NewRGBA(image.Rect(0, 0, width, c.face.Height))
	d.Dst = layer
	d.Src = image.NewUniform(col)
	d.Dot = fixed.P(0, c.face.Ascent)
	d.DrawString(s)

	target := image.Rect(x, y, x+width*scale, next)
	draw.CatmullRom.Scale(dst, target, layer, layer.Bounds(), draw.Over, nil)
	return next
}

// fillGradient paints a vertical gradient from top to bottom.
func fillGradient(dst *image.RGBA, top, bottom color.RGBA) {
	b := dst.Bounds()
	span := max(1, b.Dy()-1)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		t := float64(y-b.Min.Y) / float64(span)
		row := image.Rect(b.Min.X, y, b.Max.X, y+1)
		draw.Draw(dst, row, image.NewUniform(lerp(top, bottom, t)), image.Point{}, draw.Src)
	}
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 0xFF}
}

// ascii drops runes the bitmap face cannot draw and collapses whitespace.
func ascii(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 0x20 && r < 0x7F:
			b.WriteRune(r)
		case r == '\t' || r == '\n':
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// wrap breaks s into lines of at most cols characters, splitting on spaces.
// Words longer than a line are cut.
func wrap(s string, cols int) []string {
	var lines []string
	var cur string
	for _, word := range strings.Fields(s) {
		for len(word) > cols {
			if cur != "" {
				lines = append(lines, cur)
				cur = ""
			}
			lines = append(lines, word[:cols])
			word = word[cols:]
		}
		switch {
		case cur == "":
			cur = word
		case len(cur)+1+len(word) <= cols:
			cur += " " + word
		default:
			lines = append(lines, cur)
			cur = word
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// truncate shortens s to cols characters, marking the cut with "...".
func truncate(s string, cols int) string {
	if len(s) <= cols {
		return s
	}
	if cols <= 3 {
		return s[:cols]
	}
	return s[:cols-3] + "..."
}
