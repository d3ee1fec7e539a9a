// File: internal/vision/annotate.go
package vision

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/api/schemas"
)

var (
	annotateBox  = color.RGBA{R: 255, A: 255}
	annotateText = color.RGBA{R: 255, A: 255}
)

// Annotate draws bounding boxes and id labels for the selected candidates on
// top of a screenshot and returns the result re-encoded as PNG. Diagnostic
// output only.
func Annotate(screenshot []byte, elements []schemas.ScoredElement) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(screenshot))
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot for annotation: %w", err)
	}

	rgba := image.NewRGBA(src.Bounds())
	draw.Draw(rgba, rgba.Bounds(), src, src.Bounds().Min, draw.Src)

	for _, e := range elements {
		if !e.Selected {
			continue
		}
		box := e.BoundingBox
		drawRect(rgba, int(box.X), int(box.Y), int(box.Width), int(box.Height))
		drawLabel(rgba, int(box.X)+2, int(box.Y)+12, e.ID)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return nil, fmt.Errorf("failed to encode annotated screenshot: %w", err)
	}
	return buf.Bytes(), nil
}

// drawRect outlines a rectangle with a 2px stroke, clipped to the image.
func drawRect(img *image.RGBA, x, y, w, h int) {
	for t := 0; t < 2; t++ {
		for i := x; i <= x+w; i++ {
			setPixel(img, i, y+t)
			setPixel(img, i, y+h-t)
		}
		for j := y; j <= y+h; j++ {
			setPixel(img, x+t, j)
			setPixel(img, x+w-t, j)
		}
	}
}

func setPixel(img *image.RGBA, x, y int) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.Set(x, y, annotateBox)
	}
}

func drawLabel(img *image.RGBA, x, y int, label string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(annotateText),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(label)
}
