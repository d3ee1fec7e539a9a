// File: internal/vision/resize.go
package vision

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	xdraw "golang.org/x/image/draw"
)

// ShrinkToMaxEdge re-encodes a screenshot so its longest edge is at most
// maxEdge pixels, preserving aspect ratio. Images already within the limit
// are returned unchanged. Used to cap upload size before model calls.
func ShrinkToMaxEdge(encoded []byte, maxEdge int) ([]byte, error) {
	if maxEdge <= 0 {
		return encoded, nil
	}
	src, _, err := image.Decode(bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot for resize: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxEdge {
		return encoded, nil
	}

	scale := float64(maxEdge) / float64(longest)
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, xdraw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode resized screenshot: %w", err)
	}
	return buf.Bytes(), nil
}
