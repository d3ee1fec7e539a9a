// File: internal/vision/dhash.go
package vision

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

// hashWidth/hashHeight define the 9x8 downscale: 8 rows of 8 adjacent-pixel
// comparisons yield the 64 hash bits.
const (
	hashWidth  = 9
	hashHeight = 8
)

// DHash computes a 64-bit difference hash of an encoded screenshot. The image
// is converted to grayscale, resized to 9x8, and each of the 8x8 horizontal
// neighbor comparisons (pixel[r][c] > pixel[r][c+1]) sets one bit, row-major,
// least significant bit first. The result depends only on the pixel content:
// the same bytes always hash identically.
func DHash(encoded []byte) (uint64, error) {
	src, _, err := image.Decode(bytes.NewReader(encoded))
	if err != nil {
		return 0, fmt.Errorf("failed to decode screenshot: %w", err)
	}
	return DHashImage(src), nil
}

// DHashImage is DHash for an already-decoded image.
func DHashImage(src image.Image) uint64 {
	gray := image.NewGray(image.Rect(0, 0, hashWidth, hashHeight))
	xdraw.ApproxBiLinear.Scale(gray, gray.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	var hash uint64
	bit := 0
	for row := 0; row < hashHeight; row++ {
		for col := 0; col < hashWidth-1; col++ {
			left := gray.GrayAt(col, row).Y
			right := gray.GrayAt(col+1, row).Y
			if left > right {
				hash |= 1 << uint(bit)
			}
			bit++
		}
	}
	return hash
}
