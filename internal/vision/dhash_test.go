// File: internal/vision/dhash_test.go
package vision

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newNopDetector() *ChangeDetector {
	return NewChangeDetector(zap.NewNop())
}

// encodePNG renders an image to PNG bytes for the decode paths under test.
func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// gradientImage returns a horizontal gradient. ascending=true brightens left
// to right, which makes every left>right comparison false.
func gradientImage(w, h int, ascending bool) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(x * 255 / (w - 1))
			if !ascending {
				v = 255 - v
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestDHashDeterministic(t *testing.T) {
	t.Parallel()
	data := encodePNG(t, gradientImage(64, 48, true))

	first, err := DHash(data)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := DHash(data)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDHashUniformImageIsZero(t *testing.T) {
	t.Parallel()
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetGray(x, y, color.Gray{Y: 128})
		}
	}

	hash, err := DHash(encodePNG(t, img))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), hash)
}

func TestDHashGradientDirections(t *testing.T) {
	t.Parallel()
	ascending, err := DHash(encodePNG(t, gradientImage(90, 80, true)))
	require.NoError(t, err)
	descending, err := DHash(encodePNG(t, gradientImage(90, 80, false)))
	require.NoError(t, err)

	// Ascending brightness never satisfies left>right; descending always does.
	assert.Equal(t, uint64(0), ascending)
	assert.Equal(t, ^uint64(0), descending)
}

func TestDHashRejectsGarbage(t *testing.T) {
	t.Parallel()
	_, err := DHash([]byte("not an image"))
	assert.Error(t, err)
}

func TestChangeDetectorFirstObservationIsChanged(t *testing.T) {
	t.Parallel()
	d := newNopDetector()
	assert.False(t, d.Observe(encodePNG(t, gradientImage(64, 48, true))))
}

func TestChangeDetectorStreak(t *testing.T) {
	t.Parallel()
	d := newNopDetector()
	same := encodePNG(t, gradientImage(64, 48, true))
	different := encodePNG(t, gradientImage(64, 48, false))

	assert.False(t, d.Observe(same))
	assert.True(t, d.Observe(same))
	assert.True(t, d.Observe(same))
	assert.Equal(t, 2, d.Streak())

	assert.False(t, d.Observe(different))
	assert.Equal(t, 0, d.Streak())
}

func TestChangeDetectorDecodeFailureResets(t *testing.T) {
	t.Parallel()
	d := newNopDetector()
	same := encodePNG(t, gradientImage(64, 48, true))

	assert.False(t, d.Observe(same))
	assert.False(t, d.Observe([]byte("broken")))
	// The prior fingerprint is discarded, so the next good frame is "changed".
	assert.False(t, d.Observe(same))
}

func TestChangeDetectorLastHash(t *testing.T) {
	t.Parallel()
	d := newNopDetector()
	_, ok := d.LastHash()
	assert.False(t, ok)

	d.Observe(encodePNG(t, gradientImage(64, 48, false)))
	hash, ok := d.LastHash()
	assert.True(t, ok)
	assert.Equal(t, ^uint64(0), hash)
}
