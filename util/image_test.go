package util

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 7, 3))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	got, err := DecodeImage(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 7, got.Bounds().Dx())
	assert.Equal(t, 3, got.Bounds().Dy())

	_, err = DecodeImage(nil)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = DecodeImage([]byte("not an image"))
	assert.Error(t, err)
}

func TestResizeWithinMax(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		maxSize int
		wantW   int
		wantH   int
	}{
		{"不超过上限原样返回", 100, 50, 200, 100, 50},
		{"横图按最长边缩小", 400, 200, 100, 100, 50},
		{"竖图按最长边缩小", 200, 400, 100, 50, 100},
		{"不限制", 4000, 3000, 0, 4000, 3000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResizeWithinMax(image.NewRGBA(image.Rect(0, 0, tt.w, tt.h)), tt.maxSize)
			assert.Equal(t, tt.wantW, got.Bounds().Dx())
			assert.Equal(t, tt.wantH, got.Bounds().Dy())
		})
	}
}

func TestTrimTransparent(t *testing.T) {
	logo := image.NewNRGBA(image.Rect(0, 0, 20, 10))
	for y := 2; y < 6; y++ {
		for x := 5; x < 15; x++ {
			logo.SetNRGBA(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}

	got := TrimTransparent(logo)
	assert.Equal(t, image.Rect(0, 0, 10, 4), got.Bounds())
	_, _, _, a := got.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), a)

	opaque := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := 3; i < len(opaque.Pix); i += 4 {
		opaque.Pix[i] = 255
	}
	assert.Equal(t, image.Rect(0, 0, 8, 8), TrimTransparent(opaque).Bounds())

	empty := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	assert.Equal(t, image.Rect(0, 0, 4, 4), TrimTransparent(empty).Bounds())
}

func TestAlphaBBox(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	_, err := AlphaBBox(img, 0.5)
	assert.ErrorIs(t, err, ErrNoForeground)

	img.SetNRGBA(3, 4, color.NRGBA{A: 200})
	img.SetNRGBA(6, 8, color.NRGBA{A: 100})

	bbox, err := AlphaBBox(img, 0.5)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(3, 4, 4, 5), bbox)

	bbox, err = AlphaBBox(img, 0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(3, 4, 7, 9), bbox)
}
