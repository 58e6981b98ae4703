package util

import (
	"errors"
	"image"
	"image/draw"

	"github.com/nfnt/resize"
)

// ErrNoForeground alpha 通道里没有任何可见像素
var ErrNoForeground = errors.New("no visible pixels")

// ToNRGBA 转为 NRGBA，坐标原点归零
func ToNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Bounds().Min == (image.Point{}) {
		return nrgba
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// HasUsefulAlpha 只要存在非 255 的 alpha，就认为图片带透明信息
func HasUsefulAlpha(img *image.NRGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 255 {
			return true
		}
	}
	return false
}

// ResizeWithinMax 最长边超过 maxSize 时等比缩小，maxSize <= 0 表示不限制
func ResizeWithinMax(img image.Image, maxSize int) image.Image {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	longest := max(w, h)
	if maxSize <= 0 || longest <= maxSize {
		return img
	}

	scale := float64(maxSize) / float64(longest)
	newW := max(1, int(float64(w)*scale))
	newH := max(1, int(float64(h)*scale))

	return resize.Resize(uint(newW), uint(newH), img, resize.Lanczos3)
}

// AlphaBBox alpha > threshold*255 的像素的包围盒
func AlphaBBox(img *image.NRGBA, threshold float64) (image.Rectangle, error) {
	b := img.Bounds()
	th := uint8(threshold * 255)

	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X, b.Min.Y
	found := false

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.Pix[row+(x-b.Min.X)*4+3] <= th {
				continue
			}
			found = true
			minX, minY = min(minX, x), min(minY, y)
			maxX, maxY = max(maxX, x), max(maxY, y)
		}
	}

	if !found {
		return image.Rectangle{}, ErrNoForeground
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), nil
}

// TrimTransparent 裁掉四周完全透明的边，没有透明信息或全透明时原样返回
func TrimTransparent(img image.Image) image.Image {
	src := ToNRGBA(img)
	if !HasUsefulAlpha(src) {
		return src
	}
	bbox, err := AlphaBBox(src, 0)
	if err != nil || bbox == src.Bounds() {
		return src
	}

	dst := image.NewNRGBA(image.Rect(0, 0, bbox.Dx(), bbox.Dy()))
	draw.Draw(dst, dst.Bounds(), src, bbox.Min, draw.Src)
	return dst
}
