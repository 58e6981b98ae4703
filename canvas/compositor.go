package canvas

import (
	"image"
	"math"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

const (
	MinLogoScale     = 5
	MaxLogoScale     = 80
	DefaultLogoScale = 20
)

// RectF 浮点矩形，X/Y 为左上角
type RectF struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Center 矩形中心
func (r RectF) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// LogoPlacement logo 的位置和大小，均为底图尺寸的百分比
//
// X/Y 是 logo 中心，Scale 是 logo 宽度占底图宽度的比例，高度按 logo 原始宽高比推出。
type LogoPlacement struct {
	Source image.Image
	X      float64
	Y      float64
	Scale  float64
}

// NewLogoPlacement 默认居中，宽度 20%
func NewLogoPlacement(src image.Image) *LogoPlacement {
	return &LogoPlacement{Source: src, X: 50, Y: 50, Scale: DefaultLogoScale}
}

// Set 更新位置和大小，超出范围的值会被截断
func (p *LogoPlacement) Set(x, y, scale float64) {
	p.X = min(max(x, 0), 100)
	p.Y = min(max(y, 0), 100)
	p.Scale = min(max(scale, MinLogoScale), MaxLogoScale)
}

// Rect logo 在底图原生坐标下的绘制区域
func (p *LogoPlacement) Rect(baseW, baseH int) RectF {
	lb := p.Source.Bounds()
	aspect := float64(lb.Dx()) / float64(lb.Dy())

	w := float64(baseW) * p.Scale / 100
	h := w / aspect
	return RectF{
		X: float64(baseW)*p.X/100 - w/2,
		Y: float64(baseH)*p.Y/100 - h/2,
		W: w,
		H: h,
	}
}

// Render 合成显示层：底图按原生尺寸绘制，有 logo 时叠在上面。
// 相同输入得到相同输出
func Render(base image.Image, logo *LogoPlacement) *image.RGBA {
	b := base.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), base, b.Min, draw.Src)

	if logo == nil || logo.Source == nil || logo.Source.Bounds().Empty() {
		return dst
	}

	r := logo.Rect(b.Dx(), b.Dy())
	lw, lh := int(math.Round(r.W)), int(math.Round(r.H))
	if lw <= 0 || lh <= 0 {
		return dst
	}
	scaled := resize.Resize(uint(lw), uint(lh), logo.Source, resize.Lanczos3)

	at := image.Pt(int(math.Round(r.X)), int(math.Round(r.Y)))
	target := image.Rectangle{Min: at, Max: at.Add(image.Pt(lw, lh))}
	draw.Draw(dst, target, scaled, scaled.Bounds().Min, draw.Over)
	return dst
}

// Overlay 在显示层上叠加蒙版，得到新图，不改动输入
func Overlay(display image.Image, mask image.Image) *image.RGBA {
	b := display.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), display, b.Min, draw.Src)
	if mask != nil {
		draw.Draw(dst, dst.Bounds(), mask, mask.Bounds().Min, draw.Over)
	}
	return dst
}
