// Package canvas 绘制面、选区蒙版与图层合成
package canvas

import "errors"

// ErrNotMounted 绘制面没有显示出来（显示尺寸为 0），无法换算坐标
var ErrNotMounted = errors.New("surface is not mounted")

// Point 浮点坐标
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect 绘制面在屏幕上的显示区域（CSS 像素）
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Touch 触摸点
type Touch struct {
	ClientX float64 `json:"clientX"`
	ClientY float64 `json:"clientY"`
}

// PointerEvent 鼠标或触摸事件，触摸事件取第一个触点
type PointerEvent struct {
	ClientX float64 `json:"clientX"`
	ClientY float64 `json:"clientY"`
	Touches []Touch `json:"touches,omitempty"`
}

// ClientPoint 事件在屏幕坐标系下的位置
func (e PointerEvent) ClientPoint() Point {
	if len(e.Touches) > 0 {
		return Point{X: e.Touches[0].ClientX, Y: e.Touches[0].ClientY}
	}
	return Point{X: e.ClientX, Y: e.ClientY}
}

// MapToNative 屏幕坐标 -> 绘制面原生像素坐标，X/Y 两个方向独立缩放
func MapToNative(p Point, view Rect, nativeW, nativeH int) (Point, error) {
	if view.Width <= 0 || view.Height <= 0 {
		return Point{}, ErrNotMounted
	}
	scaleX := float64(nativeW) / view.Width
	scaleY := float64(nativeH) / view.Height
	return Point{
		X: (p.X - view.Left) * scaleX,
		Y: (p.Y - view.Top) * scaleY,
	}, nil
}
