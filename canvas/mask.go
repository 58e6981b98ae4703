package canvas

import (
	"image"
	"image/color"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// MarkAlpha 选区像素的 alpha（约 0.4）
const MarkAlpha = 102

// MarkColor 选区颜色：半透明红
var MarkColor = color.NRGBA{R: 255, A: MarkAlpha}

// MaskBuffer 与底图同尺寸的选区蒙版，带有限撤销历史
//
// 像素要么透明，要么是红色且 alpha 不超过 MarkAlpha（抗锯齿边缘 alpha 更低）。
type MaskBuffer struct {
	img    *image.NRGBA
	hist   history
	marked bool
}

func NewMaskBuffer(width, height int) *MaskBuffer {
	return &MaskBuffer{img: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

// Resize 按新尺寸重建并清空，历史作废
func (m *MaskBuffer) Resize(width, height int) {
	m.img = image.NewNRGBA(image.Rect(0, 0, width, height))
	m.hist.reset()
	m.marked = false
}

func (m *MaskBuffer) Bounds() image.Rectangle {
	return m.img.Bounds()
}

// Image 只读视图，用于合成
func (m *MaskBuffer) Image() image.Image {
	return m.img
}

// HasContent 当前是否画过选区
func (m *MaskBuffer) HasContent() bool {
	return m.marked
}

// Depth 历史快照数
func (m *MaskBuffer) Depth() int {
	return m.hist.len()
}

// Clear 清空像素和历史
func (m *MaskBuffer) Clear() {
	clear(m.img.Pix)
	m.hist.reset()
	m.marked = false
}

// Snapshot 保存当前像素到历史，超过容量淘汰最旧的
func (m *MaskBuffer) Snapshot() {
	pix := make([]uint8, len(m.img.Pix))
	copy(pix, m.img.Pix)
	m.hist.push(snapshot{pix: pix, marked: m.marked})
}

// Undo 弹出最新快照；历史非空则恢复到新的栈顶，否则清空像素
func (m *MaskBuffer) Undo() {
	if _, ok := m.hist.pop(); !ok {
		return
	}
	if s, ok := m.hist.peek(); ok {
		copy(m.img.Pix, s.pix)
		m.marked = s.marked
		return
	}
	clear(m.img.Pix)
	m.marked = false
}

// MarkedCount alpha 非 0 的像素个数
func (m *MaskBuffer) MarkedCount() int {
	n := 0
	for i := 3; i < len(m.img.Pix); i += 4 {
		if m.img.Pix[i] != 0 {
			n++
		}
	}
	return n
}

// StrokeTo 画一段圆头圆角的线段，像素 alpha 取 max(原值, 覆盖率*MarkAlpha)，
// 重叠的笔画不会叠加变亮，已标记的区域也不会缩小。返回是否有像素变化。
func (m *MaskBuffer) StrokeTo(from, to Point, diameter float64) bool {
	if diameter <= 0 {
		return false
	}
	if from == to {
		// 零长度线段也要留下一个圆点
		to.X += 0.05
	}

	r := diameter/2 + 1
	box := image.Rect(
		int(math.Floor(math.Min(from.X, to.X)-r)),
		int(math.Floor(math.Min(from.Y, to.Y)-r)),
		int(math.Ceil(math.Max(from.X, to.X)+r)),
		int(math.Ceil(math.Max(from.Y, to.Y)+r)),
	).Intersect(m.img.Bounds())
	if box.Empty() {
		return false
	}

	cov := rasterizeSegment(box, from, to, diameter)

	changed := false
	for y := 0; y < box.Dy(); y++ {
		for x := 0; x < box.Dx(); x++ {
			c := cov.Pix[y*cov.Stride+x]
			if c == 0 {
				continue
			}
			a := uint8((uint32(c)*MarkAlpha + 127) / 255)
			i := m.img.PixOffset(box.Min.X+x, box.Min.Y+y)
			if a == 0 || m.img.Pix[i+3] >= a {
				continue
			}
			m.img.Pix[i+0] = MarkColor.R
			m.img.Pix[i+1] = MarkColor.G
			m.img.Pix[i+2] = MarkColor.B
			m.img.Pix[i+3] = a
			changed = true
		}
	}
	if changed {
		m.marked = true
	}
	return changed
}

// rasterizeSegment 在 box 大小的覆盖率图上描边，坐标先平移到 box 内
func rasterizeSegment(box image.Rectangle, from, to Point, diameter float64) *image.Alpha {
	w, h := box.Dx(), box.Dy()
	cov := image.NewAlpha(image.Rect(0, 0, w, h))

	scanner := rasterx.NewScannerGV(w, h, cov, cov.Bounds())
	stroker := rasterx.NewStroker(w, h, scanner)
	stroker.SetStroke(toFixed(diameter), toFixed(4),
		rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.Round)
	stroker.SetColor(color.Opaque)

	ox, oy := float64(box.Min.X), float64(box.Min.Y)
	stroker.Start(toFixedPoint(from.X-ox, from.Y-oy))
	stroker.Line(toFixedPoint(to.X-ox, to.Y-oy))
	stroker.Stop(false)
	stroker.Draw()
	stroker.Clear()

	return cov
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

func toFixedPoint(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: toFixed(x), Y: toFixed(y)}
}
