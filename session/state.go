// Package session 一次编辑会话的全部状态
package session

import (
	"fmt"
	"image"
	"io"
	"strings"
	"sync"

	"github.com/chaos-io/maskedit/canvas"
	"github.com/chaos-io/maskedit/editsvc"
	"github.com/chaos-io/maskedit/export"
	"github.com/chaos-io/maskedit/util"
)

// Options 会话参数
type Options struct {
	MaxImageSide int    // 上传图片最长边上限，0 不限制
	Product      string // 导出文件名前缀
}

// State 会话状态：底图、蒙版、logo、模式和处理中标记
//
// 所有字段由 mu 保护；指针事件和蒙版操作同步完成，只有调用外部服务时释放锁。
type State struct {
	mu     sync.Mutex
	editor editsvc.Editor
	opts   Options

	original image.Image // 最初上传的图，用于重置
	surface  image.Image // 当前底图
	display  *image.RGBA // 底图 + logo
	mask     *canvas.MaskBuffer
	stroke   *canvas.StrokeEngine
	logo     *canvas.LogoPlacement

	mode       Mode
	prompt     string
	preset     string
	processing bool
}

func NewState(editor editsvc.Editor, opts Options) *State {
	if opts.Product == "" {
		opts.Product = "maskedit"
	}
	mask := canvas.NewMaskBuffer(0, 0)
	return &State{
		editor: editor,
		opts:   opts,
		mask:   mask,
		stroke: canvas.NewStrokeEngine(mask),
		mode:   ModeIdle,
	}
}

// LogoInfo logo 的位置参数和计算出的绘制区域
type LogoInfo struct {
	X     float64      `json:"x"`
	Y     float64      `json:"y"`
	Scale float64      `json:"scale"`
	Rect  canvas.RectF `json:"rect"`
}

// Info 会话的只读快照
type Info struct {
	Mode         Mode      `json:"mode"`
	Processing   bool      `json:"processing"`
	HasImage     bool      `json:"hasImage"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	Brush        float64   `json:"brush"`
	Stroke       string    `json:"stroke"`
	HasMask      bool      `json:"hasMask"`
	HistoryDepth int       `json:"historyDepth"`
	Prompt       string    `json:"prompt,omitempty"`
	Preset       string    `json:"preset,omitempty"`
	Logo         *LogoInfo `json:"logo,omitempty"`
}

func (s *State) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := Info{
		Mode:         s.mode,
		Processing:   s.processing,
		HasImage:     s.surface != nil,
		Brush:        s.stroke.Brush(),
		Stroke:       s.stroke.State().String(),
		HasMask:      s.mask.HasContent(),
		HistoryDepth: s.mask.Depth(),
		Prompt:       s.prompt,
		Preset:       s.preset,
	}
	if s.surface != nil {
		b := s.surface.Bounds()
		info.Width, info.Height = b.Dx(), b.Dy()
		if s.logo != nil {
			info.Logo = &LogoInfo{
				X:     s.logo.X,
				Y:     s.logo.Y,
				Scale: s.logo.Scale,
				Rect:  s.logo.Rect(b.Dx(), b.Dy()),
			}
		}
	}
	return info
}

func (s *State) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *State) Processing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

// LoadImage 加载新图片，重置蒙版、logo、模式和提示词
func (s *State) LoadImage(data []byte) error {
	img, err := util.DecodeImage(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInputMissing, err)
	}
	img = util.ResizeWithinMax(img, s.opts.MaxImageSide)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processing {
		return ErrBusy
	}

	s.original = img
	s.replaceSurface(img)
	return nil
}

// ResetImage 回到最初上传的图片
func (s *State) ResetImage() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processing {
		return ErrBusy
	}
	if s.original == nil {
		return ErrNoImage
	}

	s.replaceSurface(s.original)
	return nil
}

// replaceSurface 整体替换底图，依赖它的状态一并复位。调用方持有锁
func (s *State) replaceSurface(img image.Image) {
	s.surface = img
	b := img.Bounds()
	s.stroke.Cancel()
	s.mask.Resize(b.Dx(), b.Dy())
	s.logo = nil
	s.prompt, s.preset = "", ""
	s.setMode(ModeIdle)
	s.redraw()
}

// redraw 重新合成显示层。调用方持有锁
func (s *State) redraw() {
	if s.surface == nil {
		s.display = nil
		return
	}
	s.display = canvas.Render(s.surface, s.logo)
}

// editable 处理中拒绝一切会被提交结果覆盖的修改。调用方持有锁
func (s *State) editable() error {
	if s.processing {
		return ErrBusy
	}
	return nil
}

func (s *State) setMode(m Mode) {
	s.mode = m
	s.stroke.SetActive(m == ModeErase)
}

// SetMode 切换工具；离开擦除模式会结束进行中的笔画
func (s *State) SetMode(m Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	if m != ModeIdle && s.surface == nil {
		return ErrNoImage
	}
	s.setMode(m)
	return nil
}

// SetBrush 设置笔刷直径，返回截断后的值
func (s *State) SetBrush(d float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stroke.SetBrush(d)
	return s.stroke.Brush()
}

// PointerDown 返回事件是否被笔画引擎消费
func (s *State) PointerDown(ev canvas.PointerEvent, view canvas.Rect) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return false, err
	}
	if s.surface == nil {
		return false, nil
	}
	return s.stroke.Down(ev, view)
}

// PointerMove 返回 true 时调用方应阻止默认滚动
func (s *State) PointerMove(ev canvas.PointerEvent, view canvas.Rect) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return false, err
	}
	if s.surface == nil {
		return false, nil
	}
	return s.stroke.Move(ev, view)
}

func (s *State) PointerUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stroke.Up()
}

// PointerLeave 指针离开绘制面，等同抬起
func (s *State) PointerLeave() {
	s.PointerUp()
}

func (s *State) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	s.stroke.Cancel()
	s.mask.Undo()
	return nil
}

func (s *State) ClearMask() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	s.stroke.Cancel()
	s.mask.Clear()
	return nil
}

// SetLogo 上传 logo，透明边会被裁掉，位置恢复默认
func (s *State) SetLogo(data []byte) error {
	img, err := util.DecodeImage(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInputMissing, err)
	}
	img = util.TrimTransparent(img)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	if s.surface == nil {
		return ErrNoImage
	}
	s.logo = canvas.NewLogoPlacement(img)
	s.redraw()
	return nil
}

// PlaceLogo 调整 logo 位置和大小
func (s *State) PlaceLogo(x, y, scale float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	if s.logo == nil {
		return fmt.Errorf("%w: no logo uploaded", ErrInputMissing)
	}
	s.logo.Set(x, y, scale)
	s.redraw()
	return nil
}

func (s *State) RemoveLogo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	if s.logo == nil {
		return nil
	}
	s.logo = nil
	s.redraw()
	return nil
}

// SetPrompt 自定义背景描述，会清掉已选的预设
func (s *State) SetPrompt(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	s.prompt = strings.TrimSpace(text)
	s.preset = ""
	return nil
}

// SelectPreset 选择背景预设（颜色或场景）
func (s *State) SelectPreset(id string) error {
	p, ok := editsvc.LookupPreset(id)
	if !ok {
		return fmt.Errorf("%w: unknown preset %q", ErrInputMissing, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	s.prompt = p.Description
	s.preset = p.ID
	return nil
}

// Preview 屏幕预览：擦除模式下叠加蒙版
func (s *State) Preview() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.display == nil {
		return nil, ErrNoImage
	}
	if s.mode == ModeErase {
		return canvas.Overlay(s.display, s.mask.Image()), nil
	}
	return s.display, nil
}

// Display 当前显示层（底图 + logo），只读
func (s *State) Display() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.display == nil {
		return nil, ErrNoImage
	}
	return s.display, nil
}

// FileName 导出的文件名
func (s *State) FileName() string {
	return s.opts.Product + "-edit.png"
}

// Download 导出当前显示层为 PNG
func (s *State) Download() ([]byte, string, error) {
	display, err := s.Display()
	if err != nil {
		return nil, "", err
	}
	data, err := canvas.EncodePNG(display)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return data, s.FileName(), nil
}

// PDF 导出当前显示层为单页 PDF
func (s *State) PDF(w io.Writer) error {
	display, err := s.Display()
	if err != nil {
		return err
	}
	if err := export.PDF(display, w); err != nil {
		return fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return nil
}
