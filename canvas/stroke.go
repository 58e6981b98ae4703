package canvas

const (
	DefaultBrush = 30
	MinBrush     = 10
	MaxBrush     = 100
)

// StrokeState 笔画状态机的状态
type StrokeState int

const (
	StrokeIdle StrokeState = iota
	StrokeDrawing
)

func (s StrokeState) String() string {
	if s == StrokeDrawing {
		return "drawing"
	}
	return "idle"
}

// ClampBrush 笔刷直径限制在 [MinBrush, MaxBrush]
func ClampBrush(d float64) float64 {
	return min(max(d, MinBrush), MaxBrush)
}

// StrokeEngine 把指针事件变成蒙版上的笔画
//
// 只有激活（擦除模式）时才响应；按下时先存一次快照，移动时逐段绘制。
type StrokeEngine struct {
	mask   *MaskBuffer
	brush  float64
	active bool
	state  StrokeState
	last   Point
}

func NewStrokeEngine(mask *MaskBuffer) *StrokeEngine {
	return &StrokeEngine{mask: mask, brush: DefaultBrush}
}

func (e *StrokeEngine) State() StrokeState {
	return e.state
}

func (e *StrokeEngine) Brush() float64 {
	return e.brush
}

// SetBrush 设置笔刷直径（原生像素），超出范围会被截断
func (e *StrokeEngine) SetBrush(d float64) {
	e.brush = ClampBrush(d)
}

// SetActive 切换是否处于擦除模式，退出时结束当前笔画
func (e *StrokeEngine) SetActive(active bool) {
	e.active = active
	if !active {
		e.state = StrokeIdle
	}
}

func (e *StrokeEngine) Active() bool {
	return e.active
}

// Down 按下：存快照，开始新路径。返回事件是否被消费
func (e *StrokeEngine) Down(ev PointerEvent, view Rect) (bool, error) {
	if !e.active || e.state == StrokeDrawing {
		return false, nil
	}
	p, err := e.native(ev, view)
	if err != nil {
		return false, err
	}
	e.mask.Snapshot()
	e.last = p
	e.state = StrokeDrawing
	return true, nil
}

// Move 移动：把路径延伸到新位置并画到蒙版上。
// 返回 true 时调用方应阻止触摸的默认滚动
func (e *StrokeEngine) Move(ev PointerEvent, view Rect) (bool, error) {
	if !e.active || e.state != StrokeDrawing {
		return false, nil
	}
	p, err := e.native(ev, view)
	if err != nil {
		return false, err
	}
	e.mask.StrokeTo(e.last, p, e.brush)
	e.last = p
	return true, nil
}

// Up 抬起或离开绘制面：结束路径
func (e *StrokeEngine) Up() {
	e.state = StrokeIdle
}

// Cancel 放弃进行中的笔画
func (e *StrokeEngine) Cancel() {
	e.state = StrokeIdle
	e.last = Point{}
}

func (e *StrokeEngine) native(ev PointerEvent, view Rect) (Point, error) {
	b := e.mask.Bounds()
	return MapToNative(ev.ClientPoint(), view, b.Dx(), b.Dy())
}
