package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 显示尺寸是原生尺寸的一半
var halfView = Rect{Left: 100, Top: 50, Width: 100, Height: 50}

func at(x, y float64) PointerEvent {
	return PointerEvent{ClientX: x, ClientY: y}
}

func TestStrokeEngine_Lifecycle(t *testing.T) {
	mask := NewMaskBuffer(200, 100)
	e := NewStrokeEngine(mask)

	ok, err := e.Down(at(110, 60), halfView)
	require.NoError(t, err)
	assert.False(t, ok, "未激活时忽略按下")
	assert.Zero(t, mask.Depth())

	e.SetActive(true)
	ok, err = e.Down(at(110, 60), halfView)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, StrokeDrawing, e.State())
	assert.Equal(t, 1, mask.Depth())
	assert.False(t, mask.HasContent())

	ok, err = e.Move(at(150, 60), halfView)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mask.HasContent())
	// 屏幕 (130,60) 对应原生 (60,20)
	assert.NotZero(t, alphaAt(mask, 60, 20))

	e.Up()
	assert.Equal(t, StrokeIdle, e.State())

	count := mask.MarkedCount()
	ok, err = e.Move(at(110, 90), halfView)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, count, mask.MarkedCount())
}

func TestStrokeEngine_DownUpWithoutMove(t *testing.T) {
	mask := NewMaskBuffer(200, 100)
	e := NewStrokeEngine(mask)
	e.SetActive(true)

	_, err := e.Down(at(120, 70), halfView)
	require.NoError(t, err)
	e.Up()

	assert.Equal(t, 1, mask.Depth())
	assert.Zero(t, mask.MarkedCount())
}

func TestStrokeEngine_DeactivateEndsStroke(t *testing.T) {
	mask := NewMaskBuffer(200, 100)
	e := NewStrokeEngine(mask)
	e.SetActive(true)

	_, err := e.Down(at(120, 70), halfView)
	require.NoError(t, err)
	e.SetActive(false)
	assert.Equal(t, StrokeIdle, e.State())

	ok, err := e.Move(at(150, 80), halfView)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, mask.MarkedCount())
}

func TestStrokeEngine_TouchUsesFirstPoint(t *testing.T) {
	mask := NewMaskBuffer(200, 100)
	e := NewStrokeEngine(mask)
	e.SetActive(true)

	down := PointerEvent{Touches: []Touch{{ClientX: 110, ClientY: 75}}}
	move := PointerEvent{Touches: []Touch{{ClientX: 190, ClientY: 75}, {ClientX: 0, ClientY: 0}}}

	_, err := e.Down(down, halfView)
	require.NoError(t, err)
	ok, err := e.Move(move, halfView)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NotZero(t, alphaAt(mask, 100, 50))
	assert.Zero(t, alphaAt(mask, 100, 5))
}

func TestStrokeEngine_NotMounted(t *testing.T) {
	e := NewStrokeEngine(NewMaskBuffer(10, 10))
	e.SetActive(true)

	_, err := e.Down(at(1, 1), Rect{})
	assert.ErrorIs(t, err, ErrNotMounted)
	assert.Equal(t, StrokeIdle, e.State())
}

func TestStrokeEngine_SetBrush(t *testing.T) {
	e := NewStrokeEngine(NewMaskBuffer(10, 10))
	assert.Equal(t, float64(DefaultBrush), e.Brush())

	e.SetBrush(5)
	assert.Equal(t, float64(MinBrush), e.Brush())
	e.SetBrush(500)
	assert.Equal(t, float64(MaxBrush), e.Brush())
	e.SetBrush(42)
	assert.Equal(t, 42.0, e.Brush())
}
