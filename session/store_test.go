package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(ttl time.Duration) (*Store, *time.Time) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(func() *State { return NewState(&fakeEditor{}, Options{}) }, ttl)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestStore_CreateGetDelete(t *testing.T) {
	s, _ := newTestStore(time.Minute)

	id, st := s.Create()
	require.NotEmpty(t, id)
	require.NotNil(t, st)
	assert.Len(t, id, 27)

	got, ok := s.Get(id)
	require.True(t, ok)
	assert.Same(t, st, got)

	other, _ := s.Create()
	assert.NotEqual(t, id, other)
	assert.Equal(t, 2, s.Len())

	assert.True(t, s.Delete(id))
	assert.False(t, s.Delete(id))
	_, ok = s.Get(id)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestStore_Sweep(t *testing.T) {
	s, now := newTestStore(10 * time.Minute)

	idle, _ := s.Create()
	*now = now.Add(8 * time.Minute)
	active, _ := s.Create()

	busyID, busy := s.Create()
	busy.processing = true

	*now = now.Add(5 * time.Minute)
	_, ok := s.Get(active)
	require.True(t, ok)

	removed := s.Sweep(now.Add(6 * time.Minute))
	assert.Equal(t, 1, removed)

	_, ok = s.Get(idle)
	assert.False(t, ok)
	_, ok = s.Get(active)
	assert.True(t, ok)
	_, ok = s.Get(busyID)
	assert.True(t, ok)
}

func TestStore_TouchKeepsSessionAlive(t *testing.T) {
	s, now := newTestStore(10 * time.Minute)
	id, _ := s.Create()

	for i := 0; i < 3; i++ {
		*now = now.Add(8 * time.Minute)
		require.True(t, s.Touch(id))
	}
	assert.Zero(t, s.Sweep(now.Add(9*time.Minute)))
	assert.Equal(t, 1, s.Sweep(now.Add(11*time.Minute)))
	assert.False(t, s.Touch(id))
}

func TestStore_SweepDisabled(t *testing.T) {
	s, now := newTestStore(0)
	s.Create()
	assert.Zero(t, s.Sweep(now.Add(24*time.Hour)))
	assert.Equal(t, 1, s.Len())
}

func TestStore_StartStop(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	assert.Error(t, s.Start("not a cron spec"))

	require.NoError(t, s.Start("@every 1h"))
	s.Stop()

	// 未启动时 Stop 不阻塞
	NewStore(nil, time.Minute).Stop()
}
