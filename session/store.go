package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/segmentio/ksuid"
)

const DefaultSweepSpec = "@every 1m"

type entry struct {
	state    *State
	lastSeen time.Time
}

// Store 内存中的会话表，空闲超过 ttl 的会话由定时任务清理
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	factory  func() *State
	ttl      time.Duration
	now      func() time.Time
	cron     *cron.Cron
}

func NewStore(factory func() *State, ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create 新建会话，返回 id
func (s *Store) Create() (string, *State) {
	id := ksuid.New().String()
	st := s.factory()

	s.mu.Lock()
	s.sessions[id] = &entry{state: st, lastSeen: s.now()}
	s.mu.Unlock()

	slog.Debug("session created", "id", id)
	return id, st
}

// Get 取会话并刷新最近访问时间
func (s *Store) Get(id string) (*State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = s.now()
	return e.state, true
}

// Touch 刷新最近访问时间，会话不存在返回 false
func (s *Store) Touch(id string) bool {
	_, ok := s.Get(id)
	return ok
}

func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep 删除空闲超时的会话，处理中的会话不删。返回删除个数
func (s *Store) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) <= s.ttl || e.state.Processing() {
			continue
		}
		delete(s.sessions, id)
		n++
	}
	return n
}

// Start 按 cron 表达式定时清理
func (s *Store) Start(spec string) error {
	if spec == "" {
		spec = DefaultSweepSpec
	}
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if n := s.Sweep(s.now()); n > 0 {
			slog.Info("swept idle sessions", "removed", n, "remaining", s.Len())
		}
	})
	if err != nil {
		return err
	}
	s.cron = c
	c.Start()
	return nil
}

// Stop 停止定时任务并等待正在执行的清理结束
func (s *Store) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
