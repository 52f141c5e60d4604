package storage

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Memory is an in-process implementation of the Client port. It backs unit
// tests for the stores and the full defense pipeline without a running
// redis. TTLs are honored lazily on read.
type Memory struct {
	mu      sync.Mutex
	values  map[string]string
	expiry  map[string]time.Time
	sets    map[string]map[string]struct{}
	lists   map[string][]string
	failing bool

	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		values: make(map[string]string),
		expiry: make(map[string]time.Time),
		sets:   make(map[string]map[string]struct{}),
		lists:  make(map[string][]string),
		now:    time.Now,
	}
}

// Fail flips the store into an unreachable state so tests can exercise
// fail-closed behavior.
func (m *Memory) Fail(failing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing = failing
}

// SetClock overrides the time source, used by tests that step through TTL
// windows.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

var errUnavailable = &UnavailableError{}

type UnavailableError struct{}

func (e *UnavailableError) Error() string { return "storage unavailable" }

func (m *Memory) expired(key string) bool {
	if deadline, ok := m.expiry[key]; ok && m.now().After(deadline) {
		delete(m.values, key)
		delete(m.sets, key)
		delete(m.lists, key)
		delete(m.expiry, key)
		return true
	}
	return false
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return "", errUnavailable
	}
	if m.expired(key) {
		return "", ErrNotFound
	}
	value, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *Memory) Set(_ context.Context, key string, value string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errUnavailable
	}
	m.values[key] = value
	if expiration > 0 {
		m.expiry[key] = m.now().Add(expiration)
	} else {
		delete(m.expiry, key)
	}
	return nil
}

func (m *Memory) SetNX(_ context.Context, key string, value string, expiration time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return false, errUnavailable
	}
	if !m.expired(key) {
		if _, ok := m.values[key]; ok {
			return false, nil
		}
	}
	m.values[key] = value
	if expiration > 0 {
		m.expiry[key] = m.now().Add(expiration)
	}
	return true, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errUnavailable
	}
	delete(m.values, key)
	delete(m.sets, key)
	delete(m.lists, key)
	delete(m.expiry, key)
	return nil
}

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return false, errUnavailable
	}
	if m.expired(key) {
		return false, nil
	}
	if _, ok := m.values[key]; ok {
		return true, nil
	}
	if _, ok := m.sets[key]; ok {
		return true, nil
	}
	if _, ok := m.lists[key]; ok {
		return true, nil
	}
	return false, nil
}

func (m *Memory) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return 0, errUnavailable
	}
	m.expired(key)
	n, _ := strconv.ParseInt(m.values[key], 10, 64)
	n++
	m.values[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (m *Memory) Expire(_ context.Context, key string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errUnavailable
	}
	m.expiry[key] = m.now().Add(expiration)
	return nil
}

func (m *Memory) SAdd(_ context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errUnavailable
	}
	m.expired(key)
	set, ok := m.sets[key]
	if !ok {
		set = make(map[string]struct{})
		m.sets[key] = set
	}
	for _, member := range members {
		set[member] = struct{}{}
	}
	return nil
}

func (m *Memory) SRem(_ context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errUnavailable
	}
	if set, ok := m.sets[key]; ok {
		for _, member := range members {
			delete(set, member)
		}
	}
	return nil
}

func (m *Memory) SMembers(_ context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, errUnavailable
	}
	if m.expired(key) {
		return nil, nil
	}
	members := make([]string, 0, len(m.sets[key]))
	for member := range m.sets[key] {
		members = append(members, member)
	}
	return members, nil
}

func (m *Memory) LPush(_ context.Context, key string, values ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errUnavailable
	}
	m.expired(key)
	for _, value := range values {
		m.lists[key] = append([]string{value}, m.lists[key]...)
	}
	return nil
}

func (m *Memory) LTrim(_ context.Context, key string, start, stop int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errUnavailable
	}
	list := m.lists[key]
	if len(list) == 0 {
		return nil
	}
	if stop < 0 {
		stop = int64(len(list)) + stop
	}
	if start < 0 {
		start = int64(len(list)) + start
	}
	if start < 0 {
		start = 0
	}
	if stop >= int64(len(list)) {
		stop = int64(len(list)) - 1
	}
	if start > stop {
		m.lists[key] = nil
		return nil
	}
	m.lists[key] = list[start : stop+1]
	return nil
}

func (m *Memory) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, errUnavailable
	}
	if m.expired(key) {
		return nil, nil
	}
	list := m.lists[key]
	if len(list) == 0 {
		return nil, nil
	}
	if stop < 0 {
		stop = int64(len(list)) + stop
	}
	if start < 0 {
		start = int64(len(list)) + start
	}
	if start < 0 {
		start = 0
	}
	if stop >= int64(len(list)) {
		stop = int64(len(list)) - 1
	}
	if start > stop {
		return nil, nil
	}
	out := make([]string, stop-start+1)
	copy(out, list[start:stop+1])
	return out, nil
}

func (m *Memory) Ping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errUnavailable
	}
	return nil
}
