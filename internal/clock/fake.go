package clock

import (
	"sync"
	"time"
)

// Fake управляемые часы для тестов
type Fake struct {
	mu   sync.Mutex
	now  time.Time
	fail error
}

func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
}

func (f *Fake) Now() (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return time.Time{}, f.fail
	}
	return f.now, nil
}

func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// Fail заставляет Now возвращать err; nil возвращает часы в рабочее состояние
func (f *Fake) Fail(err error) {
	f.mu.Lock()
	f.fail = err
	f.mu.Unlock()
}
