// Package clock предоставляет единственный источник текущего времени для движка.
package clock

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrUnavailable источник времени не может выдать значение
	ErrUnavailable = errors.New("time source unavailable")
	// ErrRegressed время ушло назад больше допустимого
	ErrRegressed = errors.New("time source regressed")
)

// TimeSource выдаёт авторитетное "сейчас". Ошибка означает, что доверять времени нельзя.
type TimeSource interface {
	Now() (time.Time, error)
}

// System системные часы в UTC
type System struct{}

func (System) Now() (time.Time, error) {
	return time.Now().UTC(), nil
}

// Guarded оборачивает источник и отказывает, если время откатилось назад больше чем на maxSkew.
// Небольшие откаты сглаживаются: возвращается последнее выданное значение.
type Guarded struct {
	src     TimeSource
	maxSkew time.Duration

	mu   sync.Mutex
	last time.Time
}

func NewGuarded(src TimeSource, maxSkew time.Duration) *Guarded {
	return &Guarded{src: src, maxSkew: maxSkew}
}

func (g *Guarded) Now() (time.Time, error) {
	now, err := g.src.Now()
	if err != nil {
		return time.Time{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if now.Before(g.last) {
		if g.last.Sub(now) > g.maxSkew {
			return time.Time{}, fmt.Errorf("%w: %s behind last reading", ErrRegressed, g.last.Sub(now))
		}
		return g.last, nil
	}
	g.last = now
	return now, nil
}
