package clock

import (
	"sync"
	"time"
)

// Clock devuelve la hora actual. Los sweeps lo reciben inyectado para que los tests
// puedan ubicar "now" en cualquier punto respecto a la ventana de un recordatorio.
type Clock interface {
	Now() time.Time
}

// System es el reloj real, opcionalmente fijado a una zona horaria.
type System struct {
	Location *time.Location
}

func (s System) Now() time.Time {
	if s.Location == nil {
		return time.Now()
	}
	return time.Now().In(s.Location)
}

// Fixed es un reloj manual para tests. Seguro para uso concurrente.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// Func adapta una función (p.ej. time.Now) a Clock.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }
