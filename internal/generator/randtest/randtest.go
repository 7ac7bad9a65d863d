// Package randtest provides a scripted generator.Random for deterministic tests.
package randtest

import "sync"

// Scripted replays queued draws in order. Once a queue runs dry it returns
// zero values, which map to the first entry of every table.
type Scripted struct {
	mu     sync.Mutex
	ints   []int
	floats []float64
}

func New() *Scripted {
	return &Scripted{}
}

// Ints queues IntN results. Values are reduced modulo n at draw time.
func (s *Scripted) Ints(v ...int) *Scripted {
	s.mu.Lock()
	s.ints = append(s.ints, v...)
	s.mu.Unlock()
	return s
}

func (s *Scripted) Floats(v ...float64) *Scripted {
	s.mu.Lock()
	s.floats = append(s.floats, v...)
	s.mu.Unlock()
	return s
}

func (s *Scripted) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *Scripted) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

// Alert queues the IntN draws for one generated alert, in the order the
// generator consumes them: severity, location, x offset, y offset, description.
func (s *Scripted) Alert(severity, location, x, y, description int) *Scripted {
	return s.Ints(severity, location, x, y, description)
}
