package monitor

import "time"

type Status struct {
	PostgreSQL bool      `json:"postgresql"`
	Redis      bool      `json:"redis"`
	Buffer     bool      `json:"buffer"`
	BufferSize int       `json:"buffer_size"`
	LastSweep  time.Time `json:"last_sweep,omitempty"`
	LastCheck  time.Time `json:"last_check"`
}

// Healthy reports whether the primary stores are reachable.
func (s Status) Healthy() bool {
	return s.PostgreSQL && s.Redis
}
