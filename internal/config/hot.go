package config

import "sync/atomic"

// Hot hands out the live configuration. A reload publishes a whole new
// snapshot through Store, so readers never observe a half-written Config.
type Hot struct {
	current atomic.Pointer[Config]
}

func NewHot(cfg *Config) *Hot {
	h := &Hot{}
	h.current.Store(cfg)
	return h
}

// Load returns the current snapshot. Callers must not mutate it.
func (h *Hot) Load() *Config {
	return h.current.Load()
}

// Store publishes a new snapshot for subsequent Load calls.
func (h *Hot) Store(cfg *Config) {
	h.current.Store(cfg)
}
