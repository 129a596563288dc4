// Package simulator implements the behavior-configurable stand-in for the
// external data provider. It receives the redirect that the bridge issues
// when a citizen is sent off to the provider, and calls back to the
// bridge's return endpoint with a result shaped by the configured behavior
// mode.
package simulator

import (
	"sync"
	"time"
)

// Behavior selects how the simulator answers the next redirect invocation.
type Behavior string

const (
	BehaviorSuccess          Behavior = "success"
	BehaviorError            Behavior = "error"
	BehaviorTimeout          Behavior = "timeout"
	BehaviorNoRecords        Behavior = "no_records"
	BehaviorCancel           Behavior = "cancel"
	BehaviorInvalidGzip      Behavior = "invalid_gzip"
	BehaviorInvalidXML       Behavior = "invalid_xml"
	BehaviorIdentityMismatch Behavior = "identity_mismatch"
)

// AllBehaviors lists every accepted mode, in the order used for error
// messages from the control API.
func AllBehaviors() []Behavior {
	return []Behavior{
		BehaviorSuccess,
		BehaviorError,
		BehaviorTimeout,
		BehaviorNoRecords,
		BehaviorCancel,
		BehaviorInvalidGzip,
		BehaviorInvalidXML,
		BehaviorIdentityMismatch,
	}
}

// ParseBehavior validates a mode string from the control API. Unknown
// values are rejected, not silently ignored.
func ParseBehavior(s string) (Behavior, bool) {
	for _, b := range AllBehaviors() {
		if string(b) == s {
			return b, true
		}
	}
	return "", false
}

// BehaviorConfig is the pair of settings read on every redirect invocation.
type BehaviorConfig struct {
	Behavior      Behavior
	ResponseDelay time.Duration
}

// BehaviorStore holds the process-wide default config plus optional
// per-session overrides, so that a shared simulator instance can serve
// overlapping scenario runs without them clobbering each other.
type BehaviorStore struct {
	mu       sync.Mutex
	global   BehaviorConfig
	sessions map[string]BehaviorConfig
}

func NewBehaviorStore() *BehaviorStore {
	return &BehaviorStore{
		global:   BehaviorConfig{Behavior: BehaviorSuccess},
		sessions: make(map[string]BehaviorConfig),
	}
}

// Set replaces the process-wide default and returns the now-current config.
func (s *BehaviorStore) Set(cfg BehaviorConfig) BehaviorConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.global = cfg
	return s.global
}

// SetForSession overrides the config for one session identifier only.
func (s *BehaviorStore) SetForSession(sessionID string, cfg BehaviorConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = cfg
}

// Get returns the config for a session: its override if one was set,
// otherwise the process-wide default. Session overrides are consumed on
// first read so stale entries cannot affect a later run that happens to
// reuse an identifier.
func (s *BehaviorStore) Get(sessionID string) BehaviorConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg, ok := s.sessions[sessionID]; ok {
		delete(s.sessions, sessionID)
		return cfg
	}
	return s.global
}

// Current returns the process-wide default without consuming anything.
func (s *BehaviorStore) Current() BehaviorConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.global
}
