package scan

import (
	"fmt"
	"sync"
	"time"
)

type State string

const (
	StateIdle      State = "idle"
	StateScanning  State = "scanning"
	StateDecoding  State = "decoding"
	StateFormReady State = "form_ready"
	StateRejected  State = "rejected"
)

// DefaultCooldown keeps a rejected barcode still in frame from being
// re-decoded immediately.
const DefaultCooldown = 2 * time.Second

// Session drives one scan screen: Idle -> Scanning -> Decoding ->
// {FormReady | Rejected}. Rejected re-arms to Scanning once the
// cooldown elapses; FormReady holds until the user submits, cancels or
// deletes, each of which returns to Idle and releases the camera.
type Session struct {
	mu         sync.Mutex
	state      State
	cooldown   time.Duration
	rejectedAt time.Time
	resolution *Resolution
	cache      RecordLookup

	// releaseCamera must run exactly once on every exit path so the
	// physical camera is never left locked.
	releaseCamera func()
	released      bool

	now func() time.Time
}

func NewSession(cache RecordLookup, releaseCamera func()) *Session {
	return &Session{
		state:         StateIdle,
		cooldown:      DefaultCooldown,
		cache:         cache,
		releaseCamera: releaseCamera,
		now:           time.Now,
	}
}

// Start moves an idle session to Scanning (the scan screen mounted and
// the camera was acquired).
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current() != StateIdle {
		return fmt.Errorf("cannot start scanning from state %s", s.state)
	}
	s.state = StateScanning
	s.released = false
	return nil
}

// HandleScan consumes one decoded payload. An unrecognized payload
// moves to Rejected and keeps the camera session alive so the user can
// re-scan; a recognized one resolves to FormReady.
func (s *Session) HandleScan(text, symbology string) (*Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.current() {
	case StateScanning:
	case StateRejected:
		// Still cooling down; ignore the frame.
		return nil, nil
	default:
		return nil, fmt.Errorf("cannot decode payload in state %s", s.state)
	}

	s.state = StateDecoding

	candidate, err := ParsePayload(text, symbology)
	if err != nil {
		s.state = StateRejected
		s.rejectedAt = s.now()
		return nil, err
	}

	resolution := Resolve(candidate, s.cache)
	s.resolution = &resolution
	s.state = StateFormReady
	return &resolution, nil
}

// Resolution returns the pending form prefill, if any.
func (s *Session) Resolution() *Resolution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolution
}

// Submit ends the session after the form was saved.
func (s *Session) Submit() {
	s.finish()
}

// Cancel ends the session without saving.
func (s *Session) Cancel() {
	s.finish()
}

// Delete ends the session after the existing record was removed.
func (s *Session) Delete() {
	s.finish()
}

// Close releases the camera regardless of state. Safe to call more
// than once and on every exit path, including errors.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.release()
}

// State reports the current state, re-arming Rejected to Scanning once
// the cooldown has elapsed.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

func (s *Session) current() State {
	if s.state == StateRejected && s.now().Sub(s.rejectedAt) >= s.cooldown {
		s.state = StateScanning
	}
	return s.state
}

func (s *Session) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateIdle
	s.resolution = nil
	s.release()
}

func (s *Session) release() {
	if s.released {
		return
	}
	s.released = true
	if s.releaseCamera != nil {
		s.releaseCamera()
	}
}
