package location

import (
	"context"
	"sync"

	"github.com/mymed-inc/mymed-api/schema"
)

// PushSource is a Source fed from outside, by the mobile client reporting
// its permission and coordinate on each request
type PushSource struct {
	sync.Mutex

	status  PermissionStatus
	decided chan struct{}
	running bool
	updates chan schema.Location
}

func NewPushSource() *PushSource {
	return &PushSource{
		decided: make(chan struct{}),
		updates: make(chan schema.Location, 1),
	}
}

func (s *PushSource) Authorization() PermissionStatus {
	s.Lock()
	defer s.Unlock()
	return s.status
}

// RequestAuthorization waits for the client to report a decision
func (s *PushSource) RequestAuthorization(ctx context.Context) (PermissionStatus, error) {
	s.Lock()
	status, decided := s.status, s.decided
	s.Unlock()

	if status != NotDetermined {
		return status, nil
	}

	select {
	case <-decided:
		return s.Authorization(), nil
	case <-ctx.Done():
		return NotDetermined, ctx.Err()
	}
}

// SetPermission records the client reported status. NotDetermined is
// ignored once a decision has been made.
func (s *PushSource) SetPermission(status PermissionStatus) {
	s.Lock()
	defer s.Unlock()

	if status == NotDetermined || status == s.status {
		return
	}

	first := s.status == NotDetermined
	s.status = status
	if first {
		close(s.decided)
	}
}

// Push delivers a coordinate while the source is started and authorized.
// It reports whether the coordinate was accepted.
func (s *PushSource) Push(loc schema.Location) bool {
	s.Lock()
	defer s.Unlock()

	if !s.running || s.status != Authorized || !loc.Valid() {
		return false
	}

	select {
	case <-s.updates:
	default:
	}
	s.updates <- loc

	return true
}

func (s *PushSource) Start() {
	s.Lock()
	defer s.Unlock()
	s.running = true
}

func (s *PushSource) Stop() {
	s.Lock()
	defer s.Unlock()
	s.running = false
}

func (s *PushSource) Updates() <-chan schema.Location {
	return s.updates
}
