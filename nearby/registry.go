package nearby

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/mymed-inc/mymed-api/location"
	"github.com/mymed-inc/mymed-api/schema"
)

// Session is the location and nearby state of one signed in account
type Session struct {
	ID         string
	AccountID  string
	CreatedAt  time.Time
	Source     *location.PushSource
	Provider   *location.Provider
	Controller *Controller

	ctx    context.Context
	cancel context.CancelFunc

	// guarded by the registry lock
	lastSeen time.Time
}

// Report feeds the client reported permission and coordinate into the
// session location source
func (s *Session) Report(permission location.PermissionStatus, loc *schema.Location) {
	s.Source.SetPermission(permission)

	// start updates before pushing, RequestAccess does not block once decided
	if s.Source.Authorization() == location.Authorized {
		_, _ = s.Provider.RequestAccess(s.ctx)
	}

	if loc != nil {
		s.Source.Push(*loc)
	}
}

func (s *Session) Close() {
	s.cancel()
	s.Controller.Close()
	s.Provider.Close()
}

const (
	// DefaultRadius is the search radius in meters
	DefaultRadius = 10000

	// DefaultSessionTTL is how long a session lives without any access
	DefaultSessionTTL = time.Hour

	minSweepInterval = 10 * time.Millisecond
)

// Registry keeps one session per account. Sessions not accessed for the
// idle ttl are closed by a sweeper until Close.
type Registry struct {
	sync.Mutex

	searcher Searcher
	radius   int
	ttl      time.Duration
	sessions map[string]*Session

	stop      chan struct{}
	closeOnce sync.Once
}

// NewRegistry returns a registry searching within radiusMeters and
// expiring sessions idle for ttl. Non positive values fall back to
// DefaultRadius and DefaultSessionTTL.
func NewRegistry(searcher Searcher, radiusMeters int, ttl time.Duration) *Registry {
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadius
	}

	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	r := &Registry{
		searcher: searcher,
		radius:   radiusMeters,
		ttl:      ttl,
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
	}

	go r.sweep()

	return r
}

func (r *Registry) sweep() {
	interval := r.ttl / 2
	if interval < minSweepInterval {
		interval = minSweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			r.Expire(now)
		case <-r.stop:
			return
		}
	}
}

// Expire closes the sessions not accessed since now minus the idle ttl
// and returns how many were closed
func (r *Registry) Expire(now time.Time) int {
	deadline := now.Add(-r.ttl)

	r.Lock()
	idle := make([]*Session, 0)
	for id, s := range r.sessions {
		if s.lastSeen.Before(deadline) {
			delete(r.sessions, id)
			idle = append(idle, s)
		}
	}
	r.Unlock()

	for _, s := range idle {
		log.WithFields(log.Fields{
			"prefix":     logPrefix,
			"account_id": s.AccountID,
			"session_id": s.ID,
		}).Debug("nearby session expired")
		s.Close()
	}

	return len(idle)
}

// Session returns the session of accountID, creating it when needed. A
// new session asks for location access in the background.
func (r *Registry) Session(accountID string) *Session {
	r.Lock()
	defer r.Unlock()

	if s, ok := r.sessions[accountID]; ok {
		s.lastSeen = time.Now()
		return s
	}

	ctx, cancel := context.WithCancel(context.Background())
	source := location.NewPushSource()
	provider := location.NewProvider(source)

	now := time.Now()
	s := &Session{
		ID:         uuid.New().String(),
		AccountID:  accountID,
		CreatedAt:  now,
		lastSeen:   now,
		Source:     source,
		Provider:   provider,
		Controller: NewController(r.searcher, provider, r.radius),
		ctx:        ctx,
		cancel:     cancel,
	}
	r.sessions[accountID] = s

	logger := log.WithFields(log.Fields{
		"prefix":     logPrefix,
		"account_id": accountID,
		"session_id": s.ID,
	})
	logger.Debug("nearby session created")

	go func() {
		status, err := provider.RequestAccess(ctx)
		if nil != err && err != context.Canceled {
			logger.WithError(err).Info("location access not granted")
			return
		}
		logger.WithField("status", status).Debug("location access resolved")
	}()

	return s
}

// Lookup returns the session of accountID without creating one
func (r *Registry) Lookup(accountID string) (*Session, bool) {
	r.Lock()
	defer r.Unlock()

	s, ok := r.sessions[accountID]
	if ok {
		s.lastSeen = time.Now()
	}
	return s, ok
}

// Remove closes and forgets the session of accountID
func (r *Registry) Remove(accountID string) {
	r.Lock()
	s, ok := r.sessions[accountID]
	delete(r.sessions, accountID)
	r.Unlock()

	if ok {
		s.Close()
	}
}

func (r *Registry) Len() int {
	r.Lock()
	defer r.Unlock()
	return len(r.sessions)
}

func (r *Registry) Close() {
	r.closeOnce.Do(func() {
		close(r.stop)
	})

	r.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
