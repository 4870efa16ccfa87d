package location

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/mymed-inc/mymed-api/schema"
)

const logPrefix = "location"

// Source is the platform location service behind a Provider
type Source interface {
	Authorization() PermissionStatus
	// RequestAuthorization asks the user once and blocks until a decision
	// is made or ctx is done
	RequestAuthorization(ctx context.Context) (PermissionStatus, error)
	Start()
	Stop()
	Updates() <-chan schema.Location
}

// Provider publishes the current coordinate of a Source and keeps a map
// region centered on it
type Provider struct {
	sync.Mutex

	source      Source
	current     *schema.Location
	region      schema.Region
	started     bool
	closed      bool
	done        chan struct{}
	nextID      int
	subscribers map[int]chan schema.Location
}

func NewProvider(source Source) *Provider {
	return &Provider{
		source:      source,
		region:      schema.NewRegion(schema.Location{}),
		done:        make(chan struct{}),
		subscribers: make(map[int]chan schema.Location),
	}
}

// RequestAccess asks for permission when it was never asked and starts
// location updates once authorized. A previous refusal is reported with
// ErrPermissionDenied and never asked again.
func (p *Provider) RequestAccess(ctx context.Context) (PermissionStatus, error) {
	status := p.source.Authorization()

	if status == NotDetermined {
		var err error
		status, err = p.source.RequestAuthorization(ctx)
		if nil != err {
			return status, err
		}
	}

	switch {
	case status.Refused():
		log.WithField("prefix", logPrefix).WithField("status", status).Info("location access refused")
		return status, ErrPermissionDenied
	case status == Authorized:
		p.start()
	}

	return status, nil
}

// Permission returns the current authorization of the source
func (p *Provider) Permission() PermissionStatus {
	return p.source.Authorization()
}

// Current returns the last known coordinate. The second value is false
// until the first fix, including when it will never arrive.
func (p *Provider) Current() (schema.Location, bool) {
	p.Lock()
	defer p.Unlock()

	if p.current == nil {
		return schema.Location{}, false
	}
	return *p.current, true
}

func (p *Provider) Region() schema.Region {
	p.Lock()
	defer p.Unlock()
	return p.region
}

// Subscribe returns a channel receiving every new coordinate, starting
// with the current one if any. Slow readers only miss intermediate fixes.
// The returned func stops the subscription.
func (p *Provider) Subscribe() (<-chan schema.Location, func()) {
	p.Lock()
	defer p.Unlock()

	ch := make(chan schema.Location, 1)
	if p.closed {
		close(ch)
		return ch, func() {}
	}

	id := p.nextID
	p.nextID++
	p.subscribers[id] = ch

	if p.current != nil {
		ch <- *p.current
	}

	return ch, func() {
		p.Lock()
		defer p.Unlock()
		if c, ok := p.subscribers[id]; ok {
			delete(p.subscribers, id)
			close(c)
		}
	}
}

// Close stops the source and closes every subscription
func (p *Provider) Close() {
	p.Lock()
	defer p.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.done)

	if p.started {
		p.source.Stop()
	}

	for id, ch := range p.subscribers {
		delete(p.subscribers, id)
		close(ch)
	}
}

func (p *Provider) start() {
	p.Lock()
	defer p.Unlock()

	if p.started || p.closed {
		return
	}
	p.started = true
	p.source.Start()

	go p.watch(p.source.Updates())
}

func (p *Provider) watch(updates <-chan schema.Location) {
	for {
		select {
		case loc, ok := <-updates:
			if !ok {
				return
			}
			p.publish(loc)
		case <-p.done:
			return
		}
	}
}

func (p *Provider) publish(loc schema.Location) {
	p.Lock()
	defer p.Unlock()

	if p.closed {
		return
	}

	p.current = &loc
	p.region.Center = loc

	for _, ch := range p.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- loc
	}
}
