package nearby

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mymed-inc/mymed-api/places"
	"github.com/mymed-inc/mymed-api/schema"
)

const logPrefix = "nearby"

var (
	ErrNoLocation = fmt.Errorf("no location yet")
	ErrClosed     = fmt.Errorf("controller closed")
)

// Searcher finds the places around a location, nearest first
type Searcher interface {
	Nearby(ctx context.Context, center schema.Location, radiusMeters int) ([]schema.Place, error)
}

// Locator provides the location a controller searches around
type Locator interface {
	Current() (schema.Location, bool)
	Subscribe() (<-chan schema.Location, func())
}

// Snapshot is the state of a controller at one point in time
type Snapshot struct {
	Places    []schema.Place     `json:"places"`
	Total     int                `json:"total"`
	Filter    schema.FilterState `json:"filter"`
	Center    *schema.Location   `json:"center,omitempty"`
	Selected  *schema.Place      `json:"selected,omitempty"`
	Loading   bool               `json:"loading"`
	Error     string             `json:"error,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Controller owns the nearby place list of one user. Every fetch is
// tagged and only the completion of the latest one is applied.
type Controller struct {
	sync.Mutex

	searcher Searcher
	locator  Locator
	radius   int

	ctx    context.Context
	cancel context.CancelFunc
	closed bool

	tag     uint64
	task    *Task
	center  *schema.Location
	all     []schema.Place
	visible []schema.Place
	filter  schema.FilterState
	lastErr error
	updated time.Time

	selected *schema.Place

	nextID    int
	observers map[int]chan Snapshot
}

// NewController returns a controller searching within radiusMeters. The
// first fix of locator triggers a fetch.
func NewController(searcher Searcher, locator Locator, radiusMeters int) *Controller {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		searcher:  searcher,
		locator:   locator,
		radius:    radiusMeters,
		ctx:       ctx,
		cancel:    cancel,
		filter:    schema.FilterState{Category: schema.AllCategory},
		all:       []schema.Place{},
		visible:   []schema.Place{},
		observers: make(map[int]chan Snapshot),
	}

	if locator != nil {
		updates, stop := locator.Subscribe()
		go c.awaitFirstFix(updates, stop)
	}

	return c
}

func (c *Controller) awaitFirstFix(updates <-chan schema.Location, stop func()) {
	defer stop()

	select {
	case loc, ok := <-updates:
		if ok {
			c.Fetch(loc)
		}
	case <-c.ctx.Done():
	}
}

// Fetch searches around center, superseding and cancelling any fetch in
// flight
func (c *Controller) Fetch(center schema.Location) *Task {
	c.Lock()
	defer c.Unlock()

	if c.closed {
		return resolvedTask(ErrClosed)
	}

	if c.task != nil {
		c.task.Cancel()
	}

	c.tag++
	ctx, cancel := context.WithCancel(c.ctx)
	task := newTask(c.tag, cancel)
	c.task = task
	c.center = &center
	c.notify()

	log.WithFields(log.Fields{
		"prefix": logPrefix,
		"tag":    task.tag,
		"lat":    center.Latitude,
		"lng":    center.Longitude,
	}).Debug("fetch nearby places")

	go func() {
		found, err := c.searcher.Nearby(ctx, center, c.radius)
		c.complete(task, found, err)
	}()

	return task
}

// Refresh fetches again around the latest known location
func (c *Controller) Refresh() (*Task, error) {
	if c.locator != nil {
		if loc, ok := c.locator.Current(); ok {
			return c.Fetch(loc), nil
		}
	}

	c.Lock()
	center := c.center
	c.Unlock()

	if center == nil {
		return nil, ErrNoLocation
	}

	return c.Fetch(*center), nil
}

func (c *Controller) complete(task *Task, found []schema.Place, err error) {
	c.Lock()
	defer c.Unlock()

	logger := log.WithFields(log.Fields{
		"prefix": logPrefix,
		"tag":    task.tag,
	})

	if c.closed || task.tag != c.tag {
		logger.Debug("discard stale result")
		task.resolve(found, err)
		return
	}

	c.task = nil
	if nil != err {
		logger.WithError(err).Error("fetch nearby places")
		c.lastErr = err
	} else {
		if found == nil {
			found = []schema.Place{}
		}
		c.all = found
		c.visible = places.ApplyFilters(found, c.filter)
		c.lastErr = nil
		c.selected = nil
	}
	c.updated = time.Now()
	c.notify()

	task.resolve(found, err)
}

// SetFilter replaces the filter and recomputes the visible places
func (c *Controller) SetFilter(state schema.FilterState) Snapshot {
	c.Lock()
	defer c.Unlock()

	if state.Category == "" {
		state.Category = schema.AllCategory
	}

	c.filter = state
	c.visible = places.ApplyFilters(c.all, state)
	c.notify()

	return c.snapshot()
}

func (c *Controller) Filter() schema.FilterState {
	c.Lock()
	defer c.Unlock()
	return c.filter
}

// Select marks the place with id as selected and returns it
func (c *Controller) Select(id string) (schema.Place, bool) {
	c.Lock()
	defer c.Unlock()

	for _, p := range c.all {
		if p.ID == id {
			selected := p
			c.selected = &selected
			c.notify()
			return p, true
		}
	}

	return schema.Place{}, false
}

func (c *Controller) Snapshot() Snapshot {
	c.Lock()
	defer c.Unlock()
	return c.snapshot()
}

// Subscribe returns a channel receiving a snapshot after each change,
// starting with the current state. Slow readers only see the latest one.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	c.Lock()
	defer c.Unlock()

	ch := make(chan Snapshot, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}

	id := c.nextID
	c.nextID++
	c.observers[id] = ch
	ch <- c.snapshot()

	return ch, func() {
		c.Lock()
		defer c.Unlock()
		if o, ok := c.observers[id]; ok {
			delete(c.observers, id)
			close(o)
		}
	}
}

// Close cancels the fetch in flight and ends every subscription
func (c *Controller) Close() {
	c.Lock()
	defer c.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.cancel()

	for id, ch := range c.observers {
		delete(c.observers, id)
		close(ch)
	}
}

func (c *Controller) snapshot() Snapshot {
	s := Snapshot{
		Places:    c.visible,
		Total:     len(c.all),
		Filter:    c.filter,
		Loading:   c.task != nil,
		UpdatedAt: c.updated,
	}

	if c.center != nil {
		center := *c.center
		s.Center = &center
	}

	if c.selected != nil {
		selected := *c.selected
		s.Selected = &selected
	}

	if c.lastErr != nil {
		s.Error = c.lastErr.Error()
	}

	return s
}

// notify must be called with the lock held
func (c *Controller) notify() {
	s := c.snapshot()
	for _, ch := range c.observers {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}
