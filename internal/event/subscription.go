package event

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/folio/internal/event/topic"
)

// Subscription is a handle returned by Subscribe.
type Subscription interface {
	// ID returns the subscription identifier.
	ID() string

	// Topic returns the subscribed pattern.
	Topic() topic.Topic

	// IsActive reports whether the subscription still receives events.
	IsActive() bool

	// Pause stops delivery until Resume.
	Pause()

	// Resume restarts delivery after Pause.
	Resume()

	// Cancel stops delivery permanently.
	Cancel()
}

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*subscriptionConfig)

type subscriptionConfig struct {
	priority Priority
	filter   FilterFunc
	once     bool
}

// WithPriority sets the handler priority.
func WithPriority(p Priority) SubscriptionOption {
	return func(c *subscriptionConfig) { c.priority = p }
}

// WithFilter delivers only events accepted by f.
func WithFilter(f FilterFunc) SubscriptionOption {
	return func(c *subscriptionConfig) { c.filter = f }
}

// Once cancels the subscription after its first delivery.
func Once() SubscriptionOption {
	return func(c *subscriptionConfig) { c.once = true }
}

type subscription struct {
	id      string
	pattern topic.Topic
	handler Handler
	config  subscriptionConfig
	seq     uint64

	paused    atomic.Bool
	cancelled atomic.Bool
}

func newSubscription(pattern topic.Topic, h Handler, opts []SubscriptionOption) *subscription {
	cfg := subscriptionConfig{priority: PriorityNormal}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &subscription{
		id:      uuid.NewString(),
		pattern: pattern,
		handler: h,
		config:  cfg,
	}
}

func (s *subscription) ID() string         { return s.id }
func (s *subscription) Topic() topic.Topic { return s.pattern }
func (s *subscription) Pause()             { s.paused.Store(true) }
func (s *subscription) Resume()            { s.paused.Store(false) }
func (s *subscription) Cancel()            { s.cancelled.Store(true) }
func (s *subscription) IsActive() bool     { return !s.cancelled.Load() && !s.paused.Load() }
func (s *subscription) isCancelled() bool  { return s.cancelled.Load() }
func (s *subscription) priority() Priority { return s.config.priority }

// accepts reports whether ev passes the subscription filter.
func (s *subscription) accepts(ev any) bool {
	return s.config.filter == nil || s.config.filter(ev)
}

// claim reserves a once subscription for a single delivery.
func (s *subscription) claim() bool {
	if !s.config.once {
		return true
	}
	return s.cancelled.CompareAndSwap(false, true)
}
