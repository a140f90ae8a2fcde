package event

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"github.com/dshills/folio/internal/event/topic"
)

// Bus is the notification bus.
type Bus interface {
	// Publish delivers event to every matching subscription before it
	// returns. event must implement TopicProvider.
	Publish(ctx context.Context, event any) error

	Subscribe(pattern topic.Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error)
	SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error)
	Unsubscribe(sub Subscription) error

	// Pause drops published events until Resume.
	Pause()
	Resume()
	IsPaused() bool

	// Close cancels every subscription. Later calls fail with ErrBusClosed.
	Close() error

	Stats() Stats
}

type bus struct {
	registry *Registry
	config   busConfig

	paused atomic.Bool
	closed atomic.Bool

	eventsPublished  atomic.Uint64
	eventsDelivered  atomic.Uint64
	handlersExecuted atomic.Uint64
	handlerErrors    atomic.Uint64
	handlerPanics    atomic.Uint64
}

// NewBus creates a bus.
func NewBus(opts ...BusOption) Bus {
	cfg := defaultBusConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &bus{registry: NewRegistry(), config: cfg}
}

func (b *bus) Publish(ctx context.Context, ev any) error {
	if b.closed.Load() {
		return ErrBusClosed
	}
	tp, ok := ev.(TopicProvider)
	if !ok {
		return fmt.Errorf("%w: %T has no topic", ErrInvalidEvent, ev)
	}
	t := tp.EventTopic()
	if !t.IsValid() || t.IsWildcard() {
		return fmt.Errorf("%w: %q", ErrInvalidTopic, t)
	}
	b.eventsPublished.Add(1)
	if b.paused.Load() {
		return nil
	}

	var errs []error
	delivered := false
	for _, sub := range b.registry.Match(t) {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if !sub.IsActive() || !sub.accepts(ev) || !sub.claim() {
			continue
		}
		delivered = true
		if err := b.invoke(ctx, sub, t, ev); err != nil {
			errs = append(errs, err)
		}
	}
	if delivered {
		b.eventsDelivered.Add(1)
	}
	return errors.Join(errs...)
}

// invoke runs one handler, converting a panic into a PanicError.
func (b *bus) invoke(ctx context.Context, sub *subscription, t topic.Topic, ev any) (err error) {
	b.handlersExecuted.Add(1)
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			pe := &PanicError{SubscriptionID: sub.id, Topic: string(t), Value: r, Stack: string(debug.Stack())}
			b.config.logger.Error("%v", pe)
			if b.config.panicHandler != nil {
				b.config.panicHandler(ev, pe)
			}
			err = pe
		}
	}()
	if herr := sub.handler.Handle(ctx, ev); herr != nil {
		b.handlerErrors.Add(1)
		b.config.logger.WithField("topic", t).Warn("handler %s failed: %v", sub.id, herr)
		return &HandlerError{SubscriptionID: sub.id, Topic: string(t), Err: herr}
	}
	return nil
}

func (b *bus) Subscribe(pattern topic.Topic, h Handler, opts ...SubscriptionOption) (Subscription, error) {
	if b.closed.Load() {
		return nil, ErrBusClosed
	}
	if h == nil {
		return nil, ErrNilHandler
	}
	if !pattern.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTopic, pattern)
	}
	sub := newSubscription(pattern, h, opts)
	b.registry.Add(sub)
	return sub, nil
}

func (b *bus) SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, fn, opts...)
}

func (b *bus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}
	sub.Cancel()
	if !b.registry.Remove(sub.ID()) {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (b *bus) Pause()         { b.paused.Store(true) }
func (b *bus) Resume()        { b.paused.Store(false) }
func (b *bus) IsPaused() bool { return b.paused.Load() }

func (b *bus) Close() error {
	if b.closed.Swap(true) {
		return ErrBusClosed
	}
	b.registry.Clear()
	return nil
}

func (b *bus) Stats() Stats {
	b.registry.Prune()
	return Stats{
		EventsPublished:   b.eventsPublished.Load(),
		EventsDelivered:   b.eventsDelivered.Load(),
		HandlersExecuted:  b.handlersExecuted.Load(),
		HandlerErrors:     b.handlerErrors.Load(),
		HandlerPanics:     b.handlerPanics.Load(),
		ActiveSubscribers: b.registry.Count(),
	}
}
