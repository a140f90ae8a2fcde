package event

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/folio/internal/event/topic"
)

type change struct{ version int }

func publish(t *testing.T, b Bus, tp topic.Topic, version int) error {
	t.Helper()
	return b.Publish(context.Background(), NewEvent(tp, change{version}, "test"))
}

func TestPublishDeliversInPriorityOrder(t *testing.T) {
	b := NewBus()
	var order []string
	record := func(name string) HandlerFunc {
		return func(context.Context, any) error {
			order = append(order, name)
			return nil
		}
	}
	mustSubscribe(t, b, "state.*", record("normal"))
	mustSubscribe(t, b, "state.changed", record("low"), WithPriority(PriorityLow))
	mustSubscribe(t, b, "**", record("critical"), WithPriority(PriorityCritical))
	mustSubscribe(t, b, "history.*", record("other"))

	if err := publish(t, b, topic.StateChanged, 1); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	want := []string{"critical", "normal", "low"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func mustSubscribe(t *testing.T, b Bus, pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) Subscription {
	t.Helper()
	sub, err := b.SubscribeFunc(pattern, fn, opts...)
	if err != nil {
		t.Fatalf("Subscribe(%q): %v", pattern, err)
	}
	return sub
}

func TestTypedHandler(t *testing.T) {
	b := NewBus()
	var got int
	_, err := b.Subscribe(topic.StateChanged, AsHandler(func(_ context.Context, ev Event[change]) error {
		got = ev.Payload.version
		return nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	if err := publish(t, b, topic.StateChanged, 7); err != nil {
		t.Fatal(err)
	}
	if got != 7 {
		t.Errorf("got version %d, want 7", got)
	}
	// Other payload types are skipped.
	if err := b.Publish(context.Background(), NewEvent(topic.StateChanged, "text", "test")); err != nil {
		t.Fatal(err)
	}
	if got != 7 {
		t.Errorf("string payload reached typed handler")
	}
}

func TestHandlerErrorsAndPanicsAreIsolated(t *testing.T) {
	var panics int
	b := NewBus(WithPanicHandler(func(_ any, pe *PanicError) { panics++ }))
	boom := errors.New("boom")
	reached := false
	mustSubscribe(t, b, "state.*", func(context.Context, any) error { return boom }, WithPriority(PriorityCritical))
	mustSubscribe(t, b, "state.*", func(context.Context, any) error { panic("bad") }, WithPriority(PriorityHigh))
	mustSubscribe(t, b, "state.*", func(context.Context, any) error { reached = true; return nil })

	err := publish(t, b, topic.StateChanged, 1)
	if !reached {
		t.Error("later handler not reached")
	}
	if !errors.Is(err, boom) {
		t.Errorf("error %v does not wrap handler error", err)
	}
	if !errors.Is(err, ErrHandlerPanic) {
		t.Errorf("error %v does not report panic", err)
	}
	var he *HandlerError
	if !errors.As(err, &he) || he.Topic != "state.changed" {
		t.Errorf("HandlerError = %+v", he)
	}
	if panics != 1 {
		t.Errorf("panic handler called %d times", panics)
	}
	st := b.Stats()
	if st.HandlerErrors != 1 || st.HandlerPanics != 1 || st.HandlersExecuted != 3 {
		t.Errorf("stats = %+v", st)
	}
}

func TestOnceAndUnsubscribe(t *testing.T) {
	b := NewBus()
	var once, always int
	mustSubscribe(t, b, topic.StateChanged, func(context.Context, any) error { once++; return nil }, Once())
	sub := mustSubscribe(t, b, topic.StateChanged, func(context.Context, any) error { always++; return nil })

	for i := 0; i < 3; i++ {
		_ = publish(t, b, topic.StateChanged, i)
	}
	if once != 1 || always != 3 {
		t.Errorf("once=%d always=%d", once, always)
	}
	if err := b.Unsubscribe(sub); err != nil {
		t.Fatal(err)
	}
	_ = publish(t, b, topic.StateChanged, 4)
	if always != 3 {
		t.Error("unsubscribed handler still called")
	}
	if err := b.Unsubscribe(sub); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Errorf("second Unsubscribe = %v", err)
	}
	if n := b.Stats().ActiveSubscribers; n != 0 {
		t.Errorf("ActiveSubscribers = %d", n)
	}
}

func TestPauseAndFilters(t *testing.T) {
	b := NewBus()
	var versions []int
	sub := mustSubscribe(t, b, "**", func(_ context.Context, ev any) error {
		versions = append(versions, ev.(Event[change]).Payload.version)
		return nil
	}, WithFilter(FilterPayload(func(c change) bool { return c.version%2 == 0 })))

	for i := 1; i <= 4; i++ {
		_ = publish(t, b, topic.StateChanged, i)
	}
	b.Pause()
	_ = publish(t, b, topic.StateChanged, 6)
	b.Resume()
	sub.Pause()
	_ = publish(t, b, topic.StateChanged, 8)
	sub.Resume()
	_ = publish(t, b, topic.StateChanged, 10)

	want := []int{2, 4, 10}
	if len(versions) != len(want) {
		t.Fatalf("versions = %v, want %v", versions, want)
	}
	for i := range want {
		if versions[i] != want[i] {
			t.Fatalf("versions = %v, want %v", versions, want)
		}
	}
}

func TestPublishValidation(t *testing.T) {
	b := NewBus()
	if err := b.Publish(context.Background(), 42); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("non-event = %v", err)
	}
	if err := publish(t, b, "state.*", 1); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("wildcard publish = %v", err)
	}
	if _, err := b.SubscribeFunc("", func(context.Context, any) error { return nil }); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty pattern = %v", err)
	}
	if _, err := b.Subscribe("a", nil); !errors.Is(err, ErrNilHandler) {
		t.Errorf("nil handler = %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if err := publish(t, b, topic.StateChanged, 1); !errors.Is(err, ErrBusClosed) {
		t.Errorf("publish after close = %v", err)
	}
}

func TestCancelledContextStopsDelivery(t *testing.T) {
	b := NewBus()
	calls := 0
	mustSubscribe(t, b, "**", func(context.Context, any) error { calls++; return nil })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := b.Publish(ctx, NewEvent(topic.StateChanged, change{}, "test"))
	if !errors.Is(err, context.Canceled) || calls != 0 {
		t.Errorf("err=%v calls=%d", err, calls)
	}
}
