// Package event delivers editor notifications to subscribers.
//
// Delivery is synchronous: Publish runs every matching handler in the
// publisher's goroutine, in priority order, before it returns. A handler
// that fails or panics does not stop delivery to the others; their errors
// are joined and returned from Publish.
//
//	bus := event.NewBus(event.WithLogger(log))
//	sub, _ := bus.SubscribeFunc("state.*", func(ctx context.Context, ev any) error {
//		change := ev.(event.Event[editor.StateChange])
//		...
//		return nil
//	})
//	defer bus.Unsubscribe(sub)
//
// Subscriptions match by topic pattern (see package topic) and may carry a
// filter, a priority, and a once flag.
package event
