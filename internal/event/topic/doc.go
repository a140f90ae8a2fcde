// Package topic names the notifications folio publishes.
//
// Topics are dot-separated: "state.changed", "config.reloaded". Patterns
// used for subscriptions may contain wildcards:
//
//	state.*     one segment: state.changed, state.rejected
//	**          any number of segments, including none
//	*.changed   state.changed, history.changed
package topic
