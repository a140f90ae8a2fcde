package event

import "github.com/dshills/folio/internal/logging"

// BusOption configures a Bus.
type BusOption func(*busConfig)

type busConfig struct {
	panicHandler PanicHandler
	logger       *logging.Logger
}

func defaultBusConfig() busConfig {
	return busConfig{logger: logging.Null()}
}

// WithPanicHandler sets a callback for recovered handler panics.
func WithPanicHandler(h PanicHandler) BusOption {
	return func(c *busConfig) {
		c.panicHandler = h
	}
}

// WithLogger logs handler failures through l.
func WithLogger(l *logging.Logger) BusOption {
	return func(c *busConfig) {
		if l != nil {
			c.logger = l.WithComponent("event")
		}
	}
}
