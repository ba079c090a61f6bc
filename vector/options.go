package vector

import "log/slog"

type options struct {
	logger    *slog.Logger
	changeLog bool
}

// Option configures a SQLStore.
type Option func(*options)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithChangeLog installs the vecsync change log on the documents table.
func WithChangeLog(enabled bool) Option {
	return func(o *options) { o.changeLog = enabled }
}

func newOptions(opts []Option) *options {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
