package asset

import "log/slog"

// viewConfig holds configuration shared by the view constructors.
type viewConfig struct {
	logger *slog.Logger
}

// ViewOption configures a view.
type ViewOption func(*viewConfig)

// ViewWithLogger sets the logger used by a view.
func ViewWithLogger(logger *slog.Logger) ViewOption {
	return func(cfg *viewConfig) {
		cfg.logger = logger
	}
}

func newViewConfig(opts []ViewOption) viewConfig {
	var cfg viewConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// log returns the logger, falling back to a discard logger if nil.
func (cfg *viewConfig) log() *slog.Logger {
	if cfg.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return cfg.logger
}
