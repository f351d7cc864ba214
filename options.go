package kronosim

import "math/rand/v2"

// environmentOptions holds configuration resolved from EnvironmentOption
// values.
type environmentOptions struct {
	logger         Logger
	eventLog      bool
	eventLogLimit int
	randSource    *rand.Rand
}

// EnvironmentOption configures an Environment constructed via NewEnvironment.
type EnvironmentOption interface {
	applyEnvironment(*environmentOptions) error
}

type environmentOptionFunc func(*environmentOptions) error

func (f environmentOptionFunc) applyEnvironment(opts *environmentOptions) error {
	return f(opts)
}

// WithLogger installs a structured logger (see Logger) on the Environment.
// Component start/resume and Resource claim/release/put are logged at debug
// level; State changes are not logged.
func WithLogger(log Logger) EnvironmentOption {
	return environmentOptionFunc(func(opts *environmentOptions) error {
		opts.logger = log
		return nil
	})
}

// WithEventLog enables the in-memory structured event log, retaining up to
// limit records (0 means unbounded).
func WithEventLog(limit int) EnvironmentOption {
	return environmentOptionFunc(func(opts *environmentOptions) error {
		opts.eventLog = true
		opts.eventLogLimit = limit
		return nil
	})
}

// WithRandSource seeds the *rand.Rand used by default inter-arrival and
// resource-selection sampling. Callers that inject their own distributions
// everywhere need not set this.
func WithRandSource(r *rand.Rand) EnvironmentOption {
	return environmentOptionFunc(func(opts *environmentOptions) error {
		opts.randSource = r
		return nil
	})
}

func resolveEnvironmentOptions(opts []EnvironmentOption) (*environmentOptions, error) {
	cfg := &environmentOptions{
		logger: defaultLogger(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyEnvironment(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.randSource == nil {
		cfg.randSource = rand.New(rand.NewPCG(1, 2))
	}
	return cfg, nil
}
