package internal

// Option adjusts how Run and RunMCP assemble the application.
type Option func(*application)

type application struct {
	config *Config
}

// WithConfig supplies the loaded configuration; both entrypoints refuse
// to start without one.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}
