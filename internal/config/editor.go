package config

import "time"

type Editor struct {
	DebounceInterval time.Duration `env:"DEBOUNCE_INTERVAL" envDefault:"1s"`
	MaxSaveRetries   int           `env:"MAX_SAVE_RETRIES" envDefault:"3"`
	SaveBaseBackoff  time.Duration `env:"SAVE_BASE_BACKOFF" envDefault:"1s"`
	InitTimeout      time.Duration `env:"INIT_TIMEOUT" envDefault:"10s"`
	MaxInitFailures  int           `env:"MAX_INIT_FAILURES" envDefault:"2"`
}
