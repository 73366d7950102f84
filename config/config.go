package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	json "github.com/json-iterator/go"
)

type (
	NET struct {
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// socket
		ReadBufferSize int
		// ReadTimeout controls the maximal lifetime of IDLE connections. If no data was
		// received in this period of time, it'll be closed.
		ReadTimeout time.Duration
		// WriteTimeout limits how long a connection may stay unwritable while a response
		// is pending. Exceeding it tears the connection down.
		WriteTimeout time.Duration
		// AcceptLoopInterruptPeriod controls how often will the Accept() call be interrupted
		// in order to check whether it's time to stop. Defaults to 5 seconds.
		AcceptLoopInterruptPeriod time.Duration
	}

	HTTP struct {
		// MaxHeadSize limits the request line together with all the header fields.
		// Requests exceeding it are answered with 431.
		MaxHeadSize int
		// MaxDiscardBody is the largest Content-Length of a request body the server agrees
		// to skip over in order to keep the connection alive. Request bodies are never
		// processed.
		MaxDiscardBody int64
	}

	Loop struct {
		// EventQueueSize is the capacity of the channel all the readiness, accept and
		// wake-up events are delivered through.
		EventQueueSize int
	}

	Worker struct {
		// Delay is the simulated latency of every deferred job.
		Delay time.Duration
		// Answer is the payload every deferred job replies with.
		Answer string
	}
)

// Config holds settings used across various parts of hitchhiker, mainly restrictions,
// limitations and timings.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	NET    NET
	HTTP   HTTP
	Loop   Loop
	Worker Worker
}

// Default returns default config.
func Default() *Config {
	return &Config{
		NET: NET{
			ReadBufferSize:            4 * 1024,
			ReadTimeout:               90 * time.Second,
			WriteTimeout:              30 * time.Second,
			AcceptLoopInterruptPeriod: 5 * time.Second,
		},
		HTTP: HTTP{
			MaxHeadSize:    16 * 1024,
			MaxDiscardBody: 1024 * 1024,
		},
		Loop: Loop{
			EventQueueSize: 1024,
		},
		Worker: Worker{
			Delay:  500 * time.Millisecond,
			Answer: "42",
		},
	}
}

// Validate reports the first setting, which makes no sense.
func (c *Config) Validate() error {
	switch {
	case c.NET.ReadBufferSize <= 0:
		return errors.New("NET.ReadBufferSize must be positive")
	case c.NET.ReadTimeout <= 0, c.NET.WriteTimeout <= 0:
		return errors.New("NET timeouts must be positive")
	case c.NET.AcceptLoopInterruptPeriod <= 0:
		return errors.New("NET.AcceptLoopInterruptPeriod must be positive")
	case c.HTTP.MaxHeadSize < len("GET / HTTP/1.1\r\n\r\n"):
		return fmt.Errorf("HTTP.MaxHeadSize is too small: %d", c.HTTP.MaxHeadSize)
	case c.HTTP.MaxDiscardBody < 0:
		return errors.New("HTTP.MaxDiscardBody must not be negative")
	case c.Loop.EventQueueSize <= 0:
		return errors.New("Loop.EventQueueSize must be positive")
	case c.Worker.Delay < 0:
		return errors.New("Worker.Delay must not be negative")
	case len(c.Worker.Answer) == 0:
		return errors.New("Worker.Answer must not be empty")
	}

	return nil
}

// file mirrors Config for JSON documents. Every field is optional and overrides the
// corresponding default only if present.
type file struct {
	NET struct {
		ReadBufferSize            *int    `json:"read_buffer_size"`
		ReadTimeout               *string `json:"read_timeout"`
		WriteTimeout              *string `json:"write_timeout"`
		AcceptLoopInterruptPeriod *string `json:"accept_loop_interrupt_period"`
	} `json:"net"`
	HTTP struct {
		MaxHeadSize    *int   `json:"max_head_size"`
		MaxDiscardBody *int64 `json:"max_discard_body"`
	} `json:"http"`
	Loop struct {
		EventQueueSize *int `json:"event_queue_size"`
	} `json:"loop"`
	Worker struct {
		Delay  *string `json:"delay"`
		Answer *string `json:"answer"`
	} `json:"worker"`
}

// Load reads a JSON document at path and applies it over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse applies a JSON document over the defaults.
func Parse(data []byte) (*Config, error) {
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg := Default()
	setInt(&cfg.NET.ReadBufferSize, f.NET.ReadBufferSize)
	setInt(&cfg.HTTP.MaxHeadSize, f.HTTP.MaxHeadSize)
	setInt(&cfg.Loop.EventQueueSize, f.Loop.EventQueueSize)

	if f.HTTP.MaxDiscardBody != nil {
		cfg.HTTP.MaxDiscardBody = *f.HTTP.MaxDiscardBody
	}

	if f.Worker.Answer != nil {
		cfg.Worker.Answer = *f.Worker.Answer
	}

	durations := []struct {
		name  string
		value *string
		dst   *time.Duration
	}{
		{"net.read_timeout", f.NET.ReadTimeout, &cfg.NET.ReadTimeout},
		{"net.write_timeout", f.NET.WriteTimeout, &cfg.NET.WriteTimeout},
		{"net.accept_loop_interrupt_period", f.NET.AcceptLoopInterruptPeriod, &cfg.NET.AcceptLoopInterruptPeriod},
		{"worker.delay", f.Worker.Delay, &cfg.Worker.Delay},
	}

	for _, d := range durations {
		if d.value == nil {
			continue
		}

		value, err := time.ParseDuration(*d.value)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", d.name, err)
		}

		*d.dst = value
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

func setInt(dst *int, value *int) {
	if value != nil {
		*dst = *value
	}
}
