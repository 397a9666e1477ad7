package scan

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrMalformedURL      = errors.New("malformed URL")
	ErrNoParametersFound = errors.New("no parameters found in the URL")
	ErrInterrupted       = errors.New("scan interrupted")
	ErrRequest           = errors.New("request failed")
	ErrDecode            = errors.New("response body could not be decoded")
)

// ConfigError is returned for any invalid run setting. It is always raised
// before the first request is sent.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// DefaultChars is the character set every parameter is tested with unless
// reduced by Exclude or extended by Include.
var DefaultChars = []string{
	"<", ">", "\"", "'", "`", ";", "&", "=", "#", "%",
	"(", ")", "{", "}", "[", "]", "/", "\\", "*", "|",
}

type Config struct {
	Concurrency int
	Timeout     time.Duration
	Delay       bool
	DelayMin    time.Duration
	DelayMax    time.Duration
	RandomAgent bool
	Exclude     []string
	Include     []string
	Headers     map[string]string
	Debug       bool
}

func (c *Config) FillDefaults() {
	if c.Concurrency == 0 {
		c.Concurrency = 5
	}
	if c.Timeout == 0 {
		c.Timeout = 5 * time.Second
	}
}

func (c Config) Validate() error {
	if c.Concurrency < 1 {
		return &ConfigError{Field: "concurrent", Reason: fmt.Sprintf("must be at least 1, got %d", c.Concurrency)}
	}
	if c.Timeout <= 0 {
		return &ConfigError{Field: "timeout", Reason: fmt.Sprintf("must be positive, got %s", c.Timeout)}
	}
	if c.DelayMin < 0 || c.DelayMax < 0 {
		return &ConfigError{Field: "delay-range", Reason: "bounds must not be negative"}
	}
	if c.DelayMin > c.DelayMax {
		return &ConfigError{Field: "delay-range", Reason: fmt.Sprintf("min %s is greater than max %s", c.DelayMin, c.DelayMax)}
	}
	return nil
}

// Parameter is one query parameter as it appeared in the target URL.
type Parameter struct {
	Name  string
	Value string
}

type Probe struct {
	Param    string
	Original string
	Char     string
	Marker   string
	URL      string
	// Expected is Char followed by Marker; its presence in the body means
	// the character came back verbatim.
	Expected string
}

type Status int

const (
	NotReflected Status = iota
	Reflected
	Errored
)

func (s Status) String() string {
	switch s {
	case Reflected:
		return "reflected"
	case NotReflected:
		return "not_reflected"
	case Errored:
		return "errored"
	}
	return "unknown"
}

type Outcome struct {
	Param      string
	Char       string
	Status     Status
	StatusCode int
	Contexts   []string
	Err        error
}

func (o Outcome) Message() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

type CharError struct {
	Char    string `json:"char"`
	Message string `json:"message"`
}

type ParameterReport struct {
	Parameter    string              `json:"parameter"`
	Original     string              `json:"original"`
	Reflected    []string            `json:"reflected"`
	NotReflected []string            `json:"not_reflected"`
	Errors       []CharError         `json:"errors"`
	Contexts     map[string][]string `json:"contexts,omitempty"`
}

// Tested is the number of characters that produced an outcome.
func (r ParameterReport) Tested() int {
	return len(r.Reflected) + len(r.NotReflected) + len(r.Errors)
}
