package transport

import (
	"math"
	"math/rand/v2"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/creasty/defaults"

	"github.com/chainsafe/cdp-sdk-go/internal/validation"
)

// IdempotencyKeyHeader marks a POST as safe to replay.
const IdempotencyKeyHeader = "X-Idempotency-Key"

// RetryConfig controls how failed requests are retried.
type RetryConfig struct {
	MaxRetries           int           `json:"maxRetries" default:"3" validate:"gte=0"`
	InitialBackoff       time.Duration `json:"initialBackoff" default:"100ms" validate:"gte=0"`
	MaxBackoff           time.Duration `json:"maxBackoff" default:"30s" validate:"gte=0,gtefield=InitialBackoff"`
	BackoffMultiplier    float64       `json:"backoffMultiplier" default:"2.0" validate:"gte=1"`
	JitterFactor         float64       `json:"jitterFactor" default:"0.25" validate:"gte=0,lte=1"`
	RetryableStatusCodes []int         `json:"retryableStatusCodes" default:"[429,500,502,503,504]"`
	IdempotentMethods    []string      `json:"idempotentMethods" default:"[\"GET\",\"HEAD\",\"PUT\",\"DELETE\",\"OPTIONS\",\"TRACE\"]"`
}

// DefaultRetryConfig returns the default policy: 3 retries, 100ms initial
// backoff doubling up to 30s, 25% jitter.
func DefaultRetryConfig() RetryConfig {
	var cfg RetryConfig
	// Only fails for malformed tags.
	if err := defaults.Set(&cfg); err != nil {
		panic(err)
	}
	return cfg
}

// DisabledRetryConfig returns a policy that never retries.
func DisabledRetryConfig() RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.MaxRetries = 0
	return cfg
}

// Validate checks the configuration bounds.
func (c RetryConfig) Validate() error {
	return validation.Struct(c)
}

// IsRetryableStatus reports whether status is in RetryableStatusCodes.
func (c RetryConfig) IsRetryableStatus(status int) bool {
	return slices.Contains(c.RetryableStatusCodes, status)
}

// IsRetryableRequest reports whether req may be sent more than once:
// idempotent methods always, POST only with an idempotency key.
func (c RetryConfig) IsRetryableRequest(req *http.Request) bool {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	if slices.Contains(c.IdempotentMethods, method) {
		return true
	}
	return method == http.MethodPost && req.Header.Get(IdempotencyKeyHeader) != ""
}

// Delay returns the wait before retry attempt n (1-based). u is a uniform
// sample in [0,1) that drives the jitter.
func (c RetryConfig) Delay(attempt int, u float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := float64(c.InitialBackoff) * math.Pow(c.BackoffMultiplier, float64(attempt-1))
	jitter := 1 + (u-0.5)*2*c.JitterFactor
	d := base * jitter
	if d > float64(c.MaxBackoff) {
		return c.MaxBackoff
	}
	return time.Duration(d)
}

// retryAfter parses a Retry-After header given in seconds, capped at MaxBackoff.
func (c RetryConfig) retryAfter(h http.Header) (time.Duration, bool) {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0, false
	}
	secs, err := strconv.ParseInt(v, 10, 64)
	if err != nil || secs < 0 {
		return 0, false
	}
	d := time.Duration(secs) * time.Second
	if d > c.MaxBackoff {
		d = c.MaxBackoff
	}
	return d, true
}

// schedule implements backoff.BackOff for a RetryConfig. A Retry-After
// hint from the last response replaces the computed delay once.
type schedule struct {
	cfg     RetryConfig
	random  func() float64
	attempt int

	hint    time.Duration
	hasHint bool
}

var _ backoff.BackOff = (*schedule)(nil)

func newSchedule(cfg RetryConfig, random func() float64) *schedule {
	if random == nil {
		random = rand.Float64
	}
	return &schedule{cfg: cfg, random: random}
}

func (s *schedule) Reset() {
	s.attempt = 0
	s.hasHint = false
}

func (s *schedule) NextBackOff() time.Duration {
	s.attempt++
	if s.attempt > s.cfg.MaxRetries {
		return backoff.Stop
	}
	if s.hasHint {
		s.hasHint = false
		return s.hint
	}
	return s.cfg.Delay(s.attempt, s.random())
}

func (s *schedule) setHint(d time.Duration) {
	s.hint = d
	s.hasHint = true
}
