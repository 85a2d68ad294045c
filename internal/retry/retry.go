package retry

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
)

// Config holds the backoff parameters of a Retryer.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	JitterRange float64 // 0.0 to 1.0
	Name        string
	// Retryable decides whether an error is worth another attempt.
	// nil retries every error.
	Retryable func(error) bool
}

func DefaultConfig(name string) Config {
	return Config{
		MaxAttempts: 5,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		Multiplier:  2.0,
		JitterRange: 0.1,
		Name:        name,
	}
}

// Retryer runs a function with exponential backoff and jitter.
type Retryer struct {
	config Config
	log    logrus.FieldLogger

	mu  sync.Mutex
	rng *rand.Rand
}

func New(config Config, log logrus.FieldLogger) *Retryer {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = 500 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 10 * time.Second
	}
	if config.Multiplier <= 1.0 {
		config.Multiplier = 2.0
	}
	if config.JitterRange < 0 || config.JitterRange > 1.0 {
		config.JitterRange = 0.1
	}
	if config.Name == "" {
		config.Name = "retry"
	}
	return &Retryer{
		config: config,
		log:    log,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Do calls fn until it succeeds, returns a non-retryable error, the
// attempts run out or ctx is done.
func (r *Retryer) Do(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			if attempt > 1 {
				r.log.Infof("[%s] sucesso na tentativa %d", r.config.Name, attempt)
			}
			return nil
		}
		lastErr = err

		if r.config.Retryable != nil && !r.config.Retryable(err) {
			return err
		}
		if attempt == r.config.MaxAttempts {
			break
		}

		delay := r.delay(attempt)
		r.log.Warnf("[%s] tentativa %d falhou: %v. Nova tentativa em %v", r.config.Name, attempt, err, delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return errors.Wrapf(lastErr, "%d attempts exceeded", r.config.MaxAttempts)
}

func (r *Retryer) delay(attempt int) time.Duration {
	d := float64(r.config.BaseDelay) * math.Pow(r.config.Multiplier, float64(attempt-1))
	if d > float64(r.config.MaxDelay) {
		d = float64(r.config.MaxDelay)
	}
	if r.config.JitterRange > 0 {
		r.mu.Lock()
		jitter := r.rng.Float64() * r.config.JitterRange * d
		up := r.rng.Float64() < 0.5
		r.mu.Unlock()
		if up {
			d += jitter
		} else {
			d -= jitter
		}
	}
	if d < float64(r.config.BaseDelay) {
		d = float64(r.config.BaseDelay)
	}
	return time.Duration(d)
}
