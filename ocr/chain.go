package ocr

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Attempt records what happened with one engine during a chain run.
type Attempt struct {
	Engine  string
	Skipped bool // true when the engine was unavailable
	Reason  string
}

// AllFailedError is returned when no engine produced usable text. It
// names every engine that was tried or skipped and why.
type AllFailedError struct {
	Attempts []Attempt
}

func (e *AllFailedError) Error() string {
	if len(e.Attempts) == 0 {
		return "ocr: no engines configured"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		verb := "failed"
		if a.Skipped {
			verb = "skipped"
		}
		parts = append(parts, fmt.Sprintf("%s %s (%s)", a.Engine, verb, a.Reason))
	}
	return "ocr: all engines failed: " + strings.Join(parts, "; ")
}

// Chain tries engines in priority order until one succeeds.
type Chain struct {
	engines   []Engine
	threshold float64
	cache     *Cache
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithThreshold sets the minimum confidence (0-100) a result must
// reach to be accepted.
func WithThreshold(threshold float64) ChainOption {
	return func(c *Chain) { c.threshold = threshold }
}

// WithCache attaches a result cache to the chain.
func WithCache(cache *Cache) ChainOption {
	return func(c *Chain) { c.cache = cache }
}

// NewChain builds a chain from the given engines, ordered by priority.
func NewChain(engines []Engine, opts ...ChainOption) *Chain {
	sorted := make([]Engine, len(engines))
	copy(sorted, engines)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})

	c := &Chain{engines: sorted}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Engines returns the chain's engines in the order they are tried.
func (c *Chain) Engines() []Engine {
	return c.engines
}

// Extract runs the chain on the encoded image. It returns the first
// acceptable result along with the name of the engine that produced
// it. First success wins; lower-priority engines are not consulted.
// When every engine is skipped or fails, the error is *AllFailedError.
func (c *Chain) Extract(ctx context.Context, image []byte, lang string) (*Result, string, error) {
	if c.cache != nil {
		if res, engine, ok := c.cache.Get(image, lang); ok {
			return res, engine, nil
		}
	}

	var attempts []Attempt
	for _, eng := range c.engines {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}

		// Availability is evaluated per run, so a binary installed
		// or a key configured since the last call is picked up.
		if !eng.Available() {
			attempts = append(attempts, Attempt{Engine: eng.Name(), Skipped: true, Reason: "unavailable"})
			continue
		}

		res, err := eng.Recognize(ctx, image, lang)
		switch {
		case err != nil:
			attempts = append(attempts, Attempt{Engine: eng.Name(), Reason: err.Error()})
		case strings.TrimSpace(res.Text) == "":
			attempts = append(attempts, Attempt{Engine: eng.Name(), Reason: "empty result"})
		case res.Confidence < c.threshold:
			attempts = append(attempts, Attempt{
				Engine: eng.Name(),
				Reason: fmt.Sprintf("confidence %.1f below threshold %.1f", res.Confidence, c.threshold),
			})
		default:
			if c.cache != nil {
				c.cache.Add(image, lang, eng.Name(), res)
			}
			return res, eng.Name(), nil
		}
	}

	return nil, "", &AllFailedError{Attempts: attempts}
}
