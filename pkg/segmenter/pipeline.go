// Package segmenter turns raw neural-network segmentation tensors into
// stable, denoised occupancy masks for one target class. The per-frame
// steps (decode, rasterize, denoise, stabilize) are pure functions; Pipeline
// is the one thin stateful object, holding only the resolver state, the
// previous stabilized mask and the throttle gate.
package segmenter

import (
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"github.com/instill-ai/segmask/pkg/tensor"
)

// CompletionFunc is invoked with every newly produced mask, from the calling
// goroutine, while the pipeline lock is held. It replaces ambient
// process-wide "segmentation completed" event wiring.
type CompletionFunc func(*Mask)

// Pipeline composes decode → resolve → rasterize → denoise → stabilize
// behind a frame throttle. A pipeline executes synchronously on whichever
// goroutine calls Process; the internal mutex serializes overlapping calls
// because the resolver and temporal state are mutated across frames.
// Independent pipeline instances share nothing.
type Pipeline struct {
	uid    uuid.UUID
	cfg    Config
	logger *zap.Logger

	mu         sync.Mutex
	resolver   *ResolverState
	previous   *Mask
	gate       throttle
	lastMask   *Mask
	generation uint64
	onComplete CompletionFunc
	closed     bool
}

// Option configures a Pipeline at construction.
type Option func(*Pipeline)

// WithLogger attaches a zap logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithCompletion registers a callback invoked with every newly produced
// mask. Throttled and failed frames do not trigger it.
func WithCompletion(fn CompletionFunc) Option {
	return func(p *Pipeline) {
		p.onComplete = fn
	}
}

// NewPipeline validates the configuration and builds a pipeline. The
// confidence threshold is clamped to [0, 1]; every other out-of-range value
// is rejected with ErrInvalidConfiguration.
func NewPipeline(cfg Config, opts ...Option) (*Pipeline, error) {
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		uid:      uid,
		cfg:      cfg,
		logger:   zap.NewNop(),
		resolver: newResolverState(cfg),
		gate:     throttle{minInterval: cfg.MinInvocationInterval},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(zap.String("pipeline", uid.String()))
	return p, nil
}

// UID returns the pipeline instance id used in log correlation.
func (p *Pipeline) UID() string {
	return p.uid.String()
}

// Process runs the full chain on one raw output frame. now is the caller's
// clock and drives the throttle.
//
// Throttled calls return the last stable mask unchanged, without decoding.
// An unsupported tensor shape returns the prior stable mask together with
// the error, so downstream rendering never loses its input. Process never
// leaves the pipeline in a state that requires a restart.
func (p *Pipeline) Process(buf []float32, shape tensor.Shape, now time.Time) (*Mask, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPipelineClosed
	}
	if !p.gate.allow(now) {
		return p.lastMask, nil
	}

	cm, err := Decode(buf, shape)
	if err != nil {
		p.logger.Warn("dropping frame, keeping prior mask", zap.Error(err))
		return p.lastMask, err
	}

	targetID := p.resolver.resolve(cm)
	mask := Rasterize(cm, targetID, p.cfg.ConfidenceThreshold, p.cfg.UseArgmaxMode)

	if p.cfg.EnableNoiseReduction {
		mask = Denoise(mask, KernelRadius(p.cfg.KernelSize))
	}
	if p.cfg.EnableTemporalSmoothing {
		if p.previous != nil && (p.previous.Width != mask.Width || p.previous.Height != mask.Height) {
			p.logger.Warn("frame dimensions changed, resetting temporal state",
				zap.Int("previous_width", p.previous.Width),
				zap.Int("previous_height", p.previous.Height),
				zap.Int("width", mask.Width),
				zap.Int("height", mask.Height))
			p.previous = nil
		}
		mask = Stabilize(mask, p.previous, p.cfg.SmoothingFactor, true)
		p.previous = mask
	}

	p.generation++
	mask.Generation = p.generation
	p.lastMask = mask
	p.gate.mark(now)

	if p.onComplete != nil {
		p.onComplete(mask)
	}
	p.logger.Debug("frame processed",
		zap.Uint64("generation", mask.Generation),
		zap.Int32("target_class", targetID),
		zap.String("resolver_mode", p.resolver.Mode().String()),
		zap.Float64("coverage", mask.Coverage()))
	return mask, nil
}

// LastMask returns the most recently produced stable mask, or nil before the
// first successful frame.
func (p *Pipeline) LastMask() *Mask {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastMask
}

// ResolverMode returns the current state of the identity search.
func (p *Pipeline) ResolverMode() ResolverMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resolver.Mode()
}

// TargetClassID returns the class id the resolver currently stands behind.
func (p *Pipeline) TargetClassID() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resolver.TargetID()
}

// Reset clears all cross-frame state: the identity search (including a
// locked identity), the previous stabilized mask and the throttle window.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resolver.reset()
	p.previous = nil
	p.lastMask = nil
	p.generation = 0
	p.gate.reset()
}

// Close releases retained masks and marks the pipeline unusable. Further
// Process calls return ErrPipelineClosed.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.previous = nil
	p.lastMask = nil
}
