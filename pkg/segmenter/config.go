package segmenter

import (
	"time"

	"github.com/pkg/errors"
)

// Defaults applied by DefaultConfig. The confidence threshold differs by
// mode: argmax decoding already picked the best class per pixel, so the
// threshold is effectively unused there, while probability mode compares
// against raw (non-renormalized) channel scores which tend to be small.
const (
	DefaultLockCoverageFraction = 0.05
	DefaultProbabilityThreshold = 0.03
	DefaultArgmaxThreshold      = 0.5
	DefaultSmoothingFactor      = 0.5
	DefaultKernelSize           = 3
	DefaultRotationInterval     = 60
	DefaultMinInterval          = 100 * time.Millisecond
)

// Config is the full configuration surface of a pipeline. Feature flags
// replace the base/enhanced predictor split of earlier implementations.
type Config struct {
	// TargetClassID is the class id to rasterize in fixed mode. Ignored when
	// EnableAdaptiveDetection is set.
	TargetClassID int32
	// CandidateClassIDs is the ordered candidate list searched in adaptive
	// mode. Order expresses caller preference and is the rotation order.
	CandidateClassIDs []int32
	// EnableAdaptiveDetection switches the resolver from fixed to searching.
	EnableAdaptiveDetection bool
	// LockCoverageFraction is the coverage a candidate must exceed in a
	// single frame to lock the identity search. Must be in (0, 1].
	LockCoverageFraction float64
	// ConfidenceThreshold gates pixels in probability mode and histogram
	// counting in adaptive mode. Clamped to [0, 1], never rejected.
	ConfidenceThreshold float32
	// UseArgmaxMode rasterizes on class id alone, ignoring confidences.
	UseArgmaxMode bool

	EnableTemporalSmoothing bool
	// SmoothingFactor is the temporal blend weight. Higher values weight the
	// previous frame more; 0 disables smoothing in effect, 1 freezes the
	// first produced mask. Must be in [0, 1].
	SmoothingFactor float32

	EnableNoiseReduction bool
	// KernelSize is the full width of the majority-vote window. The derived
	// radius is KernelSize/2, clamped to MaxKernelRadius.
	KernelSize int

	// MinInvocationInterval rate-limits full pipeline executions. Calls
	// arriving earlier get the last stable mask back without recomputation.
	// Zero disables throttling.
	MinInvocationInterval time.Duration
	// RotationInterval is how many frames the adaptive search spends on one
	// candidate before advancing to the next.
	RotationInterval int
}

// DefaultConfig returns a fixed-mode configuration with all cleanup stages
// enabled.
func DefaultConfig() Config {
	return Config{
		LockCoverageFraction:    DefaultLockCoverageFraction,
		ConfidenceThreshold:     DefaultArgmaxThreshold,
		UseArgmaxMode:           true,
		EnableTemporalSmoothing: true,
		SmoothingFactor:         DefaultSmoothingFactor,
		EnableNoiseReduction:    true,
		KernelSize:              DefaultKernelSize,
		MinInvocationInterval:   DefaultMinInterval,
		RotationInterval:        DefaultRotationInterval,
	}
}

// normalize applies the clamps the configuration contract allows. Only the
// confidence threshold is clamped silently; everything else out of range is
// a validation error.
func (c *Config) normalize() {
	if c.ConfidenceThreshold < 0 {
		c.ConfidenceThreshold = 0
	}
	if c.ConfidenceThreshold > 1 {
		c.ConfidenceThreshold = 1
	}
}

// Validate rejects configurations that cannot produce a working pipeline.
func (c Config) Validate() error {
	if c.EnableAdaptiveDetection {
		if len(c.CandidateClassIDs) == 0 {
			return errors.Wrap(ErrInvalidConfiguration, "adaptive detection requires a non-empty candidate list")
		}
		if c.RotationInterval <= 0 {
			return errors.Wrap(ErrInvalidConfiguration, "rotation interval must be positive")
		}
	}
	if c.LockCoverageFraction <= 0 || c.LockCoverageFraction > 1 {
		return errors.Wrap(ErrInvalidConfiguration, "lock coverage fraction must be in (0, 1]")
	}
	if c.EnableTemporalSmoothing && (c.SmoothingFactor < 0 || c.SmoothingFactor > 1) {
		return errors.Wrap(ErrInvalidConfiguration, "smoothing factor must be in [0, 1]")
	}
	if c.EnableNoiseReduction && c.KernelSize <= 0 {
		return errors.Wrap(ErrInvalidConfiguration, "kernel size must be positive")
	}
	if c.MinInvocationInterval < 0 {
		return errors.Wrap(ErrInvalidConfiguration, "min invocation interval must not be negative")
	}
	return nil
}
