package segmenter

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/instill-ai/segmask/pkg/tensor"
)

var wallFrame = []float32{
	9, 0, 0, 0,
	0, 9, 9, 0,
	0, 9, 9, 0,
	0, 0, 0, 9,
}

var wallShape = tensor.Shape{Batch: 1, Height: 4, Width: 4, Channels: 1}

func fixedConfig() Config {
	cfg := DefaultConfig()
	cfg.TargetClassID = 9
	cfg.EnableNoiseReduction = false
	cfg.EnableTemporalSmoothing = false
	cfg.MinInvocationInterval = 0
	return cfg
}

func TestPipeline_FixedEndToEnd(t *testing.T) {
	pipeline, err := NewPipeline(fixedConfig())
	assert.NoError(t, err)
	defer pipeline.Close()

	mask, err := pipeline.Process(wallFrame, wallShape, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), mask.Generation)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, wallFrame[y*4+x] == 9, mask.Filled(x, y), "pixel (%d,%d)", x, y)
		}
	}
	assert.Same(t, mask, pipeline.LastMask())
}

func TestPipeline_Throttle(t *testing.T) {
	cfg := fixedConfig()
	cfg.MinInvocationInterval = 100 * time.Millisecond
	pipeline, err := NewPipeline(cfg)
	assert.NoError(t, err)
	defer pipeline.Close()

	start := time.Now()
	first, err := pipeline.Process(wallFrame, wallShape, start)
	assert.NoError(t, err)

	// 10ms later, even a completely different frame must come back as the
	// prior mask without recomputation
	blank := make([]float32, len(wallFrame))
	second, err := pipeline.Process(blank, wallShape, start.Add(10*time.Millisecond))
	assert.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, uint64(1), second.Generation)

	third, err := pipeline.Process(blank, wallShape, start.Add(100*time.Millisecond))
	assert.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, uint64(2), third.Generation)
	assert.Equal(t, float64(0), third.Coverage())
}

func TestPipeline_UnsupportedShapeKeepsPriorMask(t *testing.T) {
	pipeline, err := NewPipeline(fixedConfig())
	assert.NoError(t, err)
	defer pipeline.Close()

	stable, err := pipeline.Process(wallFrame, wallShape, time.Now())
	assert.NoError(t, err)

	bad := tensor.Shape{Batch: 1, Height: 1, Width: 3, Channels: 4}
	mask, err := pipeline.Process(make([]float32, 12), bad, time.Now().Add(time.Second))
	var shapeErr *UnsupportedShapeError
	assert.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, bad, shapeErr.Shape)
	assert.Same(t, stable, mask)
}

func TestPipeline_TemporalSmoothing(t *testing.T) {
	cfg := fixedConfig()
	cfg.EnableTemporalSmoothing = true
	cfg.SmoothingFactor = 1
	pipeline, err := NewPipeline(cfg)
	assert.NoError(t, err)
	defer pipeline.Close()

	now := time.Now()
	first, err := pipeline.Process(wallFrame, wallShape, now)
	assert.NoError(t, err)

	// alpha=1 freezes the first mask: a blank frame changes nothing
	blank := make([]float32, len(wallFrame))
	second, err := pipeline.Process(blank, wallShape, now.Add(time.Second))
	assert.NoError(t, err)
	assert.Equal(t, first.Coverage(), second.Coverage())

	// a resolution change resets temporal state instead of crashing
	smallShape := tensor.Shape{Batch: 1, Height: 2, Width: 2, Channels: 1}
	third, err := pipeline.Process([]float32{9, 0, 0, 9}, smallShape, now.Add(2*time.Second))
	assert.NoError(t, err)
	assert.Equal(t, 2, third.Width)
	assert.True(t, third.Filled(0, 0))
	assert.False(t, third.Filled(1, 0))
}

func TestPipeline_AdaptiveLockAndReset(t *testing.T) {
	cfg := adaptiveConfig()
	cfg.EnableNoiseReduction = false
	cfg.EnableTemporalSmoothing = false
	cfg.MinInvocationInterval = 0
	pipeline, err := NewPipeline(cfg)
	assert.NoError(t, err)
	defer pipeline.Close()

	// a frame where class 7 dominates locks the identity search
	frame := make([]float32, 100)
	for i := 0; i < 60; i++ {
		frame[i] = 7
	}
	shape := tensor.Shape{Batch: 1, Height: 10, Width: 10, Channels: 1}
	_, err = pipeline.Process(frame, shape, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, ModeLocked, pipeline.ResolverMode())
	assert.Equal(t, int32(7), pipeline.TargetClassID())

	pipeline.Reset()
	assert.Equal(t, ModeSearching, pipeline.ResolverMode())
	assert.Nil(t, pipeline.LastMask())
}

func TestPipeline_CompletionCallback(t *testing.T) {
	cfg := fixedConfig()
	cfg.MinInvocationInterval = 100 * time.Millisecond

	var completed []*Mask
	pipeline, err := NewPipeline(cfg, WithCompletion(func(m *Mask) {
		completed = append(completed, m)
	}))
	assert.NoError(t, err)
	defer pipeline.Close()

	start := time.Now()
	_, err = pipeline.Process(wallFrame, wallShape, start)
	assert.NoError(t, err)
	// throttled call: no new mask, no callback
	_, err = pipeline.Process(wallFrame, wallShape, start.Add(time.Millisecond))
	assert.NoError(t, err)
	assert.Len(t, completed, 1)
}

func TestPipeline_Close(t *testing.T) {
	pipeline, err := NewPipeline(fixedConfig())
	assert.NoError(t, err)

	pipeline.Close()
	_, err = pipeline.Process(wallFrame, wallShape, time.Now())
	assert.True(t, errors.Is(err, ErrPipelineClosed))
}

func TestNewPipeline_InvalidConfiguration(t *testing.T) {
	t.Run("EmptyCandidateList", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.EnableAdaptiveDetection = true
		_, err := NewPipeline(cfg)
		assert.True(t, errors.Is(err, ErrInvalidConfiguration))
	})

	t.Run("SmoothingFactorOutOfRange", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.SmoothingFactor = 1.5
		_, err := NewPipeline(cfg)
		assert.True(t, errors.Is(err, ErrInvalidConfiguration))
	})

	t.Run("ConfidenceThresholdIsClamped", func(t *testing.T) {
		cfg := fixedConfig()
		cfg.ConfidenceThreshold = 7
		pipeline, err := NewPipeline(cfg)
		assert.NoError(t, err)
		pipeline.Close()
	})
}
