package segmenter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/instill-ai/segmask/pkg/tensor"
)

func TestRasterize_ArgmaxMode(t *testing.T) {
	buf := []float32{
		9, 0, 0, 0,
		0, 9, 9, 0,
		0, 9, 9, 0,
		0, 0, 0, 9,
	}
	cm, err := Decode(buf, tensor.Shape{Batch: 1, Height: 4, Width: 4, Channels: 1})
	assert.NoError(t, err)

	mask := Rasterize(cm, 9, 0.5, true)
	assert.Equal(t, 4, mask.Width)
	assert.Equal(t, 4, mask.Height)

	// the mask must match the positions of the 9s exactly
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, buf[y*4+x] == 9, mask.Filled(x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestRasterize_ProbabilityMode(t *testing.T) {
	cm := newClassMap(2, 2)
	cm.IDs = []int32{4, 4, 4, 5}
	cm.Confidences = []float32{0.9, 0.2, 0.5, 0.9}

	mask := Rasterize(cm, 4, 0.5, false)
	assert.True(t, mask.Filled(0, 0))
	assert.False(t, mask.Filled(1, 0), "below threshold")
	assert.True(t, mask.Filled(0, 1), "at threshold")
	assert.False(t, mask.Filled(1, 1), "wrong class")

	// argmax mode ignores confidences entirely
	mask = Rasterize(cm, 4, 0.5, true)
	assert.True(t, mask.Filled(1, 0))
}

func TestRasterize_NoTargetIsEmptyMask(t *testing.T) {
	cm := classMapWithCoverage(4, 99, 1)
	mask := Rasterize(cm, 7, 0.5, true)
	assert.Equal(t, float64(0), mask.Coverage())
	assert.Equal(t, cm.Pixels(), len(mask.Alpha))
}
