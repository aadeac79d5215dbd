package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShape_Validate(t *testing.T) {
	shape := Shape{Batch: 1, Height: 2, Width: 3, Channels: 4}
	assert.Equal(t, 24, shape.ElementCount())
	assert.NoError(t, shape.Validate(make([]float32, 24)))
	assert.Error(t, shape.Validate(make([]float32, 23)))
	assert.Error(t, Shape{Batch: 1, Height: 0, Width: 3, Channels: 4}.Validate([]float32{}))
	assert.Error(t, Shape{Batch: 1, Height: 2, Width: -3, Channels: 4}.Validate(make([]float32, 24)))
}

func TestFloat32RoundTrip(t *testing.T) {
	values := []float32{0, 1, -2.5, 0.00325, 513}
	assert.Equal(t, values, DeserializeFloat32(SerializeFloat32(values)))
	assert.Equal(t, []float32{}, DeserializeFloat32(nil))
}
