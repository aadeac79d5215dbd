package tensor

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Shape describes the layout of a raw model output buffer. The segmentation
// models this library consumes always emit a single batch.
type Shape struct {
	Batch    int
	Height   int
	Width    int
	Channels int
}

// ElementCount returns the number of float elements a buffer of this shape
// must hold.
func (s Shape) ElementCount() int {
	return s.Batch * s.Height * s.Width * s.Channels
}

func (s Shape) String() string {
	return fmt.Sprintf("[%d,%d,%d,%d]", s.Batch, s.Height, s.Width, s.Channels)
}

// Validate checks the element-count invariant of a raw buffer against the
// shape. A buffer whose length disagrees with the shape is rejected.
func (s Shape) Validate(buf []float32) error {
	if s.Batch <= 0 || s.Height <= 0 || s.Width <= 0 || s.Channels <= 0 {
		return fmt.Errorf("non-positive dimension in shape %v", s)
	}
	if len(buf) != s.ElementCount() {
		return fmt.Errorf("buffer holds %d elements, shape %v requires %d", len(buf), s, s.ElementCount())
	}
	return nil
}

// DeserializeFloat32 decodes a little-endian float32 tensor payload.
func DeserializeFloat32(encoded []byte) []float32 {
	if len(encoded) == 0 {
		return []float32{}
	}
	arr := make([]float32, len(encoded)/4)
	for i := range arr {
		arr[i] = math.Float32frombits(binary.LittleEndian.Uint32(encoded[i*4 : i*4+4]))
	}
	return arr
}

// SerializeFloat32 encodes a float32 tensor as little-endian bytes.
func SerializeFloat32(values []float32) []byte {
	res := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(res[i*4:i*4+4], math.Float32bits(v))
	}
	return res
}
