package segmenter

import (
	"math"
	"runtime"
	"sync"

	"github.com/instill-ai/segmask/pkg/tensor"
)

// Decode interprets a raw model output buffer into a per-pixel class map.
// Three output conventions are recognized:
//
//   - single-channel: each value already is a class id (rounded), confidence 1
//   - multi-channel: per-pixel argmax over channels, confidence = winning
//     channel value (raw, not renormalized)
//   - flattened square: height == 1 and width == channels, reinterpreted as a
//     width×width grid of class ids, confidence 1
//
// Any other shape, and any buffer whose length disagrees with its shape,
// fails with UnsupportedShapeError.
func Decode(buf []float32, shape tensor.Shape) (*ClassMap, error) {
	if err := shape.Validate(buf); err != nil {
		return nil, &UnsupportedShapeError{Shape: shape, Reason: err.Error()}
	}
	if shape.Batch != 1 {
		return nil, &UnsupportedShapeError{Shape: shape, Reason: "batched output is not supported"}
	}

	switch {
	case shape.Height == 1 && shape.Width > 1 && shape.Width == shape.Channels:
		return decodeFlattenedSquare(buf, shape.Width), nil
	case shape.Channels == 1:
		return decodeClassIDGrid(buf, shape.Width, shape.Height), nil
	case shape.Channels > 1 && shape.Height > 1:
		return decodeArgmax(buf, shape), nil
	}
	return nil, &UnsupportedShapeError{Shape: shape}
}

// decodeClassIDGrid handles single-channel outputs where the model already
// emitted one class id per pixel.
func decodeClassIDGrid(buf []float32, width, height int) *ClassMap {
	cm := newClassMap(width, height)
	for i, v := range buf {
		cm.IDs[i] = int32(math.Round(float64(v)))
		cm.Confidences[i] = 1
	}
	return cm
}

// decodeFlattenedSquare handles outputs collapsed to a single row of
// side×side class ids (e.g. 513×513 DeepLab exports with shape [1,1,513,513]).
func decodeFlattenedSquare(buf []float32, side int) *ClassMap {
	return decodeClassIDGrid(buf, side, side)
}

// decodeArgmax handles channel-per-class outputs. The buffer is row-major
// with channels fastest, so the scores of one pixel are contiguous. Rows are
// decoded in parallel; workers write disjoint pixel ranges of a map built
// from the immutable input buffer, so the result is deterministic.
func decodeArgmax(buf []float32, shape tensor.Shape) *ClassMap {
	cm := newClassMap(shape.Width, shape.Height)
	channels := shape.Channels
	parallelRows(shape.Height, func(y0, y1 int) {
		for p := y0 * shape.Width; p < y1*shape.Width; p++ {
			scores := buf[p*channels : (p+1)*channels]
			best := argmax(scores)
			cm.IDs[p] = int32(best)
			cm.Confidences[p] = scores[best]
		}
	})
	return cm
}

// argmax returns the index of the maximum score. Ties resolve to the lowest
// channel index.
func argmax(scores []float32) int {
	best := 0
	for c := 1; c < len(scores); c++ {
		if scores[c] > scores[best] {
			best = c
		}
	}
	return best
}

// parallelRows splits [0, height) into contiguous bands and runs fn on each
// from its own goroutine. fn must only write locations owned by its band.
func parallelRows(height int, fn func(y0, y1 int)) {
	workers := runtime.GOMAXPROCS(0)
	if workers > height {
		workers = height
	}
	if workers <= 1 {
		fn(0, height)
		return
	}
	band := (height + workers - 1) / workers
	var wg sync.WaitGroup
	for y0 := 0; y0 < height; y0 += band {
		y1 := y0 + band
		if y1 > height {
			y1 = height
		}
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			fn(y0, y1)
		}(y0, y1)
	}
	wg.Wait()
}
