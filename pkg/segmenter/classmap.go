package segmenter

// ClassMap holds the per-pixel decode result for one frame: a class id and a
// confidence per pixel, row-major. A ClassMap is a per-call value owned by
// the pipeline step that created it and is discarded after use.
type ClassMap struct {
	Width  int
	Height int

	IDs         []int32
	Confidences []float32
}

func newClassMap(width, height int) *ClassMap {
	return &ClassMap{
		Width:       width,
		Height:      height,
		IDs:         make([]int32, width*height),
		Confidences: make([]float32, width*height),
	}
}

// Pixels returns the number of spatial pixels in the map.
func (m *ClassMap) Pixels() int {
	return m.Width * m.Height
}

// At returns the class id and confidence at (x, y).
func (m *ClassMap) At(x, y int) (int32, float32) {
	i := y*m.Width + x
	return m.IDs[i], m.Confidences[i]
}

// Histogram counts pixels per class id for the current frame. Pixels whose
// confidence falls below minConfidence do not count. The histogram is
// rebuilt on every call and never persisted.
func (m *ClassMap) Histogram(minConfidence float32) map[int32]int {
	hist := make(map[int32]int)
	for i, id := range m.IDs {
		if m.Confidences[i] < minConfidence {
			continue
		}
		hist[id]++
	}
	return hist
}
