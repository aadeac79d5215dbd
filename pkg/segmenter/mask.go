package segmenter

// Mask is a dense occupancy grid for the target class. Values are alpha
// weights in [0, 1]; rasterization produces strictly binary values and the
// temporal stabilizer re-thresholds at 0.5, so a pixel is considered
// occupied when its value is at least 0.5.
//
// Generation is a monotonically increasing counter stamped by the pipeline
// on every newly produced mask; a throttled call returns the prior mask with
// its generation unchanged.
type Mask struct {
	Width      int
	Height     int
	Alpha      []float32
	Generation uint64
}

// NewMask returns an all-clear mask of the given dimensions.
func NewMask(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Alpha:  make([]float32, width*height),
	}
}

// At returns the alpha value at (x, y).
func (m *Mask) At(x, y int) float32 {
	return m.Alpha[y*m.Width+x]
}

// Set writes the alpha value at (x, y).
func (m *Mask) Set(x, y int, v float32) {
	m.Alpha[y*m.Width+x] = v
}

// Filled reports whether the pixel at (x, y) is occupied.
func (m *Mask) Filled(x, y int) bool {
	return m.At(x, y) >= 0.5
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	out := &Mask{
		Width:      m.Width,
		Height:     m.Height,
		Alpha:      make([]float32, len(m.Alpha)),
		Generation: m.Generation,
	}
	copy(out.Alpha, m.Alpha)
	return out
}

// Coverage returns the fraction of occupied pixels.
func (m *Mask) Coverage() float64 {
	if len(m.Alpha) == 0 {
		return 0
	}
	occupied := 0
	for _, v := range m.Alpha {
		if v >= 0.5 {
			occupied++
		}
	}
	return float64(occupied) / float64(len(m.Alpha))
}
