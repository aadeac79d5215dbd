package segmenter

// MaxKernelRadius bounds the majority-vote neighborhood so per-frame cost
// stays bounded regardless of configuration.
const MaxKernelRadius = 5

// Denoise applies a majority-vote morphological filter. Every pixel whose
// full radius-r neighborhood lies inside the mask is replaced by the
// majority value of the (2r+1)² window, read exclusively from the input
// mask. Border pixels within r of an edge pass through unchanged. The input
// is never mutated, so neighbor votes are independent of processing order
// and the row-parallel execution is deterministic.
func Denoise(src *Mask, radius int) *Mask {
	if radius < 0 {
		radius = 0
	}
	if radius > MaxKernelRadius {
		radius = MaxKernelRadius
	}
	out := src.Clone()
	if radius == 0 || src.Width <= 2*radius || src.Height <= 2*radius {
		return out
	}

	// Majority over an odd-sized window: strictly more than half the votes.
	window := (2*radius + 1) * (2*radius + 1)
	needed := window/2 + 1

	parallelRows(src.Height-2*radius, func(y0, y1 int) {
		for y := y0 + radius; y < y1+radius; y++ {
			for x := radius; x < src.Width-radius; x++ {
				votes := 0
				for dy := -radius; dy <= radius; dy++ {
					for dx := -radius; dx <= radius; dx++ {
						if src.Filled(x+dx, y+dy) {
							votes++
						}
					}
				}
				if votes >= needed {
					out.Alpha[y*src.Width+x] = 1
				} else {
					out.Alpha[y*src.Width+x] = 0
				}
			}
		}
	})
	return out
}

// KernelRadius derives the vote radius from a configured kernel size,
// clamped to MaxKernelRadius.
func KernelRadius(kernelSize int) int {
	r := kernelSize / 2
	if r > MaxKernelRadius {
		return MaxKernelRadius
	}
	if r < 0 {
		return 0
	}
	return r
}
