package segmenter

// Stabilize blends the current mask with the previous stabilized mask to
// reduce frame-to-frame flicker: out = alpha·previous + (1−alpha)·current.
// alpha = 0 returns the current mask, alpha = 1 the previous one. When
// binary is set the blend is re-thresholded at 0.5, keeping the output a
// strict occupancy mask; otherwise the linear blend is returned as-is.
//
// A nil previous mask (first frame) or a dimension mismatch (resolution
// change) must not fail the frame: both degrade to alpha = 0 behavior and
// the caller is expected to reset its previous-mask storage to the result.
func Stabilize(current, previous *Mask, alpha float32, binary bool) *Mask {
	if previous == nil || previous.Width != current.Width || previous.Height != current.Height {
		return current.Clone()
	}
	out := NewMask(current.Width, current.Height)
	for i := range current.Alpha {
		v := alpha*previous.Alpha[i] + (1-alpha)*current.Alpha[i]
		if binary {
			if v >= 0.5 {
				v = 1
			} else {
				v = 0
			}
		}
		out.Alpha[i] = v
	}
	return out
}
