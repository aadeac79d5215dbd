package segmenter

// Rasterize projects a class map onto a binary occupancy mask for the target
// class. In argmax mode a pixel is set iff its class id matches the target;
// decoding already selected the best class, so confidences are ignored. In
// probability mode the pixel must additionally carry at least threshold
// confidence. The output always has the class map's dimensions and every
// pixel is written.
func Rasterize(cm *ClassMap, targetID int32, threshold float32, argmaxMode bool) *Mask {
	mask := NewMask(cm.Width, cm.Height)
	for i, id := range cm.IDs {
		if id != targetID {
			continue
		}
		if !argmaxMode && cm.Confidences[i] < threshold {
			continue
		}
		mask.Alpha[i] = 1
	}
	return mask
}
