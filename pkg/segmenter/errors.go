package segmenter

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/instill-ai/segmask/pkg/tensor"
)

// ErrInvalidConfiguration is returned by NewPipeline when the configuration
// cannot produce a working pipeline. It is never raised after construction.
var ErrInvalidConfiguration = errors.New("invalid pipeline configuration")

// ErrPipelineClosed is returned by Process after Close has been called.
var ErrPipelineClosed = errors.New("pipeline is closed")

// UnsupportedShapeError reports a tensor shape that matches none of the
// recognized model output conventions, or a buffer whose length disagrees
// with its shape. It is fatal for the frame, not for the pipeline: the
// caller keeps the prior stable mask.
type UnsupportedShapeError struct {
	Shape  tensor.Shape
	Reason string
}

func (e *UnsupportedShapeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported model output shape %v: %s", e.Shape, e.Reason)
	}
	return fmt.Sprintf("unsupported model output shape %v", e.Shape)
}
