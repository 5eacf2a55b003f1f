package spatial

import "fmt"

// Policy holds the fixed parameters of the refinement loop.
type Policy struct {
	// MaxIterations caps the number of crop steps.
	MaxIterations int
	// ConvergenceThreshold stops refinement once a crop still covers more than
	// this fraction of the original area.
	ConvergenceThreshold float64
	// MinSize stops refinement once both sides of the working image are
	// smaller than this many pixels.
	MinSize int
	Rows    int
	Cols    int
	// MaxImageSide bounds the image sent to the oracle. Zero disables scaling.
	MaxImageSide int
	// Concurrency bounds parallel targets in DetectMultiple.
	Concurrency int
}

func DefaultPolicy() Policy {
	return Policy{
		MaxIterations:        4,
		ConvergenceThreshold: 0.6,
		MinSize:              512,
		Rows:                 4,
		Cols:                 3,
		MaxImageSide:         2048,
		Concurrency:          1,
	}
}

func (p Policy) Validate() error {
	switch {
	case p.MaxIterations < 0:
		return fmt.Errorf("%w: max iterations must not be negative", ErrInvalidPolicy)
	case p.ConvergenceThreshold <= 0 || p.ConvergenceThreshold > 1:
		return fmt.Errorf("%w: convergence threshold must be in (0, 1]", ErrInvalidPolicy)
	case p.MinSize < 0:
		return fmt.Errorf("%w: min size must not be negative", ErrInvalidPolicy)
	case p.Rows < 1 || p.Cols < 1:
		return fmt.Errorf("%w: grid must be at least 1x1", ErrInvalidPolicy)
	case p.MaxImageSide < 0:
		return fmt.Errorf("%w: max image side must not be negative", ErrInvalidPolicy)
	case p.Concurrency < 1:
		return fmt.Errorf("%w: concurrency must be at least 1", ErrInvalidPolicy)
	}
	return nil
}
