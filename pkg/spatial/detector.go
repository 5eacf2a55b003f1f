// Package spatial localizes a described object by repeatedly overlaying a
// numbered grid, asking an oracle which cells hold the object and cropping to
// them.
package spatial

import (
	"context"
	"errors"
	"image"
	"strings"

	"GridVision/pkg/confidence"
	contextPkg "GridVision/pkg/context"
	"GridVision/pkg/grid"
	"GridVision/pkg/oracle"
	"GridVision/pkg/render"
	"github.com/sirupsen/logrus"
)

var (
	ErrEmptyImage    = errors.New("spatial: image is empty")
	ErrEmptyTarget   = errors.New("spatial: target description is empty")
	ErrNoTargets     = errors.New("spatial: no targets given")
	ErrInvalidPolicy = errors.New("spatial: invalid policy")
)

// Step reports one oracle round. Region is the working image in original
// coordinates at the time of the query.
type Step struct {
	Target    string
	Iteration int
	Final     bool
	Region    grid.BoundingBox
	Cells     []int
	Scores    []float64
}

// Result is the outcome for one target. Image is a fresh copy of the original
// with the detection drawn on it, or an undecorated copy when nothing was
// detected.
type Result struct {
	Target     string
	BBox       grid.BoundingBox
	Confidence confidence.Level
	Score      float64
	Iterations int
	Detected   bool
	Image      *image.RGBA
}

type Option func(*Detector)

func WithPolicy(p Policy) Option {
	return func(d *Detector) {
		d.policy = p
	}
}

// WithObserver registers fn to receive every Step. With Concurrency above 1
// fn is called from several goroutines.
func WithObserver(fn func(Step)) Option {
	return func(d *Detector) {
		d.observer = fn
	}
}

// Detector is safe for concurrent use; each call owns its image buffers.
type Detector struct {
	oracle   oracle.Oracle
	log      *logrus.Logger
	policy   Policy
	observer func(Step)
}

func New(o oracle.Oracle, log *logrus.Logger, opts ...Option) (*Detector, error) {
	d := &Detector{
		oracle: o,
		log:    log,
		policy: DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if err := d.policy.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Detector) Policy() Policy {
	return d.policy
}

// Observe returns a copy of d that reports to fn instead of d's observer.
func (d *Detector) Observe(fn func(Step)) *Detector {
	c := *d
	c.observer = fn
	return &c
}

// Detect runs the refinement loop for one target. A run that finds nothing is
// a valid Result with Detected false; errors are reserved for bad input and
// oracle transport failures.
func (d *Detector) Detect(ctx context.Context, img image.Image, target string) (*Result, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, ErrEmptyTarget
	}

	fields := logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"target":     target,
	}

	original := render.Clone(img)
	originalArea := float64(original.Bounds().Dx() * original.Bounds().Dy())

	current := original
	var offset image.Point
	iteration := 0

	for iteration < d.policy.MaxIterations {
		if d.shouldStop(current, originalArea, iteration) {
			break
		}

		resp, cellMap, err := d.query(ctx, current, target)
		if err != nil {
			return nil, err
		}
		d.notify(Step{
			Target:    target,
			Iteration: iteration,
			Region:    regionOf(current, offset),
			Cells:     resp.Cells,
			Scores:    resp.ConfidenceScores,
		})

		if resp.IsEmpty() {
			d.log.WithFields(fields).WithField("iteration", iteration).Debug("Oracle selected no cells, stopping refinement")
			break
		}

		box := cellMap.BoundingBox(resp.Cells)
		if box.Area() == 0 {
			d.log.WithFields(fields).WithField("iteration", iteration).Warn("Oracle selected only unknown cells, stopping refinement")
			break
		}

		region := box.Offset(offset)
		current = render.Crop(current, box.Rect())
		offset = region.Min()
		iteration++

		d.log.WithFields(fields).WithFields(logrus.Fields{
			"iteration": iteration,
			"region":    region.String(),
		}).Debug("Cropped to selected cells")
	}

	resp, cellMap, err := d.query(ctx, current, target)
	if err != nil {
		return nil, err
	}
	d.notify(Step{
		Target:    target,
		Iteration: iteration,
		Final:     true,
		Region:    regionOf(current, offset),
		Cells:     resp.Cells,
		Scores:    resp.ConfidenceScores,
	})

	result := &Result{
		Target:     target,
		Confidence: confidence.Uncertain,
		Iterations: iteration,
		Image:      original,
	}

	score, ok := resp.MeanScore()
	local := cellMap.BoundingBox(resp.Cells)
	if resp.IsEmpty() || !ok || local.Area() == 0 {
		d.log.WithFields(fields).WithField("iterations", iteration).Info("No object detected")
		return result, nil
	}

	result.BBox = local.Offset(offset)
	result.Score = score
	result.Confidence = confidence.Categorize(score)
	result.Detected = true
	Annotate(result.Image, result)

	d.log.WithFields(fields).WithFields(logrus.Fields{
		"bbox":       result.BBox.String(),
		"confidence": result.Confidence,
		"score":      result.Score,
		"iterations": iteration,
	}).Info("Object detected")

	return result, nil
}

// shouldStop is the terminal check run before each crop query. The area
// check only applies once a crop has happened since the uncropped image is
// always at ratio 1.
func (d *Detector) shouldStop(current image.Image, originalArea float64, iteration int) bool {
	b := current.Bounds()
	if b.Dx() < d.policy.MinSize && b.Dy() < d.policy.MinSize {
		return true
	}
	if iteration > 0 && float64(b.Dx()*b.Dy())/originalArea > d.policy.ConvergenceThreshold {
		return true
	}
	return false
}

func (d *Detector) query(ctx context.Context, current image.Image, target string) (oracle.Response, grid.CellMap, error) {
	annotated, cellMap, err := grid.Overlay(current, d.policy.Rows, d.policy.Cols)
	if err != nil {
		return oracle.Response{}, grid.CellMap{}, err
	}

	req, err := oracle.NewRequest(annotated, target, d.policy.MaxImageSide)
	if err != nil {
		return oracle.Response{}, grid.CellMap{}, err
	}

	resp, err := d.oracle.Query(ctx, req)
	if err != nil {
		return oracle.Response{}, grid.CellMap{}, err
	}
	return resp, cellMap, nil
}

func (d *Detector) notify(step Step) {
	if d.observer != nil {
		d.observer(step)
	}
}

func regionOf(current image.Image, offset image.Point) grid.BoundingBox {
	b := current.Bounds()
	return grid.BoundingBox{
		Left:   offset.X,
		Top:    offset.Y,
		Right:  offset.X + b.Dx(),
		Bottom: offset.Y + b.Dy(),
	}
}
