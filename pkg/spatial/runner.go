package spatial

import (
	"context"
	"image"
	"strings"

	"GridVision/pkg/render"
	"golang.org/x/sync/errgroup"
)

// Batch is the outcome of DetectMultiple. Results holds only detected targets,
// in input order.
type Batch struct {
	Targets   []string
	Results   []*Result
	Composite *image.RGBA
}

func (b *Batch) Detected() int {
	return len(b.Results)
}

func (b *Batch) Total() int {
	return len(b.Targets)
}

// DetectMultiple runs Detect independently for every target against img. Up to
// Policy.Concurrency targets run at once. Targets with no detection are left
// out of Results without failing the batch; an oracle failure on any target
// fails it.
func (d *Detector) DetectMultiple(ctx context.Context, img image.Image, targets []string) (*Batch, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	cleaned := make([]string, 0, len(targets))
	for _, t := range targets {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return nil, ErrNoTargets
	}

	all := make([]*Result, len(cleaned))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.policy.Concurrency)
	for i, target := range cleaned {
		g.Go(func() error {
			res, err := d.Detect(gctx, img, target)
			if err != nil {
				return err
			}
			all[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	batch := &Batch{Targets: cleaned}
	for _, res := range all {
		if res.Detected {
			batch.Results = append(batch.Results, res)
		}
	}

	batch.Composite = render.Clone(img)
	Annotate(batch.Composite, batch.Results...)

	return batch, nil
}
