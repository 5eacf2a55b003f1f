package entity

import (
	"GridVision/pkg/confidence"
	"GridVision/pkg/grid"
	"GridVision/pkg/spatial"
)

// Detection is the reported outcome for one localized target.
type Detection struct {
	Object     string
	Confidence confidence.Level
	Score      float64
	BBox       grid.BoundingBox
	Iterations int
	Detected   bool
}

// DetectionBatch is one request against one image. Detections keeps every
// target in input order; Localized counts the ones that were found.
type DetectionBatch struct {
	ID         string
	ImageURL   string
	Targets    []string
	Detections []Detection
	Localized  int
}

func NewDetection(r *spatial.Result) Detection {
	return Detection{
		Object:     r.Target,
		Confidence: r.Confidence,
		Score:      r.Score,
		BBox:       r.BBox,
		Iterations: r.Iterations,
		Detected:   r.Detected,
	}
}

// NewDetectionBatch keeps only the localized results of b.
func NewDetectionBatch(id string, b *spatial.Batch) *DetectionBatch {
	batch := &DetectionBatch{
		ID:         id,
		Targets:    b.Targets,
		Detections: make([]Detection, 0, len(b.Results)),
		Localized:  b.Detected(),
	}
	for _, r := range b.Results {
		batch.Detections = append(batch.Detections, NewDetection(r))
	}
	return batch
}

func (b *DetectionBatch) Total() int {
	return len(b.Targets)
}
