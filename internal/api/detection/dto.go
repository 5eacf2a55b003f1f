package detection

import (
	"strings"

	"GridVision/internal/entity"
	"GridVision/pkg/spatial"
)

const (
	MessageTypeStep   = "step"
	MessageTypeResult = "result"
	MessageTypeError  = "error"
)

type DetectRequest struct {
	Targets []string `validate:"required,min=1,dive,required"`
}

type WSDetectRequest struct {
	ImageBase64 string   `json:"image_base64" validate:"required,base64"`
	Targets     []string `json:"targets" validate:"required,min=1,dive,required"`
}

type DetectionResult struct {
	Object          string  `json:"object"`
	Confidence      string  `json:"confidence"`
	ConfidenceScore float64 `json:"confidence_score"`
	BBox            []int   `json:"bbox"`
	Iterations      int     `json:"iterations"`
}

type DetectResponse struct {
	OK       bool              `json:"ok"`
	ImageURL string            `json:"imageUrl"`
	Targets  []string          `json:"targets"`
	Results  []DetectionResult `json:"results"`
	Detected int               `json:"detected"`
	Total    int               `json:"total"`
}

type StepMessage struct {
	Type      string    `json:"type"`
	Target    string    `json:"target"`
	Iteration int       `json:"iteration"`
	Final     bool      `json:"final"`
	Region    []int     `json:"region"`
	Cells     []int     `json:"cells"`
	Scores    []float64 `json:"confidence_scores"`
}

type ResultMessage struct {
	Type string `json:"type"`
	DetectResponse
}

type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// ParseTargets splits a comma separated list and drops blank entries.
func ParseTargets(raw string) []string {
	targets := make([]string, 0)
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			targets = append(targets, t)
		}
	}
	return targets
}

func NewDetectResponse(batch *entity.DetectionBatch) DetectResponse {
	results := make([]DetectionResult, 0, len(batch.Detections))
	for _, d := range batch.Detections {
		results = append(results, DetectionResult{
			Object:          d.Object,
			Confidence:      d.Confidence.String(),
			ConfidenceScore: d.Score,
			BBox:            d.BBox.Slice(),
			Iterations:      d.Iterations,
		})
	}

	return DetectResponse{
		OK:       true,
		ImageURL: batch.ImageURL,
		Targets:  batch.Targets,
		Results:  results,
		Detected: batch.Localized,
		Total:    batch.Total(),
	}
}

func NewStepMessage(step spatial.Step) StepMessage {
	cells, scores := step.Cells, step.Scores
	if cells == nil {
		cells = []int{}
	}
	if scores == nil {
		scores = []float64{}
	}

	return StepMessage{
		Type:      MessageTypeStep,
		Target:    step.Target,
		Iteration: step.Iteration,
		Final:     step.Final,
		Region:    step.Region.Slice(),
		Cells:     cells,
		Scores:    scores,
	}
}
