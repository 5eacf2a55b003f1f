// Package oracle defines the contract with the vision model that decides which
// grid cells contain a described object.
package oracle

import (
	"context"
	"errors"
)

var (
	// ErrMalformedResponse marks model output that could not be decoded into a
	// Response. It never leaves this package's model adapter: the adapter
	// substitutes Empty() instead.
	ErrMalformedResponse = errors.New("oracle: malformed model response")

	// ErrUnavailable wraps transport failures (network, auth, quota, deadline).
	// These propagate to the caller as detection failures.
	ErrUnavailable = errors.New("oracle: model unavailable")
)

// Request is one grid question: the annotated image and what to look for.
type Request struct {
	Image    []byte
	MimeType string
	// Width and Height are the pixel size of the annotated image before any
	// transport downscaling.
	Width  int
	Height int
	Target string
}

// Response lists the selected cell ids (ascending, unique) and a 0-100 score
// for each, index-aligned.
type Response struct {
	Cells            []int     `json:"cells"`
	ConfidenceScores []float64 `json:"confidence_scores"`
}

type Oracle interface {
	Query(ctx context.Context, req Request) (Response, error)
}

// Func adapts a plain function to Oracle.
type Func func(ctx context.Context, req Request) (Response, error)

func (f Func) Query(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// Empty is the "nothing found" response, also used in place of malformed output.
func Empty() Response {
	return Response{Cells: []int{}, ConfidenceScores: []float64{}}
}

func (r Response) IsEmpty() bool {
	return len(r.Cells) == 0
}

// MeanScore averages the confidence scores. ok is false when there are none.
func (r Response) MeanScore() (mean float64, ok bool) {
	if len(r.ConfidenceScores) == 0 {
		return 0, false
	}

	var sum float64
	for _, s := range r.ConfidenceScores {
		sum += s
	}
	return sum / float64(len(r.ConfidenceScores)), true
}
