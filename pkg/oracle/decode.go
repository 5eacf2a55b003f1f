package oracle

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

type payload struct {
	Cells            *[]int     `json:"cells"`
	ConfidenceScores *[]float64 `json:"confidence_scores"`
}

// Decode extracts the outermost JSON object from model text and validates it.
// Any failure is reported as ErrMalformedResponse with the reason attached.
func Decode(text string) (Response, error) {
	jsonStart := strings.Index(text, "{")
	jsonEnd := strings.LastIndex(text, "}")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd <= jsonStart {
		return Response{}, fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}

	var p payload
	if err := json.Unmarshal([]byte(text[jsonStart:jsonEnd+1]), &p); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if p.Cells == nil || p.ConfidenceScores == nil {
		return Response{}, fmt.Errorf("%w: cells and confidence_scores are required", ErrMalformedResponse)
	}

	cells, scores := *p.Cells, *p.ConfidenceScores
	if len(cells) != len(scores) {
		return Response{}, fmt.Errorf("%w: %d cells but %d scores", ErrMalformedResponse, len(cells), len(scores))
	}

	for i := range cells {
		if cells[i] < 1 {
			return Response{}, fmt.Errorf("%w: invalid cell id %d", ErrMalformedResponse, cells[i])
		}
		if scores[i] < 0 || scores[i] > 100 {
			return Response{}, fmt.Errorf("%w: score %v out of range", ErrMalformedResponse, scores[i])
		}
	}

	return normalize(cells, scores), nil
}

// DecodeOrEmpty is the degradation path: malformed text becomes Empty().
func DecodeOrEmpty(text string) Response {
	resp, err := Decode(text)
	if err != nil {
		return Empty()
	}
	return resp
}

// normalize sorts pairs by cell id and keeps the first score of a repeated id.
func normalize(cells []int, scores []float64) Response {
	type pair struct {
		cell  int
		score float64
	}

	pairs := make([]pair, len(cells))
	for i := range cells {
		pairs[i] = pair{cells[i], scores[i]}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].cell < pairs[j].cell })

	out := Empty()
	for i, p := range pairs {
		if i > 0 && p.cell == pairs[i-1].cell {
			continue
		}
		out.Cells = append(out.Cells, p.cell)
		out.ConfidenceScores = append(out.ConfidenceScores, p.score)
	}
	return out
}
