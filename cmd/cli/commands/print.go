package commands

import (
	"fmt"
	"io"
	"strings"

	"GridVision/pkg/spatial"
)

var separator = strings.Repeat("=", 50)

func printResult(w io.Writer, res *spatial.Result, savedPath string) {
	fmt.Fprintf(w, "\n%s\nDETECTION RESULTS\n%s\n", separator, separator)
	fmt.Fprintf(w, "Object: %s\n", res.Target)

	if !res.Detected {
		fmt.Fprintln(w, "No object detected")
		fmt.Fprintf(w, "Iterations: %d\n", res.Iterations)
		return
	}

	fmt.Fprintf(w, "Confidence: %s (%.1f%%)\n", res.Confidence, res.Score)
	fmt.Fprintf(w, "Bounding box: %s\n", res.BBox)
	fmt.Fprintf(w, "Iterations: %d\n", res.Iterations)
	if savedPath != "" {
		fmt.Fprintf(w, "Saved to: %s\n", savedPath)
	}
}

func printStep(w io.Writer, s spatial.Step) {
	stage := fmt.Sprintf("iteration %d", s.Iteration+1)
	if s.Final {
		stage = "final"
	}
	fmt.Fprintf(w, "  [%s] %s: region %s cells %v scores %v\n", s.Target, stage, s.Region, s.Cells, s.Scores)
}
