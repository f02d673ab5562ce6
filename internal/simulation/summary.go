package simulation

import (
	"fmt"
	"strings"

	"slam-robot-sim/internal/common"

	"gonum.org/v1/gonum/stat"
)

// Summary holds aggregate statistics of a run.
type Summary struct {
	Steps            int
	Attempts         int
	MeanObservations float64
	StdObservations  float64
	Rejections       int
	LandmarksSeen    int
	Landmarks        int
	PathLength       float64 // Sum of straight-line distances between consecutive true positions
}

// Summarize computes statistics over the steps of data.
func Summarize(data *Data) Summary {
	summary := Summary{
		Steps:     len(data.Steps),
		Attempts:  data.Attempts,
		Landmarks: len(data.Landmarks),
	}
	if len(data.Steps) == 0 {
		return summary
	}

	counts := make([]float64, len(data.Steps))
	seen := make(map[int]struct{})
	prev := data.Start
	for i, step := range data.Steps {
		counts[i] = float64(len(step.Observations))
		summary.Rejections += step.Rejections
		for _, o := range step.Observations {
			seen[o.Landmark] = struct{}{}
		}
		summary.PathLength += common.Distance(prev, step.Position)
		prev = step.Position
	}
	summary.LandmarksSeen = len(seen)

	if len(counts) > 1 {
		summary.MeanObservations, summary.StdObservations = stat.MeanStdDev(counts, nil)
	} else {
		summary.MeanObservations = stat.Mean(counts, nil)
	}
	return summary
}

// String renders the summary for console output.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Steps: %d (attempts: %d)\n", s.Steps, s.Attempts)
	fmt.Fprintf(&b, "Observations per step: %.2f ± %.2f\n", s.MeanObservations, s.StdObservations)
	fmt.Fprintf(&b, "Landmarks seen: %d/%d\n", s.LandmarksSeen, s.Landmarks)
	fmt.Fprintf(&b, "Rejected moves: %d\n", s.Rejections)
	fmt.Fprintf(&b, "Path length: %.3f", s.PathLength)
	return b.String()
}
