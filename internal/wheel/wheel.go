// internal/wheel/wheel.go
//
// Probability-wheel resolver.
// Every function here is pure: segments go in, new segments come out. The
// orchestrator owns the draw and feeds the uniform roll in, which keeps
// selection reproducible under a fixed roll.

package wheel

import "math"

// Segment is one weighted slice of the wheel.
type Segment struct {
	ID          string  `yaml:"id" json:"id"`
	Multiplier  float64 `yaml:"multiplier" json:"multiplier"`
	Probability float64 `yaml:"probability" json:"probability"` // weight; normalized to sum 100
	Color       string  `yaml:"color" json:"color"`
}

// Result names the outcome of a spin (or of skipping it).
type Result struct {
	Segment         Segment `json:"segment"`
	MultipliedScore int     `json:"multipliedScore"`
	WasSkipped      bool    `json:"wasSkipped"`
}

// Skipped builds the first-class skip outcome: multiplier 1, no segment.
func Skipped(score int) Result {
	return Result{
		Segment:         Segment{ID: "skipped", Multiplier: 1},
		MultipliedScore: score,
		WasSkipped:      true,
	}
}

// Normalize clamps negative weights to zero and rescales so the weights sum
// to exactly 100. An all-zero input distributes evenly.
func Normalize(segments []Segment) []Segment {
	out := make([]Segment, len(segments))
	copy(out, segments)

	total := 0.0
	for i := range out {
		if out[i].Probability < 0 {
			out[i].Probability = 0
		}
		total += out[i].Probability
	}
	if total <= 0 {
		share := 100.0 / float64(len(out))
		for i := range out {
			out[i].Probability = share
		}
		return out
	}
	for i := range out {
		out[i].Probability = out[i].Probability / total * 100
	}
	return out
}

// Select walks the segments accumulating weight until the draw falls inside
// a span. roll is uniform in [0,1) and is scaled by the total weight, so
// un-normalized inputs still select fairly. Segments with weight <= 0 are
// skipped; if every segment is non-positive the first segment is returned
// as a defined fallback, never an error.
func Select(segments []Segment, roll float64) Segment {
	total := 0.0
	for _, s := range segments {
		if s.Probability > 0 {
			total += s.Probability
		}
	}
	if total <= 0 {
		return segments[0]
	}
	target := roll * total
	acc := 0.0
	for _, s := range segments {
		if s.Probability <= 0 {
			continue
		}
		acc += s.Probability
		if target < acc {
			return s
		}
	}
	// roll == 1-epsilon edge: last positive segment
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i].Probability > 0 {
			return segments[i]
		}
	}
	return segments[0]
}

// ApplyBonuses returns a new segment set with the safe-zone and
// max-multiplier bonuses applied, renormalized to sum 100.
//
// safeZone drains up to that many probability points from the
// zero-multiplier ("bust") segment, floored at zero, and redistributes the
// drained amount proportionally among positive-multiplier segments.
// maxMultBoost appends a new top segment whose multiplier is the previous
// top plus the boost and whose weight is taken (half) from the previous top.
func ApplyBonuses(segments []Segment, safeZone, maxMultBoost float64) []Segment {
	out := make([]Segment, len(segments))
	copy(out, segments)

	if safeZone > 0 {
		bust := -1
		for i, s := range out {
			if s.Multiplier == 0 {
				bust = i
				break
			}
		}
		if bust >= 0 && out[bust].Probability > 0 {
			drained := math.Min(safeZone, out[bust].Probability)
			out[bust].Probability -= drained

			positiveTotal := 0.0
			for i, s := range out {
				if i != bust && s.Multiplier > 0 && s.Probability > 0 {
					positiveTotal += s.Probability
				}
			}
			if positiveTotal > 0 {
				for i := range out {
					if i != bust && out[i].Multiplier > 0 && out[i].Probability > 0 {
						out[i].Probability += drained * (out[i].Probability / positiveTotal)
					}
				}
			}
		}
	}

	if maxMultBoost > 0 {
		top := 0
		for i, s := range out {
			if s.Multiplier > out[top].Multiplier {
				top = i
			}
		}
		half := out[top].Probability / 2
		out[top].Probability -= half
		out = append(out, Segment{
			ID:          "boosted",
			Multiplier:  out[top].Multiplier + maxMultBoost,
			Probability: half,
			Color:       "gold",
		})
	}

	return Normalize(out)
}

// Resolve applies a spin outcome to a hand score.
func Resolve(seg Segment, score int) Result {
	return Result{
		Segment:         seg,
		MultipliedScore: int(math.Floor(float64(score) * seg.Multiplier)),
	}
}
