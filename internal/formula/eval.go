package formula

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// complexityPenalty is Σ 0.001·digit over non-zero digits.
func complexityPenalty(g Gene) float64 {
	var penalty float64
	for _, d := range g {
		if d != 0 {
			penalty += 0.001 * float64(d)
		}
	}
	return penalty
}

// diversity is unique_digit_count / 10.
func diversity(g Gene) float64 {
	var seen [10]bool
	count := 0
	for _, d := range g {
		if !seen[d] {
			seen[d] = true
			count++
		}
	}
	return float64(count) / 10.0
}

// topologicalSimilarity is (# equal positions) / length.
func topologicalSimilarity(a, b Gene) float64 {
	equal := 0
	for i := range a {
		if a[i] == b[i] {
			equal++
		}
	}
	return float64(equal) / float64(GeneLength)
}

// phaseOf returns (FNV-1a(gene) mod 360) * pi/180.
func phaseOf(g Gene) float64 {
	mod := fnv1aGene(g) % 360
	return float64(mod) * math.Pi / 180.0
}

// datasetMean returns the mean target value over examples, or 0 for an
// empty dataset.
func datasetMean(examples []Example) float64 {
	if len(examples) == 0 {
		return 0
	}
	targets := make([]float64, len(examples))
	for i, e := range examples {
		targets[i] = float64(e.TargetHash)
	}
	return stat.Mean(targets, nil)
}

// clamp01 clamps v to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// evalContext carries the shared, read-only inputs one beam evaluation pass needs.
type evalContext struct {
	examples      []Example
	targetB       float64
	targetD       float64
	lambdaB       float64
	lambdaD       float64
	coherenceGain float64
}

// evaluateLane scores every formula in lane against ctx, including the
// phase-coherence bonus each formula gets from its lane-mates. Formulas in
// different lanes never observe each other, matching the "no two lanes
// share mutable state" beam-group invariant.
func evaluateLane(lane []*Formula, ctx evalContext) {
	phases := make([]float64, len(lane))
	for i, f := range lane {
		phases[i] = phaseOf(f.Gene)
	}

	for i, f := range lane {
		predictions := make([]float64, len(ctx.examples))
		var absSum float64
		for j, ex := range ctx.examples {
			pred := predictNumeric(f.Gene, ex.InputHash)
			predictions[j] = float64(pred)
			absSum += math.Abs(float64(ex.TargetHash) - float64(pred))
		}

		baseScore := 1.0 / (1.0 + absSum + complexityPenalty(f.Gene))

		var meanPred float64
		if len(predictions) > 0 {
			meanPred = stat.Mean(predictions, nil)
		}
		driftB := math.Abs(meanPred - ctx.targetB)
		driftD := math.Abs(diversity(f.Gene) - ctx.targetD)

		score := math.Max(0, baseScore-ctx.lambdaB*driftB-ctx.lambdaD*driftD)
		score = clamp01(score + f.Feedback)

		if ctx.coherenceGain > 0 {
			for j, peer := range lane {
				if j == i {
					continue
				}
				sim := topologicalSimilarity(f.Gene, peer.Gene)
				score += ctx.coherenceGain * math.Cos(phases[j]-phases[i]) * sim
			}
			score = clamp01(score)
		}

		f.Fitness = score
		f.DriftB = driftB
		f.DriftD = driftD
		f.Phase = phases[i]
	}
}

// evaluatePopulation partitions formulas into lanes of at most
// BeamMaxLanes and evaluates every lane concurrently: lanes never share
// mutable state (the "no two lanes observe each other" beam-group
// invariant), so a goroutine per lane with a WaitGroup barrier is all the
// concurrency this needs. Lane count never exceeds
// PoolCapacity/BeamMaxLanes, so nothing needs a second bound on top.
func evaluatePopulation(formulas []*Formula, ctx evalContext) {
	lanes := make([][]*Formula, 0, (len(formulas)+BeamMaxLanes-1)/BeamMaxLanes)
	for start := 0; start < len(formulas); start += BeamMaxLanes {
		end := start + BeamMaxLanes
		if end > len(formulas) {
			end = len(formulas)
		}
		lanes = append(lanes, formulas[start:end])
	}

	var wg sync.WaitGroup
	wg.Add(len(lanes))
	for _, lane := range lanes {
		lane := lane
		go func() {
			defer wg.Done()
			evaluateLane(lane, ctx)
		}()
	}
	wg.Wait()
}
