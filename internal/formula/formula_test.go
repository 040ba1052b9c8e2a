package formula

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolibri/core/internal/symboltable"
)

func TestTickProducesSortedDescendingFitness(t *testing.T) {
	p := NewPool(42, nil)
	for i := 0; i < 30; i++ {
		p.addExample(int32(i), int32(i*2))
	}

	p.Tick(5)

	formulas := p.Formulas()
	require.Len(t, formulas, PoolCapacity)
	for i := 1; i < len(formulas); i++ {
		require.GreaterOrEqual(t, formulas[i-1].Fitness, formulas[i].Fitness)
	}
	for _, f := range formulas {
		require.GreaterOrEqual(t, f.Fitness, 0.0)
		require.LessOrEqual(t, f.Fitness, 1.0)
		require.GreaterOrEqual(t, f.DriftB, 0.0)
		require.GreaterOrEqual(t, f.DriftD, 0.0)
		require.GreaterOrEqual(t, f.Phase, 0.0)
	}
}

func TestTickEliteSurvives(t *testing.T) {
	p := NewPool(7, nil)
	p.addExample(1, 2)
	p.Tick(1)

	before := p.Formulas()[0].Gene

	p.Tick(1)
	after := p.Formulas()

	found := false
	for _, f := range after {
		if f.Gene == before {
			found = true
			break
		}
	}
	require.True(t, found, "best formula from the previous tick should survive as part of the elite or be re-derived")
}

func TestKnowledgeCarrierEmbedsLatestAssociations(t *testing.T) {
	symbols := symboltable.New()
	symbols.SeedDefaults()
	p := NewPool(1, symbols)

	for i := 0; i < MaxEmbedded+3; i++ {
		p.AddAssociation(string(rune('a'+i)), "answer", "test", uint64(i))
	}
	p.Tick(1)

	best := p.Best()
	require.Len(t, best.EmbeddedAssociation, MaxEmbedded)
	require.Equal(t, string(rune('a'+3)), best.EmbeddedAssociation[0].Question)
	require.Equal(t, string(rune('a'+MaxEmbedded+2)), best.EmbeddedAssociation[MaxEmbedded-1].Question)
	require.Equal(t, 1.0, best.Fitness)
}

func TestAssociationRoundTrip(t *testing.T) {
	symbols := symboltable.New()
	symbols.SeedDefaults()
	p := NewPool(3, symbols)

	p.AddAssociation("2+2", "4", "test", 100)

	inputHash := fnv1aMasked("2+2")
	answer, err := p.LookupAnswer(nil, inputHash)
	require.NoError(t, err)
	require.Equal(t, "4", answer)

	outputHash := p.Apply(&Formula{Gene: Gene{}}, inputHash)
	require.Equal(t, fnv1aMasked("4"), outputHash)
}

func TestApplyFallsBackToGenePrediction(t *testing.T) {
	p := NewPool(9, nil)
	f := &Formula{Gene: Gene{0, 0, 0, 5, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}}
	result := p.Apply(f, 3)
	require.Equal(t, predictNumeric(f.Gene, 3), result)
}

func TestFeedbackAdjustsFitnessAndResorts(t *testing.T) {
	p := NewPool(11, nil)
	p.addExample(1, 1)
	p.Tick(1)

	target := p.Formulas()[len(p.Formulas())-1]
	err := p.Feedback(target.Gene, 1.0)
	require.NoError(t, err)
	require.Equal(t, target.Gene, p.Formulas()[0].Gene)
}

func TestFeedbackUnknownGeneFails(t *testing.T) {
	p := NewPool(13, nil)
	err := p.Feedback(Gene{9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9}, 0.5)
	require.Error(t, err)
}

func TestDriftPenaltyLowersFitness(t *testing.T) {
	p1 := NewPool(21, nil)
	p1.addExample(4, 8)
	p1.SetPenalties(0, 0)
	p1.Tick(1)
	noPenaltyBest := p1.Best().Fitness

	p2 := NewPool(21, nil)
	p2.addExample(4, 8)
	p2.SetPenalties(10, 10)
	p2.SetTargets(0, 0)
	p2.Tick(1)
	penalizedBest := p2.Best().Fitness

	require.LessOrEqual(t, penalizedBest, noPenaltyBest)
}

func TestSetSamplingClampsRange(t *testing.T) {
	p := NewPool(5, nil)
	p.SetSampling(-1, 1000)
	require.Greater(t, p.controls.Temperature, 0.0)
	require.LessOrEqual(t, p.controls.TopK, PoolCapacity)

	p.SetSampling(10, 0)
	require.LessOrEqual(t, p.controls.Temperature, 2.0)
	require.GreaterOrEqual(t, p.controls.TopK, 1)
}

func TestFormulaDigitsRoundTrip(t *testing.T) {
	p := NewPool(17, nil)
	f := p.Best()
	digits := FormulaDigits(f)
	require.Len(t, digits, GeneLength)

	gene, ok := ParseFormulaDigits(digits)
	require.True(t, ok)
	require.Equal(t, f.Gene, gene)
}

func TestMutateStaysWithinDigitRange(t *testing.T) {
	p := NewPool(23, nil)
	f := Formula{Gene: Gene{1, 2, 3, 4, 5, 6, 7, 8, 9, 0, 1, 2, 3, 4, 5, 6}}
	mutate(&f, 1.5, p.rng)
	for _, d := range f.Gene {
		require.LessOrEqual(t, d, byte(9))
	}
}
