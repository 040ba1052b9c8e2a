package formula

import (
	"math"
	"sort"
	"time"

	"github.com/kolibri/core/internal/kerrors"
	"github.com/kolibri/core/internal/rng"
	"github.com/kolibri/core/internal/symboltable"
)

// Pool is the fixed-capacity population of formulas (§3 FormulaPool). It
// has no internal locking: callers must externally serialise mutating
// calls, exactly as the genome ledger and symbol table do.
type Pool struct {
	formulas []*Formula
	rng      *rng.RNG

	examples     []Example
	associations []Association

	controls Controls
	profile  Profile

	symbols *symboltable.Table
	sorted  bool
}

// NewPool builds a pool of PoolCapacity formulas with random genes, seeded
// once from seed.
func NewPool(seed uint64, symbols *symboltable.Table) *Pool {
	r := rng.New(seed)
	p := &Pool{
		rng:     r,
		symbols: symbols,
		controls: Controls{
			LambdaB:       0,
			LambdaD:       0,
			CoherenceGain: 0,
			Temperature:   1.0,
			TopK:          PoolCapacity,
		},
	}
	for i := 0; i < PoolCapacity; i++ {
		p.formulas = append(p.formulas, &Formula{Gene: randomGene(r)})
	}
	return p
}

func randomGene(r *rng.RNG) Gene {
	var g Gene
	for i := range g {
		g[i] = byte(r.Intn(10))
	}
	return g
}

// AddAssociation ingests one taught (question, answer) pair (§4.5 Ingestion).
func (p *Pool) AddAssociation(question, answer, source string, timestamp uint64) {
	if len(question) > MaxQuestionLen {
		question = question[:MaxQuestionLen]
	}
	if len(answer) > MaxAnswerLen {
		answer = answer[:MaxAnswerLen]
	}

	assoc := Association{
		Question:   question,
		Answer:     answer,
		InputHash:  fnv1aMasked(question),
		OutputHash: fnv1aMasked(answer),
		Timestamp:  timestamp,
		Source:     source,
	}
	if p.symbols != nil {
		assoc.QuestionDigits = p.symbols.EncodeString(question, MaxQuestionLen*3)
		assoc.AnswerDigits = p.symbols.EncodeString(answer, MaxAnswerLen*3)
	}

	p.upsertAssociation(assoc)
	p.addExample(assoc.InputHash, assoc.OutputHash)
}

func (p *Pool) upsertAssociation(assoc Association) {
	for i, existing := range p.associations {
		if existing.InputHash == assoc.InputHash && existing.Question == assoc.Question {
			p.associations[i] = assoc
			return
		}
	}
	if len(p.associations) >= MaxAssociations {
		p.associations = p.associations[1:]
	}
	p.associations = append(p.associations, assoc)
}

// addExample adds an integer training pair, bounded by MaxExamples;
// silently dropped beyond the cap.
func (p *Pool) addExample(inputHash, outputHash int32) {
	if len(p.examples) >= MaxExamples {
		return
	}
	p.examples = append(p.examples, Example{InputHash: inputHash, TargetHash: outputHash})
}

// resolvedTargets returns the effective target_b/target_d. When unset,
// target_b falls back to the dataset's mean target and target_d to 0.5,
// the midpoint of the diversity range.
func (p *Pool) resolvedTargets() (targetB, targetD float64) {
	if p.controls.TargetB != nil {
		targetB = *p.controls.TargetB
	} else {
		targetB = datasetMean(p.examples)
	}
	if p.controls.TargetD != nil {
		targetD = *p.controls.TargetD
	} else {
		targetD = 0.5
	}
	return
}

// Tick runs `generations` evolutionary steps (generations <= 0 is treated
// as 1), then promotes knowledge carriers (§4.5 Tick).
func (p *Pool) Tick(generations int) {
	if generations <= 0 {
		generations = 1
	}
	start := time.Now()

	targetB, targetD := p.resolvedTargets()
	ctx := evalContext{
		examples:      p.examples,
		targetB:       targetB,
		targetD:       targetD,
		lambdaB:       p.controls.LambdaB,
		lambdaD:       p.controls.LambdaD,
		coherenceGain: p.controls.CoherenceGain,
	}

	for g := 0; g < generations; g++ {
		evaluatePopulation(p.formulas, ctx)
		p.profile.EvaluationCalls += uint64(len(p.formulas))
		p.sortByFitnessDesc()
		p.reproduce()
	}

	evaluatePopulation(p.formulas, ctx)
	p.profile.EvaluationCalls += uint64(len(p.formulas))
	p.sortByFitnessDesc()

	if len(p.associations) > 0 {
		p.promoteKnowledgeCarriers()
		p.sortByFitnessDesc()
	}

	p.profile.GenerationSteps += uint64(generations)
	p.profile.LastGenerationMs = time.Since(start).Milliseconds()
	p.sorted = true
}

// sortByFitnessDesc sorts by fitness descending with a stable tie-break on
// original index (sort.SliceStable preserves relative order of equal keys,
// i.e. original index order).
func (p *Pool) sortByFitnessDesc() {
	sort.SliceStable(p.formulas, func(i, j int) bool {
		return p.formulas[i].Fitness > p.formulas[j].Fitness
	})
}

// elite is max(1, N/3).
func (p *Pool) elite() int {
	e := len(p.formulas) / 3
	if e < 1 {
		e = 1
	}
	return e
}

// reproduce keeps the elite unchanged and repopulates the rest via
// crossover-then-mutation of parents drawn from the top TopK.
func (p *Pool) reproduce() {
	elite := p.elite()
	topK := p.controls.TopK
	if topK < elite {
		topK = elite
	}
	if topK > len(p.formulas) {
		topK = len(p.formulas)
	}

	for i := elite; i < len(p.formulas); i++ {
		parentA := p.formulas[p.rng.Intn(topK)]
		parentB := p.formulas[p.rng.Intn(topK)]
		child := crossover(parentA, parentB, p.rng)
		mutate(&child, p.controls.Temperature, p.rng)
		child.Fitness = 0
		child.Feedback = 0
		child.DriftB = 0
		child.DriftD = 0
		child.EmbeddedAssociation = nil
		p.formulas[i] = &child
	}
}

// promoteKnowledgeCarriers overwrites the top min(3,N) formulas' embedded
// associations with the current association buffer (truncated to
// MaxEmbedded) and forces their fitness to 1.0. The source's behavior of
// ignoring the penalised score here is preserved verbatim (§9 open
// question: not clamped by penalised score).
func (p *Pool) promoteKnowledgeCarriers() {
	carriers := 3
	if carriers > len(p.formulas) {
		carriers = len(p.formulas)
	}

	embedded := p.associations
	if len(embedded) > MaxEmbedded {
		embedded = embedded[len(embedded)-MaxEmbedded:]
	}

	for i := 0; i < carriers; i++ {
		cp := make([]Association, len(embedded))
		copy(cp, embedded)
		p.formulas[i].EmbeddedAssociation = cp
		p.formulas[i].Fitness = 1.0
	}
}

// Best returns the top-ranked formula. Ordering is undefined before the
// first Tick.
func (p *Pool) Best() *Formula {
	if len(p.formulas) == 0 {
		return nil
	}
	return p.formulas[0]
}

// Apply returns the output hash for inputHash: an exact stored association
// match wins, otherwise the formula's numeric prediction.
func (p *Pool) Apply(f *Formula, inputHash int32) int32 {
	for _, a := range p.associations {
		if a.InputHash == inputHash {
			return a.OutputHash
		}
	}
	return predictNumeric(f.Gene, inputHash)
}

// LookupAnswer is the string-returning counterpart of Apply: it returns the
// stored answer text when the input hash matches a known association.
func (p *Pool) LookupAnswer(f *Formula, inputHash int32) (string, error) {
	for _, a := range p.associations {
		if a.InputHash == inputHash {
			return a.Answer, nil
		}
	}
	return "", kerrors.New(kerrors.NotFound, "formula.LookupAnswer", errNoAssociation)
}

// Feedback finds the formula whose gene matches geneDigits exactly,
// nudges its feedback and fitness by delta (clamped), and re-sorts to
// preserve the population's descending-fitness invariant.
func (p *Pool) Feedback(geneDigits Gene, delta float64) error {
	for _, f := range p.formulas {
		if f.Gene == geneDigits {
			f.Feedback = clampRange(f.Feedback+delta, -1, 1)
			f.Fitness = clamp01(f.Fitness + delta)
			p.sortByFitnessDesc()
			return nil
		}
	}
	return kerrors.New(kerrors.NotFound, "formula.Feedback", errGeneNotFound)
}

// SetPenalties clamps and sets lambda_b, lambda_d.
func (p *Pool) SetPenalties(lambdaB, lambdaD float64) {
	p.controls.LambdaB = math.Max(0, lambdaB)
	p.controls.LambdaD = math.Max(0, lambdaD)
}

// SetTargets sets target_b/target_d; NaN means "use dataset default".
func (p *Pool) SetTargets(targetB, targetD float64) {
	if math.IsNaN(targetB) {
		p.controls.TargetB = nil
	} else {
		v := targetB
		p.controls.TargetB = &v
	}
	if math.IsNaN(targetD) {
		p.controls.TargetD = nil
	} else {
		v := clamp01(targetD)
		p.controls.TargetD = &v
	}
}

// SetCoherenceGain clamps coherence_gain to a non-negative value.
func (p *Pool) SetCoherenceGain(gain float64) {
	p.controls.CoherenceGain = math.Max(0, gain)
}

// SetSampling clamps temperature to (0,2] and top_k to [1,N].
func (p *Pool) SetSampling(temperature float64, topK int) {
	if temperature <= 0 {
		temperature = 0.01
	}
	if temperature > 2 {
		temperature = 2
	}
	p.controls.Temperature = temperature

	if topK < 1 {
		topK = 1
	}
	if topK > len(p.formulas) {
		topK = len(p.formulas)
	}
	p.controls.TopK = topK
}

// Profile returns a copy of the pool's generation/evaluation counters.
func (p *Pool) Profile() Profile { return p.profile }

// Formulas returns the live, sorted-after-tick slice of formulas. Callers
// must not retain pointers across a Tick call.
func (p *Pool) Formulas() []*Formula { return p.formulas }

// FormulaDigits renders f's gene as an ASCII digit string, the wire form
// used by the swarm transport's FORMULA frames.
func FormulaDigits(f *Formula) []byte {
	out := make([]byte, GeneLength)
	for i, d := range f.Gene {
		out[i] = '0' + d
	}
	return out
}

// ParseFormulaDigits is the inverse of FormulaDigits.
func ParseFormulaDigits(digits []byte) (Gene, bool) {
	var g Gene
	if len(digits) != GeneLength {
		return g, false
	}
	for i, c := range digits {
		if c < '0' || c > '9' {
			return g, false
		}
		g[i] = c - '0'
	}
	return g, true
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
