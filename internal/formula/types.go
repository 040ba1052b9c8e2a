// Package formula implements the fixed-population evolutionary engine
// (C5): it scores, mutates, and breeds digit-genome "formulas" against
// accumulated associations under beam-style drift penalties and
// phase-coherence feedback. Beam evaluation (eval.go) fans each disjoint
// lane out onto its own goroutine, the same one-goroutine-per-unit-of-work
// shape as the teacher's collection pool (src/core/collection/pool.go),
// without that pool's semaphore: lane count is already bounded by
// PoolCapacity/BeamMaxLanes, so nothing needs a second cap. Mutation and
// crossover are grounded in the pack's genetic-operator reference
// (other_examples/28eaaa50_Connerlevi-A-Swarm__intelligence-mutation-engine-v2.go.go).
package formula

const (
	// GeneLength is the fixed digit-sequence length of every formula's gene.
	GeneLength = 16

	// PoolCapacity is the fixed population size N.
	PoolCapacity = 24

	// MaxExamples bounds the numeric training-pair dataset (M).
	MaxExamples = 256

	// MaxAssociations bounds the FIFO association buffer (P).
	MaxAssociations = 64

	// MaxEmbedded bounds the knowledge-carrier embedded association slice (K).
	MaxEmbedded = 8

	// BeamMaxLanes bounds lane width (L) for beam-group evaluation.
	BeamMaxLanes = 8

	// MaxQuestionLen and MaxAnswerLen bound the two Association strings.
	MaxQuestionLen = 256
	MaxAnswerLen   = 256
)

// Gene is a fixed-length decimal-digit sequence, every value in [0,9].
type Gene [GeneLength]byte

// Association is a taught question->answer pair (§3 Association).
type Association struct {
	Question       string
	Answer         string
	InputHash      int32 // FNV-1a masked to INT_MAX
	OutputHash     int32
	Timestamp      uint64
	Source         string
	QuestionDigits []byte
	AnswerDigits   []byte
}

// Formula owns one Gene plus evaluation metadata (§3 Formula).
type Formula struct {
	Gene                Gene
	Fitness             float64 // [0,1]
	Feedback            float64 // [-1,1]
	DriftB              float64 // >=0
	DriftD              float64 // >=0
	Phase               float64 // radians, [0,2pi)
	EmbeddedAssociation []Association
}

// Example is an (input_hash, target_hash) numeric training pair.
type Example struct {
	InputHash  int32
	TargetHash int32
}

// Controls are the pool's scalar tuning knobs (§3 FormulaPool).
type Controls struct {
	LambdaB       float64
	LambdaD       float64
	TargetB       *float64 // nil means "use dataset default"
	TargetD       *float64 // nil means "use dataset default" (0.5)
	CoherenceGain float64
	Temperature   float64
	TopK          int
}

// Profile tracks the pool's evaluation/generation counters.
type Profile struct {
	GenerationSteps    uint64
	EvaluationCalls    uint64
	LastGenerationMs   int64
}
