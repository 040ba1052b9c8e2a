// Package kolibri is the thin core-orchestration facade (C7): it wires the
// genome ledger, symbol table, formula pool, and swarm transport behind the
// small surface external callers (a DSL frontend, a server) actually need.
package kolibri

import (
	"fmt"

	"github.com/kolibri/core/internal/codec"
	"github.com/kolibri/core/internal/formula"
	"github.com/kolibri/core/internal/genome"
	"github.com/kolibri/core/internal/swarm"
	"github.com/kolibri/core/internal/symboltable"
	"github.com/kolibri/core/internal/telemetry"
)

const teachEventType = "TEACH"

// asciiDigits converts a slice of digit values in [0,9] (codec's internal
// representation) into the ASCII decimal text the genome ledger's payload
// field requires.
func asciiDigits(values []byte) string {
	out := make([]byte, len(values))
	for i, v := range values {
		out[i] = '0' + v
	}
	return string(out)
}

// Core wires C3-C6 behind ingest/tick/broadcast operations.
type Core struct {
	Genome  *genome.Context // nil if running without a ledger
	Symbols *symboltable.Table
	Pool    *formula.Pool
	Swarm   *swarm.Swarm // nil if swarm transport is disabled

	log telemetry.Logger
}

// New wires the given components into a Core. Any of genomeCtx or sw may
// be nil; symbols and pool must not be.
func New(genomeCtx *genome.Context, symbols *symboltable.Table, pool *formula.Pool, sw *swarm.Swarm, log telemetry.Logger) *Core {
	if log == nil {
		log = telemetry.NopLogger{}
	}
	return &Core{Genome: genomeCtx, Symbols: symbols, Pool: pool, Swarm: sw, log: log}
}

// IngestAssociation delegates to the formula pool and, if a genome is
// attached, appends a TEACH event recording the taught pair.
func (c *Core) IngestAssociation(question, answer, source string, timestamp uint64) error {
	c.Pool.AddAssociation(question, answer, source, timestamp)

	if c.Genome == nil {
		return nil
	}

	structured := fmt.Sprintf("q=%s,a=%s", question, answer)
	payload := asciiDigits(codec.EncodeBytes([]byte(structured)))
	if err := c.Genome.Append(teachEventType, payload); err != nil {
		c.log.Warn("teach event append failed", telemetry.Err(err))
		return err
	}
	return nil
}

// Tick runs generations evolutionary steps on the formula pool.
func (c *Core) Tick(generations int) {
	c.Pool.Tick(generations)
}

// FormulaSnapshot is a read-only copy of a formula's externally visible state.
type FormulaSnapshot struct {
	Gene                formula.Gene
	Fitness             float64
	EmbeddedAssociation []formula.Association
}

// BestFormula returns a snapshot of the top-ranked formula, or false if the
// pool is empty.
func (c *Core) BestFormula() (FormulaSnapshot, bool) {
	best := c.Pool.Best()
	if best == nil {
		return FormulaSnapshot{}, false
	}
	embedded := make([]formula.Association, len(best.EmbeddedAssociation))
	copy(embedded, best.EmbeddedAssociation)
	return FormulaSnapshot{Gene: best.Gene, Fitness: best.Fitness, EmbeddedAssociation: embedded}, true
}

// BroadcastBest pushes the current best formula to the swarm, a no-op if
// swarm transport is disabled or the pool is empty.
func (c *Core) BroadcastBest() error {
	if c.Swarm == nil {
		return nil
	}
	best, ok := c.BestFormula()
	if !ok {
		return nil
	}
	digits := formula.FormulaDigits(c.Pool.Best())
	if err := c.Swarm.BroadcastFormula(digits, best.Fitness); err != nil {
		c.log.Warn("broadcast best formula failed", telemetry.Err(err))
		return err
	}
	return nil
}

// RecordSymbolEventFromGenomeScan replays SYMBOL_MAP events from the
// attached genome into the symbol table, restoring the file offset
// afterwards.
func (c *Core) RecordSymbolEventFromGenomeScan() error {
	if c.Genome == nil {
		return nil
	}
	adapter := &symboltable.GenomeAdapter{Ctx: c.Genome}
	return c.Symbols.LoadFromGenome(adapter)
}

// DrainSwarmEvents pulls every currently-queued swarm event and returns
// them in arrival order for the caller to handle. It never blocks and
// never mutates the formula pool.
func (c *Core) DrainSwarmEvents() []swarm.Event {
	if c.Swarm == nil {
		return nil
	}
	var events []swarm.Event
	for {
		e, ok := c.Swarm.PollEvent()
		if !ok {
			break
		}
		events = append(events, e)
	}
	return events
}
