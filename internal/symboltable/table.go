// Package symboltable implements the Unicode codepoint <-> 3-digit
// assignment table (C3), persisted via genome SYMBOL_MAP events. The
// table holds a non-owning handle to its genome so the two can be
// constructed independently and the table's lifetime stays
// shorter-than-or-equal-to the genome's, avoiding a cyclic reference
// (§9 Design notes).
package symboltable

import (
	"fmt"
	"io"
	"strconv"

	"github.com/kolibri/core/internal/kerrors"
)

// Capacity is the maximum number of distinct codepoints the table holds.
const Capacity = 10000

// Digits is a 3-digit assignment for one codepoint.
type Digits [3]byte

// EventAppender is the narrow interface the table needs from a genome
// context: append one event. Mirrors the teacher's narrow
// platform.Collector interface (src/core/platform/interface.go) kept
// separate from the concrete implementation it wraps.
type EventAppender interface {
	Append(eventType, payload string) error
}

// BlockScanner is the narrow interface the table needs to replay history:
// iterate every block from the start of the ledger.
type BlockScanner interface {
	ScanFromStart() (BlockIterator, error)
}

// BlockIterator yields ledger blocks in order; Next returns io.EOF when done.
type BlockIterator interface {
	Next() (EventType, Payload string, err error)
	Close() error
}

// EventType and Payload are aliases kept for readability at call sites.
type (
	EventType = string
	Payload   = string
)

type entry struct {
	codepoint rune
	digits    Digits
}

// Table is the ordered codepoint<->digit assignment table.
type Table struct {
	entries []entry
	version uint64
	genome  EventAppender // non-owning; nil if unattached
}

// New returns an empty table with no genome attached.
func New() *Table {
	return &Table{}
}

// Attach wires a genome event appender into the table so future allocations
// emit SYMBOL_MAP events. Passing nil detaches it.
func (t *Table) Attach(g EventAppender) {
	t.genome = g
}

// Version returns the monotonically increasing mutation counter, bumped on
// every successful allocation.
func (t *Table) Version() uint64 { return t.version }

// Len reports how many codepoints are currently assigned.
func (t *Table) Len() int { return len(t.entries) }

// Encode returns the digit tuple for codepoint, allocating the next
// sequential tuple if codepoint is unseen. Allocation past Capacity is
// silently ignored and reports ok=false: callers must assume not every
// codepoint is encodable (§4.3 failure policy).
func (t *Table) Encode(codepoint rune) (Digits, bool) {
	if d, found := t.lookupEncode(codepoint); found {
		return d, true
	}
	if len(t.entries) >= Capacity {
		return Digits{}, false
	}

	idx := len(t.entries)
	digits := indexToDigits(idx)
	t.entries = append(t.entries, entry{codepoint: codepoint, digits: digits})
	t.version++

	if t.genome != nil {
		payload := fmt.Sprintf("%07d%d%d%d", codepoint, digits[0], digits[1], digits[2])
		_ = t.genome.Append("SYMBOL_MAP", payload)
	}

	return digits, true
}

func (t *Table) lookupEncode(codepoint rune) (Digits, bool) {
	for _, e := range t.entries {
		if e.codepoint == codepoint {
			return e.digits, true
		}
	}
	return Digits{}, false
}

// Decode reverses Encode via linear search; fails with NotFound if the
// tuple is unassigned.
func (t *Table) Decode(d Digits) (rune, error) {
	for _, e := range t.entries {
		if e.digits == d {
			return e.codepoint, nil
		}
	}
	return 0, kerrors.New(kerrors.NotFound, "symboltable.Decode", errUnknownDigits)
}

// indexToDigits maps a sequential allocation index to its (h,t,o) tuple:
// index mod 1000 = 100h + 10t + o. Indices from 1000 on wrap around, so
// past 1000 entries tuples repeat and Decode returns the earliest
// codepoint holding a given tuple.
func indexToDigits(index int) Digits {
	return Digits{
		byte((index / 100) % 10),
		byte((index / 10) % 10),
		byte(index % 10),
	}
}

// EncodeString encodes s codepoint-by-codepoint, truncating to maxDigits
// output digits (maxDigits must be a multiple of 3 for a clean cutoff; a
// non-multiple truncates mid-codepoint by design, matching the bounded
// association payloads in §3).
func (t *Table) EncodeString(s string, maxDigits int) []byte {
	out := make([]byte, 0, maxDigits)
	for _, r := range s {
		if len(out) >= maxDigits {
			break
		}
		d, ok := t.Encode(r)
		if !ok {
			continue
		}
		for _, digit := range d {
			if len(out) >= maxDigits {
				break
			}
			out = append(out, digit)
		}
	}
	return out
}

// SeedDefaults idempotently registers ASCII punctuation, digits, and the
// Cyrillic alphabet (including Ё/ё) so a fresh table already covers the
// expected alphabet.
func (t *Table) SeedDefaults() {
	for r := rune('!'); r <= '/'; r++ {
		t.Encode(r)
	}
	for r := rune(':'); r <= '@'; r++ {
		t.Encode(r)
	}
	for r := rune('['); r <= '`'; r++ {
		t.Encode(r)
	}
	for r := rune('{'); r <= '~'; r++ {
		t.Encode(r)
	}
	for r := rune('0'); r <= '9'; r++ {
		t.Encode(r)
	}
	t.Encode('Ё')
	for r := rune('А'); r <= 'Я'; r++ {
		t.Encode(r)
	}
	t.Encode('ё')
	for r := rune('а'); r <= 'я'; r++ {
		t.Encode(r)
	}
}

// LoadFromGenome scans the ledger from offset 0, replaying every SYMBOL_MAP
// block and seeding each entry exactly once. Malformed entries are
// skipped. The scanner restores its own file offset afterwards.
func (t *Table) LoadFromGenome(scanner BlockScanner) error {
	const op = "symboltable.LoadFromGenome"

	it, err := scanner.ScanFromStart()
	if err != nil {
		return kerrors.New(kerrors.IO, op, err)
	}
	defer it.Close()

	seen := make(map[rune]bool, len(t.entries))
	for _, e := range t.entries {
		seen[e.codepoint] = true
	}

	for {
		eventType, payload, err := it.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return kerrors.New(kerrors.IO, op, err)
		}
		if eventType != "SYMBOL_MAP" {
			continue
		}
		codepoint, digits, ok := parseSymbolMapPayload(payload)
		if !ok || seen[codepoint] {
			continue
		}
		t.seedOne(codepoint, digits)
		seen[codepoint] = true
	}
	return nil
}

// seedOne registers an already-known (codepoint, digits) pair without
// reallocating a fresh index or re-emitting a genome event.
func (t *Table) seedOne(codepoint rune, digits Digits) {
	t.entries = append(t.entries, entry{codepoint: codepoint, digits: digits})
	t.version++
}

// parseSymbolMapPayload accepts the 10-digit fixed-width form
// "<codepoint:%07d><d0><d1><d2>" (the only form Encode ever emits: a
// genome payload must be pure decimal ASCII, which rules out a
// separator byte) or the narrower legacy fixed-width form
// "%03u%1u%1u%1u" kept for reading ledgers written before the codepoint
// field was widened; the legacy form cannot address codepoints past
// 999 and is never produced by this build.
func parseSymbolMapPayload(payload string) (rune, Digits, bool) {
	if len(payload) == 10 {
		cp, err := strconv.ParseInt(payload[:7], 10, 32)
		if err != nil {
			return 0, Digits{}, false
		}
		d, ok := parseDigitTriple(payload[7:])
		if !ok {
			return 0, Digits{}, false
		}
		return rune(cp), d, true
	}

	if len(payload) == 6 {
		cp, err := strconv.ParseInt(payload[:3], 10, 32)
		if err != nil {
			return 0, Digits{}, false
		}
		d, ok := parseDigitTriple(payload[3:])
		if !ok {
			return 0, Digits{}, false
		}
		return rune(cp), d, true
	}

	return 0, Digits{}, false
}

func parseDigitTriple(s string) (Digits, bool) {
	var d Digits
	for i := 0; i < 3; i++ {
		if s[i] < '0' || s[i] > '9' {
			return Digits{}, false
		}
		d[i] = s[i] - '0'
	}
	return d, true
}
