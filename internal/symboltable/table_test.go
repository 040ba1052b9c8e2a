package symboltable_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolibri/core/internal/genome"
	"github.com/kolibri/core/internal/symboltable"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tbl := symboltable.New()

	d, ok := tbl.Encode('A')
	require.True(t, ok)
	require.Equal(t, symboltable.Digits{0, 0, 0}, d)

	d2, ok := tbl.Encode('B')
	require.True(t, ok)
	require.Equal(t, symboltable.Digits{0, 0, 1}, d2)

	// Re-encoding returns the same tuple rather than allocating.
	again, ok := tbl.Encode('A')
	require.True(t, ok)
	require.Equal(t, d, again)

	r, err := tbl.Decode(d2)
	require.NoError(t, err)
	require.Equal(t, rune('B'), r)
}

func TestDecodeUnknownFails(t *testing.T) {
	tbl := symboltable.New()
	_, err := tbl.Decode(symboltable.Digits{9, 9, 9})
	require.Error(t, err)
}

func TestSeedDefaultsIdempotent(t *testing.T) {
	tbl := symboltable.New()
	tbl.SeedDefaults()
	n := tbl.Len()
	tbl.SeedDefaults()
	require.Equal(t, n, tbl.Len())

	// Cyrillic Ё/ё are covered.
	_, ok := tbl.Encode('Ё')
	require.True(t, ok)
	_, ok = tbl.Encode('ё')
	require.True(t, ok)
}

func TestAttachEmitsSymbolMapEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.bin")
	ctx, err := genome.Open(path, []byte("k"))
	require.NoError(t, err)
	defer ctx.Close()

	tbl := symboltable.New()
	tbl.Attach(symboltable.GenomeAdapter{Ctx: ctx})

	_, ok := tbl.Encode('x')
	require.True(t, ok)
	require.Equal(t, uint64(1), ctx.NextIndex())
}

func TestLoadFromGenomeReplaysEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.bin")
	ctx, err := genome.Open(path, []byte("k"))
	require.NoError(t, err)
	defer ctx.Close()

	writer := symboltable.New()
	writer.Attach(symboltable.GenomeAdapter{Ctx: ctx})
	dx, _ := writer.Encode('x')
	dy, _ := writer.Encode('y')

	reader := symboltable.New()
	require.NoError(t, reader.LoadFromGenome(symboltable.GenomeAdapter{Ctx: ctx}))
	require.Equal(t, 2, reader.Len())

	gotX, err := reader.Decode(dx)
	require.NoError(t, err)
	require.Equal(t, rune('x'), gotX)

	gotY, err := reader.Decode(dy)
	require.NoError(t, err)
	require.Equal(t, rune('y'), gotY)

	// The ledger's own append cursor must be untouched by the scan.
	require.Equal(t, uint64(2), ctx.NextIndex())
	require.NoError(t, ctx.Append("SYMBOL_MAP", "0000999123"))
	require.Equal(t, uint64(3), ctx.NextIndex())
}

func TestEncodeBeyondCapacityIsLossy(t *testing.T) {
	tbl := symboltable.New()
	for i := 0; i < symboltable.Capacity; i++ {
		_, ok := tbl.Encode(rune(i + 1000))
		require.True(t, ok)
	}
	_, ok := tbl.Encode(rune(999999))
	require.False(t, ok)
}
