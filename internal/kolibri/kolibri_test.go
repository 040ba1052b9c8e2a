package kolibri_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolibri/core/internal/formula"
	"github.com/kolibri/core/internal/genome"
	"github.com/kolibri/core/internal/kolibri"
	"github.com/kolibri/core/internal/symboltable"
)

func TestIngestTickAndBestFormula(t *testing.T) {
	dir := t.TempDir()
	g, err := genome.Open(filepath.Join(dir, "core.genome"), []byte("0123456789abcdef"))
	require.NoError(t, err)
	defer g.Close()

	symbols := symboltable.New()
	symbols.Attach(&symboltable.GenomeAdapter{Ctx: g})
	symbols.SeedDefaults()

	pool := formula.NewPool(5, symbols)
	core := kolibri.New(g, symbols, pool, nil, nil)

	require.NoError(t, core.IngestAssociation("hi", "bye", "teach", 1))

	core.Tick(2)

	snap, ok := core.BestFormula()
	require.True(t, ok)
	require.GreaterOrEqual(t, snap.Fitness, 0.0)
	require.LessOrEqual(t, snap.Fitness, 1.0)

	require.NoError(t, core.BroadcastBest()) // no swarm attached: must be a no-op
	require.Empty(t, core.DrainSwarmEvents())
}

func TestRecordSymbolEventFromGenomeScanRehydrates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "core.genome")
	key := []byte("0123456789abcdef")

	g, err := genome.Open(path, key)
	require.NoError(t, err)

	writer := symboltable.New()
	writer.Attach(&symboltable.GenomeAdapter{Ctx: g})
	_, ok := writer.Encode('Z')
	require.True(t, ok)
	require.NoError(t, g.Close())

	g2, err := genome.Open(path, key)
	require.NoError(t, err)
	defer g2.Close()

	reader := symboltable.New()
	pool := formula.NewPool(1, reader)
	core := kolibri.New(g2, reader, pool, nil, nil)

	require.NoError(t, core.RecordSymbolEventFromGenomeScan())
	digits, ok := reader.Encode('Z')
	require.True(t, ok)
	decoded, err := reader.Decode(digits)
	require.NoError(t, err)
	require.Equal(t, 'Z', decoded)
}
