package genome_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolibri/core/internal/genome"
	"github.com/kolibri/core/internal/kerrors"
)

func testKey() []byte {
	return []byte("kkkkkkkkkkkkkkkk") // "k"*16, matching scenario S1
}

func TestOpenAppendCloseRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.bin")

	ctx, err := genome.Open(path, testKey())
	require.NoError(t, err)

	require.NoError(t, ctx.Append("BOOT", "000"))
	require.NoError(t, ctx.Append("TEACH", "123456789"))
	require.Equal(t, uint64(2), ctx.NextIndex())
	require.NoError(t, ctx.Close())

	ctx2, err := genome.Open(path, testKey())
	require.NoError(t, err)
	require.Equal(t, uint64(2), ctx2.NextIndex())
	require.NoError(t, ctx2.Close())

	require.NoError(t, genome.VerifyFile(path, testKey()))
}

func TestTamperedByteFailsVerification(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.bin")

	ctx, err := genome.Open(path, testKey())
	require.NoError(t, err)
	require.NoError(t, ctx.Append("BOOT", "000"))
	require.NoError(t, ctx.Append("TEACH", "123456789"))
	require.NoError(t, ctx.Close())

	f, err := os.OpenFile(path, os.O_RDWR, 0o600)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte{0xFF}, genome.BlockSize+100)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	err = genome.VerifyFile(path, testKey())
	require.Error(t, err)
	require.True(t, kerrors.Is(err, kerrors.Corrupted))
}

func TestOpenWithWrongKeyFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.bin")

	ctx, err := genome.Open(path, testKey())
	require.NoError(t, err)
	require.NoError(t, ctx.Append("BOOT", "000"))
	require.NoError(t, ctx.Close())

	_, err = genome.Open(path, []byte("wrongwrongwrongw"))
	require.Error(t, err)
	require.True(t, kerrors.Is(err, kerrors.Corrupted))
}

func TestVerifyFileMissingIsOK(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.bin")
	require.NoError(t, genome.VerifyFile(path, testKey()))
}

func TestAppendRejectsNonDecimalPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.bin")
	ctx, err := genome.Open(path, testKey())
	require.NoError(t, err)
	defer ctx.Close()

	err = ctx.Append("BOOT", "12a")
	require.Error(t, err)
	require.True(t, kerrors.Is(err, kerrors.InvalidArgument))
}

func TestAppendRejectsOversizedEventType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.bin")
	ctx, err := genome.Open(path, testKey())
	require.NoError(t, err)
	defer ctx.Close()

	err = ctx.Append("THIS_EVENT_TYPE_IS_WAY_TOO_LONG", "1")
	require.Error(t, err)
	require.True(t, kerrors.Is(err, kerrors.InvalidArgument))
}

func TestScanFromStartRestoresOffset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.bin")
	ctx, err := genome.Open(path, testKey())
	require.NoError(t, err)
	defer ctx.Close()

	require.NoError(t, ctx.Append("SYMBOL_MAP", "0000065000"))
	require.NoError(t, ctx.Append("SYMBOL_MAP", "0000066001"))

	reader, err := ctx.ScanFromStart()
	require.NoError(t, err)

	var events []string
	for {
		block, err := reader.Next()
		if err != nil {
			break
		}
		events = append(events, block.Payload)
	}
	require.NoError(t, reader.Close())
	require.Equal(t, []string{"0000065000", "0000066001"}, events)

	// The append cursor must still be at EOF after the scan.
	require.NoError(t, ctx.Append("SYMBOL_MAP", "0000067002"))
	require.Equal(t, uint64(3), ctx.NextIndex())
}
