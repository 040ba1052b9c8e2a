package swarm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testKey() []byte { return []byte("swarm-test-key-0123456789abcdef") }

func TestBuildParseFrameRoundTrip(t *testing.T) {
	key := testKey()
	frame, err := buildFrame(key, frameHello, 42, 5001, nil)
	require.NoError(t, err)

	header, err := parseFrame(key, frame)
	require.NoError(t, err)
	require.Equal(t, frameHello, header.typ)
	require.Equal(t, uint32(42), header.senderID)
	require.Equal(t, uint16(5001), header.port)
	require.Empty(t, header.payload)
}

func TestParseFrameRejectsTamperedBytes(t *testing.T) {
	key := testKey()
	frame, err := buildFrame(key, frameHello, 1, 5001, nil)
	require.NoError(t, err)

	frame[10] ^= 0xFF
	_, err = parseFrame(key, frame)
	require.Error(t, err)
}

func TestParseFrameRejectsWrongKey(t *testing.T) {
	frame, err := buildFrame(testKey(), frameHello, 1, 5001, nil)
	require.NoError(t, err)

	_, err = parseFrame([]byte("a-completely-different-key-here"), frame)
	require.Error(t, err)
}

func TestFormulaPayloadRoundTrip(t *testing.T) {
	digits := []byte("0123456789012345")
	key := testKey()
	frame, err := buildFrame(key, frameFormula, 7, 5002, encodeFormulaPayload(digits, 0.875))
	require.NoError(t, err)

	header, err := parseFrame(key, frame)
	require.NoError(t, err)
	require.Equal(t, frameFormula, header.typ)

	gotDigits, gotFitness, err := decodeFormulaPayload(header.payload)
	require.NoError(t, err)
	require.Equal(t, digits, gotDigits)
	require.InDelta(t, 0.875, gotFitness, 1e-12)
}

func TestBuildFrameRejectsOversizedPayload(t *testing.T) {
	huge := make([]byte, MaxDatagram)
	_, err := buildFrame(testKey(), frameFormula, 1, 1, huge)
	require.Error(t, err)
}
