// Package genome implements the append-only, HMAC-chained block log (C4)
// that persists every cognitive event Kolibri learns. The block layout
// generalizes the teacher's Ed25519 sign/verify round-trip
// (src/core/crypto/signer.go) from a one-shot signature over a blob to a
// hash chain where every block's HMAC authenticates its own fields plus
// the previous block's digest.
package genome

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"

	"github.com/kolibri/core/internal/kerrors"
)

const (
	// BlockSize is the fixed on-disk size of every ReasonBlock.
	BlockSize = 256

	indexSize     = 8
	timestampSize = 8
	hashSize      = sha256.Size // 32
	hmacSize      = sha256.Size // 32
	eventTypeSize = 16

	indexOffset     = 0
	timestampOffset = indexOffset + indexSize
	prevHashOffset  = timestampOffset + timestampSize
	hmacOffset      = prevHashOffset + hashSize
	eventTypeOffset = hmacOffset + hmacSize
	payloadOffset   = eventTypeOffset + eventTypeSize

	// PayloadSize is the number of bytes available for a block's payload.
	PayloadSize = BlockSize - payloadOffset
)

// ReasonBlock is one 256-byte ledger record (§3 ReasonBlock).
type ReasonBlock struct {
	Index       uint64
	TimestampNs uint64
	PrevHash    [hashSize]byte
	HMAC        [hmacSize]byte
	EventType   string
	Payload     string
}

// Marshal serializes b into its fixed 256-byte on-disk form.
func (b *ReasonBlock) Marshal() ([BlockSize]byte, error) {
	var out [BlockSize]byte

	if len(b.EventType) >= eventTypeSize {
		return out, kerrors.New(kerrors.InvalidArgument, "genome.ReasonBlock.Marshal", errEventTypeTooLong)
	}
	if len(b.Payload) > PayloadSize-1 {
		return out, kerrors.New(kerrors.InvalidArgument, "genome.ReasonBlock.Marshal", errPayloadTooLong)
	}
	if !isDecimalASCII(b.Payload) {
		return out, kerrors.New(kerrors.InvalidArgument, "genome.ReasonBlock.Marshal", errPayloadNotDecimal)
	}

	binary.BigEndian.PutUint64(out[indexOffset:], b.Index)
	binary.BigEndian.PutUint64(out[timestampOffset:], b.TimestampNs)
	copy(out[prevHashOffset:prevHashOffset+hashSize], b.PrevHash[:])
	copy(out[hmacOffset:hmacOffset+hmacSize], b.HMAC[:])
	copy(out[eventTypeOffset:eventTypeOffset+eventTypeSize], b.EventType)
	copy(out[payloadOffset:payloadOffset+PayloadSize], b.Payload)

	return out, nil
}

// signingMessage returns index‖timestamp‖prev_hash‖event_type‖payload, the
// exact byte sequence the HMAC authenticates (everything but the HMAC field
// itself).
func signingMessage(raw [BlockSize]byte) []byte {
	msg := make([]byte, 0, BlockSize-hmacSize)
	msg = append(msg, raw[indexOffset:prevHashOffset+hashSize]...)
	msg = append(msg, raw[eventTypeOffset:]...)
	return msg
}

// computeHMAC returns HMAC-SHA-256(key, message) for the given raw block
// bytes (the HMAC field of raw is ignored).
func computeHMAC(key []byte, raw [BlockSize]byte) [hmacSize]byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(signingMessage(raw))
	var out [hmacSize]byte
	copy(out[:], mac.Sum(nil))
	return out
}

// unmarshalBlock parses a raw 256-byte block, validating that event_type
// and payload are NUL-terminated within their fields and that the payload
// preceding its NUL is pure decimal digits.
func unmarshalBlock(raw [BlockSize]byte) (ReasonBlock, error) {
	var b ReasonBlock
	b.Index = binary.BigEndian.Uint64(raw[indexOffset:])
	b.TimestampNs = binary.BigEndian.Uint64(raw[timestampOffset:])
	copy(b.PrevHash[:], raw[prevHashOffset:prevHashOffset+hashSize])
	copy(b.HMAC[:], raw[hmacOffset:hmacOffset+hmacSize])

	eventType, err := nulTerminatedString(raw[eventTypeOffset : eventTypeOffset+eventTypeSize])
	if err != nil {
		return b, kerrors.New(kerrors.Corrupted, "genome.unmarshalBlock", errEventTypeNotTerminated)
	}
	b.EventType = eventType

	payload, err := nulTerminatedString(raw[payloadOffset:])
	if err != nil {
		return b, kerrors.New(kerrors.Corrupted, "genome.unmarshalBlock", errPayloadNotTerminated)
	}
	if !isDecimalASCII(payload) {
		return b, kerrors.New(kerrors.Corrupted, "genome.unmarshalBlock", errPayloadNotDecimal)
	}
	b.Payload = payload

	return b, nil
}

// nulTerminatedString requires field to contain a NUL byte and returns the
// bytes preceding it.
func nulTerminatedString(field []byte) (string, error) {
	for i, c := range field {
		if c == 0 {
			return string(field[:i]), nil
		}
	}
	return "", errNoNulTerminator
}

func isDecimalASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
