// Package codec implements the reversible byte-to-decimal-digit transducer
// (C1 in the core design): every byte becomes exactly three ASCII-safe
// decimal digits, so arbitrary binary payloads can ride inside a genome
// block's decimal-only payload field.
package codec

import (
	"github.com/kolibri/core/internal/kerrors"
)

// DigitsPerByte is the fixed expansion factor of the transducer.
const DigitsPerByte = 3

// EncodedLength returns the digit-sequence length produced by encoding n bytes.
func EncodedLength(n int) int { return DigitsPerByte * n }

// DecodedLength returns the byte length decoded from m digits, and whether
// m is a valid (multiple-of-three) digit count.
func DecodedLength(m int) (int, bool) {
	if m%DigitsPerByte != 0 {
		return 0, false
	}
	return m / DigitsPerByte, true
}

// EncodeBytes converts input into its 3-digit-per-byte decimal representation.
func EncodeBytes(input []byte) []byte {
	out := make([]byte, 0, EncodedLength(len(input)))
	for _, b := range input {
		out = append(out, b/100, (b/10)%10, b%10)
	}
	return out
}

// DecodeDigits reverses EncodeBytes. digits must contain values in [0,9]
// (not ASCII '0'-'9' — callers hold digit values, not characters) and its
// length must be a multiple of three; every triple must decode to a value
// that fits in a byte.
func DecodeDigits(digits []byte) ([]byte, error) {
	n, ok := DecodedLength(len(digits))
	if !ok {
		return nil, kerrors.New(kerrors.InvalidArgument, "codec.DecodeDigits", errLengthNotMultipleOfThree)
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		d0, d1, d2 := digits[3*i], digits[3*i+1], digits[3*i+2]
		if d0 > 9 || d1 > 9 || d2 > 9 {
			return nil, kerrors.New(kerrors.InvalidArgument, "codec.DecodeDigits", errDigitOutOfRange)
		}
		v := int(d0)*100 + int(d1)*10 + int(d2)
		if v > 255 {
			return nil, kerrors.New(kerrors.InvalidArgument, "codec.DecodeDigits", errTripleOverflow)
		}
		out[i] = byte(v)
	}
	return out, nil
}
