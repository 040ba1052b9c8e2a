package swarm

import (
	"encoding/binary"
	"math"

	"github.com/kolibri/core/internal/kerrors"
)

const (
	// magic is the fixed 4-byte datagram tag.
	magic = "KSP\x00"

	// protocolVersion is the single supported wire version.
	protocolVersion = 1

	headerSize = 4 + 1 + 1 + 4 + 2 + 2 // magic+version+type+sender_id+port+payload_len
	hmacSize   = 32

	// MaxDatagram bounds the total wire size of any frame.
	MaxDatagram = 512
)

type frameType byte

const (
	frameHello   frameType = 1
	frameFormula frameType = 2
)

// frameHeader is the parsed fixed-size prefix of a datagram.
type frameHeader struct {
	typ      frameType
	senderID uint32
	port     uint16
	payload  []byte
}

// buildFrame assembles and HMAC-signs a complete datagram.
func buildFrame(key []byte, typ frameType, senderID uint32, port uint16, payload []byte) ([]byte, error) {
	total := headerSize + len(payload) + hmacSize
	if total > MaxDatagram {
		return nil, kerrors.New(kerrors.InvalidArgument, "swarm.buildFrame", errPayloadTooLarge)
	}

	buf := make([]byte, headerSize+len(payload), total)
	copy(buf[0:4], magic)
	buf[4] = protocolVersion
	buf[5] = byte(typ)
	binary.BigEndian.PutUint32(buf[6:10], senderID)
	binary.BigEndian.PutUint16(buf[10:12], port)
	binary.BigEndian.PutUint16(buf[12:14], uint16(len(payload)))
	copy(buf[14:], payload)

	mac := computeHMAC(key, buf)
	return append(buf, mac[:]...), nil
}

// parseFrame validates magic/version/type/payload_len and the trailing
// HMAC, returning the parsed header on success. Any failure is reported as
// kerrors.Unauthenticated or kerrors.InvalidArgument and the caller MUST
// silently drop the datagram rather than surface it further.
func parseFrame(key []byte, raw []byte) (frameHeader, error) {
	if len(raw) < headerSize+hmacSize {
		return frameHeader{}, kerrors.New(kerrors.InvalidArgument, "swarm.parseFrame", errDatagramTooShort)
	}

	body := raw[:len(raw)-hmacSize]
	providedMAC := raw[len(raw)-hmacSize:]
	expectedMAC := computeHMAC(key, body)
	if !hmacEqual(expectedMAC[:], providedMAC) {
		return frameHeader{}, kerrors.New(kerrors.Unauthenticated, "swarm.parseFrame", errHMACMismatch)
	}

	if string(body[0:4]) != magic {
		return frameHeader{}, kerrors.New(kerrors.InvalidArgument, "swarm.parseFrame", errBadMagic)
	}
	if body[4] != protocolVersion {
		return frameHeader{}, kerrors.New(kerrors.InvalidArgument, "swarm.parseFrame", errBadVersion)
	}
	typ := frameType(body[5])
	if typ != frameHello && typ != frameFormula {
		return frameHeader{}, kerrors.New(kerrors.InvalidArgument, "swarm.parseFrame", errBadType)
	}
	senderID := binary.BigEndian.Uint32(body[6:10])
	port := binary.BigEndian.Uint16(body[10:12])
	payloadLen := int(binary.BigEndian.Uint16(body[12:14]))
	remaining := body[14:]
	if payloadLen > len(remaining) {
		return frameHeader{}, kerrors.New(kerrors.InvalidArgument, "swarm.parseFrame", errPayloadLenMismatch)
	}

	return frameHeader{typ: typ, senderID: senderID, port: port, payload: remaining[:payloadLen]}, nil
}

// encodeFormulaPayload serialises gene_length:u8 ‖ gene_digits ‖ fitness:u64 BE.
func encodeFormulaPayload(geneDigits []byte, fitness float64) []byte {
	payload := make([]byte, 1+len(geneDigits)+8)
	payload[0] = byte(len(geneDigits))
	copy(payload[1:], geneDigits)
	binary.BigEndian.PutUint64(payload[1+len(geneDigits):], math.Float64bits(fitness))
	return payload
}

// decodeFormulaPayload is the inverse of encodeFormulaPayload.
func decodeFormulaPayload(payload []byte) (geneDigits []byte, fitness float64, err error) {
	if len(payload) < 1 {
		return nil, 0, kerrors.New(kerrors.InvalidArgument, "swarm.decodeFormulaPayload", errPayloadTooShort)
	}
	geneLength := int(payload[0])
	if len(payload) != 1+geneLength+8 {
		return nil, 0, kerrors.New(kerrors.InvalidArgument, "swarm.decodeFormulaPayload", errPayloadLenMismatch)
	}
	digits := make([]byte, geneLength)
	copy(digits, payload[1:1+geneLength])
	bits := binary.BigEndian.Uint64(payload[1+geneLength:])
	return digits, math.Float64frombits(bits), nil
}
