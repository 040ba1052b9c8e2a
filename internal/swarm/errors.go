package swarm

import "errors"

var (
	errPayloadTooLarge    = errors.New("swarm: frame exceeds max datagram size")
	errDatagramTooShort   = errors.New("swarm: datagram shorter than header+hmac")
	errHMACMismatch       = errors.New("swarm: hmac verification failed")
	errBadMagic           = errors.New("swarm: bad magic")
	errBadVersion         = errors.New("swarm: unsupported protocol version")
	errBadType            = errors.New("swarm: unknown frame type")
	errPayloadLenMismatch = errors.New("swarm: payload_len does not match remaining bytes")
	errPayloadTooShort    = errors.New("swarm: formula payload too short")
	errNoPeers            = errors.New("swarm: peer table is empty")
	errAlreadyRunning     = errors.New("swarm: already started")
)
