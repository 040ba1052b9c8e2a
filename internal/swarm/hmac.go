package swarm

import (
	"crypto/hmac"
	"crypto/sha256"
)

func computeHMAC(key, message []byte) [32]byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	var out [32]byte
	copy(out[:], mac.Sum(nil))
	return out
}

func hmacEqual(expected, provided []byte) bool {
	return hmac.Equal(expected, provided)
}
