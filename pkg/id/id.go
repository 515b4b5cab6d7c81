package id

import (
	"crypto/rand"
	"encoding/hex"
)

// New returns 32 lowercase hex characters. The HTTP server uses it as the
// echo RequestID generator, so every response and access log line carries
// an X-Request-Id that can be matched to the warnings logged for 500s.
func New() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
