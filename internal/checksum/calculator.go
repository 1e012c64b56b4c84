package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Calculator is an interface for computing code content checksums.
// This abstraction allows for different digest strategies without
// touching the callers.
type Calculator interface {
	// Raw computes a checksum of the exact, unmodified content.
	Raw(content []byte) string

	// Normalized computes a checksum of line-ending-normalized content,
	// so the same code hashes identically regardless of the platform
	// that re-serialized it.
	Normalized(content []byte) string
}

// SHA256 implements Calculator using SHA-256 with lowercase hex output.
//
// SHA256 is a zero-size type and is safe for concurrent use by multiple
// goroutines. Value semantics avoid heap allocations.
type SHA256 struct{}

// New creates a new SHA-256 based calculator.
func New() SHA256 {
	return SHA256{}
}

// Raw computes SHA-256 of raw content.
func (c SHA256) Raw(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// Normalized computes SHA-256 of line-ending-normalized content.
func (c SHA256) Normalized(content []byte) string {
	return c.Raw([]byte(Normalize(string(content))))
}

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Normalize converts every line-ending variant (CRLF, bare CR) to a
// single LF and leaves all other content untouched, including internal
// whitespace and casing. The operation is idempotent.
func Normalize(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	return lineEndings.Replace(s)
}
