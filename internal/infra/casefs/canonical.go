package casefs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// HashAlgorithm names the digest recorded in every metadata sidecar.
const HashAlgorithm = "sha256"

// CanonicalHash returns the hex SHA-256 digest of v's canonical JSON form:
// object keys sorted, fixed separators, no insignificant whitespace. Byte-
// identical semantic content hashes identically regardless of in-memory
// field or key order.
func CanonicalHash(v any) (string, error) {
	first, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("casefs: canonicalize: %w", err)
	}
	// Round-trip through generic maps: encoding/json emits map keys sorted.
	var generic any
	if err := json.Unmarshal(first, &generic); err != nil {
		return "", fmt.Errorf("casefs: canonicalize: %w", err)
	}
	canonical, err := json.Marshal(generic)
	if err != nil {
		return "", fmt.Errorf("casefs: canonicalize: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
