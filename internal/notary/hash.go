package notary

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// HashContent produces the deterministic content hash submitted to the
// ledger: JSON, canonicalized per RFC 8785, then sha256 hex. Two
// implementations hashing the same decision-relevant fields must agree,
// so plain json.Marshal (map order luck) is not enough.
func HashContent(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal for hashing: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize for hashing: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
