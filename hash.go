package gosimplify

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// DomainExpr separates expression fingerprints from other hashes. The
// version suffix changes whenever the encoding does.
const DomainExpr = "gosimplify/expr/v1"

// Fingerprint returns a content address for e: hex SHA-256 over the domain,
// a 0x00 separator and the canonical JSON encoding (object keys sorted).
// Structurally equal expressions have equal fingerprints.
func Fingerprint(e Expr) (string, error) {
	canonical, err := json.Marshal(ToMap(e))
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(DomainExpr))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}
