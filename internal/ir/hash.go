package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"golang.org/x/text/unicode/norm"
)

// Domain prefixes for content-addressed identity. The version suffix
// enables future algorithm migration without colliding with old hashes.
const (
	// DomainBinding scopes hashes of binding environments.
	DomainBinding = "drr/binding/v1"
	// DomainRewrite scopes hashes identifying one applied rewrite.
	DomainRewrite = "drr/rewrite/v1"
)

// HashWithDomain computes a SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data). The null separator prevents
// domain/data boundary ambiguity.
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CanonicalAttr serializes an attribute value to canonical JSON bytes
// for hashing. String contents are NFC-normalized first so that
// visually identical attribute values hash identically regardless of
// the Unicode composition the host handed us.
func CanonicalAttr(v cty.Value) ([]byte, error) {
	normed, err := cty.Transform(v, func(_ cty.Path, v cty.Value) (cty.Value, error) {
		if v.Type() == cty.String && !v.IsNull() && v.IsKnown() {
			return cty.StringVal(norm.NFC.String(v.AsString())), nil
		}
		return v, nil
	})
	if err != nil {
		return nil, fmt.Errorf("normalize attribute: %w", err)
	}
	data, err := ctyjson.Marshal(normed, normed.Type())
	if err != nil {
		return nil, fmt.Errorf("marshal attribute: %w", err)
	}
	return data, nil
}
