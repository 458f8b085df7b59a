package ir

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"slices"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainSenTree = "hdlorder/sentree/v1"
	DomainGraph   = "hdlorder/graph/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash hashes the canonical JSON of v under the given domain prefix.
func ContentHash(domain string, v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("ContentHash: failed to marshal: %w", err)
	}
	return hashWithDomain(domain, canonical), nil
}

// SenTreeKey is the structural identity of a trigger set: two trees with the
// same items in any order and with any duplicates share a key. The Multi
// flag is diagnostic only and does not take part.
//
// Signal names are hashed byte for byte. Names that differ only in Unicode
// normalization or in invalid UTF-8 bytes are different signals in the
// netlist and get different keys.
func SenTreeKey(t *SenTree) string {
	items := slices.Clone(t.Items)
	slices.SortFunc(items, SenItem.Compare)
	items = slices.Compact(items)
	return hashWithDomain(DomainSenTree, appendSenItems(nil, items))
}

// appendSenItems encodes items as length-prefixed edge keyword and signal
// pairs. Signal-less edges encode an empty signal.
func appendSenItems(buf []byte, items []SenItem) []byte {
	for _, it := range items {
		signal := ""
		if it.Edge.HasSignal() {
			signal = it.Signal
		}
		buf = appendLengthPrefixed(buf, it.Edge.String())
		buf = appendLengthPrefixed(buf, signal)
	}
	return buf
}

func appendLengthPrefixed(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}
