package auth

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
)

// SortKeys returns a copy of data with every nested map rebuilt in key
// order. *big.Int and *big.Float values become their decimal string form so
// that the hash does not depend on how a caller represented large numbers.
func SortKeys(data any) any {
	switch v := data.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sorted := make(map[string]any, len(v))
		for _, k := range keys {
			sorted[k] = SortKeys(v[k])
		}
		return sorted
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = SortKeys(elem)
		}
		return out
	case *big.Int:
		if v == nil {
			return nil
		}
		return v.String()
	case *big.Float:
		if v == nil {
			return nil
		}
		return v.Text('f', -1)
	default:
		return data
	}
}

// CanonicalJSON encodes data with sorted keys and without HTML escaping,
// matching JSON.stringify output for the same object.
func CanonicalJSON(data any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(SortKeys(data)); err != nil {
		return nil, fmt.Errorf("marshal request data: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// HashBody returns the hex encoded SHA-256 of the canonical JSON of body.
func HashBody(body map[string]any) (string, error) {
	b, err := CanonicalJSON(body)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// ParseBody decodes a JSON request body into the map form used for hashing.
// An empty body yields an empty map.
func ParseBody(raw []byte) (map[string]any, error) {
	body := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return body, nil
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("failed to parse request body: %w", err)
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, nil
}
