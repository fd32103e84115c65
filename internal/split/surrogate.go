package split

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/leapstack-labs/starform/internal/table"
)

// KeyDelimiter joins key-column values before hashing. It is fixed: the
// same delimiter must be used when building a dimension and when resolving
// fact rows against it, or the keys will not match.
const KeyDelimiter = "|"

// SurrogateKey derives a deterministic key from ordered cell values: nulls
// become empty strings, values are joined with KeyDelimiter, and the UTF-8
// bytes are hashed with SHA-256. The result is lowercase hex. The function
// is pure and order-sensitive: reordering the inputs changes the key.
func SurrogateKey(values []table.Value) string {
	return hashHex(joinValues(values))
}

// RowHash computes the content fingerprint of one source row over all of
// its columns, using the same null-to-empty, delimiter-join, SHA-256
// algorithm as SurrogateKey. It identifies content, not identity.
func RowHash(tbl *table.Table, row int) string {
	values := make([]table.Value, 0, tbl.NumColumns())
	for _, name := range tbl.ColumnNames() {
		v, _ := tbl.Value(row, name)
		values = append(values, v)
	}
	return hashHex(joinValues(values))
}

func joinValues(values []table.Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		if !v.Null {
			parts[i] = v.Raw
		}
	}
	return strings.Join(parts, KeyDelimiter)
}

func hashHex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
