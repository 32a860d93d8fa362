// Package reduce folds a stream of decoded combat records into a per-run DPS
// summary: total damage, hit/crit counts, and breakdowns by skill and target.
package reduce

import "strconv"

// parseInt tolerantly converts a decoded JSON value into an int64. Protobuf
// JSON projections mix representations for the same logical integer field -
// a plain number, a bool (for single-bit fields), or a decimal string (the
// standard proto3 int64 JSON encoding) - so callers must accept all three.
// Anything else, including an empty string, yields (0, false).
func parseInt(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case int64:
		return val, true
	case int:
		return int64(val), true
	case float64:
		return int64(val), true
	case string:
		if val == "" {
			return 0, false
		}
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
