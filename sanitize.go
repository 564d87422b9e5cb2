package customerio

import (
	"math"
	"strconv"
	"time"
)

// sanitize returns a shallow copy of data where time values are converted to
// integer Unix timestamps (UTC seconds) and NaN floats are replaced with nil.
// All other values pass through unchanged, including nested containers; only
// top-level values are inspected. The input map is never mutated, and
// applying sanitize to an already-sanitized map is a no-op.
func sanitize(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		switch t := v.(type) {
		case time.Time:
			out[k] = t.Unix()
		case float64:
			if math.IsNaN(t) {
				out[k] = nil
			} else {
				out[k] = t
			}
		case float32:
			if math.IsNaN(float64(t)) {
				out[k] = nil
			} else {
				out[k] = t
			}
		default:
			out[k] = v
		}
	}
	return out
}

// unixTimestamp converts a caller-supplied timestamp value to Unix seconds.
// It accepts a time.Time or an integer already expressed in Unix seconds;
// anything else yields an InvalidArgumentError.
func unixTimestamp(v any) (int64, error) {
	switch t := v.(type) {
	case time.Time:
		return t.Unix(), nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	default:
		return 0, invalidArgumentf("%v is not a valid timestamp", v)
	}
}

// stringifyIDs converts a list of customer IDs to their string form. Only
// string and integer elements are accepted.
func stringifyIDs(ids []any) ([]string, error) {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		switch t := v.(type) {
		case string:
			out = append(out, t)
		case int:
			out = append(out, strconv.Itoa(t))
		case int64:
			out = append(out, strconv.FormatInt(t, 10))
		default:
			return nil, invalidArgumentf("customer id cannot be %T", v)
		}
	}
	return out, nil
}
