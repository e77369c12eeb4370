package notify

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

func configString(config map[string]interface{}, key string) string {
	v, ok := config[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// configInt64 accepts JSON numbers and numeric strings.
func configInt64(config map[string]interface{}, key string) (int64, error) {
	v, ok := config[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("%s is required", key)
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || n > math.MaxInt64 || n < math.MinInt64 {
			return 0, fmt.Errorf("%s must be an integer, got %v", key, n)
		}
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case json.Number:
		return n.Int64()
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	default:
		return 0, fmt.Errorf("%s has unsupported type %T", key, v)
	}
}
