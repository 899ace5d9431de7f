package normalize

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rickgao/marketdata/internal/model"
)

// Coerce converts a provider-native numeric value to an OptFloat.
// Unknown results come from nil, empty strings, provider sentinels
// ("N/A", FRED's "."), and anything that fails to parse.
func Coerce(v any) model.OptFloat {
	switch n := v.(type) {
	case nil:
		return model.Unknown()
	case float64:
		return model.Known(n)
	case float32:
		return model.Known(float64(n))
	case int:
		return model.Known(float64(n))
	case int64:
		return model.Known(float64(n))
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return model.Unknown()
		}
		return model.Known(f)
	case string:
		return coerceString(n)
	default:
		return model.Unknown()
	}
}

func coerceString(s string) model.OptFloat {
	s = strings.TrimSpace(s)
	switch s {
	case "", ".", "N/A", "n/a", "NaN", "null", "None":
		return model.Unknown()
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return model.Unknown()
	}
	return model.Known(f)
}

// CoercePercent converts a percent string like "1.23%" to its numeric
// value. Used for sector performance payloads.
func CoercePercent(s string) model.OptFloat {
	return coerceString(strings.TrimSuffix(strings.TrimSpace(s), "%"))
}
