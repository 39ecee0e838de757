package tenancy

import "sedifex-backend-go/internal/timeutil"

// SerializeDocument converts a stored document into its wire form: every
// Timestamp becomes {"_millis": <int64>}, nested maps recurse, all other
// values pass through unchanged.
func SerializeDocument(data map[string]any) map[string]any {
	serialized := make(map[string]any, len(data))
	for key, value := range data {
		serialized[key] = serializeValue(value)
	}
	return serialized
}

func serializeValue(value any) any {
	switch v := value.(type) {
	case timeutil.Timestamp:
		return map[string]any{"_millis": v.ToMillis()}
	case map[string]any:
		return SerializeDocument(v)
	}
	return value
}
