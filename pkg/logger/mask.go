package logger

import (
	"encoding/json"
	"strings"
)

// Redacted replaces sensitive values before they reach the sink.
const Redacted = "[REDACTED]"

var sensitiveKeys = []string{
	"password",
	"token",
	"apikey",
	"api_key",
	"secret",
	"authorization",
	"ssn",
	"creditcard",
}

// SensitiveKey reports whether a field name matches the sensitive-key set.
// Matching is case-insensitive substring matching.
func SensitiveKey(name string) bool {
	lowered := strings.ToLower(name)
	for _, key := range sensitiveKeys {
		if strings.Contains(lowered, key) {
			return true
		}
	}
	return false
}

// Mask returns a deep copy of v with every sensitive field replaced by the
// redaction marker. Best effort only: it reduces accidental log leakage and
// is not a security boundary. Values that cannot be normalized to JSON are
// replaced wholesale.
func Mask(v any) any {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return Redacted
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Redacted
	}
	return maskValue(decoded)
}

func maskValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		masked := make(map[string]any, len(typed))
		for key, value := range typed {
			if SensitiveKey(key) {
				masked[key] = Redacted
				continue
			}
			masked[key] = maskValue(value)
		}
		return masked
	case []any:
		masked := make([]any, len(typed))
		for i, value := range typed {
			masked[i] = maskValue(value)
		}
		return masked
	default:
		return v
	}
}
