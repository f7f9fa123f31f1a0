package lint

// Option values arrive from YAML, JSON, environment variables or Go code, so
// numeric options may be any of several integer or float types.

func lookup(opts map[string]any, key string) (any, bool) {
	if opts == nil {
		return nil, false
	}
	v, ok := opts[key]
	return v, ok
}

// GetIntOption extracts an int option, handling float64 from JSON.
func GetIntOption(opts map[string]any, key string, defaultVal int) int {
	v, ok := lookup(opts, key)
	if !ok {
		return defaultVal
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	default:
		return defaultVal
	}
}

// GetStringOption extracts a string option.
func GetStringOption(opts map[string]any, key string, defaultVal string) string {
	if s, ok := optionAs[string](opts, key); ok {
		return s
	}
	return defaultVal
}

// GetBoolOption extracts a bool option.
func GetBoolOption(opts map[string]any, key string, defaultVal bool) bool {
	if b, ok := optionAs[bool](opts, key); ok {
		return b
	}
	return defaultVal
}

// GetStringSliceOption extracts a string slice option.
func GetStringSliceOption(opts map[string]any, key string, defaultVal []string) []string {
	v, ok := lookup(opts, key)
	if !ok {
		return defaultVal
	}
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		result := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	default:
		return defaultVal
	}
}

func optionAs[T any](opts map[string]any, key string) (T, bool) {
	var zero T
	v, ok := lookup(opts, key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}
