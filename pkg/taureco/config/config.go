package config

import (
	"fmt"
	"math"
)

// Config wraps a map[string]any for type-safe value extraction.
// Accessors return default values if the key is missing. All but
// FloatStrict also fall back when the value has the wrong type.
type Config struct {
	data map[string]any
}

// New creates a Config from the given map.
// If data is nil, an empty Config is returned.
func New(data map[string]any) Config {
	if data == nil {
		data = make(map[string]any)
	}
	return Config{data: data}
}

// String returns the string value for key, or defaultVal if missing or not a string.
func (c Config) String(key, defaultVal string) string {
	v, ok := c.data[key]
	if !ok {
		return defaultVal
	}
	if s, ok := v.(string); ok {
		return s
	}
	return defaultVal
}

// Bool returns the boolean value for key, or defaultVal if missing or not a bool.
func (c Config) Bool(key string, defaultVal bool) bool {
	v, ok := c.data[key]
	if !ok {
		return defaultVal
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return defaultVal
}

// Int returns the integer value for key, or defaultVal if missing or not convertible.
//
// Accepts:
//   - int: used directly
//   - int64: converted to int
//   - float64: converted to int only if there is no fractional part
func (c Config) Int(key string, defaultVal int) int {
	v, ok := c.data[key]
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		if val == math.Trunc(val) {
			return int(val)
		}
	}
	return defaultVal
}

// FloatStrict returns the float64 value for key, or defaultVal if missing.
//
// Accepts float64, int and int64. YAML integers such as `jet_pt_min: 5`
// decode as int and are converted. Any other type is an error rather than
// a silent fallback.
func (c Config) FloatStrict(key string, defaultVal float64) (float64, error) {
	v, ok := c.data[key]
	if !ok {
		return defaultVal, nil
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	}
	return defaultVal, fmt.Errorf("config key %q: expected number, got %T", key, v)
}

// Sub returns the nested section under key, or an empty Config.
func (c Config) Sub(key string) Config {
	v, ok := c.data[key]
	if !ok {
		return New(nil)
	}
	switch val := v.(type) {
	case map[string]any:
		return New(val)
	case Config:
		return val
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[fmt.Sprint(k)] = item
		}
		return New(m)
	}
	return New(nil)
}

// Has returns true if the key exists in the config.
func (c Config) Has(key string) bool {
	_, ok := c.data[key]
	return ok
}

// Raw returns the underlying map.
// The returned map should not be modified.
func (c Config) Raw() map[string]any {
	return c.data
}
