// config_keys.go provides key-value access to configuration settings.
//
// Separated from config.go to isolate the key enumeration and string-based
// get/set logic. This separation allows config.go to focus on YAML structure
// and loading, while this file handles the CLI interface where config is
// accessed by string keys (e.g., "fuzzy.max_distance").
//
// Design: Pointers are used for optional fields so we can distinguish between
// "not set" (nil) and "explicitly set to zero". This enables proper
// defaulting - we only apply defaults when the user hasn't set a value.

package config

import (
	"fmt"
	"slices"
	"strconv"
)

// ValidKeys returns all valid configuration keys.
func ValidKeys() []string {
	return []string{
		"db",
		"index.batch_size",
		"fuzzy.max_distance", "fuzzy.min_token_length",
		"search.max_results",
	}
}

// IsValidKey returns true if the key is a valid configuration key.
func IsValidKey(key string) bool {
	return slices.Contains(ValidKeys(), key)
}

// Get returns the value of a configuration key as a string.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "db":
		return c.DB, nil
	case "index.batch_size":
		return strconv.Itoa(c.BatchSize()), nil
	case "fuzzy.max_distance":
		return strconv.Itoa(c.FuzzyMaxDistance()), nil
	case "fuzzy.min_token_length":
		return strconv.Itoa(c.FuzzyMinTokenLength()), nil
	case "search.max_results":
		return strconv.Itoa(c.MaxResults()), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set sets the value of a configuration key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "db":
		c.DB = value
	case "index.batch_size":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: index.batch_size must be a positive integer", ErrInvalidValue)
		}
		c.Index.BatchSize = &n
	case "fuzzy.max_distance":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: fuzzy.max_distance must be a positive integer", ErrInvalidValue)
		}
		c.Fuzzy.MaxDistance = &n
	case "fuzzy.min_token_length":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: fuzzy.min_token_length must be a positive integer", ErrInvalidValue)
		}
		c.Fuzzy.MinTokenLength = &n
	case "search.max_results":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: search.max_results must be a non-negative integer", ErrInvalidValue)
		}
		c.Search.MaxResults = &n
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// All returns all configuration values as a map.
func (c *Config) All() map[string]string {
	return map[string]string{
		"db":                     c.DB,
		"index.batch_size":       strconv.Itoa(c.BatchSize()),
		"fuzzy.max_distance":     strconv.Itoa(c.FuzzyMaxDistance()),
		"fuzzy.min_token_length": strconv.Itoa(c.FuzzyMinTokenLength()),
		"search.max_results":     strconv.Itoa(c.MaxResults()),
	}
}

// IsSet returns true if the key has an explicit value (not just defaults).
func (c *Config) IsSet(key string) bool {
	switch key {
	case "db":
		return c.DB != ""
	case "index.batch_size":
		return c.Index.BatchSize != nil
	case "fuzzy.max_distance":
		return c.Fuzzy.MaxDistance != nil
	case "fuzzy.min_token_length":
		return c.Fuzzy.MinTokenLength != nil
	case "search.max_results":
		return c.Search.MaxResults != nil
	default:
		return false
	}
}
